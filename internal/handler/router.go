package handler

import (
	"github.com/hlsrec/hls-recommender-go/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router bundles the handlers mounted by NewRouter.
type Router struct {
	Health      *HealthHandler
	Videos      *VideoHandler
	Engagement  *EngagementHandler
	UploadLimit *middleware.RateLimiter
	CORSOrigins []string
}

// NewRouter builds the gin engine with every route of the service.
func NewRouter(r Router) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger())
	engine.Use(cors.New(corsConfig(r.CORSOrigins)))

	engine.GET("/health/live", r.Health.LivenessProbe)
	engine.GET("/health/ready", r.Health.ReadinessProbe)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	upload := []gin.HandlerFunc{r.Videos.Upload}
	if r.UploadLimit != nil && r.UploadLimit.Enabled() {
		upload = append([]gin.HandlerFunc{r.UploadLimit.Limit()}, upload...)
	}
	engine.POST("/upload", upload...)
	engine.GET("/jobs/:jobID", r.Videos.GetJob)
	engine.GET("/hls/:filename", r.Videos.ServeHLS)

	engine.GET("/recommend/:userID", r.Videos.Recommend)
	engine.GET("/history/:userID", r.Videos.History)
	engine.GET("/api/videos", r.Videos.ListVideos)

	engine.POST("/watch/:userID/:videoID", r.Engagement.Watch)
	engine.POST("/like/:userID/:videoID", r.Engagement.Like)
	engine.POST("/users", r.Engagement.CreateUser)

	return engine
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Range"}
	cfg.ExposeHeaders = []string{"Content-Length", "Content-Range"}

	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
