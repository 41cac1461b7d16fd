package recommend

import (
	"math"
	"sort"

	"github.com/hlsrec/hls-recommender-go/internal/models"
)

// Term is one non-zero component of a Vector.
type Term struct {
	Term   string
	Weight float64
}

// Vector is a sparse feature vector sorted by term. Absent terms weigh zero.
type Vector []Term

// Norm returns the Euclidean length of v.
func (v Vector) Norm() float64 {
	var sum float64
	for _, t := range v {
		sum += t.Weight * t.Weight
	}
	return math.Sqrt(sum)
}

// IsZero reports whether v has no non-zero component.
func (v Vector) IsZero() bool {
	return len(v) == 0
}

// Weight returns the weight of term in v.
func (v Vector) Weight(term string) float64 {
	i := sort.Search(len(v), func(i int) bool { return v[i].Term >= term })
	if i < len(v) && v[i].Term == term {
		return v[i].Weight
	}
	return 0
}

// Snapshot holds the vectors derived from one catalog read.
type Snapshot struct {
	vocabulary []string
	vectors    map[int64]Vector
	order      []int64
}

// Vocabulary returns the sorted terms shared by every vector in the snapshot.
func (s *Snapshot) Vocabulary() []string {
	return append([]string(nil), s.vocabulary...)
}

// Vector returns the vector of a video and whether the video is in the snapshot.
func (s *Snapshot) Vector(videoID int64) (Vector, bool) {
	v, ok := s.vectors[videoID]
	return v, ok
}

// Len returns the number of videos in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.order)
}

// IDs returns the video IDs in catalog order.
func (s *Snapshot) IDs() []int64 {
	return append([]int64(nil), s.order...)
}

// IndexBuilder turns a catalog into a Snapshot. Extractor rebuilds from
// scratch on every call; other strategies may cache by catalog version.
type IndexBuilder interface {
	Build(videos []models.Video) *Snapshot
}

// Extractor computes TF-IDF vectors from video tags.
type Extractor struct {
	stop StopWords
}

// NewExtractor returns an Extractor dropping the given stop words.
func NewExtractor(stop StopWords) *Extractor {
	return &Extractor{stop: stop}
}

// Build implements IndexBuilder.
func (e *Extractor) Build(videos []models.Video) *Snapshot {
	return e.Extract(videos)
}

// Extract derives one vector per video. Weights are raw term counts times
// ln((1+n)/(1+df))+1, then scaled to unit length. Videos with no usable
// terms get an empty vector. Duplicate IDs keep the first occurrence.
func (e *Extractor) Extract(videos []models.Video) *Snapshot {
	tok := NewTokenizer(e.stop)

	counts := make([]map[string]int, 0, len(videos))
	order := make([]int64, 0, len(videos))
	seen := make(map[int64]struct{}, len(videos))
	df := make(map[string]int)

	for i := range videos {
		if _, dup := seen[videos[i].ID]; dup {
			continue
		}
		seen[videos[i].ID] = struct{}{}

		tf := make(map[string]int)
		for _, term := range tok.Tokenize(videos[i].Tags) {
			tf[term]++
		}
		for term := range tf {
			df[term]++
		}
		counts = append(counts, tf)
		order = append(order, videos[i].ID)
	}

	vocabulary := make([]string, 0, len(df))
	for term := range df {
		vocabulary = append(vocabulary, term)
	}
	sort.Strings(vocabulary)

	n := float64(len(order))
	idf := make(map[string]float64, len(df))
	for term, d := range df {
		idf[term] = math.Log((1+n)/(1+float64(d))) + 1
	}

	vectors := make(map[int64]Vector, len(order))
	for i, id := range order {
		vectors[id] = weigh(counts[i], idf)
	}

	return &Snapshot{
		vocabulary: vocabulary,
		vectors:    vectors,
		order:      order,
	}
}

func weigh(tf map[string]int, idf map[string]float64) Vector {
	v := make(Vector, 0, len(tf))
	for term, c := range tf {
		v = append(v, Term{Term: term, Weight: float64(c) * idf[term]})
	}
	sort.Slice(v, func(i, j int) bool { return v[i].Term < v[j].Term })

	norm := v.Norm()
	if norm == 0 {
		return Vector{}
	}
	for i := range v {
		v[i].Weight /= norm
	}
	return v
}
