package recommend

import (
	"sort"
)

// DefaultTopK is the neighbour count used when none is configured.
const DefaultTopK = 5

// Cosine returns the cosine similarity of a and b, or 0 when either is zero.
// Both vectors must be sorted by term, as Extract produces them.
func Cosine(a, b Vector) float64 {
	na, nb := a.Norm(), b.Norm()
	if na == 0 || nb == 0 {
		return 0
	}

	var dot float64
	for i, j := 0, 0; i < len(a) && j < len(b); {
		switch {
		case a[i].Term == b[j].Term:
			dot += a[i].Weight * b[j].Weight
			i++
			j++
		case a[i].Term < b[j].Term:
			i++
		default:
			j++
		}
	}
	return dot / (na * nb)
}

// Neighbor is a ranked similarity result.
type Neighbor struct {
	VideoID int64
	Score   float64
}

// TopK returns up to k videos most similar to videoID, excluding it, ordered
// by descending score then ascending ID. An unknown videoID or k <= 0 yields
// an empty result.
func (s *Snapshot) TopK(videoID int64, k int) []Neighbor {
	query, ok := s.vectors[videoID]
	if !ok || k <= 0 {
		return []Neighbor{}
	}

	ranked := make([]Neighbor, 0, len(s.order))
	for _, id := range s.order {
		if id == videoID {
			continue
		}
		ranked = append(ranked, Neighbor{VideoID: id, Score: Cosine(query, s.vectors[id])})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].VideoID < ranked[j].VideoID
	})

	if len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}
