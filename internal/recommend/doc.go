// Package recommend implements content-based recommendations over video tags.
//
// Each request builds a Snapshot from the full catalog: tags are tokenized,
// weighted with smoothed TF-IDF and L2-normalized. Neighbours are ranked by
// cosine similarity inside that one snapshot. Vectors from different snapshots
// are not comparable and are never mixed.
package recommend
