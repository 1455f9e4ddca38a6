package constants

// Document - One corpus entry. Index is its position in the corpus and doubles as its id.
type Document struct {
	Index   int    `json:"Index"`
	Group   string `json:"Group"`
	Content string `json:"Content"`
}

type DocumentVector struct {
	Index  int       `json:"Index"`
	Vector []float32 `json:"Vector"`
}

// ScoredDocument - What a vector index hands back for a query
type ScoredDocument struct {
	Index int     `json:"Index"`
	Score float64 `json:"Score"`
}

// SearchResponse - Payload of POST /search. The three slices are parallel: position i is one result.
type SearchResponse struct {
	Documents    []string  `json:"documents"`
	Indices      []int     `json:"indices"`
	Similarities []float64 `json:"similarities"`
}

// Len - Number of result items, -1 if the slices disagree.
func (r *SearchResponse) Len() int {
	if len(r.Documents) != len(r.Indices) || len(r.Documents) != len(r.Similarities) {
		return -1
	}
	return len(r.Documents)
}
