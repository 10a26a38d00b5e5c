package catalog

import (
	jsoniter "github.com/json-iterator/go"
)

// BookStatistics holds the four dashboard counts for one user identity.
// All counts are computed in a single multi-statement round trip; a user
// with no books simply yields zero counts.
type BookStatistics struct {
	TotalBooks       int64 `json:"totalBooks"`
	UserBooks        int64 `json:"userBooks"`
	ReadingListBooks int64 `json:"readingListBooks"`
	BooksRead        int64 `json:"booksRead"`
}

// ToJSON serializes the statistics for dashboard consumers.
func (s BookStatistics) ToJSON() ([]byte, error) {
	return jsoniter.ConfigFastest.Marshal(s)
}
