package model

import "time"

// SearchRecord is one entry of the search history: a question, the answer it
// produced, and the best-matching source document.
type SearchRecord struct {
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	Source   string    `json:"source"`
	AskedAt  time.Time `json:"asked_at"`
}
