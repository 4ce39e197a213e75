// Package audit keeps a SQLite log of answered questions: who asked, through
// which surface, how the question was routed and whether it was denied.
package audit

import (
	"time"

	"github.com/ziadkadry99/shopdesk/internal/assistant"
	"github.com/ziadkadry99/shopdesk/internal/classifier"
)

// Entry is a single question log record.
type Entry struct {
	ID          string           `json:"id"`
	Timestamp   time.Time        `json:"timestamp"`
	Surface     string           `json:"surface"`
	Role        assistant.Role   `json:"role"`
	Query       string           `json:"query"`
	Label       classifier.Label `json:"label"`
	Denied      bool             `json:"denied"`
	Backend     string           `json:"backend,omitempty"`
	AnswerChars int              `json:"answer_chars"`
}

// Stats summarizes the log.
type Stats struct {
	Total   int                      `json:"total"`
	Denied  int                      `json:"denied"`
	ByLabel map[classifier.Label]int `json:"by_label"`
	ByRole  map[assistant.Role]int   `json:"by_role"`
}
