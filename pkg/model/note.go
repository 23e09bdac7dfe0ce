package model

import (
	"fmt"
	"strings"
	"time"
)

// Note is an analyst annotation attached to a segment by its canonical key.
type Note struct {
	ID         int64     `json:"id"`
	SegmentKey string    `json:"segment_key"`
	Metric     string    `json:"metric"`
	Author     string    `json:"author"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}

// Validate checks that the note can be stored.
func (n *Note) Validate() error {
	if n.SegmentKey == "" {
		return fmt.Errorf("note segment key cannot be empty")
	}
	if strings.TrimSpace(n.Body) == "" {
		return fmt.Errorf("note body cannot be empty")
	}
	return nil
}
