package domain

import "time"

// Note is an immutable audit annotation on a candidate. The engine never
// updates or deletes notes; they only disappear with their candidate.
type Note struct {
	ID          string    `json:"id"`
	CandidateID string    `json:"candidate_id"`
	AuthorID    string    `json:"author_id"`
	Text        string    `json:"text"`
	CreatedAt   time.Time `json:"created_at"`
}

// DeepCopy returns a copy safe to mutate independently of the original.
func (n *Note) DeepCopy() *Note {
	if n == nil {
		return nil
	}
	cp := *n
	return &cp
}
