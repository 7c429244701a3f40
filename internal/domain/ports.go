package domain

import (
	"context"
	"time"
)

// Gateway is the remote API: list loading plus the mutation endpoints.
// Paths are relative to the configured base URL.
type Gateway interface {
	Fetch(ctx context.Context, token, path string, out any) error
	Send(ctx context.Context, token, method, path string, body any) (string, error)
	Login(ctx context.Context, username, password string) (string, error)
}

// StateStore keeps one ListState per (ui session, list key).
type StateStore interface {
	Load(ctx context.Context, ui, list string) (ListState, error)
	Save(ctx context.Context, ui, list string, st ListState) error
	Clear(ctx context.Context, ui, list string) error
}

// Notices is the flash notification queue of a ui session.
type Notices interface {
	Push(ctx context.Context, ui string, n Notice) error
	Pop(ctx context.Context, ui string) ([]Notice, error)
}

// AuditLog records mutation outcomes.
type AuditLog interface {
	Append(ctx context.Context, e AuditEntry) error
	Recent(ctx context.Context, limit int) ([]AuditEntry, error)
}

// ListState is the accordion state of one list. EditingID is the single
// row in edit mode; Shadow, Draft and Errors belong to that row only.
type ListState struct {
	EditingID *int64            `json:"editing_id,omitempty"`
	Shadow    Record            `json:"shadow,omitempty"`
	Draft     map[string]string `json:"draft,omitempty"`
	Errors    map[string]string `json:"errors,omitempty"`
	Expanded  map[int64]bool    `json:"expanded,omitempty"`
}

func (s ListState) Editing(id int64) bool {
	return s.EditingID != nil && *s.EditingID == id
}

// Reset drops edit mode and everything tied to it. Expanded panels survive.
func (s *ListState) Reset() {
	s.EditingID = nil
	s.Shadow = nil
	s.Draft = nil
	s.Errors = nil
}

type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
	NoticeInfo    NoticeKind = "info"
)

type Notice struct {
	Kind  NoticeKind `json:"kind"`
	Title string     `json:"title"`
	Text  string     `json:"text"`
}

type AuditEntry struct {
	ID       int64
	Actor    string
	Entity   string
	RecordID *int64
	Action   string // create|update|delete
	Status   int
	Message  string
	At       time.Time
}
