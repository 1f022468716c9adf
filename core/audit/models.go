package audit

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// Actions
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionReview = "review"
	ActionSend   = "send"
)

var (
	Actions = []string{ActionCreate, ActionUpdate, ActionDelete, ActionReview, ActionSend}

	// errors
	ErrNotFound = errors.New("audit entry not found")
)

const (
	DefaultLimit = 50
	MaxLimit     = 1000
)

// Entry is one mutation submitted through the console.
type Entry struct {
	ID         string    `json:"id"`
	ActorID    string    `json:"actor_id"`
	ActorEmail string    `json:"actor_email"`
	Action     string    `json:"action"`
	Resource   string    `json:"resource"`
	ResourceID string    `json:"resource_id,omitempty"`
	Summary    string    `json:"summary"`
	Diff       string    `json:"diff,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// QueryFilter narrows the audit log. Zero values are ignored.
type QueryFilter struct {
	ActorID  string    `query:"actor_id"`
	Resource string    `query:"resource"`
	Action   string    `query:"action"`
	From     time.Time `query:"-"`
	To       time.Time `query:"-"`
	Limit    int       `query:"limit"`
}

func (qf *QueryFilter) Clean() {
	if qf.Limit <= 0 {
		qf.Limit = DefaultLimit
	} else if qf.Limit > MaxLimit {
		qf.Limit = MaxLimit
	}
}

// Match reports whether e satisfies qf; used by in-memory repositories.
func (qf QueryFilter) Match(e Entry) bool {
	switch {
	case qf.ActorID != "" && e.ActorID != qf.ActorID:
		return false
	case qf.Resource != "" && e.Resource != qf.Resource:
		return false
	case qf.Action != "" && e.Action != qf.Action:
		return false
	case !qf.From.IsZero() && e.CreatedAt.Before(qf.From):
		return false
	case !qf.To.IsZero() && e.CreatedAt.After(qf.To):
		return false
	}
	return true
}

type Repository interface {
	CreateEntry(ctx context.Context, e Entry) (Entry, error)
	// QueryEntries returns the matching entries, newest first.
	QueryEntries(ctx context.Context, filter QueryFilter) ([]Entry, error)
	GetEntry(ctx context.Context, id string) (Entry, error)
}
