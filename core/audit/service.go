package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/trezcool/confadmin/core"
)

// Actor is the console user behind an entry.
type Actor struct {
	ID    string
	Email string
}

type Service struct {
	repo   Repository
	logger core.Logger
	now    func() time.Time
}

func NewService(repo Repository, logger core.Logger) *Service {
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// Record stores an entry. Failures are logged, never returned.
func (svc *Service) Record(ctx context.Context, actor Actor, action, resource, resourceID, summary string) {
	svc.record(ctx, Entry{
		ActorID:    actor.ID,
		ActorEmail: actor.Email,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		Summary:    summary,
	})
}

// RecordUpdate records an update along with the unified diff of before & after.
func (svc *Service) RecordUpdate(ctx context.Context, actor Actor, resource, resourceID, summary string, before, after interface{}) {
	diff, err := Diff(before, after)
	if err != nil {
		svc.logger.Warn(fmt.Sprintf("audit diff %s/%s: %v", resource, resourceID, err), err)
	}
	svc.record(ctx, Entry{
		ActorID:    actor.ID,
		ActorEmail: actor.Email,
		Action:     ActionUpdate,
		Resource:   resource,
		ResourceID: resourceID,
		Summary:    summary,
		Diff:       diff,
	})
}

func (svc *Service) record(ctx context.Context, e Entry) {
	e.ID = uuid.NewString()
	e.CreatedAt = svc.now().UTC()
	if _, err := svc.repo.CreateEntry(ctx, e); err != nil {
		svc.logger.Error(
			fmt.Sprintf("recording audit entry: %v", err),
			errors.Wrap(err, "recording audit entry"),
			core.LogUser{ID: e.ActorID, Email: e.ActorEmail},
			map[string]interface{}{"action": e.Action, "resource": e.Resource, "resource_id": e.ResourceID},
		)
	}
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Entry, error) {
	filter.Clean()
	entries, err := svc.repo.QueryEntries(ctx, filter)
	return entries, errors.Wrap(err, "querying audit entries")
}

func (svc *Service) GetByID(ctx context.Context, id string) (Entry, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Entry{}, ErrNotFound
	}
	e, err := svc.repo.GetEntry(ctx, id)
	return e, errors.Wrap(err, "getting audit entry")
}

// Diff returns the unified diff of the indented JSON encodings of before & after; "" if equal.
func Diff(before, after interface{}) (string, error) {
	a, err := json.MarshalIndent(before, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "encoding before")
	}
	b, err := json.MarshalIndent(after, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "encoding after")
	}
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(a)),
		B:        difflib.SplitLines(string(b)),
		FromFile: "before",
		ToFile:   "after",
		Context:  1,
	})
}
