package sqlxrepos

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/confadmin/core/audit"
)

const auditColumns = "id, actor_id, actor_email, action, resource, resource_id, summary, diff, created_at"

type auditRow struct {
	ID         string      `db:"id"`
	ActorID    string      `db:"actor_id"`
	ActorEmail string      `db:"actor_email"`
	Action     string      `db:"action"`
	Resource   string      `db:"resource"`
	ResourceID null.String `db:"resource_id"`
	Summary    string      `db:"summary"`
	Diff       null.String `db:"diff"`
	CreatedAt  time.Time   `db:"created_at"`
}

func newAuditRow(e audit.Entry) auditRow {
	return auditRow{
		ID:         e.ID,
		ActorID:    e.ActorID,
		ActorEmail: e.ActorEmail,
		Action:     e.Action,
		Resource:   e.Resource,
		ResourceID: null.NewString(e.ResourceID, e.ResourceID != ""),
		Summary:    e.Summary,
		Diff:       null.NewString(e.Diff, e.Diff != ""),
		CreatedAt:  e.CreatedAt,
	}
}

func (r auditRow) entry() audit.Entry {
	return audit.Entry{
		ID:         r.ID,
		ActorID:    r.ActorID,
		ActorEmail: r.ActorEmail,
		Action:     r.Action,
		Resource:   r.Resource,
		ResourceID: r.ResourceID.String,
		Summary:    r.Summary,
		Diff:       r.Diff.String,
		CreatedAt:  r.CreatedAt.UTC(),
	}
}

type auditRepository struct {
	db *sqlx.DB
}

var _ audit.Repository = (*auditRepository)(nil)

func NewAuditRepository(db *sqlx.DB) audit.Repository {
	return &auditRepository{db: db}
}

func (repo *auditRepository) CreateEntry(ctx context.Context, e audit.Entry) (audit.Entry, error) {
	q := `INSERT INTO audit_entries (` + auditColumns + `)
		VALUES (:id, :actor_id, :actor_email, :action, :resource, :resource_id, :summary, :diff, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, newAuditRow(e)); err != nil {
		return audit.Entry{}, errors.Wrap(err, "inserting audit entry")
	}
	return e, nil
}

func (repo *auditRepository) QueryEntries(ctx context.Context, filter audit.QueryFilter) ([]audit.Entry, error) {
	var (
		where []string
		args  []interface{}
	)
	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		where = append(where, strings.Replace(cond, "?", "$"+strconv.Itoa(len(args)), 1))
	}
	if filter.ActorID != "" {
		add("actor_id = ?", filter.ActorID)
	}
	if filter.Resource != "" {
		add("resource = ?", filter.Resource)
	}
	if filter.Action != "" {
		add("action = ?", filter.Action)
	}
	if !filter.From.IsZero() {
		add("created_at >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		// postgres keeps microseconds: an inclusive nanosecond bound would round up
		add("created_at < ?", filter.To.Add(time.Nanosecond))
	}

	q := "SELECT " + auditColumns + " FROM audit_entries"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		q += " LIMIT $" + strconv.Itoa(len(args))
	}

	var rows []auditRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting audit entries")
	}
	entries := make([]audit.Entry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, r.entry())
	}
	return entries, nil
}

func (repo *auditRepository) GetEntry(ctx context.Context, id string) (audit.Entry, error) {
	// the id column is a uuid: postgres rejects anything else with a syntax error
	if _, err := uuid.Parse(id); err != nil {
		return audit.Entry{}, audit.ErrNotFound
	}
	var row auditRow
	err := repo.db.GetContext(ctx, &row, "SELECT "+auditColumns+" FROM audit_entries WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return audit.Entry{}, audit.ErrNotFound
		}
		return audit.Entry{}, errors.Wrap(err, "selecting audit entry")
	}
	return row.entry(), nil
}
