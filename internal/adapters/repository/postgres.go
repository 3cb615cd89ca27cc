package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/okian/internxp/internal/domain/model"
	"github.com/okian/internxp/pkg/logger"
	"github.com/okian/internxp/pkg/metrics"
)

const uniqueViolation = "23505"

// Schema creates the tables used by PGStore. It is idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS candidates (
	id           TEXT PRIMARY KEY,
	first_name   TEXT NOT NULL DEFAULT '',
	last_name    TEXT NOT NULL DEFAULT '',
	full_name    TEXT NOT NULL,
	email        TEXT NOT NULL,
	department   TEXT NOT NULL DEFAULT '',
	hire         SMALLINT NOT NULL DEFAULT 0,
	hire_count   INTEGER NOT NULL DEFAULT 0,
	xp           INTEGER NOT NULL DEFAULT 0 CHECK (xp >= 0),
	xp_history   JSONB NOT NULL DEFAULT '[]'::jsonb,
	badges       JSONB NOT NULL DEFAULT '[]'::jsonb,
	feedback     JSONB,
	hire_details JSONB,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS candidates_email_key ON candidates (lower(email));
CREATE INDEX IF NOT EXISTS candidates_hire_idx ON candidates (hire);

CREATE TABLE IF NOT EXISTS tasks (
	id                 TEXT PRIMARY KEY,
	title              TEXT NOT NULL,
	description        TEXT NOT NULL DEFAULT '',
	deadline           TIMESTAMPTZ,
	priority           TEXT NOT NULL DEFAULT '',
	assign_to          JSONB NOT NULL DEFAULT '[]'::jsonb,
	xp_reward          INTEGER NOT NULL,
	bonus_multiplier   DOUBLE PRECISION NOT NULL,
	status             SMALLINT NOT NULL DEFAULT 0,
	completion_date    TIMESTAMPTZ,
	completed_by       TEXT NOT NULL DEFAULT '',
	xp_awarded         INTEGER NOT NULL DEFAULT 0,
	bonus_xp           INTEGER NOT NULL DEFAULT 0,
	timing_description TEXT NOT NULL DEFAULT '',
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

const candidateColumns = `id, first_name, last_name, full_name, email, department, hire, hire_count, xp,
	xp_history, badges, feedback, hire_details, created_at`

const taskColumns = `id, title, description, deadline, priority, assign_to, xp_reward, bonus_multiplier,
	status, completion_date, completed_by, xp_awarded, bonus_xp, timing_description, created_at`

// PGStore is a Store backed by PostgreSQL via lib/pq. Ledger arrays live in
// JSONB columns so an award is a single UPDATE statement.
type PGStore struct {
	db  *sql.DB
	log logger.Logger
}

// NewPGStore wraps an open database handle.
func NewPGStore(db *sql.DB, opts ...PGOption) *PGStore {
	s := &PGStore{db: db, log: logger.Get().Named("repository")}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OpenPG opens a lib/pq connection and verifies it.
func OpenPG(ctx context.Context, dsn string, opts ...PGOption) (*PGStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	s := NewPGStore(db, opts...)
	if err := s.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Migrate applies Schema.
func (s *PGStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	s.log.Info(ctx, "schema migrated")
	return nil
}

const countsQuery = `SELECT
	(SELECT COUNT(*) FROM candidates),
	(SELECT COUNT(*) FROM candidates WHERE hire = 1),
	(SELECT COUNT(*) FROM candidates WHERE hire = -1),
	(SELECT COALESCE(SUM(xp), 0) FROM candidates),
	(SELECT COALESCE(SUM(jsonb_array_length(badges)), 0) FROM candidates),
	(SELECT COUNT(*) FROM tasks),
	(SELECT COUNT(*) FROM tasks WHERE status = 1)`

// Counts implements Store with a single aggregate query.
func (s *PGStore) Counts(ctx context.Context) (_ Counts, err error) {
	defer track("counts", time.Now(), &err)

	var c Counts
	err = s.db.QueryRowContext(ctx, countsQuery).Scan(
		&c.Candidates, &c.Hired, &c.Rejected, &c.TotalXP, &c.Badges, &c.Tasks, &c.TasksCompleted)
	if err != nil {
		return Counts{}, fmt.Errorf("count rows: %w", err)
	}
	c.Undecided = c.Candidates - c.Hired - c.Rejected
	return c, nil
}

// Ping implements Store.
func (s *PGStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *PGStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCandidate(row rowScanner) (model.Candidate, error) {
	var (
		c                                model.Candidate
		hire                             int
		history, badges, feedback, hdRaw []byte
	)
	if err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.FullName, &c.Email, &c.Department,
		&hire, &c.HireCount, &c.XP, &history, &badges, &feedback, &hdRaw, &c.CreatedAt); err != nil {
		return model.Candidate{}, err
	}
	c.Hire = model.HireStatus(hire)
	if err := unmarshalArray(history, &c.XPHistory); err != nil {
		return model.Candidate{}, fmt.Errorf("decode xp_history: %w", err)
	}
	if err := unmarshalArray(badges, &c.Badges); err != nil {
		return model.Candidate{}, fmt.Errorf("decode badges: %w", err)
	}
	if len(feedback) > 0 {
		c.Feedback = json.RawMessage(feedback)
	}
	if len(hdRaw) > 0 {
		c.HireDetails = &model.HireDetails{}
		if err := json.Unmarshal(hdRaw, c.HireDetails); err != nil {
			return model.Candidate{}, fmt.Errorf("decode hire_details: %w", err)
		}
	}
	return c, nil
}

func scanTask(row rowScanner) (model.Task, error) {
	var (
		t         model.Task
		status    int
		deadline  sql.NullTime
		completed sql.NullTime
		assign    []byte
	)
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &deadline, &t.Priority, &assign, &t.XPReward,
		&t.BonusMultiplier, &status, &completed, &t.CompletedBy, &t.XPAwarded, &t.BonusXP,
		&t.TimingDescription, &t.CreatedAt); err != nil {
		return model.Task{}, err
	}
	t.Status = model.TaskStatus(status)
	if deadline.Valid {
		t.Deadline = deadline.Time
	}
	if completed.Valid {
		at := completed.Time
		t.CompletionDate = &at
	}
	if err := unmarshalArray(assign, &t.AssignTo); err != nil {
		return model.Task{}, fmt.Errorf("decode assign_to: %w", err)
	}
	return t, nil
}

func unmarshalArray[T any](raw []byte, dst *[]T) error {
	if len(raw) == 0 {
		*dst = []T{}
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return err
	}
	if *dst == nil {
		*dst = []T{}
	}
	return nil
}

func jsonOrNull(v any, isNil bool) (any, error) {
	if isNil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

// track records latency and failures for a repository operation.
func track(op string, start time.Time, err *error) {
	metrics.RecordRepositoryLatency(op, float64(time.Since(start).Microseconds())/1000)
	if *err != nil && !errors.Is(*err, ErrNotFound) {
		metrics.RecordRepositoryError(op)
	}
}

// CreateCandidate implements CandidateStore.
func (s *PGStore) CreateCandidate(ctx context.Context, c model.Candidate) (_ model.Candidate, err error) {
	defer track("create_candidate", time.Now(), &err)

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	c = c.Clone()
	history, err := json.Marshal(c.XPHistory)
	if err != nil {
		return model.Candidate{}, fmt.Errorf("encode xp_history: %w", err)
	}
	badges, err := json.Marshal(c.Badges)
	if err != nil {
		return model.Candidate{}, fmt.Errorf("encode badges: %w", err)
	}
	var feedback any
	if len(c.Feedback) > 0 {
		feedback = string(c.Feedback)
	}
	hd, err := jsonOrNull(c.HireDetails, c.HireDetails == nil)
	if err != nil {
		return model.Candidate{}, fmt.Errorf("encode hire_details: %w", err)
	}

	const query = `INSERT INTO candidates (` + candidateColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		RETURNING ` + candidateColumns
	row := s.db.QueryRowContext(ctx, query, c.ID, c.FirstName, c.LastName, c.FullName, c.Email, c.Department,
		int(c.Hire), c.HireCount, c.XP, string(history), string(badges), feedback, hd, c.CreatedAt)
	out, err := scanCandidate(row)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return model.Candidate{}, ErrDuplicateEmail
		}
		return model.Candidate{}, fmt.Errorf("insert candidate: %w", err)
	}
	return out, nil
}

// GetCandidate implements CandidateStore.
func (s *PGStore) GetCandidate(ctx context.Context, id string) (_ model.Candidate, err error) {
	defer track("get_candidate", time.Now(), &err)

	const query = `SELECT ` + candidateColumns + ` FROM candidates WHERE id = $1`
	c, err := scanCandidate(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Candidate{}, ErrNotFound
	}
	if err != nil {
		return model.Candidate{}, fmt.Errorf("get candidate: %w", err)
	}
	return c, nil
}

// ListCandidates implements CandidateStore.
func (s *PGStore) ListCandidates(ctx context.Context, f CandidateFilter) (_ []model.Candidate, err error) {
	defer track("list_candidates", time.Now(), &err)

	var (
		where []string
		args  []any
	)
	if len(f.Statuses) > 0 {
		statuses := make([]int64, 0, len(f.Statuses))
		for _, st := range f.Statuses {
			statuses = append(statuses, int64(st))
		}
		args = append(args, pq.Array(statuses))
		where = append(where, fmt.Sprintf("hire = ANY($%d)", len(args)))
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		args = append(args, "%"+escapeLike(q)+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(full_name ILIKE $%d OR (first_name || ' ' || last_name) ILIKE $%d OR email ILIKE $%d)", n, n, n))
	}
	query := `SELECT ` + candidateColumns + ` FROM candidates`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	defer rows.Close()

	out := []model.Candidate{}
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	return out, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// ApplyAward implements CandidateStore. The increment and both appends happen in
// one statement so concurrent awards never lose an entry.
func (s *PGStore) ApplyAward(ctx context.Context, id string, a Award) (_ model.Candidate, err error) {
	defer track("apply_award", time.Now(), &err)

	entries := a.Entries
	if entries == nil {
		entries = []model.XPEntry{}
	}
	history, err := json.Marshal(entries)
	if err != nil {
		return model.Candidate{}, fmt.Errorf("encode entries: %w", err)
	}
	badges := []model.Badge{}
	if a.Badge != nil {
		badges = append(badges, *a.Badge)
	}
	badgeJSON, err := json.Marshal(badges)
	if err != nil {
		return model.Candidate{}, fmt.Errorf("encode badge: %w", err)
	}

	const query = `UPDATE candidates
		SET xp = xp + $2,
			xp_history = xp_history || $3::jsonb,
			badges = badges || $4::jsonb
		WHERE id = $1 AND xp + $2 >= 0
		RETURNING ` + candidateColumns
	c, err := scanCandidate(s.db.QueryRowContext(ctx, query, id, a.Points(), string(history), string(badgeJSON)))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Candidate{}, s.missOrNegative(ctx, id)
	}
	if err != nil {
		return model.Candidate{}, fmt.Errorf("apply award: %w", err)
	}
	return c, nil
}

func (s *PGStore) missOrNegative(ctx context.Context, id string) error {
	var exists bool
	if err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM candidates WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("check candidate: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	return ErrNegativeBalance
}

// UpdateHire implements CandidateStore. The hire count compares against the
// pre-update status because SET expressions read the old row.
func (s *PGStore) UpdateHire(ctx context.Context, id string, u HireUpdate) (_ model.Candidate, err error) {
	defer track("update_hire", time.Now(), &err)

	var hire any
	if u.Hire != nil {
		hire = int(*u.Hire)
	}
	var feedback any
	if u.Feedback != nil {
		feedback = string(u.Feedback)
	}
	hd, err := jsonOrNull(u.HireDetails, u.HireDetails == nil)
	if err != nil {
		return model.Candidate{}, fmt.Errorf("encode hire_details: %w", err)
	}

	const query = `UPDATE candidates
		SET hire_count = hire_count + CASE WHEN $2::smallint = 1 AND hire <> 1 THEN 1 ELSE 0 END,
			hire = COALESCE($2::smallint, hire),
			feedback = COALESCE($3::jsonb, feedback),
			hire_details = COALESCE($4::jsonb, hire_details)
		WHERE id = $1
		RETURNING ` + candidateColumns
	c, err := scanCandidate(s.db.QueryRowContext(ctx, query, id, hire, feedback, hd))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Candidate{}, ErrNotFound
	}
	if err != nil {
		return model.Candidate{}, fmt.Errorf("update hire: %w", err)
	}
	return c, nil
}

// CreateTask implements TaskStore.
func (s *PGStore) CreateTask(ctx context.Context, t model.Task) (_ model.Task, err error) {
	defer track("create_task", time.Now(), &err)

	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	assign := t.AssignTo
	if assign == nil {
		assign = []model.Assignment{}
	}
	assignJSON, err := json.Marshal(assign)
	if err != nil {
		return model.Task{}, fmt.Errorf("encode assign_to: %w", err)
	}
	var completed sql.NullTime
	if t.CompletionDate != nil {
		completed = nullTime(*t.CompletionDate)
	}

	const query = `INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		RETURNING ` + taskColumns
	out, err := scanTask(s.db.QueryRowContext(ctx, query, t.ID, t.Title, t.Description, nullTime(t.Deadline),
		t.Priority, string(assignJSON), t.XPReward, t.BonusMultiplier, int(t.Status), completed, t.CompletedBy,
		t.XPAwarded, t.BonusXP, t.TimingDescription, t.CreatedAt))
	if err != nil {
		return model.Task{}, fmt.Errorf("insert task: %w", err)
	}
	return out, nil
}

// GetTask implements TaskStore.
func (s *PGStore) GetTask(ctx context.Context, id string) (_ model.Task, err error) {
	defer track("get_task", time.Now(), &err)

	const query = `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	t, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Task{}, ErrNotFound
	}
	if err != nil {
		return model.Task{}, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// ListTasks implements TaskStore.
func (s *PGStore) ListTasks(ctx context.Context) (_ []model.Task, err error) {
	defer track("list_tasks", time.Now(), &err)

	rows, err := s.db.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	out := []model.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return out, nil
}

// CompleteTask implements TaskStore. The status predicate makes the transition
// a compare-and-set so two racing completions cannot both win.
func (s *PGStore) CompleteTask(ctx context.Context, id string, c Completion) (_ model.Task, err error) {
	defer track("complete_task", time.Now(), &err)

	at := c.CompletedAt
	if at.IsZero() {
		at = time.Now().UTC()
	}
	const query = `UPDATE tasks
		SET status = 1, completion_date = $2, completed_by = $3,
			xp_awarded = $4, bonus_xp = $5, timing_description = $6
		WHERE id = $1 AND status = 0
		RETURNING ` + taskColumns
	t, err := scanTask(s.db.QueryRowContext(ctx, query, id, at, c.CompletedBy, c.XPAwarded, c.BonusXP, c.TimingDescription))
	if errors.Is(err, sql.ErrNoRows) {
		var exists bool
		if qerr := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM tasks WHERE id = $1)`, id).Scan(&exists); qerr != nil {
			return model.Task{}, fmt.Errorf("check task: %w", qerr)
		}
		if !exists {
			return model.Task{}, ErrNotFound
		}
		return model.Task{}, ErrAlreadyCompleted
	}
	if err != nil {
		return model.Task{}, fmt.Errorf("complete task: %w", err)
	}
	return t, nil
}
