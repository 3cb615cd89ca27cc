package repository_test

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okian/internxp/internal/adapters/repository"
	"github.com/okian/internxp/internal/domain/model"
	"github.com/okian/internxp/pkg/logger"
)

var candidateCols = []string{"id", "first_name", "last_name", "full_name", "email", "department", "hire",
	"hire_count", "xp", "xp_history", "badges", "feedback", "hire_details", "created_at"}

var taskCols = []string{"id", "title", "description", "deadline", "priority", "assign_to", "xp_reward",
	"bonus_multiplier", "status", "completion_date", "completed_by", "xp_awarded", "bonus_xp",
	"timing_description", "created_at"}

func newMock(t *testing.T) (*repository.PGStore, sqlmock.Sqlmock) {
	t.Helper()
	require.NoError(t, logger.Init())
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return repository.NewPGStore(db), mock
}

func candidateRow(id string, xp int, history string, badges string) []driver.Value {
	return []driver.Value{id, "Ada", "Lovelace", "Ada Lovelace", "ada@example.com", "Engineering", 1, 1, xp,
		[]byte(history), []byte(badges), nil, []byte(`{"supervisor":"Babbage"}`), time.Unix(1700000000, 0)}
}

func TestPGStore_GetCandidate(t *testing.T) {
	store, mock := newMock(t)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta("FROM candidates WHERE id = $1")).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows(candidateCols).AddRow(candidateRow("c1", 20,
			`[{"points":20,"source":"task","description":"Task completed: A","awardedBy":"m","timestamp":"2026-01-01T00:00:00Z"}]`,
			`[]`)...))

	c, err := store.GetCandidate(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "c1", c.ID)
	assert.Equal(t, model.HireHired, c.Hire)
	assert.Equal(t, 20, c.XP)
	assert.Len(t, c.XPHistory, 1)
	assert.Equal(t, model.SourceTask, c.XPHistory[0].Source)
	assert.Empty(t, c.Badges)
	require.NotNil(t, c.HireDetails)
	assert.Equal(t, "Babbage", c.HireDetails.Supervisor)

	mock.ExpectQuery(regexp.QuoteMeta("FROM candidates WHERE id = $1")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(candidateCols))

	_, err = store.GetCandidate(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGStore_CreateCandidateDuplicateEmail(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO candidates")).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	_, err := store.CreateCandidate(context.Background(), model.Candidate{FullName: "Ada", Email: "ada@example.com"})
	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGStore_CreateCandidateUnencodableHistory(t *testing.T) {
	store, mock := newMock(t)

	_, err := store.CreateCandidate(context.Background(), model.Candidate{
		FullName:  "Ada",
		Email:     "ada@example.com",
		XP:        5,
		XPHistory: []model.XPEntry{{Points: 5, Source: model.SourceManual, Timestamp: time.Date(10000, 1, 1, 0, 0, 0, 0, time.UTC)}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "encode xp_history")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGStore_Counts(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(SUM(jsonb_array_length(badges)), 0) FROM candidates")).
		WillReturnRows(sqlmock.NewRows([]string{"candidates", "hired", "rejected", "xp", "badges", "tasks", "completed"}).
			AddRow(10, 4, 2, 350, 7, 5, 3))

	c, err := store.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, repository.Counts{
		Candidates: 10, Hired: 4, Rejected: 2, Undecided: 4,
		TotalXP: 350, Badges: 7, Tasks: 5, TasksCompleted: 3,
	}, c)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGStore_ApplyAward(t *testing.T) {
	store, mock := newMock(t)
	ctx := context.Background()
	at := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	award := repository.Award{
		Entries: []model.XPEntry{
			{Points: 20, Source: model.SourceTask, SourceID: "w1", Description: "Task completed: A", AwardedBy: "m", Timestamp: at},
			{Points: 9, Source: model.SourceTaskBonus, SourceID: "w1", Description: "bonus", AwardedBy: "m", Timestamp: at},
		},
	}
	entriesJSON, err := json.Marshal(award.Entries)
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta("SET xp = xp + $2")).
		WithArgs("c1", 29, string(entriesJSON), "[]").
		WillReturnRows(sqlmock.NewRows(candidateCols).AddRow(candidateRow("c1", 29, string(entriesJSON), `[]`)...))

	c, err := store.ApplyAward(ctx, "c1", award)
	require.NoError(t, err)
	assert.Equal(t, 29, c.XP)
	assert.Equal(t, c.XP, c.HistorySum())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGStore_ApplyAwardMisses(t *testing.T) {
	store, mock := newMock(t)
	ctx := context.Background()
	correction := repository.Award{Entries: []model.XPEntry{{Points: -50, Source: model.SourceManual}}}

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE candidates")).WillReturnRows(sqlmock.NewRows(candidateCols))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).WithArgs("c1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	_, err := store.ApplyAward(ctx, "c1", correction)
	assert.ErrorIs(t, err, repository.ErrNegativeBalance)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE candidates")).WillReturnRows(sqlmock.NewRows(candidateCols))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	_, err = store.ApplyAward(ctx, "ghost", correction)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGStore_ListCandidatesFilters(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE hire = ANY($1) AND (full_name ILIKE $2")).
		WithArgs(pq.Array([]int64{1}), "%ada\\_l%").
		WillReturnRows(sqlmock.NewRows(candidateCols).AddRow(candidateRow("c1", 0, `[]`, `[]`)...))

	out, err := store.ListCandidates(context.Background(), repository.CandidateFilter{
		Statuses: []model.HireStatus{model.HireHired},
		Query:    "ada_l",
	})
	require.NoError(t, err)
	assert.Len(t, out, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGStore_UpdateHire(t *testing.T) {
	store, mock := newMock(t)
	hired := model.HireHired

	mock.ExpectQuery(regexp.QuoteMeta("hire_count = hire_count + CASE")).
		WithArgs("c1", 1, nil, nil).
		WillReturnRows(sqlmock.NewRows(candidateCols).AddRow(candidateRow("c1", 0, `[]`, `[]`)...))

	c, err := store.UpdateHire(context.Background(), "c1", repository.HireUpdate{Hire: &hired})
	require.NoError(t, err)
	assert.Equal(t, 1, c.HireCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGStore_CompleteTask(t *testing.T) {
	store, mock := newMock(t)
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	completion := repository.Completion{CompletedAt: at, CompletedBy: "m", XPAwarded: 29, BonusXP: 9, TimingDescription: "early"}

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1 AND status = 0")).
		WithArgs("w1", at, "m", 29, 9, "early").
		WillReturnRows(sqlmock.NewRows(taskCols).AddRow("w1", "Docs", "", at.Add(96*time.Hour), "high",
			[]byte(`[{"id":"c1","type":"intern","name":"Ada"}]`), 20, 1.5, 1, at, "m", 29, 9, "early", at))

	task, err := store.CompleteTask(ctx, "w1", completion)
	require.NoError(t, err)
	assert.True(t, task.Completed())
	assert.Equal(t, model.TargetIntern, task.AssignTo[0].TargetType)
	require.NotNil(t, task.CompletionDate)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1 AND status = 0")).WillReturnRows(sqlmock.NewRows(taskCols))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM tasks")).WithArgs("w1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	_, err = store.CompleteTask(ctx, "w1", completion)
	assert.ErrorIs(t, err, repository.ErrAlreadyCompleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGStore_Migrate(t *testing.T) {
	store, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS candidates")).WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, store.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
