package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"recruitflow/internal/domain"
)

// PostgresStore is the production Store. Optimistic writes are expressed
// as UPDATE ... WHERE id = $1 AND version = $2; zero rows affected means
// either the row vanished or the version went stale, disambiguated with a
// follow-up existence check.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(dataSourceName string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dataSourceName)
	if err != nil {
		return nil, errors.Wrap(err, "opening postgres")
	}

	// Connection pool tuning
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "pinging postgres")
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) CreateJob(ctx context.Context, job *domain.Job) error {
	job.Version = 1
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO jobs (id, title, required_skills, pipeline_stages, status, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		job.ID, job.Title, pq.Array(job.RequiredSkills), pq.Array(job.PipelineStages),
		job.Status, job.Version, job.CreatedAt, job.UpdatedAt,
	)
	return errors.Wrap(err, "inserting job")
}

func (s *PostgresStore) GetJob(ctx context.Context, id string) (*domain.Job, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, required_skills, pipeline_stages, status, version, created_at, updated_at
		FROM jobs WHERE id = $1`, id)
	return scanJob(row, id)
}

func scanJob(row *sql.Row, id string) (*domain.Job, error) {
	var j domain.Job
	err := row.Scan(&j.ID, &j.Title, pq.Array(&j.RequiredSkills), pq.Array(&j.PipelineStages),
		&j.Status, &j.Version, &j.CreatedAt, &j.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.Wrapf(domain.ErrNotFound, "job %s", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "scanning job")
	}
	return &j, nil
}

func (s *PostgresStore) UpdateJob(ctx context.Context, job *domain.Job) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE jobs SET title = $1, required_skills = $2, pipeline_stages = $3, status = $4,
		       version = version + 1, updated_at = $5
		WHERE id = $6 AND version = $7`,
		job.Title, pq.Array(job.RequiredSkills), pq.Array(job.PipelineStages), job.Status,
		time.Now().UTC(), job.ID, job.Version,
	)
	if err != nil {
		return errors.Wrap(err, "updating job")
	}
	if err := s.checkWrite(ctx, res, "jobs", job.ID); err != nil {
		return err
	}
	job.Version++
	return nil
}

func (s *PostgresStore) DeleteJob(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning delete transaction")
	}
	defer tx.Rollback()

	// children first, the FK constraints are not deferrable
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM notes WHERE candidate_id IN (SELECT id FROM candidates WHERE job_id = $1)`, id); err != nil {
		return errors.Wrap(err, "cascading notes")
	}
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM interviews WHERE candidate_id IN (SELECT id FROM candidates WHERE job_id = $1)`, id); err != nil {
		return errors.Wrap(err, "cascading interviews")
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM candidates WHERE job_id = $1`, id); err != nil {
		return errors.Wrap(err, "cascading candidates")
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting job")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.Wrapf(domain.ErrNotFound, "job %s", id)
	}
	return errors.Wrap(tx.Commit(), "committing delete")
}

func (s *PostgresStore) ListJobs(ctx context.Context) ([]*domain.Job, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, required_skills, pipeline_stages, status, version, created_at, updated_at
		FROM jobs ORDER BY created_at`)
	if err != nil {
		return nil, errors.Wrap(err, "listing jobs")
	}
	defer rows.Close()

	var jobs []*domain.Job
	for rows.Next() {
		var j domain.Job
		if err := rows.Scan(&j.ID, &j.Title, pq.Array(&j.RequiredSkills), pq.Array(&j.PipelineStages),
			&j.Status, &j.Version, &j.CreatedAt, &j.UpdatedAt); err != nil {
			return nil, errors.Wrap(err, "scanning job")
		}
		jobs = append(jobs, &j)
	}
	return jobs, rows.Err()
}

const candidateColumns = `id, job_id, name, email, phone, skills, experience_years,
	matching_score, status, status_history, last_activity, version, created_at`

func (s *PostgresStore) CreateCandidate(ctx context.Context, c *domain.Candidate) error {
	c.Version = 1
	history, err := json.Marshal(c.StatusHistory)
	if err != nil {
		return errors.Wrap(err, "marshalling status history")
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO candidates (`+candidateColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		c.ID, c.JobID, c.Name, c.Email, c.Phone, pq.Array(c.Skills), c.ExperienceYears,
		c.MatchingScore, c.Status, history, c.LastActivity, c.Version, c.CreatedAt,
	)
	return errors.Wrap(err, "inserting candidate")
}

func (s *PostgresStore) GetCandidate(ctx context.Context, id string) (*domain.Candidate, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+candidateColumns+` FROM candidates WHERE id = $1`, id)
	c, err := scanCandidateRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(domain.ErrNotFound, "candidate %s", id)
	}
	return c, err
}

func (s *PostgresStore) GetCandidateByEmail(ctx context.Context, jobID, email string) (*domain.Candidate, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+candidateColumns+` FROM candidates WHERE job_id = $1 AND lower(email) = lower($2)`,
		jobID, email)
	c, err := scanCandidateRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(domain.ErrNotFound, "candidate %s for job %s", email, jobID)
	}
	return c, err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCandidateRow(row rowScanner) (*domain.Candidate, error) {
	var c domain.Candidate
	var history []byte
	err := row.Scan(&c.ID, &c.JobID, &c.Name, &c.Email, &c.Phone, pq.Array(&c.Skills),
		&c.ExperienceYears, &c.MatchingScore, &c.Status, &history, &c.LastActivity,
		&c.Version, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(history, &c.StatusHistory); err != nil {
		return nil, errors.Wrap(err, "unmarshalling status history")
	}
	return &c, nil
}

func (s *PostgresStore) UpdateCandidate(ctx context.Context, c *domain.Candidate) error {
	res, err := s.updateCandidateExec(ctx, s.db, c)
	if err != nil {
		return err
	}
	if err := s.checkWrite(ctx, res, "candidates", c.ID); err != nil {
		return err
	}
	c.Version++
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func (s *PostgresStore) updateCandidateExec(ctx context.Context, db execer, c *domain.Candidate) (sql.Result, error) {
	history, err := json.Marshal(c.StatusHistory)
	if err != nil {
		return nil, errors.Wrap(err, "marshalling status history")
	}
	res, err := db.ExecContext(ctx, `
		UPDATE candidates SET name = $1, email = $2, phone = $3, skills = $4,
		       experience_years = $5, matching_score = $6, status = $7,
		       status_history = $8, last_activity = $9, version = version + 1
		WHERE id = $10 AND version = $11`,
		c.Name, c.Email, c.Phone, pq.Array(c.Skills), c.ExperienceYears, c.MatchingScore,
		c.Status, history, c.LastActivity, c.ID, c.Version,
	)
	return res, errors.Wrap(err, "updating candidate")
}

func (s *PostgresStore) DeleteCandidate(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning delete transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM notes WHERE candidate_id = $1`, id); err != nil {
		return errors.Wrap(err, "cascading notes")
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM interviews WHERE candidate_id = $1`, id); err != nil {
		return errors.Wrap(err, "cascading interviews")
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM candidates WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting candidate")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.Wrapf(domain.ErrNotFound, "candidate %s", id)
	}
	return errors.Wrap(tx.Commit(), "committing delete")
}

func (s *PostgresStore) ListCandidates(ctx context.Context, jobID string, filter CandidateFilter) ([]*domain.Candidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM candidates WHERE job_id = $1`
	args := []interface{}{jobID}
	i := 2

	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, st := range filter.Statuses {
			statuses = append(statuses, string(st))
		}
		query += fmt.Sprintf(" AND status = ANY($%d)", i)
		args = append(args, pq.Array(statuses))
		i++
	}
	if filter.Search != "" {
		query += fmt.Sprintf(" AND (name ILIKE $%d OR email ILIKE $%d)", i, i)
		args = append(args, "%"+strings.TrimSpace(filter.Search)+"%")
		i++
	}
	query += " ORDER BY created_at"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "listing candidates")
	}
	defer rows.Close()

	var out []*domain.Candidate
	for rows.Next() {
		c, err := scanCandidateRow(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scanning candidate")
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CreateInterview(ctx context.Context, iv *domain.Interview, candidate *domain.Candidate) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning interview transaction")
	}
	defer tx.Rollback()

	iv.Version = 1
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO interviews (id, candidate_id, job_id, scheduled_at, interviewer, location, kind, status, feedback, version, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		iv.ID, iv.CandidateID, iv.JobID, iv.ScheduledAt, iv.Interviewer, iv.Location,
		iv.Kind, iv.Status, iv.Feedback, iv.Version, iv.CreatedAt,
	); err != nil {
		return errors.Wrap(err, "inserting interview")
	}
	if candidate != nil {
		res, err := s.updateCandidateExec(ctx, tx, candidate)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return errors.Wrapf(domain.ErrConcurrencyConflict, "candidate %s version %d", candidate.ID, candidate.Version)
		}
		candidate.Version++
	}
	return errors.Wrap(tx.Commit(), "committing interview")
}

func (s *PostgresStore) GetInterview(ctx context.Context, id string) (*domain.Interview, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, candidate_id, job_id, scheduled_at, interviewer, location, kind, status, feedback, version, created_at
		FROM interviews WHERE id = $1`, id)
	var iv domain.Interview
	err := row.Scan(&iv.ID, &iv.CandidateID, &iv.JobID, &iv.ScheduledAt, &iv.Interviewer,
		&iv.Location, &iv.Kind, &iv.Status, &iv.Feedback, &iv.Version, &iv.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.Wrapf(domain.ErrNotFound, "interview %s", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "scanning interview")
	}
	return &iv, nil
}

func (s *PostgresStore) UpdateInterview(ctx context.Context, iv *domain.Interview) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE interviews SET scheduled_at = $1, interviewer = $2, location = $3, kind = $4,
		       status = $5, feedback = $6, version = version + 1
		WHERE id = $7 AND version = $8`,
		iv.ScheduledAt, iv.Interviewer, iv.Location, iv.Kind, iv.Status, iv.Feedback,
		iv.ID, iv.Version,
	)
	if err != nil {
		return errors.Wrap(err, "updating interview")
	}
	if err := s.checkWrite(ctx, res, "interviews", iv.ID); err != nil {
		return err
	}
	iv.Version++
	return nil
}

func (s *PostgresStore) ListInterviews(ctx context.Context, candidateID string) ([]*domain.Interview, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, candidate_id, job_id, scheduled_at, interviewer, location, kind, status, feedback, version, created_at
		FROM interviews WHERE candidate_id = $1 ORDER BY scheduled_at`, candidateID)
	if err != nil {
		return nil, errors.Wrap(err, "listing interviews")
	}
	defer rows.Close()

	var out []*domain.Interview
	for rows.Next() {
		var iv domain.Interview
		if err := rows.Scan(&iv.ID, &iv.CandidateID, &iv.JobID, &iv.ScheduledAt, &iv.Interviewer,
			&iv.Location, &iv.Kind, &iv.Status, &iv.Feedback, &iv.Version, &iv.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scanning interview")
		}
		out = append(out, &iv)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CreateNote(ctx context.Context, note *domain.Note) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notes (id, candidate_id, author_id, text, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		note.ID, note.CandidateID, note.AuthorID, note.Text, note.CreatedAt,
	)
	return errors.Wrap(err, "inserting note")
}

func (s *PostgresStore) ListNotes(ctx context.Context, candidateID string) ([]*domain.Note, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, candidate_id, author_id, text, created_at
		FROM notes WHERE candidate_id = $1 ORDER BY created_at DESC`, candidateID)
	if err != nil {
		return nil, errors.Wrap(err, "listing notes")
	}
	defer rows.Close()

	var out []*domain.Note
	for rows.Next() {
		var n domain.Note
		if err := rows.Scan(&n.ID, &n.CandidateID, &n.AuthorID, &n.Text, &n.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scanning note")
		}
		out = append(out, &n)
	}
	return out, rows.Err()
}

// checkWrite turns a zero-row optimistic UPDATE into NotFound or
// ConcurrencyConflict depending on whether the row still exists.
func (s *PostgresStore) checkWrite(ctx context.Context, res sql.Result, table, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "reading rows affected")
	}
	if n > 0 {
		return nil
	}
	var exists bool
	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE id = $1)`, table)
	if err := s.db.QueryRowContext(ctx, query, id).Scan(&exists); err != nil {
		return errors.Wrap(err, "checking row existence")
	}
	if !exists {
		return errors.Wrapf(domain.ErrNotFound, "%s %s", strings.TrimSuffix(table, "s"), id)
	}
	return errors.Wrapf(domain.ErrConcurrencyConflict, "%s %s", strings.TrimSuffix(table, "s"), id)
}
