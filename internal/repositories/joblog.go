package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jefrecantuledesma/j3s-music-upload/internal/models"
	"github.com/jefrecantuledesma/j3s-music-upload/internal/shared"
)

// JobLogRepository persists [models.JobLog] records and enforces the job
// status state machine on every write.
type JobLogRepository struct {
	db *sql.DB
}

// NewJobLogRepository creates a new [JobLogRepository] with the given database connection
func NewJobLogRepository(db *sql.DB) *JobLogRepository {
	return &JobLogRepository{db: db}
}

const jobLogColumns = "id, user_id, upload_type, source, status, file_count, error_message, created_at, completed_at"

// Create inserts a new pending job log and returns its monotonic id.
func (r *JobLogRepository) Create(userID string, kind models.JobKind, source string) (int64, error) {
	if !kind.Valid() {
		return 0, fmt.Errorf("unknown job kind %q", kind)
	}

	result, err := r.db.Exec(
		"INSERT INTO upload_logs (user_id, upload_type, source, status, created_at) VALUES (?, ?, ?, ?, ?)",
		userID, string(kind), source, string(models.StatusPending), time.Now().UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to create job log: %v", shared.ErrStorage, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%w: failed to read job log id: %v", shared.ErrStorage, err)
	}

	return id, nil
}

// UpdateStatus advances a job log through its lifecycle.
//
// Transitions are forward-only; moving a terminal job, or any job backwards,
// fails with [shared.ErrInvalidTransition]. Entering a terminal status stamps
// completed_at in the same write. fileCount and errorMessage are applied only
// when non-nil; errorMessage is meaningful only on the failed path.
func (r *JobLogRepository) UpdateStatus(id int64, status models.JobStatus, fileCount *int, errorMessage *string) error {
	current, err := r.Get(id)
	if err != nil {
		return err
	}

	if !current.Status.CanTransition(status) {
		return fmt.Errorf("%w: %s -> %s", shared.ErrInvalidTransition, current.Status, status)
	}

	sets := []string{"status = ?"}
	args := []any{string(status)}

	if fileCount != nil {
		sets = append(sets, "file_count = ?")
		args = append(args, *fileCount)
	}
	if errorMessage != nil {
		sets = append(sets, "error_message = ?")
		args = append(args, *errorMessage)
	}
	if status.Terminal() {
		sets = append(sets, "completed_at = ?")
		args = append(args, time.Now().UTC())
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE upload_logs SET %s WHERE id = ?", strings.Join(sets, ", "))

	if _, err := r.db.Exec(query, args...); err != nil {
		return fmt.Errorf("%w: failed to update job log %d: %v", shared.ErrStorage, id, err)
	}

	return nil
}

// Get retrieves one job log by id.
func (r *JobLogRepository) Get(id int64) (*models.JobLog, error) {
	row := r.db.QueryRow("SELECT "+jobLogColumns+" FROM upload_logs WHERE id = ?", id)

	log, err := scanJobLog(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: job log %d", shared.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query job log: %v", shared.ErrStorage, err)
	}

	return log, nil
}

// List retrieves job logs newest first. An empty userID lists all users' logs.
func (r *JobLogRepository) List(userID string, limit int) ([]*models.JobLog, error) {
	query := "SELECT " + jobLogColumns + " FROM upload_logs"
	args := []any{}

	if userID != "" {
		query += " WHERE user_id = ?"
		args = append(args, userID)
	}

	query += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query job logs: %v", shared.ErrStorage, err)
	}
	defer rows.Close()

	var logs []*models.JobLog
	for rows.Next() {
		log, err := scanJobLog(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to scan job log: %v", shared.ErrStorage, err)
		}
		logs = append(logs, log)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: row iteration error: %v", shared.ErrStorage, err)
	}

	return logs, nil
}

// scanJobLog reads one row into a JobLog, converting nullable columns.
func scanJobLog(scan func(dest ...any) error) (*models.JobLog, error) {
	var (
		log          models.JobLog
		kind         string
		status       string
		fileCount    sql.NullInt64
		errorMessage sql.NullString
		completedAt  sql.NullTime
	)

	err := scan(&log.ID, &log.UserID, &kind, &log.Source, &status, &fileCount, &errorMessage, &log.Created, &completedAt)
	if err != nil {
		return nil, err
	}

	log.Kind = models.JobKind(kind)
	log.Status = models.JobStatus(status)
	if fileCount.Valid {
		n := int(fileCount.Int64)
		log.FileCount = &n
	}
	log.ErrorMessage = nullString(errorMessage)
	log.CompletedAt = nullTime(completedAt)

	return &log, nil
}
