// package repositories provides persistence layer implementations for all model types.
//
// Each repository wraps a *sql.DB handle and owns the SQL for one table:
// users, upload_logs (job lifecycle), and settings (runtime key-value
// overrides). The store serializes its own writes; callers never hold locks
// across repository calls.
package repositories

import (
	"database/sql"
	"time"
)

// nullString converts an optional string column to a *string.
func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

// nullTime converts an optional timestamp column to a *time.Time.
func nullTime(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}
