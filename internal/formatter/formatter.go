// package formatter exports upload job history to various formats (CSV, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/jefrecantuledesma/j3s-music-upload/internal/models"
)

const timeLayout = time.RFC3339

// ExportToCSV converts job logs to CSV with columns: ID, User, Kind, Source, Status, Files, Created, Completed, Error
func ExportToCSV(logs []*models.JobLog) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "User", "Kind", "Source", "Status", "Files", "Created", "Completed", "Error"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, l := range logs {
		record := []string{
			strconv.FormatInt(l.ID, 10),
			l.UserID,
			string(l.Kind),
			l.Source,
			string(l.Status),
			formatCount(l.FileCount),
			l.Created.Format(timeLayout),
			formatTime(l.CompletedAt),
			formatMessage(l.ErrorMessage),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToText converts job logs to a human-readable listing.
func ExportToText(logs []*models.JobLog) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Jobs: %d\n\n", len(logs)))
	for i, l := range logs {
		buf.WriteString(fmt.Sprintf("%d. [%s] %s %s (%s)\n", i+1, l.Status, l.Kind, l.Source, l.Created.Format(timeLayout)))
		if l.FileCount != nil {
			buf.WriteString(fmt.Sprintf("   files: %d\n", *l.FileCount))
		}
		if l.ErrorMessage != nil {
			buf.WriteString(fmt.Sprintf("   error: %s\n", *l.ErrorMessage))
		}
	}

	return buf.Bytes(), nil
}

// ExportToJSON generates a pretty-printed JSON dump of job logs.
func ExportToJSON(logs []*models.JobLog) ([]byte, error) {
	return json.MarshalIndent(logs, "", "  ")
}

func formatCount(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(timeLayout)
}

func formatMessage(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
