package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/jefrecantuledesma/j3s-music-upload/internal/models"
)

var _ list.Item = logItem{}

// logItem wraps [models.JobLog] to implement [list.Item].
type logItem struct {
	log *models.JobLog
}

func (i logItem) FilterValue() string { return i.log.Source }
func (i logItem) Title() string {
	return fmt.Sprintf("#%d %s • %s", i.log.ID, i.log.Kind, i.log.Source)
}
func (i logItem) Description() string {
	desc := string(i.log.Status)
	if i.log.FileCount != nil {
		desc = fmt.Sprintf("%s • %d file(s)", desc, *i.log.FileCount)
	}
	return fmt.Sprintf("%s • %s", desc, i.log.Created.Format("2006-01-02 15:04"))
}
