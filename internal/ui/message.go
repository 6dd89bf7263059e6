package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jefrecantuledesma/j3s-music-upload/internal/models"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var _ tea.Msg = Msg{}

const (
	MsgLogsFetched MsgKind = iota
)

// logsFetchedMsg is the constructor for [MsgLogsFetched]
func logsFetchedMsg(logs []*models.JobLog, err error) Msg {
	return Msg{
		kind: MsgLogsFetched,
		data: struct {
			logs []*models.JobLog
			err  error
		}{logs, err},
	}
}
