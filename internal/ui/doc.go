// Package ui implements the terminal browser for the upload job history.
//
// The model follows the Elm architecture bubbletea expects: a single [Model]
// holding all state, messages constructed in message.go, and key bindings in
// key_map.go. The list view shows recent jobs newest first; selecting one
// opens a detail view with the full record, including the error message of a
// failed job.
package ui
