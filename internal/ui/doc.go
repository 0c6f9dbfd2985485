// Package ui implements the interactive task browser.
//
// The model follows the Elm-style update loop from bubbletea: every task
// mutation (toggle, delete) is dispatched through the replication
// coordinator's mutation point and the list re-projects from a fresh
// snapshot copy, so the TUI never holds state the engine does not.
// Deleting a calendar-derived task tombstones its event exactly as the
// CLI delete does.
package ui
