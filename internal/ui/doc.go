// Package ui implements an interactive terminal shell using bubbletea's Elm architecture.
//
// The TUI provides a menu-driven workflow for playlist maintenance:
//  1. [MenuView] : Pick a maintenance task (duplicates, explicit content, listening stats)
//  2. [InputView] : Enter the target playlist URL, URI, or ID
//  3. [ConfirmView] : Confirm before any mutating operation
//  4. [RunView] : Monitor real-time progress updates
//  5. [ResultView] : Display the rendered report
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the playlist engine, providing
// non-blocking status reporting while a task runs.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
