package ui

import (
	"github.com/charmbracelet/bubbles/list"
)

// Action enumerates the maintenance operations reachable from the main menu.
type Action int

const (
	ActionCheckDuplicates Action = iota
	ActionCleanDuplicates
	ActionScanExplicit
	ActionCleanExplicit
	ActionTopArtists
	ActionTopTracks
)

var _ list.Item = menuItem{}

// menuItem wraps an [Action] to implement [list.Item].
type menuItem struct {
	action Action
	title  string
	desc   string
}

func (i menuItem) FilterValue() string { return i.title }
func (i menuItem) Title() string       { return i.title }
func (i menuItem) Description() string { return i.desc }

func menuItems() []list.Item {
	return []list.Item{
		menuItem{ActionCheckDuplicates, "Check duplicates", "Report duplicate entries in a playlist"},
		menuItem{ActionCleanDuplicates, "Clean duplicates", "Remove duplicate entries, keeping the oldest"},
		menuItem{ActionScanExplicit, "Scan explicit", "Report explicit songs in a playlist"},
		menuItem{ActionCleanExplicit, "Clean explicit", "Remove explicit songs from a playlist"},
		menuItem{ActionTopArtists, "Top artists", "Show your most listened artists"},
		menuItem{ActionTopTracks, "Top tracks", "Show your most listened tracks"},
	}
}

// needsPlaylist reports whether the action operates on a playlist.
func (a Action) needsPlaylist() bool {
	return a != ActionTopArtists && a != ActionTopTracks
}

// mutates reports whether the action modifies the playlist and needs confirmation.
func (a Action) mutates() bool {
	return a == ActionCleanDuplicates || a == ActionCleanExplicit
}
