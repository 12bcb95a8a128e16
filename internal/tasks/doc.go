// Package tasks orchestrates the playlist maintenance operations: duplicate
// cleanup, explicit-content scanning and the clean actions derived from them.
//
// # Engine
//
// [PlaylistEngine] implements [Engine] against the services layer. Operations
// accept a progress channel; updates are sent non-blocking so a slow or absent
// consumer never stalls the work.
//
// # Duplicate Detection
//
// A recording's identity is its [TrackKey]: the normalized title, the sorted
// normalized artist set, and the duration rounded to seconds. Two keys whose
// durations fall within the tolerance merge into one group. Relaxed
// normalization strips release markers (remasters, edits, featuring credits),
// so "Song" and "Song - Remastered 2012" collapse; strict mode keeps them
// distinct.
//
// Cleanup keeps the earliest-added entry of each group. Because the Spotify
// removal endpoint deletes every entry matching a URI, the plan removes all
// URIs of a duplicated key and re-adds the keeper afterwards. Cleaning an
// already-clean playlist is a no-op.
//
// # Explicit Filtering
//
// The metadata scan trusts Spotify's explicit flag. The lyrics scan
// additionally fetches lyrics for unflagged tracks and checks them against a
// banned word list; tracks whose lyrics cannot be found are reported
// separately rather than failing the scan. Clean actions either remove the
// flagged tracks in place or build a private "Clean version of X" copy,
// preserving the relative order of the remaining tracks.
package tasks
