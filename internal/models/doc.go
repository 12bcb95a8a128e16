// Package models defines domain entities and persistence interfaces for the playlist maintenance tool.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs representing Spotify API data
//   - [Playlist] : Playlist metadata
//   - [Track] : Playlist entry with duration, explicit flag and position
//   - [PlaylistExport] : Playlist with complete track listing
//   - [TopArtist], [TopTrack] : Entries of the user's listening rankings
//   - [UserProfile] : The authenticated account
//
// 2. Persistent Entities: Database-backed models
//   - [ScanRecord] : One row of operation history (what ran, where, counts)
//
// Persistent entities implement the Model interface providing identity,
// timestamps and validation. The Repository[T] interface defines standard CRUD
// operations for database access.
package models
