// Package ui implements an interactive catalog browser using bubbletea's Elm architecture.
//
// The TUI provides a drill-down workflow over the catalog:
//  1. [ArtistListView] : Browse artists
//  2. [AlbumListView] : Albums of the selected artist
//  3. [SongListView] : Songs of the selected album
//  4. [StatsView] : The four statistics views, reachable from anywhere with s
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Catalog reads run as commands against the CRUD services so the UI never blocks on storage.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, s, r, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
