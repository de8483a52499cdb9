// Package ui implements the interactive catalog browser using bubbletea's Elm architecture.
//
// The TUI has three views:
//  1. [BrowseView] : Walk the folder tree, expand folders and play tracks
//  2. [FeaturedView] : A random sample of the catalog
//  3. [ErrorView] : Shown when the catalog cannot be fetched, with a retry key
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Fetches and playback commands run as [tea.Cmd]s; audio progress flows back from the player's channels.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, /, space, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
