package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/wereb/internal/models"
	"github.com/desertthunder/wereb/internal/player"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgTracksFetched MsgKind = iota
	MsgPlayback
	MsgProgress
	MsgTrackEnded
)

type fetchResult struct {
	tracks []models.Track
	err    error
}

// tracksFetchedMsg is the constructor for [MsgTracksFetched]
func tracksFetchedMsg(tracks []models.Track, err error) Msg {
	return Msg{kind: MsgTracksFetched, data: fetchResult{tracks, err}}
}

// playbackMsg is the constructor for [MsgPlayback], the outcome of a transport action
func playbackMsg(err error) Msg {
	return Msg{kind: MsgPlayback, data: err}
}

// progressMsg is the constructor for [MsgProgress]
func progressMsg(status player.Status) Msg {
	return Msg{kind: MsgProgress, data: status}
}

// trackEndedMsg is the constructor for [MsgTrackEnded]
func trackEndedMsg() Msg {
	return Msg{kind: MsgTrackEnded}
}
