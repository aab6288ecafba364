package tui

type state int

const (
	playlistState state = iota
	searchState
	uploadState
	confirmState
	errorState
)
