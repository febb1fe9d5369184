package models

// PvInfo is one candidate line from a MultiPV search: its rank, its score and
// the moves of the line in the engine's own coordinate convention.
type PvInfo struct {
	MultiPV int      `json:"multipv"`
	Score   int      `json:"score"` // centipawns; mate lines are clamped to +-10000
	Moves   []string `json:"moves"`
}

// SearchResultKind classifies the outcome of one search call.
type SearchResultKind int

const (
	// ResultMove means a concrete move was selected.
	ResultMove SearchResultKind = iota
	// ResultCheckmate means the engine declared the game won for the side
	// to move.
	ResultCheckmate
	// ResultResign means no move is available for the side to move.
	ResultResign
)

// SearchResult is the terminal outcome of one search call.
type SearchResult struct {
	Kind SearchResultKind
	Move string // set only for ResultMove
}

// InfoEvent is a parsed "info" line. Each field is present only if the line
// carried it.
type InfoEvent struct {
	MultiPV *int
	CP      *int
	Mate    *int
	PV      []string
}

// BestMoveEvent is a parsed "bestmove" line, the terminal event of a search.
type BestMoveEvent struct {
	Move   string
	Resign bool
	Win    bool
}

// EngineEvent is one typed response event from the engine process. Exactly
// one field is set.
type EngineEvent struct {
	Info *InfoEvent
	Best *BestMoveEvent
}
