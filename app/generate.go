// Self-play loop: Black plays the strongest line, White deliberately plays
// the weakest, and the position just before the resulting checkmate becomes
// a tsume puzzle.

package app

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/Arborescent/wildcat-shogi/app/models"
	"github.com/Arborescent/wildcat-shogi/wildcat"
)

// Searcher is the move oracle the simulator drives. *USIEngine implements it;
// tests substitute a scripted double.
type Searcher interface {
	NewGame() error
	SetPosition(moveHistory []string) error
	BestMove() (models.SearchResult, error)
	WorstMove() (models.SearchResult, error)
}

// GeneratorConfig configures the puzzle generator.
type GeneratorConfig struct {
	MaxMoves    int // ply ceiling per game before it is declared a no-result
	MaxAttempts int // simulations per requested puzzle before giving up
	Logger      zerolog.Logger
}

// Generator produces tsume puzzles by simulating games against a Searcher.
type Generator struct {
	cfg GeneratorConfig
	log zerolog.Logger
	eng Searcher
}

// NewGenerator creates a generator. Zero config values get the defaults the
// tool ships with.
func NewGenerator(cfg GeneratorConfig, eng Searcher) *Generator {
	if cfg.MaxMoves == 0 {
		cfg.MaxMoves = 300
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = 10
	}
	return &Generator{cfg: cfg, log: cfg.Logger, eng: eng}
}

type gameOutcome int

const (
	outcomeCheckmate gameOutcome = iota
	outcomeNoResult
	outcomeError
)

func (o gameOutcome) String() string {
	switch o {
	case outcomeCheckmate:
		return "checkmate"
	case outcomeNoResult:
		return "no-result"
	default:
		return "error"
	}
}

// Run generates up to target puzzles, writing one SFEN per line as they are
// accepted, and returns how many were. Slots whose attempt budget runs out
// are skipped, so the run may produce fewer puzzles than requested.
func (g *Generator) Run(ctx context.Context, w io.Writer, target int) (int, error) {
	g.log.Info().Int("target", target).Msg("puzzle generation started")

	accepted := 0
	for slot := 0; slot < target; slot++ {
		select {
		case <-ctx.Done():
			return accepted, ctx.Err()
		default:
		}

		sfen, ok := g.generateOne()
		if !ok {
			g.log.Warn().Int("slot", slot).Int("attempts", g.cfg.MaxAttempts).
				Msg("no checkmate found, slot skipped")
			continue
		}
		if _, err := fmt.Fprintln(w, sfen); err != nil {
			return accepted, fmt.Errorf("write puzzle: %w", err)
		}
		accepted++
		g.log.Info().Int("accepted", accepted).Int("target", target).Str("sfen", sfen).
			Msg("puzzle recorded")
	}
	return accepted, nil
}

// generateOne retries the simulation until a game ends in checkmate or the
// attempt budget runs out. No-results and errors are discarded alike.
func (g *Generator) generateOne() (string, bool) {
	for attempt := 1; attempt <= g.cfg.MaxAttempts; attempt++ {
		sfen, outcome := g.simulate()
		if outcome == outcomeCheckmate {
			return sfen, true
		}
		g.log.Debug().Int("attempt", attempt).Stringer("outcome", outcome).
			Msg("attempt discarded")
	}
	return "", false
}

// simulate plays one game. Black asks for the best move, White for the worst,
// so Black should end up delivering mate; every engine move is translated
// into the library's file convention before being applied to the
// authoritative position. Returns the normalized SFEN of the position just
// before the decisive move when the game ends in a checkmate equivalent.
func (g *Generator) simulate() (string, gameOutcome) {
	if err := g.eng.NewGame(); err != nil {
		return "", outcomeError
	}

	pos := wildcat.StartPos()
	var moveHistory []string
	blackTurn := true
	sfenBeforeLastMove := ""

	for ply := 0; ply < g.cfg.MaxMoves; ply++ {
		currentSFEN := PositionOnlySFEN(pos.SFEN())

		if err := g.eng.SetPosition(moveHistory); err != nil {
			g.log.Debug().Err(err).Msg("set position failed")
			return "", outcomeError
		}

		var result models.SearchResult
		var err error
		if blackTurn {
			result, err = g.eng.BestMove()
		} else {
			result, err = g.eng.WorstMove()
		}
		if err != nil {
			g.log.Debug().Err(err).Int("ply", ply).Msg("search failed")
			return "", outcomeError
		}

		switch result.Kind {
		case models.ResultResign, models.ResultCheckmate:
			// either no legal reply exists (a loss, shogi has no
			// stalemate) or the engine declared the game decided; the
			// puzzle is the position before the decisive move, flipped
			// when needed so Black is the attacker
			if sfenBeforeLastMove == "" {
				return "", outcomeError
			}
			return EnsureBlackToMove(sfenBeforeLastMove), outcomeCheckmate

		case models.ResultMove:
			sfenBeforeLastMove = currentSFEN

			mv, err := wildcat.ParseMove(ConvertMoveFiles(result.Move))
			if err != nil {
				g.log.Debug().Err(err).Str("move", result.Move).Msg("bad move token")
				return "", outcomeError
			}
			next, err := pos.Apply(mv)
			if err != nil {
				g.log.Debug().Err(err).Str("move", result.Move).Msg("move rejected")
				return "", outcomeError
			}
			pos = next

			// history keeps the engine's own convention
			moveHistory = append(moveHistory, result.Move)
			blackTurn = !blackTurn
		}
	}

	return "", outcomeNoResult
}
