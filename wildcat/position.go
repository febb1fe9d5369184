package wildcat

import "fmt"

// StartingSFEN is the Wild Cat Shogi opening position.
const StartingSFEN = "bkr/p1p/3/P1P/RKB b - 1"

// Color of a player. Black (sente) moves first and is written in uppercase
// in SFEN.
type Color int

const (
	Black Color = iota
	White
)

func (c Color) Flip() Color {
	if c == Black {
		return White
	}
	return Black
}

func (c Color) String() string {
	if c == Black {
		return "black"
	}
	return "white"
}

// Piece on a board square. The zero value marks an empty square.
type Piece struct {
	Kind     byte // lowercase piece letter
	Color    Color
	Promoted bool
}

// Position is a full game state: board, both hands, side to move and the SFEN
// move counter. Values are cheap to copy; Apply returns a new Position and
// never mutates the receiver.
type Position struct {
	board [NumRanks][NumFiles]Piece
	hands [2][26]int8 // captured piece counts, indexed by Kind-'a'
	turn  Color
	ply   int
}

// StartPos returns the opening position.
func StartPos() Position {
	pos, err := ParseSFEN(StartingSFEN)
	if err != nil {
		panic(err)
	}
	return pos
}

// Turn reports the side to move.
func (p Position) Turn() Color { return p.turn }

// Ply reports the SFEN move counter (1 at the opening position).
func (p Position) Ply() int { return p.ply }

func (p Position) at(sq Square) Piece {
	return p.board[sq.Rank][sq.File-1]
}

func (p *Position) set(sq Square, pc Piece) {
	p.board[sq.Rank][sq.File-1] = pc
}

// Apply plays a move and returns the resulting position. Only structural
// legality is checked (the mover's piece on the from-square, no capture of
// own pieces, drops from hand onto empty squares); movement rules are the
// engine's responsibility since it only ever proposes legal moves.
func (p Position) Apply(m Move) (Position, error) {
	if m.Drop {
		if !inBounds(m.To) {
			return p, fmt.Errorf("drop target %s off board", m.To)
		}
		if m.Piece < 'a' || m.Piece > 'z' {
			return p, fmt.Errorf("invalid drop piece %q", m.Piece)
		}
		if p.hands[p.turn][m.Piece-'a'] == 0 {
			return p, fmt.Errorf("%s has no %c in hand", p.turn, m.Piece)
		}
		if p.at(m.To).Kind != 0 {
			return p, fmt.Errorf("drop target %s occupied", m.To)
		}
		p.hands[p.turn][m.Piece-'a']--
		p.set(m.To, Piece{Kind: m.Piece, Color: p.turn})
	} else {
		if !inBounds(m.From) || !inBounds(m.To) {
			return p, fmt.Errorf("move %s off board", m)
		}
		pc := p.at(m.From)
		if pc.Kind == 0 {
			return p, fmt.Errorf("no piece on %s", m.From)
		}
		if pc.Color != p.turn {
			return p, fmt.Errorf("piece on %s does not belong to %s", m.From, p.turn)
		}
		if captured := p.at(m.To); captured.Kind != 0 {
			if captured.Color == p.turn {
				return p, fmt.Errorf("own piece on %s", m.To)
			}
			// captured pieces go to hand unpromoted
			p.hands[p.turn][captured.Kind-'a']++
		}
		if m.Promote {
			pc.Promoted = true
		}
		p.set(m.From, Piece{})
		p.set(m.To, pc)
	}
	p.turn = p.turn.Flip()
	p.ply++
	return p, nil
}

func inBounds(sq Square) bool {
	return sq.File >= 1 && sq.File <= NumFiles && sq.Rank >= 0 && sq.Rank < NumRanks
}
