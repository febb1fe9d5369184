package wildcat

import "fmt"

// Board dimensions for Wild Cat Shogi: files 1..3 left to right,
// ranks 'a'..'e' top to bottom.
const (
	NumFiles = 3
	NumRanks = 5
)

// Square addresses one board cell.
type Square struct {
	File int // 1..NumFiles
	Rank int // 0 for rank 'a'
}

func (s Square) String() string {
	return fmt.Sprintf("%d%c", s.File, 'a'+byte(s.Rank))
}

// Move is either a board move (From/To, optional promotion) or a drop from
// hand (Piece + To).
type Move struct {
	Drop    bool
	Piece   byte // lowercase piece letter, drops only
	From    Square
	To      Square
	Promote bool
}

func (m Move) String() string {
	if m.Drop {
		return fmt.Sprintf("%c*%s", m.Piece-'a'+'A', m.To)
	}
	s := m.From.String() + m.To.String()
	if m.Promote {
		s += "+"
	}
	return s
}

// ParseMove reads SFEN-style move tokens: "1e2d", "1a1b+" or the drop form
// "P*2c".
func ParseMove(s string) (Move, error) {
	if len(s) == 4 && s[1] == '*' {
		if !isPieceLetter(s[0]) {
			return Move{}, fmt.Errorf("malformed drop %q", s)
		}
		to, err := parseSquare(s[2], s[3])
		if err != nil {
			return Move{}, fmt.Errorf("drop %q: %w", s, err)
		}
		return Move{Drop: true, Piece: lowerLetter(s[0]), To: to}, nil
	}
	if len(s) == 4 || (len(s) == 5 && s[4] == '+') {
		from, err := parseSquare(s[0], s[1])
		if err != nil {
			return Move{}, fmt.Errorf("move %q: %w", s, err)
		}
		to, err := parseSquare(s[2], s[3])
		if err != nil {
			return Move{}, fmt.Errorf("move %q: %w", s, err)
		}
		return Move{From: from, To: to, Promote: len(s) == 5}, nil
	}
	return Move{}, fmt.Errorf("malformed move %q", s)
}

func parseSquare(file, rank byte) (Square, error) {
	if file < '1' || file > '0'+NumFiles {
		return Square{}, fmt.Errorf("file %q out of range", file)
	}
	if rank < 'a' || rank >= 'a'+NumRanks {
		return Square{}, fmt.Errorf("rank %q out of range", rank)
	}
	return Square{File: int(file - '0'), Rank: int(rank - 'a')}, nil
}

func isPieceLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func lowerLetter(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c - 'A' + 'a'
	}
	return c
}
