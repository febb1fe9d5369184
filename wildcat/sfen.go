package wildcat

import (
	"fmt"
	"strconv"
	"strings"
)

// Hand pieces are written in the conventional shogi order, Black's before
// White's.
const handOrder = "rbgsnlpk"

// SFEN serializes the position: board ranks top to bottom, side to move,
// hands and the move counter.
func (p Position) SFEN() string {
	var sb strings.Builder
	for r := 0; r < NumRanks; r++ {
		if r > 0 {
			sb.WriteByte('/')
		}
		empties := 0
		for f := 0; f < NumFiles; f++ {
			pc := p.board[r][f]
			if pc.Kind == 0 {
				empties++
				continue
			}
			if empties > 0 {
				sb.WriteByte('0' + byte(empties))
				empties = 0
			}
			if pc.Promoted {
				sb.WriteByte('+')
			}
			sb.WriteByte(caseLetter(pc.Kind, pc.Color))
		}
		if empties > 0 {
			sb.WriteByte('0' + byte(empties))
		}
	}
	if p.turn == Black {
		sb.WriteString(" b ")
	} else {
		sb.WriteString(" w ")
	}
	sb.WriteString(p.handSFEN())
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.ply))
	return sb.String()
}

func (p Position) handSFEN() string {
	var sb strings.Builder
	for _, c := range []Color{Black, White} {
		for _, kind := range orderedKinds() {
			n := p.hands[c][kind-'a']
			if n == 0 {
				continue
			}
			if n > 1 {
				sb.WriteString(strconv.Itoa(int(n)))
			}
			sb.WriteByte(caseLetter(kind, c))
		}
	}
	if sb.Len() == 0 {
		return "-"
	}
	return sb.String()
}

func orderedKinds() []byte {
	kinds := []byte(handOrder)
	for c := byte('a'); c <= 'z'; c++ {
		if !strings.ContainsRune(handOrder, rune(c)) {
			kinds = append(kinds, c)
		}
	}
	return kinds
}

func caseLetter(kind byte, c Color) byte {
	if c == Black {
		return kind - 'a' + 'A'
	}
	return kind
}

// ParseSFEN reads a position from its SFEN form.
func ParseSFEN(sfen string) (Position, error) {
	fields := strings.Fields(sfen)
	if len(fields) < 4 {
		return Position{}, fmt.Errorf("sfen %q: want 4 fields, got %d", sfen, len(fields))
	}

	var p Position
	ranks := strings.Split(fields[0], "/")
	if len(ranks) != NumRanks {
		return Position{}, fmt.Errorf("sfen %q: want %d ranks, got %d", sfen, NumRanks, len(ranks))
	}
	for r, rank := range ranks {
		f := 0
		promoted := false
		for i := 0; i < len(rank); i++ {
			c := rank[i]
			switch {
			case c >= '1' && c <= '9':
				if promoted {
					return Position{}, fmt.Errorf("sfen %q: dangling promotion marker", sfen)
				}
				f += int(c - '0')
			case c == '+':
				promoted = true
			case isPieceLetter(c):
				if f >= NumFiles {
					return Position{}, fmt.Errorf("sfen %q: rank %d overflows", sfen, r+1)
				}
				p.board[r][f] = Piece{Kind: lowerLetter(c), Color: letterColor(c), Promoted: promoted}
				promoted = false
				f++
			default:
				return Position{}, fmt.Errorf("sfen %q: bad board char %q", sfen, c)
			}
		}
		if f != NumFiles {
			return Position{}, fmt.Errorf("sfen %q: rank %d has %d files", sfen, r+1, f)
		}
	}

	switch fields[1] {
	case "b":
		p.turn = Black
	case "w":
		p.turn = White
	default:
		return Position{}, fmt.Errorf("sfen %q: bad side to move %q", sfen, fields[1])
	}

	if fields[2] != "-" {
		count := 0
		for i := 0; i < len(fields[2]); i++ {
			c := fields[2][i]
			switch {
			case c >= '0' && c <= '9':
				count = count*10 + int(c-'0')
			case isPieceLetter(c):
				if count == 0 {
					count = 1
				}
				p.hands[letterColor(c)][lowerLetter(c)-'a'] += int8(count)
				count = 0
			default:
				return Position{}, fmt.Errorf("sfen %q: bad hand char %q", sfen, c)
			}
		}
		if count != 0 {
			return Position{}, fmt.Errorf("sfen %q: dangling hand count", sfen)
		}
	}

	ply, err := strconv.Atoi(fields[3])
	if err != nil {
		return Position{}, fmt.Errorf("sfen %q: bad move counter: %w", sfen, err)
	}
	p.ply = ply
	return p, nil
}

func letterColor(c byte) Color {
	if c >= 'A' && c <= 'Z' {
		return Black
	}
	return White
}

// MirrorSFEN rotates the board 180 degrees and swaps the two players: piece
// case, hands and the side to move all flip. The move counter is preserved.
// Works at the string level so it tolerates positions this package cannot
// otherwise represent.
func MirrorSFEN(sfen string) string {
	fields := strings.Fields(sfen)
	if len(fields) < 3 {
		return sfen
	}

	ranks := strings.Split(fields[0], "/")
	mirrored := make([]string, len(ranks))
	for i, rank := range ranks {
		var toks []string
		for j := 0; j < len(rank); j++ {
			if rank[j] == '+' && j+1 < len(rank) {
				toks = append(toks, "+"+string(swapCase(rank[j+1])))
				j++
			} else {
				toks = append(toks, string(swapCase(rank[j])))
			}
		}
		for l, r := 0, len(toks)-1; l < r; l, r = l+1, r-1 {
			toks[l], toks[r] = toks[r], toks[l]
		}
		mirrored[len(ranks)-1-i] = strings.Join(toks, "")
	}

	side := "b"
	if fields[1] == "b" {
		side = "w"
	}

	hand := []byte(fields[2])
	for i := range hand {
		hand[i] = swapCase(hand[i])
	}

	out := []string{strings.Join(mirrored, "/"), side, string(hand)}
	out = append(out, fields[3:]...)
	return strings.Join(out, " ")
}

func swapCase(c byte) byte {
	switch {
	case c >= 'a' && c <= 'z':
		return c - 'a' + 'A'
	case c >= 'A' && c <= 'Z':
		return c - 'A' + 'a'
	}
	return c
}
