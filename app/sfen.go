// SFEN string glue: slicing move history off position strings, translating
// move tokens between the engine's and the rules library's file numbering,
// and normalizing puzzles so Black is always the attacker.

package app

import (
	"strings"

	"github.com/Arborescent/wildcat-shogi/wildcat"
)

// PositionOnlySFEN strips the move history from a full SFEN string.
func PositionOnlySFEN(sfen string) string {
	if idx := strings.Index(sfen, " moves"); idx != -1 {
		return sfen[:idx]
	}
	return sfen
}

// ConvertMoveFiles translates a move token between the Fairy-Stockfish and
// library file conventions.
//
// Fairy-Stockfish counts file 1 from the right, the wildcat package from the
// left, so every file digit maps through new_file = 4 - old_file. The
// translation is its own inverse.
func ConvertMoveFiles(tok string) string {
	// drop move, e.g. "P*2b"
	if len(tok) >= 4 && tok[1] == '*' {
		if f := tok[2]; f >= '1' && f <= '3' {
			return tok[:2] + string('4'-f+'0') + tok[3:]
		}
		return tok
	}

	// board move, e.g. "3a1c" or "3a1c+"
	if len(tok) >= 4 {
		from, to := tok[0], tok[2]
		if from >= '1' && from <= '3' && to >= '1' && to <= '3' {
			return string('4'-from+'0') + tok[1:2] + string('4'-to+'0') + tok[3:]
		}
	}

	return tok
}

// EnsureBlackToMove normalizes a terminal position so that Black is the side
// about to move: a position with White to move is mirrored and its move
// counter reset to 1, as if the puzzle opened fresh.
func EnsureBlackToMove(sfen string) string {
	fields := strings.Fields(sfen)
	if len(fields) < 4 || fields[1] != "w" {
		return sfen
	}
	flipped := strings.Fields(wildcat.MirrorSFEN(sfen))
	if len(flipped) < 4 {
		return wildcat.MirrorSFEN(sfen)
	}
	return strings.Join(flipped[:3], " ") + " 1"
}
