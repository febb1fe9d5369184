package wildcat

import "testing"

func mustApply(t *testing.T, p Position, tok string) Position {
	t.Helper()
	m, err := ParseMove(tok)
	if err != nil {
		t.Fatalf("ParseMove(%q): %v", tok, err)
	}
	next, err := p.Apply(m)
	if err != nil {
		t.Fatalf("Apply(%q): %v", tok, err)
	}
	return next
}

func TestStartPosRoundTrip(t *testing.T) {
	if got := StartPos().SFEN(); got != StartingSFEN {
		t.Fatalf("StartPos().SFEN() = %q, want %q", got, StartingSFEN)
	}
}

func TestApplyMoveAndCapture(t *testing.T) {
	pos := mustApply(t, StartPos(), "1d1c")
	if got, want := pos.SFEN(), "bkr/p1p/P2/2P/RKB w - 2"; got != want {
		t.Fatalf("after 1d1c: %q, want %q", got, want)
	}

	// white pawn takes the advanced black pawn; it goes to white's hand
	pos = mustApply(t, pos, "1b1c")
	if got, want := pos.SFEN(), "bkr/2p/p2/2P/RKB b p 3"; got != want {
		t.Fatalf("after 1b1c: %q, want %q", got, want)
	}
}

func TestApplyDrop(t *testing.T) {
	pos, err := ParseSFEN("3/3/1k1/3/1K1 b P 1")
	if err != nil {
		t.Fatalf("ParseSFEN: %v", err)
	}
	pos = mustApply(t, pos, "P*2b")
	if got, want := pos.SFEN(), "3/1P1/1k1/3/1K1 w - 2"; got != want {
		t.Fatalf("after P*2b: %q, want %q", got, want)
	}
}

func TestApplyPromotion(t *testing.T) {
	pos, err := ParseSFEN("3/3/3/P2/3 b - 1")
	if err != nil {
		t.Fatalf("ParseSFEN: %v", err)
	}
	pos = mustApply(t, pos, "1d1a+")
	if got, want := pos.SFEN(), "+P2/3/3/3/3 w - 2"; got != want {
		t.Fatalf("after 1d1a+: %q, want %q", got, want)
	}
}

func TestCapturedPromotedPieceDemotes(t *testing.T) {
	pos, err := ParseSFEN("+p2/3/3/3/R2 b - 1")
	if err != nil {
		t.Fatalf("ParseSFEN: %v", err)
	}
	pos = mustApply(t, pos, "1e1a")
	if got, want := pos.SFEN(), "R2/3/3/3/3 w P 2"; got != want {
		t.Fatalf("after 1e1a: %q, want %q", got, want)
	}
}

func TestApplyRejectsStructurallyIllegalMoves(t *testing.T) {
	pos := StartPos()

	cases := []string{
		"2c2b", // no piece on the from-square
		"1b1c", // white pawn, but it is black's turn
		"1e1d", // black rook onto black pawn: own-piece capture
		"P*2c", // nothing in hand
	}
	for _, tok := range cases {
		m, err := ParseMove(tok)
		if err != nil {
			t.Fatalf("ParseMove(%q): %v", tok, err)
		}
		if _, err := pos.Apply(m); err == nil {
			t.Fatalf("Apply(%q) should fail", tok)
		}
	}
}

func TestApplyRejectsDropOnOccupiedSquare(t *testing.T) {
	pos, err := ParseSFEN("3/3/1k1/3/1K1 b P 1")
	if err != nil {
		t.Fatalf("ParseSFEN: %v", err)
	}
	m, err := ParseMove("P*2c")
	if err != nil {
		t.Fatalf("ParseMove: %v", err)
	}
	if _, err := pos.Apply(m); err == nil {
		t.Fatal("dropping onto the white king square should fail")
	}
}

func TestParseMoveRejectsMalformedTokens(t *testing.T) {
	for _, tok := range []string{"", "1e", "9z9z", "1e2d++", "P*2z", "**2c", "1e2d5"} {
		if _, err := ParseMove(tok); err == nil {
			t.Fatalf("ParseMove(%q) should fail", tok)
		}
	}
}

func TestApplyDoesNotMutateReceiver(t *testing.T) {
	pos := StartPos()
	before := pos.SFEN()
	_ = mustApply(t, pos, "1d1c")
	if pos.SFEN() != before {
		t.Fatalf("Apply mutated the receiver: %q", pos.SFEN())
	}
}
