package app

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Arborescent/wildcat-shogi/app/models"
)

func newTestEngine(outputLines []string) (*USIEngine, *strings.Builder) {
	pr, pw := io.Pipe()
	go func() {
		for _, line := range outputLines {
			_, _ = fmt.Fprintln(pw, line)
		}
		_ = pw.Close()
	}()

	var sb strings.Builder
	e := &USIEngine{
		cfg:    USIConfig{SearchTimeMS: 10},
		in:     bufio.NewWriter(&sb),
		events: make(chan models.EngineEvent, 64),
		log:    zerolog.Nop(),
	}
	go e.listen(bufio.NewScanner(pr))
	return e, &sb
}

func TestSearchCollectsCandidates(t *testing.T) {
	eng, sb := newTestEngine([]string{
		"info depth 3 seldepth 4 multipv 1 score cp 50 nodes 120 pv 1e2d 2d2c",
		"info depth 3 multipv 2 score cp -300 pv 3a2b",
		"bestmove 1e2d",
	})

	pvs, term, err := eng.search()
	if err != nil {
		t.Fatalf("search error: %v", err)
	}
	if len(pvs) != 2 {
		t.Fatalf("want 2 candidates, got %+v", pvs)
	}
	if pvs[0].MultiPV != 1 || pvs[0].Score != 50 || pvs[0].Moves[0] != "1e2d" {
		t.Fatalf("rank 1 candidate wrong: %+v", pvs[0])
	}
	if pvs[1].MultiPV != 2 || pvs[1].Score != -300 || pvs[1].Moves[0] != "3a2b" {
		t.Fatalf("rank 2 candidate wrong: %+v", pvs[1])
	}
	if term.Move != "1e2d" || term.Resign || term.Win {
		t.Fatalf("terminal event wrong: %+v", term)
	}
	if !strings.Contains(sb.String(), "go byoyomi 10") {
		t.Fatalf("search did not send byoyomi command: %q", sb.String())
	}
}

func TestSearchOverwritesCandidateByRank(t *testing.T) {
	eng, _ := newTestEngine([]string{
		"info multipv 1 score cp 10 pv 1e2d",
		"info multipv 1 score cp 80 pv 2e2d",
		"bestmove 2e2d",
	})

	pvs, _, err := eng.search()
	if err != nil {
		t.Fatalf("search error: %v", err)
	}
	if len(pvs) != 1 || pvs[0].Score != 80 || pvs[0].Moves[0] != "2e2d" {
		t.Fatalf("latest update should win: %+v", pvs)
	}
}

func TestBestMovePrefersRankOne(t *testing.T) {
	eng, _ := newTestEngine([]string{
		"info multipv 2 score cp 900 pv 3a2b",
		"info multipv 1 score cp 50 pv 1e2d",
		"bestmove 3a2b",
	})

	res, err := eng.BestMove()
	if err != nil {
		t.Fatalf("BestMove error: %v", err)
	}
	if res.Kind != models.ResultMove || res.Move != "1e2d" {
		t.Fatalf("BestMove = %+v, want rank-1 move 1e2d", res)
	}
}

func TestWorstMovePicksMinimumScore(t *testing.T) {
	eng, _ := newTestEngine([]string{
		"info multipv 1 score cp 50 pv 1e2d 2d2c",
		"info multipv 2 score cp -300 pv 3a2b",
		"info multipv 3 score cp 20 pv 2d2c",
		"bestmove 1e2d",
	})

	res, err := eng.WorstMove()
	if err != nil {
		t.Fatalf("WorstMove error: %v", err)
	}
	if res.Kind != models.ResultMove || res.Move != "3a2b" {
		t.Fatalf("WorstMove = %+v, want minimum-score move 3a2b", res)
	}
}

func TestMateScoresNormalizeToSentinels(t *testing.T) {
	eng, _ := newTestEngine([]string{
		"info multipv 1 score mate 3 pv 1e2d",
		"info multipv 2 score mate -2 pv 3a2b",
		"bestmove 1e2d",
	})

	pvs, _, err := eng.search()
	if err != nil {
		t.Fatalf("search error: %v", err)
	}
	if pvs[0].Score != 10000 || pvs[1].Score != -10000 {
		t.Fatalf("mate scores not normalized: %+v", pvs)
	}

	eng2, _ := newTestEngine([]string{
		"info multipv 1 score mate 3 pv 1e2d",
		"info multipv 2 score mate -2 pv 3a2b",
		"bestmove 1e2d",
	})
	res, err := eng2.WorstMove()
	if err != nil {
		t.Fatalf("WorstMove error: %v", err)
	}
	if res.Move != "3a2b" {
		t.Fatalf("worst move should be the mated line, got %+v", res)
	}
}

func TestResignWithoutCandidatesRetriesWithLongerTime(t *testing.T) {
	eng, sb := newTestEngine([]string{
		"bestmove resign",
		"info multipv 1 score cp 12 pv 1e2d",
		"bestmove 1e2d",
	})

	pvs, term, err := eng.search()
	if err != nil {
		t.Fatalf("search error: %v", err)
	}
	if len(pvs) != 1 || term.Move != "1e2d" {
		t.Fatalf("escalated search result wrong: %+v %+v", pvs, term)
	}
	sent := sb.String()
	if !strings.Contains(sent, "go byoyomi 10") || !strings.Contains(sent, "go byoyomi 50") {
		t.Fatalf("expected escalation to 5x byoyomi, sent: %q", sent)
	}
}

func TestResignWithCandidatesIsNotRetried(t *testing.T) {
	eng, sb := newTestEngine([]string{
		"info multipv 1 score cp -5 pv 1e2d",
		"bestmove resign",
	})

	pvs, term, err := eng.search()
	if err != nil {
		t.Fatalf("search error: %v", err)
	}
	if !term.Resign || len(pvs) != 1 {
		t.Fatalf("unexpected result: %+v %+v", pvs, term)
	}
	if got := strings.Count(sb.String(), "go byoyomi"); got != 1 {
		t.Fatalf("want exactly one search, got %d: %q", got, sb.String())
	}
}

func TestBestMoveFallsBackToTerminal(t *testing.T) {
	eng, _ := newTestEngine([]string{"bestmove 1e2d"})
	res, err := eng.BestMove()
	if err != nil {
		t.Fatalf("BestMove error: %v", err)
	}
	if res.Kind != models.ResultMove || res.Move != "1e2d" {
		t.Fatalf("fallback move wrong: %+v", res)
	}

	eng, _ = newTestEngine([]string{"bestmove win"})
	if res, _ := eng.BestMove(); res.Kind != models.ResultCheckmate {
		t.Fatalf("win should map to checkmate, got %+v", res)
	}

	// resign without candidates escalates once, then means no move
	eng, _ = newTestEngine([]string{"bestmove resign", "bestmove resign"})
	if res, _ := eng.BestMove(); res.Kind != models.ResultResign {
		t.Fatalf("resign should map to no move available, got %+v", res)
	}
}

func TestSetPositionSendsHistory(t *testing.T) {
	eng, sb := newTestEngine(nil)
	if err := eng.SetPosition(nil); err != nil {
		t.Fatalf("SetPosition error: %v", err)
	}
	if err := eng.SetPosition([]string{"3d3c", "3b3c"}); err != nil {
		t.Fatalf("SetPosition error: %v", err)
	}
	sent := sb.String()
	if !strings.Contains(sent, "position sfen bkr/p1p/3/P1P/RKB b - 1\n") {
		t.Fatalf("bare position not sent: %q", sent)
	}
	if !strings.Contains(sent, "position sfen bkr/p1p/3/P1P/RKB b - 1 moves 3d3c 3b3c\n") {
		t.Fatalf("history not sent: %q", sent)
	}
}

func TestSearchFailsWhenEngineExits(t *testing.T) {
	eng, _ := newTestEngine(nil) // stdout closes immediately
	if _, _, err := eng.search(); err == nil {
		t.Fatal("search should fail when the engine exits")
	}
}

func TestParseEngineLineIgnoresChatter(t *testing.T) {
	for _, line := range []string{
		"",
		"id name Fairy-Stockfish",
		"info string variant wildcatshogi startpos",
		"info depth 5 nodes 1000 nps 50000",
	} {
		if _, ok := parseEngineLine(line); ok {
			t.Fatalf("line %q should be ignored", line)
		}
	}
}
