// Starts the fairy-stockfish process, speaks USI over stdin/stdout and
// exposes timed MultiPV searches with best/worst candidate selection.

package app

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	yaml "gopkg.in/yaml.v2"

	"github.com/Arborescent/wildcat-shogi/app/models"
	"github.com/Arborescent/wildcat-shogi/wildcat"
)

// searchTimeout bounds how long we wait for any single response event before
// declaring the engine dead or the protocol desynchronized. Not retried.
const searchTimeout = 30 * time.Second

// USIConfig configures the engine process.
type USIConfig struct {
	Path         string // engine binary, default "fairy-stockfish"
	VariantsPath string // variants.ini handed to the engine at startup
	Variant      string
	MultiPV      int // how many candidate lines to request
	SearchTimeMS int // byoyomi per search
	OptionsPath  string // optional YAML file with extra setoption pairs
	Logger       zerolog.Logger
}

// USIEngine wraps one engine process. A background listener parses stdout
// into typed events; callers run strictly one search at a time.
type USIEngine struct {
	cfg    USIConfig
	cmd    *exec.Cmd
	in     *bufio.Writer
	events chan models.EngineEvent
	mu     sync.Mutex
	log    zerolog.Logger
}

// NewUSIEngine spawns the engine, runs the USI handshake, configures it for
// tsume generation and starts the response listener.
func NewUSIEngine(cfg USIConfig) (*USIEngine, error) {
	if cfg.Path == "" {
		cfg.Path = "fairy-stockfish"
	}
	if cfg.VariantsPath == "" {
		cfg.VariantsPath = "variants.ini"
	}
	if cfg.Variant == "" {
		cfg.Variant = "wildcatshogi"
	}
	if cfg.MultiPV == 0 {
		cfg.MultiPV = 5
	}
	if cfg.SearchTimeMS == 0 {
		cfg.SearchTimeMS = 10
	}

	cmd := exec.Command(cfg.Path, "load", cfg.VariantsPath)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}

	e := &USIEngine{
		cfg:    cfg,
		cmd:    cmd,
		in:     bufio.NewWriter(stdin),
		events: make(chan models.EngineEvent, 64),
		log:    cfg.Logger,
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", cfg.Path, err)
	}

	scanner := bufio.NewScanner(stdout)

	// fairy-stockfish wants the protocol switched before the handshake
	if err := e.send("setoption name Protocol value usi"); err != nil {
		return nil, err
	}
	if err := e.send("usi"); err != nil {
		return nil, err
	}
	for scanner.Scan() {
		if scanner.Text() == "usiok" {
			break
		}
	}

	options := [][2]string{
		{"UCI_Variant", cfg.Variant},
		{"MultiPV", strconv.Itoa(cfg.MultiPV)},
		// objective play, decisive games, never resign, never stop early
		{"Contempt", "0"},
		{"DrawScore", "1000"},
		{"ResignValue", "-32767"},
		{"UCI_AnalyseMode", "true"},
		{"TsumeMode", "true"},
	}
	extra, err := loadEngineOptions(cfg.OptionsPath)
	if err != nil {
		return nil, err
	}
	for _, o := range append(options, extra...) {
		if err := e.send(fmt.Sprintf("setoption name %s value %s", o[0], o[1])); err != nil {
			return nil, err
		}
	}

	if err := e.send("isready"); err != nil {
		return nil, err
	}
	for scanner.Scan() {
		if scanner.Text() == "readyok" {
			break
		}
	}
	if err := e.send("usinewgame"); err != nil {
		return nil, err
	}

	go e.listen(scanner)

	e.log.Info().
		Str("engine", cfg.Path).
		Str("variant", cfg.Variant).
		Int("multipv", cfg.MultiPV).
		Int("byoyomi_ms", cfg.SearchTimeMS).
		Msg("engine ready")

	return e, nil
}

// loadEngineOptions reads an optional flat YAML map of extra engine options.
func loadEngineOptions(path string) ([][2]string, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("engine options: %w", err)
	}
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("engine options %s: %w", path, err)
	}
	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)
	pairs := make([][2]string, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, [2]string{name, fmt.Sprint(raw[name])})
	}
	return pairs, nil
}

// Close asks the engine to quit and reaps the process.
func (e *USIEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	_ = e.send("quit")
	return e.cmd.Wait()
}

// NewGame tells the engine to reset its internal state.
func (e *USIEngine) NewGame() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.send("usinewgame")
}

// SetPosition loads the starting position plus a move history, given in the
// engine's own move convention.
func (e *USIEngine) SetPosition(moveHistory []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	sfen := wildcat.StartingSFEN
	if len(moveHistory) > 0 {
		sfen = fmt.Sprintf("%s moves %s", sfen, strings.Join(moveHistory, " "))
	}
	return e.send("position sfen " + sfen)
}

// BestMove searches and returns the strongest available move: the rank-1
// candidate when one exists, otherwise the terminal bestmove.
func (e *USIEngine) BestMove() (models.SearchResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pvs, term, err := e.search()
	if err != nil {
		return models.SearchResult{}, err
	}
	for _, pv := range pvs {
		if pv.MultiPV == 1 && len(pv.Moves) > 0 {
			return models.SearchResult{Kind: models.ResultMove, Move: pv.Moves[0]}, nil
		}
	}
	return terminalResult(term), nil
}

// WorstMove searches and returns the weakest candidate: the minimum-score
// line among all collected candidates. This is why MultiPV is on at all —
// the terminal bestmove only ever reflects the top line.
func (e *USIEngine) WorstMove() (models.SearchResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pvs, term, err := e.search()
	if err != nil {
		return models.SearchResult{}, err
	}
	var worst *models.PvInfo
	for i := range pvs {
		if len(pvs[i].Moves) == 0 {
			continue
		}
		if worst == nil || pvs[i].Score < worst.Score {
			worst = &pvs[i]
		}
	}
	if worst != nil {
		return models.SearchResult{Kind: models.ResultMove, Move: worst.Moves[0]}, nil
	}
	return terminalResult(term), nil
}

func terminalResult(term models.BestMoveEvent) models.SearchResult {
	switch {
	case term.Win:
		return models.SearchResult{Kind: models.ResultCheckmate}
	case term.Resign:
		return models.SearchResult{Kind: models.ResultResign}
	default:
		return models.SearchResult{Kind: models.ResultMove, Move: term.Move}
	}
}

// search runs one timed search. A resignation with no candidates collected
// gets a single retry at five times the byoyomi: the engine sometimes needs
// more time before it can propose any line at all.
func (e *USIEngine) search() ([]models.PvInfo, models.BestMoveEvent, error) {
	pvs, term, err := e.searchWithTime(e.cfg.SearchTimeMS)
	if err != nil {
		return nil, models.BestMoveEvent{}, err
	}
	if term.Resign && len(pvs) == 0 {
		return e.searchWithTime(e.cfg.SearchTimeMS * 5)
	}
	return pvs, term, nil
}

func (e *USIEngine) searchWithTime(timeMS int) ([]models.PvInfo, models.BestMoveEvent, error) {
	if err := e.send(fmt.Sprintf("go byoyomi %d", timeMS)); err != nil {
		return nil, models.BestMoveEvent{}, err
	}

	var pvs []models.PvInfo
	// accumulator for the candidate under construction; multipv, score and
	// pv may arrive across separate info lines
	currentPV := 1
	currentScore := 0
	var currentMoves []string

	for {
		select {
		case ev, ok := <-e.events:
			if !ok {
				return nil, models.BestMoveEvent{}, fmt.Errorf("engine exited during search")
			}
			if ev.Best != nil {
				return pvs, *ev.Best, nil
			}
			if ev.Info == nil {
				continue
			}
			if ev.Info.MultiPV != nil {
				currentPV = *ev.Info.MultiPV
			}
			if ev.Info.CP != nil {
				currentScore = *ev.Info.CP
			}
			if ev.Info.Mate != nil {
				// normalize mate distances to sentinel magnitudes
				if *ev.Info.Mate > 0 {
					currentScore = 10000
				} else {
					currentScore = -10000
				}
			}
			if len(ev.Info.PV) > 0 {
				currentMoves = ev.Info.PV
			}
			if len(currentMoves) == 0 {
				continue
			}
			updated := false
			for i := range pvs {
				if pvs[i].MultiPV == currentPV {
					pvs[i].Score = currentScore
					pvs[i].Moves = currentMoves
					updated = true
					break
				}
			}
			if !updated {
				pvs = append(pvs, models.PvInfo{MultiPV: currentPV, Score: currentScore, Moves: currentMoves})
			}
		case <-time.After(searchTimeout):
			return nil, models.BestMoveEvent{}, fmt.Errorf("no engine response within %s", searchTimeout)
		}
	}
}

// listen parses engine stdout into typed events until the process exits.
func (e *USIEngine) listen(scanner *bufio.Scanner) {
	defer close(e.events)
	for scanner.Scan() {
		if ev, ok := parseEngineLine(scanner.Text()); ok {
			e.events <- ev
		}
	}
}

func parseEngineLine(line string) (models.EngineEvent, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return models.EngineEvent{}, false
	}

	switch fields[0] {
	case "bestmove":
		best := &models.BestMoveEvent{}
		if len(fields) > 1 {
			switch fields[1] {
			case "resign":
				best.Resign = true
			case "win":
				best.Win = true
			default:
				best.Move = fields[1]
			}
		}
		return models.EngineEvent{Best: best}, true

	case "info":
		info := &models.InfoEvent{}
		seen := false
		for i := 1; i < len(fields); i++ {
			switch fields[i] {
			case "multipv":
				if i+1 < len(fields) {
					if v, err := strconv.Atoi(fields[i+1]); err == nil {
						info.MultiPV = &v
						seen = true
					}
					i++
				}
			case "score":
				if i+2 < len(fields) {
					switch fields[i+1] {
					case "cp":
						if v, err := strconv.Atoi(fields[i+2]); err == nil {
							info.CP = &v
							seen = true
						}
					case "mate":
						// value may be a distance or just a sign
						if v, err := strconv.Atoi(fields[i+2]); err == nil {
							info.Mate = &v
							seen = true
						} else if fields[i+2] == "+" || fields[i+2] == "-" {
							v := 1
							if fields[i+2] == "-" {
								v = -1
							}
							info.Mate = &v
							seen = true
						}
					}
					i += 2
				}
			case "pv":
				if len(fields[i+1:]) > 0 {
					info.PV = fields[i+1:]
					seen = true
				}
				i = len(fields)
			}
		}
		if !seen {
			return models.EngineEvent{}, false
		}
		return models.EngineEvent{Info: info}, true
	}

	return models.EngineEvent{}, false
}

func (e *USIEngine) send(cmd string) error {
	if _, err := fmt.Fprintln(e.in, cmd); err != nil {
		return err
	}
	return e.in.Flush()
}
