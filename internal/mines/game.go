package mines

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"
)

var Log *slog.Logger = slog.Default()

type Status uint8

const (
	Playing Status = iota
	Won
	Lost
)

func (s Status) String() string {
	switch s {
	case Playing:
		return "playing"
	case Won:
		return "won"
	case Lost:
		return "lost"
	default:
		return fmt.Sprintf("Status(%d)", uint8(s))
	}
}

// [Status] implements [encoding.TextMarshaler]
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	switch string(b) {
	case "playing":
		*s = Playing
	case "won":
		*s = Won
	case "lost":
		*s = Lost
	default:
		return fmt.Errorf("unknown game status %q", b)
	}
	return nil
}

// Game is a single round of minesweeper. It is not safe for concurrent use.
type Game struct {
	Params
	Board         *Board
	Status        Status
	Flags         int
	RevealedCount int    /* safe cells opened */
	Exploded      *Point /* the mine that ended the game */
	StartedAt     time.Time
	EndedAt       time.Time

	clock func() time.Time
}

func NewGame(params Params, r *rand.Rand) (*Game, error) {
	board, err := NewBoard(params, r)
	if err != nil {
		return nil, err
	}
	Log.Debug("board generated", slog.String("seed", params.Seed()))
	return &Game{Params: params, Board: board}, nil
}

// SetClock replaces the time source used for the timer.
func (g *Game) SetClock(clock func() time.Time) {
	g.clock = clock
}

func (g *Game) now() time.Time {
	if g.clock == nil {
		return time.Now()
	}
	return g.clock()
}

func (g *Game) MinesLeft() int {
	return g.Mines - g.Flags
}

func (g *Game) Over() bool {
	return g.Status != Playing
}

// Reveal opens the cell at row, col. Hitting a mine loses the game and
// uncovers every mine; an empty cell floods open its region. Reports
// whether anything changed.
func (g *Game) Reveal(row, col int) bool {
	if g.Over() {
		return false
	}
	cell := g.Board.Cell(row, col)
	if cell == nil || cell.IsRevealed || cell.IsFlagged {
		return false
	}

	g.startTimer()

	if cell.IsMine {
		cell.IsRevealed = true
		g.Exploded = &Point{Row: row, Col: col}
		g.end(Lost)
		g.Board.revealMines()
		return true
	}

	g.RevealedCount += g.Board.floodReveal(cell)
	g.checkWin()
	return true
}

// ToggleFlag flags or unflags a hidden cell. Reports whether anything changed.
func (g *Game) ToggleFlag(row, col int) bool {
	if g.Over() {
		return false
	}
	cell := g.Board.Cell(row, col)
	if cell == nil || cell.IsRevealed {
		return false
	}
	cell.IsFlagged = !cell.IsFlagged
	if cell.IsFlagged {
		g.Flags++
	} else {
		g.Flags--
	}
	g.checkWin()
	return true
}

// Chord opens every hidden, unflagged neighbor of a numbered cell once the
// player has placed as many flags around it as the number says.
func (g *Game) Chord(row, col int) bool {
	if g.Over() {
		return false
	}
	cell := g.Board.Cell(row, col)
	if cell == nil || !cell.IsRevealed || cell.IsMine || cell.NeighborMines == 0 {
		return false
	}

	flagged := 0
	hidden := make([]*Cell, 0, 8)
	for n := range g.Board.Neighbors(row, col) {
		switch {
		case n.IsFlagged:
			flagged++
		case !n.IsRevealed:
			hidden = append(hidden, n)
		}
	}
	if flagged != cell.NeighborMines || len(hidden) == 0 {
		return false
	}

	for _, n := range hidden {
		g.Reveal(n.Row, n.Col)
		if g.Over() {
			break
		}
	}
	return true
}

// Forfeit gives up a running game.
func (g *Game) Forfeit() bool {
	if g.Over() {
		return false
	}
	g.end(Lost)
	g.Board.revealMines()
	return true
}

// Restart deals a new board with the same params.
func (g *Game) Restart(r *rand.Rand) error {
	board, err := NewBoard(g.Params, r)
	if err != nil {
		return err
	}
	*g = Game{Params: g.Params, Board: board, clock: g.clock}
	return nil
}

func (g *Game) checkWin() {
	if g.Over() {
		return
	}
	safe := g.Cells() - g.Mines
	if (g.RevealedCount > 0 && g.RevealedCount == safe) || g.allMinesFlagged() {
		g.end(Won)
	}
}

func (g *Game) allMinesFlagged() bool {
	if g.Mines == 0 || g.Flags != g.Mines {
		return false
	}
	for c := range g.Board.All() {
		if c.IsFlagged != c.IsMine {
			return false
		}
	}
	return true
}

func (g *Game) startTimer() {
	if g.StartedAt.IsZero() {
		g.StartedAt = g.now()
	}
}

func (g *Game) end(status Status) {
	g.Status = status
	g.EndedAt = g.now()
}

// Ticking reports whether the timer is running.
func (g *Game) Ticking() bool {
	return !g.Over() && !g.StartedAt.IsZero()
}

// Elapsed is the time shown on the timer: zero before the first reveal and
// frozen once the game is over.
func (g *Game) Elapsed(now time.Time) time.Duration {
	if g.StartedAt.IsZero() {
		return 0
	}
	if g.Over() {
		now = g.EndedAt
	}
	if now.Before(g.StartedAt) {
		return 0
	}
	return now.Sub(g.StartedAt)
}

func DecodeGame(buf []byte) (*Game, error) {
	var game Game
	err := gob.NewDecoder(bytes.NewBuffer(buf)).Decode(&game)
	if err != nil {
		return nil, err
	}
	return &game, nil
}

func (g *Game) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(g)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
