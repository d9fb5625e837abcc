package mines

import (
	"strconv"
	"strings"
)

type CellState int8

const (
	Unknown          CellState = -2
	Flagged          CellState = -1
	CorrectlyFlagged CellState = 64
	ExplodedMine     CellState = 65
	FalselyFlagged   CellState = 66
	UnflaggedMine    CellState = 67
	/*
	 * Each item in a player grid is one of the following values:
	 *
	 *  - 0 to 8 mean the square is open and has a surrounding mine
	 *    count.
	 *
	 *  - -1 means the square is marked as a mine.
	 *
	 *  - -2 means the square is unknown.
	 *
	 *  - 64 means a flagged square turned out to be a mine once the
	 *    game ended.
	 *
	 *  - 65 means the square had a mine and this was the one the
	 *    player hit.
	 *
	 *  - 66 means the square has a crossed-out mine because the
	 *    player had incorrectly marked it.
	 *
	 *  - 67 means a mine the player never marked, shown after the
	 *    game ended.
	 */
)

func (s CellState) Open() bool {
	return 0 <= s && s <= 8
}

func (s CellState) String() string {
	switch {
	case s == Unknown:
		return "-"
	case s == Flagged, s == CorrectlyFlagged:
		return "F"
	case s == FalselyFlagged:
		return "x"
	case s == ExplodedMine:
		return "X"
	case s == UnflaggedMine:
		return "*"
	case s == 0:
		return "."
	case s.Open():
		return strconv.Itoa(int(s))
	default:
		return "!"
	}
}

// Grid is what the player is allowed to see, row by row.
type Grid [][]CellState

func (g Grid) String() string {
	var b strings.Builder
	for _, row := range g {
		for i, s := range row {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(s.String())
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// PlayerGrid renders the board without leaking hidden mines while the game
// is still running.
func (g *Game) PlayerGrid() Grid {
	grid := make(Grid, g.Board.Rows)
	for row := range g.Board.Rows {
		grid[row] = make([]CellState, g.Board.Cols)
		for col := range g.Board.Cols {
			grid[row][col] = g.cellState(&g.Board.Cells[row][col])
		}
	}
	return grid
}

func (g *Game) cellState(c *Cell) CellState {
	over := g.Over()
	switch {
	case c.IsFlagged && over && c.IsMine:
		return CorrectlyFlagged
	case c.IsFlagged && over:
		return FalselyFlagged
	case c.IsFlagged:
		return Flagged
	case c.IsMine && g.Exploded != nil && g.Exploded.Row == c.Row && g.Exploded.Col == c.Col:
		return ExplodedMine
	case c.IsMine && over:
		return UnflaggedMine
	case c.IsRevealed && !c.IsMine:
		return CellState(c.NeighborMines)
	default:
		return Unknown
	}
}
