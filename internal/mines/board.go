package mines

import (
	"iter"
	"math/rand/v2"
)

type Point struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

type Cell struct {
	Row, Col      int
	IsMine        bool
	IsRevealed    bool
	IsFlagged     bool
	NeighborMines int
}

type Board struct {
	Rows, Cols int
	Cells      [][]Cell
}

// NewBoard places p.Mines mines uniformly at random and fills in the
// neighbor counts. Every cell starts hidden and unflagged.
func NewBoard(p Params, r *rand.Rand) (*Board, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	b := newEmptyBoard(p.Rows, p.Cols)
	b.placeMines(p.Mines, r)
	b.countNeighbors()
	return b, nil
}

func newEmptyBoard(rows, cols int) *Board {
	cells := make([][]Cell, rows)
	for row := range rows {
		cells[row] = make([]Cell, cols)
		for col := range cols {
			cells[row][col] = Cell{Row: row, Col: col}
		}
	}
	return &Board{Rows: rows, Cols: cols, Cells: cells}
}

func (b *Board) placeMines(n int, r *rand.Rand) {
	/*
	 * Write down every position, then pick n off the list at random,
	 * moving the last candidate into the hole each time.
	 */
	candidates := make([]int, b.Rows*b.Cols)
	for i := range candidates {
		candidates[i] = i
	}
	k := len(candidates)
	for range n {
		i := r.IntN(k)
		j := candidates[i]
		b.Cells[j/b.Cols][j%b.Cols].IsMine = true
		k--
		candidates[i] = candidates[k]
	}
}

// countNeighbors runs once per board; the counts are never touched again.
func (b *Board) countNeighbors() {
	for row := range b.Rows {
		for col := range b.Cols {
			cell := &b.Cells[row][col]
			if cell.IsMine {
				continue
			}
			cell.NeighborMines = 0
			for n := range b.Neighbors(row, col) {
				if n.IsMine {
					cell.NeighborMines++
				}
			}
		}
	}
}

func (b *Board) InBounds(row, col int) bool {
	return 0 <= row && row < b.Rows && 0 <= col && col < b.Cols
}

// Cell returns nil for positions outside the board.
func (b *Board) Cell(row, col int) *Cell {
	if !b.InBounds(row, col) {
		return nil
	}
	return &b.Cells[row][col]
}

// Neighbors yields the up to 8 cells adjacent to row, col.
func (b *Board) Neighbors(row, col int) iter.Seq[*Cell] {
	return func(yield func(*Cell) bool) {
		for dr := -1; dr <= 1; dr++ {
			for dc := -1; dc <= 1; dc++ {
				if dr == 0 && dc == 0 {
					continue
				}
				r, c := row+dr, col+dc
				if !b.InBounds(r, c) {
					continue
				}
				if !yield(&b.Cells[r][c]) {
					return
				}
			}
		}
	}
}

// All yields every cell in row-major order.
func (b *Board) All() iter.Seq[*Cell] {
	return func(yield func(*Cell) bool) {
		for row := range b.Rows {
			for col := range b.Cols {
				if !yield(&b.Cells[row][col]) {
					return
				}
			}
		}
	}
}

func (b *Board) MineCount() int {
	n := 0
	for c := range b.All() {
		if c.IsMine {
			n++
		}
	}
	return n
}
