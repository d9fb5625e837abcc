package tui

import "github.com/vancomm/minesweeper/internal/mines"

// Screen layout, top to bottom: preset tabs, title, status banner, records
// line, then the board. Every cell is cellWidth columns wide.
const (
	tabsRow    = 0
	titleRow   = 1
	bannerRow  = 2
	recordsRow = 3
	boardTop   = 5
	boardLeft  = 2
	cellWidth  = 2
	tabGap     = 2
)

type span struct {
	from, to int /* columns, to is exclusive */
}

func (s span) contains(x int) bool {
	return s.from <= x && x < s.to
}

// tabSpans returns the columns of each preset tab label.
func tabSpans(presets []mines.Preset) []span {
	spans := make([]span, len(presets))
	x := boardLeft
	for i, p := range presets {
		label := " " + p.Name + " "
		spans[i] = span{x, x + len(label)}
		x += len(label) + tabGap
	}
	return spans
}

// tabAt returns the preset index under column x on the tabs row.
func tabAt(presets []mines.Preset, x, y int) (int, bool) {
	if y != tabsRow {
		return 0, false
	}
	for i, s := range tabSpans(presets) {
		if s.contains(x) {
			return i, true
		}
	}
	return 0, false
}

// cellAt maps screen coordinates onto the board.
func cellAt(p mines.Params, x, y int) (mines.Point, bool) {
	row := y - boardTop
	if row < 0 || row >= p.Rows || x < boardLeft {
		return mines.Point{}, false
	}
	col := (x - boardLeft) / cellWidth
	if col >= p.Cols {
		return mines.Point{}, false
	}
	return mines.Point{Row: row, Col: col}, true
}

func cellOrigin(pt mines.Point) (x, y int) {
	return boardLeft + pt.Col*cellWidth, boardTop + pt.Row
}

// boardWidth is the number of screen columns the board occupies.
func boardWidth(p mines.Params) int {
	return p.Cols * cellWidth
}
