package tui

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/vancomm/minesweeper/internal/mines"
)

const title = "minesweeper.exe"

var (
	styleDefault  = tcell.StyleDefault
	styleTab      = tcell.StyleDefault.Foreground(tcell.ColorSilver)
	styleTabOn    = tcell.StyleDefault.Reverse(true).Bold(true)
	styleTitle    = tcell.StyleDefault.Bold(true)
	styleHidden   = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleFlag     = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleMine     = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	styleExploded = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorRed).Bold(true)
	styleWon      = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	styleLost     = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
)

var numberColors = [9]tcell.Color{
	tcell.ColorDefault,
	tcell.ColorBlue,
	tcell.ColorGreen,
	tcell.ColorRed,
	tcell.ColorNavy,
	tcell.ColorMaroon,
	tcell.ColorTeal,
	tcell.ColorWhite,
	tcell.ColorGray,
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) int {
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x++
	}
	return x
}

// clock formats d as mm:ss.
func clock(d time.Duration) string {
	secs := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

func (m *Model) banner() (string, tcell.Style) {
	switch m.game.Status {
	case mines.Won:
		return "[ you won! click to play again ]", styleWon
	case mines.Lost:
		return "[ boom! click to try again ]", styleLost
	default:
		return "[ click here to restart ]", styleDefault
	}
}

func glyph(state mines.CellState) (rune, tcell.Style) {
	switch {
	case state == mines.Unknown:
		return '#', styleHidden
	case state == mines.Flagged, state == mines.CorrectlyFlagged:
		return 'F', styleFlag
	case state == mines.FalselyFlagged:
		return 'x', styleFlag
	case state == mines.ExplodedMine:
		return '*', styleExploded
	case state == mines.UnflaggedMine:
		return '*', styleMine
	case state == 0:
		return '.', styleHidden.Dim(true)
	case state.Open():
		return rune('0' + state), styleDefault.Foreground(numberColors[state]).Bold(true)
	default:
		return '?', styleDefault
	}
}

// Draw renders the whole model onto s. It does not call Show.
func (m *Model) Draw(s tcell.Screen) {
	s.Clear()

	for i, sp := range tabSpans(m.presets) {
		style := styleTab
		if i == m.preset {
			style = styleTabOn
		}
		drawText(s, sp.from, tabsRow, style, " "+m.presets[i].Name+" ")
	}

	drawText(s, boardLeft, titleRow, styleTitle, title)

	text, style := m.banner()
	x := drawText(s, boardLeft, bannerRow, style, text)
	status := fmt.Sprintf("  mines: %03d  time: %s", m.game.MinesLeft(), clock(m.game.Elapsed(m.now())))
	drawText(s, x, bannerRow, styleDefault, status)

	best := "best: --:--"
	if m.hasBest {
		best = "best: " + clock(m.best)
	}
	drawText(s, boardLeft, recordsRow, styleTab, best)

	grid := m.game.PlayerGrid()
	for row, cells := range grid {
		for col, state := range cells {
			r, style := glyph(state)
			x, y := cellOrigin(mines.Point{Row: row, Col: col})
			s.SetContent(x, y, r, nil, style)
		}
	}

	help := "left: reveal  right: flag  middle: chord  1-3: level  r: restart  q: quit"
	drawText(s, boardLeft, boardTop+m.game.Rows+1, styleTab, help)
}
