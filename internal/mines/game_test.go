package mines

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func revealedSet(b *Board) map[Point]bool {
	out := make(map[Point]bool)
	for c := range b.All() {
		if c.IsRevealed {
			out[Point{c.Row, c.Col}] = true
		}
	}
	return out
}

// expectedRegion computes the zero-region of start plus its numbered border
// independently of floodReveal.
func expectedRegion(b *Board, start Point) map[Point]bool {
	out := map[Point]bool{start: true}
	if b.Cells[start.Row][start.Col].NeighborMines != 0 {
		return out
	}
	stack := []Point{start}
	seen := map[Point]bool{start: true}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for dr := -1; dr <= 1; dr++ {
			for dc := -1; dc <= 1; dc++ {
				q := Point{p.Row + dr, p.Col + dc}
				if !b.InBounds(q.Row, q.Col) || seen[q] {
					continue
				}
				seen[q] = true
				c := b.Cells[q.Row][q.Col]
				if c.IsMine {
					continue
				}
				out[q] = true
				if c.NeighborMines == 0 {
					stack = append(stack, q)
				}
			}
		}
	}
	return out
}

func TestRevealFloodFillMatchesRegion(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	params := Params{Rows: 12, Cols: 20, Mines: 30}
	for range 100 {
		g, err := NewGame(params, r)
		require.NoError(t, err)

		var start *Cell
		for c := range g.Board.All() {
			if !c.IsMine && c.NeighborMines == 0 {
				start = c
				break
			}
		}
		if start == nil {
			continue
		}
		p := Point{start.Row, start.Col}
		want := expectedRegion(g.Board, p)

		require.True(t, g.Reveal(p.Row, p.Col))
		assert.Equal(t, want, revealedSet(g.Board))
		assert.Equal(t, len(want), g.RevealedCount)
	}
}

func TestRevealStopsAtNumbers(t *testing.T) {
	g := gameFromLayout(t,
		"..*..",
		"..*..",
		"..*..",
	)
	require.True(t, g.Reveal(0, 0))
	assert.Equal(t, 6, g.RevealedCount)
	for c := range g.Board.All() {
		assert.Equal(t, c.Col < 2, c.IsRevealed, "cell %d:%d", c.Row, c.Col)
	}
	assert.Equal(t, Playing, g.Status)

	// a numbered cell opens alone
	require.True(t, g.Reveal(1, 3))
	assert.Equal(t, 7, g.RevealedCount)
	assert.False(t, g.Board.Cells[0][3].IsRevealed)
}

func TestRevealSkipsFlaggedCells(t *testing.T) {
	g := gameFromLayout(t,
		".....",
		".....",
		"....*",
	)
	require.True(t, g.ToggleFlag(0, 4))
	require.True(t, g.Reveal(0, 0))
	assert.False(t, g.Board.Cells[0][4].IsRevealed)
	assert.True(t, g.Board.Cells[0][4].IsFlagged)
	assert.Equal(t, 13, g.RevealedCount)
	assert.Equal(t, Playing, g.Status)

	require.True(t, g.ToggleFlag(0, 4))
	require.True(t, g.Reveal(0, 4))
	assert.Equal(t, Won, g.Status)
}

func TestRevealWinsWhenAllSafeCellsOpen(t *testing.T) {
	g := gameFromLayout(t,
		"*....",
		".....",
		".....",
		"....*",
	)
	require.True(t, g.Reveal(0, 4))
	assert.Equal(t, 18, g.RevealedCount)
	assert.Equal(t, Won, g.Status)
	assert.False(t, g.EndedAt.IsZero())
	assert.False(t, g.Ticking())

	assert.False(t, g.Reveal(0, 0), "reveal after the game ended")
	assert.False(t, g.ToggleFlag(0, 0), "flag after the game ended")
}

func TestRevealMineLoses(t *testing.T) {
	g := gameFromLayout(t,
		"*..",
		"...",
		"..*",
	)
	require.True(t, g.ToggleFlag(2, 2))
	require.True(t, g.Reveal(0, 1))
	require.True(t, g.Reveal(0, 0))

	assert.Equal(t, Lost, g.Status)
	assert.Equal(t, &Point{0, 0}, g.Exploded)
	assert.True(t, g.Board.Cells[0][0].IsRevealed)
	assert.True(t, g.Board.Cells[2][2].IsRevealed, "all mines are revealed")
	assert.Equal(t, 1, g.RevealedCount)

	grid := g.PlayerGrid()
	assert.Equal(t, ExplodedMine, grid[0][0])
	assert.Equal(t, CorrectlyFlagged, grid[2][2])
	assert.Equal(t, CellState(1), grid[0][1])
	assert.Equal(t, Unknown, grid[1][1])
}

func TestRevealInertCells(t *testing.T) {
	g := gameFromLayout(t,
		"*..",
		"..*",
	)
	assert.False(t, g.Reveal(-1, 0))
	assert.False(t, g.Reveal(0, 3))
	assert.False(t, g.Reveal(2, 0))

	require.True(t, g.Reveal(0, 1))
	assert.False(t, g.Reveal(0, 1), "already revealed")

	require.True(t, g.ToggleFlag(0, 0))
	assert.False(t, g.Reveal(0, 0), "flagged")
	assert.Equal(t, Playing, g.Status)
	assert.False(t, g.Board.Cells[0][0].IsRevealed)
}

func TestToggleFlag(t *testing.T) {
	g := gameFromLayout(t,
		"*..",
		"...",
		"..*",
	)
	assert.Equal(t, 2, g.MinesLeft())

	require.True(t, g.ToggleFlag(1, 1))
	assert.Equal(t, 1, g.MinesLeft())
	require.True(t, g.ToggleFlag(1, 1))
	assert.Equal(t, 2, g.MinesLeft())

	require.True(t, g.Reveal(0, 1))
	assert.False(t, g.ToggleFlag(0, 1), "revealed cells cannot be flagged")
	assert.False(t, g.Board.Cells[0][1].IsFlagged)
	assert.Equal(t, 2, g.MinesLeft())

	assert.False(t, g.ToggleFlag(5, 5))

	// more flags than mines drive the counter negative
	for _, p := range []Point{{1, 0}, {1, 1}, {1, 2}} {
		require.True(t, g.ToggleFlag(p.Row, p.Col))
	}
	assert.Equal(t, -1, g.MinesLeft())
}

func TestFlagWin(t *testing.T) {
	g := gameFromLayout(t,
		"*..",
		"...",
		"..*",
	)
	require.True(t, g.ToggleFlag(0, 0))
	require.True(t, g.ToggleFlag(1, 1)) // wrong
	require.True(t, g.ToggleFlag(2, 2))
	assert.Equal(t, Playing, g.Status, "an incorrect flag blocks the win")

	require.True(t, g.ToggleFlag(1, 1))
	assert.Equal(t, Won, g.Status)
	assert.Equal(t, 0, g.MinesLeft())
	assert.Equal(t, time.Duration(0), g.Elapsed(time.Now()), "timer never started")

	grid := g.PlayerGrid()
	assert.Equal(t, CorrectlyFlagged, grid[0][0])
	assert.Equal(t, Unknown, grid[1][1])
}

func TestFlagWinNeedsMines(t *testing.T) {
	g := gameFromLayout(t, "...")
	require.True(t, g.ToggleFlag(0, 0))
	require.True(t, g.ToggleFlag(0, 0))
	assert.Equal(t, Playing, g.Status)
	require.True(t, g.Reveal(0, 1))
	assert.Equal(t, Won, g.Status)
}

func TestAllMinesBoardWinsByFlags(t *testing.T) {
	g := gameFromLayout(t, "**")
	require.True(t, g.ToggleFlag(0, 0))
	assert.Equal(t, Playing, g.Status)
	require.True(t, g.ToggleFlag(0, 1))
	assert.Equal(t, Won, g.Status)
}

func TestChord(t *testing.T) {
	g := gameFromLayout(t,
		"*...",
		"....",
		"....",
		"...*",
	)
	require.True(t, g.Reveal(1, 1))
	assert.False(t, g.Chord(1, 1), "no flags yet")
	assert.False(t, g.Chord(0, 0), "hidden cells do not chord")

	require.True(t, g.ToggleFlag(0, 0))
	require.True(t, g.Chord(1, 1))
	assert.Equal(t, Won, g.Status)
	assert.Equal(t, 14, g.RevealedCount)
}

func TestChordWrongFlagLoses(t *testing.T) {
	g := gameFromLayout(t,
		"*..",
		"...",
		"...",
	)
	require.True(t, g.Reveal(1, 1))
	require.True(t, g.ToggleFlag(0, 1))
	require.True(t, g.Chord(1, 1))
	assert.Equal(t, Lost, g.Status)
	assert.Equal(t, &Point{0, 0}, g.Exploded)
	assert.Equal(t, FalselyFlagged, g.PlayerGrid()[0][1])
}

func TestForfeitAndRestart(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	g, err := NewGame(Params{Rows: 5, Cols: 5, Mines: 5}, r)
	require.NoError(t, err)

	require.True(t, g.Forfeit())
	assert.Equal(t, Lost, g.Status)
	assert.Nil(t, g.Exploded)
	assert.False(t, g.Forfeit())
	for c := range g.Board.All() {
		assert.Equal(t, c.IsMine, c.IsRevealed)
	}

	require.NoError(t, g.Restart(r))
	assert.Equal(t, Playing, g.Status)
	assert.Equal(t, 5, g.Board.MineCount())
	assert.Zero(t, g.RevealedCount)
	assert.Zero(t, g.Flags)
	assert.True(t, g.StartedAt.IsZero())
	assert.Empty(t, revealedSet(g.Board))
}

func TestTimer(t *testing.T) {
	g := gameFromLayout(t,
		"*..",
		"...",
		"...",
	)
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	now := start
	g.SetClock(func() time.Time { return now })

	assert.False(t, g.Ticking())
	assert.Equal(t, time.Duration(0), g.Elapsed(now))

	require.True(t, g.ToggleFlag(2, 2))
	require.True(t, g.ToggleFlag(2, 2))
	assert.False(t, g.Ticking(), "flags do not start the timer")

	require.True(t, g.Reveal(0, 1))
	assert.True(t, g.Ticking())
	assert.Equal(t, start, g.StartedAt)

	now = start.Add(42 * time.Second)
	assert.Equal(t, 42*time.Second, g.Elapsed(now))

	require.True(t, g.Reveal(0, 0))
	assert.False(t, g.Ticking())
	assert.Equal(t, 42*time.Second, g.Elapsed(now.Add(time.Hour)), "timer stops with the game")
}

func TestPlayerGridHidesMines(t *testing.T) {
	g := gameFromLayout(t,
		"*..",
		"...",
		"..*",
	)
	require.True(t, g.Reveal(0, 2))
	require.True(t, g.ToggleFlag(2, 2))
	grid := g.PlayerGrid()
	for _, row := range grid {
		for _, s := range row {
			assert.NotContains(t, []CellState{ExplodedMine, UnflaggedMine, CorrectlyFlagged, FalselyFlagged}, s)
		}
	}
	assert.Equal(t, Flagged, grid[2][2])
	assert.Equal(t, CellState(0), grid[0][2])
	assert.Equal(t, CellState(2), grid[1][1])
	assert.Equal(t, "- 1 .\n- 2 1\n- - F\n", grid.String())
}

func TestGameBytesRoundTrip(t *testing.T) {
	r := rand.New(rand.NewPCG(5, 6))
	g, err := NewGame(Params{Rows: 9, Cols: 17, Mines: 15}, r)
	require.NoError(t, err)
	for c := range g.Board.All() {
		if !c.IsMine {
			g.Reveal(c.Row, c.Col)
			break
		}
	}
	for c := range g.Board.All() {
		if c.IsMine {
			g.ToggleFlag(c.Row, c.Col)
			break
		}
	}

	b, err := g.Bytes()
	require.NoError(t, err)
	decoded, err := DecodeGame(b)
	require.NoError(t, err)

	assert.Equal(t, g.Params, decoded.Params)
	assert.Equal(t, g.Status, decoded.Status)
	assert.Equal(t, g.Flags, decoded.Flags)
	assert.Equal(t, g.RevealedCount, decoded.RevealedCount)
	assert.True(t, g.StartedAt.Equal(decoded.StartedAt))
	assert.Equal(t, g.Board.Cells, decoded.Board.Cells)
	assert.Equal(t, g.PlayerGrid(), decoded.PlayerGrid())

	_, err = DecodeGame([]byte("not a game"))
	assert.Error(t, err)
}

func TestStatusText(t *testing.T) {
	for _, s := range []Status{Playing, Won, Lost} {
		b, err := s.MarshalText()
		require.NoError(t, err)
		var got Status
		require.NoError(t, got.UnmarshalText(b))
		assert.Equal(t, s, got)
	}
	var s Status
	assert.Error(t, s.UnmarshalText([]byte("paused")))
}
