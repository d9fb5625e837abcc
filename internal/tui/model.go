package tui

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/vancomm/minesweeper/internal/mines"
)

// Recorder keeps best times between runs.
type Recorder interface {
	Save(ctx context.Context, params mines.Params, elapsed time.Duration) error
	Best(ctx context.Context, params mines.Params) (time.Duration, bool, error)
}

// Model is the terminal game: the current round, the selected preset and the
// best time for it. All methods run on the event loop goroutine.
type Model struct {
	logger   *slog.Logger
	presets  []mines.Preset
	preset   int
	rnd      *rand.Rand
	records  Recorder
	game     *mines.Game
	best     time.Duration
	hasBest  bool
	buttons  tcell.ButtonMask
	now      func() time.Time
	quitting bool
}

func NewModel(logger *slog.Logger, preset string, rnd *rand.Rand, records Recorder) (*Model, error) {
	m := &Model{
		logger:  logger,
		presets: mines.Presets(),
		rnd:     rnd,
		records: records,
		now:     time.Now,
	}
	idx := -1
	for i, p := range m.presets {
		if p.Name == preset {
			idx = i
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("unknown level %q", preset)
	}
	if err := m.selectPreset(idx); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Model) Game() *mines.Game {
	return m.game
}

func (m *Model) Params() mines.Params {
	return m.presets[m.preset].Params
}

func (m *Model) selectPreset(i int) error {
	m.preset = i
	if err := m.restart(); err != nil {
		return err
	}
	m.loadBest()
	return nil
}

func (m *Model) restart() error {
	game, err := mines.NewGame(m.Params(), m.rnd)
	if err != nil {
		return err
	}
	game.SetClock(m.now)
	m.game = game
	return nil
}

func (m *Model) loadBest() {
	m.hasBest = false
	if m.records == nil {
		return
	}
	best, ok, err := m.records.Best(context.Background(), m.Params())
	if err != nil {
		m.logger.Warn("unable to load best time", slog.Any("error", err))
		return
	}
	m.best, m.hasBest = best, ok
}

// afterMove stores the time of a fresh win.
func (m *Model) afterMove(wasOver bool) {
	if wasOver || m.game.Status != mines.Won {
		return
	}
	elapsed := m.game.Elapsed(m.now())
	m.logger.Info("game won", slog.String("level", m.presets[m.preset].Name), slog.Duration("elapsed", elapsed))
	if m.records == nil {
		return
	}
	if err := m.records.Save(context.Background(), m.Params(), elapsed); err != nil {
		m.logger.Warn("unable to save record", slog.Any("error", err))
		return
	}
	m.loadBest()
}

func (m *Model) reveal(pt mines.Point) {
	wasOver := m.game.Over()
	if m.game.Reveal(pt.Row, pt.Col) {
		m.afterMove(wasOver)
	}
}

func (m *Model) flag(pt mines.Point) {
	wasOver := m.game.Over()
	if m.game.ToggleFlag(pt.Row, pt.Col) {
		m.afterMove(wasOver)
	}
}

func (m *Model) chord(pt mines.Point) {
	wasOver := m.game.Over()
	if m.game.Chord(pt.Row, pt.Col) {
		m.afterMove(wasOver)
	}
}

// HandleEvent applies a key or mouse event. It reports false once the
// player asked to quit.
func (m *Model) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		m.handleKey(ev)
	case *tcell.EventMouse:
		m.handleMouse(ev)
	}
	return !m.quitting
}

func (m *Model) handleKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		m.quitting = true
		return
	case tcell.KeyRune:
	default:
		return
	}

	switch r := ev.Rune(); r {
	case 'q', 'Q':
		m.quitting = true
	case 'r', 'R':
		m.mustRestart()
	case '1', '2', '3', '4', '5', '6', '7', '8', '9':
		if i := int(r - '1'); i < len(m.presets) {
			m.mustSelect(i)
		}
	}
}

func (m *Model) handleMouse(ev *tcell.EventMouse) {
	buttons := ev.Buttons()
	pressed := buttons &^ m.buttons
	m.buttons = buttons
	if pressed == 0 {
		return
	}

	x, y := ev.Position()
	if i, ok := tabAt(m.presets, x, y); ok && pressed&tcell.Button1 != 0 {
		m.mustSelect(i)
		return
	}
	if y == bannerRow && pressed&tcell.Button1 != 0 {
		m.mustRestart()
		return
	}

	pt, ok := cellAt(m.Params(), x, y)
	if !ok {
		return
	}
	switch {
	case pressed&tcell.Button3 != 0:
		m.chord(pt)
	case pressed&tcell.Button2 != 0:
		m.flag(pt)
	case pressed&tcell.Button1 != 0:
		m.reveal(pt)
	}
}

func (m *Model) mustRestart() {
	if err := m.restart(); err != nil {
		m.logger.Error("unable to restart", slog.Any("error", err))
	}
}

func (m *Model) mustSelect(i int) {
	if err := m.selectPreset(i); err != nil {
		m.logger.Error("unable to switch level", slog.Any("error", err))
	}
}
