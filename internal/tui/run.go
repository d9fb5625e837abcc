package tui

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"
)

// tickEvent wakes the event loop so the timer can be redrawn.
type tickEvent struct {
	when time.Time
}

func (e *tickEvent) When() time.Time {
	return e.when
}

func ticker(ctx context.Context, s tcell.Screen, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			// a full queue just drops a frame
			_ = s.PostEvent(&tickEvent{when: now})
		}
	}
}

// Run drives m on an initialized screen until the player quits or ctx is
// done. The caller owns s and must Fini it.
func Run(ctx context.Context, s tcell.Screen, m *Model, tick time.Duration) error {
	s.EnableMouse()
	s.HideCursor()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go ticker(ctx, s, tick)
	go func() {
		<-ctx.Done()
		_ = s.PostEvent(tcell.NewEventInterrupt(nil))
	}()

	m.Draw(s)
	s.Show()
	for {
		ev := s.PollEvent()
		if ev == nil || ctx.Err() != nil {
			return ctx.Err()
		}
		switch ev := ev.(type) {
		case *tcell.EventResize:
			s.Sync()
		case *tickEvent:
			if !m.game.Ticking() {
				continue
			}
		case *tcell.EventInterrupt:
			continue
		default:
			if !m.HandleEvent(ev) {
				return nil
			}
		}
		m.Draw(s)
		s.Show()
	}
}
