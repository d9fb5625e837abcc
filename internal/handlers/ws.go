package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/vancomm/minesweeper/internal/mines"
	"github.com/vancomm/minesweeper/internal/repository"
)

// Command is one line of a websocket message:
//
//	o <row> <col>   reveal
//	f <row> <col>   toggle flag
//	c <row> <col>   chord
//	r               forfeit
//	g               resend state
type Command struct {
	Op  byte
	Pos mines.Point
}

var ErrUnknownCommand = errors.New("unknown command")

func parseCommand(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 || len(fields[0]) != 1 {
		return Command{}, fmt.Errorf("%w %q", ErrUnknownCommand, line)
	}
	cmd := Command{Op: fields[0][0]}
	switch cmd.Op {
	case 'o', 'f', 'c':
		if len(fields) != 3 {
			return Command{}, fmt.Errorf("%q takes a row and a column", fields[0])
		}
		row, rowErr := strconv.Atoi(fields[1])
		col, colErr := strconv.Atoi(fields[2])
		if err := errors.Join(rowErr, colErr); err != nil {
			return Command{}, fmt.Errorf("bad coordinates in %q: %w", line, err)
		}
		cmd.Pos = mines.Point{Row: row, Col: col}
	case 'r', 'g':
		if len(fields) != 1 {
			return Command{}, fmt.Errorf("%q takes no arguments", fields[0])
		}
	default:
		return Command{}, fmt.Errorf("%w %q", ErrUnknownCommand, line)
	}
	return cmd, nil
}

// execute applies cmd and reports whether the game changed.
func (cmd Command) execute(game *mines.Game) bool {
	switch cmd.Op {
	case 'o':
		return applyMove(game, Reveal, cmd.Pos)
	case 'f':
		return applyMove(game, Flag, cmd.Pos)
	case 'c':
		return applyMove(game, Chord, cmd.Pos)
	case 'r':
		return game.Forfeit()
	default:
		return false
	}
}

// liveGame is a game session bound to one websocket connection. mu
// serializes board changes with writes to conn.
type liveGame struct {
	logger  *slog.Logger
	conn    *websocket.Conn
	session *repository.GameSession
	save    func(context.Context) error

	mu   sync.Mutex
	game *mines.Game
}

func (l *liveGame) writeJSON(v any) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.conn.WriteJSON(v)
}

func (l *liveGame) snapshot() *GameSessionDTO {
	return NewGameSessionDTO(l.session.GameSessionId, l.game, time.Now())
}

// handle runs every command in message. A malformed line is reported to the
// client and the rest of the message still runs.
func (l *liveGame) handle(ctx context.Context, message string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	changed := false
	for _, line := range iterBySep(strings.TrimSpace(message), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		cmd, err := parseCommand(line)
		if err != nil {
			l.logger.Debug("rejected command", slog.String("line", line), slog.Any("error", err))
			if err := l.conn.WriteJSON(wrapError(err)); err != nil {
				return err
			}
			continue
		}
		if cmd.execute(l.game) {
			changed = true
		}
	}

	if changed {
		if err := l.save(context.WithoutCancel(ctx)); err != nil {
			return fmt.Errorf("unable to update session in db: %w", err)
		}
	}
	return l.conn.WriteJSON(l.snapshot())
}

func (l *liveGame) readLoop(ctx context.Context) error {
	for {
		mt, message, err := l.conn.ReadMessage()
		if err != nil {
			return err
		}
		if mt != websocket.TextMessage {
			return fmt.Errorf("unexpected message type %d", mt)
		}
		if err := l.handle(ctx, string(message)); err != nil {
			return err
		}
	}
}

func (l *liveGame) tickLoop(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			l.mu.Lock()
			ticking := l.game.Ticking()
			elapsed := int64(l.game.Elapsed(now) / time.Second)
			l.mu.Unlock()
			if !ticking {
				continue
			}
			if err := l.writeJSON(TickDTO{Elapsed: elapsed}); err != nil {
				return err
			}
		}
	}
}

func (l *liveGame) run(ctx context.Context, interval time.Duration) error {
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		<-egCtx.Done()
		if ctx.Err() != nil {
			msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
			_ = l.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		}
		return l.conn.Close()
	})
	eg.Go(func() error {
		return l.readLoop(egCtx)
	})
	eg.Go(func() error {
		return l.tickLoop(egCtx, interval)
	})
	return eg.Wait()
}

// Shutdown closes every live game connection. Hijacked connections are not
// tracked by http.Server, so register it with RegisterOnShutdown.
func (g *GameHandler) Shutdown() {
	g.shutdownOnce.Do(func() {
		close(g.shutdown)
	})
}

func (g *GameHandler) ConnectWS(w http.ResponseWriter, r *http.Request) {
	session, game, ok := g.loadSession(w, r)
	if !ok {
		return
	}
	if !mayPlay(r, session) {
		sendError(w, g.logger, http.StatusForbidden, ErrNotYourGame)
		return
	}

	conn, err := g.ws.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Warn("unable to upgrade connection", slog.Any("error", err))
		return
	}

	logger := g.logger.With(slog.Int64("gameSessionId", session.GameSessionId))
	live := &liveGame{
		logger:  logger,
		conn:    conn,
		session: session,
		game:    game,
	}
	live.save = func(ctx context.Context) error {
		return g.save(ctx, session, live.game)
	}

	if err := live.writeJSON(live.snapshot()); err != nil {
		logger.Warn("unable to send initial state", slog.Any("error", err))
		conn.Close()
		return
	}

	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	defer cancel()
	go func() {
		select {
		case <-g.shutdown:
			cancel()
		case <-ctx.Done():
		}
	}()

	logger.Debug("websocket connected")
	err = live.run(ctx, g.ws.TickInterval)
	if ctx.Err() != nil {
		logger.Debug("websocket closed on shutdown")
		return
	}
	if err != nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		logger.Warn("websocket closed", slog.Any("error", err))
		return
	}
	logger.Debug("websocket closed")
}
