package handlers

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5"

	"github.com/vancomm/minesweeper/internal/config"
	"github.com/vancomm/minesweeper/internal/middleware"
	"github.com/vancomm/minesweeper/internal/mines"
	"github.com/vancomm/minesweeper/internal/repository"
)

type GameRepository interface {
	CreateGameSession(context.Context, *mines.Game, repository.CreateGameSessionParams) (*repository.GameSession, error)
	FetchGameSession(ctx context.Context, gameSessionId int64) (*repository.GameSession, error)
	UpdateGameSession(context.Context, int64, repository.UpdateGameSessionParams) (*repository.GameSession, error)
	GetHighscores(context.Context, repository.HighscoreFilter) ([]repository.Highscore, error)
}

var (
	ErrInvalidSessionID = errors.New("invalid game session id")
	ErrNotYourGame      = errors.New("this game belongs to another player")
)

type GameHandler struct {
	logger *slog.Logger
	repo   GameRepository
	ws     *config.WebSocket

	mu  sync.Mutex /* guards rnd */
	rnd *rand.Rand

	shutdown     chan struct{} /* closed by Shutdown, ends live games */
	shutdownOnce sync.Once
}

func NewGameHandler(
	logger *slog.Logger,
	repo GameRepository,
	ws *config.WebSocket,
	rnd *rand.Rand,
) *GameHandler {
	handler := &GameHandler{
		logger:   logger,
		repo:     repo,
		ws:       ws,
		rnd:      rnd,
		shutdown: make(chan struct{}),
	}

	return handler
}

func (g *GameHandler) newGame(params mines.Params) (*mines.Game, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return mines.NewGame(params, g.rnd)
}

func (g *GameHandler) Presets(w http.ResponseWriter, r *http.Request) {
	sendJSONOrLog(w, g.logger, mines.Presets())
}

func (g *GameHandler) NewGame(w http.ResponseWriter, r *http.Request) {
	params, err := ParseGameParams(r.URL.Query())
	if err != nil {
		sendError(w, g.logger, http.StatusBadRequest, err)
		return
	}

	game, err := g.newGame(params)
	if err != nil {
		internalError(w, g.logger, "unable to generate a new game", slog.Any("error", err))
		return
	}

	var createParams repository.CreateGameSessionParams
	if claims, ok := middleware.PlayerClaims(r.Context()); ok {
		g.logger.Debug("creating player session", slog.Int64("playerId", claims.PlayerId))
		createParams.PlayerId = &claims.PlayerId
	} else {
		g.logger.Debug("creating anonymous session")
	}

	session, err := g.repo.CreateGameSession(r.Context(), game, createParams)
	if err != nil {
		internalError(w, g.logger, "unable to create game session", slog.Any("error", err))
		return
	}

	sendCreated(w, g.logger, NewGameSessionDTO(session.GameSessionId, game, time.Now()))
}

// loadSession fetches the session named in the URL and decodes its game. On
// failure it has already written the response.
func (g *GameHandler) loadSession(w http.ResponseWriter, r *http.Request) (*repository.GameSession, *mines.Game, bool) {
	sessionId, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		sendError(w, g.logger, http.StatusBadRequest, ErrInvalidSessionID)
		return nil, nil, false
	}

	session, err := g.repo.FetchGameSession(r.Context(), sessionId)
	if errors.Is(err, pgx.ErrNoRows) {
		w.WriteHeader(http.StatusNotFound)
		return nil, nil, false
	}
	if err != nil {
		internalError(w, g.logger, "unable to fetch session from db", slog.Any("error", err))
		return nil, nil, false
	}

	game, err := session.Game()
	if err != nil {
		internalError(w, g.logger, "db returned invalid game_session.state", slog.Any("error", err))
		return nil, nil, false
	}

	return session, game, true
}

// mayPlay reports whether the requester may change session. Anonymous
// sessions are open to whoever knows the id.
func mayPlay(r *http.Request, session *repository.GameSession) bool {
	if session.PlayerId == nil {
		return true
	}
	claims, ok := middleware.PlayerClaims(r.Context())
	return ok && claims.PlayerId == *session.PlayerId
}

func (g *GameHandler) save(ctx context.Context, session *repository.GameSession, game *mines.Game) error {
	params, err := repository.UpdateParamsFromGame(game)
	if err != nil {
		return err
	}
	_, err = g.repo.UpdateGameSession(ctx, session.GameSessionId, params)
	return err
}

func (g *GameHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	session, game, ok := g.loadSession(w, r)
	if !ok {
		return
	}
	sendJSONOrLog(w, g.logger, NewGameSessionDTO(session.GameSessionId, game, time.Now()))
}

func (g *GameHandler) MakeAMove(w http.ResponseWriter, r *http.Request) {
	move, pos, err := ParseMove(r.URL.Query())
	if err != nil {
		sendError(w, g.logger, http.StatusBadRequest, err)
		return
	}

	session, game, ok := g.loadSession(w, r)
	if !ok {
		return
	}
	if !mayPlay(r, session) {
		sendError(w, g.logger, http.StatusForbidden, ErrNotYourGame)
		return
	}

	// out-of-range and inert moves leave the game as it was
	if applyMove(game, move, pos) {
		if err := g.save(r.Context(), session, game); err != nil {
			internalError(w, g.logger, "unable to update session in db", slog.Any("error", err))
			return
		}
	}

	sendJSONOrLog(w, g.logger, NewGameSessionDTO(session.GameSessionId, game, time.Now()))
}

func (g *GameHandler) Forfeit(w http.ResponseWriter, r *http.Request) {
	session, game, ok := g.loadSession(w, r)
	if !ok {
		return
	}
	if !mayPlay(r, session) {
		sendError(w, g.logger, http.StatusForbidden, ErrNotYourGame)
		return
	}

	if game.Forfeit() {
		if err := g.save(r.Context(), session, game); err != nil {
			internalError(w, g.logger, "unable to update session in db", slog.Any("error", err))
			return
		}
	}

	sendJSONOrLog(w, g.logger, NewGameSessionDTO(session.GameSessionId, game, time.Now()))
}

// Restart deals a fresh board with the same params in a new session owned
// by the same player.
func (g *GameHandler) Restart(w http.ResponseWriter, r *http.Request) {
	session, game, ok := g.loadSession(w, r)
	if !ok {
		return
	}
	if !mayPlay(r, session) {
		sendError(w, g.logger, http.StatusForbidden, ErrNotYourGame)
		return
	}

	g.mu.Lock()
	err := game.Restart(g.rnd)
	g.mu.Unlock()
	if err != nil {
		internalError(w, g.logger, "unable to restart game", slog.Any("error", err))
		return
	}

	next, err := g.repo.CreateGameSession(
		r.Context(), game, repository.CreateGameSessionParams{PlayerId: session.PlayerId},
	)
	if err != nil {
		internalError(w, g.logger, "unable to create game session", slog.Any("error", err))
		return
	}

	sendCreated(w, g.logger, NewGameSessionDTO(next.GameSessionId, game, time.Now()))
}

func (g *GameHandler) Highscores(w http.ResponseWriter, r *http.Request) {
	filter, err := ParseHighscoreFilter(r.URL.Query())
	if err != nil {
		sendError(w, g.logger, http.StatusBadRequest, err)
		return
	}

	highscores, err := g.repo.GetHighscores(r.Context(), filter)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		internalError(w, g.logger, "failed to fetch highscores", slog.Any("error", err))
		return
	}
	if highscores == nil {
		highscores = []repository.Highscore{}
	}

	sendJSONOrLog(w, g.logger, highscores)
}
