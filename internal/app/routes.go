package app

import (
	"hash/maphash"
	"io"
	"math/rand/v2"
	"net/http"
	"strings"

	"github.com/vancomm/minesweeper/internal/config"
	"github.com/vancomm/minesweeper/internal/handlers"
	"github.com/vancomm/minesweeper/internal/repository"
)

func createRand() *rand.Rand {
	return rand.New(rand.NewPCG(
		new(maphash.Hash).Sum64(), new(maphash.Hash).Sum64(),
	))
}

type Repository interface {
	handlers.GameRepository
	handlers.PlayerRepository
}

var _ Repository = (*repository.Queries)(nil)

func (a *App) loadRoutes(repo Repository) {
	game := handlers.NewGameHandler(a.logger, repo, a.ws, createRand())
	auth := handlers.NewAuth(a.logger, repo, a.cookies)
	a.game = game

	r := a.router
	if base := strings.TrimRight(config.BasePath(), "/"); base != "" {
		r = r.PathPrefix(base).Subrouter()
	}

	r.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "OK")
	}).Methods(http.MethodGet)
	r.HandleFunc("/presets", game.Presets).Methods(http.MethodGet)

	r.HandleFunc("/register", auth.Register).Methods(http.MethodPost)
	r.HandleFunc("/login", auth.Login).Methods(http.MethodPost)
	r.HandleFunc("/logout", auth.Logout).Methods(http.MethodPost)
	r.HandleFunc("/auth/status", auth.Status).Methods(http.MethodGet)

	r.HandleFunc("/game", game.NewGame).Methods(http.MethodPost)
	r.HandleFunc("/game/highscores", game.Highscores).Methods(http.MethodGet)
	r.HandleFunc("/game/{id:[0-9]+}", game.Fetch).Methods(http.MethodGet)
	r.HandleFunc("/game/{id:[0-9]+}/move", game.MakeAMove).Methods(http.MethodPost)
	r.HandleFunc("/game/{id:[0-9]+}/forfeit", game.Forfeit).Methods(http.MethodPost)
	r.HandleFunc("/game/{id:[0-9]+}/restart", game.Restart).Methods(http.MethodPost)
	r.HandleFunc("/game/{id:[0-9]+}/connect", game.ConnectWS).Methods(http.MethodGet)
}
