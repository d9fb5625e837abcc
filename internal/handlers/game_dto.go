package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/schema"

	"github.com/vancomm/minesweeper/internal/mines"
	"github.com/vancomm/minesweeper/internal/repository"
)

var decoder = newDecoder()

func newDecoder() *schema.Decoder {
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)
	return dec
}

type CreateNewGameDTO struct {
	Preset string `schema:"preset"`
	Rows   int    `schema:"rows"`
	Cols   int    `schema:"cols"`
	Mines  int    `schema:"mines"`
}

var ErrUnknownPreset = errors.New("unknown preset")

// ParseGameParams reads either a preset name or an explicit
// rows/cols/mines triplet.
func ParseGameParams(src map[string][]string) (mines.Params, error) {
	var dto CreateNewGameDTO
	if err := decoder.Decode(&dto, src); err != nil {
		return mines.Params{}, err
	}
	if dto.Preset != "" {
		preset, ok := mines.PresetByName(dto.Preset)
		if !ok {
			return mines.Params{}, fmt.Errorf("%w %q", ErrUnknownPreset, dto.Preset)
		}
		return preset.Params, nil
	}
	params := mines.Params{Rows: dto.Rows, Cols: dto.Cols, Mines: dto.Mines}
	return params, params.Validate()
}

type GameMove uint8

const (
	Reveal GameMove = iota + 1
	Flag
	Chord
)

var ErrBadMove = errors.New("move must be one of 'reveal', 'flag', 'chord'")

func ParseGameMove(s string) (GameMove, error) {
	switch strings.ToLower(s) {
	case "reveal", "open":
		return Reveal, nil
	case "flag":
		return Flag, nil
	case "chord":
		return Chord, nil
	default:
		return 0, ErrBadMove
	}
}

type MoveDTO struct {
	Move string `schema:"move,required"`
	Row  int    `schema:"row,required"`
	Col  int    `schema:"col,required"`
}

func ParseMove(src map[string][]string) (GameMove, mines.Point, error) {
	var dto MoveDTO
	if err := decoder.Decode(&dto, src); err != nil {
		return 0, mines.Point{}, err
	}
	move, err := ParseGameMove(dto.Move)
	if err != nil {
		return 0, mines.Point{}, err
	}
	return move, mines.Point{Row: dto.Row, Col: dto.Col}, nil
}

// applyMove reports whether the move changed the game.
func applyMove(game *mines.Game, move GameMove, p mines.Point) bool {
	switch move {
	case Reveal:
		return game.Reveal(p.Row, p.Col)
	case Flag:
		return game.ToggleFlag(p.Row, p.Col)
	case Chord:
		return game.Chord(p.Row, p.Col)
	default:
		return false
	}
}

type HighscoreQueryDTO struct {
	Seed     string `schema:"seed"`
	Username string `schema:"username"`
	Limit    int    `schema:"limit"`
}

func ParseHighscoreFilter(src map[string][]string) (repository.HighscoreFilter, error) {
	var dto HighscoreQueryDTO
	var filter repository.HighscoreFilter
	if err := decoder.Decode(&dto, src); err != nil {
		return filter, err
	}
	if dto.Seed != "" {
		params, err := mines.ParseSeed(dto.Seed)
		if err != nil {
			return filter, err
		}
		filter.Params = params
	}
	if dto.Username != "" {
		filter.Username = &dto.Username
	}
	if dto.Limit < 0 || dto.Limit > 500 {
		return filter, errors.New("limit must be between 0 and 500")
	}
	filter.Limit = dto.Limit
	return filter, nil
}

type GameSessionDTO struct {
	GameSessionId string       `json:"game_session_id"`
	Rows          int          `json:"rows"`
	Cols          int          `json:"cols"`
	MineCount     int          `json:"mine_count"`
	Status        mines.Status `json:"status"`
	MinesLeft     int          `json:"mines_left"`
	RevealedCount int          `json:"revealed_count"`
	Elapsed       int64        `json:"elapsed"`
	Grid          mines.Grid   `json:"grid"`
	StartedAt     *int64       `json:"started_at,omitempty"`
	EndedAt       *int64       `json:"ended_at,omitempty"`
}

func unixMilli(t time.Time) *int64 {
	if t.IsZero() {
		return nil
	}
	ms := t.UnixMilli()
	return &ms
}

func NewGameSessionDTO(gameSessionID int64, g *mines.Game, now time.Time) *GameSessionDTO {
	return &GameSessionDTO{
		GameSessionId: strconv.FormatInt(gameSessionID, 10),
		Rows:          g.Rows,
		Cols:          g.Cols,
		MineCount:     g.Mines,
		Status:        g.Status,
		MinesLeft:     g.MinesLeft(),
		RevealedCount: g.RevealedCount,
		Elapsed:       int64(g.Elapsed(now) / time.Second),
		Grid:          g.PlayerGrid(),
		StartedAt:     unixMilli(g.StartedAt),
		EndedAt:       unixMilli(g.EndedAt),
	}
}

type TickDTO struct {
	Elapsed int64 `json:"elapsed"`
}
