package repository

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/vancomm/minesweeper/internal/mines"
)

type GameSession struct {
	GameSessionId int64              `db:"game_session_id"`
	PlayerId      *int64             `db:"player_id"`
	Rows          int                `db:"board_rows"`
	Cols          int                `db:"board_cols"`
	MineCount     int                `db:"mine_count"`
	Status        string             `db:"status"`
	StartedAt     pgtype.Timestamptz `db:"started_at"`
	EndedAt       pgtype.Timestamptz `db:"ended_at"`
	State         []byte             `db:"state"`
	CreatedAt     pgtype.Timestamptz `db:"created_at"`
	UpdatedAt     pgtype.Timestamptz `db:"updated_at"`
}

// Game decodes the stored board.
func (s GameSession) Game() (*mines.Game, error) {
	return mines.DecodeGame(s.State)
}

type CreateGameSessionParams struct {
	PlayerId *int64
}

func (p CreateGameSessionParams) UpdateArgs(args *pgx.NamedArgs) *pgx.NamedArgs {
	(*args)["player_id"] = p.PlayerId
	return args
}

func (q Queries) CreateGameSession(
	ctx context.Context, game *mines.Game, params CreateGameSessionParams,
) (*GameSession, error) {
	state, err := game.Bytes()
	if err != nil {
		return nil, err
	}

	args := pgx.NamedArgs{
		"board_rows": game.Rows,
		"board_cols": game.Cols,
		"mine_count": game.Mines,
		"status":     game.Status.String(),
		"started_at": timestamptz(game.StartedAt),
		"ended_at":   timestamptz(game.EndedAt),
		"state":      state,
	}
	params.UpdateArgs(&args)

	rows, _ := q.db.Query(
		ctx,
		`INSERT INTO game_session (
			player_id, board_rows, board_cols, mine_count, status, started_at, ended_at, state
		)
		VALUES (
			@player_id, @board_rows, @board_cols, @mine_count, @status, @started_at, @ended_at, @state
		)
		RETURNING *;`,
		args,
	)
	return pgx.CollectExactlyOneRow(
		rows, pgx.RowToAddrOfStructByName[GameSession],
	)
}

func (q Queries) FetchGameSession(ctx context.Context, gameSessionId int64) (*GameSession, error) {
	rows, _ := q.db.Query(
		ctx,
		"SELECT * FROM game_session WHERE game_session_id = $1",
		gameSessionId,
	)
	return pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[GameSession])
}

type UpdateGameSessionParams struct {
	Status    *string
	StartedAt *time.Time
	EndedAt   *time.Time
	State     *[]byte
}

// UpdateParamsFromGame snapshots everything about game that the
// game_session row mirrors.
func UpdateParamsFromGame(game *mines.Game) (UpdateGameSessionParams, error) {
	state, err := game.Bytes()
	if err != nil {
		return UpdateGameSessionParams{}, err
	}
	status := game.Status.String()
	params := UpdateGameSessionParams{Status: &status, State: &state}
	if !game.StartedAt.IsZero() {
		params.StartedAt = &game.StartedAt
	}
	if !game.EndedAt.IsZero() {
		params.EndedAt = &game.EndedAt
	}
	return params, nil
}

func (p UpdateGameSessionParams) SetClause() (string, map[string]any) {
	parts := []string{"updated_at = now()"}
	args := make(map[string]any)

	if p.Status != nil {
		parts = append(parts, "status = @status")
		args["status"] = *p.Status
	}
	if p.StartedAt != nil {
		parts = append(parts, "started_at = @started_at")
		args["started_at"] = *p.StartedAt
	}
	if p.EndedAt != nil {
		parts = append(parts, "ended_at = @ended_at")
		args["ended_at"] = *p.EndedAt
	}
	if p.State != nil {
		parts = append(parts, "state = @state")
		args["state"] = *p.State
	}

	return strings.Join(parts, ", "), args
}

func (q Queries) UpdateGameSession(
	ctx context.Context, gameSessionId int64, params UpdateGameSessionParams,
) (*GameSession, error) {
	setClause, args := params.SetClause()
	args["game_session_id"] = gameSessionId
	rows, _ := q.db.Query(
		ctx,
		"UPDATE game_session SET "+setClause+" WHERE game_session_id = @game_session_id RETURNING *",
		pgx.NamedArgs(args),
	)
	return pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[GameSession])
}
