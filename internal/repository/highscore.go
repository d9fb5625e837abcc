// custom query
package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/vancomm/minesweeper/internal/mines"
)

const DefaultHighscoreLimit = 50

type Highscore struct {
	GameSessionId int64   `db:"game_session_id" json:"game_session_id,string"`
	Username      *string `db:"username" json:"username"`
	Rows          int     `db:"board_rows" json:"rows"`
	Cols          int     `db:"board_cols" json:"cols"`
	MineCount     int     `db:"mine_count" json:"mine_count"`
	PlaytimeMs    float64 `db:"playtime_ms" json:"playtime_ms"`
}

type HighscoreFilter struct {
	Username *string
	Params   *mines.Params
	Limit    int
}

func (f HighscoreFilter) WhereClause() (string, pgx.NamedArgs) {
	clauses := make([]string, 0)
	args := pgx.NamedArgs{}
	if f.Username != nil {
		clauses = append(clauses, "username = @username")
		args["username"] = *f.Username
	}
	if f.Params != nil {
		clauses = append(
			clauses,
			"board_rows = @rows",
			"board_cols = @cols",
			"mine_count = @mineCount",
		)
		args["rows"] = f.Params.Rows
		args["cols"] = f.Params.Cols
		args["mineCount"] = f.Params.Mines
	}
	return strings.Join(clauses, " AND "), args
}

func (q Queries) GetHighscores(
	ctx context.Context, filter HighscoreFilter,
) ([]Highscore, error) {
	query := `
	SELECT
		game_session_id,
		username,
		board_rows,
		board_cols,
		mine_count,
		(
			extract('epoch' from ended_at) -
			extract('epoch' from coalesce(started_at, ended_at))
		) * 1000 playtime_ms
	FROM game_session
		LEFT OUTER JOIN player using (player_id)
	WHERE
		status = 'won'
		AND ended_at IS NOT NULL
	`

	whereClause, args := filter.WhereClause()
	if whereClause != "" {
		query += " AND " + whereClause
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultHighscoreLimit
	}
	args["limit"] = limit

	query += " ORDER BY playtime_ms LIMIT @limit;"

	rows, err := q.db.Query(ctx, query, args)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[Highscore])
}
