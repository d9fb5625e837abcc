package mines

import (
	"fmt"
	"strings"
)

const MaxSide = 100

type Params struct {
	Rows  int `json:"rows"`
	Cols  int `json:"cols"`
	Mines int `json:"mines"`
}

func (p Params) Unpack() (rows int, cols int, mines int) {
	return p.Rows, p.Cols, p.Mines
}

func (p Params) Validate() error {
	if p.Rows < 1 || p.Rows > MaxSide || p.Cols < 1 || p.Cols > MaxSide {
		return ErrInvalidDimensions
	}
	if p.Mines < 0 || p.Mines > p.Rows*p.Cols {
		return ErrTooManyMines
	}
	return nil
}

func (p Params) Cells() int {
	return p.Rows * p.Cols
}

// Seed is a compact form of p used to group leaderboard entries.
func (p Params) Seed() string {
	return fmt.Sprintf("%d:%d:%d", p.Rows, p.Cols, p.Mines)
}

func ParseSeed(seed string) (*Params, error) {
	p := &Params{}
	sseed := strings.ReplaceAll(seed, ":", " ")
	n, err := fmt.Sscanf(sseed, "%d %d %d", &p.Rows, &p.Cols, &p.Mines)
	if n != 3 || err != nil {
		return nil, fmt.Errorf(
			`invalid game params seed (seed = "%s", n = %d, err = %w)`,
			seed, n, err,
		)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

type Preset struct {
	Name string `json:"name"`
	Params
}

var presets = []Preset{
	{Name: "junior", Params: Params{Rows: 9, Cols: 17, Mines: 15}},
	{Name: "middle", Params: Params{Rows: 13, Cols: 24, Mines: 50}},
	{Name: "senior", Params: Params{Rows: 16, Cols: 30, Mines: 99}},
}

// Presets returns the difficulty levels from easiest to hardest.
func Presets() []Preset {
	out := make([]Preset, len(presets))
	copy(out, presets)
	return out
}

func PresetByName(name string) (Preset, bool) {
	for _, p := range presets {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Preset{}, false
}
