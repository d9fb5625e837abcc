package mines

import "errors"

var (
	ErrInvalidDimensions = errors.New("rows and cols must be between 1 and 100")
	ErrTooManyMines      = errors.New("mine count must be between 0 and rows*cols")
)
