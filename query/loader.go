package query

import (
	"fmt"

	"github.com/negaisa/obj-to-pathfinding-grid/builder"
)

// LoadAndQuery loads a grid file and creates the queryer (one-stop)
func LoadAndQuery(filename string) (*GridQuery, error) {
	grid, err := builder.Load(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to load grid: %w", err)
	}
	return NewGridQuery(grid), nil
}
