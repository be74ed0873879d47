package server

import (
	"github.com/google/uuid"

	"github.com/negaisa/obj-to-pathfinding-grid/math32"
	"github.com/negaisa/obj-to-pathfinding-grid/voxel"
)

// Store keeps the most recently used grids in memory.
type Store struct {
	grids *math32.Cache[string, *voxel.Grid]
}

func NewStore(capacity int) *Store {
	return &Store{grids: math32.NewCache[string, *voxel.Grid](capacity)}
}

// Add stores grid under a new random id.
func (s *Store) Add(grid *voxel.Grid) string {
	id := uuid.NewString()
	s.grids.Put(id, grid)
	return id
}

func (s *Store) Get(id string) (*voxel.Grid, bool) {
	return s.grids.Get(id)
}

func (s *Store) Remove(id string) bool {
	return s.grids.Remove(id)
}

func (s *Store) Len() int {
	return s.grids.Len()
}

func (s *Store) Stats() math32.CacheStats {
	return s.grids.GetStats()
}
