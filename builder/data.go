package builder

import (
	"errors"
	"time"

	"github.com/negaisa/obj-to-pathfinding-grid/math32"
	"github.com/negaisa/obj-to-pathfinding-grid/voxel"
)

// 文件格式常量
const (
	GRID_FILE_MAGIC   = 0x47524944 // "GRID"
	GRID_FILE_VERSION = 1
)

var (
	ErrInvalidMagic       = errors.New("invalid file format: magic number mismatch")
	ErrUnsupportedVersion = errors.New("unsupported file version")
)

// FileHeader 网格文件头
type FileHeader struct {
	Magic   uint32 // 文件魔数
	Version uint32 // 版本号
}

// GridHeader is the fixed-size block following FileHeader.
type GridHeader struct {
	Width         uint32
	Height        uint32
	Center        [3]float32
	ObstacleCount uint64
	WordCount     uint32
}

func newGridHeader(grid *voxel.Grid) GridHeader {
	c := grid.Center()
	return GridHeader{
		Width:         grid.Width(),
		Height:        grid.Height(),
		Center:        [3]float32{c.X, c.Y, c.Z},
		ObstacleCount: grid.ObstacleCount(),
		WordCount:     uint32(len(grid.Bitmap())),
	}
}

// Frame returns the grid placement stored in the header.
func (h GridHeader) Frame() voxel.Frame {
	return voxel.NewFrame(math32.Vec3(h.Center[0], h.Center[1], h.Center[2]), h.Width, h.Height)
}

// GridFileInfo 网格文件信息
type GridFileInfo struct {
	Filename   string         `json:"filename"`
	FileSize   int64          `json:"file_size"`
	Version    uint32         `json:"version"`
	Compressed bool           `json:"compressed"`
	Width      uint32         `json:"width"`
	Height     uint32         `json:"height"`
	Center     math32.Vector3 `json:"center"`
	Obstacles  uint64         `json:"obstacles"`
	FillRatio  float64        `json:"fill_ratio"`
	DataSize   int            `json:"data_size"`
	ModTime    time.Time      `json:"mod_time"`
}

// BuildConfig 构建配置
type BuildConfig struct {
	// Input is a mesh file. It is ignored when Primitive is set.
	Input     string `json:"input"`
	Primitive string `json:"primitive"`
	// Output defaults to grid/<input stem>.dat.
	Output string `json:"output"`

	// Zero Width or Height and a nil Center are taken from the scaled mesh
	// bounding box.
	Width   uint32          `json:"width"`
	Height  uint32          `json:"height"`
	Scale   float32         `json:"scale"`
	Center  *math32.Vector3 `json:"center,omitempty"`
	Workers int             `json:"workers"`
	Gzip    bool            `json:"gzip"`
	// SkipDegenerate drops zero-area triangles instead of voxelizing them
	// as segments.
	SkipDegenerate bool `json:"skip_degenerate"`
	// Recenter moves the mesh bounds center to the origin first.
	Recenter bool `json:"recenter"`
}
