package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/samber/lo"

	"github.com/negaisa/obj-to-pathfinding-grid/builder"
	"github.com/negaisa/obj-to-pathfinding-grid/geometry"
	"github.com/negaisa/obj-to-pathfinding-grid/math32"
	"github.com/negaisa/obj-to-pathfinding-grid/mesh"
	"github.com/negaisa/obj-to-pathfinding-grid/query"
	"github.com/negaisa/obj-to-pathfinding-grid/voxel"
)

var meshFormats = []string{"obj", "json"}

// GridSummary describes a stored grid.
type GridSummary struct {
	ID        string         `json:"id"`
	Job       string         `json:"job,omitempty"`
	Width     uint32         `json:"width"`
	Height    uint32         `json:"height"`
	Center    math32.Vector3 `json:"center"`
	Obstacles uint64         `json:"obstacles"`
	FillRatio float64        `json:"fill_ratio"`
}

func summarize(id string, grid *voxel.Grid) GridSummary {
	return GridSummary{
		ID:        id,
		Width:     grid.Width(),
		Height:    grid.Height(),
		Center:    grid.Center(),
		Obstacles: grid.ObstacleCount(),
		FillRatio: grid.FillRatio(),
	}
}

// 路径查找请求结构
type PathRequest struct {
	Start  math32.Vector3u `json:"start"`
	End    math32.Vector3u `json:"end"`
	Smooth bool            `json:"smooth"`
}

// 路径查找响应结构
type PathResponse struct {
	Path     []math32.Vector3u `json:"path"`
	Found    bool              `json:"found"`
	Length   int               `json:"length"`
	Distance float32           `json:"distance"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// grid resolves the {id} route variable, writing a 404 when it is unknown.
func (s *Server) grid(w http.ResponseWriter, r *http.Request) (string, *voxel.Grid, bool) {
	id := mux.Vars(r)["id"]
	grid, ok := s.store.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("grid %q not found", id))
		return id, nil, false
	}
	return id, grid, true
}

// parseFloats reads the named query parameters. Missing parameters are
// reported with ok false in present.
func parseFloats(r *http.Request, names ...string) (values []float32, present []bool, err error) {
	q := r.URL.Query()
	for _, name := range names {
		raw := q.Get(name)
		if raw == "" {
			values = append(values, 0)
			present = append(present, false)
			continue
		}
		v, err := strconv.ParseFloat(raw, 32)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid %s: %w", name, err)
		}
		values = append(values, float32(v))
		present = append(present, true)
	}
	return values, present, nil
}

// 网格转换
func (s *Server) convertHandler(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "obj"
	}
	if !lo.Contains(meshFormats, format) {
		writeError(w, http.StatusBadRequest, fmt.Errorf("unsupported format %q", format))
		return
	}
	values, present, err := parseFloats(r, "width", "height", "scale", "cx", "cy", "cz")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if values[0] < 0 || values[1] < 0 || values[2] < 0 {
		writeError(w, http.StatusBadRequest, errors.New("width, height and scale must not be negative"))
		return
	}
	if values[0] > math.MaxUint32 || values[1] > math.MaxUint32 {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: width and height must fit in 32 bits", voxel.ErrGridTooLarge))
		return
	}

	body := http.MaxBytesReader(w, r.Body, s.options.MaxUploadBytes)
	triangles, err := decodeMesh(body, format)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("failed to decode mesh: %w", err))
		return
	}

	job := r.URL.Query().Get("job")
	if job == "" {
		job = uuid.NewString()
	}

	b := builder.NewBuilder(triangles)
	if present[2] {
		b.SetScale(values[2])
	}
	b.SetSize(uint32(values[0]), uint32(values[1]))
	if present[3] || present[4] || present[5] {
		b.SetCenter(math32.Vec3(values[3], values[4], values[5]))
	}
	b.SetWorkers(s.options.Workers)
	b.SetMaxCells(s.options.MaxCells)
	b.SetPreprocessor(voxel.ClipToFrame{})
	b.SetProgress(NewHubProgress(s.hub, job))
	b.SetLogger(s.logger)

	grid, err := b.Build()
	if err != nil {
		s.hub.Broadcast(job, Event{EventFailed, FinishedData{Job: job, Error: err.Error()}})
		writeError(w, http.StatusBadRequest, err)
		return
	}

	id := s.store.Add(grid)
	s.hub.Broadcast(job, Event{EventFinished, FinishedData{Job: job, Grid: id, Obstacles: grid.ObstacleCount()}})
	s.logger.Info("grid converted", "id", id, "job", job, "triangles", len(triangles), "obstacles", grid.ObstacleCount())

	summary := summarize(id, grid)
	summary.Job = job
	writeJSON(w, http.StatusOK, summary)
}

func decodeMesh(r io.Reader, format string) ([]geometry.Triangle, error) {
	var triangles []geometry.Triangle
	if format == "json" {
		var err error
		if triangles, err = mesh.DecodeTriangles(r); err != nil {
			return nil, err
		}
	} else {
		obj, err := mesh.DecodeOBJ(r)
		if err != nil {
			return nil, err
		}
		if triangles, err = obj.Triangles(); err != nil {
			return nil, err
		}
	}
	if len(triangles) == 0 {
		return nil, mesh.ErrNoTriangles
	}
	return triangles, nil
}

func (s *Server) getGridHandler(w http.ResponseWriter, r *http.Request) {
	id, grid, ok := s.grid(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, summarize(id, grid))
}

func (s *Server) deleteGridHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !s.store.Remove(id) {
		writeError(w, http.StatusNotFound, fmt.Errorf("grid %q not found", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// 检查体素是否被占用（网格局部坐标）
func (s *Server) occupiedHandler(w http.ResponseWriter, r *http.Request) {
	_, grid, ok := s.grid(w, r)
	if !ok {
		return
	}

	var coords [3]uint32
	for i, name := range []string{"x", "y", "z"} {
		v, err := strconv.ParseUint(r.URL.Query().Get(name), 10, 32)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid %s: %w", name, err))
			return
		}
		coords[i] = uint32(v)
	}
	if !grid.IsValidCoordinate(coords[0], coords[1], coords[2]) {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: %v", query.ErrOutOfGrid, math32.Vec3u(coords[0], coords[1], coords[2])))
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"occupied": grid.IsObstacle(coords[0], coords[1], coords[2])})
}

// 检查世界坐标点是否被占用
func (s *Server) worldOccupiedHandler(w http.ResponseWriter, r *http.Request) {
	_, grid, ok := s.grid(w, r)
	if !ok {
		return
	}

	values, present, err := parseFloats(r, "x", "y", "z")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if lo.Contains(present, false) {
		writeError(w, http.StatusBadRequest, errors.New("x, y and z are required"))
		return
	}

	world := math32.Vec3(values[0], values[1], values[2])
	local := voxel.ToLocal(world, grid.Frame())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"occupied": grid.IsWorldObstacle(world),
		"local":    local,
	})
}

func (s *Server) pathHandler(w http.ResponseWriter, r *http.Request) {
	_, grid, ok := s.grid(w, r)
	if !ok {
		return
	}

	var req PathRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid JSON: %w", err))
		return
	}

	q := query.NewGridQuery(grid)
	q.SetLogger(s.logger)
	path, err := q.FindPath(req.Start, req.End)
	switch {
	case errors.Is(err, query.ErrNoPath):
		writeJSON(w, http.StatusOK, PathResponse{Path: []math32.Vector3u{}})
		return
	case err != nil:
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if req.Smooth {
		path = q.SmoothPath(path)
	}
	writeJSON(w, http.StatusOK, PathResponse{
		Path:     path,
		Found:    true,
		Length:   len(path),
		Distance: query.PathLength(path),
	})
}

func (s *Server) exportHandler(w http.ResponseWriter, r *http.Request) {
	id, grid, ok := s.grid(w, r)
	if !ok {
		return
	}
	useGzip := r.URL.Query().Get("gzip") != "false"

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", id+".dat"))
	if err := builder.Encode(w, grid, useGzip); err != nil {
		s.logger.Error("failed to export grid", "id", id, "error", err)
	}
}

func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Stats())
}
