package voxel

import (
	"github.com/negaisa/obj-to-pathfinding-grid/geometry"
)

// Preprocessor may replace a triangle before it is scanned, or skip it by
// returning false. Skipped triangles contribute no obstacles.
//
// With more than one worker, Preprocess is called concurrently.
type Preprocessor interface {
	Preprocess(triangle geometry.Triangle, frame Frame) (geometry.Triangle, bool)
}

// PreprocessorFunc adapts a plain function to Preprocessor.
type PreprocessorFunc func(triangle geometry.Triangle, frame Frame) (geometry.Triangle, bool)

func (f PreprocessorFunc) Preprocess(triangle geometry.Triangle, frame Frame) (geometry.Triangle, bool) {
	return f(triangle, frame)
}

// NoOpPreprocessor passes every triangle through unchanged.
type NoOpPreprocessor struct{}

func (NoOpPreprocessor) Preprocess(triangle geometry.Triangle, _ Frame) (geometry.Triangle, bool) {
	return triangle, true
}

// SkipDegenerate drops zero-area triangles and triangles with non-finite
// vertices.
type SkipDegenerate struct{}

func (SkipDegenerate) Preprocess(triangle geometry.Triangle, _ Frame) (geometry.Triangle, bool) {
	if !triangle.IsFinite() || triangle.IsDegenerate() {
		return triangle, false
	}
	return triangle, true
}

// ClipToFrame drops triangles that lie entirely outside the frame. Such
// triangles can never touch a voxel of the grid, so the result is unchanged.
//
// The frame box is grown by half a voxel before the exact overlap test so
// rounding at its faces never drops a touching triangle.
type ClipToFrame struct{}

func (ClipToFrame) Preprocess(triangle geometry.Triangle, frame Frame) (geometry.Triangle, bool) {
	bounds := frame.WorldBounds()
	if !triangle.GetBounds().Intersects(bounds) {
		return triangle, false
	}
	return triangle, triangle.IntersectsAABB(bounds.Inflate(0.5))
}

type chain []Preprocessor

// Chain applies preprocessors in order and stops at the first skip.
func Chain(preprocessors ...Preprocessor) Preprocessor {
	return chain(preprocessors)
}

func (c chain) Preprocess(triangle geometry.Triangle, frame Frame) (geometry.Triangle, bool) {
	for _, p := range c {
		var ok bool
		if triangle, ok = p.Preprocess(triangle, frame); !ok {
			return triangle, false
		}
	}
	return triangle, true
}
