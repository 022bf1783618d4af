package geometry

import (
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/material"
)

// List is a composite shape that resolves to the closest hit among its children.
// It scans every child per ray.
type List struct {
	Shapes []Shape
}

// NewList creates a list holding the given shapes
func NewList(shapes ...Shape) *List {
	return &List{Shapes: append([]Shape(nil), shapes...)}
}

// Add appends a shape to the list
func (l *List) Add(shape Shape) {
	l.Shapes = append(l.Shapes, shape)
}

// AddAll appends several shapes to the list
func (l *List) AddAll(shapes []Shape) {
	l.Shapes = append(l.Shapes, shapes...)
}

// Clear removes every shape
func (l *List) Clear() {
	l.Shapes = nil
}

// Len returns the number of direct children
func (l *List) Len() int {
	return len(l.Shapes)
}

// Hit returns the closest hit of any child within rayT
func (l *List) Hit(ray core.Ray, rayT core.Interval) (*material.HitRecord, bool) {
	var closestHit *material.HitRecord
	closestSoFar := rayT.Max

	for _, shape := range l.Shapes {
		if hit, isHit := shape.Hit(ray, rayT.WithMax(closestSoFar)); isHit {
			closestSoFar = hit.T
			closestHit = hit
		}
	}

	return closestHit, closestHit != nil
}
