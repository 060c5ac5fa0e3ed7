package systems

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/ambient/components"
)

// Point is a particle position gathered for the pairwise pass.
type Point struct {
	X, Y float32
}

// Connection is a pair of particles close enough to be linked.
type Connection struct {
	A, B Point
	Dist float32
}

// ConnectionSystem finds particle pairs closer than a threshold.
// Cost is quadratic in the population, which is fixed and small.
type ConnectionSystem struct {
	filter *ecs.Filter1[components.Position]
	distSq float32
	points []Point
	found  []Connection
}

// NewConnectionSystem creates a connection system for the particles in w
// linking pairs closer than sqrt(distSq).
func NewConnectionSystem(w *ecs.World, distSq float32) *ConnectionSystem {
	return &ConnectionSystem{
		filter: ecs.NewFilter1[components.Position](w),
		distSq: distSq,
	}
}

// SetDistSq changes the squared link threshold.
func (s *ConnectionSystem) SetDistSq(distSq float32) {
	s.distSq = distSq
}

// Update gathers positions and returns every unordered pair whose squared
// distance is strictly below the threshold. The returned slice is reused by
// the next call.
func (s *ConnectionSystem) Update() []Connection {
	s.points = s.points[:0]
	query := s.filter.Query()
	for query.Next() {
		pos := query.Get()
		s.points = append(s.points, Point{X: pos.X, Y: pos.Y})
	}
	s.found = FindConnections(s.found[:0], s.points, s.distSq)
	return s.found
}

// FindConnections appends to dst every pair (i < j) of points whose squared
// distance is below distSq.
func FindConnections(dst []Connection, points []Point, distSq float32) []Connection {
	for i := 0; i < len(points); i++ {
		p1 := points[i]
		for j := i + 1; j < len(points); j++ {
			p2 := points[j]
			d2 := distanceSq(p1.X, p1.Y, p2.X, p2.Y)
			if d2 < distSq {
				dst = append(dst, Connection{
					A:    p1,
					B:    p2,
					Dist: float32(math.Sqrt(float64(d2))),
				})
			}
		}
	}
	return dst
}

// ConnectionAlpha returns the line opacity for a pair at dist: closer pairs
// are more opaque, reaching zero at the threshold.
func ConnectionAlpha(dist, threshold, maxAlpha float32) float32 {
	return clamp01(1-dist/threshold) * maxAlpha
}
