// Package recognition matches face descriptors against enrolled student
// templates and scores observed expressions.
package recognition

import (
	"math"
	"sync"

	"github.com/coder/hnsw"

	"github.com/kozaktomas/attendance-tracker/internal/database"
)

// hnswMinTemplates is the template count at which the resolver switches
// from a linear scan to an approximate nearest neighbor index. Below
// this count the scan is faster than maintaining the graph.
const hnswMinTemplates = 64

// Resolver matches face descriptors to enrolled students. A descriptor
// resolves to the nearest template within the distance threshold;
// anything farther stays unknown. Safe for concurrent use.
type Resolver struct {
	mu        sync.RWMutex
	threshold float64
	students  []database.Student
	graph     *hnsw.Graph[int64]
	byID      map[int64][]float32
}

// NewResolver creates a resolver with the given match threshold
// (Euclidean distance, typically 0.6 for 128-dim descriptors).
func NewResolver(threshold float64) *Resolver {
	return &Resolver{threshold: threshold}
}

// SetTemplates replaces the enrolled template set. Called on startup and
// whenever enrollment changes. Students without a descriptor are skipped.
func (r *Resolver) SetTemplates(students []database.Student) {
	enrolled := make([]database.Student, 0, len(students))
	for _, s := range students {
		if len(s.Descriptor) > 0 {
			enrolled = append(enrolled, s)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.students = enrolled
	r.graph = nil
	r.byID = nil

	if len(enrolled) < hnswMinTemplates {
		return
	}

	g := hnsw.NewGraph[int64]()
	g.M = 16
	g.Ml = 1.0 / 16
	g.Distance = hnsw.EuclideanDistance
	byID := make(map[int64][]float32, len(enrolled))
	for _, s := range enrolled {
		g.Add(hnsw.MakeNode(s.ID, s.Descriptor))
		byID[s.ID] = s.Descriptor
	}
	r.graph = g
	r.byID = byID
}

// Size returns the number of enrolled templates.
func (r *Resolver) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.students)
}

// Resolve finds the enrolled student closest to the descriptor. Returns
// false when no template lies within the threshold, including when the
// template set is empty.
func (r *Resolver) Resolve(descriptor []float32) (int64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.students) == 0 {
		return 0, false
	}
	if r.graph != nil {
		return r.resolveIndexed(descriptor)
	}
	return r.resolveLinear(descriptor)
}

// resolveLinear scans all templates. Ties on distance keep the first
// template encountered, which makes results deterministic because
// templates arrive ordered by student id.
func (r *Resolver) resolveLinear(descriptor []float32) (int64, bool) {
	best := int64(0)
	bestDist := math.Inf(1)
	for _, s := range r.students {
		d := database.EuclideanDistance(descriptor, s.Descriptor)
		if d < bestDist {
			best = s.ID
			bestDist = d
		}
	}
	if bestDist > r.threshold {
		return 0, false
	}
	return best, true
}

// resolveIndexed queries the hnsw graph and verifies the candidate with
// an exact distance check. The graph is approximate; the verification
// keeps the threshold semantics exact.
func (r *Resolver) resolveIndexed(descriptor []float32) (int64, bool) {
	neighbors := r.graph.Search(descriptor, 1)
	if len(neighbors) == 0 {
		return 0, false
	}
	id := neighbors[0].Key
	if database.EuclideanDistance(descriptor, r.byID[id]) > r.threshold {
		return 0, false
	}
	return id, true
}
