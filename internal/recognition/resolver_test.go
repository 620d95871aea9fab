package recognition

import (
	"fmt"
	"testing"

	"github.com/kozaktomas/attendance-tracker/internal/database"
)

func enrolled(id int64, descriptor []float32) database.Student {
	return database.Student{ID: id, Descriptor: descriptor}
}

func TestResolver_EmptySet(t *testing.T) {
	r := NewResolver(0.6)

	if _, ok := r.Resolve([]float32{0.1, 0.2}); ok {
		t.Error("expected no match against empty template set")
	}
}

func TestResolver_NearestWithinThreshold(t *testing.T) {
	r := NewResolver(0.6)
	r.SetTemplates([]database.Student{
		enrolled(1, []float32{0, 0, 0, 0}),
		enrolled(2, []float32{1, 1, 1, 1}),
	})

	id, ok := r.Resolve([]float32{0.1, 0, 0, 0})
	if !ok {
		t.Fatal("expected a match")
	}
	if id != 1 {
		t.Errorf("expected student 1, got %d", id)
	}
}

func TestResolver_BeyondThresholdStaysUnknown(t *testing.T) {
	r := NewResolver(0.6)
	r.SetTemplates([]database.Student{
		enrolled(1, []float32{0, 0, 0, 0}),
	})

	if _, ok := r.Resolve([]float32{1, 1, 1, 1}); ok {
		t.Error("expected descriptor beyond threshold to stay unknown")
	}
}

func TestResolver_ExactThresholdMatches(t *testing.T) {
	r := NewResolver(0.5)
	r.SetTemplates([]database.Student{
		enrolled(1, []float32{0, 0}),
	})

	// Distance is exactly 0.5.
	if _, ok := r.Resolve([]float32{0, 0.5}); !ok {
		t.Error("expected descriptor at exactly the threshold to match")
	}
}

func TestResolver_TieKeepsFirstEnrolled(t *testing.T) {
	r := NewResolver(0.6)
	r.SetTemplates([]database.Student{
		enrolled(3, []float32{0.2, 0}),
		enrolled(7, []float32{-0.2, 0}),
	})

	// Equidistant from both templates.
	id, ok := r.Resolve([]float32{0, 0})
	if !ok {
		t.Fatal("expected a match")
	}
	if id != 3 {
		t.Errorf("expected tie to resolve to first enrolled student, got %d", id)
	}
}

func TestResolver_SkipsUnenrolledStudents(t *testing.T) {
	r := NewResolver(0.6)
	r.SetTemplates([]database.Student{
		{ID: 1},
		enrolled(2, []float32{0, 0}),
	})

	if r.Size() != 1 {
		t.Errorf("expected 1 template, got %d", r.Size())
	}

	id, ok := r.Resolve([]float32{0.1, 0})
	if !ok || id != 2 {
		t.Errorf("expected student 2, got %d (ok=%v)", id, ok)
	}
}

func TestResolver_SetTemplatesReplaces(t *testing.T) {
	r := NewResolver(0.6)
	r.SetTemplates([]database.Student{
		enrolled(1, []float32{0, 0}),
	})
	r.SetTemplates([]database.Student{
		enrolled(2, []float32{0, 0}),
	})

	id, ok := r.Resolve([]float32{0, 0})
	if !ok || id != 2 {
		t.Errorf("expected replaced template set to win, got %d (ok=%v)", id, ok)
	}
}

func TestResolver_IndexedLargeSet(t *testing.T) {
	r := NewResolver(0.6)

	// Spread templates far apart so nearest neighbor is unambiguous.
	students := make([]database.Student, 0, 100)
	for i := range 100 {
		students = append(students, enrolled(int64(i+1), []float32{float32(i) * 10, 0, 0, 0}))
	}
	r.SetTemplates(students)

	id, ok := r.Resolve([]float32{420.1, 0, 0, 0})
	if !ok {
		t.Fatal("expected a match")
	}
	if id != 43 {
		t.Errorf("expected student 43, got %d", id)
	}

	if _, ok := r.Resolve([]float32{425, 0, 0, 0}); ok {
		t.Error("expected descriptor far from every template to stay unknown")
	}
}

func BenchmarkResolver_Linear(b *testing.B) {
	r := NewResolver(0.6)
	students := make([]database.Student, 0, hnswMinTemplates-1)
	for i := range hnswMinTemplates - 1 {
		students = append(students, enrolled(int64(i+1), benchDescriptor(i)))
	}
	r.SetTemplates(students)
	probe := benchDescriptor(17)

	b.ResetTimer()
	for range b.N {
		r.Resolve(probe)
	}
}

func benchDescriptor(seed int) []float32 {
	d := make([]float32, 128)
	for i := range d {
		d[i] = float32((seed*31+i*7)%100) / 100
	}
	return d
}

func ExampleResolver_Resolve() {
	r := NewResolver(0.6)
	r.SetTemplates([]database.Student{
		{ID: 12, Descriptor: []float32{0.1, 0.2, 0.3}},
	})

	id, ok := r.Resolve([]float32{0.1, 0.2, 0.31})
	fmt.Println(id, ok)
	// Output: 12 true
}
