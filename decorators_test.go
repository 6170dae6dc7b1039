package trajectory

import (
	"math"
	"strings"
	"testing"

	"github.com/molsim/trajectory/system"
)

func TestCenteredIdempotence(Te *testing.T) {
	m := twoParticles(2, []float64{0.0, 0.5})
	t := New(NewCentered(m))
	defer t.Close()
	s, err := t.Read(0)
	if err != nil {
		Te.Fatal(err)
	}
	//Cell side is 6: centering moves x=0 to -3.
	if s.Particles[0].Position[0] != -3.0 {
		Te.Errorf("centered position %v, expected -3.0", s.Particles[0].Position[0])
	}
	//Second request of the same key is a memoized no-op.
	s, err = t.Read(0)
	if err != nil {
		Te.Fatal(err)
	}
	if s != nil {
		Te.Error("re-reading a centered frame returned a frame instead of nothing")
	}
}

func TestSliced(Te *testing.T) {
	m := twoParticles(6, []float64{0, 1, 2, 3, 4, 5})
	sl, err := NewSliced(m, 1, 5, 2)
	if err != nil {
		Te.Fatal(err)
	}
	t := New(sl)
	defer t.Close()
	if t.Len() != 2 {
		Te.Fatalf("sliced length %d, expected 2", t.Len())
	}
	if t.Steps()[0] != 1 || t.Steps()[1] != 3 {
		Te.Errorf("sliced steps %v, expected [1 3]", t.Steps())
	}
	s, err := t.Read(1)
	if err != nil {
		Te.Fatal(err)
	}
	if s.Particles[0].Position[0] != 3.0 {
		Te.Errorf("sliced frame 1 has x=%v, expected 3.0", s.Particles[0].Position[0])
	}
	if _, err := t.Read(2); err == nil {
		Te.Error("reading past the slice did not fail")
	}
}

func TestSlicedNegativeBounds(Te *testing.T) {
	m := twoParticles(6, []float64{0, 1, 2, 3, 4, 5})
	sl, err := NewSliced(m, -3, 6, 1)
	if err != nil {
		Te.Fatal(err)
	}
	if len(sl.Steps()) != 3 || sl.Steps()[0] != 3 {
		Te.Errorf("negative slice start resolved to steps %v", sl.Steps())
	}
	if _, err := NewSliced(m, 0, 6, 0); err == nil {
		Te.Error("zero stride did not fail")
	}
}

//One particle crosses the periodic boundary between frames 1 and 2:
//the raw coordinate wraps from 2.9 to -2.9 while the physical motion
//is +0.2 in a cell of side 6.
func TestUnfoldedCrossing(Te *testing.T) {
	m := twoParticles(3, []float64{2.7, 2.9, -2.9})
	t := New(NewUnfolded(m))
	defer t.Close()
	s, err := t.Read(2)
	if err != nil {
		Te.Fatal(err)
	}
	got := s.Particles[0].Position[0]
	if math.Abs(got-3.1) > 1e-12 {
		Te.Errorf("unfolded position %v, expected 3.1", got)
	}
	//The unfolded and the wrapped coordinate differ by one cell side.
	if math.Abs((got - -2.9) - 6.0) > 1e-12 {
		Te.Errorf("unfolded-wrapped difference is not one cell length: %v", got - -2.9)
	}
	//The second particle never moves and must not drift.
	if s.Particles[1].Position[0] != 1.0 {
		Te.Errorf("immobile particle drifted to %v", s.Particles[1].Position[0])
	}
}

func TestUnfoldedRepeatedForwardRead(Te *testing.T) {
	m := twoParticles(3, []float64{2.7, 2.9, -2.9})
	t := New(NewUnfolded(m))
	defer t.Close()
	first := make([]float64, 0, 3)
	for _, i := range []int{1, 1, 2, 2} {
		s, err := t.Read(i)
		if err != nil {
			Te.Fatal(err)
		}
		first = append(first, s.Particles[0].Position[0])
	}
	if first[0] != first[1] || first[2] != first[3] {
		Te.Errorf("re-reading the current frame changed the accumulator: %v", first)
	}
	if math.Abs(first[2]-3.1) > 1e-12 {
		Te.Errorf("unfolded position after repeats %v, expected 3.1", first[2])
	}
}

func TestUnfoldedBackwardSeekFails(Te *testing.T) {
	m := twoParticles(3, []float64{2.7, 2.9, -2.9})
	t := New(NewUnfolded(m))
	defer t.Close()
	if _, err := t.Read(2); err != nil {
		Te.Fatal(err)
	}
	_, err := t.Read(1)
	if err == nil {
		Te.Fatal("backward seek under Unfolded did not fail")
	}
	if !strings.Contains(err.Error(), BackwardJump) {
		Te.Errorf("unexpected backward-seek error: %v", err)
	}
}

func TestUnfoldedSkipsForward(Te *testing.T) {
	//Two consecutive crossings: the accumulator only stays correct if
	//the skipped frame is read internally.
	m := twoParticles(3, []float64{2.9, -2.9, -2.7})
	t := New(NewUnfolded(m))
	defer t.Close()
	s, err := t.Read(2)
	if err != nil {
		Te.Fatal(err)
	}
	if math.Abs(s.Particles[0].Position[0]-3.3) > 1e-12 {
		Te.Errorf("unfolded position after forward jump %v, expected 3.3", s.Particles[0].Position[0])
	}
}

func TestMatrixFix(Te *testing.T) {
	m := &memTraj{path: "mem"}
	m.steps = []int{0}
	m.frames = []memFrame{{
		ids:  []int{1, 2, 3, 2},
		pos:  [][]float64{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}, {3, 0, 0}},
		side: []float64{6, 6, 6},
	}}
	t := New(NewMatrixFix(m, 2, 3))
	defer t.Close()
	s, err := t.Read(0)
	if err != nil {
		Te.Fatal(err)
	}
	if s.Len() != 1 || s.Particles[0].ID != 1 {
		Te.Errorf("matrix particles not removed: %d left", s.Len())
	}
}

func TestNormalizeID(Te *testing.T) {
	m := &memTraj{path: "mem"}
	m.steps = []int{0}
	m.frames = []memFrame{{
		ids:  []int{0, 1, 0},
		pos:  [][]float64{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}},
		side: []float64{6, 6, 6},
	}}
	t := New(NewNormalizeID(m))
	defer t.Close()
	s, err := t.Read(0)
	if err != nil {
		Te.Fatal(err)
	}
	for i, want := range []int{1, 2, 1} {
		if s.Particles[i].ID != want {
			Te.Errorf("particle %d has id %d, expected %d", i, s.Particles[i].ID, want)
		}
	}
	//Already 1-based ids stay put.
	one := &memTraj{path: "mem", steps: []int{0}, frames: []memFrame{{
		ids: []int{1, 2}, pos: [][]float64{{0, 0, 0}, {1, 0, 0}}, side: []float64{6, 6, 6}}}}
	t2 := New(NewNormalizeID(one))
	defer t2.Close()
	s, _ = t2.Read(0)
	if s.Particles[0].ID != 1 || s.Particles[1].ID != 2 {
		Te.Error("1-based ids were shifted")
	}
}

func TestSorted(Te *testing.T) {
	m := &memTraj{path: "mem"}
	m.steps = []int{0}
	m.frames = []memFrame{{
		ids:  []int{3, 1, 2, 1},
		pos:  [][]float64{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}, {3, 0, 0}},
		side: []float64{6, 6, 6},
	}}
	t := New(NewSorted(m))
	defer t.Close()
	s, err := t.Read(0)
	if err != nil {
		Te.Fatal(err)
	}
	ids := []int{s.Particles[0].ID, s.Particles[1].ID, s.Particles[2].ID, s.Particles[3].ID}
	for i, want := range []int{1, 1, 2, 3} {
		if ids[i] != want {
			Te.Fatalf("sorted ids %v, expected [1 1 2 3]", ids)
		}
	}
	//Stable: the two species-1 particles keep their relative order.
	if s.Particles[0].Position[0] != 1.0 || s.Particles[1].Position[0] != 3.0 {
		Te.Error("sort is not stable")
	}
}

func TestMatrixFlat(Te *testing.T) {
	m := &memTraj{path: "mem"}
	m.steps = []int{0, 1}
	frame := memFrame{
		ids:    []int{1, 2},
		pos:    [][]float64{{0, 0, 0}, {1, 0, 0}},
		matrix: []int{1, 1},
		mpos:   [][]float64{{4, 0, 0}, {5, 0, 0}},
		side:   []float64{6, 6, 6},
	}
	m.frames = []memFrame{frame, frame}
	flat := NewMatrixFlat(m)
	t := New(flat)
	defer t.Close()
	s, err := t.Read(0)
	if err != nil {
		Te.Fatal(err)
	}
	if s.Len() != 4 {
		Te.Fatalf("flattened frame has %d particles, expected 4", s.Len())
	}
	appended := s.Particles[2:]
	for _, p := range appended {
		if p.Mass < 1e19 {
			Te.Errorf("matrix particle mass %v is not effectively infinite", p.Mass)
		}
		if p.ID != 1+2 { //offset by the max fluid id
			Te.Errorf("matrix particle id %d, expected 3", p.ID)
		}
	}
	//The matrix list is computed once and reused.
	s2, err := t.Read(1)
	if err != nil {
		Te.Fatal(err)
	}
	if s2.Particles[2] != appended[0] {
		Te.Error("matrix list was recomputed instead of reused")
	}
}

func TestFilter(Te *testing.T) {
	m := twoParticles(1, []float64{1.5})
	t := New(NewFilter(m, func(s *system.System) (*system.System, error) {
		for _, p := range s.Particles {
			p.Position[0] *= 2
		}
		return s, nil
	}))
	defer t.Close()
	s, err := t.Read(0)
	if err != nil {
		Te.Fatal(err)
	}
	if s.Particles[0].Position[0] != 3.0 {
		Te.Errorf("filter not applied: x=%v", s.Particles[0].Position[0])
	}
}

func TestAffineDeformation(Te *testing.T) {
	m := twoParticles(1, []float64{1.0})
	//scale=0 degenerates to the identity, so repeated reads agree.
	t := New(NewAffineDeformation(m, 0.0))
	defer t.Close()
	a, err := t.Read(0)
	if err != nil {
		Te.Fatal(err)
	}
	b, err := t.Read(0)
	if err != nil {
		Te.Fatal(err)
	}
	if a.Cell.Side[0] != 6.0 || b.Cell.Side[0] != 6.0 {
		Te.Errorf("zero-scale deformation changed the cell: %v %v", a.Cell.Side[0], b.Cell.Side[0])
	}
	if a.Particles[0].Position[0] != b.Particles[0].Position[0] {
		Te.Error("zero-scale deformation is not deterministic")
	}
	//With a finite scale the factor stays within [1-s/2, 1+s/2].
	t2 := New(NewAffineDeformation(twoParticles(1, []float64{1.0}), 0.5))
	defer t2.Close()
	for i := 0; i < 20; i++ {
		s, err := t2.Read(0)
		if err != nil {
			Te.Fatal(err)
		}
		L := s.Cell.Side[0]
		if L < 6.0*0.75 || L > 6.0*1.25 {
			Te.Fatalf("deformed cell side %v outside [4.5, 7.5]", L)
		}
		if math.Abs(s.Particles[0].Position[0]/L-1.0/6.0) > 1e-12 {
			Te.Error("cell and positions were scaled by different factors")
		}
	}
}

func TestDecoratorStacking(Te *testing.T) {
	m := &memTraj{path: "mem"}
	m.steps = []int{0}
	m.frames = []memFrame{{
		ids:  []int{1, 0, 2},
		pos:  [][]float64{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}},
		side: []float64{6, 6, 6},
	}}
	//Normalize ids, then sort: a decorated trajectory is itself
	//decoratable.
	t := New(NewSorted(NewNormalizeID(m)))
	defer t.Close()
	s, err := t.Read(0)
	if err != nil {
		Te.Fatal(err)
	}
	for i, want := range []int{1, 2, 3} {
		if s.Particles[i].ID != want {
			Te.Fatalf("stacked decorators produced ids %d at %d, expected %d", s.Particles[i].ID, i, want)
		}
	}
}

//noCellTraj returns frames whose parser found no cell metadata, as the
//xyz plugin produces for comment lines without a cell key.
func noCellTraj(nframes int) *memTraj {
	m := &memTraj{path: "mem"}
	for i := 0; i < nframes; i++ {
		m.steps = append(m.steps, i)
		m.frames = append(m.frames, memFrame{
			ids: []int{1},
			pos: [][]float64{{float64(i), 0, 0}},
		})
	}
	return m
}

func TestCellLessFrameErrors(Te *testing.T) {
	wrappers := map[string]func(Reader) Reader{
		"centered": func(r Reader) Reader { return NewCentered(r) },
		"deformed": func(r Reader) Reader { return NewAffineDeformation(r, 0.1) },
	}
	for name, wrap := range wrappers {
		t := New(wrap(noCellTraj(1)))
		_, err := t.Read(0)
		if err == nil {
			Te.Errorf("%s: cell-less frame did not fail", name)
		} else if !strings.Contains(err.Error(), NoCell) {
			Te.Errorf("%s: unexpected cell-less error: %v", name, err)
		}
		t.Close()
	}
	//Unfolding needs the cell only past the origin frame.
	t := New(NewUnfolded(noCellTraj(2)))
	defer t.Close()
	if _, err := t.Read(0); err != nil {
		Te.Fatal(err)
	}
	_, err := t.Read(1)
	if err == nil {
		Te.Error("unfolding a cell-less frame did not fail")
	} else if !strings.Contains(err.Error(), NoCell) {
		Te.Errorf("unexpected cell-less unfold error: %v", err)
	}
}

func TestUnfoldedGrandcanonicalFails(Te *testing.T) {
	m := &memTraj{path: "mem", steps: []int{0, 1}, gc: true}
	m.frames = []memFrame{
		{ids: []int{1}, pos: [][]float64{{0, 0, 0}}, side: []float64{6, 6, 6}},
		{ids: []int{1, 2}, pos: [][]float64{{0.1, 0, 0}, {1, 1, 1}}, side: []float64{6, 6, 6}},
	}
	t := New(NewUnfolded(m))
	defer t.Close()
	_, err := t.Read(1)
	if err == nil {
		Te.Fatal("unfolding a growing particle list did not fail")
	}
	if !strings.Contains(err.Error(), GCUnfold) {
		Te.Errorf("unexpected grand-canonical unfold error: %v", err)
	}
}

func TestDecoratorCloseFallsThrough(Te *testing.T) {
	m := twoParticles(1, []float64{0.0})
	t := New(NewSorted(NewCentered(m)))
	if err := t.Close(); err != nil {
		Te.Fatal(err)
	}
	if !m.closed {
		Te.Error("Close did not reach the innermost plugin")
	}
}
