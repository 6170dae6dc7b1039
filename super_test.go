package trajectory

import (
	"strings"
	"testing"
)

//memOpener fabricates an OpenFunc over in-memory files. Each open
//returns a fresh reader, like a real format plugin reopening a file,
//and the last handle given out per path is kept for inspection.
type memOpener struct {
	data   map[string]memSource
	opens  map[string]int
	handle map[string]*memTraj
}

type memSource struct {
	steps  []int
	frames []memFrame
	dt     float64
}

func newMemOpener() *memOpener {
	return &memOpener{
		data:   make(map[string]memSource),
		opens:  make(map[string]int),
		handle: make(map[string]*memTraj),
	}
}

func (o *memOpener) add(path string, steps []int, xs []float64, dt float64) {
	src := memSource{steps: steps, dt: dt}
	for _, x := range xs {
		src.frames = append(src.frames, memFrame{
			ids:  []int{1, 2},
			pos:  [][]float64{{x, 0, 0}, {1, 1, 1}},
			side: []float64{6, 6, 6},
		})
	}
	o.data[path] = src
}

func (o *memOpener) open(path string) (Reader, error) {
	src, ok := o.data[path]
	if !ok {
		return nil, baseError{NotReadable, path, []string{"memOpener.open"}, true}
	}
	o.opens[path]++
	m := &memTraj{path: path, steps: append([]int{}, src.steps...), frames: src.frames, dt: src.dt}
	o.handle[path] = m
	return m, nil
}

func TestSuperDeduplicatesBoundarySteps(Te *testing.T) {
	o := newMemOpener()
	o.add("run-0", []int{0}, []float64{0.0}, 0)
	o.add("run-1", []int{10}, []float64{0.5}, 0)
	o.add("run-2", []int{10}, []float64{0.5}, 0)
	st, err := NewSuper([]string{"run-0", "run-1", "run-2"}, o.open)
	if err != nil {
		Te.Fatal(err)
	}
	defer st.Close()
	steps := st.Steps()
	if len(steps) != 2 || steps[0] != 0 || steps[1] != 10 {
		Te.Fatalf("aggregated steps %v, expected [0 10]", steps)
	}
}

func TestSuperResolvesFramesAcrossFiles(Te *testing.T) {
	o := newMemOpener()
	o.add("a", []int{0, 10}, []float64{0.0, 0.5}, 0)
	o.add("b", []int{10, 20}, []float64{0.5, 1.0}, 0)
	st, err := NewSuper([]string{"b", "a"}, o.open) //sorted internally
	if err != nil {
		Te.Fatal(err)
	}
	t := New(st)
	defer t.Close()
	if len(t.Steps()) != 3 {
		Te.Fatalf("aggregated steps %v, expected 3 distinct", t.Steps())
	}
	want := []float64{0.0, 0.5, 1.0}
	for i, x := range want {
		s, err := t.Read(i)
		if err != nil {
			Te.Fatal(err)
		}
		if s.Particles[0].Position[0] != x {
			Te.Errorf("frame %d has x=%v, expected %v", i, s.Particles[0].Position[0], x)
		}
	}
}

func TestSuperCachesOneHandle(Te *testing.T) {
	o := newMemOpener()
	o.add("a", []int{0, 1}, []float64{0.0, 0.1}, 0)
	o.add("b", []int{2, 3}, []float64{0.2, 0.3}, 0)
	st, err := NewSuper([]string{"a", "b"}, o.open)
	if err != nil {
		Te.Fatal(err)
	}
	defer st.Close()
	//One open per file for the index scan.
	if o.opens["a"] != 1 || o.opens["b"] != 1 {
		Te.Fatalf("index scan opened a=%d b=%d times", o.opens["a"], o.opens["b"])
	}
	//Two sequential reads within one file share a single handle.
	if _, err := st.ReadSample(0); err != nil {
		Te.Fatal(err)
	}
	if _, err := st.ReadSample(1); err != nil {
		Te.Fatal(err)
	}
	if o.opens["a"] != 2 {
		Te.Errorf("sequential reads in one file opened it %d times, expected 2 total", o.opens["a"])
	}
	//Switching files closes the cached handle and opens the other.
	if _, err := st.ReadSample(2); err != nil {
		Te.Fatal(err)
	}
	if !o.handle["a"].Closed() {
		Te.Error("previous handle not closed on file switch")
	}
	if o.opens["b"] != 2 {
		Te.Errorf("file switch opened b %d times, expected 2 total", o.opens["b"])
	}
}

func TestSuperRecoversClosedHandle(Te *testing.T) {
	o := newMemOpener()
	o.add("a", []int{0, 1}, []float64{0.0, 0.1}, 0)
	st, err := NewSuper([]string{"a"}, o.open)
	if err != nil {
		Te.Fatal(err)
	}
	defer st.Close()
	if _, err := st.ReadSample(0); err != nil {
		Te.Fatal(err)
	}
	//Something downstream closes the handle behind our back.
	o.handle["a"].Close()
	if _, err := st.ReadSample(1); err != nil {
		Te.Fatalf("stale cached handle not recovered: %v", err)
	}
	if o.opens["a"] != 3 { //scan + first read + recovery
		Te.Errorf("recovery opened the file %d times in total, expected 3", o.opens["a"])
	}
}

func TestSuperEmptyList(Te *testing.T) {
	_, err := NewSuper(nil, newMemOpener().open)
	if err == nil {
		Te.Fatal("empty file list did not fail")
	}
	if !strings.Contains(err.Error(), EmptyFileList) {
		Te.Errorf("unexpected empty-list error: %v", err)
	}
}

func TestSuperTimestep(Te *testing.T) {
	o := newMemOpener()
	o.add("a", []int{0}, []float64{0.0}, 0.004)
	o.add("b", []int{5}, []float64{0.5}, 0.004)
	st, err := NewSuper([]string{"a", "b"}, o.open)
	if err != nil {
		Te.Fatal(err)
	}
	defer st.Close()
	dt, err := st.ReadTimestep()
	if err != nil {
		Te.Fatal(err)
	}
	if dt != 0.004 {
		Te.Errorf("timestep %v, expected 0.004", dt)
	}
	//Out-of-range access on the aggregate fails cleanly.
	if _, err := st.ReadSample(5); err == nil {
		Te.Error("out-of-range super read did not fail")
	}
}
