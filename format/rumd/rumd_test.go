package rumd

import (
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"

	trj "github.com/molsim/trajectory"
	"github.com/molsim/trajectory/system"
)

func frame(x float64) *system.System {
	particles := []*system.Particle{
		system.NewParticle(1, []float64{x, 0.25, -1.5}),
		system.NewParticle(2, []float64{1.0, 1.0, 1.0}),
	}
	return system.New(particles, system.NewCell([]float64{6, 6, 6}))
}

func writeTestFile(Te *testing.T, path string, steps []int, xs []float64, dt float64) {
	f, err := New(path, trj.WriteMode)
	if err != nil {
		Te.Fatal(err)
	}
	w := trj.NewWriter(f)
	if dt > 0 {
		if err := w.SetTimestep(dt); err != nil {
			Te.Fatal(err)
		}
	}
	for i, step := range steps {
		if err := w.Write(frame(xs[i]), step); err != nil {
			Te.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		Te.Fatal(err)
	}
}

func roundTrip(Te *testing.T, name string) {
	path := filepath.Join(Te.TempDir(), name)
	writeTestFile(Te, path, []int{0, 64, 128}, []float64{0.5, 1.5, 2.5}, 0.004)

	f, err := New(path, trj.ReadMode)
	if err != nil {
		Te.Fatal(err)
	}
	t := trj.New(f)
	defer t.Close()
	if t.Len() != 3 {
		Te.Fatalf("read back %d frames, expected 3", t.Len())
	}
	steps := t.Steps()
	if steps[0] != 0 || steps[1] != 64 || steps[2] != 128 {
		Te.Errorf("steps %v, expected [0 64 128]", steps)
	}
	s, err := t.Read(1)
	if err != nil {
		Te.Fatal(err)
	}
	//Types are written 0-based on disk.
	if s.Particles[0].ID != 0 || s.Particles[1].ID != 1 {
		Te.Errorf("on-disk types %d %d, expected 0 1", s.Particles[0].ID, s.Particles[1].ID)
	}
	if math.Abs(s.Particles[0].Position[0]-1.5) > 1e-6 {
		Te.Errorf("position %v, expected 1.5", s.Particles[0].Position[0])
	}
	if math.Abs(s.Particles[0].Position[2]+1.5) > 1e-6 {
		Te.Errorf("negative coordinate broken: %v", s.Particles[0].Position[2])
	}
	if s.Cell == nil || s.Cell.Side[0] != 6 {
		Te.Error("box lengths did not survive the round trip")
	}
	dt, err := t.Timestep()
	if err != nil {
		Te.Fatal(err)
	}
	if dt != 0.004 {
		Te.Errorf("timestep %v, expected 0.004", dt)
	}
}

func TestRoundTripGzip(Te *testing.T) { roundTrip(Te, "traj.xyz.gz") }

func TestRoundTripZstd(Te *testing.T) { roundTrip(Te, "traj.xyz.zst") }

func TestNormalizeComposition(Te *testing.T) {
	path := filepath.Join(Te.TempDir(), "traj.xyz.gz")
	writeTestFile(Te, path, []int{0}, []float64{0.5}, 0)

	f, err := New(path, trj.ReadMode)
	if err != nil {
		Te.Fatal(err)
	}
	//NormalizeID restores the 1-based convention over the 0-based
	//types on disk.
	t := trj.New(trj.NewNormalizeID(f))
	defer t.Close()
	s, err := t.Read(0)
	if err != nil {
		Te.Fatal(err)
	}
	if s.Particles[0].ID != 1 || s.Particles[1].ID != 2 {
		Te.Errorf("normalized ids %d %d, expected 1 2", s.Particles[0].ID, s.Particles[1].ID)
	}
}

func TestRereadIsFresh(Te *testing.T) {
	path := filepath.Join(Te.TempDir(), "traj.xyz.gz")
	writeTestFile(Te, path, []int{0}, []float64{0.5}, 0)

	f, err := New(path, trj.ReadMode)
	if err != nil {
		Te.Fatal(err)
	}
	defer f.Close()
	if err := f.ReadInit(); err != nil {
		Te.Fatal(err)
	}
	a, err := f.ReadSample(0)
	if err != nil {
		Te.Fatal(err)
	}
	a.Particles[0].Position[0] = 99 //mutate the snapshot
	b, err := f.ReadSample(0)
	if err != nil {
		Te.Fatal(err)
	}
	if b.Particles[0].Position[0] == 99 {
		Te.Error("re-read returned a shared snapshot")
	}
}

func TestRumdBoxVariants(Te *testing.T) {
	side, err := parseFloats("6.0,6.0,6.0")
	if err != nil || len(side) != 3 || side[0] != 6 {
		Te.Errorf("plain box list: %v, %v", side, err)
	}
	side, err = parseFloats("RectangularSimulationBox,6.0,6.0,6.0")
	if err != nil || len(side) != 3 || side[2] != 6 {
		Te.Errorf("prefixed box list: %v, %v", side, err)
	}
	if _, err := parseFloats("not,a,box,at,all"); err == nil {
		Te.Error("garbage box list did not fail")
	}
}

type failWriter struct{ err error }

func (w failWriter) Write(p []byte) (int, error) { return 0, w.err }

func (w failWriter) Close() error { return nil }

func TestWriteErrorSurfaces(Te *testing.T) {
	f := &File{mode: trj.WriteMode, h: failWriter{err: errors.New("stream gone")}}
	f.Path = "broken.gz"
	err := f.WriteSample(frame(0.5), 0)
	if err == nil {
		Te.Fatal("writing to a failing stream did not fail")
	}
	if !strings.Contains(err.Error(), "stream gone") {
		Te.Errorf("unexpected write error: %v", err)
	}
}

func TestOutOfRangeRead(Te *testing.T) {
	path := filepath.Join(Te.TempDir(), "traj.xyz.gz")
	writeTestFile(Te, path, []int{0}, []float64{0.5}, 0)
	f, err := New(path, trj.ReadMode)
	if err != nil {
		Te.Fatal(err)
	}
	defer f.Close()
	if _, err := f.ReadSample(1); err == nil {
		Te.Error("out-of-range read did not fail")
	}
}
