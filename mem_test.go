package trajectory

import "github.com/molsim/trajectory/system"

//memTraj is an in-memory format plugin used by the tests. Every
//ReadSample builds a fresh System from the raw data, the way a real
//codec re-parses its file, so decorators can mutate what they get.
type memFrame struct {
	ids    []int
	pos    [][]float64
	matrix []int       //ids of set-aside matrix particles, if any
	mpos   [][]float64 //their positions
	side   []float64
}

type memTraj struct {
	path      string
	steps     []int
	frames    []memFrame
	dt        float64
	block     int
	gc        bool
	initCalls int
	closed    bool
	written   []int //steps passed to WriteSample, in call order
}

func (m *memTraj) ReadInit() error {
	m.initCalls++
	return nil
}

func (m *memTraj) ReadSample(frame int) (*system.System, error) {
	if frame < 0 || frame >= len(m.frames) {
		return nil, baseError{OutOfRange, m.path, []string{"memTraj.ReadSample"}, true}
	}
	f := m.frames[frame]
	particles := make([]*system.Particle, len(f.ids))
	for i := range f.ids {
		particles[i] = system.NewParticle(f.ids[i], append([]float64{}, f.pos[i]...))
	}
	var cell *system.Cell
	if f.side != nil {
		cell = system.NewCell(append([]float64{}, f.side...))
	}
	s := system.New(particles, cell)
	for i := range f.matrix {
		s.Matrix = append(s.Matrix, system.NewParticle(f.matrix[i], append([]float64{}, f.mpos[i]...)))
	}
	return s, nil
}

func (m *memTraj) Steps() []int { return m.steps }

func (m *memTraj) ReadTimestep() (float64, error) {
	if m.dt > 0 {
		return m.dt, nil
	}
	return 1.0, nil
}

func (m *memTraj) ReadBlockSize() (int, error) { return m.block, nil }

func (m *memTraj) Grandcanonical() bool { return m.gc }

func (m *memTraj) Filename() string { return m.path }

func (m *memTraj) Close() error {
	m.closed = true
	return nil
}

func (m *memTraj) Closed() bool { return m.closed }

func (m *memTraj) WriteInit(s *system.System) error { return nil }

func (m *memTraj) WriteSample(s *system.System, step int) error {
	f := memFrame{}
	for _, p := range s.Particles {
		f.ids = append(f.ids, p.ID)
		f.pos = append(f.pos, append([]float64{}, p.Position...))
	}
	if s.Cell != nil {
		f.side = append([]float64{}, s.Cell.Side...)
	}
	m.written = append(m.written, step)
	for i, v := range m.steps {
		if v == step {
			m.frames[i] = f
			return nil
		}
	}
	m.frames = append(m.frames, f)
	m.steps = append(m.steps, step)
	return nil
}

func (m *memTraj) WriteTimestep(dt float64) error {
	m.dt = dt
	return nil
}

func (m *memTraj) WriteBlockSize(size int) error {
	m.block = size
	return nil
}

//twoParticles returns a reader with nframes frames of two particles in
//a cubic cell, particle 1 fixed and particle 0 moving along x.
func twoParticles(nframes int, xs []float64) *memTraj {
	m := &memTraj{path: "mem"}
	for i := 0; i < nframes; i++ {
		m.steps = append(m.steps, i)
		m.frames = append(m.frames, memFrame{
			ids:  []int{1, 2},
			pos:  [][]float64{{xs[i], 0, 0}, {1.0, 1.0, 1.0}},
			side: []float64{6.0, 6.0, 6.0},
		})
	}
	return m
}
