//Package xyz reads and writes trajectories in a plain-text XYZ
//flavor: for every frame, a line with the particle count, a comment
//line carrying key=value metadata (step, cell side, timestep), then
//one line per particle with the species label and the Cartesian
//coordinates. Frames are indexed by byte offset on the first read, so
//random access never re-parses the whole file.
package xyz

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	trj "github.com/molsim/trajectory"
	"github.com/molsim/trajectory/system"
)

// File is an XYZ trajectory file, open either for reading or for
// writing. It implements the trajectory Reader and Writer contracts.
type File struct {
	trj.Base
	mode    trj.Mode
	f       *os.File
	w       *bufio.Writer
	offsets []int64 //byte offset of each frame
	dt      float64
	hasDt   bool
	indexed bool
	closed  bool
	gc      bool
}

// New opens an XYZ trajectory at path in the given mode. In read mode
// the file must exist; the frame index is built lazily, on the first
// read.
func New(path string, mode trj.Mode) (*File, error) {
	t := new(File)
	t.Path = path
	t.mode = mode
	var err error
	switch mode {
	case trj.ReadMode:
		t.f, err = os.Open(path)
	case trj.WriteMode:
		t.f, err = os.Create(path)
		t.w = bufio.NewWriter(t.f)
	default:
		return nil, Error{fmt.Sprintf("invalid mode %q", mode), path, []string{"New"}, true}
	}
	if err != nil {
		return nil, Error{err.Error(), path, []string{"New"}, true}
	}
	return t, nil
}

// Open opens path for reading. Its signature matches trajectory.OpenFunc,
// for use with SuperTrajectory.
func Open(path string) (trj.Reader, error) {
	return New(path, trj.ReadMode)
}

// ReadInit scans the file once, recording the byte offset, the step
// and the particle count of every frame. Calling it again is a no-op.
func (t *File) ReadInit() error {
	if t.indexed {
		return nil
	}
	if t.mode != trj.ReadMode {
		return Error{trj.NotReadable, t.Path, []string{"ReadInit"}, true}
	}
	if _, err := t.f.Seek(0, io.SeekStart); err != nil {
		return Error{err.Error(), t.Path, []string{"ReadInit"}, true}
	}
	br := bufio.NewReader(t.f)
	var offset int64
	lastNpart := -1
	for frame := 0; ; frame++ {
		start := offset
		line, err := br.ReadString('\n')
		offset += int64(len(line))
		if strings.TrimSpace(line) == "" {
			if err == io.EOF {
				break
			}
			if err != nil {
				return Error{err.Error(), t.Path, []string{"ReadInit"}, true}
			}
			frame--
			continue
		}
		npart, err2 := strconv.Atoi(strings.TrimSpace(line))
		if err2 != nil {
			return Error{fmt.Sprintf("cannot read particle count from %q", strings.TrimSpace(line)), t.Path, []string{"ReadInit"}, true}
		}
		comment, err := br.ReadString('\n')
		offset += int64(len(comment))
		if err != nil && err != io.EOF {
			return Error{err.Error(), t.Path, []string{"ReadInit"}, true}
		}
		step, hasStep, dt, _, err2 := parseComment(comment)
		if err2 != nil {
			return Error{err2.Error(), t.Path, []string{"ReadInit"}, true}
		}
		if !hasStep {
			step = frame
		}
		if dt > 0 && !t.hasDt {
			t.dt = dt
			t.hasDt = true
		}
		for i := 0; i < npart; i++ {
			pline, err := br.ReadString('\n')
			offset += int64(len(pline))
			if strings.TrimSpace(pline) == "" {
				return Error{fmt.Sprintf("truncated frame %d", frame), t.Path, []string{"ReadInit"}, true}
			}
			if err != nil && err != io.EOF {
				return Error{err.Error(), t.Path, []string{"ReadInit"}, true}
			}
		}
		t.offsets = append(t.offsets, start)
		t.StepList = append(t.StepList, step)
		if lastNpart >= 0 && npart != lastNpart {
			t.gc = true
		}
		lastNpart = npart
	}
	t.indexed = true
	return nil
}

// ReadSample returns the frame at the given zero-based index.
func (t *File) ReadSample(frame int) (*system.System, error) {
	if err := t.ReadInit(); err != nil {
		return nil, errDecorate(err, "ReadSample")
	}
	if frame < 0 || frame >= len(t.offsets) {
		return nil, Error{trj.OutOfRange, t.Path, []string{"ReadSample"}, true}
	}
	if _, err := t.f.Seek(t.offsets[frame], io.SeekStart); err != nil {
		return nil, Error{err.Error(), t.Path, []string{"ReadSample"}, true}
	}
	br := bufio.NewReader(t.f)
	line, err := br.ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, Error{err.Error(), t.Path, []string{"ReadSample"}, true}
	}
	npart, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return nil, Error{fmt.Sprintf("cannot read particle count from %q", strings.TrimSpace(line)), t.Path, []string{"ReadSample"}, true}
	}
	comment, err := br.ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, Error{err.Error(), t.Path, []string{"ReadSample"}, true}
	}
	_, _, _, side, err := parseComment(comment)
	if err != nil {
		return nil, Error{err.Error(), t.Path, []string{"ReadSample"}, true}
	}
	particles := make([]*system.Particle, 0, npart)
	for i := 0; i < npart; i++ {
		pline, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, Error{err.Error(), t.Path, []string{"ReadSample"}, true}
		}
		p, err := parseParticle(pline)
		if err != nil {
			return nil, Error{err.Error(), t.Path, []string{"ReadSample"}, true}
		}
		particles = append(particles, p)
	}
	var cell *system.Cell
	if side != nil {
		cell = system.NewCell(side)
	}
	return system.New(particles, cell), nil
}

// ReadTimestep returns the timestep found in the frame comments, or
// 1.0 when none is recorded.
func (t *File) ReadTimestep() (float64, error) {
	if err := t.ReadInit(); err != nil {
		return 0, errDecorate(err, "ReadTimestep")
	}
	if t.hasDt {
		return t.dt, nil
	}
	return 1.0, nil
}

// Grandcanonical reports whether the particle count changes between
// frames.
func (t *File) Grandcanonical() bool {
	if err := t.ReadInit(); err != nil {
		return false
	}
	return t.gc
}

// WriteInit does nothing: XYZ has no global header.
func (t *File) WriteInit(s *system.System) error { return nil }

// WriteSample appends the frame under the given step.
func (t *File) WriteSample(s *system.System, step int) error {
	if t.mode != trj.WriteMode {
		return Error{trj.NotWriteable, t.Path, []string{"WriteSample"}, true}
	}
	fmt.Fprintf(t.w, "%d\n", s.Len())
	fmt.Fprintf(t.w, "step=%d", step)
	if t.hasDt {
		fmt.Fprintf(t.w, " dt=%g", t.dt)
	}
	if s.Cell != nil {
		fmt.Fprintf(t.w, " cell=%s", joinFloats(s.Cell.Side))
	}
	fmt.Fprintln(t.w)
	for _, p := range s.Particles {
		label := p.Name
		if label == "" {
			label = strconv.Itoa(p.ID)
		}
		fmt.Fprintf(t.w, "%s %s\n", label, joinFloats(p.Position))
	}
	if err := t.w.Flush(); err != nil {
		return Error{err.Error(), t.Path, []string{"WriteSample"}, true}
	}
	return nil
}

// WriteTimestep records the timestep; it is emitted in the comment
// line of every frame written afterwards.
func (t *File) WriteTimestep(dt float64) error {
	t.dt = dt
	t.hasDt = true
	return nil
}

// Close releases the file. It is safe to call more than once.
func (t *File) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true
	if t.w != nil {
		if err := t.w.Flush(); err != nil {
			t.f.Close()
			return Error{err.Error(), t.Path, []string{"Close"}, true}
		}
	}
	if err := t.f.Close(); err != nil {
		return Error{err.Error(), t.Path, []string{"Close"}, true}
	}
	return nil
}

// Closed reports whether the file was closed. SuperTrajectory uses it
// to detect stale cached handles.
func (t *File) Closed() bool { return t.closed }

func joinFloats(v []float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = strconv.FormatFloat(x, 'f', 6, 64)
	}
	return strings.Join(parts, ",")
}

func parseFloats(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	v := make([]float64, len(parts))
	for i, p := range parts {
		var err error
		v[i], err = strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("cannot parse %q as a float list", s)
		}
	}
	return v, nil
}

//parseComment extracts the key=value metadata of a frame comment.
//Unknown keys are ignored, a comment with no metadata is fine.
func parseComment(line string) (step int, hasStep bool, dt float64, side []float64, err error) {
	for _, field := range strings.Fields(line) {
		kv := strings.SplitN(field, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "step":
			step, err = strconv.Atoi(kv[1])
			if err != nil {
				return 0, false, 0, nil, fmt.Errorf("bad step %q", kv[1])
			}
			hasStep = true
		case "dt":
			dt, err = strconv.ParseFloat(kv[1], 64)
			if err != nil {
				return 0, false, 0, nil, fmt.Errorf("bad dt %q", kv[1])
			}
		case "cell":
			side, err = parseFloats(kv[1])
			if err != nil {
				return 0, false, 0, nil, err
			}
		}
	}
	return step, hasStep, dt, side, nil
}

func parseParticle(line string) (*system.Particle, error) {
	fields := strings.Fields(line)
	if len(fields) < 4 {
		return nil, fmt.Errorf("ill-formed particle line %q", strings.TrimSpace(line))
	}
	pos := make([]float64, 3)
	for i := 0; i < 3; i++ {
		var err error
		pos[i], err = strconv.ParseFloat(fields[1+i], 64)
		if err != nil {
			return nil, fmt.Errorf("bad coordinate %q", fields[1+i])
		}
	}
	p := system.NewParticle(0, pos)
	if id, err := strconv.Atoi(fields[0]); err == nil {
		p.ID = id
	} else {
		p.Name = fields[0]
		id, err := system.SpeciesID(fields[0])
		if err != nil {
			return nil, err
		}
		p.ID = id
	}
	return p, nil
}

//Errors

//errDecorate asserts that the error implements the trajectory Error
//interface and decorates it with the caller's name.
func errDecorate(err error, caller string) error {
	err2, ok := err.(trj.Error)
	if !ok {
		return err
	}
	err2.Decorate(caller)
	return err2
}

// Error is the error type for XYZ trajectories. It fulfills
// trajectory.Error and trajectory.TrajError.
type Error struct {
	message  string
	filename string
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("xyz file %s error: %s", err.filename, err.message)
}

//Decorate adds new information to the error
func (err Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

//FileName returns the file associated to the error
func (err Error) FileName() string { return err.filename }

//Format returns the format of the file (always "xyz") associated to the error
func (err Error) Format() string { return "xyz" }

//Critical returns true if the error is critical, false otherwise
func (err Error) Critical() bool { return err.critical }
