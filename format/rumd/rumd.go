//Package rumd reads and writes RUMD-style configuration trajectories:
//XYZ-like frames whose comment line carries ioformat metadata
//(boxLengths, dt, timeStepIndex) and whose type column is 0-based.
//Files are compressed; the compressor is chosen from the filename
//suffix, gzip for ".gz" and zstd for ".zst", gzip otherwise. Since
//the streams do not allow seeking, the whole trajectory is decoded
//into memory when the index is built; frames are re-parsed from the
//decoded text on every read, so callers always get a fresh snapshot.
package rumd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	trj "github.com/molsim/trajectory"
	"github.com/molsim/trajectory/system"
)

// File is a RUMD trajectory, open either for reading or for writing.
// It implements the trajectory Reader and Writer contracts.
type File struct {
	trj.Base
	mode   trj.Mode
	f      *os.File
	h      io.WriteCloser
	frames [][]string //decoded lines of each frame
	dt     float64
	hasDt  bool

	indexed bool
	closed  bool
	gc      bool
}

// New opens a RUMD trajectory at path in the given mode. In read mode
// the file must exist.
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
		if err == nil {
			t.h, err = newCompressor(t.f, path)
		}
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

//The compressor/decompressor is picked from the filename suffix.

func newCompressor(w io.Writer, name string) (io.WriteCloser, error) {
	switch {
	case strings.HasSuffix(name, ".zst"):
		return zstd.NewWriter(w)
	default:
		return gzip.NewWriter(w), nil
	}
}

//zstd.Decoder does not implement io.ReadCloser, its Close returns
//nothing. This adapter bridges the gap.
type zstdql struct {
	closeql func()
	*zstd.Decoder
}

func (z zstdql) Close() error {
	z.closeql()
	return nil
}

func newDecompressor(r io.Reader, name string) (io.ReadCloser, error) {
	switch {
	case strings.HasSuffix(name, ".zst"):
		d, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return zstdql{d.Close, d}, nil
	default:
		return gzip.NewReader(r)
	}
}

// ReadInit decodes the whole file, splitting it into frames and
// recording steps, particle counts and the timestep. Calling it again
// is a no-op.
func (t *File) ReadInit() error {
	if t.indexed {
		return nil
	}
	if t.mode != trj.ReadMode {
		return Error{trj.NotReadable, t.Path, []string{"ReadInit"}, true}
	}
	h, err := newDecompressor(bufio.NewReader(t.f), t.Path)
	if err != nil {
		return Error{"cannot read header: " + err.Error(), t.Path, []string{"ReadInit"}, true}
	}
	defer h.Close()
	br := bufio.NewReader(h)
	lastNpart := -1
	for frame := 0; ; frame++ {
		line, err := br.ReadString('\n')
		if strings.TrimSpace(line) == "" {
			if err != nil {
				break
			}
			frame--
			continue
		}
		npart, err2 := strconv.Atoi(strings.TrimSpace(line))
		if err2 != nil {
			return Error{fmt.Sprintf("cannot read particle count from %q", strings.TrimSpace(line)), t.Path, []string{"ReadInit"}, true}
		}
		lines := make([]string, 0, npart+2)
		lines = append(lines, line)
		comment, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return Error{err.Error(), t.Path, []string{"ReadInit"}, true}
		}
		lines = append(lines, comment)
		meta, err2 := parseComment(comment)
		if err2 != nil {
			return Error{err2.Error(), t.Path, []string{"ReadInit"}, true}
		}
		step := frame
		if meta.hasStep {
			step = meta.step
		}
		if meta.dt > 0 && !t.hasDt {
			t.dt = meta.dt
			t.hasDt = true
		}
		for i := 0; i < npart; i++ {
			pline, err := br.ReadString('\n')
			if strings.TrimSpace(pline) == "" {
				return Error{fmt.Sprintf("truncated frame %d", frame), t.Path, []string{"ReadInit"}, true}
			}
			if err != nil && err != io.EOF {
				return Error{err.Error(), t.Path, []string{"ReadInit"}, true}
			}
			lines = append(lines, pline)
		}
		t.frames = append(t.frames, lines)
		t.StepList = append(t.StepList, step)
		if lastNpart >= 0 && npart != lastNpart {
			t.gc = true
		}
		lastNpart = npart
	}
	t.indexed = true
	return nil
}

// ReadSample returns the frame at the given zero-based index. The
// frame is parsed anew from the decoded text, so every call returns an
// independent snapshot.
func (t *File) ReadSample(frame int) (*system.System, error) {
	if err := t.ReadInit(); err != nil {
		return nil, errDecorate(err, "ReadSample")
	}
	if frame < 0 || frame >= len(t.frames) {
		return nil, Error{trj.OutOfRange, t.Path, []string{"ReadSample"}, true}
	}
	lines := t.frames[frame]
	meta, err := parseComment(lines[1])
	if err != nil {
		return nil, Error{err.Error(), t.Path, []string{"ReadSample"}, true}
	}
	particles := make([]*system.Particle, 0, len(lines)-2)
	for _, pline := range lines[2:] {
		fields := strings.Fields(pline)
		if len(fields) < 4 {
			return nil, Error{fmt.Sprintf("ill-formed particle line %q", strings.TrimSpace(pline)), t.Path, []string{"ReadSample"}, true}
		}
		id, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, Error{fmt.Sprintf("bad particle type %q", fields[0]), t.Path, []string{"ReadSample"}, true}
		}
		pos := make([]float64, 3)
		for i := 0; i < 3; i++ {
			pos[i], err = strconv.ParseFloat(fields[1+i], 64)
			if err != nil {
				return nil, Error{fmt.Sprintf("bad coordinate %q", fields[1+i]), t.Path, []string{"ReadSample"}, true}
			}
		}
		particles = append(particles, system.NewParticle(id, pos))
	}
	var cell *system.Cell
	if meta.side != nil {
		cell = system.NewCell(meta.side)
	}
	return system.New(particles, cell), nil
}

// ReadTimestep returns the dt recorded in the comments, or 1.0.
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

// WriteInit does nothing: every frame carries its own header line.
func (t *File) WriteInit(s *system.System) error { return nil }

// WriteSample appends the frame under the given step. Species ids are
// written as 0-based types, the RUMD convention.
func (t *File) WriteSample(s *system.System, step int) error {
	if t.mode != trj.WriteMode {
		return Error{trj.NotWriteable, t.Path, []string{"WriteSample"}, true}
	}
	types := make(map[int]bool)
	for _, p := range s.Particles {
		types[p.ID] = true
	}
	w := &stickyWriter{w: t.h}
	fmt.Fprintf(w, "%d\n", s.Len())
	fmt.Fprintf(w, "ioformat=2 timeStepIndex=%d numTypes=%d", step, len(types))
	if t.hasDt {
		fmt.Fprintf(w, " dt=%g", t.dt)
	}
	if s.Cell != nil {
		fmt.Fprintf(w, " boxLengths=%s", joinFloats(s.Cell.Side))
	}
	fmt.Fprintf(w, " columns=type,x,y,z\n")
	idMin := 0
	if len(s.Particles) > 0 {
		idMin = s.Particles[0].ID
		for _, p := range s.Particles {
			idMin = min(idMin, p.ID)
		}
	}
	//1-based species become 0-based types on disk.
	shift := 0
	if idMin > 0 {
		shift = 1
	}
	for _, p := range s.Particles {
		fmt.Fprintf(w, "%d %s\n", p.ID-shift, joinFields(p.Position))
	}
	if w.err != nil {
		return Error{w.err.Error(), t.Path, []string{"WriteSample"}, true}
	}
	return nil
}

//stickyWriter keeps the first write error and refuses further writes,
//so a whole frame can be emitted and checked once. The compressed
//stream buffers internally, which would otherwise delay the error
//until Close.
type stickyWriter struct {
	w   io.Writer
	err error
}

func (sw *stickyWriter) Write(p []byte) (int, error) {
	if sw.err != nil {
		return 0, sw.err
	}
	var n int
	n, sw.err = sw.w.Write(p)
	return n, sw.err
}

// WriteTimestep records the timestep; it is emitted in the comment
// line of every frame written afterwards.
func (t *File) WriteTimestep(dt float64) error {
	t.dt = dt
	t.hasDt = true
	return nil
}

// Close flushes the compressor and releases the file. It is safe to
// call more than once.
func (t *File) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true
	if t.h != nil {
		if err := t.h.Close(); err != nil {
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

type commentMeta struct {
	step    int
	hasStep bool
	dt      float64
	side    []float64
}

func parseComment(line string) (commentMeta, error) {
	var m commentMeta
	for _, field := range strings.Fields(line) {
		kv := strings.SplitN(field, "=", 2)
		if len(kv) != 2 {
			continue
		}
		var err error
		switch kv[0] {
		case "timeStepIndex":
			m.step, err = strconv.Atoi(kv[1])
			if err != nil {
				return m, fmt.Errorf("bad timeStepIndex %q", kv[1])
			}
			m.hasStep = true
		case "dt":
			m.dt, err = strconv.ParseFloat(kv[1], 64)
			if err != nil {
				return m, fmt.Errorf("bad dt %q", kv[1])
			}
		case "boxLengths", "sim_box":
			m.side, err = parseFloats(kv[1])
			if err != nil {
				return m, err
			}
		}
	}
	return m, nil
}

func parseFloats(s string) ([]float64, error) {
	//RUMD writes RectangularSimulationBox,Lx,Ly,Lz in newer files;
	//plain Lx,Ly,Lz otherwise.
	parts := strings.Split(s, ",")
	if len(parts) > 0 {
		if _, err := strconv.ParseFloat(parts[0], 64); err != nil {
			parts = parts[1:]
		}
	}
	v := make([]float64, len(parts))
	for i, p := range parts {
		var err error
		v[i], err = strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("cannot parse %q as a box", s)
		}
	}
	return v, nil
}

func joinFloats(v []float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = strconv.FormatFloat(x, 'f', 6, 64)
	}
	return strings.Join(parts, ",")
}

func joinFields(v []float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = strconv.FormatFloat(x, 'f', 6, 64)
	}
	return strings.Join(parts, " ")
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

// Error is the error type for RUMD trajectories. It fulfills
// trajectory.Error and trajectory.TrajError.
type Error struct {
	message  string
	filename string
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("rumd file %s error: %s", err.filename, err.message)
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

//Format returns the format of the file (always "rumd") associated to the error
func (err Error) Format() string { return "rumd" }

//Critical returns true if the error is critical, false otherwise
func (err Error) Critical() bool { return err.critical }
