/*
 * base.go, part of trajectory.
 *
 * Copyright 2016 The trajectory developers
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package trajectory

import (
	"reflect"

	"github.com/molsim/trajectory/system"
)

// Callback transforms a frame right after it has been produced by the
// reader stack. Callbacks needing extra arguments close over them.
type Callback func(s *system.System) (*system.System, error)

// Trajectory is the user-facing handle over a reader stack or a
// writer. It runs the read/write template: lazy one-time
// initialization, callback application in registration order on every
// frame read, and idempotent step bookkeeping on writes. A Trajectory
// is bound to one mode for its whole life.
type Trajectory struct {
	r         Reader
	w         Writer
	mode      Mode
	callbacks []Callback
	cbkeys    []uintptr
	wsteps    []int
	initRead  bool
	initWrite bool

	timestep     float64
	hasTimestep  bool
	blockSize    int
	hasBlockSize bool
	gc           bool
	hasGC        bool

	cursor int

	//BlockSizeFunc infers the block size from the raw step sequence
	//when the format does not declare one. It can be replaced before
	//the first call to BlockSize.
	BlockSizeFunc BlockSizeFunc
}

// New returns a read-mode trajectory over the given reader, which may
// be a format plugin, a SuperTrajectory or any decorator stack.
func New(r Reader) *Trajectory {
	t := new(Trajectory)
	t.r = r
	t.mode = ReadMode
	t.BlockSizeFunc = DetectBlockSize
	return t
}

// NewWriter returns a write-mode trajectory over the given format
// writer.
func NewWriter(w Writer) *Trajectory {
	t := new(Trajectory)
	t.w = w
	t.mode = WriteMode
	t.BlockSizeFunc = DetectBlockSize
	return t
}

// Mode returns the mode the trajectory was opened in.
func (t *Trajectory) Mode() Mode {
	return t.mode
}

// Filename returns the path backing the trajectory.
func (t *Trajectory) Filename() string {
	if t.mode == WriteMode {
		return t.w.Filename()
	}
	return t.r.Filename()
}

// Steps returns the ordered step list, one entry per frame. In read
// mode it is undefined before the first Read for formats that index
// lazily.
func (t *Trajectory) Steps() []int {
	if t.mode == WriteMode {
		return t.wsteps
	}
	return t.r.Steps()
}

// Len returns the number of frames.
func (t *Trajectory) Len() int {
	return len(t.Steps())
}

// Read returns the frame at the given zero-based index. On the first
// call it runs the reader's one-time initialization; then it delegates
// to the outermost ReadSample and applies every registered callback,
// in registration order, to the frame produced.
func (t *Trajectory) Read(frame int) (*system.System, error) {
	if t.mode != ReadMode || t.r == nil {
		return nil, baseError{NotReadable, t.Filename(), []string{"Read"}, true}
	}
	if !t.initRead {
		if err := t.r.ReadInit(); err != nil {
			return nil, errDecorate(err, "Read")
		}
		t.initRead = true
	}
	s, err := t.r.ReadSample(frame)
	if err != nil {
		return nil, errDecorate(err, "Read")
	}
	if s == nil {
		//A stateful decorator answered with a memoized no-op, there
		//is nothing to run the callbacks on.
		return nil, nil
	}
	for _, cbk := range t.callbacks {
		s, err = cbk(s)
		if err != nil {
			return nil, errDecorate(err, "Read")
		}
	}
	return s, nil
}

// At is like Read but with Python-style indexing: negative indices
// count from the end, and out-of-range indices fail instead of being
// delegated to the format.
func (t *Trajectory) At(frame int) (*system.System, error) {
	n := t.Len()
	if frame < 0 {
		frame += n
	}
	if frame < 0 || frame >= n {
		return nil, baseError{OutOfRange, t.Filename(), []string{"At"}, true}
	}
	return t.Read(frame)
}

// Slice eagerly reads the frames in [start, stop), resolving negative
// bounds from the end and clamping to the available range. The whole
// selection is materialized in memory; use the Sliced decorator for a
// lazy sub-range.
func (t *Trajectory) Slice(start, stop int) ([]*system.System, error) {
	n := t.Len()
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	start = max(start, 0)
	stop = min(stop, n)
	frames := make([]*system.System, 0, max(stop-start, 0))
	for i := start; i < stop; i++ {
		s, err := t.Read(i)
		if err != nil {
			return nil, errDecorate(err, "Slice")
		}
		frames = append(frames, s)
	}
	return frames, nil
}

// Next returns the next frame in steps order. When the trajectory is
// exhausted it returns a LastFrameError. Rewind restarts the
// iteration; any per-frame state (e.g. the unfolding accumulator)
// belongs to the reader stack, not to the iteration.
func (t *Trajectory) Next() (*system.System, error) {
	if t.mode != ReadMode || t.r == nil {
		return nil, baseError{NotReadable, t.Filename(), []string{"Next"}, true}
	}
	if !t.initRead {
		//Initialize before consulting Len: lazily indexing formats
		//do not know their length yet.
		if err := t.r.ReadInit(); err != nil {
			return nil, errDecorate(err, "Next")
		}
		t.initRead = true
	}
	if t.cursor >= t.Len() {
		return nil, newLastFrameError(t.Filename(), "Next")
	}
	s, err := t.Read(t.cursor)
	if err != nil {
		return nil, err
	}
	t.cursor++
	return s, nil
}

// Rewind restarts Next from the first frame.
func (t *Trajectory) Rewind() {
	t.cursor = 0
}

// Write persists the frame under the given step. It fails on a
// read-mode trajectory. The step is appended to Steps unless already
// present: re-writing an existing step overwrites that frame's data
// instead of adding a duplicate entry.
func (t *Trajectory) Write(s *system.System, step int) error {
	if t.mode != WriteMode || t.w == nil {
		return baseError{NotWriteable, t.Filename(), []string{"Write"}, true}
	}
	if !t.initWrite {
		if err := t.w.WriteInit(s); err != nil {
			return errDecorate(err, "Write")
		}
		t.initWrite = true
	}
	if err := t.w.WriteSample(s, step); err != nil {
		return errDecorate(err, "Write")
	}
	for _, v := range t.wsteps {
		if v == step {
			return nil
		}
	}
	t.wsteps = append(t.wsteps, step)
	return nil
}

// RegisterCallback adds a callback to be applied, in registration
// order, to every frame returned by Read. Registering the same
// function twice is a no-op; note that two distinct closures over the
// same code are different callbacks.
func (t *Trajectory) RegisterCallback(cbk Callback) {
	key := reflect.ValueOf(cbk).Pointer()
	for _, k := range t.cbkeys {
		if k == key {
			return
		}
	}
	t.callbacks = append(t.callbacks, cbk)
	t.cbkeys = append(t.cbkeys, key)
}

// Timestep returns the integration timestep, reading it from the
// format on first use and caching it. It defaults to 1.0.
func (t *Trajectory) Timestep() (float64, error) {
	if t.hasTimestep {
		return t.timestep, nil
	}
	dt := 1.0
	if t.mode == ReadMode {
		var err error
		dt, err = t.r.ReadTimestep()
		if err != nil {
			return 0, errDecorate(err, "Timestep")
		}
	}
	t.timestep = dt
	t.hasTimestep = true
	return dt, nil
}

// SetTimestep records the timestep, writing it through to the format
// in write mode, and updates the cache.
func (t *Trajectory) SetTimestep(dt float64) error {
	if t.mode == WriteMode && t.w != nil {
		if err := t.w.WriteTimestep(dt); err != nil {
			return errDecorate(err, "SetTimestep")
		}
	}
	t.timestep = dt
	t.hasTimestep = true
	return nil
}

// BlockSize returns the periodic sampling granularity of the step
// sequence: the format's declared value if there is one, otherwise the
// result of BlockSizeFunc over Steps. 0 means no block structure was
// declared or detected. The value is cached after the first call.
func (t *Trajectory) BlockSize() (int, error) {
	if t.hasBlockSize {
		return t.blockSize, nil
	}
	size := 0
	if t.mode == ReadMode {
		var err error
		size, err = t.r.ReadBlockSize()
		if err != nil {
			return 0, errDecorate(err, "BlockSize")
		}
	}
	if size == 0 && t.BlockSizeFunc != nil {
		size = t.BlockSizeFunc(t.Steps())
	}
	t.blockSize = size
	t.hasBlockSize = true
	return size, nil
}

// SetBlockSize records the block size, writing it through to the
// format in write mode, and updates the cache.
func (t *Trajectory) SetBlockSize(size int) error {
	if t.mode == WriteMode && t.w != nil {
		if err := t.w.WriteBlockSize(size); err != nil {
			return errDecorate(err, "SetBlockSize")
		}
	}
	t.blockSize = size
	t.hasBlockSize = true
	return nil
}

// Grandcanonical returns true if the number of particles changes along
// the trajectory. The answer is cached after the first call.
func (t *Trajectory) Grandcanonical() bool {
	if t.hasGC {
		return t.gc
	}
	gc := false
	if t.mode == ReadMode {
		gc = t.r.Grandcanonical()
	}
	t.gc = gc
	t.hasGC = true
	return gc
}

// Times returns the time of every frame, step times timestep.
func (t *Trajectory) Times() ([]float64, error) {
	dt, err := t.Timestep()
	if err != nil {
		return nil, err
	}
	steps := t.Steps()
	times := make([]float64, len(steps))
	for i, s := range steps {
		times[i] = float64(s) * dt
	}
	return times, nil
}

// TotalTime returns the time of the last frame. It fails on an empty
// trajectory.
func (t *Trajectory) TotalTime() (float64, error) {
	steps := t.Steps()
	if len(steps) == 0 {
		return 0, baseError{NoSteps, t.Filename(), []string{"TotalTime"}, true}
	}
	dt, err := t.Timestep()
	if err != nil {
		return 0, err
	}
	return float64(steps[len(steps)-1]) * dt, nil
}

// Close releases the underlying reader or writer. The usual pattern is
// to defer it right after opening.
func (t *Trajectory) Close() error {
	if t.r != nil {
		return t.r.Close()
	}
	if t.w != nil {
		return t.w.Close()
	}
	return nil
}

// Base supplies defaults for the optional parts of the format-plugin
// contract: timestep 1.0, no declared block size, not grand-canonical,
// and not-implemented errors for the two abstract frame methods.
// Format plugins embed it and override what they support.
type Base struct {
	Path     string
	StepList []int
}

// ReadInit does nothing. Formats that index lazily override it.
func (b *Base) ReadInit() error { return nil }

// ReadSample fails: it must be overridden by the format.
func (b *Base) ReadSample(frame int) (*system.System, error) {
	return nil, baseError{NotImplemented, b.Path, []string{"ReadSample"}, true}
}

// WriteInit does nothing. Formats with headers override it.
func (b *Base) WriteInit(s *system.System) error { return nil }

// WriteSample fails: it must be overridden by the format.
func (b *Base) WriteSample(s *system.System, step int) error {
	return baseError{NotImplemented, b.Path, []string{"WriteSample"}, true}
}

// Steps returns the step list maintained by the format.
func (b *Base) Steps() []int { return b.StepList }

// ReadTimestep returns the default timestep of 1.0.
func (b *Base) ReadTimestep() (float64, error) { return 1.0, nil }

// WriteTimestep does nothing.
func (b *Base) WriteTimestep(dt float64) error { return nil }

// ReadBlockSize returns 0: no declared block size.
func (b *Base) ReadBlockSize() (int, error) { return 0, nil }

// WriteBlockSize does nothing.
func (b *Base) WriteBlockSize(size int) error { return nil }

// Grandcanonical returns false.
func (b *Base) Grandcanonical() bool { return false }

// Filename returns the path backing the format.
func (b *Base) Filename() string { return b.Path }

// Close does nothing.
func (b *Base) Close() error { return nil }
