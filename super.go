/*
 * super.go, part of trajectory.
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
	"path/filepath"
	"sort"

	"github.com/molsim/trajectory/system"
)

// OpenFunc opens one file of a given format for reading. The format
// subpackages provide one.
type OpenFunc func(path string) (Reader, error)

// closedReporter is implemented by format plugins that can tell
// whether they were closed. SuperTrajectory uses it to detect a cached
// handle closed behind its back.
type closedReporter interface {
	Closed() bool
}

// SuperTrajectory aggregates an ordered list of single-format files
// into one logical trajectory. At construction it builds a global
// index mapping each distinct step to (file, local frame); a step
// equal to the immediately preceding one (the common case of a restart
// writing the boundary frame twice) is dropped. At most one
// sub-trajectory is kept open at a time, as a cache that makes
// sequential access within one file cheap.
type SuperTrajectory struct {
	files      []string
	open       OpenFunc
	steps      []int
	stepsFile  []int //index into files, parallel to steps
	stepsFrame []int //frame within that file, parallel to steps
	last       Reader
	dirname    string
}

// NewSuper groups the given files, opened with open, into a single
// read-only trajectory. The file list is sorted lexicographically
// first; it must not be empty.
func NewSuper(files []string, open OpenFunc) (*SuperTrajectory, error) {
	if len(files) == 0 {
		return nil, baseError{EmptyFileList, "", []string{"NewSuper"}, true}
	}
	st := new(SuperTrajectory)
	st.files = append([]string{}, files...)
	sort.Strings(st.files)
	st.open = open
	st.dirname = filepath.Dir(st.files[0])
	//This is slow, each file is opened just to get its step index,
	//but it keeps the whole steps list available right away.
	for i, f := range st.files {
		t, err := open(f)
		if err != nil {
			return nil, errDecorate(err, "NewSuper")
		}
		if err := t.ReadInit(); err != nil {
			t.Close()
			return nil, errDecorate(err, "NewSuper")
		}
		for j, step := range t.Steps() {
			if len(st.steps) == 0 || step != st.steps[len(st.steps)-1] {
				st.steps = append(st.steps, step)
				st.stepsFile = append(st.stepsFile, i)
				st.stepsFrame = append(st.stepsFrame, j)
			}
		}
		if err := t.Close(); err != nil {
			return nil, errDecorate(err, "NewSuper")
		}
	}
	return st, nil
}

// NewSuperGlob is NewSuper over the files matching a glob pattern.
func NewSuperGlob(pattern string, open OpenFunc) (*SuperTrajectory, error) {
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}
	return NewSuper(files, open)
}

// ReadInit does nothing: the index is built at construction.
func (st *SuperTrajectory) ReadInit() error { return nil }

// Steps returns the aggregated step list, one entry per distinct step.
func (st *SuperTrajectory) Steps() []int { return st.steps }

// ReadSample returns the frame at the given index into the aggregated
// step list, resolving it to a file and a local frame. The last
// sub-trajectory used stays open: sequential reads within one file
// reuse it, and it is replaced only when another file is needed or
// when something closed it externally (decorators participating in
// lifecycle calls can do that).
func (st *SuperTrajectory) ReadSample(frame int) (*system.System, error) {
	if frame < 0 || frame >= len(st.steps) {
		return nil, baseError{OutOfRange, st.dirname, []string{"SuperTrajectory.ReadSample"}, true}
	}
	f := st.files[st.stepsFile[frame]]
	j := st.stepsFrame[frame]
	stale := false
	if st.last != nil {
		if c, ok := st.last.(closedReporter); ok && c.Closed() {
			stale = true
		}
	}
	if st.last == nil || st.last.Filename() != f || stale {
		if st.last != nil {
			st.last.Close()
		}
		t, err := st.open(f)
		if err != nil {
			return nil, errDecorate(err, "SuperTrajectory.ReadSample")
		}
		if err := t.ReadInit(); err != nil {
			t.Close()
			return nil, errDecorate(err, "SuperTrajectory.ReadSample")
		}
		st.last = t
	}
	s, err := st.last.ReadSample(j)
	if err != nil {
		return nil, errDecorate(err, "SuperTrajectory.ReadSample")
	}
	return s, nil
}

// ReadTimestep opens the first file transiently and returns its
// timestep. It does not touch the cached sub-trajectory.
func (st *SuperTrajectory) ReadTimestep() (float64, error) {
	t, err := st.open(st.files[0])
	if err != nil {
		return 0, errDecorate(err, "SuperTrajectory.ReadTimestep")
	}
	defer t.Close()
	if err := t.ReadInit(); err != nil {
		return 0, errDecorate(err, "SuperTrajectory.ReadTimestep")
	}
	dt, err := t.ReadTimestep()
	if err != nil {
		return 0, errDecorate(err, "SuperTrajectory.ReadTimestep")
	}
	return dt, nil
}

// ReadBlockSize returns 0: the aggregate declares no block size.
func (st *SuperTrajectory) ReadBlockSize() (int, error) { return 0, nil }

// Grandcanonical returns false. Detection across files would require
// opening all of them again; callers that care can inspect frames.
func (st *SuperTrajectory) Grandcanonical() bool { return false }

// Filename returns the directory holding the first file.
func (st *SuperTrajectory) Filename() string { return st.dirname }

// Close releases the cached sub-trajectory, if any.
func (st *SuperTrajectory) Close() error {
	if st.last == nil {
		return nil
	}
	err := st.last.Close()
	st.last = nil
	return err
}
