/*
 * interfaces.go, part of trajectory.
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

import "github.com/molsim/trajectory/system"

// Mode says whether a trajectory was opened for reading or writing.
type Mode string

const (
	//ReadMode opens a trajectory for reading.
	ReadMode Mode = "r"
	//WriteMode opens a trajectory for writing.
	WriteMode Mode = "w"
)

// Reader is the contract shared by format plugins, SuperTrajectory and
// every transformation decorator: anything able to produce frames. A
// decorator wraps a Reader and is itself a Reader, so transformations
// can be stacked arbitrarily deep. Readers assume a single consumer
// calling them sequentially; none of the implementations in this
// package is safe for concurrent use.
type Reader interface {

	//ReadInit reads metadata and/or sets up data structures. It is
	//called once, lazily, before the first frame is read. It must be
	//a no-op when called again.
	ReadInit() error

	//ReadSample returns the frame at the given zero-based index into
	//Steps.
	ReadSample(frame int) (*system.System, error)

	//Steps returns the ordered list of steps, one per frame. The
	//list is undefined before ReadInit for formats that index
	//lazily.
	Steps() []int

	//ReadTimestep returns the integration timestep, 1.0 if the
	//format does not record one.
	ReadTimestep() (float64, error)

	//ReadBlockSize returns the declared block size of the step
	//sequence, or 0 if the format does not record one.
	ReadBlockSize() (int, error)

	//Grandcanonical returns true if the number of particles changes
	//along the trajectory.
	Grandcanonical() bool

	//Filename returns the path backing this reader.
	Filename() string

	//Close releases any held resource. Safe to call more than once.
	Close() error
}

// Writer is the write-side contract of a format plugin.
type Writer interface {

	//WriteInit is called once, lazily, before the first frame is
	//written. Formats use it to emit headers.
	WriteInit(s *system.System) error

	//WriteSample persists the frame under the given step.
	WriteSample(s *system.System, step int) error

	//WriteTimestep records the integration timestep, for formats
	//that keep one.
	WriteTimestep(dt float64) error

	//WriteBlockSize records the block size, for formats that keep
	//one.
	WriteBlockSize(size int) error

	//Filename returns the path backing this writer.
	Filename() string

	//Close flushes and releases any held resource. Safe to call more
	//than once.
	Close() error
}

//Errors

// Error is the interface for errors that all packages in this library
// implement. The Decorate method allows to add and retrieve info from
// the error, without changing its type or wrapping it around something
// else. If passed an empty string, it just returns the current
// decoration slice, without adding to it.
type Error interface {
	error
	Decorate(string) []string
}

// TrajError is the interface for errors in trajectories.
type TrajError interface {
	Error
	Critical() bool
	FileName() string
	Format() string
}

// LastFrameError has a useless method to distinguish the harmless
// end-of-trajectory condition from real trajectory errors, so it can
// be filtered in a type switch.
type LastFrameError interface {
	TrajError
	NormalLastFrameTermination() //does nothing, just to separate this interface from other TrajError's
}
