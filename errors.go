/*
 * errors.go, part of trajectory.
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

import "fmt"

//Messages for the error conditions raised by the core itself. Format
//plugins carry their own, these cover the template, the aggregator and
//the decorators.
const (
	NotWriteable   = "Trajectory not open for writing"
	NotReadable    = "Trajectory not open for reading"
	OutOfRange     = "Frame index out of range"
	EmptyFileList  = "No files given to aggregate"
	BackwardJump   = "Cannot unfold jumping backwards"
	NotImplemented = "Operation not implemented by this trajectory"
	NoSteps        = "Trajectory has no steps"
	NoCell         = "Frame has no cell"
	GCUnfold       = "Cannot unfold a trajectory whose number of particles changes"
)

//errDecorate is a helper that decorates err with the caller's name
//before returning it, when err implements the Error interface. Errors
//from outside the library are returned unchanged.
func errDecorate(err error, caller string) error {
	err2, ok := err.(Error)
	if !ok {
		return err
	}
	err2.Decorate(caller)
	return err2
}

//baseError is the concrete error for the trajectory core. It fulfills
//Error and TrajError.
type baseError struct {
	message  string
	filename string //the trajectory with problems, or empty string if none.
	deco     []string
	critical bool
}

func (err baseError) Error() string {
	return fmt.Sprintf("trajectory %s error: %s", err.filename, err.message)
}

//Decorate adds new information to the error
func (err baseError) Decorate(deco string) []string {
	//Even though this method does not use a pointer as a receiver, and
	//tries to alter the receiver, it should work, since err.deco is a
	//slice, and hence a pointer itself.
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

//FileName returns the file to which the failing trajectory was associated
func (err baseError) FileName() string { return err.filename }

//Format returns the format associated to the error. The core is
//format-agnostic.
func (err baseError) Format() string { return "trajectory" }

//Critical returns true if the error is critical, false otherwise
func (err baseError) Critical() bool { return err.critical }

//lastFrameError implements LastFrameError
type lastFrameError struct {
	deco     []string
	fileName string
}

//NormalLastFrameTermination does nothing
func (err lastFrameError) NormalLastFrameTermination() {}

func (err lastFrameError) FileName() string { return err.fileName }

func (err lastFrameError) Error() string { return "EOF" }

func (err lastFrameError) Critical() bool { return false }

func (err lastFrameError) Format() string { return "trajectory" }

func (err lastFrameError) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

func newLastFrameError(filename string, caller string) *lastFrameError {
	e := new(lastFrameError)
	e.fileName = filename
	e.deco = []string{caller}
	return e
}
