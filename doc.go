/*
 * doc.go, part of trajectory.
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

//Package trajectory provides a uniform abstraction for reading and
//writing sequences of particle-simulation snapshots stored across one
//or many files, plus composable on-the-fly transformations (centering,
//periodic-image unfolding, filtering, slicing, species renumbering and
//more) applied transparently as frames are read.
//
//A concrete on-disk format is a plugin implementing the Reader and
//Writer contracts (see the format/ subpackages). Plugins, the
//multi-file SuperTrajectory aggregator and the transformation
//decorators all satisfy the same Reader interface, so any of them can
//be wrapped by any decorator. The Trajectory type is the user-facing
//handle: it runs the read/write template (lazy one-time
//initialization, callback application, idempotent step bookkeeping)
//over whatever Reader or Writer it is given.
//
//	src, err := xyz.New("run.xyz", trajectory.ReadMode)
//	...
//	t := trajectory.New(trajectory.NewUnfolded(src))
//	defer t.Close()
//	for {
//		s, err := t.Next()
//		if _, ok := err.(trajectory.LastFrameError); ok {
//			break
//		}
//		...
//	}
//
//All types in this package assume a single consumer reading frames
//sequentially; see the Reader documentation.
package trajectory
