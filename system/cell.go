/*
 * cell.go, part of trajectory.
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

package system

import "gonum.org/v1/gonum/floats"

// Cell is an orthorhombic simulation cell. Side holds the box lengths
// along each Cartesian axis and may be modified in place, for instance
// by density rescaling or affine deformations.
type Cell struct {
	Side   []float64
	Origin []float64
}

// NewCell returns a cell with the given side lengths and the origin at
// zero.
func NewCell(side []float64) *Cell {
	c := new(Cell)
	c.Side = side
	c.Origin = make([]float64, len(side))
	return c
}

// Volume returns the cell volume.
func (c *Cell) Volume() float64 {
	return floats.Prod(c.Side)
}

// Copy returns a deep copy of the cell.
func (c *Cell) Copy() *Cell {
	q := new(Cell)
	q.Side = append([]float64{}, c.Side...)
	q.Origin = append([]float64{}, c.Origin...)
	return q
}
