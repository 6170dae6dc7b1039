/*
 * decorators.go, part of trajectory.
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

//Trajectory decorators. Each type here wraps a Reader and is itself a
//Reader: the wrapped layer is embedded, so whatever a decorator does
//not override falls through to the component unchanged, and decorated
//trajectories can be decorated again. Decorators own no file resource;
//Close falls through to the innermost plugin. The stateful ones
//(Unfolded, Centered, MatrixFlat) assume one consumer reading frames
//sequentially.

package trajectory

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/molsim/trajectory/system"
)

// Centered subtracts half the cell side from every particle position,
// moving the cell center to the origin. Each frame is centered at most
// once: asking again for a frame already produced is a memoized no-op
// that returns a nil frame, so stacking Centered on a stateful reader
// cannot shift positions twice.
type Centered struct {
	Reader
	done map[int]bool
}

// NewCentered wraps r so that the frames it produces are centered in
// the cell.
func NewCentered(r Reader) *Centered {
	return &Centered{Reader: r, done: make(map[int]bool)}
}

// ReadSample returns the centered frame, or nil for a frame it has
// already produced.
func (c *Centered) ReadSample(frame int) (*system.System, error) {
	if c.done[frame] {
		return nil, nil
	}
	c.done[frame] = true
	s, err := c.Reader.ReadSample(frame)
	if err != nil {
		return nil, errDecorate(err, "Centered.ReadSample")
	}
	if s.Cell == nil {
		return nil, baseError{NoCell, c.Filename(), []string{"Centered.ReadSample"}, true}
	}
	for _, p := range s.Particles {
		floats.AddScaled(p.Position, -0.5, s.Cell.Side)
	}
	return s, nil
}

// Sliced exposes only a sub-range of the frames of the wrapped
// trajectory, chosen at construction. Unlike Trajectory.Slice it is
// lazy: nothing is read until a frame is asked for.
type Sliced struct {
	Reader
	frames []int //selected frame indices in the wrapped reader
	steps  []int
}

// NewSliced wraps r exposing the frames in [start, stop) with the
// given stride. Negative bounds count from the end and both are
// clamped to the available range; the stride must be positive. The
// wrapped reader is initialized here, since the selection needs its
// step list.
func NewSliced(r Reader, start, stop, stride int) (*Sliced, error) {
	if stride < 1 {
		return nil, baseError{fmt.Sprintf("invalid slice stride %d", stride), r.Filename(), []string{"NewSliced"}, true}
	}
	if err := r.ReadInit(); err != nil {
		return nil, errDecorate(err, "NewSliced")
	}
	n := len(r.Steps())
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	start = max(start, 0)
	stop = min(stop, n)
	s := &Sliced{Reader: r}
	for i := start; i < stop; i += stride {
		s.frames = append(s.frames, i)
		s.steps = append(s.steps, r.Steps()[i])
	}
	return s, nil
}

// ReadInit does nothing further: the wrapped reader was initialized at
// construction.
func (s *Sliced) ReadInit() error { return nil }

// Steps returns the step list reduced to the selected sub-range.
func (s *Sliced) Steps() []int { return s.steps }

// ReadSample maps index i to the i-th selected frame of the wrapped
// trajectory.
func (s *Sliced) ReadSample(frame int) (*system.System, error) {
	if frame < 0 || frame >= len(s.frames) {
		return nil, baseError{OutOfRange, s.Filename(), []string{"Sliced.ReadSample"}, true}
	}
	sys, err := s.Reader.ReadSample(s.frames[frame])
	if err != nil {
		return nil, errDecorate(err, "Sliced.ReadSample")
	}
	return sys, nil
}

// Unfolded removes the apparent discontinuities that periodic boundary
// conditions leave in particle positions, by accumulating
// minimum-image displacements frame over frame. It only supports
// strictly sequential access: asking for a frame earlier than the last
// one read fails, and jumping forward reads and discards the skipped
// frames so the accumulator stays correct. The cell side is taken from
// the current frame, so slowly varying cells (NPT) are tolerated.
type Unfolded struct {
	Reader
	old      [][]float64 //last unfolded positions
	lastRead int
}

// NewUnfolded wraps r so that the positions it produces are unfolded.
func NewUnfolded(r Reader) *Unfolded {
	return &Unfolded{Reader: r}
}

// ReadInit initializes the wrapped reader and seeds the accumulator
// with the positions of the first frame.
func (u *Unfolded) ReadInit() error {
	if err := u.Reader.ReadInit(); err != nil {
		return errDecorate(err, "Unfolded.ReadInit")
	}
	s, err := u.Reader.ReadSample(0)
	if err != nil {
		return errDecorate(err, "Unfolded.ReadInit")
	}
	u.old = make([][]float64, len(s.Particles))
	for i, p := range s.Particles {
		u.old[i] = append([]float64{}, p.Position...)
	}
	u.lastRead = 0
	return nil
}

// ReadSample returns the frame with unfolded positions. It fails when
// asked to jump backwards.
func (u *Unfolded) ReadSample(frame int) (*system.System, error) {
	//The first frame is the unfolding origin, nothing to do.
	if frame == 0 {
		s, err := u.Reader.ReadSample(0)
		if err != nil {
			return nil, errDecorate(err, "Unfolded.ReadSample")
		}
		return s, nil
	}
	delta := frame - u.lastRead
	if delta < 0 {
		return nil, baseError{fmt.Sprintf("%s (delta=%d)", BackwardJump, delta), u.Filename(), []string{"Unfolded.ReadSample"}, true}
	}
	if delta > 1 {
		//Catch up on the skipped frames so the displacement
		//accumulator sees every boundary crossing.
		for i := 0; i < delta-1; i++ {
			if _, err := u.ReadSample(u.lastRead + 1); err != nil {
				return nil, errDecorate(err, "Unfolded.ReadSample")
			}
		}
	}
	s, err := u.Reader.ReadSample(frame)
	if err != nil {
		return nil, errDecorate(err, "Unfolded.ReadSample")
	}
	if s.Cell == nil {
		return nil, baseError{NoCell, u.Filename(), []string{"Unfolded.ReadSample"}, true}
	}
	if len(s.Particles) != len(u.old) {
		return nil, baseError{GCUnfold, u.Filename(), []string{"Unfolded.ReadSample"}, true}
	}
	u.lastRead = frame
	side := s.Cell.Side
	for i, p := range s.Particles {
		for j := range p.Position {
			d := p.Position[j] - u.old[i][j]
			d -= math.RoundToEven(d/side[j]) * side[j]
			u.old[i][j] += d
		}
		copy(p.Position, u.old[i])
	}
	return s, nil
}

// MatrixFix removes the particles of the given "matrix" species from
// the visible particle list, e.g. the frozen component of a porous
// matrix. It is a stateless filter.
type MatrixFix struct {
	Reader
	species map[int]bool
}

// NewMatrixFix wraps r hiding the particles whose species id is among
// matrixSpecies.
func NewMatrixFix(r Reader, matrixSpecies ...int) *MatrixFix {
	m := &MatrixFix{Reader: r, species: make(map[int]bool)}
	for _, id := range matrixSpecies {
		m.species[id] = true
	}
	return m
}

func (m *MatrixFix) ReadSample(frame int) (*system.System, error) {
	s, err := m.Reader.ReadSample(frame)
	if err != nil {
		return nil, errDecorate(err, "MatrixFix.ReadSample")
	}
	fluid := s.Particles[:0]
	for _, p := range s.Particles {
		if !m.species[p.ID] {
			fluid = append(fluid, p)
		}
	}
	s.Particles = fluid
	return s, nil
}

// NormalizeID shifts species ids so that they start from 1 (the
// Fortran convention) when the observed minimum is 0, as written e.g.
// by RUMD. The shift is recomputed on every frame.
type NormalizeID struct {
	Reader
}

// NewNormalizeID wraps r normalizing species ids to start from 1.
func NewNormalizeID(r Reader) *NormalizeID {
	return &NormalizeID{Reader: r}
}

func (n *NormalizeID) ReadSample(frame int) (*system.System, error) {
	s, err := n.Reader.ReadSample(frame)
	if err != nil {
		return nil, errDecorate(err, "NormalizeID.ReadSample")
	}
	normalizeIDs(s.Particles)
	return s, nil
}

func normalizeIDs(particles []*system.Particle) {
	if len(particles) == 0 {
		return
	}
	idMin := particles[0].ID
	for _, p := range particles {
		idMin = min(idMin, p.ID)
	}
	if idMin == 0 {
		for _, p := range particles {
			p.ID++
		}
	}
}

// Sorted returns the particles of every frame ordered by ascending
// species id. The sort is stable, so the relative order within one
// species is preserved.
type Sorted struct {
	Reader
}

// NewSorted wraps r sorting the particles of every frame by species.
func NewSorted(r Reader) *Sorted {
	return &Sorted{Reader: r}
}

func (o *Sorted) ReadSample(frame int) (*system.System, error) {
	s, err := o.Reader.ReadSample(frame)
	if err != nil {
		return nil, errDecorate(err, "Sorted.ReadSample")
	}
	sort.SliceStable(s.Particles, func(i, j int) bool {
		return s.Particles[i].ID < s.Particles[j].ID
	})
	return s, nil
}

//A matrix particle re-appended by MatrixFlat is effectively immobile.
const infiniteMass = 1e20

// MatrixFlat re-appends the set-aside matrix particles (the Matrix
// field of the frame) to the visible particle list, giving them an
// effectively infinite mass and species ids offset above the largest
// fluid id. The matrix list is computed from the first frame produced
// and reused for all following frames.
type MatrixFlat struct {
	Reader
	matrix []*system.Particle
}

// NewMatrixFlat wraps r flattening the matrix particles back into the
// visible list.
func NewMatrixFlat(r Reader) *MatrixFlat {
	return &MatrixFlat{Reader: r}
}

func (m *MatrixFlat) setupMatrix(s *system.System) {
	if m.matrix != nil {
		return
	}
	maxID := 0
	for _, p := range s.Particles {
		maxID = max(maxID, p.ID)
	}
	m.matrix = make([]*system.Particle, 0, len(s.Matrix))
	for _, p := range s.Matrix {
		q := p.Copy()
		q.Mass = infiniteMass
		q.ID += maxID
		m.matrix = append(m.matrix, q)
	}
	sort.SliceStable(m.matrix, func(i, j int) bool {
		return m.matrix[i].ID < m.matrix[j].ID
	})
}

func (m *MatrixFlat) ReadSample(frame int) (*system.System, error) {
	s, err := m.Reader.ReadSample(frame)
	if err != nil {
		return nil, errDecorate(err, "MatrixFlat.ReadSample")
	}
	m.setupMatrix(s)
	s.Particles = append(s.Particles, m.matrix...)
	return s, nil
}

// Filter applies a caller-supplied transformation to every frame
// produced by the wrapped trajectory. Extra arguments are closed over
// by the callback. Errors from the callback propagate unchanged.
type Filter struct {
	Reader
	filt Callback
}

// NewFilter wraps r applying filt to every frame it produces.
func NewFilter(r Reader, filt Callback) *Filter {
	return &Filter{Reader: r, filt: filt}
}

func (f *Filter) ReadSample(frame int) (*system.System, error) {
	s, err := f.Reader.ReadSample(frame)
	if err != nil {
		return nil, errDecorate(err, "Filter.ReadSample")
	}
	return f.filt(s)
}

// AffineDeformation applies a random isotropic scaling to the cell and
// all positions of every frame it produces. The factor is drawn
// uniformly in [1-scale/2, 1+scale/2], fresh on every read: the same
// frame index yields a different geometry on repeated reads. With
// scale 0 the transformation is the identity.
type AffineDeformation struct {
	Reader
	scale float64
}

// NewAffineDeformation wraps r deforming every frame by a random
// factor of the given amplitude.
func NewAffineDeformation(r Reader, scale float64) *AffineDeformation {
	return &AffineDeformation{Reader: r, scale: scale}
}

func (a *AffineDeformation) ReadSample(frame int) (*system.System, error) {
	s, err := a.Reader.ReadSample(frame)
	if err != nil {
		return nil, errDecorate(err, "AffineDeformation.ReadSample")
	}
	if s.Cell == nil {
		return nil, baseError{NoCell, a.Filename(), []string{"AffineDeformation.ReadSample"}, true}
	}
	x := 1 + (rand.Float64()-0.5)*a.scale
	floats.Scale(x, s.Cell.Side)
	for _, p := range s.Particles {
		floats.Scale(x, p.Position)
	}
	return s, nil
}
