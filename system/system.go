/*
 * system.go, part of trajectory.
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

//Package system provides the physical containers for particle-based
//simulation snapshots: particles, the simulation cell and
//thermodynamic reservoirs. A System is one frame of a trajectory.
package system

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// System is a simulation snapshot: a list of particles in a cell, plus
// optional reservoirs fixing the statistical ensemble. Matrix holds
// particles that were set aside from the visible list, e.g. the frozen
// component of a porous matrix.
type System struct {
	Particles  []*Particle
	Matrix     []*Particle
	Cell       *Cell
	Thermostat *Thermostat
	Barostat   *Barostat
	Reservoir  *Reservoir
}

// New returns a system with the given particles and cell.
func New(particles []*Particle, cell *Cell) *System {
	s := new(System)
	s.Particles = particles
	s.Cell = cell
	return s
}

// Len returns the number of (visible) particles.
func (s *System) Len() int {
	return len(s.Particles)
}

// NumberOfDimensions returns the spatial dimensionality of the system,
// taken from the cell, or from the first particle if there is no cell.
// It returns 0 for an empty system.
func (s *System) NumberOfDimensions() int {
	if s.Cell != nil {
		return len(s.Cell.Side)
	}
	if len(s.Particles) > 0 {
		return len(s.Particles[0].Position)
	}
	return 0
}

// Density returns the number density N/V. It fails if the system has
// no cell.
func (s *System) Density() (float64, error) {
	if s.Cell == nil {
		return 0, fmt.Errorf("system: cannot compute density without a cell")
	}
	return float64(s.Len()) / s.Cell.Volume(), nil
}

// SetDensity rescales the cell and all particle positions so that the
// number density becomes rho.
func (s *System) SetDensity(rho float64) error {
	if rho <= 0 {
		return fmt.Errorf("system: invalid density %g", rho)
	}
	old, err := s.Density()
	if err != nil {
		return err
	}
	x := math.Pow(old/rho, 1.0/float64(s.NumberOfDimensions()))
	floats.Scale(x, s.Cell.Side)
	for _, p := range s.Particles {
		floats.Scale(x, p.Position)
	}
	return nil
}

// Temperature returns the kinetic temperature of the system (Boltzmann
// constant set to 1), or 0 for an empty system.
func (s *System) Temperature() float64 {
	ndim := s.NumberOfDimensions()
	if s.Len() == 0 || ndim == 0 {
		return 0
	}
	ekin := 0.0
	for _, p := range s.Particles {
		ekin += p.Mass * floats.Dot(p.Velocity, p.Velocity)
	}
	return ekin / (float64(ndim) * float64(s.Len()))
}

// Ensemble returns the statistical ensemble determined by the attached
// reservoirs: NVE when there are none, NVT with a thermostat, NPT with
// thermostat and barostat, muVT with thermostat and particle
// reservoir.
func (s *System) Ensemble() string {
	e := "NVE"
	if s.Thermostat != nil {
		e = "NVT"
	}
	if s.Barostat != nil && s.Thermostat != nil {
		e = "NPT"
	}
	if s.Reservoir != nil && s.Thermostat != nil {
		e = "muVT"
	}
	return e
}

// Copy returns a deep copy of the system, reservoirs excluded (they
// are shared, being invariants of the simulation).
func (s *System) Copy() *System {
	q := new(System)
	q.Particles = make([]*Particle, len(s.Particles))
	for i, p := range s.Particles {
		q.Particles[i] = p.Copy()
	}
	q.Matrix = make([]*Particle, len(s.Matrix))
	for i, p := range s.Matrix {
		q.Matrix[i] = p.Copy()
	}
	if s.Cell != nil {
		q.Cell = s.Cell.Copy()
	}
	q.Thermostat = s.Thermostat
	q.Barostat = s.Barostat
	q.Reservoir = s.Reservoir
	return q
}
