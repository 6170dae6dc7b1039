/*
 * particle.go, part of trajectory.
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

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Particle is a point particle in a simulation snapshot. Position and
// Velocity are mutable slices of length equal to the number of spatial
// dimensions of the system (normally 3). ID is the integer species
// identifier, Name an optional species label.
type Particle struct {
	Position []float64
	Velocity []float64
	ID       int
	Name     string
	Mass     float64
}

// NewParticle returns a particle of species id at the given position,
// with zero velocity and unit mass.
func NewParticle(id int, position []float64) *Particle {
	p := new(Particle)
	p.ID = id
	p.Position = position
	p.Velocity = make([]float64, len(position))
	p.Mass = 1.0
	return p
}

// Copy returns a deep copy of the particle.
func (p *Particle) Copy() *Particle {
	q := new(Particle)
	q.Position = append([]float64{}, p.Position...)
	q.Velocity = append([]float64{}, p.Velocity...)
	q.ID = p.ID
	q.Name = p.Name
	q.Mass = p.Mass
	return q
}

// Maxwellian reassigns the particle velocity by drawing each Cartesian
// component from a Maxwell-Boltzmann distribution at temperature T
// (Boltzmann constant set to 1).
func (p *Particle) Maxwellian(T float64) {
	m := p.Mass
	if m <= 0 {
		m = 1.0
	}
	n := distuv.Normal{Mu: 0, Sigma: math.Sqrt(T / m)}
	for i := range p.Velocity {
		p.Velocity[i] = n.Rand()
	}
}

// CMVelocity returns the velocity of the center of mass of the given
// particles. It returns nil if the list is empty.
func CMVelocity(particles []*Particle) []float64 {
	if len(particles) == 0 {
		return nil
	}
	vcm := make([]float64, len(particles[0].Velocity))
	mtot := 0.0
	for _, p := range particles {
		for i, v := range p.Velocity {
			vcm[i] += p.Mass * v
		}
		mtot += p.Mass
	}
	for i := range vcm {
		vcm[i] /= mtot
	}
	return vcm
}
