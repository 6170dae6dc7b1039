/*
 * callbacks.go, part of trajectory.
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

//Ready-made callbacks for RegisterCallback. Unlike the decorators,
//callbacks carry no per-frame state: they are plain transformations of
//the frame just read, applied in registration order.

package trajectory

import (
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/molsim/trajectory/system"
)

// Center moves the cell center to the origin, subtracting half the
// cell side from every particle position. Unlike the Centered
// decorator it keeps no memory: registering it and re-reading the same
// frame from a caching reader would center twice.
func Center(s *system.System) (*system.System, error) {
	if s.Cell == nil {
		return nil, baseError{NoCell, "", []string{"Center"}, true}
	}
	for _, p := range s.Particles {
		floats.AddScaled(p.Position, -0.5, s.Cell.Side)
	}
	return s, nil
}

// NormalizeIDs returns a callback that shifts species ids to start
// from 1 when the observed minimum is 0. With alphabetic set, particle
// names are also reassigned from the bounded species table ("A", "B",
// ...); ids beyond the table make the callback fail.
func NormalizeIDs(alphabetic bool) Callback {
	return func(s *system.System) (*system.System, error) {
		normalizeIDs(s.Particles)
		if !alphabetic {
			return s, nil
		}
		for _, p := range s.Particles {
			name, err := system.SpeciesName(p.ID)
			if err != nil {
				return nil, err
			}
			p.Name = name
		}
		return s, nil
	}
}

// SortByID orders the particles of the frame by ascending species id.
func SortByID(s *system.System) (*system.System, error) {
	sort.SliceStable(s.Particles, func(i, j int) bool {
		return s.Particles[i].ID < s.Particles[j].ID
	})
	return s, nil
}

// FilterID returns a callback that keeps only the particles of the
// given species.
func FilterID(species int) Callback {
	return func(s *system.System) (*system.System, error) {
		kept := s.Particles[:0]
		for _, p := range s.Particles {
			if p.ID == species {
				kept = append(kept, p)
			}
		}
		s.Particles = kept
		return s, nil
	}
}

// SetDensity returns a callback that rescales the cell and the
// positions so the frame has number density rho.
func SetDensity(rho float64) Callback {
	return func(s *system.System) (*system.System, error) {
		if err := s.SetDensity(rho); err != nil {
			return nil, err
		}
		return s, nil
	}
}

// SetTemperature returns a callback that reassigns Maxwellian
// velocities at temperature T and removes the center-of-mass drift.
func SetTemperature(T float64) Callback {
	return func(s *system.System) (*system.System, error) {
		for _, p := range s.Particles {
			p.Maxwellian(T)
		}
		vcm := system.CMVelocity(s.Particles)
		for _, p := range s.Particles {
			floats.Sub(p.Velocity, vcm)
		}
		return s, nil
	}
}
