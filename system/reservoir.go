/*
 * reservoir.go, part of trajectory.
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

//Thermodynamic reservoirs to impose temperature, pressure or particle
//number on a simulation. When attached to a System they determine the
//statistical ensemble reported by System.Ensemble. In an actual
//simulation backend these would carry additional degrees of freedom,
//e.g. s and pi in a Nose-like thermostat.

package system

// Thermostat controls the temperature during a simulation.
type Thermostat struct {
	Name            string
	Temperature     float64
	Mass            float64
	CollisionPeriod int
}

// NewThermostat returns a thermostat at the given temperature with
// unit reservoir mass.
func NewThermostat(temperature float64) *Thermostat {
	return &Thermostat{Temperature: temperature, Mass: 1.0, CollisionPeriod: -1}
}

// Barostat controls the pressure during a simulation.
type Barostat struct {
	Name     string
	Pressure float64
	Mass     float64
}

// NewBarostat returns a barostat at the given pressure with unit
// reservoir mass.
func NewBarostat(pressure float64) *Barostat {
	return &Barostat{Pressure: pressure, Mass: 1.0}
}

// Reservoir controls the number of particles during a simulation.
type Reservoir struct {
	Name              string
	ChemicalPotential float64
	Mass              float64
}

// NewReservoir returns a particle reservoir at the given chemical
// potential with unit reservoir mass.
func NewReservoir(chemicalPotential float64) *Reservoir {
	return &Reservoir{ChemicalPotential: chemicalPotential, Mass: 1.0}
}
