/*
 * species.go, part of trajectory.
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

import "fmt"

//speciesNames maps 1-based species ids to the conventional alphabetic
//species labels. The table is deliberately small and bounded: ids
//beyond it are an error, not a silent wrap.
var speciesNames = []string{"A", "B", "C", "D", "E", "F", "G", "H"}

// SpeciesName returns the alphabetic label for a 1-based species id
// (1 -> "A"). It fails for ids outside the bounded table.
func SpeciesName(id int) (string, error) {
	if id < 1 || id > len(speciesNames) {
		return "", fmt.Errorf("system: species id %d outside the name table [1, %d]", id, len(speciesNames))
	}
	return speciesNames[id-1], nil
}

// SpeciesID returns the 1-based species id for an alphabetic label
// ("A" -> 1). It fails for labels outside the bounded table.
func SpeciesID(name string) (int, error) {
	for i, n := range speciesNames {
		if n == name {
			return i + 1, nil
		}
	}
	return 0, fmt.Errorf("system: species name %q outside the name table", name)
}
