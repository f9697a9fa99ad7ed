/*
NBT Perso
Copyright (c) 2026 The NBT Perso Contributors.
SPDX-License-Identifier: GPL-3.0-or-later

This file is part of NBT Perso.

NBT Perso is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

NBT Perso is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with NBT Perso.  If not, see <http://www.gnu.org/licenses/>.
*/

package nbt

import "bytes"

// DeviceState classifies the current tag configuration. It is derived
// from the live FAP file image on every session, never stored.
type DeviceState int

const (
	// DeviceStateUnknown means the FAP file could not be read or was
	// empty.
	DeviceStateUnknown DeviceState = iota
	// DeviceStateDefault means the FAP image matches the factory
	// default byte-for-byte.
	DeviceStateDefault
	// DeviceStatePersonalized means the FAP image differs from the
	// factory default in at least one byte.
	DeviceStatePersonalized
)

func (s DeviceState) String() string {
	switch s {
	case DeviceStateDefault:
		return "default"
	case DeviceStatePersonalized:
		return "personalized"
	case DeviceStateUnknown:
		return "unknown"
	default:
		return "unknown"
	}
}

// ClassifyFAPImage maps a FAP file byte image to a device state. The
// comparison against the default image is exact, no partial matching.
func ClassifyFAPImage(image []byte) DeviceState {
	switch {
	case len(image) == 0:
		return DeviceStateUnknown
	case bytes.Equal(image, defaultFAPImage):
		return DeviceStateDefault
	default:
		return DeviceStatePersonalized
	}
}
