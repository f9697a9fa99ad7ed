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

// Package nbt implements the personalization core for the OPTIGA NBT
// contactless secure element: file access policies, per-use-case state
// configuration and the manager that sequences configuration writes
// over a command/response transport.
package nbt

import "encoding/binary"

// AccessCondition is a per-file, per-operation access rule as encoded
// in the file access policy (FAP) file.
type AccessCondition byte

const (
	// AccessAlways grants unconditional access.
	AccessAlways AccessCondition = 0x00
	// AccessNever blocks access entirely.
	AccessNever AccessCondition = 0xFF
)

// Logical file IDs of the NBT applet.
const (
	FileCC           uint16 = 0xE103
	FileNDEF         uint16 = 0xE104
	FileFAP          uint16 = 0xE1AF
	FileProprietary1 uint16 = 0xE1A1
	FileProprietary2 uint16 = 0xE1A2
	FileProprietary3 uint16 = 0xE1A3
	FileProprietary4 uint16 = 0xE1A4
)

// fapEntrySize is the size of one file entry in the FAP file: the
// 2-byte file ID followed by the four access condition bytes.
const fapEntrySize = 6

// fapFileOrder is the fixed order of entries in the FAP file image and
// of policy updates during personalization.
var fapFileOrder = []uint16{
	FileCC,
	FileNDEF,
	FileFAP,
	FileProprietary1,
	FileProprietary2,
	FileProprietary3,
	FileProprietary4,
}

// FileAccessPolicy is the immutable access rule set of one logical
// file over the two host interfaces.
type FileAccessPolicy struct {
	FileID   uint16
	I2CRead  AccessCondition
	I2CWrite AccessCondition
	NFCRead  AccessCondition
	NFCWrite AccessCondition
}

// AccessBytes returns the 4-byte serialized access conditions in wire
// order: I2C read, I2C write, NFC read, NFC write.
func (p FileAccessPolicy) AccessBytes() [4]byte {
	return [4]byte{
		byte(p.I2CRead),
		byte(p.I2CWrite),
		byte(p.NFCRead),
		byte(p.NFCWrite),
	}
}

// Bytes returns the full FAP file entry for this policy: big-endian
// file ID followed by the access bytes.
func (p FileAccessPolicy) Bytes() []byte {
	entry := make([]byte, fapEntrySize)
	binary.BigEndian.PutUint16(entry[:2], p.FileID)
	access := p.AccessBytes()
	copy(entry[2:], access[:])
	return entry
}

// AllowAll returns a policy granting unconditional access to the given
// file on both interfaces.
func AllowAll(fileID uint16) FileAccessPolicy {
	return FileAccessPolicy{
		FileID:   fileID,
		I2CRead:  AccessAlways,
		I2CWrite: AccessAlways,
		NFCRead:  AccessAlways,
		NFCWrite: AccessAlways,
	}
}

// BlockAll returns a policy blocking all access to the given file on
// both interfaces.
func BlockAll(fileID uint16) FileAccessPolicy {
	return FileAccessPolicy{
		FileID:   fileID,
		I2CRead:  AccessNever,
		I2CWrite: AccessNever,
		NFCRead:  AccessNever,
		NFCWrite: AccessNever,
	}
}

// defaultFAPImage is the FAP file byte image of a factory-default tag:
// every file fully accessible on both interfaces. Computed once, never
// mutated.
var defaultFAPImage = buildDefaultFAPImage()

func buildDefaultFAPImage() []byte {
	image := make([]byte, 0, len(fapFileOrder)*fapEntrySize)
	for _, fileID := range fapFileOrder {
		image = append(image, AllowAll(fileID).Bytes()...)
	}
	return image
}

// DefaultFAPImage returns a copy of the factory-default FAP file image.
func DefaultFAPImage() []byte {
	out := make([]byte, len(defaultFAPImage))
	copy(out, defaultFAPImage)
	return out
}
