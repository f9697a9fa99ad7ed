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

// Capability container layout constants.
const (
	// ccProprietaryTLVOffset is where the proprietary file control
	// TLVs start inside the CC file, after the fixed T4T header.
	ccProprietaryTLVOffset = 0x0F

	ccTagProprietaryFile = 0x05
	ccLenProprietaryFile = 0x06

	// ccFileSizeHi and ccFileSizeLo declare each proprietary file as
	// 0x0400 bytes.
	ccFileSizeHi = 0x04
	ccFileSizeLo = 0x00
)

// ccAccessByte maps a FAP access condition to the CC encoding: 0x00
// stays 0x00 (free access) and everything else becomes 0xFF (no
// access). The CC format has no room for intermediate conditions.
func ccAccessByte(c AccessCondition) byte {
	if c == AccessAlways {
		return 0x00
	}
	return 0xFF
}

// BuildProprietaryTLVs builds the CC file block describing the four
// proprietary files. Each entry is a fixed 8-byte file control TLV:
// tag, length, file ID, declared size and the NFC read/write access
// summary derived from the file's policy.
func BuildProprietaryTLVs(policies []FileAccessPolicy) []byte {
	block := make([]byte, 0, len(policies)*8)
	for _, p := range policies {
		block = append(block,
			ccTagProprietaryFile,
			ccLenProprietaryFile,
			byte(p.FileID>>8),
			byte(p.FileID),
			ccFileSizeHi,
			ccFileSizeLo,
			ccAccessByte(p.NFCRead),
			ccAccessByte(p.NFCWrite),
		)
	}
	return block
}
