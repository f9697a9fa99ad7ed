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

package ndef

import "fmt"

// emptyMessage is an empty NDEF record with both message flags set and
// zero-length type and payload.
var emptyMessage = []byte{0xD0, 0x00, 0x00}

// EncodeMessage serializes an ordered sequence of records into a full
// NDEF message. The first record carries the message-begin flag and the
// last the message-end flag; a single-record message carries both. An
// empty sequence encodes to the fixed empty-message sentinel.
func EncodeMessage(records []*Record) ([]byte, error) {
	if len(records) == 0 {
		out := make([]byte, len(emptyMessage))
		copy(out, emptyMessage)
		return out, nil
	}

	var buf []byte
	for i, rec := range records {
		var flags byte
		if i == 0 {
			flags |= FlagMB
		}
		if i == len(records)-1 {
			flags |= FlagME
		}

		encoded, err := EncodeRecord(flags, rec)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		buf = append(buf, encoded...)
	}

	return buf, nil
}
