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

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestEncodeRecord_Properties(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		rec := &Record{
			TNF:     byte(rapid.IntRange(0x00, 0x07).Draw(t, "tnf")),
			Type:    rapid.StringMatching(`[a-zA-Z0-9:/.-]{0,64}`).Draw(t, "type"),
			ID:      rapid.SliceOfN(rapid.Byte(), 0, 255).Draw(t, "id"),
			Payload: rapid.SliceOfN(rapid.Byte(), 0, 600).Draw(t, "payload"),
		}

		got, err := EncodeRecord(0, rec)
		require.NoError(t, err)

		header := got[0]
		require.Equal(t, rec.TNF, header&tnfMask, "tnf bits round-trip")

		lenFieldSize := 4
		if len(rec.Payload) <= shortRecordMax {
			lenFieldSize = 1
			require.Equal(t, FlagSR, header&FlagSR)
		} else {
			require.Zero(t, header&FlagSR)
		}

		idFieldSize := 0
		if len(rec.ID) > 0 {
			idFieldSize = 1
			require.Equal(t, FlagIL, header&FlagIL)
		} else {
			require.Zero(t, header&FlagIL)
		}

		wantLen := 2 + lenFieldSize + idFieldSize + len(rec.Type) + len(rec.ID) + len(rec.Payload)
		require.Len(t, got, wantLen)
	})
}

func TestEncodeMessage_FlagProperties(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		count := rapid.IntRange(1, 5).Draw(t, "count")
		records := make([]*Record, count)
		for i := range records {
			records[i] = &Record{
				TNF:     TNFWellKnown,
				Type:    "T",
				Payload: rapid.SliceOfN(rapid.Byte(), 0, 32).Draw(t, "payload"),
			}
		}

		got, err := EncodeMessage(records)
		require.NoError(t, err)

		// Walk the records and collect each header byte.
		var headers []byte
		offset := 0
		for range records {
			header := got[offset]
			headers = append(headers, header)
			payloadLen := int(got[offset+2])
			offset += 3 + 1 + payloadLen // header, type len, payload len, type "T", payload
		}

		for i, header := range headers {
			if i == 0 {
				require.Equal(t, FlagMB, header&FlagMB, "first record begin flag")
			} else {
				require.Zero(t, header&FlagMB, "record %d must not carry begin flag", i)
			}
			if i == len(headers)-1 {
				require.Equal(t, FlagME, header&FlagME, "last record end flag")
			} else {
				require.Zero(t, header&FlagME, "record %d must not carry end flag", i)
			}
		}
	})
}
