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
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeRecord_WireLayout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		flags byte
		rec   *Record
		want  []byte
	}{
		{
			name:  "short record without id",
			flags: FlagMB | FlagME,
			rec: &Record{
				TNF:     TNFWellKnown,
				Type:    "U",
				Payload: []byte{0x03, 'a'},
			},
			want: []byte{0xD1, 0x01, 0x02, 'U', 0x03, 'a'},
		},
		{
			name:  "record with id sets IL and id length",
			flags: FlagME,
			rec: &Record{
				TNF:     TNFExternal,
				Type:    "t",
				ID:      []byte{0x00},
				Payload: []byte{0xAA},
			},
			want: []byte{0x5C, 0x01, 0x01, 0x01, 't', 0x00, 0xAA},
		},
		{
			name:  "empty payload still short",
			flags: 0,
			rec: &Record{
				TNF:  TNFMedia,
				Type: "x/y",
			},
			want: []byte{0x12, 0x03, 0x00, 'x', '/', 'y'},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := EncodeRecord(tt.flags, tt.rec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeRecord_PayloadLengthEncoding(t *testing.T) {
	t.Parallel()

	t.Run("255 byte payload uses short form", func(t *testing.T) {
		t.Parallel()

		rec := &Record{TNF: TNFUnknown, Payload: bytes.Repeat([]byte{0x55}, 255)}
		got, err := EncodeRecord(0, rec)
		require.NoError(t, err)

		assert.Equal(t, FlagSR, got[0]&FlagSR, "short record flag must be set")
		assert.Equal(t, byte(0xFF), got[2], "1-byte payload length")
		assert.Len(t, got, 3+255)
	})

	t.Run("256 byte payload uses long form", func(t *testing.T) {
		t.Parallel()

		rec := &Record{TNF: TNFUnknown, Payload: bytes.Repeat([]byte{0x55}, 256)}
		got, err := EncodeRecord(0, rec)
		require.NoError(t, err)

		assert.Zero(t, got[0]&FlagSR, "short record flag must be cleared")
		assert.Equal(t, []byte{0x00, 0x00, 0x01, 0x00}, got[2:6], "4-byte big-endian length")
		assert.Len(t, got, 6+256)
	})
}

func TestEncodeRecord_IDLengthLimit(t *testing.T) {
	t.Parallel()

	t.Run("255 byte id succeeds", func(t *testing.T) {
		t.Parallel()

		rec := &Record{TNF: TNFExternal, ID: bytes.Repeat([]byte{0x01}, 255)}
		_, err := EncodeRecord(0, rec)
		require.NoError(t, err)
	})

	t.Run("256 byte id fails", func(t *testing.T) {
		t.Parallel()

		rec := &Record{TNF: TNFExternal, ID: bytes.Repeat([]byte{0x01}, 256)}
		_, err := EncodeRecord(0, rec)
		require.ErrorIs(t, err, ErrEncoding)
	})
}

func TestNewURIRecord_PrefixCompression(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		uri      string
		wantCode byte
		wantRest string
	}{
		{"http", "http://example.com", 0x03, "example.com"},
		{"http www", "http://www.example.com", 0x01, "example.com"},
		{"https", "https://example.com", 0x04, "example.com"},
		{"no known prefix", "nbt://local", 0x00, "nbt://local"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := NewURIRecord(tt.uri)
			assert.Equal(t, TNFWellKnown, rec.TNF)
			assert.Equal(t, "U", rec.Type)
			require.NotEmpty(t, rec.Payload)
			assert.Equal(t, tt.wantCode, rec.Payload[0])
			assert.Equal(t, tt.wantRest, string(rec.Payload[1:]))
		})
	}
}
