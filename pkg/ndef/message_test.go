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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeMessage_Empty(t *testing.T) {
	t.Parallel()

	got, err := EncodeMessage(nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xD0, 0x00, 0x00}, got)
}

func TestEncodeMessage_SingleRecordHasBothFlags(t *testing.T) {
	t.Parallel()

	got, err := EncodeMessage([]*Record{
		{TNF: TNFWellKnown, Type: "T", Payload: []byte{0x02, 'e', 'n'}},
	})
	require.NoError(t, err)

	header := got[0]
	assert.Equal(t, FlagMB, header&FlagMB, "begin flag")
	assert.Equal(t, FlagME, header&FlagME, "end flag")
}

func TestEncodeMessage_FlagPlacement(t *testing.T) {
	t.Parallel()

	records := []*Record{
		{TNF: TNFWellKnown, Type: "T", Payload: []byte{0x01}},
		{TNF: TNFWellKnown, Type: "T", Payload: []byte{0x02}},
		{TNF: TNFWellKnown, Type: "T", Payload: []byte{0x03}},
	}

	got, err := EncodeMessage(records)
	require.NoError(t, err)

	// Each record is 5 bytes: header, type len, payload len, type,
	// payload.
	require.Len(t, got, 15)
	first, middle, last := got[0], got[5], got[10]

	assert.Equal(t, FlagMB, first&FlagMB, "first record begin flag")
	assert.Zero(t, first&FlagME, "first record has no end flag")
	assert.Zero(t, middle&(FlagMB|FlagME), "middle record carries neither flag")
	assert.Zero(t, last&FlagMB, "last record has no begin flag")
	assert.Equal(t, FlagME, last&FlagME, "last record end flag")
}

func TestEncodeMessage_RecordErrorPropagates(t *testing.T) {
	t.Parallel()

	records := []*Record{
		{TNF: TNFWellKnown, Type: "T", Payload: []byte{0x01}},
		{TNF: TNFExternal, ID: make([]byte, 300)},
	}

	_, err := EncodeMessage(records)
	require.ErrorIs(t, err, ErrEncoding)
}

func TestEncoderBackends_SimpleRecordEquivalence(t *testing.T) {
	t.Parallel()

	records := []*Record{
		{TNF: TNFWellKnown, Type: "U", Payload: []byte{0x03, 'e', 'x'}},
	}

	vendor, err := VendorEncoder{}.Encode(records)
	require.NoError(t, err)

	forum, err := ForumEncoder{}.Encode(records)
	require.NoError(t, err)

	assert.Equal(t, vendor, forum, "backends must produce identical wire output")
}

func TestEncoderBackends_BinaryPayloadEquivalence(t *testing.T) {
	t.Parallel()

	// Binary payloads with IDs go through the library's generic payload
	// type on the forum backend; the bytes must come back untouched.
	records := []*Record{
		{TNF: TNFWellKnown, Type: "U", Payload: []byte{0x04, 'e', 'x', '.', 'c', 'o'}},
		{
			TNF:     TNFExternal,
			Type:    "example.com:cert",
			ID:      []byte{0x00},
			Payload: []byte{0x30, 0x82, 0x01, 0x0A, 0x00, 0xFF, 0x7F},
		},
	}

	vendor, err := VendorEncoder{}.Encode(records)
	require.NoError(t, err)

	forum, err := ForumEncoder{}.Encode(records)
	require.NoError(t, err)

	assert.Equal(t, vendor, forum, "backends must produce identical wire output")
}

func TestNewEncoder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		backend string
		want    Encoder
		wantErr bool
	}{
		{"default", "", VendorEncoder{}, false},
		{"vendor", BackendVendor, VendorEncoder{}, false},
		{"forum", BackendForum, ForumEncoder{}, false},
		{"unknown", "bogus", nil, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := NewEncoder(tt.backend)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
