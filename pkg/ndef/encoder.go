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
	"fmt"

	gondef "github.com/hsanjuan/go-ndef"
	"github.com/hsanjuan/go-ndef/types/generic"
)

// Encoder serializes an ordered sequence of records into NDEF message
// bytes. Both implementations produce identical wire output; which one
// is used is a configuration choice, not a behavioral one.
type Encoder interface {
	Encode(records []*Record) ([]byte, error)
}

// VendorEncoder is the hand-rolled record serializer.
type VendorEncoder struct{}

func (VendorEncoder) Encode(records []*Record) ([]byte, error) {
	return EncodeMessage(records)
}

// ForumEncoder serializes records through the go-ndef library.
type ForumEncoder struct{}

func (ForumEncoder) Encode(records []*Record) ([]byte, error) {
	if len(records) == 0 {
		return EncodeMessage(nil)
	}

	converted := make([]*gondef.Record, 0, len(records))
	for i, rec := range records {
		if len(rec.ID) > maxIDLength {
			return nil, fmt.Errorf("record %d: %w: id length %d exceeds %d bytes",
				i, ErrEncoding, len(rec.ID), maxIDLength)
		}
		converted = append(converted,
			gondef.NewRecord(rec.TNF, rec.Type, string(rec.ID), generic.New(rec.Payload)))
	}

	msg := gondef.NewMessageFromRecords(converted...)
	out, err := msg.Marshal()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncoding, err)
	}
	return out, nil
}

// Encoder backend names used in configuration.
const (
	BackendVendor = "vendor"
	BackendForum  = "forum"
)

// NewEncoder returns the encoder backend for the given name. An empty
// name selects the vendor backend.
func NewEncoder(backend string) (Encoder, error) {
	switch backend {
	case "", BackendVendor:
		return VendorEncoder{}, nil
	case BackendForum:
		return ForumEncoder{}, nil
	default:
		return nil, fmt.Errorf("unknown ndef encoder backend: %q", backend)
	}
}
