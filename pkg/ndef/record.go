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
	"encoding/binary"
	"errors"
	"fmt"
)

// TNF (Type Name Format) values as defined by the NFC Forum.
const (
	TNFEmpty       byte = 0x00
	TNFWellKnown   byte = 0x01
	TNFMedia       byte = 0x02
	TNFAbsoluteURI byte = 0x03
	TNFExternal    byte = 0x04
	TNFUnknown     byte = 0x05
	TNFUnchanged   byte = 0x06
	TNFReserved    byte = 0x07
)

// Record header flags.
const (
	FlagMB byte = 0x80 // message begin
	FlagME byte = 0x40 // message end
	FlagCF byte = 0x20 // chunk flag, unsupported
	FlagSR byte = 0x10 // short record
	FlagIL byte = 0x08 // id length present

	tnfMask byte = 0x07

	shortRecordMax = 255
	maxIDLength    = 255
	maxTypeLength  = 255
)

// ErrEncoding is returned when a record cannot be serialized to its
// wire form.
var ErrEncoding = errors.New("ndef: record encoding failed")

// Record is a single NDEF record before serialization. Type holds the
// ASCII type identifier, ID the optional record identifier and Payload
// the raw record payload.
type Record struct {
	Type    string
	ID      []byte
	Payload []byte
	TNF     byte
}

// EncodeRecord serializes a record into the NDEF wire format with the
// given begin/end flags ORed into the header byte. Payloads longer than
// 255 bytes use the 4-byte big-endian length form and clear the short
// record flag. Chunking is not supported, so any payload size is still
// emitted as a single record.
func EncodeRecord(flags byte, rec *Record) ([]byte, error) {
	if len(rec.ID) > maxIDLength {
		return nil, fmt.Errorf("%w: id length %d exceeds %d bytes",
			ErrEncoding, len(rec.ID), maxIDLength)
	}
	if len(rec.Type) > maxTypeLength {
		return nil, fmt.Errorf("%w: type length %d exceeds %d bytes",
			ErrEncoding, len(rec.Type), maxTypeLength)
	}

	header := flags | (rec.TNF & tnfMask)
	short := len(rec.Payload) <= shortRecordMax
	if short {
		header |= FlagSR
	}
	if len(rec.ID) > 0 {
		header |= FlagIL
	}

	buf := make([]byte, 0, 7+len(rec.Type)+len(rec.ID)+len(rec.Payload))
	buf = append(buf, header, byte(len(rec.Type)))

	if short {
		buf = append(buf, byte(len(rec.Payload)))
	} else {
		var plen [4]byte
		binary.BigEndian.PutUint32(plen[:], uint32(len(rec.Payload)))
		buf = append(buf, plen[:]...)
	}

	if len(rec.ID) > 0 {
		buf = append(buf, byte(len(rec.ID)))
	}

	buf = append(buf, rec.Type...)
	buf = append(buf, rec.ID...)
	buf = append(buf, rec.Payload...)

	return buf, nil
}
