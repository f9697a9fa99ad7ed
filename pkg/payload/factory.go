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

// Package payload builds the NDEF message payloads written to the tag
// during personalization: a brand-protection message carrying a product
// URI and its x509 certificate, and a static Bluetooth connection
// handover message.
package payload

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Infineon/optiga-nbt-perso-go/pkg/ndef"
)

const (
	// x509RecordType is the external record type carrying the brand
	// protection certificate.
	x509RecordType = "infineon technologies:infineon.com:nfc-bridge-tag.x509"

	// bluetoothOOBType is the media type of the connection handover
	// record.
	bluetoothOOBType = "application/vnd.bluetooth.ep.oob"

	// completeLocalName is the EIR data type for a complete local name.
	completeLocalName = 0x09

	macLength     = 6
	defaultScheme = "http://"
	deviceName    = "NBT"
)

// btOOBPrefix is the fixed OOB data length header: the total length of
// the OOB block (length field + MAC + local name), little-endian.
var btOOBPrefix = []byte{0x0D, 0x00}

// ErrInvalidInput is returned when use-case parameters fail validation
// before any tag communication takes place.
var ErrInvalidInput = errors.New("payload: invalid input")

// Factory builds use-case NDEF messages through a configurable encoder
// backend.
type Factory struct {
	enc ndef.Encoder
}

// NewFactory returns a factory using the given encoder. A nil encoder
// falls back to the vendor backend.
func NewFactory(enc ndef.Encoder) *Factory {
	if enc == nil {
		enc = ndef.VendorEncoder{}
	}
	return &Factory{enc: enc}
}

// BrandProtectionMessage builds a two-record message: a URI record for
// the product page and an external record carrying the raw certificate
// bytes. A URL without a scheme gets "http://" prepended.
func (f *Factory) BrandProtectionMessage(url string, cert []byte) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: url must not be empty", ErrInvalidInput)
	}
	if !strings.Contains(url, "://") {
		url = defaultScheme + url
	}

	records := []*ndef.Record{
		ndef.NewURIRecord(url),
		{
			TNF:     ndef.TNFExternal,
			Type:    x509RecordType,
			ID:      []byte{0x00},
			Payload: cert,
		},
	}

	msg, err := f.enc.Encode(records)
	if err != nil {
		return nil, fmt.Errorf("failed to encode brand protection message: %w", err)
	}
	return msg, nil
}

// ConnectionHandoverMessage builds a single Bluetooth OOB record for
// the given 6-byte device MAC. This is not a general OOB encoder: the
// payload is the fixed length header, the raw MAC and a length-prefixed
// complete local name.
func (f *Factory) ConnectionHandoverMessage(mac []byte) ([]byte, error) {
	if len(mac) != macLength {
		return nil, fmt.Errorf("%w: mac must be %d bytes, got %d",
			ErrInvalidInput, macLength, len(mac))
	}

	oob := make([]byte, 0, len(btOOBPrefix)+macLength+2+len(deviceName))
	oob = append(oob, btOOBPrefix...)
	oob = append(oob, mac...)
	oob = append(oob, byte(len(deviceName)+1), completeLocalName)
	oob = append(oob, deviceName...)

	records := []*ndef.Record{{
		TNF:     ndef.TNFMedia,
		Type:    bluetoothOOBType,
		Payload: oob,
	}}

	msg, err := f.enc.Encode(records)
	if err != nil {
		return nil, fmt.Errorf("failed to encode connection handover message: %w", err)
	}
	return msg, nil
}
