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

// Package pcsc implements the tag transport over a PC/SC smart card
// reader using ISO 7816-4 APDUs.
package pcsc

import (
	"errors"
	"fmt"

	"github.com/ebfe/scard"
	"github.com/rs/zerolog/log"
)

// APDU instruction bytes.
const (
	claISO = 0x00

	insSelect          = 0xA4
	insReadBinary      = 0xB0
	insUpdateBinary    = 0xD6
	insPersonalizeData = 0xE2

	selectByAID    = 0x04
	selectByFileID = 0x00
	selectNoFCI    = 0x0C

	// chunkSize keeps every read and write under the tag's MLe/MLc.
	chunkSize = 0xF0
)

// Status words the read loop treats as end-of-file rather than errors.
const (
	swSuccess     = 0x9000
	swWrongOffset = 0x6B00
	swEndOfFile   = 0x6282
)

// aidNBT is the Type 4 Tag application identifier.
var aidNBT = []byte{0xD2, 0x76, 0x00, 0x00, 0x85, 0x01, 0x01}

// ErrNoReader is returned when no PC/SC reader is available.
var ErrNoReader = errors.New("pcsc: no reader available")

// ScardCard abstracts scard.Card for testing.
type ScardCard interface {
	Transmit([]byte) ([]byte, error)
	Disconnect(scard.Disposition) error
}

// ScardContext abstracts scard.Context for testing.
type ScardContext interface {
	ListReaders() ([]string, error)
	Connect(string, scard.ShareMode, scard.Protocol) (ScardCard, error)
	Release() error
}

// realScardContext wraps scard.Context to implement ScardContext.
type realScardContext struct {
	ctx *scard.Context
}

func (r *realScardContext) ListReaders() ([]string, error) {
	readerList, err := r.ctx.ListReaders()
	if err != nil {
		return nil, fmt.Errorf("failed to list readers: %w", err)
	}
	return readerList, nil
}

func (r *realScardContext) Connect(
	reader string,
	mode scard.ShareMode,
	proto scard.Protocol,
) (ScardCard, error) {
	card, err := r.ctx.Connect(reader, mode, proto)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to reader: %w", err)
	}
	return card, nil
}

func (r *realScardContext) Release() error {
	if err := r.ctx.Release(); err != nil {
		return fmt.Errorf("failed to release context: %w", err)
	}
	return nil
}

// ScardContextFactory creates a ScardContext.
type ScardContextFactory func() (ScardContext, error)

// DefaultScardContextFactory creates a real scard context.
func DefaultScardContextFactory() (ScardContext, error) {
	ctx, err := scard.EstablishContext()
	if err != nil {
		return nil, fmt.Errorf("failed to establish scard context: %w", err)
	}
	return &realScardContext{ctx: ctx}, nil
}

// ListReaders returns the names of all connected PC/SC readers.
func ListReaders() ([]string, error) {
	ctx, err := DefaultScardContextFactory()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := ctx.Release(); err != nil {
			log.Debug().Err(err).Msg("failed to release scard context")
		}
	}()
	return ctx.ListReaders()
}
