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

package pcsc

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/Infineon/optiga-nbt-perso-go/pkg/nbt"
	"github.com/ebfe/scard"
	"github.com/rs/zerolog/log"
)

// fapEntryOffsets maps a file ID to its entry offset inside the FAP
// file, matching the fixed file order of the default image.
var fapEntryOffsets = map[uint16]int{
	nbt.FileCC:           0,
	nbt.FileNDEF:         6,
	nbt.FileFAP:          12,
	nbt.FileProprietary1: 18,
	nbt.FileProprietary2: 24,
	nbt.FileProprietary3: 30,
	nbt.FileProprietary4: 36,
}

// Transport drives the NBT applet over a PC/SC card connection. All
// commands are strictly sequential; the mutex guards against misuse,
// not for parallel issuance.
type Transport struct {
	ctx            ScardContext
	card           ScardCard
	contextFactory ScardContextFactory
	readerName     string
	mu             sync.Mutex
}

// New returns a transport bound to the named reader. An empty name
// selects the first available reader on connect.
func New(readerName string) *Transport {
	return &Transport{
		readerName:     readerName,
		contextFactory: DefaultScardContextFactory,
	}
}

// Connect establishes the PC/SC context and connects to the card in
// the field of the configured reader.
func (t *Transport) Connect(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("connect cancelled: %w", err)
	}

	scardCtx, err := t.contextFactory()
	if err != nil {
		return err
	}

	readerList, err := scardCtx.ListReaders()
	if err != nil {
		_ = scardCtx.Release()
		return err
	}
	if len(readerList) == 0 {
		_ = scardCtx.Release()
		return ErrNoReader
	}

	name := t.readerName
	if name == "" {
		name = readerList[0]
	} else if !contains(readerList, name) {
		_ = scardCtx.Release()
		return fmt.Errorf("%w: %q not found", ErrNoReader, name)
	}

	card, err := scardCtx.Connect(name, scard.ShareExclusive, scard.ProtocolAny)
	if err != nil {
		_ = scardCtx.Release()
		return err
	}

	t.ctx = scardCtx
	t.card = card
	log.Info().Msgf("connected to reader: %s", name)
	return nil
}

// Disconnect resets the card and releases the PC/SC context.
func (t *Transport) Disconnect() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var firstErr error
	if t.card != nil {
		if err := t.card.Disconnect(scard.ResetCard); err != nil {
			firstErr = fmt.Errorf("failed to disconnect card: %w", err)
		}
		t.card = nil
	}
	if t.ctx != nil {
		if err := t.ctx.Release(); err != nil && firstErr == nil {
			firstErr = err
		}
		t.ctx = nil
	}
	return firstErr
}

// SelectApplication selects the Type 4 Tag applet by AID.
func (t *Transport) SelectApplication(ctx context.Context) (nbt.Status, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	apdu := make([]byte, 0, 6+len(aidNBT))
	apdu = append(apdu, claISO, insSelect, selectByAID, 0x00, byte(len(aidNBT)))
	apdu = append(apdu, aidNBT...)
	apdu = append(apdu, 0x00)

	_, status, err := t.transmit(ctx, apdu)
	return status, err
}

// ReadFile selects the file and reads its whole body in chunks.
func (t *Transport) ReadFile(ctx context.Context, fileID uint16) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if status, err := t.selectFile(ctx, fileID); err != nil {
		return nil, err
	} else if !status.IsSuccess() {
		return nil, fmt.Errorf("%w: select file %04X returned %04X",
			nbt.ErrTransport, fileID, uint16(status))
	}

	var out []byte
	offset := 0
	for {
		apdu := []byte{claISO, insReadBinary, byte(offset >> 8), byte(offset), chunkSize}
		data, status, err := t.transmit(ctx, apdu)
		if err != nil {
			return nil, err
		}

		switch uint16(status) {
		case swSuccess:
			out = append(out, data...)
			if len(data) < chunkSize {
				return out, nil
			}
			offset += len(data)
		case swWrongOffset, swEndOfFile:
			return out, nil
		default:
			return nil, fmt.Errorf("%w: read binary at %d returned %04X",
				nbt.ErrTransport, offset, uint16(status))
		}
	}
}

// UpdateFile selects the file and writes data at the given offset,
// chunked to stay under the tag's command size limit.
func (t *Transport) UpdateFile(ctx context.Context, fileID uint16, offset int, data []byte) (nbt.Status, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if status, err := t.selectFile(ctx, fileID); err != nil {
		return status, err
	} else if !status.IsSuccess() {
		return status, nil
	}

	for len(data) > 0 {
		n := min(len(data), chunkSize)
		apdu := make([]byte, 0, 5+n)
		apdu = append(apdu, claISO, insUpdateBinary, byte(offset>>8), byte(offset), byte(n))
		apdu = append(apdu, data[:n]...)

		_, status, err := t.transmit(ctx, apdu)
		if err != nil {
			return status, err
		}
		if !status.IsSuccess() {
			return status, nil
		}

		data = data[n:]
		offset += n
	}
	return nbt.StatusSuccess, nil
}

// UpdatePolicy rewrites one file's entry inside the FAP file.
func (t *Transport) UpdatePolicy(ctx context.Context, policy nbt.FileAccessPolicy) (nbt.Status, error) {
	entryOffset, ok := fapEntryOffsets[policy.FileID]
	if !ok {
		return 0, fmt.Errorf("%w: no FAP entry for file %04X", nbt.ErrTransport, policy.FileID)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if status, err := t.selectFile(ctx, nbt.FileFAP); err != nil {
		return status, err
	} else if !status.IsSuccess() {
		return status, nil
	}

	entry := policy.Bytes()
	apdu := make([]byte, 0, 5+len(entry))
	apdu = append(apdu, claISO, insUpdateBinary, byte(entryOffset>>8), byte(entryOffset), byte(len(entry)))
	apdu = append(apdu, entry...)

	_, status, err := t.transmit(ctx, apdu)
	return status, err
}

// WritePersoSlot writes a personalization data block to the vendor
// slot addressed by P1/P2.
func (t *Transport) WritePersoSlot(ctx context.Context, slot uint16, data []byte) (nbt.Status, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	apdu := make([]byte, 0, 5+len(data))
	apdu = append(apdu, claISO, insPersonalizeData, byte(slot>>8), byte(slot), byte(len(data)))
	apdu = append(apdu, data...)

	_, status, err := t.transmit(ctx, apdu)
	return status, err
}

// selectFile selects a file by its 2-byte ID without FCI data.
func (t *Transport) selectFile(ctx context.Context, fileID uint16) (nbt.Status, error) {
	apdu := []byte{claISO, insSelect, selectByFileID, selectNoFCI, 0x02, byte(fileID >> 8), byte(fileID)}
	_, status, err := t.transmit(ctx, apdu)
	return status, err
}

// transmit sends one APDU and splits the response into data and status
// word. PC/SC itself is synchronous; the context is checked before the
// exchange so a cancelled session stops at the next command boundary.
func (t *Transport) transmit(ctx context.Context, apdu []byte) ([]byte, nbt.Status, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, fmt.Errorf("session cancelled: %w", err)
	}
	if t.card == nil {
		return nil, 0, fmt.Errorf("%w: not connected", nbt.ErrTransport)
	}

	resp, err := t.card.Transmit(apdu)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", nbt.ErrTransport, err)
	}
	if len(resp) < 2 {
		return nil, 0, fmt.Errorf("%w: response too short (%d bytes)", nbt.ErrTransport, len(resp))
	}

	sw := binary.BigEndian.Uint16(resp[len(resp)-2:])
	return resp[:len(resp)-2], nbt.Status(sw), nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
