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

import (
	"context"
	"errors"
)

// Status is the 2-byte status word returned by the tag for every
// command.
type Status uint16

// StatusSuccess is the only status treated as success; anything else
// aborts the running procedure.
const StatusSuccess Status = 0x9000

// IsSuccess reports whether the status word indicates success.
func (s Status) IsSuccess() bool {
	return s == StatusSuccess
}

// Personalization data slots addressed by WritePersoSlot.
const (
	// PersoSlotECKey holds the brand protection EC private key.
	PersoSlotECKey uint16 = 0xE0E1
	// PersoSlotInterfaceConfig holds the interface enable flags and
	// GPIO function.
	PersoSlotInterfaceConfig uint16 = 0xE0E2
)

// Errors surfaced by the personalization core.
var (
	// ErrTransport is returned when a tag command fails or returns a
	// non-success status. Fatal to the current session.
	ErrTransport = errors.New("nbt: transport command failed")
	// ErrSessionState is returned when an operation is attempted in
	// the wrong session state.
	ErrSessionState = errors.New("nbt: invalid session state")
)

// Transport is the command/response channel to the tag. One session at
// a time, all commands strictly sequential; timeouts and physical
// framing belong to the implementation, not to this core.
type Transport interface {
	Connect(ctx context.Context) error
	Disconnect() error
	SelectApplication(ctx context.Context) (Status, error)
	ReadFile(ctx context.Context, fileID uint16) ([]byte, error)
	UpdateFile(ctx context.Context, fileID uint16, offset int, data []byte) (Status, error)
	UpdatePolicy(ctx context.Context, policy FileAccessPolicy) (Status, error)
	WritePersoSlot(ctx context.Context, slot uint16, data []byte) (Status, error)
}

// CertificateProvider supplies the brand protection key material. A
// missing resource surfaces before any connection-dependent step runs.
type CertificateProvider interface {
	Certificate() ([]byte, error)
	PrivateKey() ([]byte, error)
}
