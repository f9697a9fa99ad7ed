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
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/Infineon/optiga-nbt-perso-go/pkg/payload"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// SessionState tracks where the manager is in the tag session
// lifecycle. Transitions are driven by the caller; there is one run per
// physical tap.
type SessionState int

const (
	SessionDisconnected SessionState = iota
	SessionConnected
	SessionApplicationSelected
	SessionConfiguring
	SessionConfigured
)

func (s SessionState) String() string {
	switch s {
	case SessionDisconnected:
		return "disconnected"
	case SessionConnected:
		return "connected"
	case SessionApplicationSelected:
		return "application-selected"
	case SessionConfiguring:
		return "configuring"
	case SessionConfigured:
		return "configured"
	default:
		return fmt.Sprintf("session-state(%d)", int(s))
	}
}

// ndefFileSize is the declared size of the NDEF file, used when wiping
// it during a reset.
const ndefFileSize = 0x0400

// Params carries the use-case inputs supplied by the caller.
type Params struct {
	URL string
	MAC []byte
}

// Manager sequences one personalization run against a connected tag:
// detect state, write payloads, rebuild the capability container and
// apply the file access policies. Every command status is checked
// immediately and any failure aborts the remaining steps without
// rollback; a mid-sequence failure leaves the tag partially configured.
type Manager struct {
	transport Transport
	certs     CertificateProvider
	factory   *payload.Factory
	runID     string
	state     SessionState
	mu        sync.Mutex
}

// NewManager returns a manager for one tag session.
func NewManager(t Transport, certs CertificateProvider, factory *payload.Factory) *Manager {
	if factory == nil {
		factory = payload.NewFactory(nil)
	}
	return &Manager{
		transport: t,
		certs:     certs,
		factory:   factory,
		runID:     uuid.NewString(),
		state:     SessionDisconnected,
	}
}

// State returns the current session state.
func (m *Manager) State() SessionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Connect opens the transport session and selects the NBT application.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != SessionDisconnected {
		return fmt.Errorf("%w: connect from %s", ErrSessionState, m.state)
	}

	if err := m.transport.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to tag: %w", err)
	}
	m.state = SessionConnected

	status, err := m.transport.SelectApplication(ctx)
	if err != nil {
		return fmt.Errorf("failed to select application: %w", err)
	}
	if !status.IsSuccess() {
		return fmt.Errorf("%w: select application returned %04X", ErrTransport, uint16(status))
	}
	m.state = SessionApplicationSelected

	log.Debug().Str("run", m.runID).Msg("tag session established")
	return nil
}

// Disconnect closes the transport session. Safe to call in any state.
func (m *Manager) Disconnect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == SessionDisconnected {
		return nil
	}
	m.state = SessionDisconnected

	if err := m.transport.Disconnect(); err != nil {
		return fmt.Errorf("failed to disconnect from tag: %w", err)
	}
	return nil
}

// DetectDeviceState reads the live FAP image and classifies the tag.
// An unreadable FAP file maps to the unknown state rather than an
// error.
func (m *Manager) DetectDeviceState(ctx context.Context) (DeviceState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == SessionDisconnected || m.state == SessionConnected {
		return DeviceStateUnknown, fmt.Errorf("%w: detect from %s", ErrSessionState, m.state)
	}

	image, err := m.transport.ReadFile(ctx, FileFAP)
	if err != nil {
		log.Warn().Str("run", m.runID).Err(err).Msg("FAP file unreadable, reporting unknown state")
		return DeviceStateUnknown, nil
	}

	state := ClassifyFAPImage(image)
	log.Info().Str("run", m.runID).Stringer("state", state).Msg("device state detected")
	return state, nil
}

// RunUseCase executes the full configuration procedure for one use
// case: payload writes, interface configuration, CC rebuild and the
// seven policy updates in fixed order.
func (m *Manager) RunUseCase(ctx context.Context, uc UseCase, params Params) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != SessionApplicationSelected && m.state != SessionConfigured {
		return fmt.Errorf("%w: run %s from %s", ErrSessionState, uc, m.state)
	}
	m.state = SessionConfiguring

	log.Info().Str("run", m.runID).Stringer("use_case", uc).Msg("starting personalization")

	cfg := uc.stateConfig()
	if err := m.writeUseCasePayload(ctx, uc, params); err != nil {
		return err
	}
	if err := m.applyConfig(ctx, cfg); err != nil {
		return err
	}

	m.state = SessionConfigured
	log.Info().Str("run", m.runID).Stringer("use_case", uc).Msg("personalization complete")
	return nil
}

// ResetToDefault wipes the NDEF file and restores the factory-default
// configuration.
func (m *Manager) ResetToDefault(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != SessionApplicationSelected && m.state != SessionConfigured {
		return fmt.Errorf("%w: reset from %s", ErrSessionState, m.state)
	}
	m.state = SessionConfiguring

	log.Info().Str("run", m.runID).Msg("resetting tag to default state")

	// Zero the whole NDEF file, then the length marker so readers see
	// an empty message even if they ignore the wipe.
	if err := m.checkedUpdate(ctx, FileNDEF, 0, make([]byte, ndefFileSize), "ndef wipe"); err != nil {
		return err
	}
	if err := m.checkedUpdate(ctx, FileNDEF, 0, []byte{0x00, 0x00}, "ndef length marker"); err != nil {
		return err
	}

	if err := m.applyConfig(ctx, NewStateConfigBuilder().Build()); err != nil {
		return err
	}

	m.state = SessionConfigured
	log.Info().Str("run", m.runID).Msg("tag reset complete")
	return nil
}

// writeUseCasePayload performs the payload-bearing writes for the use
// case. Input and resource validation happens before any tag command.
func (m *Manager) writeUseCasePayload(ctx context.Context, uc UseCase, params Params) error {
	switch uc {
	case UseCaseBrandProtection:
		key, err := m.certs.PrivateKey()
		if err != nil {
			return fmt.Errorf("failed to load private key: %w", err)
		}
		cert, err := m.certs.Certificate()
		if err != nil {
			return fmt.Errorf("failed to load certificate: %w", err)
		}
		msg, err := m.factory.BrandProtectionMessage(params.URL, cert)
		if err != nil {
			return err
		}

		status, err := m.transport.WritePersoSlot(ctx, PersoSlotECKey, key)
		if err != nil {
			return fmt.Errorf("failed to write EC key: %w", err)
		}
		if !status.IsSuccess() {
			return fmt.Errorf("%w: ec key write returned %04X", ErrTransport, uint16(status))
		}

		return m.writeNDEFMessage(ctx, msg)
	case UseCaseConnectionHandover:
		msg, err := m.factory.ConnectionHandoverMessage(params.MAC)
		if err != nil {
			return err
		}
		return m.writeNDEFMessage(ctx, msg)
	case UseCaseAsyncDataTransfer, UseCasePassThrough:
		// No payload writes; configuration only.
		return nil
	default:
		return fmt.Errorf("unsupported use case: %s", uc)
	}
}

// writeNDEFMessage writes a message to the NDEF file with its 2-byte
// length prefix.
func (m *Manager) writeNDEFMessage(ctx context.Context, msg []byte) error {
	buf := make([]byte, 2+len(msg))
	binary.BigEndian.PutUint16(buf[:2], uint16(len(msg)))
	copy(buf[2:], msg)
	return m.checkedUpdate(ctx, FileNDEF, 0, buf, "ndef message")
}

// applyConfig performs the configuration tail common to every use case
// and to reset: interface flags, CC rebuild and the ordered policy
// updates.
func (m *Manager) applyConfig(ctx context.Context, cfg StateConfig) error {
	status, err := m.transport.WritePersoSlot(ctx, PersoSlotInterfaceConfig, cfg.InterfaceBytes())
	if err != nil {
		return fmt.Errorf("failed to write interface config: %w", err)
	}
	if !status.IsSuccess() {
		return fmt.Errorf("%w: interface config write returned %04X", ErrTransport, uint16(status))
	}

	if err := m.rebuildCC(ctx, cfg); err != nil {
		return err
	}
	return m.applyPolicies(ctx, cfg)
}

// rebuildCC rewrites the proprietary file control TLVs in the CC file.
// The CC file may already be locked, so a temporary permissive policy
// is applied for the write and the permanent one restored afterwards.
func (m *Manager) rebuildCC(ctx context.Context, cfg StateConfig) error {
	status, err := m.transport.UpdatePolicy(ctx, AllowAll(FileCC))
	if err != nil {
		return fmt.Errorf("failed to unlock CC file: %w", err)
	}
	if !status.IsSuccess() {
		return fmt.Errorf("%w: cc unlock returned %04X", ErrTransport, uint16(status))
	}

	block := BuildProprietaryTLVs([]FileAccessPolicy{
		cfg.Proprietary1,
		cfg.Proprietary2,
		cfg.Proprietary3,
		cfg.Proprietary4,
	})
	if err := m.checkedUpdate(ctx, FileCC, ccProprietaryTLVOffset, block, "cc rebuild"); err != nil {
		return err
	}

	status, err = m.transport.UpdatePolicy(ctx, cfg.CC)
	if err != nil {
		return fmt.Errorf("failed to restore CC policy: %w", err)
	}
	if !status.IsSuccess() {
		return fmt.Errorf("%w: cc policy restore returned %04X", ErrTransport, uint16(status))
	}
	return nil
}

// applyPolicies writes the seven policy updates in fixed order. The
// first non-success status aborts the remaining updates.
func (m *Manager) applyPolicies(ctx context.Context, cfg StateConfig) error {
	for _, policy := range cfg.Policies() {
		status, err := m.transport.UpdatePolicy(ctx, policy)
		if err != nil {
			return fmt.Errorf("failed to update policy for file %04X: %w", policy.FileID, err)
		}
		if !status.IsSuccess() {
			return fmt.Errorf("%w: policy update for file %04X returned %04X",
				ErrTransport, policy.FileID, uint16(status))
		}
		log.Debug().
			Str("run", m.runID).
			Str("file", fmt.Sprintf("%04X", policy.FileID)).
			Msg("file access policy updated")
	}
	return nil
}

// checkedUpdate issues a file write and validates its status.
func (m *Manager) checkedUpdate(ctx context.Context, fileID uint16, offset int, data []byte, step string) error {
	status, err := m.transport.UpdateFile(ctx, fileID, offset, data)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", step, err)
	}
	if !status.IsSuccess() {
		return fmt.Errorf("%w: %s returned %04X", ErrTransport, step, uint16(status))
	}
	return nil
}
