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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateConfigBuilder_Defaults(t *testing.T) {
	t.Parallel()

	cfg := NewStateConfigBuilder().Build()

	for _, p := range cfg.Policies() {
		assert.Equal(t, AllowAll(p.FileID), p)
	}
	assert.True(t, cfg.NFCEnabled)
	assert.True(t, cfg.I2CEnabled)
	assert.Equal(t, GPIODisabled, cfg.GPIO)
}

func TestStateConfigBuilder_Overrides(t *testing.T) {
	t.Parallel()

	ndefPolicy := FileAccessPolicy{
		FileID:   FileNDEF,
		I2CRead:  AccessAlways,
		I2CWrite: AccessAlways,
		NFCRead:  AccessAlways,
		NFCWrite: AccessNever,
	}

	cfg := NewStateConfigBuilder().
		WithNDEF(ndefPolicy).
		WithProprietary3(BlockAll(FileProprietary3)).
		WithI2CEnabled(false).
		WithGPIO(GPIOIRQ).
		Build()

	assert.Equal(t, ndefPolicy, cfg.NDEF)
	assert.Equal(t, BlockAll(FileProprietary3), cfg.Proprietary3)
	assert.Equal(t, AllowAll(FileCC), cfg.CC, "untouched fields keep defaults")
	assert.False(t, cfg.I2CEnabled)
	assert.True(t, cfg.NFCEnabled)
	assert.Equal(t, GPIOIRQ, cfg.GPIO)
}

func TestStateConfig_PoliciesOrder(t *testing.T) {
	t.Parallel()

	policies := NewStateConfigBuilder().Build().Policies()
	require.Len(t, policies, 7)

	wantOrder := []uint16{
		FileCC, FileNDEF, FileFAP,
		FileProprietary1, FileProprietary2, FileProprietary3, FileProprietary4,
	}
	for i, p := range policies {
		assert.Equal(t, wantOrder[i], p.FileID, "policy %d", i)
	}
}

func TestStateConfig_InterfaceBytes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  StateConfig
		want []byte
	}{
		{
			name: "defaults",
			cfg:  NewStateConfigBuilder().Build(),
			want: []byte{0x01, 0x01, 0x00},
		},
		{
			name: "i2c off, gpio irq",
			cfg:  NewStateConfigBuilder().WithI2CEnabled(false).WithGPIO(GPIOIRQ).Build(),
			want: []byte{0x01, 0x00, 0x01},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.cfg.InterfaceBytes())
		})
	}
}

func TestUseCaseStateConfigs(t *testing.T) {
	t.Parallel()

	t.Run("brand protection locks everything", func(t *testing.T) {
		t.Parallel()

		cfg := UseCaseBrandProtection.stateConfig()
		assert.Equal(t, AccessNever, cfg.NDEF.NFCWrite)
		assert.Equal(t, AccessNever, cfg.NDEF.I2CWrite)
		assert.Equal(t, BlockAll(FileProprietary1), cfg.Proprietary1)
		assert.False(t, cfg.I2CEnabled)
	})

	t.Run("connection handover keeps host write access", func(t *testing.T) {
		t.Parallel()

		cfg := UseCaseConnectionHandover.stateConfig()
		assert.Equal(t, AccessAlways, cfg.NDEF.I2CWrite)
		assert.Equal(t, AccessNever, cfg.NDEF.NFCWrite)
		assert.Equal(t, GPIOIRQ, cfg.GPIO)
	})

	t.Run("async data transfer crosses the mailbox directions", func(t *testing.T) {
		t.Parallel()

		cfg := UseCaseAsyncDataTransfer.stateConfig()
		assert.Equal(t, AccessAlways, cfg.Proprietary1.NFCWrite)
		assert.Equal(t, AccessAlways, cfg.Proprietary1.I2CRead)
		assert.Equal(t, AccessNever, cfg.Proprietary1.NFCRead)
		assert.Equal(t, AccessAlways, cfg.Proprietary2.I2CWrite)
		assert.Equal(t, AccessAlways, cfg.Proprietary2.NFCRead)
		assert.Equal(t, AccessNever, cfg.Proprietary2.I2CRead)
	})
}

func TestParseUseCase(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    UseCase
		wantErr bool
	}{
		{"long bp", "brand-protection", UseCaseBrandProtection, false},
		{"short bp", "bp", UseCaseBrandProtection, false},
		{"short ch", "ch", UseCaseConnectionHandover, false},
		{"adt", "adt", UseCaseAsyncDataTransfer, false},
		{"pt", "pt", UseCasePassThrough, false},
		{"unknown", "bogus", 0, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseUseCase(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
