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

// GPIOFunction is the GPIO pin mode written during personalization.
type GPIOFunction byte

const (
	// GPIODisabled leaves the GPIO pin unused.
	GPIODisabled GPIOFunction = 0x00
	// GPIOIRQ drives the pin as a data-ready interrupt line for the
	// I2C host.
	GPIOIRQ GPIOFunction = 0x01
)

// StateConfig is the full target configuration of one personalization
// run: one access policy per logical file plus the interface enable
// flags. Built once via StateConfigBuilder, consumed once by the
// manager, never mutated.
type StateConfig struct {
	CC           FileAccessPolicy
	NDEF         FileAccessPolicy
	FAP          FileAccessPolicy
	Proprietary1 FileAccessPolicy
	Proprietary2 FileAccessPolicy
	Proprietary3 FileAccessPolicy
	Proprietary4 FileAccessPolicy
	NFCEnabled   bool
	I2CEnabled   bool
	GPIO         GPIOFunction
}

// Policies returns the seven file policies in the fixed update order:
// CC, NDEF, FAP, then the four proprietary files.
func (c StateConfig) Policies() []FileAccessPolicy {
	return []FileAccessPolicy{
		c.CC,
		c.NDEF,
		c.FAP,
		c.Proprietary1,
		c.Proprietary2,
		c.Proprietary3,
		c.Proprietary4,
	}
}

// InterfaceBytes returns the serialized interface configuration: NFC
// enable, I2C enable, GPIO function.
func (c StateConfig) InterfaceBytes() []byte {
	enable := func(on bool) byte {
		if on {
			return 0x01
		}
		return 0x00
	}
	return []byte{enable(c.NFCEnabled), enable(c.I2CEnabled), byte(c.GPIO)}
}

// StateConfigBuilder accumulates overrides on top of the default
// configuration: every file fully accessible, both interfaces enabled,
// GPIO disabled.
type StateConfigBuilder struct {
	cfg StateConfig
}

// NewStateConfigBuilder returns a builder preloaded with the defaults.
func NewStateConfigBuilder() *StateConfigBuilder {
	return &StateConfigBuilder{cfg: StateConfig{
		CC:           AllowAll(FileCC),
		NDEF:         AllowAll(FileNDEF),
		FAP:          AllowAll(FileFAP),
		Proprietary1: AllowAll(FileProprietary1),
		Proprietary2: AllowAll(FileProprietary2),
		Proprietary3: AllowAll(FileProprietary3),
		Proprietary4: AllowAll(FileProprietary4),
		NFCEnabled:   true,
		I2CEnabled:   true,
		GPIO:         GPIODisabled,
	}}
}

func (b *StateConfigBuilder) WithCC(p FileAccessPolicy) *StateConfigBuilder {
	b.cfg.CC = p
	return b
}

func (b *StateConfigBuilder) WithNDEF(p FileAccessPolicy) *StateConfigBuilder {
	b.cfg.NDEF = p
	return b
}

func (b *StateConfigBuilder) WithFAP(p FileAccessPolicy) *StateConfigBuilder {
	b.cfg.FAP = p
	return b
}

func (b *StateConfigBuilder) WithProprietary1(p FileAccessPolicy) *StateConfigBuilder {
	b.cfg.Proprietary1 = p
	return b
}

func (b *StateConfigBuilder) WithProprietary2(p FileAccessPolicy) *StateConfigBuilder {
	b.cfg.Proprietary2 = p
	return b
}

func (b *StateConfigBuilder) WithProprietary3(p FileAccessPolicy) *StateConfigBuilder {
	b.cfg.Proprietary3 = p
	return b
}

func (b *StateConfigBuilder) WithProprietary4(p FileAccessPolicy) *StateConfigBuilder {
	b.cfg.Proprietary4 = p
	return b
}

func (b *StateConfigBuilder) WithNFCEnabled(on bool) *StateConfigBuilder {
	b.cfg.NFCEnabled = on
	return b
}

func (b *StateConfigBuilder) WithI2CEnabled(on bool) *StateConfigBuilder {
	b.cfg.I2CEnabled = on
	return b
}

func (b *StateConfigBuilder) WithGPIO(mode GPIOFunction) *StateConfigBuilder {
	b.cfg.GPIO = mode
	return b
}

// Build returns the accumulated configuration by value.
func (b *StateConfigBuilder) Build() StateConfig {
	return b.cfg
}
