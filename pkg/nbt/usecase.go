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

import "fmt"

// UseCase selects one of the supported personalization targets.
type UseCase int

const (
	// UseCaseBrandProtection locks the tag down to a read-only URI
	// plus certificate message.
	UseCaseBrandProtection UseCase = iota
	// UseCaseConnectionHandover serves a static Bluetooth OOB message
	// over NFC while the I2C host keeps write access.
	UseCaseConnectionHandover
	// UseCaseAsyncDataTransfer configures the proprietary files as
	// two one-directional mailboxes between NFC and the I2C host.
	UseCaseAsyncDataTransfer
	// UseCasePassThrough routes data through the pass-through
	// registers; the files stay locked.
	UseCasePassThrough
)

func (u UseCase) String() string {
	switch u {
	case UseCaseBrandProtection:
		return "brand-protection"
	case UseCaseConnectionHandover:
		return "connection-handover"
	case UseCaseAsyncDataTransfer:
		return "async-data-transfer"
	case UseCasePassThrough:
		return "pass-through"
	default:
		return fmt.Sprintf("use-case(%d)", int(u))
	}
}

// ParseUseCase maps a CLI/config name to a use case.
func ParseUseCase(name string) (UseCase, error) {
	switch name {
	case "brand-protection", "bp":
		return UseCaseBrandProtection, nil
	case "connection-handover", "ch":
		return UseCaseConnectionHandover, nil
	case "async-data-transfer", "adt":
		return UseCaseAsyncDataTransfer, nil
	case "pass-through", "pt":
		return UseCasePassThrough, nil
	default:
		return 0, fmt.Errorf("unknown use case: %q", name)
	}
}

// stateConfig returns the target configuration for the use case. Each
// run builds a fresh config from the builder defaults.
func (u UseCase) stateConfig() StateConfig {
	switch u {
	case UseCaseBrandProtection:
		// Fully locked: the message and certificate are written once
		// and can only be read over NFC afterwards.
		return NewStateConfigBuilder().
			WithCC(readOnlyPolicy(FileCC)).
			WithNDEF(readOnlyPolicy(FileNDEF)).
			WithFAP(readOnlyPolicy(FileFAP)).
			WithProprietary1(BlockAll(FileProprietary1)).
			WithProprietary2(BlockAll(FileProprietary2)).
			WithProprietary3(BlockAll(FileProprietary3)).
			WithProprietary4(BlockAll(FileProprietary4)).
			WithI2CEnabled(false).
			Build()
	case UseCaseConnectionHandover:
		// NFC readers only read the OOB message; the I2C host may
		// refresh it.
		return NewStateConfigBuilder().
			WithCC(readOnlyPolicy(FileCC)).
			WithNDEF(FileAccessPolicy{
				FileID:   FileNDEF,
				I2CRead:  AccessAlways,
				I2CWrite: AccessAlways,
				NFCRead:  AccessAlways,
				NFCWrite: AccessNever,
			}).
			WithFAP(readOnlyPolicy(FileFAP)).
			WithProprietary1(BlockAll(FileProprietary1)).
			WithProprietary2(BlockAll(FileProprietary2)).
			WithProprietary3(BlockAll(FileProprietary3)).
			WithProprietary4(BlockAll(FileProprietary4)).
			WithGPIO(GPIOIRQ).
			Build()
	case UseCaseAsyncDataTransfer:
		// File 1 carries NFC-to-host data, file 2 host-to-NFC.
		return NewStateConfigBuilder().
			WithCC(readOnlyPolicy(FileCC)).
			WithNDEF(readOnlyPolicy(FileNDEF)).
			WithFAP(readOnlyPolicy(FileFAP)).
			WithProprietary1(FileAccessPolicy{
				FileID:   FileProprietary1,
				I2CRead:  AccessAlways,
				I2CWrite: AccessNever,
				NFCRead:  AccessNever,
				NFCWrite: AccessAlways,
			}).
			WithProprietary2(FileAccessPolicy{
				FileID:   FileProprietary2,
				I2CRead:  AccessNever,
				I2CWrite: AccessAlways,
				NFCRead:  AccessAlways,
				NFCWrite: AccessNever,
			}).
			WithProprietary3(BlockAll(FileProprietary3)).
			WithProprietary4(BlockAll(FileProprietary4)).
			WithGPIO(GPIOIRQ).
			Build()
	case UseCasePassThrough:
		return NewStateConfigBuilder().
			WithCC(readOnlyPolicy(FileCC)).
			WithNDEF(readOnlyPolicy(FileNDEF)).
			WithFAP(readOnlyPolicy(FileFAP)).
			WithProprietary1(BlockAll(FileProprietary1)).
			WithProprietary2(BlockAll(FileProprietary2)).
			WithProprietary3(BlockAll(FileProprietary3)).
			WithProprietary4(BlockAll(FileProprietary4)).
			WithGPIO(GPIOIRQ).
			Build()
	default:
		return NewStateConfigBuilder().Build()
	}
}

// readOnlyPolicy allows reads on both interfaces and blocks writes.
func readOnlyPolicy(fileID uint16) FileAccessPolicy {
	return FileAccessPolicy{
		FileID:   fileID,
		I2CRead:  AccessAlways,
		I2CWrite: AccessNever,
		NFCRead:  AccessAlways,
		NFCWrite: AccessNever,
	}
}
