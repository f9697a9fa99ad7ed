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

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/Infineon/optiga-nbt-perso-go/pkg/certs"
	"github.com/Infineon/optiga-nbt-perso-go/pkg/config"
	"github.com/Infineon/optiga-nbt-perso-go/pkg/helpers"
	"github.com/Infineon/optiga-nbt-perso-go/pkg/nbt"
	"github.com/Infineon/optiga-nbt-perso-go/pkg/ndef"
	"github.com/Infineon/optiga-nbt-perso-go/pkg/payload"
	"github.com/Infineon/optiga-nbt-perso-go/pkg/transport/pcsc"
	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const appName = "nbt-perso"

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run() error {
	listReaders := flag.Bool("list-readers", false, "list connected PC/SC readers and exit")
	readerName := flag.String("reader", "", "PC/SC reader name (default: first available)")
	useCaseName := flag.String("use-case", "", "use case to personalize: bp, ch, adt, pt")
	url := flag.String("url", "", "brand protection product URL")
	certPath := flag.String("cert", "", "brand protection certificate file (PEM or DER)")
	keyPath := flag.String("key", "", "brand protection EC private key file (PEM or DER)")
	mac := flag.String("mac", "", "connection handover Bluetooth MAC (AA:BB:CC:DD:EE:FF)")
	detect := flag.Bool("detect", false, "report the device state and exit")
	reset := flag.Bool("reset", false, "reset the tag to its default state")
	encoder := flag.String("encoder", "", "ndef encoder backend: vendor or forum")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	console := zerolog.ConsoleWriter{Out: os.Stderr}
	if err := helpers.InitLogging(filepath.Join(xdg.StateHome, appName), console); err != nil {
		return fmt.Errorf("failed to init logging: %w", err)
	}

	cfg, err := config.NewConfig(filepath.Join(xdg.ConfigHome, appName))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyFlagOverrides(cfg, readerName, certPath, keyPath, url, mac, encoder, debug)

	if cfg.DebugLogging() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if *listReaders {
		names, err := pcsc.ListReaders()
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	}

	if !*detect && !*reset && *useCaseName == "" {
		flag.Usage()
		return errors.New("nothing to do: pass -use-case, -reset or -detect")
	}

	enc, err := ndef.NewEncoder(cfg.Encoder())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	transport := pcsc.New(cfg.ReaderName())
	provider := certs.NewFileProvider(nil, cfg.CertPath(), cfg.KeyPath())
	manager := nbt.NewManager(transport, provider, payload.NewFactory(enc))

	if err := manager.Connect(ctx); err != nil {
		return err
	}
	defer func() {
		if err := manager.Disconnect(); err != nil {
			log.Warn().Err(err).Msg("failed to disconnect cleanly")
		}
	}()

	state, err := manager.DetectDeviceState(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("device state: %s\n", state)
	if *detect {
		return nil
	}

	if *reset {
		if err := manager.ResetToDefault(ctx); err != nil {
			return err
		}
		// Re-detect to confirm the tag really is back at default.
		state, err = manager.DetectDeviceState(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("device state after reset: %s\n", state)
		return nil
	}

	useCase, err := nbt.ParseUseCase(*useCaseName)
	if err != nil {
		return err
	}

	params := nbt.Params{URL: cfg.URL()}
	if cfg.DeviceMAC() != "" {
		hwAddr, err := net.ParseMAC(cfg.DeviceMAC())
		if err != nil {
			return fmt.Errorf("invalid device mac: %w", err)
		}
		params.MAC = hwAddr
	}

	if err := manager.RunUseCase(ctx, useCase, params); err != nil {
		return err
	}
	fmt.Printf("personalized for %s\n", useCase)
	return nil
}

// applyFlagOverrides copies any explicitly set flag over the loaded
// config values, without persisting them.
func applyFlagOverrides(
	cfg *config.Instance,
	readerName, certPath, keyPath, url, mac, encoder *string,
	debug *bool,
) {
	if *readerName != "" {
		cfg.SetReaderName(*readerName)
	}
	if *certPath != "" {
		cfg.SetCertPath(*certPath)
	}
	if *keyPath != "" {
		cfg.SetKeyPath(*keyPath)
	}
	if *url != "" {
		cfg.SetURL(*url)
	}
	if *mac != "" {
		cfg.SetDeviceMAC(*mac)
	}
	if *encoder != "" {
		cfg.SetEncoder(*encoder)
	}
	if *debug {
		cfg.SetDebugLogging(true)
	}
}
