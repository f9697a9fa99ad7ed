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

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-playground/validator/v10"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
)

const (
	SchemaVersion = 1
	CfgEnv        = "NBT_PERSO_CFG"
	CfgFile       = "config.toml"
	LogFile       = "nbt-perso.log"
)

type Values struct {
	Reader       Reader `toml:"reader,omitempty"`
	Perso        Perso  `toml:"perso,omitempty"`
	ConfigSchema int    `toml:"config_schema"`
	DebugLogging bool   `toml:"debug_logging"`
}

type Reader struct {
	// Name is the PC/SC reader name; empty picks the first available.
	Name string `toml:"name,omitempty"`
}

type Perso struct {
	// Encoder selects the NDEF encoder backend.
	Encoder string `toml:"encoder,omitempty" validate:"omitempty,oneof=vendor forum"`
	// CertPath and KeyPath point at the brand protection certificate
	// and EC private key (PEM or DER).
	CertPath string `toml:"cert_path,omitempty"`
	KeyPath  string `toml:"key_path,omitempty"`
	// URL is the default brand protection product URL.
	URL string `toml:"url,omitempty"`
	// DeviceMAC is the default connection handover Bluetooth MAC.
	DeviceMAC string `toml:"device_mac,omitempty" validate:"omitempty,mac"`
}

var BaseDefaults = Values{
	ConfigSchema: SchemaVersion,
	Perso: Perso{
		Encoder: "vendor",
	},
}

// Instance wraps the loaded configuration behind a lock so CLI
// overrides and readers do not race.
type Instance struct {
	cfgPath string
	vals    Values
	mu      sync.RWMutex
}

// NewConfig loads the configuration from configDir, creating the file
// with defaults when it does not exist yet. NBT_PERSO_CFG overrides
// the directory.
func NewConfig(configDir string) (*Instance, error) {
	if env, ok := os.LookupEnv(CfgEnv); ok && env != "" {
		configDir = env
	}

	cfg := &Instance{
		cfgPath: filepath.Join(configDir, CfgFile),
		vals:    BaseDefaults,
	}

	if err := cfg.Load(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		log.Info().Msgf("no config file at %s, writing defaults", cfg.cfgPath)
		if err := cfg.Save(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Load reads and validates the config file.
func (c *Instance) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.cfgPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	vals := BaseDefaults
	if err := toml.Unmarshal(data, &vals); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := validator.New().Struct(vals); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	c.vals = vals
	return nil
}

// Save writes the current config to disk.
func (c *Instance) Save() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(c.cfgPath), 0o750); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	data, err := toml.Marshal(c.vals)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(c.cfgPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func (c *Instance) Path() string {
	return c.cfgPath
}

func (c *Instance) ReaderName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Reader.Name
}

func (c *Instance) SetReaderName(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Reader.Name = name
}

func (c *Instance) Encoder() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Perso.Encoder
}

func (c *Instance) SetEncoder(backend string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Perso.Encoder = backend
}

func (c *Instance) CertPath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Perso.CertPath
}

func (c *Instance) SetCertPath(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Perso.CertPath = path
}

func (c *Instance) KeyPath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Perso.KeyPath
}

func (c *Instance) SetKeyPath(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Perso.KeyPath = path
}

func (c *Instance) URL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Perso.URL
}

func (c *Instance) SetURL(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Perso.URL = url
}

func (c *Instance) DeviceMAC() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Perso.DeviceMAC
}

func (c *Instance) SetDeviceMAC(mac string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Perso.DeviceMAC = mac
}

func (c *Instance) DebugLogging() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.DebugLogging
}

func (c *Instance) SetDebugLogging(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.DebugLogging = on
}
