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

// Package certs loads the brand protection certificate and EC private
// key from disk. Files may be PEM or raw DER; the manager only ever
// sees DER bytes.
package certs

import (
	"encoding/pem"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/afero"
)

// ErrNotFound is returned when a certificate or key file is missing.
var ErrNotFound = errors.New("certs: resource not found")

// FileProvider reads key material from a filesystem. The filesystem is
// abstracted so tests can run against an in-memory one.
type FileProvider struct {
	fs       afero.Fs
	certPath string
	keyPath  string
}

// NewFileProvider returns a provider reading from the given paths. A
// nil fs defaults to the OS filesystem.
func NewFileProvider(fs afero.Fs, certPath, keyPath string) *FileProvider {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &FileProvider{fs: fs, certPath: certPath, keyPath: keyPath}
}

// Certificate returns the x509 certificate as DER bytes.
func (p *FileProvider) Certificate() ([]byte, error) {
	return p.read(p.certPath)
}

// PrivateKey returns the EC private key as DER bytes.
func (p *FileProvider) PrivateKey() ([]byte, error) {
	return p.read(p.keyPath)
}

func (p *FileProvider) read(path string) ([]byte, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: no path configured", ErrNotFound)
	}

	data, err := afero.ReadFile(p.fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	// PEM input gets unwrapped; anything else is passed through as DER.
	if block, _ := pem.Decode(data); block != nil {
		return block.Bytes, nil
	}
	return data, nil
}
