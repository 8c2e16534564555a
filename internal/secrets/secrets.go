// Copyright (c) 2025 Quarry
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package secrets stores the saved database connection string in the OS
// keyring so credentials never land in shell history or config files.
package secrets

import (
	"errors"

	"github.com/99designs/keyring"
)

const (
	serviceName = "quarry"
	keyDSN      = "db_dsn"
)

// ErrNotFound is returned when no connection has been saved yet.
var ErrNotFound = errors.New("no saved connection")

func openRing() (keyring.Keyring, error) {
	return keyring.Open(keyring.Config{
		ServiceName: serviceName,
		// Native backends where available, encrypted file as last resort so
		// headless Linux boxes still work.
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.WinCredBackend,
			keyring.SecretServiceBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		PassPrefix:    serviceName,
		WinCredPrefix: serviceName,
	})
}

// SaveDSN stores the connection string.
func SaveDSN(dsn string) error {
	ring, err := openRing()
	if err != nil {
		return err
	}
	return ring.Set(keyring.Item{Key: keyDSN, Data: []byte(dsn)})
}

// LoadDSN retrieves the saved connection string, ErrNotFound when absent.
func LoadDSN() (string, error) {
	ring, err := openRing()
	if err != nil {
		return "", err
	}
	item, err := ring.Get(keyDSN)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	return string(item.Data), nil
}

// DeleteDSN removes the saved connection string. Missing entries are not an
// error.
func DeleteDSN() error {
	ring, err := openRing()
	if err != nil {
		return err
	}
	if err := ring.Remove(keyDSN); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return err
	}
	return nil
}
