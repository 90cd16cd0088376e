// SPDX-License-Identifier: GPL-3.0-or-later
package credential

import (
	"fmt"
	"strings"

	"github.com/99designs/keyring"
)

const serviceName = "go-imap-dashboard"

// Open returns the system keyring holding the imap password.
func Open() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/go-imap-dashboard/credentials",
		FilePasswordFunc:         keyring.TerminalPrompt,
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("could not open keyring: %w", err)
	}
	return ring, nil
}

// Password returns password unless it is blank, in which case the keyring entry key is
// read from the keyring returned by open.
func Password(password string, key string, open func() (keyring.Keyring, error)) (string, error) {
	if len(strings.TrimSpace(password)) > 0 {
		return password, nil
	}

	ring, err := open()
	if err != nil {
		return "", err
	}

	item, err := ring.Get(key)
	if err != nil {
		return "", fmt.Errorf("could not get credential %q: %w", key, err)
	}

	return string(item.Data), nil
}
