package wallet

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/99designs/keyring"
)

const (
	keychainService = "w3flow"
	signerItem      = keychainService + ".signer"

	// PasswordEnv unlocks the file backend without a terminal prompt.
	PasswordEnv = "W3FLOW_KEYRING_PASSWORD"
)

// Keystore wraps OS keychain access for the single signing key.
type Keystore struct {
	ring keyring.Keyring
}

// NewKeystore wraps an already opened keyring.
func NewKeystore(ring keyring.Keyring) *Keystore {
	return &Keystore{ring: ring}
}

// OpenKeystore opens the OS keychain. fileDir backs the encrypted file
// fallback used on headless Linux hosts.
func OpenKeystore(fileDir string) (*Keystore, error) {
	prompt := keyring.TerminalPrompt
	if pw, ok := os.LookupEnv(PasswordEnv); ok {
		prompt = keyring.FixedStringPrompt(pw)
	}
	cfg := keyring.Config{
		ServiceName:              keychainService,
		KeychainTrustApplication: true,
		FileDir:                  filepath.Join(fileDir, "keyring"),
		FilePasswordFunc:         prompt,
	}

	// On Linux without a GUI, fall back to file-based storage.
	if runtime.GOOS == "linux" {
		cfg.AllowedBackends = []keyring.BackendType{
			keyring.SecretServiceBackend,
			keyring.KWalletBackend,
			keyring.FileBackend,
		}
	}

	ring, err := keyring.Open(cfg)
	if err != nil {
		cfg.AllowedBackends = []keyring.BackendType{keyring.FileBackend}
		if ring, err = keyring.Open(cfg); err != nil {
			return nil, fmt.Errorf("open keychain: %w", err)
		}
	}
	return &Keystore{ring: ring}, nil
}

// Save validates hexKey and stores it as the signing key.
func (k *Keystore) Save(hexKey string) error {
	hexKey = normaliseHexKey(hexKey)
	if _, err := ParseKey(hexKey); err != nil {
		return err
	}
	err := k.ring.Set(keyring.Item{
		Key:         signerItem,
		Data:        []byte(hexKey),
		Label:       "w3flow signing key",
		Description: "private key used to sign workflow transactions",
	})
	if err != nil {
		return fmt.Errorf("keychain store: %w", err)
	}
	return nil
}

// Load returns the stored hex key. ErrNoKey means nothing was imported.
func (k *Keystore) Load() (string, error) {
	item, err := k.ring.Get(signerItem)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", ErrNoKey
	}
	if err != nil {
		return "", fmt.Errorf("keychain retrieve: %w", err)
	}
	return string(item.Data), nil
}

// Has reports whether a signing key is stored.
func (k *Keystore) Has() bool {
	_, err := k.Load()
	return err == nil
}

// Delete removes the stored key. Deleting a missing key is not an error.
func (k *Keystore) Delete() error {
	err := k.ring.Remove(signerItem)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("keychain remove: %w", err)
	}
	return nil
}
