package wallet

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/joho/godotenv"
)

// KeyEnv overrides the keychain entry when set.
const KeyEnv = "PRIVATE_KEY"

// ErrNoKey is returned when neither the environment nor the keychain
// holds a signing key.
var ErrNoKey = errors.New("no signing key: set " + KeyEnv + " or run `w3flow wallet import`")

// Origin says where a resolved key came from.
type Origin string

const (
	OriginEnv      Origin = "env"
	OriginKeychain Origin = "keychain"
)

// LoadDotEnv loads path into the process environment. A missing file is
// ignored and existing variables are never overwritten.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ParseKey decodes a hex private key, with or without 0x.
func ParseKey(hexKey string) (*ecdsa.PrivateKey, error) {
	hexKey = normaliseHexKey(hexKey)
	if hexKey == "" {
		return nil, ErrNoKey
	}
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}
	return key, nil
}

// Resolve returns the signing key: PRIVATE_KEY first, then the keychain.
// ks may be nil when no keychain is available.
func Resolve(ks *Keystore) (*ecdsa.PrivateKey, Origin, error) {
	if v := strings.TrimSpace(os.Getenv(KeyEnv)); v != "" {
		key, err := ParseKey(v)
		if err != nil {
			return nil, OriginEnv, fmt.Errorf("%s: %w", KeyEnv, err)
		}
		return key, OriginEnv, nil
	}
	if ks == nil {
		return nil, "", ErrNoKey
	}
	hexKey, err := ks.Load()
	if err != nil {
		return nil, OriginKeychain, err
	}
	key, err := ParseKey(hexKey)
	return key, OriginKeychain, err
}

// Address derives the account address of key.
func Address(key *ecdsa.PrivateKey) common.Address {
	return crypto.PubkeyToAddress(key.PublicKey)
}

func normaliseHexKey(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
	}
	return s
}
