package gpg

import (
	"errors"
	"fmt"
	"os"

	"github.com/ProtonMail/go-crypto/openpgp"
)

// ErrKeyLocked is returned when the signing key is encrypted and no passphrase unlocks it
var ErrKeyLocked = errors.New("signing key is passphrase protected")

// Signer writes ASCII-armored detached signatures
type Signer struct {
	entity *openpgp.Entity
}

// NewSignerFromFile loads the first private key from an armored keyring file
// and unlocks it with passphrase when it is encrypted
func NewSignerFromFile(keyPath, passphrase string) (*Signer, error) {
	//nolint:gosec // G304: keyPath is the configured signing key
	f, err := os.Open(keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open signing key: %w", err)
	}
	//nolint:errcheck // Defer close
	defer f.Close()

	entities, err := openpgp.ReadArmoredKeyRing(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read signing key: %w", err)
	}

	for _, entity := range entities {
		if entity.PrivateKey == nil {
			continue
		}
		if err := unlock(entity, passphrase); err != nil {
			return nil, err
		}
		return &Signer{entity: entity}, nil
	}

	return nil, fmt.Errorf("no private key found in %s", keyPath)
}

func unlock(entity *openpgp.Entity, passphrase string) error {
	if entity.PrivateKey.Encrypted {
		if passphrase == "" {
			return ErrKeyLocked
		}
		if err := entity.PrivateKey.Decrypt([]byte(passphrase)); err != nil {
			return fmt.Errorf("failed to unlock signing key: %w", err)
		}
	}

	for _, sub := range entity.Subkeys {
		if sub.PrivateKey == nil || !sub.PrivateKey.Encrypted {
			continue
		}
		if err := sub.PrivateKey.Decrypt([]byte(passphrase)); err != nil {
			return fmt.Errorf("failed to unlock signing subkey: %w", err)
		}
	}

	return nil
}

// Fingerprint returns the uppercase hex fingerprint of the signing key
func (s *Signer) Fingerprint() string {
	return fmt.Sprintf("%X", s.entity.PrimaryKey.Fingerprint)
}

// SignFile writes <path>.asc and returns its path
func (s *Signer) SignFile(path string) (string, error) {
	//nolint:gosec // G304: path is a formula written by the tap writer
	data, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	//nolint:errcheck // Defer close
	defer data.Close()

	sigPath := path + SignatureSuffix
	//nolint:gosec // G304: signature lives next to the signed formula
	out, err := os.OpenFile(sigPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create signature file: %w", err)
	}

	if err := openpgp.ArmoredDetachSign(out, s.entity, data, nil); err != nil {
		_ = out.Close()
		_ = os.Remove(sigPath)
		return "", fmt.Errorf("failed to sign %s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("failed to close signature file: %w", err)
	}

	return sigPath, nil
}
