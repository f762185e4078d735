// Package credman keeps the master key used to encrypt cookiewatch state at
// rest and derives purpose-bound sealing keys from it.
package credman

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zalando/go-keyring"
)

// KeySize is the length of the master key in bytes.
const KeySize = 32

const (
	keyFileName = "vault.key"
	keyFileMode = 0o600
)

// KeyStore persists the master key.
type KeyStore interface {
	// GetKey returns the stored key, or an error wrapping os.ErrNotExist
	// (file store) or keyring.ErrNotFound (system keyring) when there is none.
	GetKey() ([]byte, error)
	// SetKey generates, stores and returns a fresh key.
	SetKey() ([]byte, error)
	DeleteKey() error
}

var (
	keyringSet    = keyring.Set
	keyringGet    = keyring.Get
	keyringDelete = keyring.Delete
	randRead      = rand.Read
)

// Keyring stores the key in the operating system keyring.
type Keyring struct {
	Service string
	User    string
}

// NewKeyring returns the cookiewatch keyring entry.
func NewKeyring() *Keyring {
	return &Keyring{Service: "cookiewatch", User: "vault"}
}

func newKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := randRead(key); err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return key, nil
}

func decodeKey(s string) ([]byte, error) {
	key, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid key format: %w", err)
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("invalid key length: expected %d, got %d", KeySize, len(key))
	}
	return key, nil
}

func (k *Keyring) SetKey() ([]byte, error) {
	key, err := newKey()
	if err != nil {
		return nil, err
	}
	if err := keyringSet(k.Service, k.User, hex.EncodeToString(key)); err != nil {
		return nil, err
	}
	return key, nil
}

func (k *Keyring) GetKey() ([]byte, error) {
	s, err := keyringGet(k.Service, k.User)
	if err != nil {
		return nil, err
	}
	return decodeKey(s)
}

func (k *Keyring) DeleteKey() error {
	return keyringDelete(k.Service, k.User)
}

// FileKeyStore stores the key hex-encoded in a 0600 file. It is the
// fallback for systems without a usable keyring (headless Linux, CI).
type FileKeyStore struct {
	dir string
}

// NewFileKeyStore stores the key inside dir.
func NewFileKeyStore(dir string) *FileKeyStore {
	return &FileKeyStore{dir: dir}
}

func (f *FileKeyStore) path() string {
	return filepath.Join(f.dir, keyFileName)
}

// SetKey writes the key atomically through a temp file and rename.
func (f *FileKeyStore) SetKey() ([]byte, error) {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create key dir: %w", err)
	}
	key, err := newKey()
	if err != nil {
		return nil, err
	}
	tmp, err := os.CreateTemp(f.dir, ".vault.key.tmp.*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.WriteString(hex.EncodeToString(key)); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return nil, fmt.Errorf("write key: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, keyFileMode); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, f.path()); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("rename key file: %w", err)
	}
	return key, nil
}

func (f *FileKeyStore) GetKey() ([]byte, error) {
	data, err := os.ReadFile(f.path())
	if err != nil {
		return nil, err
	}
	return decodeKey(string(data))
}

func (f *FileKeyStore) DeleteKey() error {
	return os.Remove(f.path())
}

func isMissing(err error) bool {
	return errors.Is(err, os.ErrNotExist) || errors.Is(err, keyring.ErrNotFound)
}

// LoadOrCreateKey returns the master key from the first usable store,
// creating one in that store if it has none. A store that fails for any
// reason other than a missing key is skipped in favour of the next.
func LoadOrCreateKey(stores ...KeyStore) ([]byte, error) {
	var errs []error
	for _, s := range stores {
		key, err := s.GetKey()
		if err == nil {
			return key, nil
		}
		if !isMissing(err) {
			errs = append(errs, err)
			continue
		}
		key, err = s.SetKey()
		if err == nil {
			return key, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, errors.New("no key store configured")
	}
	return nil, fmt.Errorf("no usable key store: %w", errors.Join(errs...))
}
