package credman

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

const gcmPrefix = "gcm1"

// ErrCiphertext is returned for sealed data that is truncated or was not
// produced by a Vault.
var ErrCiphertext = errors.New("malformed ciphertext")

// Vault seals small blobs with AES-256-GCM under a key derived from the
// master key for a single purpose, so one leaked derived key does not expose
// other kinds of state.
type Vault struct {
	aead cipher.AEAD
}

// NewVault derives a sealing key for purpose from master using HKDF-SHA256.
func NewVault(master []byte, purpose string) (*Vault, error) {
	if len(master) != KeySize {
		return nil, errors.New("invalid master key length")
	}
	key := make([]byte, 32)
	r := hkdf.New(sha256.New, master, nil, []byte("cookiewatch/"+purpose))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Vault{aead: aead}, nil
}

// Seal encrypts plaintext. The output is prefix | nonce | ciphertext.
func (v *Vault) Seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, v.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(gcmPrefix)+len(nonce)+len(plaintext)+v.aead.Overhead())
	out = append(out, gcmPrefix...)
	out = append(out, nonce...)
	return v.aead.Seal(out, nonce, plaintext, nil), nil
}

// Open decrypts data produced by Seal.
func (v *Vault) Open(sealed []byte) ([]byte, error) {
	n := v.aead.NonceSize()
	if len(sealed) < len(gcmPrefix)+n || string(sealed[:len(gcmPrefix)]) != gcmPrefix {
		return nil, ErrCiphertext
	}
	nonce := sealed[len(gcmPrefix) : len(gcmPrefix)+n]
	return v.aead.Open(nil, nonce, sealed[len(gcmPrefix)+n:], nil)
}
