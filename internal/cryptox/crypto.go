// Package cryptox seals credential secrets at rest.
//
// Each owner gets an AES-256-GCM key derived with HKDF-SHA256 from the server
// master key and the owner id. The record id is bound as additional data, so
// a ciphertext copied onto another row (or another owner) fails to open.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/passkeeper/internal/common"
	"golang.org/x/crypto/hkdf"
)

// KeySize is the length of the master key and of every derived key.
const KeySize = 32

const keyInfoPrefix = "passkeeper/credential-secret/v1/"

var ErrInvalidKey = errors.New("master key must be 32 bytes")

// Sealer encrypts and decrypts credential secrets for an owner.
type Sealer interface {
	Seal(ownerID, recordID string, plaintext []byte) (ciphertext, nonce []byte, err error)
	Open(ownerID, recordID string, ciphertext, nonce []byte) ([]byte, error)
}

// KeyRing derives per-owner keys from a single master key.
type KeyRing struct {
	master []byte
}

// NewKeyRing copies master, which must be KeySize bytes long.
func NewKeyRing(master []byte) (*KeyRing, error) {
	if len(master) != KeySize {
		return nil, ErrInvalidKey
	}
	k := make([]byte, KeySize)
	copy(k, master)
	return &KeyRing{master: k}, nil
}

// ParseMasterKey decodes a hex-encoded master key.
func ParseMasterKey(hexKey string) ([]byte, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("decoding master key: %w", err)
	}
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}
	return key, nil
}

func (k *KeyRing) ownerKey(ownerID string) ([]byte, error) {
	if ownerID == "" {
		return nil, errors.New("owner id is required")
	}
	key := make([]byte, KeySize)
	r := hkdf.New(sha256.New, k.master, nil, []byte(keyInfoPrefix+ownerID))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, err
	}
	return key, nil
}

func (k *KeyRing) aead(ownerID string) (cipher.AEAD, error) {
	key, err := k.ownerKey(ownerID)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Seal encrypts plaintext for ownerID, bound to recordID. A fresh random
// nonce is generated per call.
func (k *KeyRing) Seal(ownerID, recordID string, plaintext []byte) (ciphertext, nonce []byte, err error) {
	aesgcm, err := k.aead(ownerID)
	if err != nil {
		return nil, nil, err
	}

	nonce = common.GenerateRandByteArray(aesgcm.NonceSize())
	ciphertext = aesgcm.Seal(nil, nonce, plaintext, []byte(recordID))

	return ciphertext, nonce, nil
}

// Open reverses Seal. It fails when the owner, record id, nonce or
// ciphertext differ from what was sealed.
func (k *KeyRing) Open(ownerID, recordID string, ciphertext, nonce []byte) ([]byte, error) {
	aesgcm, err := k.aead(ownerID)
	if err != nil {
		return nil, err
	}
	if len(nonce) != aesgcm.NonceSize() {
		return nil, errors.New("invalid nonce size")
	}

	return aesgcm.Open(nil, nonce, ciphertext, []byte(recordID))
}

var _ Sealer = (*KeyRing)(nil)
