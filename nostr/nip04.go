package nostr

import (
	"errors"
	"fmt"

	"github.com/nbd-wtf/go-nostr/nip04"
)

var ErrInvalidCiphertext = errors.New("invalid NIP-04 ciphertext")

// Encrypts a direct message for the holder of pubHex (NIP-04): AES-256-CBC keyed by the ECDH
// shared x-coordinate, formatted as `<base64 ciphertext>?iv=<base64 iv>`.
func (s *PlainKeySigner) Encrypt(plaintext, pubHex string) (string, error) {
	key, err := nip04.ComputeSharedSecret(pubHex, s.secHex)
	if err != nil {
		return "", fmt.Errorf("computing shared secret: %w", err)
	}
	return nip04.Encrypt(plaintext, key)
}

func (s *PlainKeySigner) Decrypt(content, pubHex string) (string, error) {
	key, err := nip04.ComputeSharedSecret(pubHex, s.secHex)
	if err != nil {
		return "", fmt.Errorf("computing shared secret: %w", err)
	}
	plain, err := nip04.Decrypt(content, key)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidCiphertext, err)
	}
	return plain, nil
}
