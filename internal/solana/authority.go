package solana

import (
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/blocto/solana-go-sdk/types"
	"github.com/mr-tron/base58"
)

// LoadAuthority decodes the server-held signing key. Both the base58 secret
// key exported by wallets and the JSON byte array written by solana-keygen are
// accepted.
func LoadAuthority(secret string) (types.Account, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return types.Account{}, fmt.Errorf("mint authority key is empty")
	}

	if strings.HasPrefix(secret, "[") {
		keyBytes, err := decodeKeypairJSON([]byte(secret))
		if err != nil {
			return types.Account{}, err
		}
		acc, err := types.AccountFromBytes(keyBytes)
		if err != nil {
			return types.Account{}, fmt.Errorf("AccountFromBytes: %w", err)
		}
		return acc, nil
	}

	acc, err := types.AccountFromBase58(secret)
	if err != nil {
		return types.Account{}, fmt.Errorf("AccountFromBase58: %w", err)
	}
	return acc, nil
}

func decodeKeypairJSON(data []byte) ([]byte, error) {
	var ints []int
	if err := json.Unmarshal(data, &ints); err != nil {
		return nil, fmt.Errorf("unmarshal keypair json: %w", err)
	}
	if len(ints) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("unexpected secret key length: got %d, want %d", len(ints), ed25519.PrivateKeySize)
	}

	keyBytes := make([]byte, len(ints))
	for i, v := range ints {
		if v < 0 || v > 255 {
			return nil, fmt.Errorf("secret key byte %d out of range: %d", i, v)
		}
		keyBytes[i] = byte(v)
	}
	return keyBytes, nil
}

// IsAddress reports whether s is a base58 encoded 32-byte public key.
func IsAddress(s string) bool {
	b, err := base58.Decode(strings.TrimSpace(s))
	return err == nil && len(b) == ed25519.PublicKeySize
}
