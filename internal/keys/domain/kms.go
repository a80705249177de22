package domain

import (
	"context"
)

// KMSKeeper abstracts a hardware/KMS key that wraps and unwraps the KEK.
// *secrets.Keeper from gocloud.dev implements this interface. The wrapping
// key itself never leaves the hardware boundary; only wrap/unwrap operations
// cross the network.
type KMSKeeper interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}
