package service

import (
	keysDomain "github.com/studentsync/tokenizer/internal/keys/domain"
)

// AEADManagerService implements the AEADManager interface for creating AEAD cipher instances.
type AEADManagerService struct{}

// NewAEADManager creates a new AEADManagerService.
func NewAEADManager() *AEADManagerService {
	return &AEADManagerService{}
}

// CreateCipher creates an AEAD cipher instance for the specified algorithm.
// Returns ErrInvalidKeySize if key is not 32 bytes or ErrUnsupportedAlgorithm if algorithm is unknown.
func (am *AEADManagerService) CreateCipher(key []byte, alg keysDomain.Algorithm) (AEAD, error) {
	// Validate key size
	if len(key) != keysDomain.KeySize {
		return nil, keysDomain.ErrInvalidKeySize
	}

	// Create cipher based on algorithm
	switch alg {
	case keysDomain.AESGCM:
		return NewAESGCM(key)
	case keysDomain.ChaCha20:
		return NewChaCha20Poly1305(key)
	default:
		return nil, keysDomain.ErrUnsupportedAlgorithm
	}
}
