// Package service implements deterministic token derivation for student
// identifier anonymization.
package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/studentsync/tokenizer/internal/audit"
	keysDomain "github.com/studentsync/tokenizer/internal/keys/domain"
	tokensDomain "github.com/studentsync/tokenizer/internal/tokens/domain"
)

// TokenExistenceChecker answers whether a candidate token value is already
// taken. The lifecycle repository implements it; tests substitute doubles to
// force collisions.
type TokenExistenceChecker interface {
	ExistsByValue(ctx context.Context, value string) (bool, error)
}

// Generator mints tokens from an internal identifier, the master secret, a
// per-token random salt and temporal context.
type Generator interface {
	Generate(
		ctx context.Context,
		subjectID, period string,
		secret *keysDomain.MasterSecret,
	) (*tokensDomain.Token, error)
}

// HashGenerator derives token codes by hashing
// subject|masterSecret|salt|timestamp|period and truncating to a fixed-width
// human-readable code. The random salt gives forward security: regenerating
// for the same subject never reproduces the same token. The master secret
// makes subject-to-token guessing infeasible without access to the boundary.
type HashGenerator struct {
	checker TokenExistenceChecker
}

// NewHashGenerator creates a generator backed by the given existence checker.
func NewHashGenerator(checker TokenExistenceChecker) *HashGenerator {
	return &HashGenerator{checker: checker}
}

// Generate mints a fully populated active token for the subject and period.
//
// If the derived code collides with an existing token, one retry is attempted
// with 64 bits of extra random entropy appended to the hash input. A second
// collision returns ErrTokenCollision without persisting anything: with 2^24
// possible codes, back-to-back collisions indicate something an operator must
// look at, so this is deliberately not a retry loop.
func (g *HashGenerator) Generate(
	ctx context.Context,
	subjectID, period string,
	secret *keysDomain.MasterSecret,
) (*tokensDomain.Token, error) {
	if strings.TrimSpace(subjectID) == "" {
		return nil, tokensDomain.ErrInvalidSubjectID
	}
	if err := tokensDomain.ValidatePeriod(period); err != nil {
		return nil, err
	}

	salt := make([]byte, tokensDomain.PerTokenSaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate per-token salt: %w", err)
	}
	saltHex := hex.EncodeToString(salt)

	createdAt := time.Now().UTC()
	input := strings.Join([]string{
		subjectID,
		secret.Hex(),
		saltHex,
		createdAt.Format(time.RFC3339Nano),
		period,
	}, "|")

	value, err := g.deriveUnique(ctx, input)
	if err != nil {
		return nil, err
	}

	expiresAt, err := tokensDomain.PeriodEnd(period)
	if err != nil {
		return nil, err
	}

	return &tokensDomain.Token{
		ID:           uuid.Must(uuid.NewV7()),
		Value:        value,
		SubjectID:    subjectID,
		Period:       period,
		PerTokenSalt: saltHex,
		CreatedAt:    createdAt,
		ExpiresAt:    expiresAt,
		Active:       true,
		CreatedBy:    audit.Principal(ctx),
	}, nil
}

// deriveUnique derives a candidate code and checks it against existing
// tokens, retrying exactly once with extra entropy on collision.
func (g *HashGenerator) deriveUnique(ctx context.Context, input string) (string, error) {
	value := deriveCode(input)

	exists, err := g.checker.ExistsByValue(ctx, value)
	if err != nil {
		return "", fmt.Errorf("failed to check token collision: %w", err)
	}
	if !exists {
		return value, nil
	}

	extra := make([]byte, 8)
	if _, err := rand.Read(extra); err != nil {
		return "", fmt.Errorf("failed to generate retry entropy: %w", err)
	}
	value = deriveCode(input + "|" + hex.EncodeToString(extra))

	exists, err = g.checker.ExistsByValue(ctx, value)
	if err != nil {
		return "", fmt.Errorf("failed to check token collision: %w", err)
	}
	if exists {
		return "", tokensDomain.ErrTokenCollision
	}
	return value, nil
}

// deriveCode hashes the input and truncates to the token text format.
func deriveCode(input string) string {
	sum := sha256.Sum256([]byte(input))
	code := strings.ToUpper(hex.EncodeToString(sum[:]))[:tokensDomain.TokenCodeLength]
	return tokensDomain.TokenPrefix + code
}
