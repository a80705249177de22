package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	keysUseCase "github.com/studentsync/tokenizer/internal/keys/usecase"
)

// RunRotateMasterSecret generates a new master secret, archives the previous
// ciphertext and re-encrypts the store under the key-encryption key. Tokens
// derived before the rotation can no longer be re-derived, so the operation
// requires an explicit authorizing operator and a reason.
//
// Requirements: KEY_BACKEND must be reachable and SECURE_STORAGE_PATH writable.
func RunRotateMasterSecret(
	ctx context.Context,
	masterSecretUseCase keysUseCase.MasterSecretUseCase,
	logger *slog.Logger,
	out io.Writer,
	authorizedBy string,
	reason string,
	format string,
) error {
	logger.Info("rotating master secret",
		slog.String("authorized_by", authorizedBy),
		slog.String("reason", reason),
	)

	if err := masterSecretUseCase.Rotate(ctx, authorizedBy, reason); err != nil {
		return fmt.Errorf("failed to rotate master secret: %w", err)
	}

	if format == "json" {
		outputMasterSecretRotationJSON(out, authorizedBy, reason)
	} else {
		outputMasterSecretRotationText(out, authorizedBy, reason)
	}

	logger.Info("master secret rotated",
		slog.String("authorized_by", authorizedBy),
	)

	return nil
}

// outputMasterSecretRotationText outputs the rotation result in human-readable text format.
func outputMasterSecretRotationText(out io.Writer, authorizedBy, reason string) {
	fmt.Fprintln(out, "Master secret rotated successfully")
	fmt.Fprintf(out, "  Authorized by: %s\n", authorizedBy)
	fmt.Fprintf(out, "  Reason:        %s\n", reason)
	fmt.Fprintln(out, "Warning: tokens issued before this rotation can no longer be re-derived.")
	fmt.Fprintln(out, "Run annual-rotate or batch-issue to mint replacements.")
}

// outputMasterSecretRotationJSON outputs the rotation result in JSON format.
func outputMasterSecretRotationJSON(out io.Writer, authorizedBy, reason string) {
	result := map[string]interface{}{
		"rotated":       true,
		"authorized_by": authorizedBy,
		"reason":        reason,
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(out, "failed to marshal JSON: %v\n", err)
		return
	}

	fmt.Fprintln(out, string(jsonBytes))
}
