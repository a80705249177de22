package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	tokensDomain "github.com/studentsync/tokenizer/internal/tokens/domain"
	tokensUseCase "github.com/studentsync/tokenizer/internal/tokens/usecase"
)

// RunValidateToken classifies a token value without revealing the subject
// behind it. Malformed values classify as invalid-format instead of erroring,
// so any string can be checked safely.
//
// Requirements: Database must be migrated and accessible.
func RunValidateToken(
	ctx context.Context,
	lifecycleUseCase tokensUseCase.LifecycleUseCase,
	logger *slog.Logger,
	out io.Writer,
	tokenValue string,
	format string,
) error {
	logger.Info("validating token", slog.String("token", tokenValue))

	result, err := lifecycleUseCase.Validate(ctx, tokenValue)
	if err != nil {
		return fmt.Errorf("failed to validate token: %w", err)
	}

	if format == "json" {
		outputValidationJSON(out, tokenValue, result)
	} else {
		outputValidationText(out, tokenValue, result)
	}

	logger.Info("token validated",
		slog.String("token", tokenValue),
		slog.String("status", string(result.Status)),
	)

	return nil
}

// outputValidationText outputs the validation result in human-readable text format.
func outputValidationText(out io.Writer, tokenValue string, result *tokensDomain.ValidationResult) {
	fmt.Fprintf(out, "Token:  %s\n", tokenValue)
	fmt.Fprintf(out, "Status: %s\n", result.Status)
	if result.Period != "" {
		fmt.Fprintf(out, "Period: %s\n", result.Period)
	}
	if !result.ExpiresAt.IsZero() {
		fmt.Fprintf(out, "Expires: %s\n", result.ExpiresAt.UTC().Format(time.RFC3339))
	}
}

// outputValidationJSON outputs the validation result in JSON format.
func outputValidationJSON(out io.Writer, tokenValue string, result *tokensDomain.ValidationResult) {
	payload := map[string]interface{}{
		"token":  tokenValue,
		"status": string(result.Status),
		"valid":  result.Valid(),
	}
	if result.Period != "" {
		payload["period"] = result.Period
	}
	if !result.ExpiresAt.IsZero() {
		payload["expires_at"] = result.ExpiresAt.UTC().Format(time.RFC3339)
	}

	jsonBytes, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		fmt.Fprintf(out, "failed to marshal JSON: %v\n", err)
		return
	}

	fmt.Fprintln(out, string(jsonBytes))
}
