package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	validation "github.com/jellydator/validation"

	"github.com/studentsync/tokenizer/internal/audit"
	tokensUseCase "github.com/studentsync/tokenizer/internal/tokens/usecase"
	customValidation "github.com/studentsync/tokenizer/internal/validation"
)

// resolveTokenInput holds the validated parameters for token resolution.
type resolveTokenInput struct {
	Token string
}

func (i *resolveTokenInput) Validate() error {
	return customValidation.WrapValidationError(validation.ValidateStruct(i,
		validation.Field(&i.Token, validation.Required, customValidation.TokenValue),
	))
}

// RunResolveToken maps a token value back to its subject identifier. This is
// the single reverse-lookup path in the system; the acting principal is
// recorded for the audit trail. The resolved identifier is written to the
// output writer only, never to the log.
//
// Requirements: Database must be migrated and accessible.
func RunResolveToken(
	ctx context.Context,
	lifecycleUseCase tokensUseCase.LifecycleUseCase,
	logger *slog.Logger,
	out io.Writer,
	tokenValue string,
	actor string,
	format string,
) error {
	input := &resolveTokenInput{Token: tokenValue}
	if err := input.Validate(); err != nil {
		return err
	}

	if actor == "" {
		actor = audit.SystemPrincipal
	}
	ctx = audit.WithPrincipal(ctx, actor)

	logger.Info("resolving token",
		slog.String("token", tokenValue),
		slog.String("actor", actor),
	)

	subjectID, err := lifecycleUseCase.Resolve(ctx, tokenValue)
	if err != nil {
		return fmt.Errorf("failed to resolve token: %w", err)
	}

	if format == "json" {
		outputResolveJSON(out, tokenValue, subjectID)
	} else {
		outputResolveText(out, tokenValue, subjectID)
	}

	logger.Info("token resolved",
		slog.String("token", tokenValue),
		slog.String("actor", actor),
	)

	return nil
}

// outputResolveText outputs the resolution result in human-readable text format.
func outputResolveText(out io.Writer, tokenValue, subjectID string) {
	fmt.Fprintln(out, "Token resolved successfully")
	fmt.Fprintf(out, "  Token:      %s\n", tokenValue)
	fmt.Fprintf(out, "  Subject ID: %s\n", subjectID)
}

// outputResolveJSON outputs the resolution result in JSON format.
func outputResolveJSON(out io.Writer, tokenValue, subjectID string) {
	result := map[string]interface{}{
		"token":      tokenValue,
		"subject_id": subjectID,
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(out, "failed to marshal JSON: %v\n", err)
		return
	}

	fmt.Fprintln(out, string(jsonBytes))
}
