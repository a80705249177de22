package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	validation "github.com/jellydator/validation"

	"github.com/studentsync/tokenizer/internal/audit"
	tokensDomain "github.com/studentsync/tokenizer/internal/tokens/domain"
	tokensUseCase "github.com/studentsync/tokenizer/internal/tokens/usecase"
	customValidation "github.com/studentsync/tokenizer/internal/validation"
)

// issueTokenInput holds the validated parameters for token issuance.
type issueTokenInput struct {
	SubjectID string
}

func (i *issueTokenInput) Validate() error {
	return customValidation.WrapValidationError(validation.ValidateStruct(i,
		validation.Field(&i.SubjectID, validation.Required, customValidation.SubjectID),
	))
}

// RunIssueToken issues a new anonymized token for the given subject under the
// current school-year period. Issuance is not idempotent: it fails when the
// subject already holds a usable token.
//
// Requirements: Database must be migrated and the master secret loadable.
func RunIssueToken(
	ctx context.Context,
	lifecycleUseCase tokensUseCase.LifecycleUseCase,
	logger *slog.Logger,
	out io.Writer,
	subjectID string,
	actor string,
	format string,
) error {
	input := &issueTokenInput{SubjectID: subjectID}
	if err := input.Validate(); err != nil {
		return err
	}

	if actor == "" {
		actor = audit.SystemPrincipal
	}
	ctx = audit.WithPrincipal(ctx, actor)

	logger.Info("issuing token", slog.String("actor", actor))

	token, err := lifecycleUseCase.Issue(ctx, subjectID)
	if err != nil {
		return fmt.Errorf("failed to issue token: %w", err)
	}

	if format == "json" {
		outputTokenJSON(out, token)
	} else {
		outputTokenText(out, "Token issued successfully", token)
	}

	logger.Info("token issued",
		slog.String("token", token.Value),
		slog.String("period", token.Period),
		slog.String("actor", actor),
	)

	return nil
}

// outputTokenText outputs a token in human-readable text format.
func outputTokenText(out io.Writer, header string, token *tokensDomain.Token) {
	fmt.Fprintln(out, header)
	fmt.Fprintf(out, "  Token:    %s\n", token.Value)
	fmt.Fprintf(out, "  Period:   %s\n", token.Period)
	fmt.Fprintf(out, "  Expires:  %s\n", token.ExpiresAt.UTC().Format(time.RFC3339))
	if token.RotationCount > 0 {
		fmt.Fprintf(out, "  Rotation: %d\n", token.RotationCount)
	}
}

// outputTokenJSON outputs a token in JSON format for machine consumption.
func outputTokenJSON(out io.Writer, token *tokensDomain.Token) {
	result := map[string]interface{}{
		"token":          token.Value,
		"period":         token.Period,
		"expires_at":     token.ExpiresAt.UTC().Format(time.RFC3339),
		"rotation_count": token.RotationCount,
		"active":         token.Active,
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(out, "failed to marshal JSON: %v\n", err)
		return
	}

	fmt.Fprintln(out, string(jsonBytes))
}
