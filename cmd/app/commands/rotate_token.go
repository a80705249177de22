package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	validation "github.com/jellydator/validation"

	"github.com/studentsync/tokenizer/internal/audit"
	tokensUseCase "github.com/studentsync/tokenizer/internal/tokens/usecase"
	customValidation "github.com/studentsync/tokenizer/internal/validation"
)

// rotateTokenInput holds the validated parameters for token rotation.
type rotateTokenInput struct {
	SubjectID string
	Reason    string
}

func (i *rotateTokenInput) Validate() error {
	return customValidation.WrapValidationError(validation.ValidateStruct(i,
		validation.Field(&i.SubjectID, validation.Required, customValidation.SubjectID),
		validation.Field(&i.Reason, validation.Required, customValidation.NotBlank),
	))
}

// RunRotateToken deactivates every active token the subject holds and issues
// a replacement with an incremented rotation count. The reason is recorded on
// the new token and is mandatory.
//
// Requirements: Database must be migrated and the master secret loadable.
func RunRotateToken(
	ctx context.Context,
	lifecycleUseCase tokensUseCase.LifecycleUseCase,
	logger *slog.Logger,
	out io.Writer,
	subjectID string,
	reason string,
	actor string,
	format string,
) error {
	input := &rotateTokenInput{SubjectID: subjectID, Reason: reason}
	if err := input.Validate(); err != nil {
		return err
	}

	if actor == "" {
		actor = audit.SystemPrincipal
	}
	ctx = audit.WithPrincipal(ctx, actor)

	logger.Info("rotating token",
		slog.String("reason", reason),
		slog.String("actor", actor),
	)

	token, err := lifecycleUseCase.Rotate(ctx, subjectID, reason)
	if err != nil {
		return fmt.Errorf("failed to rotate token: %w", err)
	}

	if format == "json" {
		outputTokenJSON(out, token)
	} else {
		outputTokenText(out, "Token rotated successfully", token)
	}

	logger.Info("token rotated",
		slog.String("token", token.Value),
		slog.String("period", token.Period),
		slog.Int("rotation_count", token.RotationCount),
		slog.String("actor", actor),
	)

	return nil
}
