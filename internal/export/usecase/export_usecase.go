// Package usecase assembles PII-free sync batches for downstream consumers.
//
// The builder reads student attributes through the narrow StudentRecordStore
// interface and obtains tokens through issuance only. It has no access to the
// reverse-lookup path, so nothing here can map a token back to a subject.
package usecase

import (
	"context"
	"log/slog"
	"time"

	exportDomain "github.com/studentsync/tokenizer/internal/export/domain"
	apperrors "github.com/studentsync/tokenizer/internal/errors"
	tokensDomain "github.com/studentsync/tokenizer/internal/tokens/domain"
)

// StudentRecordStore is the only window into student data the export builder
// gets.
type StudentRecordStore interface {
	GetBySubjectID(ctx context.Context, subjectID string) (*exportDomain.StudentRecord, error)
	ListSubjectIDs(ctx context.Context) ([]string, error)
}

// ActiveTokenReader looks up the subject's current-period token.
type ActiveTokenReader interface {
	GetActiveBySubject(ctx context.Context, subjectID, period string) (*tokensDomain.Token, error)
}

// TokenIssuer mints a token for a subject lacking one.
type TokenIssuer interface {
	Issue(ctx context.Context, subjectID string) (*tokensDomain.Token, error)
}

// ExportUseCase defines the interface for building tokenized sync batches.
type ExportUseCase interface {
	// BuildSyncBatch emits one tokenized record per subject, lazily issuing
	// tokens for subjects that have none for the current period.
	BuildSyncBatch(ctx context.Context, subjectIDs []string) ([]exportDomain.TokenizedRecord, error)

	// BuildFullSync builds a batch covering every known subject.
	BuildFullSync(ctx context.Context) ([]exportDomain.TokenizedRecord, error)
}

// exportUseCase implements ExportUseCase.
type exportUseCase struct {
	records StudentRecordStore
	tokens  ActiveTokenReader
	issuer  TokenIssuer
	logger  *slog.Logger
}

// NewExportUseCase creates an ExportUseCase with injected dependencies.
func NewExportUseCase(
	records StudentRecordStore,
	tokens ActiveTokenReader,
	issuer TokenIssuer,
	logger *slog.Logger,
) ExportUseCase {
	return &exportUseCase{
		records: records,
		tokens:  tokens,
		issuer:  issuer,
		logger:  logger,
	}
}

// BuildSyncBatch emits one tokenized record per subject.
func (e *exportUseCase) BuildSyncBatch(
	ctx context.Context,
	subjectIDs []string,
) ([]exportDomain.TokenizedRecord, error) {
	now := time.Now().UTC()
	period := tokensDomain.CurrentPeriod(now)

	batch := make([]exportDomain.TokenizedRecord, 0, len(subjectIDs))
	for _, subjectID := range subjectIDs {
		record, err := e.records.GetBySubjectID(ctx, subjectID)
		if err != nil {
			return nil, err
		}

		token, err := e.usableToken(ctx, subjectID, period, now)
		if err != nil {
			return nil, err
		}

		batch = append(batch, exportDomain.NewTokenizedRecord(token.Value, period, record))
	}

	e.logger.Info("sync batch built",
		slog.String("period", period),
		slog.Int("records", len(batch)),
	)
	return batch, nil
}

// BuildFullSync builds a batch covering every known subject.
func (e *exportUseCase) BuildFullSync(ctx context.Context) ([]exportDomain.TokenizedRecord, error) {
	subjectIDs, err := e.records.ListSubjectIDs(ctx)
	if err != nil {
		return nil, err
	}
	return e.BuildSyncBatch(ctx, subjectIDs)
}

// usableToken returns the subject's current-period token, issuing one when
// missing or expired. A concurrent issuance racing the lookup surfaces as a
// conflict; the retry read then finds the winner's token.
func (e *exportUseCase) usableToken(
	ctx context.Context,
	subjectID, period string,
	now time.Time,
) (*tokensDomain.Token, error) {
	token, err := e.tokens.GetActiveBySubject(ctx, subjectID, period)
	if err == nil && token.IsUsable(now) {
		return token, nil
	}
	if err != nil && !apperrors.Is(err, tokensDomain.ErrTokenNotFound) {
		return nil, err
	}

	token, err = e.issuer.Issue(ctx, subjectID)
	if err == nil {
		return token, nil
	}
	if !apperrors.Is(err, tokensDomain.ErrActiveTokenExists) {
		return nil, err
	}
	return e.tokens.GetActiveBySubject(ctx, subjectID, period)
}
