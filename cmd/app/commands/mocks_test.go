package commands

import (
	"context"

	"github.com/stretchr/testify/mock"

	exportDomain "github.com/studentsync/tokenizer/internal/export/domain"
	tokensDomain "github.com/studentsync/tokenizer/internal/tokens/domain"
	tokensUseCase "github.com/studentsync/tokenizer/internal/tokens/usecase"
)

type mockLifecycleUseCase struct {
	mock.Mock
}

func (m *mockLifecycleUseCase) Issue(ctx context.Context, subjectID string) (*tokensDomain.Token, error) {
	args := m.Called(ctx, subjectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tokensDomain.Token), args.Error(1)
}

func (m *mockLifecycleUseCase) Rotate(ctx context.Context, subjectID, reason string) (*tokensDomain.Token, error) {
	args := m.Called(ctx, subjectID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tokensDomain.Token), args.Error(1)
}

func (m *mockLifecycleUseCase) Resolve(ctx context.Context, tokenValue string) (string, error) {
	args := m.Called(ctx, tokenValue)
	return args.String(0), args.Error(1)
}

func (m *mockLifecycleUseCase) Validate(ctx context.Context, tokenValue string) (*tokensDomain.ValidationResult, error) {
	args := m.Called(ctx, tokenValue)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tokensDomain.ValidationResult), args.Error(1)
}

func (m *mockLifecycleUseCase) BatchIssue(ctx context.Context, subjectIDs []string) (*tokensUseCase.BatchSummary, error) {
	args := m.Called(ctx, subjectIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tokensUseCase.BatchSummary), args.Error(1)
}

func (m *mockLifecycleUseCase) AnnualRotate(ctx context.Context) (*tokensUseCase.RotationSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tokensUseCase.RotationSummary), args.Error(1)
}

type mockMasterSecretUseCase struct {
	mock.Mock
}

func (m *mockMasterSecretUseCase) Load(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockMasterSecretUseCase) Rotate(ctx context.Context, authorizedBy, reason string) error {
	args := m.Called(ctx, authorizedBy, reason)
	return args.Error(0)
}

type mockExportUseCase struct {
	mock.Mock
}

func (m *mockExportUseCase) BuildSyncBatch(ctx context.Context, subjectIDs []string) ([]exportDomain.TokenizedRecord, error) {
	args := m.Called(ctx, subjectIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]exportDomain.TokenizedRecord), args.Error(1)
}

func (m *mockExportUseCase) BuildFullSync(ctx context.Context) ([]exportDomain.TokenizedRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]exportDomain.TokenizedRecord), args.Error(1)
}
