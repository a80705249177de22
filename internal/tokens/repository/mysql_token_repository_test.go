package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studentsync/tokenizer/internal/testutil"
	tokensDomain "github.com/studentsync/tokenizer/internal/tokens/domain"
)

func TestMySQLTokenRepository_CreateAndGet(t *testing.T) {
	testutil.SkipIfNoMySQL(t)

	db := testutil.SetupMySQLDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupMySQLDB(t, db)

	repo := NewMySQLTokenRepository(db)
	ctx := context.Background()

	token := buildTestToken("subject-001", "STU-A1B2C3", "2025-2026")
	require.NoError(t, repo.Create(ctx, token))

	got, err := repo.GetActiveBySubject(ctx, "subject-001", "2025-2026")
	require.NoError(t, err)
	assert.Equal(t, token.ID, got.ID)
	assert.Equal(t, token.Value, got.Value)
	assert.Equal(t, token.PerTokenSalt, got.PerTokenSalt)
	assert.True(t, got.Active)

	byValue, err := repo.GetByValue(ctx, "STU-A1B2C3")
	require.NoError(t, err)
	assert.Equal(t, token.ID, byValue.ID)
}

func TestMySQLTokenRepository_Create_ActiveConflict(t *testing.T) {
	testutil.SkipIfNoMySQL(t)

	db := testutil.SetupMySQLDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupMySQLDB(t, db)

	repo := NewMySQLTokenRepository(db)
	ctx := context.Background()

	first := buildTestToken("subject-001", "STU-A1B2C3", "2025-2026")
	require.NoError(t, repo.Create(ctx, first))

	second := buildTestToken("subject-001", "STU-D4E5F6", "2025-2026")
	err := repo.Create(ctx, second)
	assert.ErrorIs(t, err, tokensDomain.ErrActiveTokenExists)
}

func TestMySQLTokenRepository_Create_ValueCollision(t *testing.T) {
	testutil.SkipIfNoMySQL(t)

	db := testutil.SetupMySQLDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupMySQLDB(t, db)

	repo := NewMySQLTokenRepository(db)
	ctx := context.Background()

	first := buildTestToken("subject-001", "STU-A1B2C3", "2025-2026")
	require.NoError(t, repo.Create(ctx, first))

	second := buildTestToken("subject-002", "STU-A1B2C3", "2025-2026")
	err := repo.Create(ctx, second)
	assert.ErrorIs(t, err, tokensDomain.ErrTokenCollision)
}

func TestMySQLTokenRepository_DeactivateAndList(t *testing.T) {
	testutil.SkipIfNoMySQL(t)

	db := testutil.SetupMySQLDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupMySQLDB(t, db)

	repo := NewMySQLTokenRepository(db)
	ctx := context.Background()

	first := buildTestToken("subject-001", "STU-A1B2C3", "2025-2026")
	require.NoError(t, repo.Create(ctx, first))

	time.Sleep(time.Millisecond)
	second := buildTestToken("subject-002", "STU-D4E5F6", "2025-2026")
	require.NoError(t, repo.Create(ctx, second))

	require.NoError(t, repo.Deactivate(ctx, first.ID, time.Now().UTC()))

	tokens, err := repo.ListActiveByPeriod(ctx, "2025-2026")
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, second.ID, tokens[0].ID)

	// Deactivated value remains reserved and resolvable
	exists, err := repo.ExistsByValue(ctx, "STU-A1B2C3")
	require.NoError(t, err)
	assert.True(t, exists)

	got, err := repo.GetByValue(ctx, "STU-A1B2C3")
	require.NoError(t, err)
	assert.False(t, got.Active)

	// Second deactivation finds no active row
	err = repo.Deactivate(ctx, first.ID, time.Now().UTC())
	assert.ErrorIs(t, err, tokensDomain.ErrTokenNotFound)

	err = repo.Deactivate(ctx, uuid.Must(uuid.NewV7()), time.Now().UTC())
	assert.ErrorIs(t, err, tokensDomain.ErrTokenNotFound)
}
