package audit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrincipal(t *testing.T) {
	t.Run("returns principal from context", func(t *testing.T) {
		ctx := WithPrincipal(context.Background(), "registrar@school.example")
		assert.Equal(t, "registrar@school.example", Principal(ctx))
	})

	t.Run("returns system principal when unset", func(t *testing.T) {
		assert.Equal(t, SystemPrincipal, Principal(context.Background()))
	})

	t.Run("returns system principal for empty value", func(t *testing.T) {
		ctx := WithPrincipal(context.Background(), "")
		assert.Equal(t, SystemPrincipal, Principal(ctx))
	})
}
