package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/restaurant-hub/product-bulk/domain/product"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestEnsureFlagColumn(t *testing.T) {
	ctx := context.Background()

	t.Run("adds configured column", func(t *testing.T) {
		mockDB := new(MockExecer)
		mockDB.On("Exec", ctx, `ALTER TABLE "menu_items" ADD COLUMN IF NOT EXISTS "is_visible" boolean NOT NULL DEFAULT true`, []any(nil)).
			Return(pgconn.NewCommandTag("ALTER TABLE"), nil)

		require.NoError(t, ensureFlagColumn(ctx, mockDB, "menu_items", "is_visible"))
		mockDB.AssertExpectations(t)
	})

	t.Run("invalid name", func(t *testing.T) {
		mockDB := new(MockExecer)

		err := ensureFlagColumn(ctx, mockDB, "products", "Is-Visible")
		require.ErrorIs(t, err, product.ErrInvalidFlag)
		mockDB.AssertNotCalled(t, "Exec", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("alter error", func(t *testing.T) {
		mockDB := new(MockExecer)
		mockDB.On("Exec", ctx, mock.AnythingOfType("string"), mock.Anything).
			Return(pgconn.CommandTag{}, errors.New("permission denied"))

		err := ensureFlagColumn(ctx, mockDB, "products", "is_visible")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to add flag column is_visible")
	})
}
