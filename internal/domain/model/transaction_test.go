package model_test

import (
	"testing"
	"time"

	"github.com/architeacher/household/internal/domain/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestNewTransactionID(t *testing.T) {
	t.Parallel()

	id := model.NewTransactionID()

	require.False(t, id.IsZero())
	require.NotEqual(t, uuid.Nil, id.UUID)
}

func TestParseTransactionID(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name        string
		input       string
		expectError bool
	}{
		{name: "valid UUID", input: "019426d2-5b1e-7c8a-9f3e-123456789abc"},
		{name: "invalid UUID", input: "not-a-uuid", expectError: true},
		{name: "empty string", input: "", expectError: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			id, err := model.ParseTransactionID(tc.input)

			if tc.expectError {
				require.Error(t, err)
				require.True(t, id.IsZero())

				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.input, id.String())
		})
	}
}

func TestTransaction_Validate(t *testing.T) {
	t.Parallel()

	occurred := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	valid := model.NewTransaction("household-1", "checking", "groceries", model.TransactionExpense, 4599, occurred)
	require.NoError(t, valid.Validate())

	invalid := model.NewTransaction("", "", "groceries", "gift", 0, time.Time{})
	err := invalid.Validate()

	require.ErrorIs(t, err, model.ErrInvalidTransaction)

	var validation *model.ValidationErrors
	require.ErrorAs(t, err, &validation)
	require.Len(t, validation.Errors, 5)
}

func TestTransaction_Patch(t *testing.T) {
	t.Parallel()

	tx := model.NewTransaction("household-1", "checking", "groceries", model.TransactionExpense, 4599, time.Now())

	changes, err := tx.Patch(map[string]any{
		"category":    "restaurants",
		"amountCents": int64(5200),
		"kind":        "EXPENSE",
	})

	require.NoError(t, err)
	require.Equal(t, "restaurants", tx.Category)
	require.Equal(t, int64(5200), tx.AmountCents)
	require.Equal(t, []string{"amount_cents", "category", "kind", "updated_at"}, changes.Columns())

	_, err = tx.Patch(map[string]any{"kind": "gift"})
	require.ErrorIs(t, err, model.ErrInvalidTransaction)
}
