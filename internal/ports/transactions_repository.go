package ports

import (
	"context"

	"github.com/architeacher/household/internal/domain/model"
)

type (
	Saver interface {
		// Create stores a new transaction.
		Create(ctx context.Context, tx *model.Transaction) error
	}

	Fetcher interface {
		// FetchByID retrieves a transaction of a household by its ID.
		FetchByID(ctx context.Context, householdID string, id model.TransactionID) (*model.Transaction, error)
	}

	Finder interface {
		// List retrieves one page of a household's transactions matching filter.
		List(ctx context.Context, householdID string, filter model.Expression, args model.PageArgs) (*model.TransactionPage, error)
		// CountByCategory counts a household's transactions per category.
		CountByCategory(ctx context.Context, householdID string, categories ...string) ([]model.CategoryTotal, error)
	}

	Updater interface {
		// Update persists the given changes and returns the stored transaction.
		Update(ctx context.Context, householdID string, id model.TransactionID, changes model.Record) (*model.Transaction, error)
	}

	Deleter interface {
		// Delete removes a transaction of a household by its ID.
		Delete(ctx context.Context, householdID string, id model.TransactionID) error
	}

	TransactionsRepository interface {
		Saver
		Fetcher
		Finder
		Updater
		Deleter
	}
)
