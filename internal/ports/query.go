package ports

import (
	"context"

	"github.com/architeacher/household/internal/domain/model"
)

// Each stage exposes only the verbs that are legal at that point of a
// chain. Terminal verbs reset the underlying builder to its initial stage.
type (
	RowsExecutor interface {
		// Execute runs the query and returns every matching row. No match
		// yields an empty slice.
		Execute(ctx context.Context) ([]model.Row, error)
		// ExecuteAndTakeFirst returns the first row or model.ErrNoRows.
		ExecuteAndTakeFirst(ctx context.Context) (model.Row, error)
		// ExecuteInto scans the rows into dst, a pointer to a slice of
		// structs or of model.Row.
		ExecuteInto(ctx context.Context, dst any) error
	}

	// Aggregator ends a read chain with a count or a page. Count ignores
	// any sort and window set on the chain.
	Aggregator interface {
		Count(ctx context.Context) (int64, error)
		Paginate(ctx context.Context, sortField string, args model.PageArgs) (*model.Page, error)
	}

	InitialStage interface {
		Aggregator

		Select(fields ...string) QueryStage
		SelectAll() QueryStage
		Where(expr model.Expression) QueryStage
		Insert(record model.Record) InsertStage
		Update(changes model.Record) OperationStage
		Delete() OperationStage
	}

	QueryStage interface {
		Aggregator
		RowsExecutor

		Where(expr model.Expression) QueryStage
		Include(table string, params model.IncludeParams) QueryStage
		SortBy(field string, direction model.SortDirection) SortStage
		Take(limit uint64) LimitStage
		Skip(offset uint64) ExecutionStage
	}

	SortStage interface {
		Aggregator
		RowsExecutor

		SortBy(field string, direction model.SortDirection) SortStage
		Take(limit uint64) LimitStage
		Skip(offset uint64) ExecutionStage
	}

	LimitStage interface {
		Aggregator
		RowsExecutor

		Skip(offset uint64) ExecutionStage
	}

	ExecutionStage interface {
		Aggregator
		RowsExecutor
	}

	OperationStage interface {
		Where(expr model.Expression) OperationStage
		// Execute runs the update or delete and returns the affected rows.
		Execute(ctx context.Context) ([]model.Row, error)
	}

	InsertStage interface {
		// Execute runs the insert and returns the stored rows.
		Execute(ctx context.Context) ([]model.Row, error)
	}

	// QueryFactory opens a fresh chain bound to table.
	QueryFactory interface {
		Query(table string) InitialStage
	}
)
