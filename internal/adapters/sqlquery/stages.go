package sqlquery

import (
	"context"

	"github.com/architeacher/household/internal/domain/model"
	"github.com/architeacher/household/internal/ports"
)

var (
	_ ports.InitialStage   = initialStage{}
	_ ports.QueryStage     = queryStage{}
	_ ports.SortStage      = sortStage{}
	_ ports.LimitStage     = limitStage{}
	_ ports.ExecutionStage = executionStage{}
	_ ports.OperationStage = operationStage{}
	_ ports.InsertStage    = insertStage{}
)

// handle ties a stage to the chain it was produced by. Once that chain
// is executed or cleared the handle is stale and every verb on it fails
// without touching the builder.
type handle struct {
	b   *Builder
	gen uint64
	err error
}

func (h handle) do(method string, verb func(b *Builder)) handle {
	if h.err != nil {
		return h
	}

	if h.gen != h.b.generation {
		h.err = staleStage(context.Background(), method)

		return h
	}

	verb(h.b)

	return h
}

func (h handle) check(ctx context.Context, method string) error {
	if h.err != nil {
		return model.Wrap(ctx, model.ErrInvalidStage, method, h.err)
	}

	if h.gen != h.b.generation {
		return staleStage(ctx, method)
	}

	return nil
}

func (h handle) execute(ctx context.Context) ([]model.Row, error) {
	if err := h.check(ctx, "Execute"); err != nil {
		return nil, err
	}

	return h.b.execute(ctx, "Execute")
}

func (h handle) executeAndTakeFirst(ctx context.Context) (model.Row, error) {
	if err := h.check(ctx, "ExecuteAndTakeFirst"); err != nil {
		return nil, err
	}

	return h.b.executeAndTakeFirst(ctx)
}

func (h handle) executeInto(ctx context.Context, dst any) error {
	if err := h.check(ctx, "ExecuteInto"); err != nil {
		return err
	}

	return h.b.executeInto(ctx, dst)
}

func (h handle) count(ctx context.Context) (int64, error) {
	if err := h.check(ctx, "Count"); err != nil {
		return 0, err
	}

	return h.b.count(ctx)
}

func (h handle) paginate(ctx context.Context, sortField string, args model.PageArgs) (*model.Page, error) {
	if err := h.check(ctx, "Paginate"); err != nil {
		return nil, err
	}

	return h.b.paginate(ctx, sortField, args)
}

func (h handle) where(expr model.Expression) handle {
	return h.do("Where", func(b *Builder) { b.where(expr) })
}

func (h handle) sortBy(field string, direction model.SortDirection) sortStage {
	return sortStage{h.do("SortBy", func(b *Builder) { b.sortBy(field, direction) })}
}

func (h handle) take(limit uint64) limitStage {
	return limitStage{h.do("Take", func(b *Builder) { b.take(limit) })}
}

func (h handle) skip(offset uint64) executionStage {
	return executionStage{h.do("Skip", func(b *Builder) { b.skip(offset) })}
}

func staleStage(ctx context.Context, method string) error {
	return model.NewError(ctx, model.ErrInvalidStage, method, "stage belongs to a query that was already executed or cleared")
}

type initialStage struct{ handle }

func (s initialStage) Select(fields ...string) ports.QueryStage {
	return queryStage{s.do("Select", func(b *Builder) { b.selectFields("Select", fields) })}
}

func (s initialStage) SelectAll() ports.QueryStage {
	return queryStage{s.do("SelectAll", func(b *Builder) { b.selectFields("SelectAll", nil) })}
}

func (s initialStage) Where(expr model.Expression) ports.QueryStage {
	return queryStage{s.where(expr)}
}

func (s initialStage) Insert(record model.Record) ports.InsertStage {
	return insertStage{s.do("Insert", func(b *Builder) { b.insert(record) })}
}

func (s initialStage) Update(changes model.Record) ports.OperationStage {
	return operationStage{s.do("Update", func(b *Builder) { b.update(changes) })}
}

func (s initialStage) Delete() ports.OperationStage {
	return operationStage{s.do("Delete", func(b *Builder) { b.delete() })}
}

func (s initialStage) Count(ctx context.Context) (int64, error) {
	return s.count(ctx)
}

func (s initialStage) Paginate(ctx context.Context, sortField string, args model.PageArgs) (*model.Page, error) {
	return s.paginate(ctx, sortField, args)
}

type queryStage struct{ handle }

func (s queryStage) Where(expr model.Expression) ports.QueryStage {
	return queryStage{s.where(expr)}
}

func (s queryStage) Include(table string, params model.IncludeParams) ports.QueryStage {
	return queryStage{s.do("Include", func(b *Builder) { b.include(table, params) })}
}

func (s queryStage) SortBy(field string, direction model.SortDirection) ports.SortStage {
	return s.sortBy(field, direction)
}

func (s queryStage) Take(limit uint64) ports.LimitStage {
	return s.take(limit)
}

func (s queryStage) Skip(offset uint64) ports.ExecutionStage {
	return s.skip(offset)
}

func (s queryStage) Count(ctx context.Context) (int64, error) {
	return s.count(ctx)
}

func (s queryStage) Paginate(ctx context.Context, sortField string, args model.PageArgs) (*model.Page, error) {
	return s.paginate(ctx, sortField, args)
}

func (s queryStage) Execute(ctx context.Context) ([]model.Row, error) {
	return s.execute(ctx)
}

func (s queryStage) ExecuteAndTakeFirst(ctx context.Context) (model.Row, error) {
	return s.executeAndTakeFirst(ctx)
}

func (s queryStage) ExecuteInto(ctx context.Context, dst any) error {
	return s.executeInto(ctx, dst)
}

type sortStage struct{ handle }

func (s sortStage) SortBy(field string, direction model.SortDirection) ports.SortStage {
	return s.sortBy(field, direction)
}

func (s sortStage) Take(limit uint64) ports.LimitStage {
	return s.take(limit)
}

func (s sortStage) Skip(offset uint64) ports.ExecutionStage {
	return s.skip(offset)
}

func (s sortStage) Count(ctx context.Context) (int64, error) {
	return s.count(ctx)
}

func (s sortStage) Paginate(ctx context.Context, sortField string, args model.PageArgs) (*model.Page, error) {
	return s.paginate(ctx, sortField, args)
}

func (s sortStage) Execute(ctx context.Context) ([]model.Row, error) {
	return s.execute(ctx)
}

func (s sortStage) ExecuteAndTakeFirst(ctx context.Context) (model.Row, error) {
	return s.executeAndTakeFirst(ctx)
}

func (s sortStage) ExecuteInto(ctx context.Context, dst any) error {
	return s.executeInto(ctx, dst)
}

type limitStage struct{ handle }

func (s limitStage) Skip(offset uint64) ports.ExecutionStage {
	return s.skip(offset)
}

func (s limitStage) Count(ctx context.Context) (int64, error) {
	return s.count(ctx)
}

func (s limitStage) Paginate(ctx context.Context, sortField string, args model.PageArgs) (*model.Page, error) {
	return s.paginate(ctx, sortField, args)
}

func (s limitStage) Execute(ctx context.Context) ([]model.Row, error) {
	return s.execute(ctx)
}

func (s limitStage) ExecuteAndTakeFirst(ctx context.Context) (model.Row, error) {
	return s.executeAndTakeFirst(ctx)
}

func (s limitStage) ExecuteInto(ctx context.Context, dst any) error {
	return s.executeInto(ctx, dst)
}

type executionStage struct{ handle }

func (s executionStage) Count(ctx context.Context) (int64, error) {
	return s.count(ctx)
}

func (s executionStage) Paginate(ctx context.Context, sortField string, args model.PageArgs) (*model.Page, error) {
	return s.paginate(ctx, sortField, args)
}

func (s executionStage) Execute(ctx context.Context) ([]model.Row, error) {
	return s.execute(ctx)
}

func (s executionStage) ExecuteAndTakeFirst(ctx context.Context) (model.Row, error) {
	return s.executeAndTakeFirst(ctx)
}

func (s executionStage) ExecuteInto(ctx context.Context, dst any) error {
	return s.executeInto(ctx, dst)
}

type operationStage struct{ handle }

func (s operationStage) Where(expr model.Expression) ports.OperationStage {
	return operationStage{s.where(expr)}
}

func (s operationStage) Execute(ctx context.Context) ([]model.Row, error) {
	return s.execute(ctx)
}

type insertStage struct{ handle }

func (s insertStage) Execute(ctx context.Context) ([]model.Row, error) {
	return s.execute(ctx)
}
