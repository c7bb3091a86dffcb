package repos

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/architeacher/household/internal/domain/model"
	"github.com/architeacher/household/internal/ports"
	"github.com/architeacher/household/pkg/logger"
)

const (
	TransactionsTable = "transactions"

	defaultPageSize = 20
)

var (
	_ ports.TransactionsRepository = (*TransactionsRepository)(nil)

	// immutableColumns scope a row to its household and identity.
	immutableColumns = []string{"id", "household_id", "created_at"}

	transactionColumns = []string{
		"id", "household_id", "account", "category", "kind", "description",
		"amount_cents", "occurred_at", "created_at", "updated_at",
	}
)

type (
	// TransactionsRepository persists household ledger entries through the
	// query builder, so it runs unchanged on every SQL dialect.
	TransactionsRepository struct {
		db              ports.QueryFactory
		logger          logger.Logger
		defaultPageSize uint
	}

	RepositoryOption func(*TransactionsRepository)

	transactionRecord struct {
		ID          string    `db:"id"`
		HouseholdID string    `db:"household_id"`
		Account     string    `db:"account"`
		Category    string    `db:"category"`
		Kind        string    `db:"kind"`
		Description string    `db:"description"`
		AmountCents int64     `db:"amount_cents"`
		OccurredAt  time.Time `db:"occurred_at"`
		CreatedAt   time.Time `db:"created_at"`
		UpdatedAt   time.Time `db:"updated_at"`
	}
)

func WithDefaultPageSize(size uint) RepositoryOption {
	return func(r *TransactionsRepository) {
		if size > 0 {
			r.defaultPageSize = size
		}
	}
}

func NewTransactionsRepository(db ports.QueryFactory, log logger.Logger, opts ...RepositoryOption) *TransactionsRepository {
	r := &TransactionsRepository{
		db:              db,
		logger:          log.Component("transactions_repository"),
		defaultPageSize: defaultPageSize,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

func (r *TransactionsRepository) Create(ctx context.Context, tx *model.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}

	_, err := r.db.Query(TransactionsTable).
		Insert(toRecord(tx)).
		Execute(ctx)

	return err
}

func (r *TransactionsRepository) FetchByID(ctx context.Context, householdID string, id model.TransactionID) (*model.Transaction, error) {
	var records []transactionRecord

	err := r.db.Query(TransactionsTable).
		Select(transactionColumns...).
		Where(byID(householdID, id)).
		Take(1).
		ExecuteInto(ctx, &records)
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, notFound(ctx, "FetchByID", id)
	}

	return records[0].toTransaction()
}

func (r *TransactionsRepository) List(
	ctx context.Context,
	householdID string,
	filter model.Expression,
	args model.PageArgs,
) (*model.TransactionPage, error) {
	if args.PageSize == 0 {
		args.PageSize = r.defaultPageSize
	}

	if args.CurrentPage == 0 {
		args.CurrentPage = 1
	}

	if err := args.Validate(); err != nil {
		return nil, model.Wrap(ctx, model.ErrInvalidParameter, "List", err)
	}

	scope := inHousehold(householdID, filter)

	total, err := r.db.Query(TransactionsTable).Where(scope).Count(ctx)
	if err != nil {
		return nil, err
	}

	direction := args.Direction.OrDefault()

	var records []transactionRecord

	err = r.db.Query(TransactionsTable).
		Select(transactionColumns...).
		Where(scope).
		SortBy("occurred_at", direction).
		SortBy("id", direction).
		Take(uint64(args.PageSize)).
		Skip(args.Offset()).
		ExecuteInto(ctx, &records)
	if err != nil {
		return nil, err
	}

	transactions := make([]*model.Transaction, 0, len(records))

	for index := range records {
		tx, err := records[index].toTransaction()
		if err != nil {
			return nil, err
		}

		transactions = append(transactions, tx)
	}

	return &model.TransactionPage{
		Transactions: transactions,
		Options: model.PageOptions{
			PageSize:    args.PageSize,
			CurrentPage: args.CurrentPage,
			TotalPages:  model.TotalPages(total, args.PageSize),
			TotalItems:  total,
		},
	}, nil
}

// CountByCategory counts per category. Without categories every category
// the household has used is counted.
func (r *TransactionsRepository) CountByCategory(ctx context.Context, householdID string, categories ...string) ([]model.CategoryTotal, error) {
	if len(categories) == 0 {
		used, err := r.categories(ctx, householdID)
		if err != nil {
			return nil, err
		}

		categories = used
	}

	totals := make([]model.CategoryTotal, 0, len(categories))

	for _, category := range categories {
		count, err := r.db.Query(TransactionsTable).
			Where(inHousehold(householdID, model.Cond("category", model.OpEq, category))).
			Count(ctx)
		if err != nil {
			return nil, err
		}

		totals = append(totals, model.CategoryTotal{Category: category, Count: count})
	}

	return totals, nil
}

func (r *TransactionsRepository) Update(
	ctx context.Context,
	householdID string,
	id model.TransactionID,
	changes model.Record,
) (*model.Transaction, error) {
	for _, column := range changes.Columns() {
		if slices.Contains(immutableColumns, column) {
			return nil, model.NewError(ctx, model.ErrInvalidParameter, "Update",
				fmt.Sprintf("column %s cannot be changed", column), model.WithField(column))
		}
	}

	rows, err := r.db.Query(TransactionsTable).
		Update(changes).
		Where(byID(householdID, id)).
		Execute(ctx)
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, notFound(ctx, "Update", id)
	}

	r.logger.WithContext(ctx).Debug().
		Str("transaction_id", id.String()).
		Strs("columns", changes.Columns()).
		Msg("transaction updated")

	return r.FetchByID(ctx, householdID, id)
}

func (r *TransactionsRepository) Delete(ctx context.Context, householdID string, id model.TransactionID) error {
	rows, err := r.db.Query(TransactionsTable).
		Delete().
		Where(byID(householdID, id)).
		Execute(ctx)
	if err != nil {
		return err
	}

	if len(rows) == 0 {
		return notFound(ctx, "Delete", id)
	}

	return nil
}

func (r *TransactionsRepository) categories(ctx context.Context, householdID string) ([]string, error) {
	rows, err := r.db.Query(TransactionsTable).
		Select("category").
		Where(inHousehold(householdID, nil)).
		SortBy("category", model.SortAsc).
		Execute(ctx)
	if err != nil {
		return nil, err
	}

	categories := make([]string, 0, len(rows))
	seen := make(map[string]struct{}, len(rows))

	for _, row := range rows {
		category, ok := row["category"].(string)
		if !ok {
			continue
		}

		if _, dup := seen[category]; dup {
			continue
		}

		seen[category] = struct{}{}
		categories = append(categories, category)
	}

	return categories, nil
}

func inHousehold(householdID string, filter model.Expression) model.Expression {
	scope := model.Cond("household_id", model.OpEq, householdID)
	if filter == nil {
		return scope
	}

	return model.AllOf(scope, filter)
}

func byID(householdID string, id model.TransactionID) model.Expression {
	return inHousehold(householdID, model.Cond("id", model.OpEq, id.String()))
}

func notFound(ctx context.Context, method string, id model.TransactionID) error {
	return model.NewError(ctx, model.ErrTransactionNotFound, method,
		fmt.Sprintf("transaction with ID %s not found", id), model.WithField("id"))
}

func toRecord(tx *model.Transaction) model.Record {
	return model.Record{
		"id":           tx.ID.String(),
		"household_id": tx.HouseholdID,
		"account":      tx.Account,
		"category":     tx.Category,
		"kind":         tx.Kind.String(),
		"description":  tx.Description,
		"amount_cents": tx.AmountCents,
		"occurred_at":  tx.OccurredAt,
		"created_at":   tx.CreatedAt,
		"updated_at":   tx.UpdatedAt,
	}
}

func (r transactionRecord) toTransaction() (*model.Transaction, error) {
	id, err := model.ParseTransactionID(r.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse transaction ID: %w", err)
	}

	kind, err := model.ParseTransactionKind(r.Kind)
	if err != nil {
		return nil, fmt.Errorf("failed to parse transaction kind: %w", err)
	}

	return &model.Transaction{
		ID:          id,
		HouseholdID: r.HouseholdID,
		Account:     r.Account,
		Category:    r.Category,
		Kind:        kind,
		Description: r.Description,
		AmountCents: r.AmountCents,
		OccurredAt:  r.OccurredAt,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}, nil
}
