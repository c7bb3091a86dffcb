package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type TransactionID struct {
	uuid.UUID
}

func NewTransactionID() TransactionID {
	return TransactionID{UUID: uuid.Must(uuid.NewV7())}
}

func ParseTransactionID(s string) (TransactionID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return TransactionID{}, err
	}

	return TransactionID{UUID: id}, nil
}

func (t TransactionID) String() string {
	return t.UUID.String()
}

func (t TransactionID) IsZero() bool {
	return t.UUID == uuid.Nil
}

type TransactionKind string

const (
	TransactionIncome   TransactionKind = "income"
	TransactionExpense  TransactionKind = "expense"
	TransactionTransfer TransactionKind = "transfer"
)

func ParseTransactionKind(s string) (TransactionKind, error) {
	kind := TransactionKind(strings.ToLower(strings.TrimSpace(s)))

	switch kind {
	case TransactionIncome, TransactionExpense, TransactionTransfer:
		return kind, nil
	default:
		return "", fmt.Errorf("%w: unknown kind %q", ErrInvalidTransaction, s)
	}
}

func (k TransactionKind) String() string {
	return string(k)
}

// Transaction is a single ledger entry of a household. Amounts are stored in
// minor currency units.
type Transaction struct {
	ID          TransactionID
	HouseholdID string
	Account     string
	Category    string
	Kind        TransactionKind
	Description string
	AmountCents int64
	OccurredAt  time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func NewTransaction(householdID, account, category string, kind TransactionKind, amountCents int64, occurredAt time.Time) *Transaction {
	now := time.Now().UTC()

	return &Transaction{
		ID:          NewTransactionID(),
		HouseholdID: householdID,
		Account:     account,
		Category:    category,
		Kind:        kind,
		AmountCents: amountCents,
		OccurredAt:  occurredAt.UTC(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (t *Transaction) Validate() error {
	validation := NewValidationErrors()

	if strings.TrimSpace(t.HouseholdID) == "" {
		validation.Add("householdId", "household is required", "required")
	}

	if strings.TrimSpace(t.Account) == "" {
		validation.Add("account", "account is required", "required")
	}

	if _, err := ParseTransactionKind(string(t.Kind)); err != nil {
		validation.Add("kind", err.Error(), "invalid_kind")
	}

	if t.AmountCents <= 0 {
		validation.Add("amountCents", "amount must be positive", "invalid_amount")
	}

	if t.OccurredAt.IsZero() {
		validation.Add("occurredAt", "occurrence date is required", "required")
	}

	if validation.HasErrors() {
		return fmt.Errorf("%w: %w", ErrInvalidTransaction, validation)
	}

	return nil
}

// Patch applies a partial update and returns the changed columns.
func (t *Transaction) Patch(updates map[string]any) (Record, error) {
	changes := Record{}

	if category, ok := updates["category"].(string); ok {
		t.Category = category
		changes["category"] = category
	}

	if description, ok := updates["description"].(string); ok {
		t.Description = description
		changes["description"] = description
	}

	if account, ok := updates["account"].(string); ok {
		t.Account = account
		changes["account"] = account
	}

	if rawKind, ok := updates["kind"].(string); ok {
		kind, err := ParseTransactionKind(rawKind)
		if err != nil {
			return nil, err
		}

		t.Kind = kind
		changes["kind"] = kind.String()
	}

	if amount, ok := updates["amountCents"].(int64); ok {
		t.AmountCents = amount
		changes["amount_cents"] = amount
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}

	t.UpdatedAt = time.Now().UTC()
	changes["updated_at"] = t.UpdatedAt

	return changes, nil
}

// CategoryTotal aggregates a household's transactions for one category.
type CategoryTotal struct {
	Category string
	Count    int64
}

type TransactionPage struct {
	Transactions []*Transaction
	Options      PageOptions
}
