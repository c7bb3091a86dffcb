package ports

import "context"

type (
	// Statement is a rendered query ready to be sent to a database.
	Statement struct {
		// Method is the builder verb that produced the statement.
		Method string
		Table  string
		SQL    string
		Args   []any
	}

	// Executor runs a statement and scans every returned row into dst.
	// dst is a pointer to a slice of model.Row or of structs.
	Executor interface {
		Query(ctx context.Context, stmt Statement, dst any) error
	}

	// ExecutorFunc adapts a plain function to Executor.
	ExecutorFunc func(ctx context.Context, stmt Statement, dst any) error
)

func (f ExecutorFunc) Query(ctx context.Context, stmt Statement, dst any) error {
	return f(ctx, stmt, dst)
}
