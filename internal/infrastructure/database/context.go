package database

import (
	"github.com/architeacher/household/internal/adapters/sqlquery"
	"github.com/architeacher/household/internal/domain/model"
	"github.com/architeacher/household/internal/ports"
)

var _ ports.QueryFactory = (*Context)(nil)

// Context is a resolved capability bound to an executor. Every call to
// Query starts an independent chain, so a Context may be shared between
// goroutines.
type Context struct {
	factory  BuilderFactory
	executor ports.Executor
	options  []sqlquery.Option
}

func (c *Context) Dialect() model.Dialect {
	return c.factory.Dialect()
}

// Query opens a chain on table.
func (c *Context) Query(table string) ports.InitialStage {
	return c.factory.NewBuilder(c.executor, c.options...).SetTable(table)
}

// WithExecutor returns a copy bound to executor, typically one running
// inside a transaction opened by the caller.
func (c *Context) WithExecutor(executor ports.Executor) *Context {
	clone := *c
	clone.executor = executor

	return &clone
}

func (c *Context) Compile(table string, expr model.Expression) (Fragment, error) {
	return c.factory.Compile(table, expr)
}
