// Package database resolves query builders for the configured database
// capability and opens the connections they run on.
package database

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/architeacher/household/internal/adapters/docquery"
	"github.com/architeacher/household/internal/adapters/sqlquery"
	"github.com/architeacher/household/internal/domain/ast"
	"github.com/architeacher/household/internal/domain/model"
	"github.com/architeacher/household/internal/ports"
	"github.com/architeacher/household/pkg/logger"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type (
	// Fragment is a compiled filter in the native syntax of a dialect.
	Fragment struct {
		Dialect model.Dialect `json:"dialect" yaml:"dialect"`
		Filter  string        `json:"filter" yaml:"filter"`
		Args    []any         `json:"args,omitempty" yaml:"args,omitempty"`
	}

	// Factory compiles filters for one database capability.
	Factory interface {
		Dialect() model.Dialect
		Compile(table string, expr model.Expression) (Fragment, error)
	}

	// BuilderFactory is a Factory whose capability has a query builder.
	BuilderFactory interface {
		Factory
		NewBuilder(executor ports.Executor, opts ...sqlquery.Option) *sqlquery.Builder
	}

	Option func(*Director)

	// Director maps database capabilities to their factories.
	Director struct {
		factories  map[model.Dialect]Factory
		logger     logger.Logger
		primaryKey string
	}

	sqlFactory struct {
		dialect sqlquery.Dialect
	}

	documentFactory struct{}
)

func WithLogger(log logger.Logger) Option {
	return func(d *Director) {
		d.logger = log
	}
}

func WithPrimaryKey(column string) Option {
	return func(d *Director) {
		d.primaryKey = column
	}
}

// WithFactory registers f, replacing any factory of the same dialect.
func WithFactory(f Factory) Option {
	return func(d *Director) {
		d.factories[f.Dialect()] = f
	}
}

func NewDirector(opts ...Option) *Director {
	d := &Director{
		factories: map[model.Dialect]Factory{
			model.DialectPostgres: sqlFactory{dialect: sqlquery.Postgres},
			model.DialectMSSQL:    sqlFactory{dialect: sqlquery.MSSQL},
			model.DialectSQLite:   sqlFactory{dialect: sqlquery.SQLite},
			model.DialectMongo:    documentFactory{},
		},
		logger:     logger.Logger{Logger: zerolog.Nop()},
		primaryKey: sqlquery.DefaultPrimaryKey,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Dialects lists the registered capabilities in a stable order.
func (d *Director) Dialects() []model.Dialect {
	return slices.Sorted(maps.Keys(d.factories))
}

// Resolve binds the factory registered for dialect to executor.
func (d *Director) Resolve(dialect model.Dialect, executor ports.Executor) (*Context, error) {
	const method = "Resolve"

	factory, err := d.factory(method, dialect)
	if err != nil {
		return nil, err
	}

	if executor == nil {
		return nil, model.NewError(context.Background(), model.ErrNullParameter, method,
			"executor is required", model.WithField("executor"))
	}

	builders, ok := factory.(BuilderFactory)
	if !ok {
		return nil, model.NewError(context.Background(), model.ErrNotImplemented, method,
			fmt.Sprintf("%q has no query builder", dialect), model.WithField("dialect"))
	}

	d.logger.Debug().Str("dialect", dialect.String()).Msg("database context resolved")

	return &Context{
		factory:  builders,
		executor: executor,
		options: []sqlquery.Option{
			sqlquery.WithLogger(d.logger),
			sqlquery.WithPrimaryKey(d.primaryKey),
		},
	}, nil
}

// Compile renders expr for dialect without a database connection.
func (d *Director) Compile(dialect model.Dialect, table string, expr model.Expression) (Fragment, error) {
	factory, err := d.factory("Compile", dialect)
	if err != nil {
		return Fragment{}, err
	}

	return factory.Compile(table, expr)
}

func (d *Director) factory(method string, dialect model.Dialect) (Factory, error) {
	factory, ok := d.factories[dialect]
	if !ok {
		return nil, model.NewError(context.Background(), model.ErrNotImplemented, method,
			fmt.Sprintf("no factory registered for %q", dialect), model.WithField("dialect"))
	}

	return factory, nil
}

func (f sqlFactory) Dialect() model.Dialect {
	return f.dialect.Name()
}

func (f sqlFactory) NewBuilder(executor ports.Executor, opts ...sqlquery.Option) *sqlquery.Builder {
	return sqlquery.NewBuilder(f.dialect, executor, opts...)
}

func (f sqlFactory) Compile(table string, expr model.Expression) (Fragment, error) {
	filter, args, err := sqlquery.Render(f.dialect, table, expr)
	if err != nil {
		return Fragment{}, err
	}

	return Fragment{Dialect: f.dialect.Name(), Filter: filter, Args: args}, nil
}

func (documentFactory) Dialect() model.Dialect {
	return model.DialectMongo
}

func (documentFactory) Compile(_ string, expr model.Expression) (Fragment, error) {
	const method = "Compile"

	if expr == nil {
		return Fragment{}, model.NewError(context.Background(), model.ErrNullParameter, method,
			"filter expression is required", model.WithField("expression"))
	}

	node, err := ast.Parse(expr)
	if err != nil {
		return Fragment{}, err
	}

	compiler := docquery.NewCompiler()
	compiler.SetExpression(node)

	filter, err := compiler.Compile()
	if err != nil {
		return Fragment{}, err
	}

	encoded, err := bson.MarshalExtJSON(filter, false, false)
	if err != nil {
		return Fragment{}, model.Wrap(context.Background(), model.ErrCompile, method, err)
	}

	return Fragment{Dialect: model.DialectMongo, Filter: string(encoded)}, nil
}
