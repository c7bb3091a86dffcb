package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/architeacher/household/internal/config"
	"github.com/architeacher/household/internal/domain/model"
	"github.com/architeacher/household/internal/ports"
	"github.com/architeacher/household/internal/runtime"
	"github.com/architeacher/household/pkg/logger"
	"github.com/spf13/cobra"
)

type (
	queryOptions struct {
		where     string
		fields    []string
		sortBy    string
		direction string
		limit     uint64
		offset    uint64
		page      uint
		pageSize  uint
	}

	countOptions struct {
		where string
	}

	countResult struct {
		Table string `json:"table" yaml:"table"`
		Count int64  `json:"count" yaml:"count"`
	}

	// chain is the part of a select chain where sorting is settled and
	// a limit or offset may follow.
	chain interface {
		ports.RowsExecutor

		Take(limit uint64) ports.LimitStage
		Skip(offset uint64) ports.ExecutionStage
	}
)

func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &queryOptions{}

	cmd := &cobra.Command{
		Use:   "query <table>",
		Short: "Run a filter expression against a table",
		Example: `  hfquery query transactions --where '["amount",">=",50]' --sort occurred_at --direction desc --limit 10
  hfquery query transactions --page 2 --page-size 20 --sort id -o yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, rootOpts, func(ctx context.Context, rt *runtime.Runtime) error {
				result, err := runQuery(ctx, cmd.InOrStdin(), rt.Database(), args[0], opts)
				if err != nil {
					return err
				}

				return writeOutput(cmd.OutOrStdout(), rootOpts.Format, result)
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.where, "where", "", "filter expression as JSON")
	flags.StringSliceVar(&opts.fields, "select", nil, "columns to return, all when empty")
	flags.StringVar(&opts.sortBy, "sort", "", "column to sort by")
	flags.StringVar(&opts.direction, "direction", "asc", "sort direction (asc|desc)")
	flags.Uint64Var(&opts.limit, "limit", 0, "maximum number of rows")
	flags.Uint64Var(&opts.offset, "offset", 0, "number of rows to skip")
	flags.UintVar(&opts.page, "page", 0, "page to return, enables pagination")
	flags.UintVar(&opts.pageSize, "page-size", 20, "rows per page")

	return cmd
}

func NewCountCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &countOptions{}

	cmd := &cobra.Command{
		Use:   "count <table>",
		Short: "Count the rows of a table matching a filter expression",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, rootOpts, func(ctx context.Context, rt *runtime.Runtime) error {
				stage := rt.Database().Query(args[0])

				var (
					count int64
					err   error
				)

				if opts.where != "" {
					expr, parseErr := readExpression(cmd.InOrStdin(), opts.where)
					if parseErr != nil {
						return parseErr
					}

					count, err = stage.Where(expr).Count(ctx)
				} else {
					count, err = stage.Count(ctx)
				}

				if err != nil {
					return err
				}

				return writeOutput(cmd.OutOrStdout(), rootOpts.Format, countResult{Table: args[0], Count: count})
			})
		},
	}

	cmd.Flags().StringVar(&opts.where, "where", "", "filter expression as JSON")

	return cmd
}

func runQuery(ctx context.Context, in io.Reader, db ports.QueryFactory, table string, opts *queryOptions) (any, error) {
	direction, ok := model.ParseSortDirection(opts.direction)
	if !ok {
		return nil, usageError(fmt.Errorf("invalid sort direction %q", opts.direction))
	}

	initial := db.Query(table)

	var stage ports.QueryStage
	if len(opts.fields) > 0 {
		stage = initial.Select(opts.fields...)
	} else {
		stage = initial.SelectAll()
	}

	if opts.where != "" {
		expr, err := readExpression(in, opts.where)
		if err != nil {
			return nil, err
		}

		stage = stage.Where(expr)
	}

	if opts.page > 0 {
		return stage.Paginate(ctx, opts.sortBy, model.PageArgs{
			CurrentPage: opts.page,
			PageSize:    opts.pageSize,
			Direction:   direction,
		})
	}

	var sorted chain = stage
	if opts.sortBy != "" {
		sorted = stage.SortBy(opts.sortBy, direction)
	}

	var executor ports.RowsExecutor = sorted

	switch {
	case opts.limit > 0 && opts.offset > 0:
		executor = sorted.Take(opts.limit).Skip(opts.offset)
	case opts.limit > 0:
		executor = sorted.Take(opts.limit)
	case opts.offset > 0:
		executor = sorted.Skip(opts.offset)
	}

	rows, err := executor.Execute(ctx)
	if err != nil {
		return nil, err
	}

	return rows, nil
}

// withRuntime connects with the environment configuration, overridden by
// the root flags, and releases everything once fn returns.
func withRuntime(cmd *cobra.Command, rootOpts *RootOptions, fn func(ctx context.Context, rt *runtime.Runtime) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Init()
	if err != nil {
		return err
	}

	if rootOpts.Dialect != "" {
		cfg.Database.Dialect = rootOpts.Dialect
	}

	if rootOpts.SQLiteDSN != "" {
		cfg.Database.SQLite.DSN = rootOpts.SQLiteDSN
	}

	if rootOpts.LogLevel != "" {
		cfg.Logging.Level = strings.ToLower(rootOpts.LogLevel)
	}

	rt, err := runtime.New(ctx,
		runtime.WithServiceConfig(cfg),
		runtime.WithLoggerInstance(logger.NewWithWriter(cfg.Logging.Level, cfg.Logging.Format, cmd.ErrOrStderr())),
	)
	if err != nil {
		return err
	}

	defer func() {
		if shutdownErr := rt.Shutdown(ctx); shutdownErr != nil {
			log := rt.Logger()
			log.Warn().Err(shutdownErr).Msg("shutting down")
		}
	}()

	return fn(ctx, rt)
}
