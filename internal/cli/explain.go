package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/architeacher/household/internal/domain/ast"
	"github.com/architeacher/household/internal/domain/model"
	"github.com/architeacher/household/internal/infrastructure/database"
	"github.com/spf13/cobra"
)

const defaultExplainDialect = "postgres"

type (
	explainOptions struct {
		table string
	}

	explanation struct {
		Expression string            `json:"expression" yaml:"expression"`
		Nodes      int               `json:"nodes" yaml:"nodes"`
		Conditions int               `json:"conditions" yaml:"conditions"`
		Tree       any               `json:"tree" yaml:"tree"`
		Fragment   database.Fragment `json:"fragment" yaml:"fragment"`
	}
)

// NewExplainCommand prints the tree an expression parses to and the
// filter it compiles to. It needs no database connection.
func NewExplainCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &explainOptions{}

	cmd := &cobra.Command{
		Use:   "explain [expression|-]",
		Short: "Show the parsed tree and compiled filter of an expression",
		Example: `  hfquery explain '[["amount",">",100],"and",["category","=","groceries"]]'
  echo '["note","contains","rent"]' | hfquery explain --dialect mongo`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplain(cmd, rootOpts, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.table, "table", "", "table used to qualify columns")

	return cmd
}

func runExplain(cmd *cobra.Command, rootOpts *RootOptions, opts *explainOptions, args []string) error {
	source := "-"
	if len(args) == 1 {
		source = args[0]
	}

	expr, err := readExpression(cmd.InOrStdin(), source)
	if err != nil {
		return err
	}

	name := rootOpts.Dialect
	if name == "" {
		name = defaultExplainDialect
	}

	dialect, err := model.ParseDialect(name)
	if err != nil {
		return usageError(err)
	}

	tree, err := ast.Parse(expr)
	if err != nil {
		return err
	}

	fragment, err := database.NewDirector().Compile(dialect, opts.table, expr)
	if err != nil {
		return err
	}

	return writeOutput(cmd.OutOrStdout(), rootOpts.Format, explanation{
		Expression: ast.String(tree),
		Nodes:      ast.Count(tree),
		Conditions: len(ast.Conditions(tree)),
		Tree:       ast.View(tree),
		Fragment:   fragment,
	})
}

// readExpression decodes a JSON tuple expression given inline, or read
// from in when source is "-".
func readExpression(in io.Reader, source string) (model.Expression, error) {
	data := []byte(source)

	if source == "-" {
		raw, err := io.ReadAll(in)
		if err != nil {
			return nil, fmt.Errorf("reading expression: %w", err)
		}

		data = raw
	}

	if strings.TrimSpace(string(data)) == "" {
		return nil, usageError(fmt.Errorf("an expression is required"))
	}

	return model.ParseExpressionJSON(data)
}
