package sqlquery

import (
	"context"

	"github.com/architeacher/household/internal/domain/model"
)

// Render compiles expr into the WHERE fragment the builder would emit for
// table, with the dialect's placeholders.
func Render(dialect Dialect, table string, expr model.Expression) (string, []any, error) {
	const method = "Render"

	if table != "" && !isSimpleIdentifier(table) {
		return "", nil, ValidateIdentifier(table)
	}

	predicate, err := compileExpression(method, expr)
	if err != nil {
		return "", nil, err
	}

	filter, err := predicate(NewExpressionBuilder(dialect, table))
	if err != nil {
		return "", nil, err
	}

	query, args, err := filter.ToSql()
	if err != nil {
		return "", nil, model.Wrap(context.Background(), model.ErrQueryBuild, method, err)
	}

	query, err = dialect.placeholder.ReplacePlaceholders(query)
	if err != nil {
		return "", nil, model.Wrap(context.Background(), model.ErrQueryBuild, method, err)
	}

	return query, args, nil
}
