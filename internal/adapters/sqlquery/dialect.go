package sqlquery

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/architeacher/household/internal/domain/model"
)

type (
	returningStyle int
	windowStyle    int
)

const (
	returningClause returningStyle = iota + 1
	outputClause
)

const (
	windowLimitOffset windowStyle = iota + 1
	windowLimitRequired
	windowOffsetFetch
)

// Dialect captures how a SQL family renders the parts of a statement that
// squirrel leaves to the caller.
type Dialect struct {
	name        model.Dialect
	placeholder sq.PlaceholderFormat
	likeEscape  string
	likeSpecial string
	returning   returningStyle
	window      windowStyle
}

var (
	Postgres = Dialect{
		name:        model.DialectPostgres,
		placeholder: sq.Dollar,
		likeSpecial: `\%_`,
		returning:   returningClause,
		window:      windowLimitOffset,
	}

	SQLite = Dialect{
		name:        model.DialectSQLite,
		placeholder: sq.Question,
		likeEscape:  ` ESCAPE '\'`,
		likeSpecial: `\%_`,
		returning:   returningClause,
		window:      windowLimitRequired,
	}

	MSSQL = Dialect{
		name:        model.DialectMSSQL,
		placeholder: sq.AtP,
		likeEscape:  ` ESCAPE '\'`,
		likeSpecial: `\%_[`,
		returning:   outputClause,
		window:      windowOffsetFetch,
	}
)

// DialectFor returns the SQL dialect registered under name.
func DialectFor(name model.Dialect) (Dialect, error) {
	switch name {
	case model.DialectPostgres:
		return Postgres, nil
	case model.DialectSQLite:
		return SQLite, nil
	case model.DialectMSSQL:
		return MSSQL, nil
	default:
		return Dialect{}, fmt.Errorf("%w: %q is not a SQL dialect", model.ErrNotImplemented, name)
	}
}

func (d Dialect) Name() model.Dialect {
	return d.name
}

func (d Dialect) statements() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(d.placeholder)
}

// escapeLike neutralizes the wildcard characters of text so it matches
// literally inside a LIKE pattern.
func (d Dialect) escapeLike(text string) string {
	var b strings.Builder

	b.Grow(len(text))

	for _, r := range text {
		if strings.ContainsRune(d.likeSpecial, r) {
			b.WriteByte('\\')
		}

		b.WriteRune(r)
	}

	return b.String()
}

func (d Dialect) like(column, pattern string) sq.Sqlizer {
	return sq.Expr(column+" LIKE ?"+d.likeEscape, pattern)
}

func (d Dialect) applyWindow(sb sq.SelectBuilder, limit, offset *uint64) sq.SelectBuilder {
	switch d.window {
	case windowOffsetFetch:
		if limit == nil && offset == nil {
			return sb
		}

		var skip uint64
		if offset != nil {
			skip = *offset
		}

		if limit == nil {
			return sb.Suffix(fmt.Sprintf("OFFSET %d ROWS", skip))
		}

		return sb.Suffix(fmt.Sprintf("OFFSET %d ROWS FETCH NEXT %d ROWS ONLY", skip, *limit))
	case windowLimitRequired:
		if limit == nil && offset != nil {
			return sb.Suffix(fmt.Sprintf("LIMIT -1 OFFSET %d", *offset))
		}

		fallthrough
	default:
		if limit != nil {
			sb = sb.Limit(*limit)
		}

		if offset != nil {
			sb = sb.Offset(*offset)
		}

		return sb
	}
}

// returningSQL makes a write statement return the affected rows. The OUTPUT
// clause goes ahead of the first occurrence of before, or at the end.
func (d Dialect) returningSQL(query, output, before string) string {
	if d.returning == returningClause {
		return query + " RETURNING *"
	}

	clause := " OUTPUT " + output + ".*"

	if index := strings.Index(query, before); index >= 0 {
		return query[:index] + clause + query[index:]
	}

	return query + clause
}
