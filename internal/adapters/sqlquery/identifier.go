package sqlquery

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/architeacher/household/internal/domain/model"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// ValidateIdentifier accepts column and table names, optionally qualified
// once (table.column). Anything else could smuggle SQL into the statement.
func ValidateIdentifier(name string) error {
	if identifierPattern.MatchString(name) {
		return nil
	}

	return model.NewError(context.Background(), model.ErrInvalidParameter, "ValidateIdentifier",
		fmt.Sprintf("invalid identifier %q", name), model.WithField(name))
}

// qualify prefixes field with table unless it is already qualified.
func qualify(table, field string) (string, error) {
	if field == "*" {
		if table == "" {
			return field, nil
		}

		return table + ".*", nil
	}

	if strings.HasSuffix(field, ".*") {
		if err := ValidateIdentifier(strings.TrimSuffix(field, ".*")); err != nil {
			return "", err
		}

		return field, nil
	}

	if err := ValidateIdentifier(field); err != nil {
		return "", err
	}

	if table == "" || strings.Contains(field, ".") {
		return field, nil
	}

	return table + "." + field, nil
}

func isSimpleIdentifier(name string) bool {
	return identifierPattern.MatchString(name) && !strings.Contains(name, ".")
}
