package model_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/architeacher/household/internal/domain/model"
	"github.com/architeacher/household/pkg/logger"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	t.Parallel()

	ctx := context.WithValue(context.Background(), logger.ContextKeyRequestID, "req-1")
	ctx = context.WithValue(ctx, logger.ContextKeyTenantID, "household-9")

	cause := errors.New("syntax error at or near FROM")
	err := model.Wrap(ctx, model.ErrQueryExecution, "Execute", cause)

	require.ErrorIs(t, err, model.ErrQueryExecution)
	require.ErrorIs(t, err, cause)

	var typed *model.Error
	require.ErrorAs(t, err, &typed)
	require.Equal(t, "Execute", typed.Method)
	require.Equal(t, "req-1", typed.RequestID)
	require.Equal(t, "household-9", typed.TenantID)
	require.Equal(t, "errors.database.query_execution", typed.MessageKey)
	require.Contains(t, typed.Location, "model/errors_test.go:")
	require.Equal(t, "Execute: database query execution error: syntax error at or near FROM", err.Error())
}

func TestWrap_PassesTypedErrorsThrough(t *testing.T) {
	t.Parallel()

	original := model.NewError(context.Background(), model.ErrNullParameter, "Include", "join condition is required", model.WithField("on"))
	wrapped := fmt.Errorf("building query: %w", original)

	ctx := context.WithValue(context.Background(), logger.ContextKeyCorrelationID, "corr-5")
	err := model.Wrap(ctx, model.ErrQueryBuild, "Execute", wrapped)

	var typed *model.Error
	require.ErrorAs(t, err, &typed)
	require.Equal(t, "Include", typed.Method)
	require.Equal(t, "on", typed.Field)
	require.Equal(t, "corr-5", typed.CorrelationID)
	require.ErrorIs(t, err, model.ErrNullParameter)
	require.NotErrorIs(t, err, model.ErrQueryBuild)
	require.Empty(t, original.CorrelationID)
}

func TestError_WithoutCause(t *testing.T) {
	t.Parallel()

	err := model.NewError(context.Background(), model.ErrInvalidStage, "Delete", "")

	require.Equal(t, "Delete: query verb called out of stage", err.Error())
	require.ErrorIs(t, err, model.ErrInvalidStage)
	require.True(t, model.IsInternal(err))
}

func TestMessageKey(t *testing.T) {
	t.Parallel()

	require.Equal(t, "errors.query.malformed_expression", model.MessageKey(model.ErrParse))
	require.Equal(t, "errors.internal", model.MessageKey(errors.New("unknown")))
}
