package decorator

import (
	"context"
	"time"

	"github.com/architeacher/household/pkg/logger"
)

type queryLoggingDecorator[Q Query, R Result] struct {
	base   QueryHandler[Q, R]
	name   string
	logger logger.Logger
}

func (d queryLoggingDecorator[Q, R]) Execute(ctx context.Context, query Q) (result R, err error) {
	action := actionName(d.name, query)
	log := d.logger.WithContext(ctx)
	start := time.Now()

	log.Debug().Str("action", action).Msg("executing query")

	defer func() {
		if err != nil {
			log.Error().
				Err(err).
				Str("action", action).
				Dur("duration", time.Since(start)).
				Msg("query failed")

			return
		}

		log.Debug().
			Str("action", action).
			Dur("duration", time.Since(start)).
			Msg("query executed")
	}()

	return d.base.Execute(ctx, query)
}
