package services

import (
	"context"

	"findash/internal/amqp"
	"findash/internal/log"
)

// DatasetEventHandler returns an AMQP handler that drops the local dataset
// snapshot whenever any instance reports a change.
func DatasetEventHandler(cache Invalidator, logger *log.Logger) func(context.Context, *amqp.DatasetChangedMessage) error {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentAMQP)
	return func(ctx context.Context, msg *amqp.DatasetChangedMessage) error {
		cache.Invalidate()
		logger.InfoContext(ctx, "Dataset cache invalidated by event",
			log.FieldOperation, log.OpConsume,
			"reason", msg.Reason, "origin", msg.Origin, log.FieldRows, msg.Rows)
		return nil
	}
}
