package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cuongbtq/jobsnearby/internal/worker/domain"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/tidwall/gjson"
)

// setupConsumer starts consuming with the configured prefetch window
func (w *Worker) setupConsumer() (<-chan amqp.Delivery, error) {
	// Create unique consumer tag using worker ID
	consumerTag := w.workerID

	deliveries, err := w.consumer.Consume(consumerTag, w.prefetchCount)
	if err != nil {
		return nil, fmt.Errorf("failed to start consuming: %w", err)
	}

	w.logger.Info("RabbitMQ consumer started",
		slog.String("consumer_tag", consumerTag),
		slog.Int("prefetch_count", w.prefetchCount),
	)

	return deliveries, nil
}

// parseEnvelope reads the routing fields of an event without decoding its payload
func parseEnvelope(body []byte) (*domain.EventMessage, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: body is not valid JSON", domain.ErrInvalidEvent)
	}

	fields := gjson.GetManyBytes(body, "event_id", "type", "payload")
	eventID, eventType, payload := fields[0], fields[1], fields[2]

	if eventID.Type != gjson.String || eventID.Str == "" {
		return nil, fmt.Errorf("%w: missing event_id", domain.ErrInvalidEvent)
	}
	if eventType.Type != gjson.String || eventType.Str == "" {
		return nil, fmt.Errorf("%w: missing type", domain.ErrInvalidEvent)
	}
	if !payload.IsObject() {
		return nil, fmt.Errorf("%w: payload must be an object", domain.ErrInvalidEvent)
	}

	return &domain.EventMessage{
		EventID: eventID.Str,
		Type:    eventType.Str,
		Payload: []byte(payload.Raw),
	}, nil
}

// startMessageDispatcher listens to RabbitMQ deliveries and dispatches events to the worker pool
func (w *Worker) startMessageDispatcher(ctx context.Context, deliveries <-chan amqp.Delivery) error {
	w.logger.Info("Message dispatcher started")

	closed := w.consumer.NotifyClose()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Message dispatcher stopped - context canceled")
			return nil

		case <-w.stopChan:
			w.logger.Info("Message dispatcher stopped - worker stopping")
			return nil

		case amqpErr := <-closed:
			w.logger.Error("RabbitMQ channel closed",
				slog.Any("error", amqpErr),
			)
			return ErrConnectionLost

		case delivery, ok := <-deliveries:
			if !ok {
				w.logger.Warn("RabbitMQ delivery channel closed")
				return ErrConnectionLost
			}

			msg, err := parseEnvelope(delivery.Body)
			if err != nil {
				w.logger.Error("Dropping malformed event",
					slog.Any("error", err),
					slog.String("message_id", delivery.MessageId),
				)
				// NACK without requeue - malformed messages go to the DLX if one is bound
				if nackErr := delivery.Nack(false, false); nackErr != nil {
					w.logger.Error("Failed to NACK malformed message",
						slog.Any("error", nackErr),
					)
				}
				continue
			}
			msg.Delivery = delivery

			select {
			case w.jobsChan <- msg:
				w.logger.Debug("Event dispatched to worker pool",
					slog.String("event_id", msg.EventID),
					slog.String("type", msg.Type),
					slog.Uint64("delivery_tag", delivery.DeliveryTag),
				)
			case <-ctx.Done():
				w.logger.Info("Message dispatcher stopped while dispatching event")
				// NACK the message so it can be reprocessed
				if nackErr := delivery.Nack(false, true); nackErr != nil {
					w.logger.Error("Failed to NACK message on shutdown",
						slog.Any("error", nackErr),
					)
				}
				return nil
			case <-w.stopChan:
				if nackErr := delivery.Nack(false, true); nackErr != nil {
					w.logger.Error("Failed to NACK message on shutdown",
						slog.Any("error", nackErr),
					)
				}
				return nil
			}
		}
	}
}
