package rabbit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Zubra14/verista-tracking/internal/domain/models"
	"github.com/Zubra14/verista-tracking/pkg/logger"
	wrap "github.com/Zubra14/verista-tracking/pkg/logger/wrapper"
	"github.com/Zubra14/verista-tracking/pkg/metrics"
	"github.com/Zubra14/verista-tracking/pkg/rabbit"
)

const (
	ExchangeLocationFanout = "location_fanout"
	ExchangeTripTopic      = "trip_topic"
)

// LocationBroker publishes position samples for consumers outside the
// websocket fan-out (dashboards, archival). Publishing is best-effort:
// realtime samples are superseded by the next one, so there is no retry.
type LocationBroker struct {
	client *rabbit.RabbitMQ
	l      logger.Logger
}

func NewLocationBroker(client *rabbit.RabbitMQ, l logger.Logger) (*LocationBroker, error) {
	b := &LocationBroker{
		client: client,
		l:      l,
	}
	if err := b.declareExchanges(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *LocationBroker) declareExchanges() error {
	for exchange, kind := range map[string]string{
		ExchangeLocationFanout: "fanout",
		ExchangeTripTopic:      "topic",
	} {
		if err := b.client.Channel.ExchangeDeclare(
			exchange,
			kind,
			true,  // durable
			false, // auto-delete
			false, // internal
			false, // no-wait
			nil,
		); err != nil {
			return fmt.Errorf("declare exchange %q: %w", exchange, err)
		}
	}
	return nil
}

func (b *LocationBroker) publish(ctx context.Context, exchange, routingKey string, msg any) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:   "application/json",
		Body:          body,
		Timestamp:     time.Now(),
		CorrelationId: wrap.GetRequestID(ctx),
	}

	err = b.client.Channel.PublishWithContext(ctx, exchange, routingKey, false, false, pub)
	metrics.RecordRabbitMQPublish("tracking-service", exchange, err)
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}

	return nil
}

// PublishLocation pushes one sample to the fanout exchange.
func (b *LocationBroker) PublishLocation(ctx context.Context, msg models.TripLocationMessage) error {
	ctx = wrap.WithAction(ctx, "publish_location_update")

	if err := b.publish(ctx, ExchangeLocationFanout, "", msg); err != nil {
		return wrap.Error(ctx, err)
	}
	return nil
}

// PublishTripStatus announces a trip lifecycle transition on the topic
// exchange, keyed trip.status.<trip_id>.
func (b *LocationBroker) PublishTripStatus(ctx context.Context, msg models.TripStatusMessage) error {
	ctx = wrap.WithAction(ctx, "publish_trip_status")
	key := fmt.Sprintf("trip.status.%s", msg.TripID)

	if err := b.publish(ctx, ExchangeTripTopic, key, msg); err != nil {
		return wrap.Error(ctx, err)
	}
	return nil
}
