// Package outbox relays order events from the orders outbox table to Kafka.
package outbox

import (
	"context"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/velstore/storefront/internal/orders"
)

const batchSize = 100

// EventSource is the slice of the orders repository the poller needs.
type EventSource interface {
	GetUnprocessedEvents(ctx context.Context, limit int) ([]*orders.OutboxEvent, error)
	MarkEventAsProcessed(ctx context.Context, id int64) error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type Poller struct {
	tick   time.Duration
	source EventSource
	writer messageWriter
}

func NewPoller(source EventSource, brokers ...string) *Poller {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  "order-events",
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &Poller{tick: time.Second, source: source, writer: w}
}

func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.processUnpublishedEvents(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (p *Poller) processUnpublishedEvents(ctx context.Context) {
	events, err := p.source.GetUnprocessedEvents(ctx, batchSize)
	if err != nil {
		log.Printf("failed to fetch events %v", err)
		return
	}

	for _, event := range events {
		errPublish := p.publishToKafka(ctx, event)
		if errPublish != nil {
			log.Printf("failed to publish event id = %v with error %v", event.ID, errPublish)
			continue
		}

		errMark := p.source.MarkEventAsProcessed(ctx, event.ID)
		if errMark != nil {
			log.Printf("failed to mark event as processed id = %v with error %v", event.ID, errMark)
			continue
		}
	}
}

func (p *Poller) publishToKafka(ctx context.Context, event *orders.OutboxEvent) error {
	msg := kafka.Message{
		Key:   []byte(event.AggregateID), // order id, keeps per-order ordering
		Value: event.Payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	}

	return p.writer.WriteMessages(ctx, msg)
}
