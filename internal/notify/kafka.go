package notify

import (
	"context"
	"time"

	"github.com/IBM/sarama"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/taskpro/storefront/internal/domain/catalog"
	"github.com/taskpro/storefront/internal/domain/order"
)

// KafkaNotifier publishes storefront events to a Kafka topic, one message
// per event, keyed so related events land on one partition.
type KafkaNotifier struct {
	producer sarama.SyncProducer
	topic    string
}

var _ Notifier = (*KafkaNotifier)(nil)

// NewKafkaNotifier connects a synchronous producer to the given brokers.
func NewKafkaNotifier(brokers []string, topic string) (*KafkaNotifier, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5
	cfg.Producer.Return.Successes = true
	cfg.Producer.Timeout = 5 * time.Second

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "start kafka producer")
	}
	return &KafkaNotifier{producer: producer, topic: topic}, nil
}

// Close shuts down the underlying producer.
func (n *KafkaNotifier) Close() error {
	return n.producer.Close()
}

func (n *KafkaNotifier) OrderPlaced(ctx context.Context, o *order.Order) {
	n.publish(ctx, o.OrderID, encodeEvent("order_placed", o, o.Status))
}

func (n *KafkaNotifier) OrderStatusChanged(ctx context.Context, o *order.Order, status order.Status) {
	n.publish(ctx, o.OrderID, encodeEvent("order_status_changed", o, status))
}

func (n *KafkaNotifier) ProductAdded(ctx context.Context, ownerEmail string, p catalog.Product) {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("event", func(e *jx.Encoder) { e.Str("product_added") })
		e.Field("owner", func(e *jx.Encoder) { e.Str(ownerEmail) })
		e.Field("product", func(e *jx.Encoder) { e.Str(p.Name) })
		e.Field("price", func(e *jx.Encoder) { e.Str(p.Price.String()) })
		e.Field("at", func(e *jx.Encoder) { e.Str(time.Now().UTC().Format(time.RFC3339)) })
	})
	n.publish(ctx, ownerEmail, e.Bytes())
}

func (n *KafkaNotifier) publish(ctx context.Context, key string, value []byte) {
	_, _, err := n.producer.SendMessage(&sarama.ProducerMessage{
		Topic: n.topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(value),
	})
	if err != nil {
		zctx.From(ctx).Warn("Notification publish failed",
			zap.String("order_id", key),
			zap.Error(err),
		)
	}
}

func encodeEvent(kind string, o *order.Order, status order.Status) []byte {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("event", func(e *jx.Encoder) { e.Str(kind) })
		e.Field("order_id", func(e *jx.Encoder) { e.Str(o.OrderID) })
		e.Field("customer_email", func(e *jx.Encoder) { e.Str(o.CustomerEmail) })
		e.Field("status", func(e *jx.Encoder) { e.Str(string(status)) })
		e.Field("grand_total", func(e *jx.Encoder) { e.Str(o.GrandTotal.String()) })
		e.Field("at", func(e *jx.Encoder) { e.Str(time.Now().UTC().Format(time.RFC3339)) })
	})
	return e.Bytes()
}
