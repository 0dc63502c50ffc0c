package handler

import (
	"context"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/wagslane/go-rabbitmq"

	"github.com/catouberos/transit-forecast/internal/queues"
)

const queryTimeout = 30 * time.Second

type QueryHandler interface {
	Handle(ctx context.Context, q Query) Reply
}

type ReplyPusher interface {
	PushReply(data amqp.Publishing) error
}

// ConsumeQueries reads queries from queue until ctx is cancelled and
// publishes one reply per query.
func ConsumeQueries(ctx context.Context, conn *rabbitmq.Conn, queue string, concurrency int, h QueryHandler, replies ReplyPusher) error {
	consumer, err := rabbitmq.NewConsumer(
		conn,
		queue,
		rabbitmq.WithConsumerOptionsLogging,
		rabbitmq.WithConsumerOptionsConcurrency(max(concurrency, 1)),
		rabbitmq.WithConsumerOptionsQueueDurable,
	)
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		consumer.Close()
	}()

	slog.Info("Consuming queries", "queue", queue, "concurrency", concurrency)

	return consumer.Run(func(d rabbitmq.Delivery) rabbitmq.Action {
		return handleDelivery(ctx, d, h, replies)
	})
}

func handleDelivery(ctx context.Context, d rabbitmq.Delivery, h QueryHandler, replies ReplyPusher) rabbitmq.Action {
	msg, err := queues.DecodeQuery(d.Body)
	if err != nil {
		slog.Error("Cannot unmarshal query", "error", err, "messageId", d.MessageId)
		return rabbitmq.NackDiscard
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	reply := h.Handle(ctx, Query{
		UserID: msg.UserID,
		ChatID: msg.ChatID,
		Text:   msg.Text,
	})

	data, err := queues.NewReplyPublishing(&queues.ReplyMessage{
		ChatID:   reply.ChatID,
		Messages: reply.Messages,
	}, d.CorrelationId)
	if err != nil {
		slog.Error("Cannot marshal reply", "error", err, "chat", reply.ChatID)
		return rabbitmq.NackDiscard
	}

	if err := replies.PushReply(data); err != nil {
		slog.Error("Cannot publish reply", "error", err, "chat", reply.ChatID)
		return rabbitmq.NackRequeue
	}

	slog.Debug("Replied to query", "chat", reply.ChatID, "correlationId", data.CorrelationId)
	return rabbitmq.Ack
}
