package queues

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// QueryMessage is the body of a message on the query queue.
type QueryMessage struct {
	UserID int64  `json:"user_id"`
	ChatID int64  `json:"chat_id"`
	Text   string `json:"text"`
}

// ReplyMessage is the body published to the reply exchange.
type ReplyMessage struct {
	ChatID   int64    `json:"chat_id"`
	Messages []string `json:"messages"`
}

func DecodeQuery(body []byte) (*QueryMessage, error) {
	q := &QueryMessage{}
	if err := json.Unmarshal(body, q); err != nil {
		return nil, err
	}
	return q, nil
}

// NewReplyPublishing encodes r as a persistent JSON message. correlationID
// links the reply to its query; a fresh one is generated when empty.
func NewReplyPublishing(r *ReplyMessage, correlationID string) (amqp.Publishing, error) {
	body, err := json.Marshal(r)
	if err != nil {
		return amqp.Publishing{}, err
	}

	if correlationID == "" {
		correlationID = uuid.NewString()
	}

	return amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		MessageId:     uuid.NewString(),
		CorrelationId: correlationID,
		Timestamp:     time.Now(),
		Body:          body,
	}, nil
}
