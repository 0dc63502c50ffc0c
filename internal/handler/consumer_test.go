package handler

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/wagslane/go-rabbitmq"

	"github.com/catouberos/transit-forecast/internal/queues"
)

type echoHandler struct{ got []Query }

func (h *echoHandler) Handle(ctx context.Context, q Query) Reply {
	h.got = append(h.got, q)
	return Reply{ChatID: q.ChatID, Messages: []string{"echo " + q.Text}}
}

type recordingPusher struct {
	err       error
	published []amqp.Publishing
}

func (p *recordingPusher) PushReply(data amqp.Publishing) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, data)
	return nil
}

func delivery(body string, correlationID string) rabbitmq.Delivery {
	return rabbitmq.Delivery{Delivery: amqp.Delivery{Body: []byte(body), CorrelationId: correlationID}}
}

func TestHandleDelivery(t *testing.T) {
	h := &echoHandler{}
	pusher := &recordingPusher{}

	action := handleDelivery(context.Background(), delivery(`{"user_id": 7, "chat_id": 42, "text": "#142"}`, "c-1"), h, pusher)
	if action != rabbitmq.Ack {
		t.Fatalf("action = %v, want Ack", action)
	}

	if len(h.got) != 1 || h.got[0] != (Query{UserID: 7, ChatID: 42, Text: "#142"}) {
		t.Errorf("handler got %+v", h.got)
	}

	if len(pusher.published) != 1 {
		t.Fatalf("published %d replies", len(pusher.published))
	}
	p := pusher.published[0]
	if p.CorrelationId != "c-1" {
		t.Errorf("CorrelationId = %q", p.CorrelationId)
	}

	var reply queues.ReplyMessage
	if err := json.Unmarshal(p.Body, &reply); err != nil {
		t.Fatalf("reply body: %v", err)
	}
	if reply.ChatID != 42 || len(reply.Messages) != 1 || reply.Messages[0] != "echo #142" {
		t.Errorf("reply = %+v", reply)
	}
}

func TestHandleDeliveryMalformed(t *testing.T) {
	h := &echoHandler{}
	pusher := &recordingPusher{}

	action := handleDelivery(context.Background(), delivery("{", ""), h, pusher)
	if action != rabbitmq.NackDiscard {
		t.Errorf("action = %v, want NackDiscard", action)
	}
	if len(h.got) != 0 || len(pusher.published) != 0 {
		t.Error("malformed query should be dropped")
	}
}

func TestHandleDeliveryPushFailure(t *testing.T) {
	pusher := &recordingPusher{err: errors.New("not connected to a server")}

	action := handleDelivery(context.Background(), delivery(`{"chat_id": 1, "text": "x"}`, ""), &echoHandler{}, pusher)
	if action != rabbitmq.NackRequeue {
		t.Errorf("action = %v, want NackRequeue", action)
	}
}
