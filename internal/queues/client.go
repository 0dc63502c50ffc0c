package queues

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// acknowledgement: this module is taken from amqp091-go _examples
// see: https://github.com/rabbitmq/amqp091-go/blob/main/_examples/client/client.go

const (
	reconnectDelay = 5 * time.Second
	reopenDelay    = 2 * time.Second
	resendDelay    = 5 * time.Second
	publishTimeout = 30 * time.Second
)

var (
	errNotConnected  = errors.New("reply publisher is not connected")
	errAlreadyClosed = errors.New("reply publisher already closed")
	errShutdown      = errors.New("reply publisher is shutting down")
)

// Topology names the exchange replies are published to and the queue user
// queries are read from.
type Topology struct {
	ReplyExchange string
	QueryQueue    string
}

const (
	DefaultReplyExchange = "forecast.reply"
	DefaultQueryQueue    = "forecast.query"
	ReplyRoutingKey      = "reply.event.created"
)

func (t Topology) withDefaults() Topology {
	if t.ReplyExchange == "" {
		t.ReplyExchange = DefaultReplyExchange
	}
	if t.QueryQueue == "" {
		t.QueryQueue = DefaultQueryQueue
	}
	return t
}

// Client publishes bot replies on a confirming channel. It owns its own
// connection and keeps reopening it until Close.
type Client struct {
	topology Topology
	m        *sync.Mutex

	connection      *amqp.Connection
	channel         *amqp.Channel
	done            chan struct{}
	notifyConnClose chan *amqp.Error
	notifyChanClose chan *amqp.Error
	notifyConfirm   chan amqp.Confirmation
	isReady         bool
	closed          bool
}

// New returns a reply publisher that connects to addr in the background.
// PushReply fails with errNotConnected until the topology is declared.
func New(addr string, topology Topology) *Client {
	client := &Client{
		topology: topology.withDefaults(),
		m:        &sync.Mutex{},
		done:     make(chan struct{}),
	}
	go client.maintain(addr)
	return client
}

func (client *Client) setReady(ready bool) {
	client.m.Lock()
	client.isReady = ready
	client.m.Unlock()
}

func (client *Client) ready() bool {
	client.m.Lock()
	defer client.m.Unlock()
	return client.isReady
}

// maintain dials until a connection sticks, then hands over to
// watchChannel until the connection drops.
func (client *Client) maintain(addr string) {
	for {
		client.setReady(false)
		slog.Info("Connecting reply publisher", "exchange", client.topology.ReplyExchange)

		conn, err := client.connect(addr)
		if err != nil {
			slog.Warn("Reply publisher cannot connect", "error", err, "delay", reconnectDelay)
			select {
			case <-client.done:
				return
			case <-time.After(reconnectDelay):
			}
			continue
		}

		if closed := client.watchChannel(conn); closed {
			return
		}
	}
}

func (client *Client) connect(addr string) (*amqp.Connection, error) {
	conn, err := amqp.Dial(addr)
	if err != nil {
		return nil, err
	}

	client.m.Lock()
	defer client.m.Unlock()
	if client.closed {
		conn.Close()
		return nil, errShutdown
	}
	client.connection = conn
	client.notifyConnClose = make(chan *amqp.Error, 1)
	conn.NotifyClose(client.notifyConnClose)
	return conn, nil
}

// watchChannel keeps a reply channel open on conn. It reports true once
// the publisher is closed and false when conn is gone.
func (client *Client) watchChannel(conn *amqp.Connection) bool {
	for {
		client.setReady(false)

		if err := client.openChannel(conn); err != nil {
			slog.Warn("Reply publisher cannot open channel", "error", err, "delay", reopenDelay)
			select {
			case <-client.done:
				return true
			case <-client.notifyConnClose:
				slog.Warn("Reply publisher connection lost")
				return false
			case <-time.After(reopenDelay):
			}
			continue
		}

		select {
		case <-client.done:
			return true
		case err := <-client.notifyConnClose:
			slog.Warn("Reply publisher connection lost", "error", err)
			return false
		case err := <-client.notifyChanClose:
			slog.Warn("Reply channel closed, reopening", "error", err)
		}
	}
}

// openChannel opens a confirming channel and declares the reply exchange
// and the query queue.
func (client *Client) openChannel(conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	if err := ch.Confirm(false); err != nil {
		return err
	}
	if err := declareTopology(ch, client.topology); err != nil {
		return err
	}

	client.m.Lock()
	client.channel = ch
	client.notifyChanClose = make(chan *amqp.Error, 1)
	client.notifyConfirm = make(chan amqp.Confirmation, 1)
	ch.NotifyClose(client.notifyChanClose)
	ch.NotifyPublish(client.notifyConfirm)
	client.isReady = true
	client.m.Unlock()

	slog.Info("Reply publisher ready", "exchange", client.topology.ReplyExchange, "queue", client.topology.QueryQueue)
	return nil
}

// PushReply publishes an encoded reply to the reply exchange and blocks
// until the broker confirms it. A nacked or failed publish is resent.
func (client *Client) PushReply(data amqp.Publishing) error {
	if !client.ready() {
		return errNotConnected
	}

	for {
		confirms, err := client.publish(data)
		if err != nil {
			slog.Warn("Reply publish failed, resending", "error", err, "correlation_id", data.CorrelationId)
			select {
			case <-client.done:
				return errShutdown
			case <-time.After(resendDelay):
			}
			continue
		}

		select {
		case confirm := <-confirms:
			if confirm.Ack {
				slog.Debug("Reply confirmed", "delivery_tag", confirm.DeliveryTag, "correlation_id", data.CorrelationId)
				return nil
			}
			slog.Warn("Reply nacked by broker, resending", "correlation_id", data.CorrelationId)
		case <-client.done:
			return errShutdown
		}
	}
}

// publish sends data on the current channel and returns that channel's
// confirmation stream.
func (client *Client) publish(data amqp.Publishing) (<-chan amqp.Confirmation, error) {
	client.m.Lock()
	if !client.isReady {
		client.m.Unlock()
		return nil, errNotConnected
	}
	ch, confirms := client.channel, client.notifyConfirm
	client.m.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	return confirms, ch.PublishWithContext(
		ctx,
		client.topology.ReplyExchange,
		ReplyRoutingKey,
		false, // mandatory
		false, // immediate
		data,
	)
}

// Topology reports the names the client declares.
func (client *Client) Topology() Topology {
	return client.topology
}

// Close stops reconnecting and closes whatever channel and connection are
// open. It works before the first connection succeeds too.
func (client *Client) Close() error {
	client.m.Lock()
	defer client.m.Unlock()

	if client.closed {
		return errAlreadyClosed
	}
	client.closed = true
	client.isReady = false
	close(client.done)

	var errs []error
	if client.channel != nil {
		errs = append(errs, client.channel.Close())
	}
	if client.connection != nil {
		errs = append(errs, client.connection.Close())
	}
	return errors.Join(errs...)
}

func declareTopology(ch *amqp.Channel, t Topology) error {
	err := ch.ExchangeDeclare(
		t.ReplyExchange, // name
		"topic",         // type
		true,            // durable
		false,           // auto-deleted
		false,           // internal
		false,           // no-wait
		nil,             // arguments
	)
	if err != nil {
		return err
	}

	_, err = ch.QueueDeclare(
		t.QueryQueue, // name
		true,         // durable
		false,        // delete when unused
		false,        // exclusive
		false,        // no-wait
		nil,          // arguments
	)
	return err
}
