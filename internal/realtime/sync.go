// Package realtime keeps seat map projections in sync with the shared
// store.  A SyncClient consumes seat-state deltas from the seats.changed
// fanout exchange and applies them, in the order they were received, to
// every registered seat map.  Duplicate or replayed deltas are harmless
// because SeatMap.Apply is idempotent.
package realtime

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/bus-seat-reservation/internal/engine"
	"github.com/iliyamo/bus-seat-reservation/internal/queue"
)

// SyncClient is the subscription side of the realtime stream.  Run blocks
// in a reconnect loop until Close is called; registration may happen before
// or during Run.  Teardown is deterministic: Close interrupts the consume
// loop and Run returns once the connection is gone.
type SyncClient struct {
	url string

	mu   sync.Mutex
	maps []*engine.SeatMap
	conn *amqp.Connection

	closed chan struct{}
	once   sync.Once
}

// New returns a SyncClient for the given broker URL.
func New(url string) *SyncClient {
	return &SyncClient{url: url, closed: make(chan struct{})}
}

// Register adds a seat map to receive every subsequent delta.
func (s *SyncClient) Register(m *engine.SeatMap) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maps = append(s.maps, m)
}

// Run connects to the broker and consumes deltas until Close is called.
// On connection loss it resubscribes with capped exponential backoff; the
// store remains the source of truth, so a gap is repaired by the next
// snapshot load rather than by replay.
func (s *SyncClient) Run() {
	backoff := time.Second
	for {
		select {
		case <-s.closed:
			return
		default:
		}
		conn, err := amqp.Dial(s.url)
		if err != nil {
			log.Printf("realtime: dial failed: %v; retrying in %s", err, backoff)
			select {
			case <-s.closed:
				return
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		s.mu.Lock()
		s.conn = conn
		s.mu.Unlock()

		if err := s.consumeLoop(conn); err != nil {
			select {
			case <-s.closed:
				return
			default:
				log.Printf("realtime: consume loop ended: %v; resubscribing", err)
			}
		}
		_ = conn.Close()
	}
}

// Close tears the subscription down.  Safe to call more than once; after
// Close returns no further deltas are applied.
func (s *SyncClient) Close() {
	s.once.Do(func() {
		close(s.closed)
		s.mu.Lock()
		if s.conn != nil {
			_ = s.conn.Close()
		}
		s.mu.Unlock()
	})
}

// consumeLoop binds an exclusive queue to the seats.changed exchange and
// applies each delivery in receipt order.  It returns when the deliveries
// channel closes (connection loss or Close).
func (s *SyncClient) consumeLoop(conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.ExchangeDeclare(queue.SeatsExchange, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("exchange declare: %w", err)
	}
	// Server-named exclusive queue: each client instance gets its own
	// copy of the stream and the queue disappears with the connection.
	qd, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	if err := ch.QueueBind(qd.Name, "", queue.SeatsExchange, false, nil); err != nil {
		return fmt.Errorf("queue bind: %w", err)
	}
	msgs, err := ch.Consume(qd.Name, "", false, true, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := s.handleDelivery(d.Body); err != nil {
			log.Printf("realtime: bad delta dropped: %v", err)
			_ = d.Nack(false, false) // malformed, do not requeue
			continue
		}
		_ = d.Ack(false)
	}
	return fmt.Errorf("deliveries channel closed")
}

func (s *SyncClient) handleDelivery(body []byte) error {
	var ev queue.SeatDeltaEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	deltas := ev.Deltas()
	s.mu.Lock()
	targets := append([]*engine.SeatMap(nil), s.maps...)
	s.mu.Unlock()
	for _, m := range targets {
		m.Apply(deltas...)
	}
	return nil
}
