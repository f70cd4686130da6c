// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Template kinds for outbound messages.
const (
	TemplateVotingCredential = "voting_credential"
	TemplateVerificationCode = "verification_code"
	TemplateCandidacyStatus  = "candidacy_status"
	TemplatePartyListStatus  = "party_list_status"
	TemplateElectionResults  = "election_results"
)

// ErrQueueFull is returned by Enqueue when the queue buffer is full.
// Callers log and continue; notifications are best-effort.
var ErrQueueFull = errors.New("notification queue full")

// ErrStopped is returned by Enqueue after Stop.
var ErrStopped = errors.New("notification queue stopped")

// Message is one outbound notification.
type Message struct {
	ID        string
	Recipient string
	Template  string
	Payload   map[string]string
}

// Sender delivers one message. Implementations must be safe for
// concurrent use.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Queue is a bounded at-least-once dispatch queue. Domain operations
// enqueue and move on; worker goroutines deliver in the background with
// a bounded retry, so a sender outage never rolls back a committed
// mutation and never retries forever.
type Queue struct {
	sender   Sender
	ch       chan Message
	workers  int
	attempts int
	backoff  time.Duration

	mu      sync.Mutex
	stopped bool
	wg      sync.WaitGroup
}

// NewQueue creates a queue with the given worker count and buffer size.
func NewQueue(sender Sender, workers, buffer int) *Queue {
	if workers < 1 {
		workers = 1
	}
	if buffer < 1 {
		buffer = 64
	}
	return &Queue{
		sender:   sender,
		ch:       make(chan Message, buffer),
		workers:  workers,
		attempts: 3,
		backoff:  2 * time.Second,
	}
}

// Start launches the worker goroutines.
func (q *Queue) Start() {
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
}

// Stop closes the queue and waits for in-flight deliveries to finish.
// Buffered messages are drained before Stop returns.
func (q *Queue) Stop() {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return
	}
	q.stopped = true
	close(q.ch)
	q.mu.Unlock()

	q.wg.Wait()
}

// Enqueue hands a message to the dispatch workers. Returns ErrQueueFull
// without blocking when the buffer is full.
func (q *Queue) Enqueue(msg Message) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.stopped {
		return ErrStopped
	}

	select {
	case q.ch <- msg:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *Queue) worker() {
	defer q.wg.Done()

	for msg := range q.ch {
		q.deliver(msg)
	}
}

// deliver attempts a bounded number of sends, then gives up with a log
// line. Delivery failure is terminal for the message; the domain
// mutation that enqueued it already committed.
func (q *Queue) deliver(msg Message) {
	var err error
	for attempt := 1; attempt <= q.attempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err = q.sender.Send(ctx, msg)
		cancel()
		if err == nil {
			slog.Info("notification delivered",
				"message_id", msg.ID, "template", msg.Template, "attempt", attempt)
			return
		}
		if attempt < q.attempts {
			time.Sleep(q.backoff * time.Duration(attempt))
		}
	}

	slog.Error("notification dropped after retries",
		"message_id", msg.ID, "template", msg.Template,
		"recipient", msg.Recipient, "error", err)
}
