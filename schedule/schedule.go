// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package schedule

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/danielhkuo/halalan/clock"
	"github.com/danielhkuo/halalan/models"
)

var jobsBucket = []byte("resolution_jobs")

// ResolveFunc runs winner resolution for one election.
type ResolveFunc func(electionID string, now time.Time) error

// job is the persisted form of one deferred resolution.
type job struct {
	ElectionID string    `json:"election_id"`
	FireAt     time.Time `json:"fire_at"`
	Attempts   int       `json:"attempts"`
}

// Scheduler persists one deferred resolution job per election and fires
// it at the election's voting-end instant. Jobs live in a bbolt file,
// so they survive process restarts; scheduling the same election again
// replaces the existing job. Duplicate fires are harmless because the
// resolver rejects an already-resolved election.
type Scheduler struct {
	store       *bolt.DB
	resolve     ResolveFunc
	clk         clock.Clock
	interval    time.Duration
	maxAttempts int

	mu      sync.Mutex
	started bool
	stop    chan struct{}
	wg      sync.WaitGroup
}

// Open opens (or creates) the job store at path.
func Open(path string, resolve ResolveFunc, clk clock.Clock) (*Scheduler, error) {
	store, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open job store: %w", err)
	}

	err = store.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(jobsBucket)
		return err
	})
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to create jobs bucket: %w", err)
	}

	return &Scheduler{
		store:       store,
		resolve:     resolve,
		clk:         clk,
		interval:    15 * time.Second,
		maxAttempts: 5,
		stop:        make(chan struct{}),
	}, nil
}

// Schedule registers the resolution job for an election, replacing any
// existing job for the same election id.
func (s *Scheduler) Schedule(electionID string, fireAt time.Time) error {
	j := job{ElectionID: electionID, FireAt: fireAt}
	encoded, err := json.Marshal(j)
	if err != nil {
		return fmt.Errorf("failed to encode job: %w", err)
	}

	err = s.store.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(jobsBucket).Put([]byte(electionID), encoded)
	})
	if err != nil {
		return fmt.Errorf("failed to persist job: %w", err)
	}

	slog.Info("resolution scheduled", "election_id", electionID, "fire_at", fireAt)
	return nil
}

// Cancel removes the job for an election, if any. A job that already
// fired cannot be cancelled.
func (s *Scheduler) Cancel(electionID string) error {
	err := s.store.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(jobsBucket).Delete([]byte(electionID))
	})
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	return nil
}

// Pending returns the fire time of the stored job for an election, or
// false when no job exists.
func (s *Scheduler) Pending(electionID string) (time.Time, bool, error) {
	var j job
	var found bool
	err := s.store.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(jobsBucket).Get([]byte(electionID))
		if raw == nil {
			return nil
		}
		found = true
		return json.Unmarshal(raw, &j)
	})
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to read job: %w", err)
	}
	return j.FireAt, found, nil
}

// Start launches the polling loop.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				s.RunDue()
			}
		}
	}()
}

// Stop halts the polling loop and closes the store.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.started {
		close(s.stop)
		s.started = false
	}
	s.mu.Unlock()

	s.wg.Wait()
	s.store.Close()
}

// RunDue fires every job whose instant has passed. Exported so tests
// and a manual admin path can drive the scheduler without the ticker.
func (s *Scheduler) RunDue() {
	now := s.clk.Now()

	var due []job
	err := s.store.View(func(tx *bolt.Tx) error {
		return tx.Bucket(jobsBucket).ForEach(func(_, raw []byte) error {
			var j job
			if err := json.Unmarshal(raw, &j); err != nil {
				return err
			}
			if !now.Before(j.FireAt) {
				due = append(due, j)
			}
			return nil
		})
	})
	if err != nil {
		slog.Error("failed to scan job store", "error", err)
		return
	}

	for _, j := range due {
		s.fire(j, now)
	}
}

// fire runs one due job. Resolution success and AlreadyResolved both
// retire the job; other errors bump the attempt count up to the retry
// budget.
func (s *Scheduler) fire(j job, now time.Time) {
	err := s.resolve(j.ElectionID, now)
	if err == nil || errors.Is(err, models.ErrAlreadyResolved) {
		if err := s.Cancel(j.ElectionID); err != nil {
			slog.Error("failed to retire job", "error", err, "election_id", j.ElectionID)
		}
		return
	}

	j.Attempts++
	slog.Error("resolution attempt failed",
		"election_id", j.ElectionID, "attempt", j.Attempts, "error", err)

	if j.Attempts >= s.maxAttempts {
		slog.Error("resolution abandoned after retries", "election_id", j.ElectionID)
		if err := s.Cancel(j.ElectionID); err != nil {
			slog.Error("failed to retire job", "error", err, "election_id", j.ElectionID)
		}
		return
	}

	encoded, err := json.Marshal(j)
	if err != nil {
		slog.Error("failed to encode job", "error", err, "election_id", j.ElectionID)
		return
	}
	err = s.store.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(jobsBucket).Put([]byte(j.ElectionID), encoded)
	})
	if err != nil {
		slog.Error("failed to persist job attempts", "error", err, "election_id", j.ElectionID)
	}
}
