// Package progress is the Redis-backed run tracker. Records are ephemeral:
// each run lives under its own key with a TTL, so clients can poll a run's
// stage while it executes and fetch the result bundle for a while after.
package progress

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/davitk/edureel/internal/models"
)

// ErrNotFound is returned when a run id is unknown or its record expired.
var ErrNotFound = fmt.Errorf("run not found")

type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func New(redisURL string, ttl time.Duration) (*Store, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Store{client: client, ttl: ttl}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

func runKey(id uuid.UUID) string {
	return "run:" + id.String()
}

// Create registers a new queued run and returns its record.
func (s *Store) Create(ctx context.Context, topic string) (*models.Run, error) {
	now := time.Now().UTC()
	run := &models.Run{
		ID:        uuid.New(),
		Topic:     topic,
		Stage:     models.RunStageQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.save(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

// SetStage advances a run to the given stage.
func (s *Store) SetStage(ctx context.Context, id uuid.UUID, stage models.RunStage) error {
	return s.update(ctx, id, func(run *models.Run) {
		run.Stage = stage
	})
}

// Complete marks a run finished and attaches its result bundle.
func (s *Store) Complete(ctx context.Context, id uuid.UUID, result *models.RunResult) error {
	return s.update(ctx, id, func(run *models.Run) {
		run.Stage = models.RunStageCompleted
		run.Result = result
		run.Error = nil
	})
}

// Fail marks a run failed with the stage's terminal error message.
func (s *Store) Fail(ctx context.Context, id uuid.UUID, runErr error) error {
	return s.update(ctx, id, func(run *models.Run) {
		msg := runErr.Error()
		run.Stage = models.RunStageFailed
		run.Error = &msg
	})
}

// Get fetches a run record by id.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*models.Run, error) {
	data, err := s.client.Get(ctx, runKey(id)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch run: %w", err)
	}

	var run models.Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run: %w", err)
	}
	return &run, nil
}

func (s *Store) update(ctx context.Context, id uuid.UUID, mutate func(*models.Run)) error {
	run, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	mutate(run)
	run.UpdatedAt = time.Now().UTC()
	return s.save(ctx, run)
}

func (s *Store) save(ctx context.Context, run *models.Run) error {
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}
	return s.client.Set(ctx, runKey(run.ID), data, s.ttl).Err()
}
