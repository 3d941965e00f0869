package redis

import (
	"MathBot/internal/core/domain"
	"MathBot/internal/core/ports"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const stepPrefix = "mathbot:step:"

// stepStore keeps one JSON-encoded step per chat. Keys never expire: a
// pending step waits for the user as long as it takes.
type stepStore struct {
	client *goredis.Client
	log    zerolog.Logger
}

var _ ports.StepStore = (*stepStore)(nil)

// NewClient creates a go-redis client and checks the connection.
func NewClient(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// NewStepStore creates a Redis-backed step store.
func NewStepStore(client *goredis.Client, baseLogger *zerolog.Logger) ports.StepStore {
	return &stepStore{
		client: client,
		log:    baseLogger.With().Str("component", "redis_step_store").Logger(),
	}
}

func (s *stepStore) Save(ctx context.Context, step *domain.PendingStep) error {
	payload, err := json.Marshal(step)
	if err != nil {
		return fmt.Errorf("encode step: %w", err)
	}
	if err := s.client.Set(ctx, stepKey(step.ChatID), payload, 0).Err(); err != nil {
		s.log.Error().Err(err).Int64("chat_id", step.ChatID).Msg("Failed to save step")
		return fmt.Errorf("save step: %w", err)
	}
	return nil
}

// Take uses GETDEL so a step is handed out at most once.
func (s *stepStore) Take(ctx context.Context, chatID int64) (*domain.PendingStep, error) {
	payload, err := s.client.GetDel(ctx, stepKey(chatID)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("take step: %w", err)
	}

	var step domain.PendingStep
	if err := json.Unmarshal(payload, &step); err != nil {
		s.log.Warn().Err(err).Int64("chat_id", chatID).Msg("Dropping undecodable step")
		return nil, fmt.Errorf("decode step: %w", err)
	}
	return &step, nil
}

func (s *stepStore) Delete(ctx context.Context, chatID int64) error {
	if err := s.client.Del(ctx, stepKey(chatID)).Err(); err != nil {
		return fmt.Errorf("delete step: %w", err)
	}
	return nil
}

func stepKey(chatID int64) string {
	return stepPrefix + strconv.FormatInt(chatID, 10)
}
