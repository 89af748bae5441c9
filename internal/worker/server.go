package worker

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
	"github.com/pilab-dev/fitlink/config"
	"github.com/rs/zerolog/log"
)

const maxRetryDelay = 10 * time.Minute

// RedisOpt converts the Redis settings into asynq connection options.
func RedisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
}

// NewServer creates an asynq server processing sync tasks.
func NewServer(redisOpt asynq.RedisConnOpt, concurrency int) *asynq.Server {
	return asynq.NewServer(redisOpt, asynq.Config{
		Concurrency:    concurrency,
		RetryDelayFunc: retryDelay,
		ErrorHandler: asynq.ErrorHandlerFunc(func(_ context.Context, task *asynq.Task, err error) {
			log.Error().Err(err).Str("type", task.Type()).Bytes("payload", task.Payload()).Msg("Task failed")
		}),
		ShutdownTimeout: 30 * time.Second,
	})
}

// retryDelay backs off exponentially from one second, capped at maxRetryDelay.
func retryDelay(n int, _ error, _ *asynq.Task) time.Duration {
	if n > 20 {
		return maxRetryDelay
	}
	delay := time.Duration(1<<uint(n)) * time.Second
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	return delay
}
