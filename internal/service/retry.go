package service

import (
	"context"
	"errors"

	"github.com/cenkalti/backoff/v4"

	"github.com/pribylovaa/poem-comments/internal/storage"
)

// read выполняет чтение с повтором, пока хранилище отвечает storage.ErrUnavailable.
// Остальные ошибки не повторяются. Записи через read не проходят никогда.
// Retry.MaxElapsed <= 0 — одна попытка без повторов.
func (s *Service) read(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.cfg.Retry.MaxElapsed <= 0 || s.cfg.Retry.InitialInterval <= 0 {
		return fn(ctx)
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = s.cfg.Retry.InitialInterval
	eb.MaxElapsedTime = s.cfg.Retry.MaxElapsed

	attempt := 0
	err := backoff.Retry(func() error {
		if attempt > 0 {
			s.metrics.StorageRetries.Inc()
		}
		attempt++

		err := fn(ctx)
		if err == nil || errors.Is(err, storage.ErrUnavailable) {
			return err
		}

		return backoff.Permanent(err)
	}, backoff.WithContext(eb, ctx))

	// Отмена во время ожидания между попытками.
	if err != nil && ctx.Err() != nil && !errors.Is(err, storage.ErrCancelled) {
		return errors.Join(storage.ErrCancelled, err)
	}

	return err
}
