// service содержит бизнес-логику сервиса комментариев.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pribylovaa/poem-comments/internal/config"
	"github.com/pribylovaa/poem-comments/internal/content"
	"github.com/pribylovaa/poem-comments/internal/metrics"
	"github.com/pribylovaa/poem-comments/internal/models"
	"github.com/pribylovaa/poem-comments/internal/storage"
)

var (
	// ErrInvalidReference — идентификатор (id/parentId) не в каноническом формате.
	ErrInvalidReference = models.ErrInvalidReference
	// ErrTargetNotFound — комментируемый контент не существует.
	ErrTargetNotFound = errors.New("target not found")
	// ErrParentNotFound — родитель не найден на той же цели.
	ErrParentNotFound = errors.New("parent not found")
	// ErrEmptyContent — текст комментария пуст после TrimSpace.
	ErrEmptyContent = errors.New("empty content")
	// ErrContentTooLong — текст длиннее limits.max_content символов.
	ErrContentTooLong = errors.New("content too long")
	// ErrMaxDepthExceeded — превышена максимально допустимая глубина.
	ErrMaxDepthExceeded = errors.New("max depth exceeded")
	// ErrHasDescendants — удаление без каскада, а у комментария есть ответы.
	ErrHasDescendants = errors.New("comment has replies")
	// ErrNotFound — сущность отсутствует в хранилище.
	ErrNotFound = errors.New("not found")
	// ErrConflict — конфликт уникальности.
	ErrConflict = errors.New("conflict")
	// ErrInvalidArgument — неверные входные параметры запроса к сервису.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrForbidden — операция над чужим комментарием.
	ErrForbidden = errors.New("forbidden")
	// ErrCancelled — запрос отменён или истёк дедлайн; побочных эффектов нет.
	ErrCancelled = errors.New("cancelled")
	// ErrDeadlineExceeded — частный случай ErrCancelled: истёк дедлайн запроса.
	ErrDeadlineExceeded = fmt.Errorf("%w: deadline exceeded", ErrCancelled)
	// ErrStorageUnavailable — хранилище временно недоступно.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrInconsistentState — аудит нашёл нарушения инвариантов иерархии.
	ErrInconsistentState = errors.New("inconsistent state")
	// ErrInternal — прочие внутренние ошибки.
	ErrInternal = errors.New("internal")
)

// Service — бизнес-логика комментариев.
type Service struct {
	storage storage.Storage
	content content.Checker
	cfg     config.Config
	metrics *metrics.Metrics
}

// New создает новый экземпляр Service.
func New(storage storage.Storage, checker content.Checker, cfg config.Config, m *metrics.Metrics) *Service {
	return &Service{
		storage: storage,
		content: checker,
		cfg:     cfg,
		metrics: m,
	}
}

// storageErr транслирует ошибку стораджа в сентинел сервиса и логирует её:
// клиентские ситуации — Warn, отказы хранилища — Error.
func storageErr(lg *slog.Logger, op string, err error) error {
	var (
		target error
		client = true
	)

	switch {
	case errors.Is(err, storage.ErrNotFound):
		target = ErrNotFound
	case errors.Is(err, storage.ErrParentNotFound):
		target = ErrParentNotFound
	case errors.Is(err, storage.ErrMaxDepthExceeded):
		target = ErrMaxDepthExceeded
	case errors.Is(err, storage.ErrHasDescendants):
		target = ErrHasDescendants
	case errors.Is(err, storage.ErrConflict):
		target = ErrConflict
	case errors.Is(err, storage.ErrForbidden):
		target = ErrForbidden
	case errors.Is(err, context.DeadlineExceeded):
		target = ErrDeadlineExceeded
	case errors.Is(err, storage.ErrCancelled),
		errors.Is(err, context.Canceled):
		target = ErrCancelled
	case errors.Is(err, storage.ErrUnavailable):
		target, client = ErrStorageUnavailable, false
	default:
		target, client = ErrInternal, false
	}

	if client {
		lg.Warn(target.Error())
	} else {
		lg.Error("storage error", "err", err)
	}

	return fmt.Errorf("%s: %w", op, target)
}

// normalizeTarget проверяет пару (targetId, targetType).
func normalizeTarget(t models.Target) (models.Target, error) {
	t = t.Normalize()

	if t.ID == "" {
		return t, fmt.Errorf("%w: empty targetId", ErrInvalidArgument)
	}

	if !t.Type.Valid() {
		return t, fmt.Errorf("%w: unknown targetType %q", ErrInvalidArgument, t.Type)
	}

	return t, nil
}

// pageParams приводит номер и размер страницы к допустимым значениям.
// page=0 -> 1; size=0 -> limits.default; size > limits.max -> limits.max.
func (s *Service) pageParams(page, size int64) (models.PageParams, error) {
	if page < 0 {
		return models.PageParams{}, fmt.Errorf("%w: page must be >= 1", ErrInvalidArgument)
	}
	if page == 0 {
		page = 1
	}

	if size < 0 {
		return models.PageParams{}, fmt.Errorf("%w: size must be > 0", ErrInvalidArgument)
	}
	if size == 0 {
		size = s.cfg.Limits.Default
	}
	if size > s.cfg.Limits.Max {
		size = s.cfg.Limits.Max
	}

	return models.PageParams{Page: page, PageSize: size}, nil
}
