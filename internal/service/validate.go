package service

import (
	"context"
	"fmt"

	"github.com/pribylovaa/poem-comments/internal/audit"
	"github.com/pribylovaa/poem-comments/internal/models"
	"github.com/pribylovaa/poem-comments/pkg/log"
)

// Validate проверяет инварианты иерархии на сохранённых комментариях цели.
// Ничего не исправляет. Возвращает упорядоченный список нарушений (пустой — данные согласованы);
// повторный вызов на тех же данных даёт тот же результат.
func (s *Service) Validate(ctx context.Context, target models.Target) ([]models.Violation, error) {
	const op = "service/validate/Validate"

	lg := log.From(ctx).With("op", op, "target_id", target.ID, "target_type", string(target.Type))

	target, err := normalizeTarget(target)
	if err != nil {
		lg.Warn("invalid target", "err", err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var records []models.RawComment
	err = s.read(ctx, func(ctx context.Context) error {
		var err error
		records, err = s.storage.ScanTarget(ctx, target)
		return err
	})
	if err != nil {
		return nil, storageErr(lg, op, err)
	}

	// Родители, на которые ссылаются, но которых нет среди записей цели:
	// либо висячие ссылки, либо ссылки на чужую цель.
	local := make(map[models.ID]struct{}, len(records))
	for _, r := range records {
		local[r.ID] = struct{}{}
	}

	var missing []models.ID
	seen := make(map[models.ID]struct{})
	for _, r := range records {
		if r.ParentRef.IsZero() {
			continue
		}
		if _, ok := local[r.ParentRef]; ok {
			continue
		}
		if _, ok := seen[r.ParentRef]; ok {
			continue
		}
		seen[r.ParentRef] = struct{}{}
		missing = append(missing, r.ParentRef)
	}

	var external []models.RawComment
	if len(missing) > 0 {
		err = s.read(ctx, func(ctx context.Context) error {
			var err error
			external, err = s.storage.RawByIDs(ctx, missing)
			return err
		})
		if err != nil {
			return nil, storageErr(lg, op, err)
		}
	}

	violations := audit.Validate(target, records, external)
	for _, v := range violations {
		s.metrics.Violations.WithLabelValues(string(v.Kind)).Inc()
	}

	if len(violations) > 0 {
		lg.Warn("hierarchy violations found", "count", len(violations), "records", len(records))
	} else {
		lg.Debug("hierarchy consistent", "records", len(records))
	}

	return violations, nil
}
