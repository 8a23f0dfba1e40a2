package service

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/pribylovaa/poem-comments/internal/hierarchy"
	"github.com/pribylovaa/poem-comments/internal/models"
	"github.com/pribylovaa/poem-comments/pkg/log"
)

// ListTreeInput — параметры постраничной выдачи дерева по цели.
// SortKey/SortDir приходят как есть из запроса: пусто -> createdAt / desc.
type ListTreeInput struct {
	Target   models.Target
	Page     int64
	PageSize int64
	SortKey  string
	SortDir  string
}

// TreePage — страница корней с полными поддеревьями.
// Total считает только корневые комментарии цели.
type TreePage struct {
	Items    []models.CommentNode
	Total    int64
	Page     int64
	PageSize int64
}

// ListTree возвращает страницу корневых комментариев цели, каждый — со всем поддеревом.
//
// Пагинируются только корни; ответы не пагинируются, глубина ограничена limits.max_depth.
// Поддеревья загружаются одним запросом по path на корень, параллельно
// (не больше limits.hydrate_concurrency запросов одновременно).
// Ответы с отсутствующим родителем в дерево не попадают: пишется Warn и растёт счётчик.
func (s *Service) ListTree(ctx context.Context, in ListTreeInput) (*TreePage, error) {
	const op = "service/tree/ListTree"

	lg := log.From(ctx).With(
		"op", op,
		"target_id", in.Target.ID,
		"target_type", string(in.Target.Type),
		"page", in.Page,
		"size", in.PageSize,
	)

	target, err := normalizeTarget(in.Target)
	if err != nil {
		lg.Warn("invalid target", "err", err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	p, err := s.pageParams(in.Page, in.PageSize)
	if err != nil {
		lg.Warn("invalid page", "err", err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	p.SortKey, p.SortDir, err = parseSort(in.SortKey, in.SortDir)
	if err != nil {
		lg.Warn("invalid sort", "err", err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var (
		roots []models.Comment
		total int64
	)
	err = s.read(ctx, func(ctx context.Context) error {
		var err error
		roots, total, err = s.storage.FindTopLevel(ctx, target, p)
		return err
	})
	if err != nil {
		return nil, storageErr(lg, op, err)
	}

	// Порядок корней не зависит от адаптера хранилища.
	hierarchy.SortComments(roots, p.SortKey, p.SortDir)

	descendants, err := s.hydrate(ctx, target, roots)
	if err != nil {
		return nil, storageErr(lg, op, err)
	}

	nodes, orphans := hierarchy.BuildTree(roots, descendants)
	for _, o := range orphans {
		lg.Warn("orphan reply dropped from tree",
			"comment_id", o.Comment.ID.String(),
			"missing_parent", o.MissingParent.String(),
		)
	}
	s.metrics.OrphansDropped.Add(float64(len(orphans)))

	return &TreePage{
		Items:    nodes,
		Total:    total,
		Page:     p.Page,
		PageSize: p.PageSize,
	}, nil
}

// hydrate загружает потомков всех корней страницы с ограниченным параллелизмом.
// Порядок результата не важен: BuildTree детерминирован.
func (s *Service) hydrate(ctx context.Context, target models.Target, roots []models.Comment) ([]models.Comment, error) {
	if len(roots) == 0 {
		return nil, nil
	}

	perRoot := make([][]models.Comment, len(roots))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Limits.HydrateConcurrency)

	for i, root := range roots {
		g.Go(func() error {
			return s.read(gctx, func(ctx context.Context) error {
				items, err := s.storage.FindDescendants(ctx, target, root.ID)
				if err != nil {
					return err
				}

				perRoot[i] = items
				return nil
			})
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var n int
	for _, items := range perRoot {
		n += len(items)
	}

	out := make([]models.Comment, 0, n)
	for _, items := range perRoot {
		out = append(out, items...)
	}

	return out, nil
}

// parseSort разбирает ключ и направление сортировки корней.
func parseSort(key, dir string) (models.SortKey, models.SortDir, error) {
	k := models.SortKey(strings.TrimSpace(key))
	if k == "" {
		k = models.SortByCreatedAt
	}

	if !k.Valid() {
		return "", 0, fmt.Errorf("%w: unknown sort key %q", ErrInvalidArgument, key)
	}

	switch strings.ToLower(strings.TrimSpace(dir)) {
	case "", "desc":
		return k, models.SortDesc, nil
	case "asc":
		return k, models.SortAsc, nil
	default:
		return "", 0, fmt.Errorf("%w: unknown sort order %q", ErrInvalidArgument, dir)
	}
}
