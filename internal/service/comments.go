package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pribylovaa/poem-comments/internal/models"
	"github.com/pribylovaa/poem-comments/pkg/log"
)

// Входные структуры сервисного слоя.

// CreateCommentInput — создание корневого комментария или ответа.
// ParentID — сырая ссылка из запроса: пустая строка означает корень,
// иначе обязан быть корректным идентификатором.
type CreateCommentInput struct {
	Target   models.Target
	ParentID string
	UserID   int64
	Content  string
}

// defaultListLimit — размер «горячих» и «последних», если limit не задан.
const defaultListLimit = 10

// CreateComment — бизнес-операция создания комментария.
//
// Валидация:
//   - targetId обязателен, targetType из допустимого множества (ErrInvalidArgument);
//   - Content нормализуется (TrimSpace): пусто -> ErrEmptyContent, длиннее лимита -> ErrContentTooLong;
//   - ParentID: пусто -> корень, иначе канонический id (ErrInvalidReference).
//
// Поведение/ошибки:
//   - ErrTargetNotFound — контент цели не существует;
//   - ErrParentNotFound — родителя нет или он на другой цели;
//   - ErrMaxDepthExceeded — превышена максимальная глубина;
//   - ErrCancelled / ErrStorageUnavailable / ErrInternal — отказы хранилища.
func (s *Service) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	const op = "service/comments/CreateComment"

	lg := log.From(ctx).With(
		"op", op,
		"target_id", in.Target.ID,
		"target_type", string(in.Target.Type),
		"parent_id", in.ParentID,
		"user_id", in.UserID,
	)

	target, err := normalizeTarget(in.Target)
	if err != nil {
		lg.Warn("invalid target", "err", err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	in.Content = strings.TrimSpace(in.Content)
	if in.Content == "" {
		lg.Warn("empty content")
		return nil, fmt.Errorf("%s: %w", op, ErrEmptyContent)
	}

	if n := utf8.RuneCountInString(in.Content); n > s.cfg.Limits.MaxContent {
		lg.Warn("content too long", "len", n)
		return nil, fmt.Errorf("%s: %w", op, ErrContentTooLong)
	}

	parentID, err := models.ParseParentRef(in.ParentID)
	if err != nil {
		lg.Warn("invalid parent reference")
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if in.UserID < 0 {
		lg.Warn("invalid argument: negative user_id")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	exists, err := s.content.TargetExists(ctx, target)
	if err != nil {
		return nil, storageErr(lg, op, err)
	}

	if !exists {
		lg.Warn("target not found")
		return nil, fmt.Errorf("%s: %w", op, ErrTargetNotFound)
	}

	result, err := s.storage.CreateComment(ctx, models.Comment{
		TargetID:   target.ID,
		TargetType: target.Type,
		UserID:     in.UserID,
		Content:    in.Content,
		ParentID:   parentID,
	})
	if err != nil {
		return nil, storageErr(lg, op, err)
	}

	s.metrics.CommentsCreated.Inc()
	lg.Info("comment created", "id", result.ID.String(), "level", result.Level)

	return result, nil
}

// CommentByID возвращает комментарий по идентификатору.
func (s *Service) CommentByID(ctx context.Context, rawID string) (*models.Comment, error) {
	const op = "service/comments/CommentByID"

	lg := log.From(ctx).With("op", op, "id", rawID)

	id, err := models.ParseID(rawID)
	if err != nil {
		lg.Warn("invalid id")
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var out *models.Comment
	err = s.read(ctx, func(ctx context.Context) error {
		var err error
		out, err = s.storage.CommentByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, storageErr(lg, op, err)
	}

	return out, nil
}

// DeleteComment удаляет комментарий от имени userID.
//   - удалять может только автор: userID <= 0 или чужой комментарий -> ErrForbidden;
//   - cascade=false и есть ответы -> ErrHasDescendants, ничего не удаляется;
//   - cascade=true -> удаляется всё поддерево атомарно.
//
// Возвращает число удалённых записей.
func (s *Service) DeleteComment(ctx context.Context, rawID string, userID int64, cascade bool) (int64, error) {
	const op = "service/comments/DeleteComment"

	lg := log.From(ctx).With("op", op, "id", rawID, "user_id", userID, "cascade", cascade)

	id, err := models.ParseID(rawID)
	if err != nil {
		lg.Warn("invalid id")
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if userID <= 0 {
		lg.Warn("anonymous delete rejected")
		return 0, fmt.Errorf("%s: %w", op, ErrForbidden)
	}

	n, err := s.storage.DeleteComment(ctx, id, userID, cascade)
	if err != nil {
		return 0, storageErr(lg, op, err)
	}

	s.metrics.CommentsDeleted.Add(float64(n))
	lg.Info("comment deleted", "deleted", n)

	return n, nil
}

// LikeComment увеличивает likeCount на 1.
func (s *Service) LikeComment(ctx context.Context, rawID string) (*models.Comment, error) {
	return s.adjustLikes(ctx, "service/comments/LikeComment", rawID, 1)
}

// UnlikeComment уменьшает likeCount на 1 (не ниже нуля).
func (s *Service) UnlikeComment(ctx context.Context, rawID string) (*models.Comment, error) {
	return s.adjustLikes(ctx, "service/comments/UnlikeComment", rawID, -1)
}

func (s *Service) adjustLikes(ctx context.Context, op, rawID string, delta int32) (*models.Comment, error) {
	lg := log.From(ctx).With("op", op, "id", rawID)

	id, err := models.ParseID(rawID)
	if err != nil {
		lg.Warn("invalid id")
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out, err := s.storage.AdjustLikes(ctx, id, delta)
	if err != nil {
		return nil, storageErr(lg, op, err)
	}

	return out, nil
}

// CountComments — число всех комментариев цели (включая ответы).
func (s *Service) CountComments(ctx context.Context, target models.Target) (int64, error) {
	const op = "service/comments/CountComments"

	lg := log.From(ctx).With("op", op, "target_id", target.ID, "target_type", string(target.Type))

	target, err := normalizeTarget(target)
	if err != nil {
		lg.Warn("invalid target", "err", err)
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	var n int64
	err = s.read(ctx, func(ctx context.Context) error {
		var err error
		n, err = s.storage.CountByTarget(ctx, target)
		return err
	})
	if err != nil {
		return 0, storageErr(lg, op, err)
	}

	return n, nil
}

// HotComments — комментарии цели с наибольшим likeCount (плоский список).
// limit=0 -> 10; больше limits.max -> limits.max.
func (s *Service) HotComments(ctx context.Context, target models.Target, limit int64) ([]models.Comment, error) {
	return s.flatList(ctx, "service/comments/HotComments", target, limit, s.storage.ListHot)
}

// LatestComments — последние комментарии цели (плоский список, новые сверху).
// Лимит — как у HotComments.
func (s *Service) LatestComments(ctx context.Context, target models.Target, limit int64) ([]models.Comment, error) {
	return s.flatList(ctx, "service/comments/LatestComments", target, limit, s.storage.ListLatest)
}

func (s *Service) flatList(
	ctx context.Context,
	op string,
	target models.Target,
	limit int64,
	list func(ctx context.Context, target models.Target, limit int64) ([]models.Comment, error),
) ([]models.Comment, error) {
	lg := log.From(ctx).With("op", op, "target_id", target.ID, "target_type", string(target.Type), "limit", limit)

	target, err := normalizeTarget(target)
	if err != nil {
		lg.Warn("invalid target", "err", err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	switch {
	case limit < 0:
		lg.Warn("invalid argument: negative limit")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	case limit == 0:
		limit = defaultListLimit
	case limit > s.cfg.Limits.Max:
		limit = s.cfg.Limits.Max
	}

	var out []models.Comment
	err = s.read(ctx, func(ctx context.Context) error {
		var err error
		out, err = list(ctx, target, limit)
		return err
	})
	if err != nil {
		return nil, storageErr(lg, op, err)
	}

	return out, nil
}

// CommentPage — страница плоского списка комментариев.
type CommentPage struct {
	Items    []models.Comment
	Total    int64
	Page     int64
	PageSize int64
}

// UserComments — страница комментариев автора, новые сверху.
func (s *Service) UserComments(ctx context.Context, userID, page, size int64) (*CommentPage, error) {
	const op = "service/comments/UserComments"

	lg := log.From(ctx).With("op", op, "user_id", userID, "page", page, "size", size)

	if userID <= 0 {
		lg.Warn("invalid argument: user_id must be > 0")
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidArgument)
	}

	p, err := s.pageParams(page, size)
	if err != nil {
		lg.Warn("invalid page", "err", err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var (
		items []models.Comment
		total int64
	)
	err = s.read(ctx, func(ctx context.Context) error {
		var err error
		items, total, err = s.storage.ListByUser(ctx, userID, p)
		return err
	})
	if err != nil {
		return nil, storageErr(lg, op, err)
	}

	return &CommentPage{Items: items, Total: total, Page: p.Page, PageSize: p.PageSize}, nil
}
