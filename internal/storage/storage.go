package storage

import (
	"context"
	"errors"

	"github.com/pribylovaa/poem-comments/internal/models"
)

var (
	// ErrNotFound — сущность отсутствует в хранилище.
	ErrNotFound = errors.New("not found")
	// ErrConflict — конфликт уникальности.
	ErrConflict = errors.New("conflict")
	// ErrParentNotFound — указан parent_id, но родитель не найден на той же цели.
	ErrParentNotFound = errors.New("parent not found")
	// ErrMaxDepthExceeded — превышена максимально допустимая глубина.
	ErrMaxDepthExceeded = errors.New("max depth exceeded")
	// ErrHasDescendants — удаление без каскада, а у комментария есть потомки.
	ErrHasDescendants = errors.New("has descendants")
	// ErrCancelled — операция прервана отменой/дедлайном контекста; транзакция откатилась.
	ErrCancelled = errors.New("cancelled")
	// ErrUnavailable — хранилище временно недоступно (сеть, выбор сервера).
	ErrUnavailable = errors.New("storage unavailable")
	// ErrForbidden — операция над чужим комментарием.
	ErrForbidden = errors.New("forbidden")
)

// Storage описывает операции над комментариями.
type Storage interface {
	// CreateComment создаёт корневой комментарий или ответ атомарно.
	// Входной Comment должен содержать TargetID, TargetType, Content, ParentID (NoParent для корня), UserID.
	// Вычисляются хранилищем: ID, Level, Path, ReplyCount, LikeCount, CreatedAt.
	// Возможные ошибки: ErrParentNotFound, ErrMaxDepthExceeded, ErrConflict, ErrCancelled, ErrUnavailable.
	CreateComment(ctx context.Context, comment models.Comment) (*models.Comment, error)

	// CommentByID возвращает комментарий. Если записи нет — ErrNotFound.
	CommentByID(ctx context.Context, id models.ID) (*models.Comment, error)

	// FindTopLevel возвращает страницу корневых комментариев цели (parentId — строго null)
	// и их общее количество.
	FindTopLevel(ctx context.Context, target models.Target, p models.PageParams) ([]models.Comment, int64, error)

	// FindDescendants возвращает всех потомков ancestorID на цели (path содержит ancestorID).
	FindDescendants(ctx context.Context, target models.Target, ancestorID models.ID) ([]models.Comment, error)

	// DeleteComment удаляет комментарий автора authorID. Чужой комментарий — ErrForbidden;
	// cascade=false и есть потомки — ErrHasDescendants;
	// cascade=true — удаляет всё поддерево в одной транзакции. Возвращает число удалённых записей.
	DeleteComment(ctx context.Context, id models.ID, authorID int64, cascade bool) (int64, error)

	// CountByTarget — число всех комментариев цели.
	CountByTarget(ctx context.Context, target models.Target) (int64, error)

	// ListHot — до limit комментариев цели с наибольшим likeCount.
	ListHot(ctx context.Context, target models.Target, limit int64) ([]models.Comment, error)

	// ListLatest — до limit последних комментариев цели (createdAt DESC, _id DESC).
	ListLatest(ctx context.Context, target models.Target, limit int64) ([]models.Comment, error)

	// ListByUser — страница комментариев автора (createdAt DESC) и общее количество.
	ListByUser(ctx context.Context, userID int64, p models.PageParams) ([]models.Comment, int64, error)

	// AdjustLikes меняет likeCount на delta (не ниже нуля). Если записи нет — ErrNotFound.
	AdjustLikes(ctx context.Context, id models.ID, delta int32) (*models.Comment, error)

	// ScanTarget читает все комментарии цели «как есть» (для аудита).
	ScanTarget(ctx context.Context, target models.Target) ([]models.RawComment, error)

	// RawByIDs читает записи по id вне зависимости от цели (для аудита висячих ссылок).
	RawByIDs(ctx context.Context, ids []models.ID) ([]models.RawComment, error)

	// Ping проверяет доступность хранилища.
	Ping(ctx context.Context) error
}
