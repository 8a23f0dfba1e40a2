package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pribylovaa/poem-comments/internal/hierarchy"
	"github.com/pribylovaa/poem-comments/internal/models"
	"github.com/pribylovaa/poem-comments/internal/storage"
	"github.com/pribylovaa/poem-comments/pkg/log"

	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// toMS — MongoDB DateTime хранит миллисекунды.
func toMS(t time.Time) time.Time { return t.UTC().Truncate(time.Millisecond) }

// targetFilter — базовый фильтр по цели.
func targetFilter(target models.Target) bson.D {
	return bson.D{
		{Key: "targetId", Value: target.ID},
		{Key: "targetType", Value: target.Type},
	}
}

// sortSpec — сортировка с тай-брейком по _id в том же направлении.
func sortSpec(key models.SortKey, dir models.SortDir) bson.D {
	if !key.Valid() {
		key = models.SortByCreatedAt
	}

	if dir != models.SortAsc {
		dir = models.SortDesc
	}

	return bson.D{{Key: string(key), Value: int(dir)}, {Key: "_id", Value: int(dir)}}
}

// CreateComment создаёт комментарий (корневой или ответ) в одной транзакции:
//   - для ответа загружает родителя; нет родителя или он на другой цели — storage.ErrParentNotFound;
//   - level/path вычисляются через hierarchy.ComputeLevelAndPath;
//   - у родителя инкрементируется replyCount.
func (m *Mongo) CreateComment(ctx context.Context, comm models.Comment) (*models.Comment, error) {
	const op = "storage/mongo/CreateComment"

	target := comm.Target()

	res, err := m.withTx(ctx, func(sc mongodriver.SessionContext) (interface{}, error) {
		// Функция может выполняться повторно — всё вычисляем заново от входа.
		out := comm
		out.ID = models.NewID()
		out.CreatedAt = toMS(time.Now())
		out.ReplyCount = 0
		out.LikeCount = 0

		var parent *models.Comment
		if !comm.ParentID.IsZero() {
			var p models.Comment
			if err := m.comments.FindOne(sc, bson.D{{Key: "_id", Value: comm.ParentID.ObjectID()}}).Decode(&p); err != nil {
				if errors.Is(err, mongodriver.ErrNoDocuments) {
					return nil, storage.ErrParentNotFound
				}

				return nil, fmt.Errorf("find parent: %w", err)
			}

			if p.Target() != target {
				return nil, storage.ErrParentNotFound
			}

			if p.Level+1 > m.cfg.Limits.MaxDepth {
				return nil, storage.ErrMaxDepthExceeded
			}

			parent = &p
		}

		out.Level, out.Path = hierarchy.ComputeLevelAndPath(parent)

		if _, err := m.comments.InsertOne(sc, out); err != nil {
			return nil, fmt.Errorf("insert: %w", err)
		}

		if parent != nil {
			if _, err := m.comments.UpdateByID(sc, parent.ID.ObjectID(), bson.D{
				{Key: "$inc", Value: bson.D{{Key: "replyCount", Value: 1}}},
			}); err != nil {
				return nil, fmt.Errorf("bump reply count: %w", err)
			}
		}

		return &out, nil
	})

	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, classify(ctx, err))
	}

	return res.(*models.Comment), nil
}

// DeleteComment удаляет комментарий в одной транзакции.
//   - удалять может только автор: иначе storage.ErrForbidden;
//   - cascade=false и есть потомки — storage.ErrHasDescendants, ничего не удаляется;
//   - cascade=true — удаляет комментарий и всех, у кого он в path;
//   - у родителя удалённого комментария декрементируется replyCount.
//
// При отсутствии записи — storage.ErrNotFound.
func (m *Mongo) DeleteComment(ctx context.Context, id models.ID, authorID int64, cascade bool) (int64, error) {
	const op = "storage/mongo/DeleteComment"

	res, err := m.withTx(ctx, func(sc mongodriver.SessionContext) (interface{}, error) {
		var doc models.Comment
		if err := m.comments.FindOne(sc, bson.D{{Key: "_id", Value: id.ObjectID()}}).Decode(&doc); err != nil {
			if errors.Is(err, mongodriver.ErrNoDocuments) {
				return nil, storage.ErrNotFound
			}

			return nil, fmt.Errorf("find: %w", err)
		}

		if doc.UserID != authorID {
			return nil, storage.ErrForbidden
		}

		subtree := append(targetFilter(doc.Target()), bson.E{Key: "path", Value: id.ObjectID()})

		if !cascade {
			n, err := m.comments.CountDocuments(sc, subtree, options.Count().SetLimit(1))
			if err != nil {
				return nil, fmt.Errorf("count descendants: %w", err)
			}

			if n > 0 {
				return nil, storage.ErrHasDescendants
			}
		}

		del, err := m.comments.DeleteMany(sc, bson.D{{Key: "$or", Value: bson.A{
			bson.D{{Key: "_id", Value: id.ObjectID()}},
			subtree,
		}}})
		if err != nil {
			return nil, fmt.Errorf("delete: %w", err)
		}

		if !doc.ParentID.IsZero() {
			if _, err := m.comments.UpdateOne(sc,
				bson.D{{Key: "_id", Value: doc.ParentID.ObjectID()}, {Key: "replyCount", Value: bson.D{{Key: "$gt", Value: 0}}}},
				bson.D{{Key: "$inc", Value: bson.D{{Key: "replyCount", Value: -1}}}},
			); err != nil {
				return nil, fmt.Errorf("drop reply count: %w", err)
			}
		}

		return del.DeletedCount, nil
	})

	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, classify(ctx, err))
	}

	return res.(int64), nil
}

// CommentByID возвращает комментарий по идентификатору.
// Если запись не найдена — storage.ErrNotFound.
func (m *Mongo) CommentByID(ctx context.Context, id models.ID) (*models.Comment, error) {
	const op = "storage/mongo/CommentByID"

	var out models.Comment
	if err := m.comments.FindOne(ctx, bson.D{{Key: "_id", Value: id.ObjectID()}}).Decode(&out); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, classify(ctx, err))
	}

	normalize(&out)

	return &out, nil
}

// FindTopLevel возвращает страницу корней цели и их общее количество.
// Корень — строго parentId: null; отсутствующее поле сюда не попадает (см. аудит).
func (m *Mongo) FindTopLevel(ctx context.Context, target models.Target, p models.PageParams) ([]models.Comment, int64, error) {
	const op = "storage/mongo/FindTopLevel"

	filter := append(targetFilter(target), bson.E{Key: "parentId", Value: bson.D{{Key: "$type", Value: "null"}}})

	total, err := m.comments.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: count: %w", op, classify(ctx, err))
	}

	findOpts := options.Find().
		SetSort(sortSpec(p.SortKey, p.SortDir)).
		SetSkip(p.Skip()).
		SetLimit(p.PageSize)

	items, err := m.find(ctx, filter, findOpts)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	return items, total, nil
}

// FindDescendants возвращает всех потомков ancestorID на цели (createdAt ASC, _id ASC).
func (m *Mongo) FindDescendants(ctx context.Context, target models.Target, ancestorID models.ID) ([]models.Comment, error) {
	const op = "storage/mongo/FindDescendants"

	filter := append(targetFilter(target), bson.E{Key: "path", Value: ancestorID.ObjectID()})

	items, err := m.find(ctx, filter, options.Find().SetSort(sortSpec(models.SortByCreatedAt, models.SortAsc)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return items, nil
}

// CountByTarget — число всех комментариев цели (включая ответы).
func (m *Mongo) CountByTarget(ctx context.Context, target models.Target) (int64, error) {
	const op = "storage/mongo/CountByTarget"

	n, err := m.comments.CountDocuments(ctx, targetFilter(target))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, classify(ctx, err))
	}

	return n, nil
}

// ListHot — самые «залайканные» комментарии цели: likeCount DESC, _id DESC.
func (m *Mongo) ListHot(ctx context.Context, target models.Target, limit int64) ([]models.Comment, error) {
	const op = "storage/mongo/ListHot"

	items, err := m.find(ctx, targetFilter(target), options.Find().
		SetSort(sortSpec(models.SortByLikeCount, models.SortDesc)).
		SetLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return items, nil
}

// ListLatest — последние комментарии цели: createdAt DESC, _id DESC.
func (m *Mongo) ListLatest(ctx context.Context, target models.Target, limit int64) ([]models.Comment, error) {
	const op = "storage/mongo/ListLatest"

	items, err := m.find(ctx, targetFilter(target), options.Find().
		SetSort(sortSpec(models.SortByCreatedAt, models.SortDesc)).
		SetLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return items, nil
}

// ListByUser — страница комментариев автора: createdAt DESC, _id DESC.
func (m *Mongo) ListByUser(ctx context.Context, userID int64, p models.PageParams) ([]models.Comment, int64, error) {
	const op = "storage/mongo/ListByUser"

	filter := bson.D{{Key: "userId", Value: userID}}

	total, err := m.comments.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: count: %w", op, classify(ctx, err))
	}

	items, err := m.find(ctx, filter, options.Find().
		SetSort(sortSpec(models.SortByCreatedAt, models.SortDesc)).
		SetSkip(p.Skip()).
		SetLimit(p.PageSize))
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	return items, total, nil
}

// AdjustLikes атомарно меняет likeCount на delta, не опускаясь ниже нуля.
// Возвращает обновлённый комментарий; при отсутствии записи — storage.ErrNotFound.
func (m *Mongo) AdjustLikes(ctx context.Context, id models.ID, delta int32) (*models.Comment, error) {
	const op = "storage/mongo/AdjustLikes"

	update := mongodriver.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "likeCount", Value: bson.D{{Key: "$max", Value: bson.A{
				0,
				bson.D{{Key: "$add", Value: bson.A{bson.D{{Key: "$ifNull", Value: bson.A{"$likeCount", 0}}}, delta}}},
			}}}},
		}}},
	}

	var out models.Comment
	err := m.comments.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: id.ObjectID()}},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&out)
	if err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, classify(ctx, err))
	}

	normalize(&out)

	return &out, nil
}

// find выполняет запрос и декодирует все документы. Пустая выборка — пустой (не nil) срез.
func (m *Mongo) find(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]models.Comment, error) {
	cur, err := m.comments.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find: %w", classify(ctx, err))
	}
	defer cur.Close(ctx)

	return m.decodeAll(ctx, cur)
}

// decodeAll читает курсор до конца. Документ с неканоническими parentId/path
// пропускается с Warn; такие записи показывает аудит (ScanTarget читает сырой BSON).
func (m *Mongo) decodeAll(ctx context.Context, cur *mongodriver.Cursor) ([]models.Comment, error) {
	items := []models.Comment{}
	for cur.Next(ctx) {
		var comm models.Comment
		if err := cur.Decode(&comm); err != nil {
			log.From(ctx).Warn("malformed comment skipped",
				"id", rawID(cur.Current),
				"err", err,
			)
			if m.metrics != nil {
				m.metrics.MalformedSkipped.Inc()
			}
			continue
		}

		normalize(&comm)
		items = append(items, comm)
	}

	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("cursor: %w", classify(ctx, err))
	}

	return items, nil
}

// rawID — _id документа в hex для логов; пусто, если это не ObjectID.
func rawID(doc bson.Raw) string {
	oid, ok := doc.Lookup("_id").ObjectIDOK()
	if !ok {
		return ""
	}

	return oid.Hex()
}

// normalize — UTC-время и непустой path.
func normalize(c *models.Comment) {
	c.CreatedAt = c.CreatedAt.UTC()
	if c.Path == nil {
		c.Path = []models.ID{}
	}
}
