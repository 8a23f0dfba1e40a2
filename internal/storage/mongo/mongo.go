package mongo

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/pribylovaa/poem-comments/internal/config"
	"github.com/pribylovaa/poem-comments/internal/metrics"
	"github.com/pribylovaa/poem-comments/internal/storage"
	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	commentsCollection = "comments"
	defaultDBName      = "poem_education"
)

// Mongo - тонкий адаптер для подключения и коллекций MongoDB.
type Mongo struct {
	cfg      *config.Config
	client   *mongodriver.Client
	db       *mongodriver.Database
	comments *mongodriver.Collection
	// content — база с комментируемым контентом (guwen, creations, ...).
	content *mongodriver.Database
	// metrics — опционально; nil отключает счётчики адаптера.
	metrics *metrics.Metrics
}

// WithMetrics подключает прикладные метрики к адаптеру.
func (m *Mongo) WithMetrics(mx *metrics.Metrics) *Mongo {
	m.metrics = mx
	return m
}

// New подключается к MongoDB, проверяет его, подготавливает коллекции и обеспечивает индексацию.
func New(ctx context.Context, cfg *config.Config) (*Mongo, error) {
	if cfg == nil {
		return nil, fmt.Errorf("mongo: nil config")
	}

	if cfg.DB.URL == "" {
		return nil, fmt.Errorf("mongo: empty cfg.DB.URL")
	}

	cli, err := mongodriver.Connect(ctx, options.Client().ApplyURI(cfg.DB.URL))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := cli.Ping(ctx, readpref.Primary()); err != nil {
		_ = cli.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	dbName := cfg.DB.Database
	if dbName == "" {
		dbName = databaseFromURI(cfg.DB.URL)
	}
	db := cli.Database(dbName)

	contentDB := db
	if cfg.Content.Database != "" {
		contentDB = cli.Database(cfg.Content.Database)
	}

	m := &Mongo{
		cfg:      cfg,
		client:   cli,
		db:       db,
		comments: db.Collection(commentsCollection),
		content:  contentDB,
	}

	if err := m.ensureIndexes(ctx); err != nil {
		_ = m.Close(ctx)
		return nil, err
	}

	return m, nil
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// Ping проверяет доступность primary.
func (m *Mongo) Ping(ctx context.Context) error {
	const op = "storage/mongo/Ping"

	if err := m.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("%s: %w", op, classify(ctx, err))
	}

	return nil
}

// ensureIndexes создает индексы, необходимые для службы комментариев.
// - Корни цели: targetId + targetType + parentId
// - Поддерево по предку: targetId + targetType + path (multikey)
// - Счётчики/горячие по цели: targetId + targetType + createdAt(desc)
// - Комментарии пользователя: userId + createdAt(desc)
func (m *Mongo) ensureIndexes(ctx context.Context) error {

	models := []mongodriver.IndexModel{
		{
			Keys:    bson.D{{Key: "targetId", Value: 1}, {Key: "targetType", Value: 1}, {Key: "parentId", Value: 1}},
			Options: options.Index().SetName("target_parent"),
		},
		{
			Keys:    bson.D{{Key: "targetId", Value: 1}, {Key: "targetType", Value: 1}, {Key: "path", Value: 1}},
			Options: options.Index().SetName("target_path"),
		},
		{
			Keys:    bson.D{{Key: "targetId", Value: 1}, {Key: "targetType", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("target_created_desc"),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("user_created_desc"),
		},
	}

	_, err := m.comments.Indexes().CreateMany(ctx, models)
	if err != nil {
		return fmt.Errorf("mongo ensure indexes: %w", err)
	}
	return nil
}

// withTx выполняет fn в транзакции с дедлайном cfg.DB.TxTimeout.
// fn может быть вызвана повторно драйвером (TransientTransactionError), поэтому должна быть идемпотентной.
func (m *Mongo) withTx(ctx context.Context, fn func(sc mongodriver.SessionContext) (interface{}, error)) (interface{}, error) {
	txCtx, cancel := context.WithTimeout(ctx, m.cfg.DB.TxTimeout)
	defer cancel()

	sess, err := m.client.StartSession()
	if err != nil {
		return nil, err
	}
	defer sess.EndSession(context.Background())

	return sess.WithTransaction(txCtx, fn)
}

// classify приводит ошибки драйвера к сентинелам storage.
// Сентинелы, уже обёрнутые внутри транзакции, пропускаются как есть.
func classify(ctx context.Context, err error) error {
	switch {
	case err == nil:
		return nil
	case isSentinel(err):
		return err
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded), ctx.Err() != nil:
		// Причина (отмена или дедлайн) должна остаться различимой через errors.Is.
		if cause := ctx.Err(); cause != nil && !errors.Is(err, cause) {
			return fmt.Errorf("%w: %w: %v", storage.ErrCancelled, cause, err)
		}
		return fmt.Errorf("%w: %w", storage.ErrCancelled, err)
	case mongodriver.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", storage.ErrConflict, err)
	case mongodriver.IsNetworkError(err), mongodriver.IsTimeout(err):
		return fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
	default:
		return err
	}
}

func isSentinel(err error) bool {
	for _, s := range []error{
		storage.ErrNotFound,
		storage.ErrConflict,
		storage.ErrParentNotFound,
		storage.ErrMaxDepthExceeded,
		storage.ErrHasDescendants,
		storage.ErrCancelled,
		storage.ErrUnavailable,
		storage.ErrForbidden,
	} {
		if errors.Is(err, s) {
			return true
		}
	}

	return false
}

// databaseFromURI извлекает имя базы данных из URI-пути mongodb.
// Если оно отсутствует или не поддается расшифровке, возвращает разумное значение по умолчанию.
func databaseFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err == nil {
		if name := strings.Trim(u.Path, "/"); name != "" {
			return name
		}
	}
	return defaultDBName
}
