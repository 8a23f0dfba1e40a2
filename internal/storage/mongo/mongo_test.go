package mongo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pribylovaa/poem-comments/internal/config"
	"github.com/pribylovaa/poem-comments/internal/storage"
)

// testTimeout — общий дедлайн на операции с БД в тестах.
const testTimeout = 10 * time.Second

// TestMain запускает MongoDB (replica set из одного узла — нужен для транзакций)
// в контейнере один раз на весь пакет. Адрес прокидывается в DATABASE_URL,
// каждый тест создаёт свою БД с уникальным именем (см. newTestConfig).
func TestMain(m *testing.M) {
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		os.Exit(m.Run())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	req := testcontainers.ContainerRequest{
		Image:        "mongo:7.0",
		ExposedPorts: []string{"27017/tcp"},
		Cmd:          []string{"--replSet", "rs0", "--bind_ip_all"},
		WaitingFor:   wait.ForLog("Waiting for connections").WithStartupTimeout(90 * time.Second),
	}

	mongoC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start mongo testcontainer: %v\n", err)
		os.Exit(1)
	}

	host, err := mongoC.Host(ctx)
	if err != nil {
		_ = mongoC.Terminate(ctx)
		fmt.Fprintf(os.Stderr, "failed to get container host: %v\n", err)
		os.Exit(1)
	}

	port, err := mongoC.MappedPort(ctx, "27017/tcp")
	if err != nil {
		_ = mongoC.Terminate(ctx)
		fmt.Fprintf(os.Stderr, "failed to get mapped port: %v\n", err)
		os.Exit(1)
	}

	// directConnection: узел объявляет себя как localhost:27017 внутри контейнера.
	uri := fmt.Sprintf("mongodb://%s:%s/?directConnection=true", host, port.Port())
	if err := initReplicaSet(ctx, uri); err != nil {
		_ = mongoC.Terminate(ctx)
		fmt.Fprintf(os.Stderr, "failed to init replica set: %v\n", err)
		os.Exit(1)
	}
	_ = os.Setenv("DATABASE_URL", uri)

	code := m.Run()

	_ = mongoC.Terminate(context.Background())
	os.Exit(code)
}

// initReplicaSet выполняет replSetInitiate и ждёт, пока узел станет primary.
func initReplicaSet(ctx context.Context, uri string) error {
	cli, err := mongodriver.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return err
	}
	defer cli.Disconnect(context.Background())

	admin := cli.Database("admin")
	err = admin.RunCommand(ctx, bson.D{{Key: "replSetInitiate", Value: bson.D{
		{Key: "_id", Value: "rs0"},
		{Key: "members", Value: bson.A{bson.D{{Key: "_id", Value: 0}, {Key: "host", Value: "localhost:27017"}}}},
	}}}).Err()
	if err != nil {
		return err
	}

	for {
		var hello struct {
			IsWritablePrimary bool `bson:"isWritablePrimary"`
		}
		if err := admin.RunCommand(ctx, bson.D{{Key: "hello", Value: 1}}).Decode(&hello); err == nil && hello.IsWritablePrimary {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(200 * time.Millisecond):
		}
	}
}

// newTestConfig создаёт конфиг с отдельной тестовой БД.
func newTestConfig(t *testing.T) *config.Config {
	t.Helper()

	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		t.Skip("integration test: set GO_TEST_INTEGRATION=1")
	}

	return &config.Config{
		DB: config.DBConfig{
			URL:       os.Getenv("DATABASE_URL"),
			Database:  "comments_test_" + uuid.New().String(),
			TxTimeout: 5 * time.Second,
		},
		Limits: config.LimitsConfig{
			Default:            2,
			Max:                100,
			MaxDepth:           3,
			MaxContent:         1000,
			HydrateConcurrency: 2,
		},
	}
}

// mustNewMongo подключается к тестовой БД и регистрирует её удаление по завершении теста.
func mustNewMongo(t *testing.T, cfg *config.Config) *Mongo {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	m, err := New(ctx, cfg)
	if err != nil {
		t.Fatalf("cannot connect to MongoDB in container: %v (DATABASE_URL=%s)", err, cfg.DB.URL)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
		defer cancel()
		_ = m.db.Drop(ctx)
		_ = m.Close(ctx)
	})

	return m
}

func TestDatabaseFromURI(t *testing.T) {
	require.Equal(t, "poems", databaseFromURI("mongodb://localhost:27017/poems?replicaSet=rs0"))
	require.Equal(t, defaultDBName, databaseFromURI("mongodb://localhost:27017"))
	require.Equal(t, defaultDBName, databaseFromURI("mongodb://localhost:27017/?directConnection=true"))
}

func TestClassify(t *testing.T) {
	ctx := context.Background()

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, classify(ctx, nil))
	require.ErrorIs(t, classify(ctx, context.DeadlineExceeded), storage.ErrCancelled)
	require.ErrorIs(t, classify(ctx, context.DeadlineExceeded), context.DeadlineExceeded)
	require.ErrorIs(t, classify(cancelled, errors.New("socket closed")), storage.ErrCancelled)
	require.ErrorIs(t, classify(cancelled, errors.New("socket closed")), context.Canceled)

	expired, cancelExpired := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancelExpired()
	err := classify(expired, errors.New("socket closed"))
	require.ErrorIs(t, err, storage.ErrCancelled)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.NotErrorIs(t, err, context.Canceled)
	require.ErrorIs(t, classify(ctx, mongodriver.WriteException{
		WriteErrors: []mongodriver.WriteError{{Code: 11000}},
	}), storage.ErrConflict)

	plain := errors.New("plain")
	require.Same(t, plain, classify(ctx, plain))
}
