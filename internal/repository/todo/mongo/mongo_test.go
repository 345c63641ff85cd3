package mongo_test

import (
	"context"
	"fmt"
	"testing"
	"time"
	"todoList/internal/config"
	"todoList/internal/models/todo"
	"todoList/internal/repository"
	"todoList/internal/repository/todo/mongo"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MongoTestSuite - интеграционные тесты с MongoDB
type MongoTestSuite struct {
	suite.Suite
	container testcontainers.Container
	uri       string
	storage   *mongo.Storage
	ctx       context.Context
}

func TestMongoSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("интеграционные тесты пропущены в режиме -short")
	}
	suite.Run(t, new(MongoTestSuite))
}

func (s *MongoTestSuite) SetupSuite() {
	s.ctx = context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "mongo:7",
		ExposedPorts: []string{"27017/tcp"},
		WaitingFor:   wait.ForListeningPort("27017/tcp").WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(s.ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(s.T(), err)
	s.container = container

	host, err := container.Host(s.ctx)
	require.NoError(s.T(), err)

	port, err := container.MappedPort(s.ctx, "27017")
	require.NoError(s.T(), err)

	s.uri = fmt.Sprintf("mongodb://%s:%s", host, port.Port())
}

func (s *MongoTestSuite) TearDownSuite() {
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

// SetupTest - у каждого теста своя коллекция
func (s *MongoTestSuite) SetupTest() {
	storage, err := mongo.New(s.ctx, config.MongoConfig{
		URI:        s.uri,
		Database:   "todo_test",
		Collection: "todos_" + uuid.NewString(),
	})
	require.NoError(s.T(), err)
	s.storage = storage
}

func (s *MongoTestSuite) TearDownTest() {
	if s.storage != nil {
		s.storage.Close()
	}
}

func (s *MongoTestSuite) create(value string, order int) *todo.Todo {
	item := &todo.Todo{Value: value, Order: order}
	require.NoError(s.T(), s.storage.Create(s.ctx, item))
	return item
}

func (s *MongoTestSuite) TestHealthCheck() {
	assert.NoError(s.T(), s.storage.HealthCheck(s.ctx))
}

func (s *MongoTestSuite) TestCreateAndGet() {
	item := s.create("buy milk", 1)
	assert.True(s.T(), primitive.IsValidObjectID(item.ID))

	got, err := s.storage.GetByID(s.ctx, item.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "buy milk", got.Value)
	assert.Equal(s.T(), 1, got.Order)
	assert.Nil(s.T(), got.DoneAt)
}

func (s *MongoTestSuite) TestGetByID_NotFound() {
	_, err := s.storage.GetByID(s.ctx, primitive.NewObjectID().Hex())
	assert.ErrorIs(s.T(), err, repository.ErrNotFound)

	_, err = s.storage.GetByID(s.ctx, "zzz")
	assert.ErrorIs(s.T(), err, repository.ErrNotFound)
}

func (s *MongoTestSuite) TestUpdate() {
	item := s.create("draft", 1)

	now := time.Now().UTC().Truncate(time.Millisecond)
	item.Value = "final"
	item.Order = 7
	item.DoneAt = &now
	require.NoError(s.T(), s.storage.Update(s.ctx, item))

	got, err := s.storage.GetByID(s.ctx, item.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "final", got.Value)
	assert.Equal(s.T(), 7, got.Order)
	require.NotNil(s.T(), got.DoneAt)
	assert.True(s.T(), now.Equal(*got.DoneAt))

	got.DoneAt = nil
	require.NoError(s.T(), s.storage.Update(s.ctx, got))
	again, err := s.storage.GetByID(s.ctx, item.ID)
	require.NoError(s.T(), err)
	assert.Nil(s.T(), again.DoneAt)

	err = s.storage.Update(s.ctx, &todo.Todo{ID: primitive.NewObjectID().Hex()})
	assert.ErrorIs(s.T(), err, repository.ErrNotFound)
}

func (s *MongoTestSuite) TestSortedAndTop() {
	_, err := s.storage.GetTopByOrder(s.ctx)
	assert.ErrorIs(s.T(), err, repository.ErrNotFound)

	s.create("a", 2)
	s.create("b", 5)
	s.create("c", 1)

	all, err := s.storage.GetAllSorted(s.ctx)
	require.NoError(s.T(), err)
	require.Len(s.T(), all, 3)
	assert.Equal(s.T(), []int{5, 2, 1}, []int{all[0].Order, all[1].Order, all[2].Order})

	top, err := s.storage.GetTopByOrder(s.ctx)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "b", top.Value)

	byOrder, err := s.storage.GetByOrder(s.ctx, 1)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "c", byOrder.Value)
}

func (s *MongoTestSuite) TestDelete() {
	item := s.create("gone", 1)

	require.NoError(s.T(), s.storage.Delete(s.ctx, item.ID))
	_, err := s.storage.GetByID(s.ctx, item.ID)
	assert.ErrorIs(s.T(), err, repository.ErrNotFound)

	assert.ErrorIs(s.T(), s.storage.Delete(s.ctx, item.ID), repository.ErrNotFound)
}
