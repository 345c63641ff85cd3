package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"
	"todoList/internal/config"
	"todoList/internal/logger"
	"todoList/internal/models/todo"
	repo "todoList/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

const slowQuery = 100 * time.Millisecond

// todoDocument - раскладка записи в коллекции
type todoDocument struct {
	ID     primitive.ObjectID `bson:"_id,omitempty"`
	Value  string             `bson:"value"`
	Order  int                `bson:"order"`
	DoneAt *time.Time         `bson:"doneAt"`
}

func (d *todoDocument) toTodo() *todo.Todo {
	return &todo.Todo{
		ID:     d.ID.Hex(),
		Value:  d.Value,
		Order:  d.Order,
		DoneAt: d.DoneAt,
	}
}

var byOrderDesc = bson.D{{Key: "order", Value: -1}}

type Storage struct {
	client     *mongo.Client
	collection *mongo.Collection
}

func New(ctx context.Context, cfg config.MongoConfig) (*Storage, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		logger.Error("Repository: Ошибка подключения к MongoDB", err)
		return nil, fmt.Errorf("подключение к mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		logger.Error("Repository: Неудачная проверка ping", err)
		return nil, fmt.Errorf("проверка соединения ping: %w", err)
	}

	s := &Storage{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
	}

	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	logger.Info("Repository: Успешное создание подключения к MongoDB",
		zap.String("database", cfg.Database),
		zap.String("collection", cfg.Collection))
	return s, nil
}

func (s *Storage) ensureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: byOrderDesc})
	if err != nil {
		logger.Error("Repository: Не удалось создать индекс", err)
		return fmt.Errorf("создание индекса order: %w", err)
	}
	return nil
}

func (s *Storage) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.client.Disconnect(ctx); err != nil {
		logger.Error("Repository: Ошибка закрытия соединения MongoDB", err)
		return
	}
	logger.Info("Repository: Закрытие соединения MongoDB")
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	return nil
}

func (s *Storage) Create(ctx context.Context, todoToCreate *todo.Todo) error {
	start := time.Now()

	res, err := s.collection.InsertOne(ctx, todoDocument{
		Value:  todoToCreate.Value,
		Order:  todoToCreate.Order,
		DoneAt: todoToCreate.DoneAt,
	})
	if err != nil {
		logger.Error("Repository: Не удалось добавить запись", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("добавление записи: %w", err)
	}

	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Errorf("неожиданный тип идентификатора %T", res.InsertedID)
	}
	todoToCreate.ID = id.Hex()

	warnIfSlow(start)
	return nil
}

func (s *Storage) Update(ctx context.Context, todoToUpdate *todo.Todo) error {
	start := time.Now()

	id, err := primitive.ObjectIDFromHex(todoToUpdate.ID)
	if err != nil {
		return repo.ErrNotFound
	}

	res, err := s.collection.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"value":  todoToUpdate.Value,
		"order":  todoToUpdate.Order,
		"doneAt": todoToUpdate.DoneAt,
	}})
	if err != nil {
		logger.Error("Repository: Не удалось обновить запись", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("обновление записи: %w", err)
	}
	if res.MatchedCount == 0 {
		return repo.ErrNotFound
	}

	warnIfSlow(start)
	return nil
}

func (s *Storage) GetByID(ctx context.Context, id string) (*todo.Todo, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repo.ErrNotFound
	}
	return s.findOne(ctx, bson.M{"_id": oid})
}

func (s *Storage) GetByOrder(ctx context.Context, order int) (*todo.Todo, error) {
	return s.findOne(ctx, bson.M{"order": order})
}

func (s *Storage) GetTopByOrder(ctx context.Context) (*todo.Todo, error) {
	return s.findOne(ctx, bson.M{}, options.FindOne().SetSort(byOrderDesc))
}

func (s *Storage) GetAllSorted(ctx context.Context) ([]*todo.Todo, error) {
	start := time.Now()

	cursor, err := s.collection.Find(ctx, bson.M{}, options.Find().SetSort(byOrderDesc))
	if err != nil {
		logger.Error("Repository: Не удалось получить записи", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение записей: %w", err)
	}

	var docs []todoDocument
	if err := cursor.All(ctx, &docs); err != nil {
		logger.Error("Repository: Ошибка чтения курсора", err)
		return nil, fmt.Errorf("чтение курсора: %w", err)
	}

	todos := make([]*todo.Todo, 0, len(docs))
	for i := range docs {
		todos = append(todos, docs[i].toTodo())
	}

	warnIfSlow(start)
	return todos, nil
}

func (s *Storage) Delete(ctx context.Context, id string) error {
	start := time.Now()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repo.ErrNotFound
	}

	res, err := s.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		logger.Error("Repository: Не удалось удалить запись", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("удаление записи: %w", err)
	}
	if res.DeletedCount == 0 {
		return repo.ErrNotFound
	}

	warnIfSlow(start)
	return nil
}

func (s *Storage) findOne(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (*todo.Todo, error) {
	start := time.Now()

	var doc todoDocument
	err := s.collection.FindOne(ctx, filter, opts...).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить запись", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение записи: %w", err)
	}

	warnIfSlow(start)
	return doc.toTodo(), nil
}

func warnIfSlow(start time.Time) {
	if time.Since(start) > slowQuery {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}
}
