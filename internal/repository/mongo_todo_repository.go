package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Tomlord1122/todo-app/internal/domain"
)

// todoDocument is the stored shape of a todo in the collection.
type todoDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description *string            `bson:"description"`
	Deadline    *time.Time         `bson:"deadline"`
}

func (doc todoDocument) toDomain() domain.Todo {
	todo := domain.Todo{
		ID:          doc.ID.Hex(),
		Title:       doc.Title,
		Description: doc.Description,
	}
	if doc.Deadline != nil {
		d := doc.Deadline.UTC()
		todo.Deadline = &d
	}
	return todo
}

// mongoTodoRepository implements TodoRepository on a MongoDB collection
type mongoTodoRepository struct {
	coll *mongo.Collection
}

// NewMongoTodoRepository creates a todo repository backed by coll
func NewMongoTodoRepository(coll *mongo.Collection) TodoRepository {
	return &mongoTodoRepository{coll: coll}
}

func (r *mongoTodoRepository) Create(ctx context.Context, todo *domain.Todo) error {
	res, err := r.coll.InsertOne(ctx, todoDocument{
		Title:       todo.Title,
		Description: todo.Description,
		Deadline:    todo.Deadline,
	})
	if err != nil {
		return err
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return errors.New("unexpected inserted id type")
	}
	todo.ID = oid.Hex()
	return nil
}

func (r *mongoTodoRepository) FindByID(ctx context.Context, id string) (*domain.Todo, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var doc todoDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	todo := doc.toDomain()
	return &todo, nil
}

func (r *mongoTodoRepository) GetAll(ctx context.Context) ([]domain.Todo, error) {
	// ObjectIDs grow with insertion time.
	cur, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}

	var docs []todoDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	todos := make([]domain.Todo, 0, len(docs))
	for _, doc := range docs {
		todos = append(todos, doc.toDomain())
	}
	return todos, nil
}

func (r *mongoTodoRepository) Update(ctx context.Context, todo *domain.Todo) error {
	oid, err := primitive.ObjectIDFromHex(todo.ID)
	if err != nil {
		return ErrNotFound
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"title":       todo.Title,
		"description": todo.Description,
		"deadline":    todo.Deadline,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoTodoRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
