package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/todofy/todofy/internal/database"
	"github.com/todofy/todofy/internal/todo"
)

// MongoRepository implements todo.Repository on a MongoDB collection. Every
// mutation runs inside a session transaction so the failure model stays
// uniform (all effects visible or none) and multi-document extensions stay
// safe. Reads inside a transaction see that transaction's writes.
type MongoRepository struct {
	store *database.Store
	col   *mongo.Collection
}

var _ todo.Repository = (*MongoRepository)(nil)

// NewMongoRepository creates the repository and ensures the owner/createdAt
// index that backs list queries.
func NewMongoRepository(store *database.Store) *MongoRepository {
	col := store.Collection(database.CollectionTodos)
	idx := mongo.IndexModel{Keys: bson.D{{Key: "ownerId", Value: 1}, {Key: "createdAt", Value: -1}}}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &MongoRepository{store: store, col: col}
}

func (r *MongoRepository) Create(ctx context.Context, ownerID, title, description string) (*todo.Record, error) {
	out, err := r.store.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		now := time.Now().UTC()
		rec := &todo.Record{
			ID:          primitive.NewObjectID(),
			OwnerID:     ownerID,
			Title:       title,
			Description: description,
			Completed:   false,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if _, err := r.col.InsertOne(sc, rec); err != nil {
			return nil, err
		}
		return rec, nil
	})
	if err != nil {
		return nil, persistence("create", err)
	}
	return out.(*todo.Record), nil
}

func (r *MongoRepository) ListByOwner(ctx context.Context, ownerID string) ([]todo.Record, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"ownerId": ownerID}, opts)
	if err != nil {
		return nil, persistence("list", err)
	}
	records := []todo.Record{}
	if err := cur.All(ctx, &records); err != nil {
		return nil, persistence("list", err)
	}
	return records, nil
}

func (r *MongoRepository) GetByID(ctx context.Context, id primitive.ObjectID, ownerID string) (*todo.Record, error) {
	var rec todo.Record
	err := r.col.FindOne(ctx, bson.M{"_id": id, "ownerId": ownerID}).Decode(&rec)
	if err != nil {
		// nonexistent and foreign-owned records are indistinguishable
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, persistence("get", err)
	}
	return &rec, nil
}

func (r *MongoRepository) Update(ctx context.Context, id primitive.ObjectID, ownerID string, in todo.UpdateInput) (*todo.Record, error) {
	out, err := r.store.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		set := bson.M{"updatedAt": time.Now().UTC()}
		if in.Title != nil {
			set["title"] = *in.Title
		}
		if in.Description != nil {
			set["description"] = *in.Description
		}
		if in.Completed != nil {
			set["completed"] = *in.Completed
		}
		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
		var rec todo.Record
		err := r.col.FindOneAndUpdate(sc, bson.M{"_id": id, "ownerId": ownerID}, bson.M{"$set": set}, opts).Decode(&rec)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				return (*todo.Record)(nil), nil
			}
			return nil, err
		}
		return &rec, nil
	})
	if err != nil {
		return nil, persistence("update", err)
	}
	return out.(*todo.Record), nil
}

func (r *MongoRepository) ToggleCompletion(ctx context.Context, id primitive.ObjectID, ownerID string) (*todo.Record, error) {
	out, err := r.store.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		// read-then-negate must be atomic against concurrent togglers; the
		// transaction makes both steps one isolated unit
		var current todo.Record
		err := r.col.FindOne(sc, bson.M{"_id": id, "ownerId": ownerID}).Decode(&current)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				return (*todo.Record)(nil), nil
			}
			return nil, err
		}
		set := bson.M{"completed": !current.Completed, "updatedAt": time.Now().UTC()}
		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
		var rec todo.Record
		err = r.col.FindOneAndUpdate(sc, bson.M{"_id": id, "ownerId": ownerID}, bson.M{"$set": set}, opts).Decode(&rec)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				return (*todo.Record)(nil), nil
			}
			return nil, err
		}
		return &rec, nil
	})
	if err != nil {
		return nil, persistence("toggle", err)
	}
	return out.(*todo.Record), nil
}

func (r *MongoRepository) Delete(ctx context.Context, id primitive.ObjectID, ownerID string) (bool, error) {
	out, err := r.store.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		res, err := r.col.DeleteOne(sc, bson.M{"_id": id, "ownerId": ownerID})
		if err != nil {
			return nil, err
		}
		return res.DeletedCount > 0, nil
	})
	if err != nil {
		return false, persistence("delete", err)
	}
	return out.(bool), nil
}

func (r *MongoRepository) DeleteAllCompleted(ctx context.Context, ownerID string) (int64, error) {
	out, err := r.store.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		res, err := r.col.DeleteMany(sc, bson.M{"ownerId": ownerID, "completed": true})
		if err != nil {
			return nil, err
		}
		return res.DeletedCount, nil
	})
	if err != nil {
		return 0, persistence("deleteCompleted", err)
	}
	return out.(int64), nil
}

func persistence(op string, err error) error {
	return &todo.PersistenceError{Op: op, Err: err}
}
