package mongostore

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/arcinech/companyApp/internal/apperror"
	"github.com/arcinech/companyApp/internal/models"
	"github.com/arcinech/companyApp/internal/store"
)

// collection implements store.Store for one model on one mongo collection.
type collection[T any, PT interface {
	*T
	models.Document
}] struct {
	coll   *mongo.Collection
	schema *models.Schema
	log    zerolog.Logger
}

func newCollection[T any, PT interface {
	*T
	models.Document
}](db *mongo.Database, name string, schema *models.Schema, logger zerolog.Logger) *collection[T, PT] {
	return &collection[T, PT]{
		coll:   db.Collection(name),
		schema: schema,
		log:    logger.With().Str("collection", name).Logger(),
	}
}

func (c *collection[T, PT]) Find(ctx context.Context, filter store.Filter) ([]T, error) {
	query, err := c.query(filter)
	if err != nil {
		return nil, err
	}

	cursor, err := c.coll.Find(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", c.coll.Name(), err)
	}

	docs := []T{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", c.coll.Name(), err)
	}
	return docs, nil
}

func (c *collection[T, PT]) FindOne(ctx context.Context, filter store.Filter) (T, error) {
	var doc T

	query, err := c.query(filter)
	if err != nil {
		return doc, err
	}

	if err := c.coll.FindOne(ctx, query).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return doc, store.ErrNotFound
		}
		return doc, fmt.Errorf("find one %s: %w", c.coll.Name(), err)
	}
	return doc, nil
}

func (c *collection[T, PT]) Save(ctx context.Context, doc *T) error {
	p := PT(doc)
	if err := p.Validate(); err != nil {
		return err
	}

	if p.IsNew() {
		p.SetID(primitive.NewObjectID())
		if _, err := c.coll.InsertOne(ctx, doc); err != nil {
			p.SetID(primitive.NilObjectID)
			return mapWriteError(err, "insert "+c.coll.Name())
		}
		c.log.Debug().Str("id", p.GetID().Hex()).Msg("document inserted")
		return nil
	}

	result, err := c.coll.ReplaceOne(ctx, bson.M{"_id": p.GetID()}, doc)
	if err != nil {
		return mapWriteError(err, "replace "+c.coll.Name())
	}
	if result.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (c *collection[T, PT]) Remove(ctx context.Context, doc *T) error {
	p := PT(doc)
	if p.IsNew() {
		return store.ErrNotFound
	}

	result, err := c.coll.DeleteOne(ctx, bson.M{"_id": p.GetID()})
	if err != nil {
		return fmt.Errorf("remove %s: %w", c.coll.Name(), err)
	}
	if result.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (c *collection[T, PT]) UpdateOne(ctx context.Context, filter store.Filter, update store.Update) (store.UpdateResult, error) {
	query, set, err := c.update(filter, update)
	if err != nil {
		return store.UpdateResult{}, err
	}

	result, err := c.coll.UpdateOne(ctx, query, bson.M{"$set": set})
	if err != nil {
		return store.UpdateResult{}, mapWriteError(err, "update one "+c.coll.Name())
	}
	return store.UpdateResult{Matched: result.MatchedCount, Modified: result.ModifiedCount}, nil
}

func (c *collection[T, PT]) UpdateMany(ctx context.Context, filter store.Filter, update store.Update) (store.UpdateResult, error) {
	query, set, err := c.update(filter, update)
	if err != nil {
		return store.UpdateResult{}, err
	}

	result, err := c.coll.UpdateMany(ctx, query, bson.M{"$set": set})
	if err != nil {
		return store.UpdateResult{}, mapWriteError(err, "update many "+c.coll.Name())
	}
	return store.UpdateResult{Matched: result.MatchedCount, Modified: result.ModifiedCount}, nil
}

func (c *collection[T, PT]) DeleteOne(ctx context.Context, filter store.Filter) (int64, error) {
	query, err := c.query(filter)
	if err != nil {
		return 0, err
	}

	result, err := c.coll.DeleteOne(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("delete one %s: %w", c.coll.Name(), err)
	}
	return result.DeletedCount, nil
}

func (c *collection[T, PT]) DeleteMany(ctx context.Context, filter store.Filter) (int64, error) {
	query, err := c.query(filter)
	if err != nil {
		return 0, err
	}

	result, err := c.coll.DeleteMany(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("delete many %s: %w", c.coll.Name(), err)
	}
	return result.DeletedCount, nil
}

func (c *collection[T, PT]) query(filter store.Filter) (bson.M, error) {
	casted, err := c.schema.CastFilter(filter)
	if err != nil {
		return nil, err
	}
	return bson.M(casted), nil
}

func (c *collection[T, PT]) update(filter store.Filter, update store.Update) (bson.M, bson.M, error) {
	query, err := c.query(filter)
	if err != nil {
		return nil, nil, err
	}
	set, err := c.schema.CastUpdate(update)
	if err != nil {
		return nil, nil, err
	}
	return query, bson.M(set), nil
}

func mapWriteError(err error, action string) error {
	if mongo.IsDuplicateKeyError(err) {
		return apperror.New(apperror.CodeConflict, "resource with the same unique attributes already exists")
	}
	return fmt.Errorf("%s: %w", action, err)
}
