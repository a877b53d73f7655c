package sqlstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/gorm"

	"github.com/arcinech/companyApp/internal/apperror"
	"github.com/arcinech/companyApp/internal/models"
	"github.com/arcinech/companyApp/internal/store"
)

// table implements store.Store for model M persisted as record R.
type table[M any, R any, PM interface {
	*M
	models.Document
}] struct {
	db         *gorm.DB
	name       string
	schema     *models.Schema
	columns    map[string]string
	toRecord   func(*M) R
	fromRecord func(R) M
	log        zerolog.Logger
}

func (t *table[M, R, PM]) Find(ctx context.Context, filter store.Filter) ([]M, error) {
	query, err := t.where(ctx, filter)
	if err != nil {
		return nil, err
	}

	var records []R
	if err := query.Order("id ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("find %s: %w", t.name, err)
	}

	docs := make([]M, 0, len(records))
	for _, record := range records {
		docs = append(docs, t.fromRecord(record))
	}
	return docs, nil
}

func (t *table[M, R, PM]) FindOne(ctx context.Context, filter store.Filter) (M, error) {
	var doc M

	query, err := t.where(ctx, filter)
	if err != nil {
		return doc, err
	}

	var record R
	if err := query.First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return doc, store.ErrNotFound
		}
		return doc, fmt.Errorf("find one %s: %w", t.name, err)
	}
	return t.fromRecord(record), nil
}

func (t *table[M, R, PM]) Save(ctx context.Context, doc *M) error {
	p := PM(doc)
	if err := p.Validate(); err != nil {
		return err
	}

	if p.IsNew() {
		p.SetID(primitive.NewObjectID())
		record := t.toRecord(doc)
		if err := t.db.WithContext(ctx).Create(&record).Error; err != nil {
			p.SetID(primitive.NilObjectID)
			return mapDatabaseError(err)
		}
		t.log.Debug().Str("id", p.GetID().Hex()).Msg("row inserted")
		return nil
	}

	record := t.toRecord(doc)
	result := t.db.WithContext(ctx).
		Model(new(R)).
		Where("id = ?", p.GetID().Hex()).
		Select("*").
		Updates(&record)
	if result.Error != nil {
		return mapDatabaseError(result.Error)
	}
	if result.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (t *table[M, R, PM]) Remove(ctx context.Context, doc *M) error {
	p := PM(doc)
	if p.IsNew() {
		return store.ErrNotFound
	}

	result := t.db.WithContext(ctx).Where("id = ?", p.GetID().Hex()).Delete(new(R))
	if result.Error != nil {
		return fmt.Errorf("remove %s: %w", t.name, result.Error)
	}
	if result.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (t *table[M, R, PM]) UpdateOne(ctx context.Context, filter store.Filter, update store.Update) (store.UpdateResult, error) {
	set, err := t.updateColumns(update)
	if err != nil {
		return store.UpdateResult{}, err
	}

	id, found, err := t.firstID(ctx, filter)
	if err != nil || !found {
		return store.UpdateResult{}, err
	}

	result := t.db.WithContext(ctx).Model(new(R)).Where("id = ?", id).Updates(set)
	if result.Error != nil {
		return store.UpdateResult{}, mapDatabaseError(result.Error)
	}
	return store.UpdateResult{Matched: 1, Modified: result.RowsAffected}, nil
}

func (t *table[M, R, PM]) UpdateMany(ctx context.Context, filter store.Filter, update store.Update) (store.UpdateResult, error) {
	set, err := t.updateColumns(update)
	if err != nil {
		return store.UpdateResult{}, err
	}

	query, err := t.where(ctx, filter)
	if err != nil {
		return store.UpdateResult{}, err
	}

	result := query.Updates(set)
	if result.Error != nil {
		return store.UpdateResult{}, mapDatabaseError(result.Error)
	}
	return store.UpdateResult{Matched: result.RowsAffected, Modified: result.RowsAffected}, nil
}

func (t *table[M, R, PM]) DeleteOne(ctx context.Context, filter store.Filter) (int64, error) {
	id, found, err := t.firstID(ctx, filter)
	if err != nil || !found {
		return 0, err
	}

	result := t.db.WithContext(ctx).Where("id = ?", id).Delete(new(R))
	if result.Error != nil {
		return 0, fmt.Errorf("delete one %s: %w", t.name, result.Error)
	}
	return result.RowsAffected, nil
}

func (t *table[M, R, PM]) DeleteMany(ctx context.Context, filter store.Filter) (int64, error) {
	query, err := t.where(ctx, filter)
	if err != nil {
		return 0, err
	}

	result := query.Delete(new(R))
	if result.Error != nil {
		return 0, fmt.Errorf("delete many %s: %w", t.name, result.Error)
	}
	return result.RowsAffected, nil
}

// where starts a query on the table restricted by filter. An empty filter is
// allowed to touch every row.
func (t *table[M, R, PM]) where(ctx context.Context, filter store.Filter) (*gorm.DB, error) {
	casted, err := t.schema.CastFilter(filter)
	if err != nil {
		return nil, err
	}

	query := t.db.WithContext(ctx).Model(new(R))
	if len(casted) == 0 {
		return query.Session(&gorm.Session{AllowGlobalUpdate: true}), nil
	}

	conditions := make(map[string]any, len(casted))
	for path, value := range casted {
		conditions[t.columns[path]] = columnValue(value)
		if ref, ok := value.(models.DepartmentRef); ok {
			conditions["department_ref"] = ref.IsReference()
		}
	}
	return query.Where(conditions), nil
}

func (t *table[M, R, PM]) firstID(ctx context.Context, filter store.Filter) (string, bool, error) {
	query, err := t.where(ctx, filter)
	if err != nil {
		return "", false, err
	}

	var ids []string
	if err := query.Order("id ASC").Limit(1).Pluck("id", &ids).Error; err != nil {
		return "", false, fmt.Errorf("locate %s: %w", t.name, err)
	}
	if len(ids) == 0 {
		return "", false, nil
	}
	return ids[0], true, nil
}

func (t *table[M, R, PM]) updateColumns(update store.Update) (map[string]any, error) {
	set, err := t.schema.CastUpdate(update)
	if err != nil {
		return nil, err
	}

	columns := make(map[string]any, len(set))
	for path, value := range set {
		columns[t.columns[path]] = columnValue(value)
		if ref, ok := value.(models.DepartmentRef); ok {
			columns["department_ref"] = ref.IsReference()
		}
	}
	return columns, nil
}

func mapDatabaseError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" {
			return apperror.New(apperror.CodeConflict, "resource with the same unique attributes already exists")
		}
		if pgErr.Code == "23503" {
			return apperror.New(apperror.CodeValidation, "invalid foreign key reference")
		}
	}
	return err
}
