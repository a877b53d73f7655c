// Package sqlstore persists employees and departments in PostgreSQL through gorm.
// It keeps the document contract of package store: 24-hex ids, path-keyed
// filters, and a department column that holds either an id or free text.
package sqlstore

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/arcinech/companyApp/internal/models"
	"github.com/arcinech/companyApp/internal/store"
)

type Store struct {
	Employees   *EmployeeStore
	Departments *DepartmentStore

	db  *gorm.DB
	log zerolog.Logger
}

type DepartmentStore struct {
	*table[models.Department, departmentRecord, *models.Department]
}

type EmployeeStore struct {
	*table[models.Employee, employeeRecord, *models.Employee]
}

var (
	_ store.DepartmentStore = (*DepartmentStore)(nil)
	_ store.EmployeeStore   = (*EmployeeStore)(nil)
)

func New(db *gorm.DB, logger zerolog.Logger) *Store {
	logger = logger.With().Str("component", "sqlstore").Logger()

	departments := &DepartmentStore{
		table: &table[models.Department, departmentRecord, *models.Department]{
			db:         db,
			name:       "departments",
			schema:     models.DepartmentSchema,
			columns:    departmentColumns,
			toRecord:   departmentToRecord,
			fromRecord: departmentFromRecord,
			log:        logger.With().Str("table", "departments").Logger(),
		},
	}
	employees := &EmployeeStore{
		table: &table[models.Employee, employeeRecord, *models.Employee]{
			db:         db,
			name:       "employees",
			schema:     models.EmployeeSchema,
			columns:    employeeColumns,
			toRecord:   employeeToRecord,
			fromRecord: employeeFromRecord,
			log:        logger.With().Str("table", "employees").Logger(),
		},
	}

	return &Store{
		Employees:   employees,
		Departments: departments,
		db:          db,
		log:         logger,
	}
}

// Migrate creates or extends the employees and departments tables.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&departmentRecord{}, &employeeRecord{}); err != nil {
		return fmt.Errorf("migrate tables: %w", err)
	}
	s.log.Info().Msg("tables migrated")
	return nil
}

func (s *EmployeeStore) Populate(ctx context.Context, employees ...*models.Employee) error {
	ids := store.DepartmentIDs(employees)
	if len(ids) == 0 {
		return nil
	}

	hexIDs := make([]string, 0, len(ids))
	for _, id := range ids {
		hexIDs = append(hexIDs, id.Hex())
	}

	var records []departmentRecord
	if err := s.db.WithContext(ctx).Where("id IN ?", hexIDs).Find(&records).Error; err != nil {
		return fmt.Errorf("populate department: %w", err)
	}

	departments := make([]models.Department, 0, len(records))
	for _, record := range records {
		departments = append(departments, departmentFromRecord(record))
	}

	store.Resolve(employees, departments)
	return nil
}
