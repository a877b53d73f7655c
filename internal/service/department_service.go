package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arcinech/companyApp/internal/apperror"
	"github.com/arcinech/companyApp/internal/models"
	"github.com/arcinech/companyApp/internal/store"
)

const maxTextLength = 200

type Service struct {
	employees   store.EmployeeStore
	departments store.DepartmentStore
	log         zerolog.Logger
}

var _ Manager = (*Service)(nil)

func New(employees store.EmployeeStore, departments store.DepartmentStore, logger zerolog.Logger) *Service {
	return &Service{
		employees:   employees,
		departments: departments,
		log:         logger.With().Str("component", "service").Logger(),
	}
}

func (s *Service) CreateDepartment(ctx context.Context, attrs models.Attributes) (models.Department, error) {
	department, err := models.DepartmentFromAttributes(newDocumentAttributes(attrs))
	if err != nil {
		return models.Department{}, err
	}
	if err := checkLength("name", department.Name); err != nil {
		return models.Department{}, err
	}

	if err := s.departments.Save(ctx, &department); err != nil {
		return models.Department{}, err
	}

	s.log.Info().Str("department_id", department.ID.Hex()).Msg("department created")
	return department, nil
}

func (s *Service) ListDepartments(ctx context.Context) ([]models.Department, error) {
	departments, err := s.departments.Find(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	return departments, nil
}

func (s *Service) GetDepartment(ctx context.Context, departmentID primitive.ObjectID) (models.Department, error) {
	department, err := s.departments.FindOne(ctx, store.Filter{"_id": departmentID})
	if err != nil {
		return models.Department{}, notFound(err, "department not found")
	}
	return department, nil
}

func (s *Service) DeleteDepartment(ctx context.Context, departmentID primitive.ObjectID, mode DeleteMode) error {
	department, err := s.GetDepartment(ctx, departmentID)
	if err != nil {
		return err
	}

	// Employees may hold the id itself or its hex form as text.
	references := []store.Filter{
		{"department": departmentID},
		{"department": departmentID.Hex()},
	}

	switch mode {
	case DeleteModeCascade:
		var removed int64
		for _, filter := range references {
			deleted, err := s.employees.DeleteMany(ctx, filter)
			if err != nil {
				return fmt.Errorf("delete department employees: %w", err)
			}
			removed += deleted
		}
		s.log.Info().Str("department_id", departmentID.Hex()).Int64("employees_removed", removed).Msg("department employees removed")

	case DeleteModeDetach:
		name := department.Name
		if name == "" {
			name = departmentID.Hex()
		}
		for _, filter := range references {
			if _, err := s.employees.UpdateMany(ctx, filter, store.Update{"department": name}); err != nil {
				return fmt.Errorf("detach department employees: %w", err)
			}
		}

	default:
		return apperror.New(apperror.CodeValidation, "mode must be one of: cascade, detach")
	}

	if err := s.departments.Remove(ctx, &department); err != nil {
		return notFound(err, "department not found")
	}
	return nil
}

func (s *Service) ensureDepartmentExists(ctx context.Context, departmentID primitive.ObjectID) error {
	_, err := s.GetDepartment(ctx, departmentID)
	return err
}

// normalizeAttributes trims surrounding whitespace from string values.
func normalizeAttributes(attrs models.Attributes) models.Attributes {
	normalized := make(models.Attributes, len(attrs))
	for path, value := range attrs {
		if text, ok := value.(string); ok {
			value = strings.TrimSpace(text)
		}
		normalized[path] = value
	}
	return normalized
}

// newDocumentAttributes normalizes attrs for a create. A client-supplied _id is
// dropped so the document is always inserted.
func newDocumentAttributes(attrs models.Attributes) models.Attributes {
	normalized := normalizeAttributes(attrs)
	delete(normalized, "_id")
	return normalized
}

// checkTextLengths applies the length limit to every text value of set.
func checkTextLengths(set map[string]any) error {
	for path, value := range set {
		var text string
		switch v := value.(type) {
		case string:
			text = v
		case json.Number:
			text = v.String()
		default:
			continue
		}
		if err := checkLength(path, text); err != nil {
			return err
		}
	}
	return nil
}

func checkLength(path, value string) error {
	if utf8.RuneCountInString(value) > maxTextLength {
		return apperror.New(apperror.CodeValidation, fmt.Sprintf("%s length must be at most %d", path, maxTextLength))
	}
	return nil
}

func notFound(err error, message string) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperror.New(apperror.CodeNotFound, message)
	}
	return err
}
