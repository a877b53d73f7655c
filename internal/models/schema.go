package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arcinech/companyApp/internal/apperror"
)

// Attributes is loose document input keyed by path, e.g. decoded JSON.
type Attributes map[string]any

// Document is implemented by every persisted model.
type Document interface {
	GetID() primitive.ObjectID
	SetID(id primitive.ObjectID)
	IsNew() bool
	Validate() error
}

type pathSpec struct {
	kind     string
	required bool
	cast     func(value any) (any, bool)
}

// Schema describes the paths of a model and how loose values are cast into them.
type Schema struct {
	Model string
	paths map[string]pathSpec
}

var EmployeeSchema = &Schema{
	Model: employeeModel,
	paths: map[string]pathSpec{
		"_id":        {kind: "ObjectId", cast: castObjectID},
		"firstName":  {kind: "string", required: true, cast: castText},
		"lastName":   {kind: "string", required: true, cast: castText},
		"department": {kind: "string", required: true, cast: castDepartment},
	},
}

var DepartmentSchema = &Schema{
	Model: departmentModel,
	paths: map[string]pathSpec{
		"_id":  {kind: "ObjectId", cast: castObjectID},
		"name": {kind: "string", cast: castText},
	},
}

func (s *Schema) Paths() []string {
	paths := make([]string, 0, len(s.paths))
	for path := range s.paths {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

func (s *Schema) HasPath(path string) bool {
	_, ok := s.paths[path]
	return ok
}

// CastFilter casts equality filter values. Unknown paths are rejected.
func (s *Schema) CastFilter(filter map[string]any) (map[string]any, error) {
	verr := newValidationError(s.Model)
	out := make(map[string]any, len(filter))

	for path, value := range filter {
		spec, ok := s.paths[path]
		if !ok {
			verr.Add(path, "strict", fmt.Sprintf("path %q is not in schema", path))
			continue
		}
		casted, ok := spec.cast(value)
		if !ok {
			verr.Add(path, spec.kind, castMessage(spec.kind, path, value))
			continue
		}
		out[path] = casted
	}

	return out, verr.ErrorOrNil()
}

// CastUpdate casts the paths of a $set update. Required paths may not be blanked
// and _id is immutable.
func (s *Schema) CastUpdate(set map[string]any) (map[string]any, error) {
	if len(set) == 0 {
		return nil, apperror.New(apperror.CodeValidation, "update must set at least one path")
	}

	verr := newValidationError(s.Model)
	out := make(map[string]any, len(set))

	for path, value := range set {
		spec, ok := s.paths[path]
		if !ok {
			verr.Add(path, "strict", fmt.Sprintf("path %q is not in schema", path))
			continue
		}
		if path == "_id" {
			verr.Add(path, "immutable", "path \"_id\" is immutable")
			continue
		}
		casted, ok := spec.cast(value)
		if !ok {
			verr.Add(path, spec.kind, castMessage(spec.kind, path, value))
			continue
		}
		if spec.required && isBlank(casted) {
			verr.Add(path, "required", "is required")
			continue
		}
		out[path] = casted
	}

	return out, verr.ErrorOrNil()
}

// cast converts the known paths of attrs, ignoring paths outside the schema.
func (s *Schema) cast(attrs Attributes) (map[string]any, *apperror.ValidationError) {
	verr := newValidationError(s.Model)
	out := make(map[string]any, len(s.paths))

	for path, spec := range s.paths {
		casted, ok := spec.cast(attrs[path])
		if !ok {
			verr.Add(path, spec.kind, castMessage(spec.kind, path, attrs[path]))
			continue
		}
		out[path] = casted
	}

	return out, verr
}

func castText(value any) (any, bool) {
	switch v := value.(type) {
	case nil:
		return "", true
	case string:
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(v), true
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case json.Number:
		return v.String(), true
	case primitive.ObjectID:
		return v.Hex(), true
	default:
		return nil, false
	}
}

func castObjectID(value any) (any, bool) {
	switch v := value.(type) {
	case nil:
		return primitive.NilObjectID, true
	case primitive.ObjectID:
		return v, true
	case string:
		id, err := primitive.ObjectIDFromHex(v)
		if err != nil {
			return nil, false
		}
		return id, true
	default:
		return nil, false
	}
}

func castDepartment(value any) (any, bool) {
	switch v := value.(type) {
	case DepartmentRef:
		return v, true
	case primitive.ObjectID:
		return RefDepartment(v), true
	case Department:
		return PopulatedDepartment(v), true
	case *Department:
		if v == nil {
			return DepartmentRef{}, true
		}
		return PopulatedDepartment(*v), true
	}

	text, ok := castText(value)
	if !ok {
		return nil, false
	}
	return DepartmentName(text.(string)), true
}

func isBlank(value any) bool {
	switch v := value.(type) {
	case string:
		return v == ""
	case DepartmentRef:
		return v.IsZero()
	default:
		return value == nil
	}
}

func castMessage(kind, path string, value any) string {
	return fmt.Sprintf("Cast to %s failed for value %q (type %T) at path %q", kind, fmt.Sprint(value), value, path)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("bson"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if ref, ok := field.Interface().(DepartmentRef); ok {
			return ref.String()
		}
		return nil
	}, DepartmentRef{})
	return v
}

func newValidationError(model string) *apperror.ValidationError {
	return apperror.NewValidationError(model)
}

func collectValidation(verr *apperror.ValidationError, err error) {
	if err == nil {
		return
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		verr.Add("", "invalid", err.Error())
		return
	}

	for _, fieldErr := range fieldErrors {
		var message string
		switch fieldErr.Tag() {
		case "required":
			message = "is required"
		default:
			message = fmt.Sprintf("failed on %s", fieldErr.Tag())
		}
		verr.Add(fieldErr.Field(), fieldErr.Tag(), message)
	}
}
