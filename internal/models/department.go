package models

import "go.mongodb.org/mongo-driver/bson/primitive"

const departmentModel = "department"

type Department struct {
	ID   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name string             `bson:"name" json:"name"`
}

func (d *Department) GetID() primitive.ObjectID   { return d.ID }
func (d *Department) SetID(id primitive.ObjectID) { d.ID = id }
func (d *Department) IsNew() bool                 { return d.ID.IsZero() }

func (d Department) Validate() error {
	verr := newValidationError(departmentModel)
	collectValidation(verr, validate.Struct(d))
	return verr.ErrorOrNil()
}

// DepartmentFromAttributes casts loose input into a Department and validates it.
// The returned Department carries every path that cast successfully, even on error.
func DepartmentFromAttributes(attrs Attributes) (Department, error) {
	values, verr := DepartmentSchema.cast(attrs)

	department := Department{}
	department.ID, _ = values["_id"].(primitive.ObjectID)
	department.Name, _ = values["name"].(string)

	collectValidation(verr, validate.Struct(department))
	return department, verr.ErrorOrNil()
}
