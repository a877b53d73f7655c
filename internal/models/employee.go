package models

import "go.mongodb.org/mongo-driver/bson/primitive"

const employeeModel = "employee"

type Employee struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FirstName  string             `bson:"firstName" json:"firstName" validate:"required"`
	LastName   string             `bson:"lastName" json:"lastName" validate:"required"`
	Department DepartmentRef      `bson:"department" json:"department" validate:"required"`
}

func (e *Employee) GetID() primitive.ObjectID   { return e.ID }
func (e *Employee) SetID(id primitive.ObjectID) { e.ID = id }
func (e *Employee) IsNew() bool                 { return e.ID.IsZero() }

func (e Employee) Validate() error {
	verr := newValidationError(employeeModel)
	collectValidation(verr, validate.Struct(e))
	return verr.ErrorOrNil()
}

// EmployeeFromAttributes casts loose input into an Employee and validates it.
// Paths that fail to cast are reported once, with kind "string", and not as missing.
func EmployeeFromAttributes(attrs Attributes) (Employee, error) {
	values, verr := EmployeeSchema.cast(attrs)

	employee := Employee{}
	employee.ID, _ = values["_id"].(primitive.ObjectID)
	employee.FirstName, _ = values["firstName"].(string)
	employee.LastName, _ = values["lastName"].(string)
	employee.Department, _ = values["department"].(DepartmentRef)

	collectValidation(verr, validate.Struct(employee))
	return employee, verr.ErrorOrNil()
}
