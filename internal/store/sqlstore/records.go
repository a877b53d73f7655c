package sqlstore

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arcinech/companyApp/internal/models"
)

type departmentRecord struct {
	ID   string `gorm:"primaryKey;type:char(24)"`
	Name string `gorm:"type:varchar(200);not null;default:''"`
}

func (departmentRecord) TableName() string { return "departments" }

// employeeRecord keeps the polymorphic department as text; DepartmentRef marks
// values that hold a department id rather than a free-text name.
type employeeRecord struct {
	ID            string `gorm:"primaryKey;type:char(24)"`
	FirstName     string `gorm:"type:varchar(200);not null"`
	LastName      string `gorm:"type:varchar(200);not null"`
	Department    string `gorm:"type:varchar(200);not null;index"`
	DepartmentRef bool   `gorm:"not null;default:false"`
}

func (employeeRecord) TableName() string { return "employees" }

var departmentColumns = map[string]string{
	"_id":  "id",
	"name": "name",
}

var employeeColumns = map[string]string{
	"_id":        "id",
	"firstName":  "first_name",
	"lastName":   "last_name",
	"department": "department",
}

func departmentToRecord(department *models.Department) departmentRecord {
	return departmentRecord{
		ID:   department.ID.Hex(),
		Name: department.Name,
	}
}

func departmentFromRecord(record departmentRecord) models.Department {
	id, _ := primitive.ObjectIDFromHex(record.ID)
	return models.Department{
		ID:   id,
		Name: record.Name,
	}
}

func employeeToRecord(employee *models.Employee) employeeRecord {
	return employeeRecord{
		ID:            employee.ID.Hex(),
		FirstName:     employee.FirstName,
		LastName:      employee.LastName,
		Department:    employee.Department.String(),
		DepartmentRef: employee.Department.IsReference(),
	}
}

func employeeFromRecord(record employeeRecord) models.Employee {
	id, _ := primitive.ObjectIDFromHex(record.ID)

	department := models.DepartmentName(record.Department)
	if record.DepartmentRef {
		if departmentID, err := primitive.ObjectIDFromHex(record.Department); err == nil {
			department = models.RefDepartment(departmentID)
		}
	}

	return models.Employee{
		ID:         id,
		FirstName:  record.FirstName,
		LastName:   record.LastName,
		Department: department,
	}
}

// columnValue converts a schema-cast value into its column representation.
func columnValue(value any) any {
	switch v := value.(type) {
	case primitive.ObjectID:
		return v.Hex()
	case models.DepartmentRef:
		return v.String()
	default:
		return v
	}
}
