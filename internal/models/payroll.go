package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PayrollEmployee is an employee registered under an employer PIN
type PayrollEmployee struct {
	ID          string          `bson:"_id" json:"id"`
	EmployerPin string          `bson:"employer_pin" json:"employer_pin"`
	EmployeePin string          `bson:"employee_pin" json:"employee_pin"`
	FirstName   string          `bson:"first_name" json:"first_name"`
	LastName    string          `bson:"last_name" json:"last_name"`
	GrossSalary decimal.Decimal `bson:"gross_salary" json:"gross_salary"`
	CreatedAt   time.Time       `bson:"created_at" json:"created_at"`
}
