package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ushuru-digital/app-tsp/internal/config"
	"github.com/ushuru-digital/app-tsp/internal/logging"
	"github.com/ushuru-digital/app-tsp/internal/models"
	"github.com/ushuru-digital/app-tsp/internal/observability"
	"github.com/ushuru-digital/app-tsp/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Global payroll service instance
var PayrollServiceInstance *PayrollService

// PayrollService manages employees registered under an employer PIN
type PayrollService struct {
	employees *mongo.Collection
	logger    *logging.SafeLogger
}

// NewPayrollService creates a new payroll service
func NewPayrollService(database *mongo.Database, collection string, logger *logging.SafeLogger) *PayrollService {
	return &PayrollService{
		employees: database.Collection(collection),
		logger:    logger,
	}
}

// InitPayrollService initializes the global payroll service instance
func InitPayrollService() {
	PayrollServiceInstance = NewPayrollService(
		config.MongoDB,
		config.AppConfig.PayrollEmployeeCollection,
		logging.Logger.Named("payroll_service"),
	)
}

// AddEmployee registers an employee under the employer PIN
func (s *PayrollService) AddEmployee(ctx context.Context, employerPin string, req models.EmployeeRequest) (*models.PayrollEmployee, error) {
	if !utils.ValidatePIN(employerPin) || !utils.ValidatePIN(req.EmployeePin) {
		return nil, models.ErrInvalidPIN
	}
	if req.GrossSalary.IsNegative() {
		return nil, models.Validationf("gross salary must be zero or greater")
	}

	employee := &models.PayrollEmployee{
		ID:          uuid.NewString(),
		EmployerPin: employerPin,
		EmployeePin: req.EmployeePin,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		GrossSalary: req.GrossSalary,
		CreatedAt:   time.Now(),
	}

	if _, err := s.employees.InsertOne(ctx, employee); err != nil {
		return nil, fmt.Errorf("failed to store employee: %w", err)
	}

	s.logger.Info("payroll employee added",
		zap.String("employer_pin", observability.MaskPIN(employerPin)),
		zap.String("employee_pin", observability.MaskPIN(req.EmployeePin)))
	return employee, nil
}

// ListEmployees lists employees under an employer PIN
func (s *PayrollService) ListEmployees(ctx context.Context, employerPin string) ([]models.PayrollEmployee, error) {
	if !utils.ValidatePIN(employerPin) {
		return nil, models.ErrInvalidPIN
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := s.employees.Find(ctx, bson.M{"employer_pin": employerPin}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer cursor.Close(ctx)

	employees := []models.PayrollEmployee{}
	if err := cursor.All(ctx, &employees); err != nil {
		return nil, fmt.Errorf("failed to decode employees: %w", err)
	}
	return employees, nil
}

// RemoveEmployee removes one employee record
func (s *PayrollService) RemoveEmployee(ctx context.Context, employerPin, employeeID string) error {
	if !utils.ValidatePIN(employerPin) {
		return models.ErrInvalidPIN
	}

	result, err := s.employees.DeleteOne(ctx, bson.M{"_id": employeeID, "employer_pin": employerPin})
	if err != nil {
		return fmt.Errorf("failed to remove employee: %w", err)
	}
	if result.DeletedCount == 0 {
		return models.ErrEmployeeNotFound
	}

	s.logger.Info("payroll employee removed",
		zap.String("employer_pin", observability.MaskPIN(employerPin)),
		zap.String("employee_id", employeeID))
	return nil
}
