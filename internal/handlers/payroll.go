package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ushuru-digital/app-tsp/internal/models"
	"github.com/ushuru-digital/app-tsp/internal/services"
	"go.opentelemetry.io/otel"
)

// AddEmployee godoc
// @Summary Add a payroll employee
// @Description Registers an employee under the employer PIN.
// @Tags payroll
// @Accept json
// @Produce json
// @Param pin path string true "Employer PIN"
// @Param request body models.EmployeeRequest true "Employee details"
// @Success 201 {object} models.PayrollEmployee
// @Failure 400 {object} ErrorResponse
// @Router /payroll/{pin}/employees [post]
func AddEmployee(c *gin.Context) {
	ctx, span := otel.Tracer("").Start(c.Request.Context(), "AddEmployee")
	defer span.End()

	var req models.EmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	if services.PayrollServiceInstance == nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "payroll service unavailable"})
		return
	}

	employee, err := services.PayrollServiceInstance.AddEmployee(ctx, c.Param("pin"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, employee)
}

// ListEmployees godoc
// @Summary List payroll employees
// @Description Lists employees registered under the employer PIN.
// @Tags payroll
// @Produce json
// @Param pin path string true "Employer PIN"
// @Success 200 {array} models.PayrollEmployee
// @Failure 400 {object} ErrorResponse
// @Router /payroll/{pin}/employees [get]
func ListEmployees(c *gin.Context) {
	ctx, span := otel.Tracer("").Start(c.Request.Context(), "ListEmployees")
	defer span.End()

	if services.PayrollServiceInstance == nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "payroll service unavailable"})
		return
	}

	employees, err := services.PayrollServiceInstance.ListEmployees(ctx, c.Param("pin"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, employees)
}

// RemoveEmployee godoc
// @Summary Remove a payroll employee
// @Description Removes one employee record under the employer PIN.
// @Tags payroll
// @Produce json
// @Param pin path string true "Employer PIN"
// @Param id path string true "Employee record ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /payroll/{pin}/employees/{id} [delete]
func RemoveEmployee(c *gin.Context) {
	ctx, span := otel.Tracer("").Start(c.Request.Context(), "RemoveEmployee")
	defer span.End()

	if services.PayrollServiceInstance == nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "payroll service unavailable"})
		return
	}

	if err := services.PayrollServiceInstance.RemoveEmployee(ctx, c.Param("pin"), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "employee removed"})
}
