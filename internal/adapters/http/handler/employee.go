package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nikkisuraj26/cafe54-timecard/internal/core/employee"
	"github.com/nikkisuraj26/cafe54-timecard/pkg/logger"
)

type employeeResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ListEmployees は従業員名をアルファベット順で返します。
func (h *Handler) ListEmployees(c echo.Context) error {
	names, err := h.employees.ListEmployees(c.Request().Context())
	if err != nil {
		return err
	}
	if names == nil {
		names = []string{}
	}
	return c.JSON(http.StatusOK, names)
}

// AddEmployee は従業員を登録します。
func (h *Handler) AddEmployee(c echo.Context) error {
	var req addEmployeeRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if err := req.validate(); err != nil {
		return err
	}

	created, err := h.employees.AddEmployee(c.Request().Context(), employee.AddEmployeeInput{Name: req.Name})
	if err != nil {
		return err
	}

	h.metrics.IncEmployeeAdded()
	h.log.Info(c.Request().Context(), "employee added", logger.String("name", created.Name))
	return c.JSON(http.StatusCreated, employeeResponse{ID: created.ID, Name: created.Name})
}
