package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arcinech/companyApp/internal/apperror"
	"github.com/arcinech/companyApp/internal/models"
	"github.com/arcinech/companyApp/internal/service"
	"github.com/arcinech/companyApp/internal/store"
)

// departmentIDKey is the request key that sets department as a reference.
const departmentIDKey = "departmentId"

type Handler struct {
	service service.Manager
	logger  zerolog.Logger
}

func NewHandler(svc service.Manager, logger zerolog.Logger) *Handler {
	return &Handler{
		service: svc,
		logger:  logger.With().Str("component", "httpapi").Logger(),
	}
}

// Register mounts the API routes on r.
func (h *Handler) Register(r gin.IRouter) {
	employees := r.Group("/employees")
	employees.POST("", h.createEmployee)
	employees.GET("", h.listEmployees)
	employees.GET("/:id", h.getEmployee)
	employees.PATCH("/:id", h.updateEmployee)
	employees.DELETE("/:id", h.deleteEmployee)

	departments := r.Group("/departments")
	departments.POST("", h.createDepartment)
	departments.GET("", h.listDepartments)
	departments.GET("/:id", h.getDepartment)
	departments.DELETE("/:id", h.deleteDepartment)
}

func (h *Handler) createDepartment(c *gin.Context) {
	body, err := decodeJSON(c.Request)
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}

	department, err := h.service.CreateDepartment(c.Request.Context(), models.Attributes(body))
	if err != nil {
		h.respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, department)
}

func (h *Handler) listDepartments(c *gin.Context) {
	departments, err := h.service.ListDepartments(c.Request.Context())
	if err != nil {
		h.respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, nonNil(departments))
}

func (h *Handler) getDepartment(c *gin.Context) {
	departmentID, ok := pathID(c, "invalid department id")
	if !ok {
		return
	}

	department, err := h.service.GetDepartment(c.Request.Context(), departmentID)
	if err != nil {
		h.respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, department)
}

func (h *Handler) deleteDepartment(c *gin.Context) {
	departmentID, ok := pathID(c, "invalid department id")
	if !ok {
		return
	}

	mode := service.DeleteMode(strings.TrimSpace(strings.ToLower(c.DefaultQuery("mode", string(service.DeleteModeCascade)))))
	if err := h.service.DeleteDepartment(c.Request.Context(), departmentID, mode); err != nil {
		h.respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) createEmployee(c *gin.Context) {
	body, err := decodeJSON(c.Request)
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := referenceDepartment(body); err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}

	employee, err := h.service.CreateEmployee(c.Request.Context(), models.Attributes(body))
	if err != nil {
		h.respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, employee)
}

func (h *Handler) listEmployees(c *gin.Context) {
	populate, err := parsePopulate(c)
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}

	filter := store.Filter{}
	for key, values := range c.Request.URL.Query() {
		if key == "populate" || len(values) == 0 {
			continue
		}
		filter[key] = values[0]
	}
	if err := referenceDepartment(filter); err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}

	employees, err := h.service.ListEmployees(c.Request.Context(), service.ListEmployeesOptions{
		Filter:   filter,
		Populate: populate,
	})
	if err != nil {
		h.respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, nonNil(employees))
}

func (h *Handler) getEmployee(c *gin.Context) {
	employeeID, ok := pathID(c, "invalid employee id")
	if !ok {
		return
	}
	populate, err := parsePopulate(c)
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}

	employee, err := h.service.GetEmployee(c.Request.Context(), employeeID, populate)
	if err != nil {
		h.respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, employee)
}

func (h *Handler) updateEmployee(c *gin.Context) {
	employeeID, ok := pathID(c, "invalid employee id")
	if !ok {
		return
	}

	body, err := decodeJSON(c.Request)
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := referenceDepartment(body); err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}

	employee, err := h.service.UpdateEmployee(c.Request.Context(), employeeID, store.Update(body))
	if err != nil {
		h.respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, employee)
}

func (h *Handler) deleteEmployee(c *gin.Context) {
	employeeID, ok := pathID(c, "invalid employee id")
	if !ok {
		return
	}

	if err := h.service.DeleteEmployee(c.Request.Context(), employeeID); err != nil {
		h.respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) respondWithError(c *gin.Context, err error) {
	var validationErr *apperror.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  validationErr.Error(),
			"errors": validationErr.Errors,
		})
		return
	}

	switch apperror.GetCode(err) {
	case apperror.CodeValidation:
		writeError(c, http.StatusBadRequest, err.Error())
	case apperror.CodeNotFound:
		writeError(c, http.StatusNotFound, err.Error())
	case apperror.CodeConflict:
		writeError(c, http.StatusConflict, err.Error())
	default:
		h.logger.Error().Err(err).Str("path", c.FullPath()).Msg("unexpected error")
		writeError(c, http.StatusInternalServerError, "internal server error")
	}
}

func decodeJSON(r *http.Request) (map[string]any, error) {
	if r.Body == nil {
		return nil, errors.New("request body is required")
	}

	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()

	var body map[string]any
	if err := decoder.Decode(&body); err != nil || body == nil {
		return nil, errors.New("invalid JSON body")
	}

	var extra json.RawMessage
	if err := decoder.Decode(&extra); err != io.EOF {
		return nil, errors.New("invalid JSON body")
	}
	return body, nil
}

// referenceDepartment replaces a departmentId key with a department
// reference.
func referenceDepartment(values map[string]any) error {
	raw, ok := values[departmentIDKey]
	if !ok {
		return nil
	}
	delete(values, departmentIDKey)

	hex, _ := raw.(string)
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(hex))
	if err != nil {
		return errors.New("departmentId must be a 24 character hex string")
	}
	values["department"] = id
	return nil
}

func parsePopulate(c *gin.Context) (bool, error) {
	raw := strings.TrimSpace(c.Query("populate"))
	if raw == "" {
		return false, nil
	}
	populate, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.New("populate must be a boolean")
	}
	return populate, nil
}

func pathID(c *gin.Context, message string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		writeError(c, http.StatusBadRequest, message)
		return primitive.NilObjectID, false
	}
	return id, true
}

func writeError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
