package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"iris-api/internal/inference"
	"iris-api/internal/logger"
	"iris-api/internal/middleware"
	"iris-api/internal/validation"
)

type Handler struct {
	service *inference.Service
}

func NewHandler(service *inference.Service) *Handler {
	return &Handler{service: service}
}

type HealthResponse struct {
	Status        string `json:"status"`
	IsModelLoaded bool   `json:"is_model_loaded"`
}

type ValidationErrorResponse struct {
	Error  string                  `json:"error"`
	Fields []validation.FieldError `json:"fields"`
}

type BatchResponse struct {
	Predictions []inference.Prediction `json:"predictions"`
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:        "healthy",
		IsModelLoaded: h.service.ModelLoaded(),
	})
}

func (h *Handler) Predict(c *gin.Context) {
	var req validation.MeasurementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.rejectJSON(c, err)
		return
	}

	if fieldErrs := validation.Validate(req); len(fieldErrs) > 0 {
		c.JSON(http.StatusUnprocessableEntity, ValidationErrorResponse{
			Error:  "validation failed",
			Fields: fieldErrs,
		})
		return
	}

	prediction, err := h.service.Predict(req.Measurement())
	if err != nil {
		h.rejectInference(c, err)
		return
	}

	c.JSON(http.StatusOK, prediction)
}

func (h *Handler) PredictBatch(c *gin.Context) {
	var reqs []validation.MeasurementRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		h.rejectJSON(c, err)
		return
	}

	var fieldErrs []validation.FieldError
	measurements := make([]inference.Measurement, 0, len(reqs))

	for i, req := range reqs {
		if errs := validation.Validate(req); len(errs) > 0 {
			fieldErrs = append(fieldErrs, validation.PrefixIndex(errs, i)...)
			continue
		}
		measurements = append(measurements, req.Measurement())
	}

	if len(fieldErrs) > 0 {
		c.JSON(http.StatusUnprocessableEntity, ValidationErrorResponse{
			Error:  "validation failed",
			Fields: fieldErrs,
		})
		return
	}

	predictions, err := h.service.PredictBatch(measurements)
	if err != nil {
		h.rejectInference(c, err)
		return
	}

	c.JSON(http.StatusOK, BatchResponse{Predictions: predictions})
}

func (h *Handler) rejectJSON(c *gin.Context, err error) {
	if fieldErrs := validation.FieldErrorsFromJSON(err); len(fieldErrs) > 0 {
		c.JSON(http.StatusUnprocessableEntity, ValidationErrorResponse{
			Error:  "validation failed",
			Fields: fieldErrs,
		})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
}

// rejectInference reports a model failure as an opaque internal error. The
// underlying cause is logged, never returned to the caller.
func (h *Handler) rejectInference(c *gin.Context, err error) {
	logger.WithFields(map[string]interface{}{
		"request_id": middleware.GetRequestID(c),
		"path":       c.Request.URL.Path,
	}).Errorf("inference failed: %v", err)

	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal inference error"})
}
