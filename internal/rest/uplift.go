package rest

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"causalUplift/business/uplift"
	"causalUplift/domain"
	"causalUplift/pkg/metrics"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	UpliftHandler struct {
		validate      *validator.Validate
		upliftService UpliftService
	}

	UpliftService interface {
		Config() uplift.Config
		GenerateReportWith(ctx context.Context, cfg uplift.Config) (domain.UpliftReport, error)
		GetReport(ctx context.Context, id string) (domain.UpliftReport, error)
		ListReports(ctx context.Context, limit int) ([]domain.UpliftReport, error)
		LatestChart(ctx context.Context) (domain.Artifact, io.ReadCloser, error)
	}

	// GenerateReportRequest overrides the configured split for one run.
	GenerateReportRequest struct {
		TestRatio *float64 `json:"test_ratio" validate:"omitempty,gt=0,lt=1"`
		Seed      *int64   `json:"seed" validate:"omitempty,gte=0"`
	}

	ListReportsQuery struct {
		Limit int `query:"limit" validate:"gte=0,lte=100"`
	}
)

// ResponseError represent the response error struct
type ResponseError struct {
	Message string `json:"message"`
}

func NewUpliftHandler(svc UpliftService) *UpliftHandler {
	return &UpliftHandler{
		validate:      validator.New(),
		upliftService: svc,
	}
}

// POST /api/v1/uplift/reports
func (h *UpliftHandler) GenerateReport(c echo.Context) error {
	start := time.Now()
	defer observe("generate_report", start, c)

	var req GenerateReportRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	cfg := h.upliftService.Config()
	if req.TestRatio != nil {
		cfg.TestRatio = *req.TestRatio
	}
	if req.Seed != nil {
		cfg.Seed = *req.Seed
	}

	report, err := h.upliftService.GenerateReportWith(c.Request().Context(), cfg)
	if err != nil {
		return c.JSON(StatusFor(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(report))
}

// GET /api/v1/uplift/reports?limit=20
func (h *UpliftHandler) ListReports(c echo.Context) error {
	start := time.Now()
	defer observe("list_reports", start, c)

	var q ListReportsQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	reports, err := h.upliftService.ListReports(c.Request().Context(), q.Limit)
	if err != nil {
		return c.JSON(StatusFor(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(reports))
}

// GET /api/v1/uplift/reports/:id
func (h *UpliftHandler) GetReport(c echo.Context) error {
	start := time.Now()
	defer observe("get_report", start, c)

	report, err := h.upliftService.GetReport(c.Request().Context(), c.Param("id"))
	if err != nil {
		return c.JSON(StatusFor(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(report))
}

// GET /api/v1/uplift/chart
func (h *UpliftHandler) LatestChart(c echo.Context) error {
	start := time.Now()
	defer observe("latest_chart", start, c)

	artifact, body, err := h.upliftService.LatestChart(c.Request().Context())
	if err != nil {
		return c.JSON(StatusFor(err), ResponseError{Message: err.Error()})
	}
	defer body.Close()

	contentType := artifact.ContentType
	if contentType == "" {
		contentType = "image/png"
	}
	return c.Stream(http.StatusOK, contentType, body)
}

func observe(route string, start time.Time, c echo.Context) {
	metrics.HTTPRequestLatency.WithLabelValues(route).Observe(time.Since(start).Seconds())
	metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(c.Response().Status)).Inc()
}

// StatusFor maps pipeline errors onto HTTP status codes.
func StatusFor(err error) int {
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		return he.Code
	case errors.Is(err, domain.ErrReportNotFound), errors.Is(err, domain.ErrArtifactNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDataAccess):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConfiguration), errors.Is(err, domain.ErrInsufficientData):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
