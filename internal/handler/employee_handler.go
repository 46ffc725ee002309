package handler

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/locvowork/excelmapper/internal/domain"
	"github.com/locvowork/excelmapper/internal/service"
	"github.com/locvowork/excelmapper/internal/service/serviceutils"
	"github.com/locvowork/excelmapper/pkg/excelmap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// multipartOverhead is the room left for part headers and boundaries on top
// of the workbook itself.
const multipartOverhead = 64 << 10

type EmployeeHandler struct {
	svc            service.EmployeeService
	maxUploadBytes int64
}

func NewEmployeeHandler(svc service.EmployeeService, maxUploadBytes int64) *EmployeeHandler {
	return &EmployeeHandler{svc: svc, maxUploadBytes: maxUploadBytes}
}

// UploadLimit bounds the request body of the import route so that oversized
// uploads are refused before they are parsed. Without a limit it does nothing.
func (h *EmployeeHandler) UploadLimit() echo.MiddlewareFunc {
	if h.maxUploadBytes <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return middleware.BodyLimit(fmt.Sprintf("%dB", h.maxUploadBytes+multipartOverhead))
}

// parseFilter reads limit, offset, gender, hired_from and hired_to (yyyy-mm-dd).
func parseFilter(c echo.Context) (domain.EmployeeFilter, error) {
	var filter domain.EmployeeFilter
	var err error
	if v := c.QueryParam("limit"); v != "" {
		if filter.Limit, err = strconv.Atoi(v); err != nil {
			return filter, fmt.Errorf("invalid limit %q", v)
		}
	}
	if v := c.QueryParam("offset"); v != "" {
		if filter.Offset, err = strconv.Atoi(v); err != nil {
			return filter, fmt.Errorf("invalid offset %q", v)
		}
	}
	filter.Gender = c.QueryParam("gender")
	if v := c.QueryParam("hired_from"); v != "" {
		if filter.HiredFrom, err = time.Parse("2006-01-02", v); err != nil {
			return filter, fmt.Errorf("invalid hired_from %q", v)
		}
	}
	if v := c.QueryParam("hired_to"); v != "" {
		if filter.HiredTo, err = time.Parse("2006-01-02", v); err != nil {
			return filter, fmt.Errorf("invalid hired_to %q", v)
		}
	}
	return filter, nil
}

func (h *EmployeeHandler) ListHandler(c echo.Context) error {
	filter, err := parseFilter(c)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid filter", err)
	}

	employees, err := h.svc.List(c.Request().Context(), filter)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to list employees", err)
	}

	return serviceutils.ResponseSuccess(c, http.StatusOK, "Employees listed successfully", employees)
}

// ExportHandler streams the filtered employees as an xlsx download.
func (h *EmployeeHandler) ExportHandler(c echo.Context) error {
	filter, err := parseFilter(c)
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid filter", err)
	}
	withSummary, _ := strconv.ParseBool(c.QueryParam("summary"))

	var buf bytes.Buffer
	req := service.ExportRequest{Filter: filter, SheetName: c.QueryParam("sheet"), WithSummary: withSummary}
	if err := h.svc.Export(c.Request().Context(), &buf, req); err != nil {
		if errors.Is(err, excelmap.ErrConfig) {
			return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid export request", err)
		}
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to export employees", err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="employees.xlsx"`)
	return c.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ImportHandler reads the multipart "file" upload. match=position reads
// columns in order, dry_run=true only parses.
func (h *EmployeeHandler) ImportHandler(c echo.Context) error {
	match, err := excelmap.ParseMatchType(c.QueryParam("match"))
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Invalid match type", err)
	}
	dryRun, _ := strconv.ParseBool(c.QueryParam("dry_run"))

	fh, err := c.FormFile("file")
	if err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) && he.Code == http.StatusRequestEntityTooLarge {
			return serviceutils.ResponseError(c, http.StatusRequestEntityTooLarge, "Workbook is too large", err)
		}
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Missing workbook upload", err)
	}
	if h.maxUploadBytes > 0 && fh.Size > h.maxUploadBytes {
		return serviceutils.ResponseError(c, http.StatusRequestEntityTooLarge, "Workbook is too large",
			fmt.Errorf("%d bytes exceeds the limit of %d", fh.Size, h.maxUploadBytes))
	}
	file, err := fh.Open()
	if err != nil {
		return serviceutils.ResponseError(c, http.StatusBadRequest, "Unreadable workbook upload", err)
	}
	defer file.Close()

	req := service.ImportRequest{Sheet: c.QueryParam("sheet"), Match: match, DryRun: dryRun}
	res, err := h.svc.Import(c.Request().Context(), file, req)
	if err != nil {
		return serviceutils.ResponseError(c, importStatus(err), "Failed to import employees", err)
	}

	return serviceutils.ResponseSuccess(c, http.StatusOK, "Employees imported successfully", res)
}

// importStatus maps workbook content problems to 400 and the rest to 500.
func importStatus(err error) int {
	switch {
	case errors.Is(err, excelmap.ErrMapping),
		errors.Is(err, excelmap.ErrLookup),
		errors.Is(err, excelmap.ErrSheetNotFound),
		errors.Is(err, excelmap.ErrInvalidWorkbook):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (h *EmployeeHandler) HealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
