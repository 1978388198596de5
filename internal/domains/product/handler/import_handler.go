package handler

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"agromarket-backend/internal/domains/product/model"
	"agromarket-backend/internal/domains/product/service"
	"agromarket-backend/internal/shared/response"
)

const templateFileName = "urun-ice-aktarma-sablonu.xlsx"

type ImportHandler struct {
	imports     service.ImportServiceInterface
	history     service.HistoryServiceInterface
	catalog     service.CatalogServiceInterface
	timeout     time.Duration
	maxFileSize int64
}

// NewImportHandler creates the supplier import handler.
// timeout bounds a whole import; maxFileSize rejects uploads before reading them.
func NewImportHandler(
	imports service.ImportServiceInterface,
	history service.HistoryServiceInterface,
	catalog service.CatalogServiceInterface,
	timeout time.Duration,
	maxFileSize int64,
) *ImportHandler {
	return &ImportHandler{
		imports:     imports,
		history:     history,
		catalog:     catalog,
		timeout:     timeout,
		maxFileSize: maxFileSize,
	}
}

// ImportProducts - POST /api/v1/supplier/products/import
// 200 when every row was applied, 207 when some rows failed,
// 422 when validation rejected the file before any write.
func (h *ImportHandler) ImportProducts(c *gin.Context) {
	supplierID, ok := supplierFromContext(c)
	if !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "FILE_REQUIRED", "file is required (multipart/form-data)")
		return
	}
	if h.maxFileSize > 0 && file.Size > h.maxFileSize {
		model.HandleProductError(c, fmt.Errorf("%w (max %dMB)", model.ErrFileTooLarge, h.maxFileSize/(1024*1024)))
		return
	}

	src, err := file.Open()
	if err != nil {
		model.HandleProductError(c, fmt.Errorf("%w: %v", model.ErrInvalidFile, err))
		return
	}
	defer src.Close()

	log.Info().
		Str("supplier_id", supplierID.String()).
		Str("file_name", file.Filename).
		Int64("file_size", file.Size).
		Msg("Received product import request")

	ctx := c.Request.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	result, err := h.imports.ImportProducts(ctx, supplierID, file.Filename, src)
	if err != nil {
		model.HandleProductError(c, err)
		return
	}

	response.WithData(c, importStatus(result), result.Success, result, &response.Meta{
		Summary: importSummary(result),
	})
}

// ListImports - GET /api/v1/supplier/imports?limit=&offset=
func (h *ImportHandler) ListImports(c *gin.Context) {
	supplierID, ok := supplierFromContext(c)
	if !ok {
		return
	}

	limit, err := queryInt(c, "limit", service.DefaultHistoryLimit)
	if err != nil {
		response.BadRequest(c, "limit must be a number")
		return
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		response.BadRequest(c, "offset must be a number")
		return
	}
	if limit <= 0 {
		limit = service.DefaultHistoryLimit
	}
	if limit > service.MaxHistoryLimit {
		limit = service.MaxHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}

	runs, err := h.history.ListImports(c.Request.Context(), supplierID, limit, offset)
	if err != nil {
		model.HandleProductError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, runs, &response.Meta{
		Limit:  limit,
		Offset: offset,
		Total:  len(runs),
	})
}

// GetImport - GET /api/v1/supplier/imports/:id
func (h *ImportHandler) GetImport(c *gin.Context) {
	supplierID, ok := supplierFromContext(c)
	if !ok {
		return
	}

	importID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid import id")
		return
	}

	run, err := h.history.GetImport(c.Request.Context(), supplierID, importID)
	if err != nil {
		model.HandleProductError(c, err)
		return
	}

	response.Success(c, http.StatusOK, run)
}

// DownloadTemplate - GET /api/v1/supplier/products/import/template
func (h *ImportHandler) DownloadTemplate(c *gin.Context) {
	f, err := h.catalog.BuildTemplate()
	if err != nil {
		model.HandleProductError(c, err)
		return
	}
	defer f.Close()

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		model.HandleProductError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, templateFileName))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// ExportProducts - GET /api/v1/supplier/products/export?format=xlsx|csv&filter=all|active|inactive
func (h *ImportHandler) ExportProducts(c *gin.Context) {
	supplierID, ok := supplierFromContext(c)
	if !ok {
		return
	}

	q := exportQuery{
		Format: strings.ToLower(c.DefaultQuery("format", service.FormatXLSX)),
		Filter: c.DefaultQuery("filter", string(model.FilterAll)),
	}
	if err := q.Validate(); err != nil {
		log.Debug().Err(err).Str("supplier_id", supplierID.String()).Msg("rejected export query")
		model.HandleProductError(c, model.ErrInvalidExportQuery)
		return
	}

	file, err := h.catalog.ExportProducts(c.Request.Context(), supplierID, q.Format, model.ProductFilter(q.Filter))
	if err != nil {
		model.HandleProductError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, file.FileName))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

type exportQuery struct {
	Format string
	Filter string
}

func (q exportQuery) Validate() error {
	return validation.ValidateStruct(&q,
		validation.Field(&q.Format, validation.Required, validation.In(service.FormatXLSX, service.FormatCSV)),
		validation.Field(&q.Filter, validation.Required,
			validation.In(string(model.FilterAll), string(model.FilterActive), string(model.FilterInactive))),
	)
}

// supplierFromContext reads the actor set by the auth middleware and writes 401 when it is missing
func supplierFromContext(c *gin.Context) (uuid.UUID, bool) {
	userID := c.GetString("user_id")
	id, err := uuid.Parse(userID)
	if userID == "" || err != nil {
		model.HandleProductError(c, model.ErrUnauthorized)
		return uuid.Nil, false
	}
	return id, true
}

func queryInt(c *gin.Context, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func importStatus(result *model.ImportResult) int {
	switch {
	case result.Success:
		return http.StatusOK
	case result.ImportID == "":
		return http.StatusUnprocessableEntity
	default:
		return http.StatusMultiStatus
	}
}

func importSummary(result *model.ImportResult) string {
	switch {
	case result.Success:
		return fmt.Sprintf("%d products added, %d updated", result.Created, result.Updated)
	case result.ImportID == "":
		return fmt.Sprintf("Import rejected: %d errors found, nothing was saved", len(result.Errors))
	default:
		return fmt.Sprintf("Import finished with errors: %d products added, %d updated, %d rows failed",
			result.Created, result.Updated, result.FailedRows)
	}
}
