package handler

import (
	"fmt"
	"net/http"

	accountingapp "github.com/botforce/unity/internal/application/accounting"
	"github.com/gin-gonic/gin"
)

// AccountingExportHandler handles accountant export endpoints
type AccountingExportHandler struct {
	BaseHandler
	exportService *accountingapp.ExportService
}

// NewAccountingExportHandler creates a new AccountingExportHandler
func NewAccountingExportHandler(exportService *accountingapp.ExportService) *AccountingExportHandler {
	return &AccountingExportHandler{exportService: exportService}
}

// Create godoc
// @ID           createAccountingExport
//
//	@Summary		Snapshot a period for the accountant
//	@Description	Collects numbered documents and approved expenses of the period and archives them as CSV.
//	@Tags			accounting-exports
//	@Accept			json
//	@Produce		json
//	@Param			request	body		accountingapp.CreateExportRequest	true	"Period"
//	@Success		201		{object}	dto.APIResponse[accountingapp.ExportResponse]
//	@Failure		400		{object}	dto.ErrorResponse
//	@Failure		422		{object}	dto.ErrorResponse
//	@Failure		502		{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/accounting-exports [post]
func (h *AccountingExportHandler) Create(c *gin.Context) {
	tenantID, userID, ok := h.identity(c)
	if !ok {
		return
	}

	var req accountingapp.CreateExportRequest
	if !h.bindJSON(c, &req) {
		return
	}

	export, err := h.exportService.Create(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, export)
}

// GetByID godoc
// @ID           getAccountingExportById
//
//	@Summary		Get an export with its rows
//	@Tags			accounting-exports
//	@Produce		json
//	@Param			id	path		string	true	"Export ID"	format(uuid)
//	@Success		200	{object}	dto.APIResponse[accountingapp.ExportResponse]
//	@Failure		404	{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/accounting-exports/{id} [get]
func (h *AccountingExportHandler) GetByID(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}
	exportID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	export, err := h.exportService.GetByID(c.Request.Context(), tenantID, exportID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, export)
}

// List godoc
// @ID           listAccountingExports
//
//	@Summary		List exports
//	@Tags			accounting-exports
//	@Produce		json
//	@Param			search		query		string	false	"Search by name"
//	@Param			page		query		int		false	"Page number"	default(1)
//	@Param			page_size	query		int		false	"Page size"		default(20)	maximum(100)
//	@Success		200			{object}	dto.APIResponse[[]accountingapp.ExportResponse]
//	@Security		BearerAuth
//	@Router			/accounting-exports [get]
func (h *AccountingExportHandler) List(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}

	var filter accountingapp.ExportListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	exports, total, err := h.exportService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, exports, total, filter.Page, filter.PageSize)
}

// Lock godoc
// @ID           lockAccountingExport
//
//	@Summary		Lock an export once handed to the accountant
//	@Tags			accounting-exports
//	@Produce		json
//	@Param			id	path		string	true	"Export ID"	format(uuid)
//	@Success		200	{object}	dto.APIResponse[accountingapp.ExportResponse]
//	@Failure		404	{object}	dto.ErrorResponse
//	@Failure		422	{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/accounting-exports/{id}/lock [post]
func (h *AccountingExportHandler) Lock(c *gin.Context) {
	tenantID, userID, ok := h.identity(c)
	if !ok {
		return
	}
	exportID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	export, err := h.exportService.Lock(c.Request.Context(), tenantID, userID, exportID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, export)
}

// Delete godoc
// @ID           deleteAccountingExport
//
//	@Summary		Delete an unlocked export
//	@Tags			accounting-exports
//	@Param			id	path	string	true	"Export ID"	format(uuid)
//	@Success		204
//	@Failure		404	{object}	dto.ErrorResponse
//	@Failure		422	{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/accounting-exports/{id} [delete]
func (h *AccountingExportHandler) Delete(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}
	exportID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	if err := h.exportService.Delete(c.Request.Context(), tenantID, exportID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Download godoc
// @ID           downloadAccountingExport
//
//	@Summary		Download the export CSV
//	@Description	Returns a presigned URL when the file is archived in object storage, otherwise streams the CSV.
//	@Tags			accounting-exports
//	@Produce		json
//	@Produce		text/csv
//	@Param			id	path		string	true	"Export ID"	format(uuid)
//	@Success		200	{object}	dto.APIResponse[accountingapp.DownloadResponse]
//	@Failure		404	{object}	dto.ErrorResponse
//	@Failure		502	{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/accounting-exports/{id}/download [get]
func (h *AccountingExportHandler) Download(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}
	exportID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	download, err := h.exportService.Download(c.Request.Context(), tenantID, exportID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if download.URL != "" {
		h.Success(c, download)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", download.FileName))
	c.Data(http.StatusOK, accountingapp.CSVContentType, download.Content)
}
