package handler

import (
	"io"
	"net/http"

	expenseapp "github.com/botforce/unity/internal/application/expense"
	"github.com/botforce/unity/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// DefaultMaxReceiptSize caps receipt uploads for scanning
const DefaultMaxReceiptSize int64 = 10 << 20

// ExpenseHandler handles expense capture, approval and receipt endpoints
type ExpenseHandler struct {
	BaseHandler
	expenseService *expenseapp.ExpenseService
	maxReceiptSize int64
}

// NewExpenseHandler creates a new ExpenseHandler. A non-positive
// maxReceiptSize falls back to DefaultMaxReceiptSize.
func NewExpenseHandler(expenseService *expenseapp.ExpenseService, maxReceiptSize int64) *ExpenseHandler {
	if maxReceiptSize <= 0 {
		maxReceiptSize = DefaultMaxReceiptSize
	}
	return &ExpenseHandler{
		expenseService: expenseService,
		maxReceiptSize: maxReceiptSize,
	}
}

// Create godoc
// @ID           createExpense
//
//	@Summary		Record an expense
//	@Tags			expenses
//	@Accept			json
//	@Produce		json
//	@Param			request	body		expenseapp.CreateExpenseRequest	true	"Expense"
//	@Success		201		{object}	dto.APIResponse[expenseapp.ExpenseResponse]
//	@Failure		400		{object}	dto.ErrorResponse
//	@Failure		422		{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/expenses [post]
func (h *ExpenseHandler) Create(c *gin.Context) {
	tenantID, userID, ok := h.identity(c)
	if !ok {
		return
	}

	var req expenseapp.CreateExpenseRequest
	if !h.bindJSON(c, &req) {
		return
	}

	e, err := h.expenseService.Create(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, e)
}

// CreateMileage godoc
// @ID           createMileageExpense
//
//	@Summary		Record a mileage claim
//	@Description	Amount is distance times rate; without a rate the configured mileage rate applies.
//	@Tags			expenses
//	@Accept			json
//	@Produce		json
//	@Param			request	body		expenseapp.MileageRequest	true	"Trip"
//	@Success		201		{object}	dto.APIResponse[expenseapp.ExpenseResponse]
//	@Failure		400		{object}	dto.ErrorResponse
//	@Failure		422		{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/expenses/mileage [post]
func (h *ExpenseHandler) CreateMileage(c *gin.Context) {
	tenantID, userID, ok := h.identity(c)
	if !ok {
		return
	}

	var req expenseapp.MileageRequest
	if !h.bindJSON(c, &req) {
		return
	}

	e, err := h.expenseService.CreateMileage(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, e)
}

// GetByID godoc
// @ID           getExpenseById
//
//	@Summary		Get expense by ID
//	@Tags			expenses
//	@Produce		json
//	@Param			id	path		string	true	"Expense ID"	format(uuid)
//	@Success		200	{object}	dto.APIResponse[expenseapp.ExpenseResponse]
//	@Failure		404	{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/expenses/{id} [get]
func (h *ExpenseHandler) GetByID(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}
	expenseID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	e, err := h.expenseService.GetByID(c.Request.Context(), tenantID, expenseID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, e)
}

// List godoc
// @ID           listExpenses
//
//	@Summary		List expenses
//	@Tags			expenses
//	@Produce		json
//	@Param			search		query		string	false	"Search by merchant or description"
//	@Param			status		query		string	false	"Status"	Enums(draft, submitted, approved, rejected, exported)
//	@Param			category	query		string	false	"Category"
//	@Param			customer_id	query		string	false	"Customer ID"	format(uuid)
//	@Param			billable	query		bool	false	"Only approved, unbilled expenses"
//	@Param			mine		query		bool	false	"Only expenses recorded by the caller"
//	@Param			from_date	query		string	false	"On or after (YYYY-MM-DD)"
//	@Param			to_date		query		string	false	"On or before (YYYY-MM-DD)"
//	@Param			page		query		int		false	"Page number"	default(1)
//	@Param			page_size	query		int		false	"Page size"		default(20)	maximum(100)
//	@Success		200			{object}	dto.APIResponse[[]expenseapp.ExpenseResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/expenses [get]
func (h *ExpenseHandler) List(c *gin.Context) {
	tenantID, userID, ok := h.identity(c)
	if !ok {
		return
	}

	var filter expenseapp.ExpenseListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	expenses, total, err := h.expenseService.List(c.Request.Context(), tenantID, userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, expenses, total, filter.Page, filter.PageSize)
}

// Update godoc
// @ID           updateExpense
//
//	@Summary		Replace a draft or rejected expense
//	@Tags			expenses
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Expense ID"	format(uuid)
//	@Param			request	body		expenseapp.UpdateExpenseRequest	true	"Expense"
//	@Success		200		{object}	dto.APIResponse[expenseapp.ExpenseResponse]
//	@Failure		400		{object}	dto.ErrorResponse
//	@Failure		404		{object}	dto.ErrorResponse
//	@Failure		422		{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/expenses/{id} [put]
func (h *ExpenseHandler) Update(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}
	expenseID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req expenseapp.UpdateExpenseRequest
	if !h.bindJSON(c, &req) {
		return
	}

	e, err := h.expenseService.Update(c.Request.Context(), tenantID, expenseID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, e)
}

// UpdateMileage godoc
// @ID           updateMileageExpense
//
//	@Summary		Replace a mileage claim
//	@Tags			expenses
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Expense ID"	format(uuid)
//	@Param			request	body		expenseapp.MileageRequest	true	"Trip"
//	@Success		200		{object}	dto.APIResponse[expenseapp.ExpenseResponse]
//	@Failure		400		{object}	dto.ErrorResponse
//	@Failure		404		{object}	dto.ErrorResponse
//	@Failure		422		{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/expenses/{id}/mileage [put]
func (h *ExpenseHandler) UpdateMileage(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}
	expenseID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req expenseapp.MileageRequest
	if !h.bindJSON(c, &req) {
		return
	}

	e, err := h.expenseService.UpdateMileage(c.Request.Context(), tenantID, expenseID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, e)
}

// Delete godoc
// @ID           deleteExpense
//
//	@Summary		Delete an expense
//	@Tags			expenses
//	@Param			id	path	string	true	"Expense ID"	format(uuid)
//	@Success		204
//	@Failure		404	{object}	dto.ErrorResponse
//	@Failure		422	{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/expenses/{id} [delete]
func (h *ExpenseHandler) Delete(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}
	expenseID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	if err := h.expenseService.Delete(c.Request.Context(), tenantID, expenseID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Submit godoc
// @ID           submitExpense
//
//	@Summary		Submit an expense for approval
//	@Tags			expenses
//	@Produce		json
//	@Param			id	path		string	true	"Expense ID"	format(uuid)
//	@Success		200	{object}	dto.APIResponse[expenseapp.ExpenseResponse]
//	@Failure		404	{object}	dto.ErrorResponse
//	@Failure		422	{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/expenses/{id}/submit [post]
func (h *ExpenseHandler) Submit(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}
	expenseID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	e, err := h.expenseService.Submit(c.Request.Context(), tenantID, expenseID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, e)
}

// Approve godoc
// @ID           approveExpense
//
//	@Summary		Approve a submitted expense
//	@Tags			expenses
//	@Produce		json
//	@Param			id	path		string	true	"Expense ID"	format(uuid)
//	@Success		200	{object}	dto.APIResponse[expenseapp.ExpenseResponse]
//	@Failure		404	{object}	dto.ErrorResponse
//	@Failure		422	{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/expenses/{id}/approve [post]
func (h *ExpenseHandler) Approve(c *gin.Context) {
	tenantID, userID, ok := h.identity(c)
	if !ok {
		return
	}
	expenseID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	e, err := h.expenseService.Approve(c.Request.Context(), tenantID, userID, expenseID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, e)
}

// Reject godoc
// @ID           rejectExpense
//
//	@Summary		Reject a submitted expense
//	@Tags			expenses
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Expense ID"	format(uuid)
//	@Param			request	body		expenseapp.RejectExpenseRequest	true	"Rejection reason"
//	@Success		200		{object}	dto.APIResponse[expenseapp.ExpenseResponse]
//	@Failure		400		{object}	dto.ErrorResponse
//	@Failure		422		{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/expenses/{id}/reject [post]
func (h *ExpenseHandler) Reject(c *gin.Context) {
	tenantID, userID, ok := h.identity(c)
	if !ok {
		return
	}
	expenseID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req expenseapp.RejectExpenseRequest
	if !h.bindJSON(c, &req) {
		return
	}

	e, err := h.expenseService.Reject(c.Request.Context(), tenantID, userID, expenseID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, e)
}

// Reopen godoc
// @ID           reopenExpense
//
//	@Summary		Move a rejected expense back to draft
//	@Tags			expenses
//	@Produce		json
//	@Param			id	path		string	true	"Expense ID"	format(uuid)
//	@Success		200	{object}	dto.APIResponse[expenseapp.ExpenseResponse]
//	@Failure		404	{object}	dto.ErrorResponse
//	@Failure		422	{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/expenses/{id}/reopen [post]
func (h *ExpenseHandler) Reopen(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}
	expenseID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	e, err := h.expenseService.Reopen(c.Request.Context(), tenantID, expenseID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, e)
}

// InitiateReceiptUpload godoc
// @ID           initiateReceiptUpload
//
//	@Summary		Get a presigned receipt upload URL
//	@Description	The client PUTs the file to the returned URL, then confirms the key.
//	@Tags			expenses
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Expense ID"	format(uuid)
//	@Param			request	body		expenseapp.ReceiptUploadRequest	true	"File metadata"
//	@Success		200		{object}	dto.APIResponse[expenseapp.ReceiptUploadResponse]
//	@Failure		400		{object}	dto.ErrorResponse
//	@Failure		422		{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/expenses/{id}/receipt/upload-url [post]
func (h *ExpenseHandler) InitiateReceiptUpload(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}
	expenseID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req expenseapp.ReceiptUploadRequest
	if !h.bindJSON(c, &req) {
		return
	}

	upload, err := h.expenseService.InitiateReceiptUpload(c.Request.Context(), tenantID, expenseID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, upload)
}

// ConfirmReceipt godoc
// @ID           confirmReceipt
//
//	@Summary		Attach an uploaded receipt
//	@Tags			expenses
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Expense ID"	format(uuid)
//	@Param			request	body		expenseapp.ConfirmReceiptRequest	true	"Uploaded key"
//	@Success		200		{object}	dto.APIResponse[expenseapp.ExpenseResponse]
//	@Failure		400		{object}	dto.ErrorResponse
//	@Failure		422		{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/expenses/{id}/receipt/confirm [post]
func (h *ExpenseHandler) ConfirmReceipt(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}
	expenseID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req expenseapp.ConfirmReceiptRequest
	if !h.bindJSON(c, &req) {
		return
	}

	e, err := h.expenseService.ConfirmReceipt(c.Request.Context(), tenantID, expenseID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, e)
}

// ScanReceipt godoc
// @ID           scanReceipt
//
//	@Summary		Read a receipt
//	@Description	Extracts merchant, date and amounts to prefill a new expense. Nothing is stored.
//	@Tags			expenses
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file	true	"Receipt image or PDF"
//	@Success		200		{object}	dto.APIResponse[expenseapp.ScannedReceiptResponse]
//	@Failure		400		{object}	dto.ErrorResponse
//	@Failure		413		{object}	dto.ErrorResponse
//	@Failure		422		{object}	dto.ErrorResponse
//	@Failure		502		{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/expenses/scan-receipt [post]
func (h *ExpenseHandler) ScanReceipt(c *gin.Context) {
	if _, _, ok := h.identity(c); !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "A receipt file is required")
		return
	}
	if file.Size > h.maxReceiptSize {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeBodyTooLarge, "Receipt exceeds the maximum file size")
		return
	}

	f, err := file.Open()
	if err != nil {
		h.BadRequest(c, "Could not read the uploaded file")
		return
	}
	defer f.Close()

	content, err := io.ReadAll(io.LimitReader(f, h.maxReceiptSize))
	if err != nil {
		h.BadRequest(c, "Could not read the uploaded file")
		return
	}

	mimeType := file.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(content)
	}

	scanned, err := h.expenseService.ScanReceipt(c.Request.Context(), content, mimeType)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, scanned)
}
