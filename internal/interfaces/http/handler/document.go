package handler

import (
	invoicingapp "github.com/botforce/unity/internal/application/invoicing"
	"github.com/gin-gonic/gin"
)

// DocumentHandler handles invoice and credit note endpoints
type DocumentHandler struct {
	BaseHandler
	documentService *invoicingapp.DocumentService
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(documentService *invoicingapp.DocumentService) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
	}
}

// Create godoc
// @ID           createDocument
//
//	@Summary		Create a draft document
//	@Description	Creates a draft invoice or credit note. Totals are derived from the lines.
//	@Tags			documents
//	@Accept			json
//	@Produce		json
//	@Param			request	body		invoicingapp.CreateDocumentRequest	true	"Draft document"
//	@Success		201		{object}	dto.APIResponse[invoicingapp.DocumentResponse]
//	@Failure		400		{object}	dto.ErrorResponse
//	@Failure		404		{object}	dto.ErrorResponse
//	@Failure		422		{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/documents [post]
func (h *DocumentHandler) Create(c *gin.Context) {
	tenantID, userID, ok := h.identity(c)
	if !ok {
		return
	}

	var req invoicingapp.CreateDocumentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	doc, err := h.documentService.Create(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, doc)
}

// GetByID godoc
// @ID           getDocumentById
//
//	@Summary		Get document by ID
//	@Tags			documents
//	@Produce		json
//	@Param			id	path		string	true	"Document ID"	format(uuid)
//	@Success		200	{object}	dto.APIResponse[invoicingapp.DocumentResponse]
//	@Failure		404	{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/documents/{id} [get]
func (h *DocumentHandler) GetByID(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}
	documentID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	doc, err := h.documentService.GetByID(c.Request.Context(), tenantID, documentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, doc)
}

// List godoc
// @ID           listDocuments
//
//	@Summary		List documents
//	@Tags			documents
//	@Produce		json
//	@Param			search		query		string	false	"Search by number or customer"
//	@Param			type		query		string	false	"Document type"	Enums(invoice, credit_note)
//	@Param			status		query		string	false	"Status"		Enums(draft, issued, paid, cancelled)
//	@Param			customer_id	query		string	false	"Customer ID"	format(uuid)
//	@Param			from_date	query		string	false	"Issued on or after (YYYY-MM-DD)"
//	@Param			to_date		query		string	false	"Issued on or before (YYYY-MM-DD)"
//	@Param			page		query		int		false	"Page number"	default(1)
//	@Param			page_size	query		int		false	"Page size"		default(20)	maximum(100)
//	@Param			order_by	query		string	false	"Sort field"
//	@Param			order_dir	query		string	false	"Sort direction"	Enums(asc, desc)
//	@Success		200			{object}	dto.APIResponse[[]invoicingapp.DocumentListResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/documents [get]
func (h *DocumentHandler) List(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}

	var filter invoicingapp.DocumentListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	docs, total, err := h.documentService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, docs, total, filter.Page, filter.PageSize)
}

// Update godoc
// @ID           updateDocument
//
//	@Summary		Replace a draft
//	@Description	Only drafts can be edited. Issued documents are immutable.
//	@Tags			documents
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string								true	"Document ID"	format(uuid)
//	@Param			request	body		invoicingapp.UpdateDocumentRequest	true	"Draft document"
//	@Success		200		{object}	dto.APIResponse[invoicingapp.DocumentResponse]
//	@Failure		400		{object}	dto.ErrorResponse
//	@Failure		404		{object}	dto.ErrorResponse
//	@Failure		409		{object}	dto.ErrorResponse
//	@Failure		422		{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/documents/{id} [put]
func (h *DocumentHandler) Update(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}
	documentID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req invoicingapp.UpdateDocumentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	doc, err := h.documentService.Update(c.Request.Context(), tenantID, documentID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, doc)
}

// Delete godoc
// @ID           deleteDocument
//
//	@Summary		Delete a draft
//	@Description	Billed expenses on the draft become available again.
//	@Tags			documents
//	@Param			id	path	string	true	"Document ID"	format(uuid)
//	@Success		204
//	@Failure		404	{object}	dto.ErrorResponse
//	@Failure		422	{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/documents/{id} [delete]
func (h *DocumentHandler) Delete(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}
	documentID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	if err := h.documentService.Delete(c.Request.Context(), tenantID, documentID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Issue godoc
// @ID           issueDocument
//
//	@Summary		Issue a draft
//	@Description	Assigns the next gapless number, snapshots customer and company and locks the document.
//	@Tags			documents
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string								true	"Document ID"	format(uuid)
//	@Param			request	body		invoicingapp.IssueDocumentRequest	false	"Issue options"
//	@Success		200		{object}	dto.APIResponse[invoicingapp.DocumentResponse]
//	@Failure		404		{object}	dto.ErrorResponse
//	@Failure		409		{object}	dto.ErrorResponse
//	@Failure		422		{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/documents/{id}/issue [post]
func (h *DocumentHandler) Issue(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}
	documentID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req invoicingapp.IssueDocumentRequest
	if !h.bindOptionalJSON(c, &req) {
		return
	}

	doc, err := h.documentService.Issue(c.Request.Context(), tenantID, documentID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, doc)
}

// MarkPaid godoc
// @ID           markDocumentPaid
//
//	@Summary		Mark an issued invoice as paid
//	@Tags			documents
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Document ID"	format(uuid)
//	@Param			request	body		invoicingapp.MarkPaidRequest	false	"Payment date"
//	@Success		200		{object}	dto.APIResponse[invoicingapp.DocumentResponse]
//	@Failure		404		{object}	dto.ErrorResponse
//	@Failure		422		{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/documents/{id}/mark-paid [post]
func (h *DocumentHandler) MarkPaid(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}
	documentID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req invoicingapp.MarkPaidRequest
	if !h.bindOptionalJSON(c, &req) {
		return
	}

	doc, err := h.documentService.MarkPaid(c.Request.Context(), tenantID, documentID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, doc)
}

// Cancel godoc
// @ID           cancelDocument
//
//	@Summary		Cancel a document
//	@Description	Cancelled numbers stay taken. Billed expenses are released.
//	@Tags			documents
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string								true	"Document ID"	format(uuid)
//	@Param			request	body		invoicingapp.CancelDocumentRequest	false	"Cancellation reason"
//	@Success		200		{object}	dto.APIResponse[invoicingapp.DocumentResponse]
//	@Failure		404		{object}	dto.ErrorResponse
//	@Failure		422		{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/documents/{id}/cancel [post]
func (h *DocumentHandler) Cancel(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}
	documentID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req invoicingapp.CancelDocumentRequest
	if !h.bindOptionalJSON(c, &req) {
		return
	}

	doc, err := h.documentService.Cancel(c.Request.Context(), tenantID, documentID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, doc)
}

// CreateCreditNote godoc
// @ID           createCreditNote
//
//	@Summary		Draft a credit note for an invoice
//	@Description	Copies the invoice lines into a new credit note draft referencing the invoice.
//	@Tags			documents
//	@Produce		json
//	@Param			id	path		string	true	"Invoice ID"	format(uuid)
//	@Success		201	{object}	dto.APIResponse[invoicingapp.DocumentResponse]
//	@Failure		404	{object}	dto.ErrorResponse
//	@Failure		422	{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/documents/{id}/credit-note [post]
func (h *DocumentHandler) CreateCreditNote(c *gin.Context) {
	tenantID, userID, ok := h.identity(c)
	if !ok {
		return
	}
	invoiceID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	doc, err := h.documentService.CreateCreditNote(c.Request.Context(), tenantID, userID, invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, doc)
}

// CreateFromExpenses godoc
// @ID           createDocumentFromExpenses
//
//	@Summary		Bill approved expenses on a new invoice
//	@Tags			documents
//	@Accept			json
//	@Produce		json
//	@Param			request	body		invoicingapp.CreateFromExpensesRequest	true	"Expenses to bill"
//	@Success		201		{object}	dto.APIResponse[invoicingapp.DocumentResponse]
//	@Failure		400		{object}	dto.ErrorResponse
//	@Failure		422		{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/documents/from-expenses [post]
func (h *DocumentHandler) CreateFromExpenses(c *gin.Context) {
	tenantID, userID, ok := h.identity(c)
	if !ok {
		return
	}

	var req invoicingapp.CreateFromExpensesRequest
	if !h.bindJSON(c, &req) {
		return
	}

	doc, err := h.documentService.CreateFromExpenses(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, doc)
}

// AddExpenses godoc
// @ID           addDocumentExpenses
//
//	@Summary		Bill approved expenses on an existing draft
//	@Tags			documents
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Document ID"	format(uuid)
//	@Param			request	body		invoicingapp.AddExpensesRequest	true	"Expenses to bill"
//	@Success		200		{object}	dto.APIResponse[invoicingapp.DocumentResponse]
//	@Failure		400		{object}	dto.ErrorResponse
//	@Failure		404		{object}	dto.ErrorResponse
//	@Failure		422		{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/documents/{id}/expenses [post]
func (h *DocumentHandler) AddExpenses(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}
	documentID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req invoicingapp.AddExpensesRequest
	if !h.bindJSON(c, &req) {
		return
	}

	doc, err := h.documentService.AddExpenses(c.Request.Context(), tenantID, documentID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, doc)
}
