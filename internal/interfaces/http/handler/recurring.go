package handler

import (
	recurringapp "github.com/botforce/unity/internal/application/recurring"
	"github.com/gin-gonic/gin"
)

// RecurringTemplateHandler handles recurring invoice template endpoints
type RecurringTemplateHandler struct {
	BaseHandler
	templateService *recurringapp.TemplateService
}

// NewRecurringTemplateHandler creates a new RecurringTemplateHandler
func NewRecurringTemplateHandler(templateService *recurringapp.TemplateService) *RecurringTemplateHandler {
	return &RecurringTemplateHandler{templateService: templateService}
}

// Create godoc
// @ID           createRecurringTemplate
//
//	@Summary		Create a recurring invoice template
//	@Tags			recurring-templates
//	@Accept			json
//	@Produce		json
//	@Param			request	body		recurringapp.TemplateRequest	true	"Template"
//	@Success		201		{object}	dto.APIResponse[recurringapp.TemplateResponse]
//	@Failure		400		{object}	dto.ErrorResponse
//	@Failure		422		{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/recurring-templates [post]
func (h *RecurringTemplateHandler) Create(c *gin.Context) {
	tenantID, userID, ok := h.identity(c)
	if !ok {
		return
	}

	var req recurringapp.TemplateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	template, err := h.templateService.Create(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, template)
}

// GetByID godoc
// @ID           getRecurringTemplateById
//
//	@Summary		Get recurring template by ID
//	@Tags			recurring-templates
//	@Produce		json
//	@Param			id	path		string	true	"Template ID"	format(uuid)
//	@Success		200	{object}	dto.APIResponse[recurringapp.TemplateResponse]
//	@Failure		404	{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/recurring-templates/{id} [get]
func (h *RecurringTemplateHandler) GetByID(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}
	templateID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	template, err := h.templateService.GetByID(c.Request.Context(), tenantID, templateID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, template)
}

// List godoc
// @ID           listRecurringTemplates
//
//	@Summary		List recurring templates
//	@Tags			recurring-templates
//	@Produce		json
//	@Param			search		query		string	false	"Search by name"
//	@Param			is_active	query		bool	false	"Filter by active flag"
//	@Param			customer_id	query		string	false	"Customer ID"	format(uuid)
//	@Param			page		query		int		false	"Page number"	default(1)
//	@Param			page_size	query		int		false	"Page size"		default(20)	maximum(100)
//	@Success		200			{object}	dto.APIResponse[[]recurringapp.TemplateResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/recurring-templates [get]
func (h *RecurringTemplateHandler) List(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}

	var filter recurringapp.TemplateListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	templates, total, err := h.templateService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, templates, total, filter.Page, filter.PageSize)
}

// Update godoc
// @ID           updateRecurringTemplate
//
//	@Summary		Replace a recurring template
//	@Tags			recurring-templates
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Template ID"	format(uuid)
//	@Param			request	body		recurringapp.TemplateRequest	true	"Template"
//	@Success		200		{object}	dto.APIResponse[recurringapp.TemplateResponse]
//	@Failure		400		{object}	dto.ErrorResponse
//	@Failure		404		{object}	dto.ErrorResponse
//	@Failure		409		{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/recurring-templates/{id} [put]
func (h *RecurringTemplateHandler) Update(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}
	templateID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req recurringapp.TemplateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	template, err := h.templateService.Update(c.Request.Context(), tenantID, templateID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, template)
}

// Activate godoc
// @ID           activateRecurringTemplate
//
//	@Summary		Resume a recurring template
//	@Tags			recurring-templates
//	@Produce		json
//	@Param			id	path		string	true	"Template ID"	format(uuid)
//	@Success		200	{object}	dto.APIResponse[recurringapp.TemplateResponse]
//	@Failure		404	{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/recurring-templates/{id}/activate [post]
func (h *RecurringTemplateHandler) Activate(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}
	templateID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	template, err := h.templateService.Activate(c.Request.Context(), tenantID, templateID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, template)
}

// Deactivate godoc
// @ID           deactivateRecurringTemplate
//
//	@Summary		Pause a recurring template
//	@Tags			recurring-templates
//	@Produce		json
//	@Param			id	path		string	true	"Template ID"	format(uuid)
//	@Success		200	{object}	dto.APIResponse[recurringapp.TemplateResponse]
//	@Failure		404	{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/recurring-templates/{id}/deactivate [post]
func (h *RecurringTemplateHandler) Deactivate(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}
	templateID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	template, err := h.templateService.Deactivate(c.Request.Context(), tenantID, templateID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, template)
}

// Delete godoc
// @ID           deleteRecurringTemplate
//
//	@Summary		Delete a recurring template
//	@Description	Documents already generated are kept.
//	@Tags			recurring-templates
//	@Param			id	path	string	true	"Template ID"	format(uuid)
//	@Success		204
//	@Failure		404	{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/recurring-templates/{id} [delete]
func (h *RecurringTemplateHandler) Delete(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}
	templateID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	if err := h.templateService.Delete(c.Request.Context(), tenantID, templateID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Tick godoc
// @ID           tickRecurringTemplate
//
//	@Summary		Generate the due invoice now
//	@Description	Generates the invoice for the current period and advances the schedule. Fails with TEMPLATE_NOT_DUE before the next issue date.
//	@Tags			recurring-templates
//	@Produce		json
//	@Param			id	path		string	true	"Template ID"	format(uuid)
//	@Success		200	{object}	dto.APIResponse[recurringapp.TickResponse]
//	@Failure		404	{object}	dto.ErrorResponse
//	@Failure		409	{object}	dto.ErrorResponse
//	@Failure		422	{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/recurring-templates/{id}/tick [post]
func (h *RecurringTemplateHandler) Tick(c *gin.Context) {
	tenantID, userID, ok := h.identity(c)
	if !ok {
		return
	}
	templateID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.templateService.Tick(c.Request.Context(), tenantID, userID, templateID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
