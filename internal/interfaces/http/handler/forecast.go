package handler

import (
	forecastapp "github.com/botforce/unity/internal/application/forecast"
	forecastdomain "github.com/botforce/unity/internal/domain/forecast"
	"github.com/gin-gonic/gin"
)

// ForecastHandler serves the cash-flow projection and recurring costs
type ForecastHandler struct {
	BaseHandler
	forecastService *forecastapp.ForecastService
}

// NewForecastHandler creates a new ForecastHandler
func NewForecastHandler(forecastService *forecastapp.ForecastService) *ForecastHandler {
	return &ForecastHandler{forecastService: forecastService}
}

// Project godoc
// @ID           getCashFlowForecast
//
//	@Summary		Weekly cash-flow forecast
//	@Description	Outstanding invoices flow in on their due date (overdue ones in the first week); active recurring costs flow out on their schedule.
//	@Tags			forecast
//	@Produce		json
//	@Param			start				query		string	false	"First day (YYYY-MM-DD), defaults to today"
//	@Param			weeks				query		int		false	"Horizon in weeks"	minimum(1)	maximum(52)
//	@Param			starting_balance	query		number	false	"Opening balance"
//	@Success		200					{object}	dto.APIResponse[forecastdomain.Projection]
//	@Failure		400					{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/forecast [get]
func (h *ForecastHandler) Project(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}

	var req forecastapp.ProjectionRequest
	if !h.bindQuery(c, &req) {
		return
	}

	var projection *forecastdomain.Projection
	projection, err := h.forecastService.Project(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, projection)
}

// CreateCost godoc
// @ID           createRecurringCost
//
//	@Summary		Create a recurring cost
//	@Tags			forecast
//	@Accept			json
//	@Produce		json
//	@Param			request	body		forecastapp.RecurringCostRequest	true	"Recurring cost"
//	@Success		201		{object}	dto.APIResponse[forecastapp.RecurringCostResponse]
//	@Failure		400		{object}	dto.ErrorResponse
//	@Failure		422		{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/forecast/recurring-costs [post]
func (h *ForecastHandler) CreateCost(c *gin.Context) {
	tenantID, userID, ok := h.identity(c)
	if !ok {
		return
	}

	var req forecastapp.RecurringCostRequest
	if !h.bindJSON(c, &req) {
		return
	}

	cost, err := h.forecastService.CreateCost(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, cost)
}

// GetCost godoc
// @ID           getRecurringCostById
//
//	@Summary		Get recurring cost by ID
//	@Tags			forecast
//	@Produce		json
//	@Param			id	path		string	true	"Cost ID"	format(uuid)
//	@Success		200	{object}	dto.APIResponse[forecastapp.RecurringCostResponse]
//	@Failure		404	{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/forecast/recurring-costs/{id} [get]
func (h *ForecastHandler) GetCost(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}
	costID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	cost, err := h.forecastService.GetCost(c.Request.Context(), tenantID, costID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, cost)
}

// ListCosts godoc
// @ID           listRecurringCosts
//
//	@Summary		List recurring costs
//	@Tags			forecast
//	@Produce		json
//	@Param			search		query		string	false	"Search by name"
//	@Param			page		query		int		false	"Page number"	default(1)
//	@Param			page_size	query		int		false	"Page size"		default(20)	maximum(100)
//	@Success		200			{object}	dto.APIResponse[[]forecastapp.RecurringCostResponse]
//	@Security		BearerAuth
//	@Router			/forecast/recurring-costs [get]
func (h *ForecastHandler) ListCosts(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}

	var filter forecastapp.RecurringCostListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	costs, total, err := h.forecastService.ListCosts(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, costs, total, filter.Page, filter.PageSize)
}

// UpdateCost godoc
// @ID           updateRecurringCost
//
//	@Summary		Replace a recurring cost
//	@Tags			forecast
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string								true	"Cost ID"	format(uuid)
//	@Param			request	body		forecastapp.RecurringCostRequest	true	"Recurring cost"
//	@Success		200		{object}	dto.APIResponse[forecastapp.RecurringCostResponse]
//	@Failure		400		{object}	dto.ErrorResponse
//	@Failure		404		{object}	dto.ErrorResponse
//	@Failure		409		{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/forecast/recurring-costs/{id} [put]
func (h *ForecastHandler) UpdateCost(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}
	costID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req forecastapp.RecurringCostRequest
	if !h.bindJSON(c, &req) {
		return
	}

	cost, err := h.forecastService.UpdateCost(c.Request.Context(), tenantID, costID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, cost)
}

// SetCostActive godoc
// @ID           setRecurringCostActive
//
//	@Summary		Include or exclude a cost from the forecast
//	@Tags			forecast
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Cost ID"	format(uuid)
//	@Param			request	body		forecastapp.SetActiveRequest	true	"Active flag"
//	@Success		200		{object}	dto.APIResponse[forecastapp.RecurringCostResponse]
//	@Failure		404		{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/forecast/recurring-costs/{id}/active [put]
func (h *ForecastHandler) SetCostActive(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}
	costID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req forecastapp.SetActiveRequest
	if !h.bindJSON(c, &req) {
		return
	}

	cost, err := h.forecastService.SetCostActive(c.Request.Context(), tenantID, costID, req.IsActive)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, cost)
}

// DeleteCost godoc
// @ID           deleteRecurringCost
//
//	@Summary		Delete a recurring cost
//	@Tags			forecast
//	@Param			id	path	string	true	"Cost ID"	format(uuid)
//	@Success		204
//	@Failure		404	{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/forecast/recurring-costs/{id} [delete]
func (h *ForecastHandler) DeleteCost(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}
	costID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	if err := h.forecastService.DeleteCost(c.Request.Context(), tenantID, costID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
