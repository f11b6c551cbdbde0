package handler

import (
	partnerapp "github.com/botforce/unity/internal/application/partner"
	"github.com/gin-gonic/gin"
)

// CustomerHandler handles customer-related API endpoints
type CustomerHandler struct {
	BaseHandler
	customerService *partnerapp.CustomerService
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(customerService *partnerapp.CustomerService) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
	}
}

// Create godoc
// @ID           createCustomer
//
//	@Summary		Create a customer
//	@Tags			customers
//	@Accept			json
//	@Produce		json
//	@Param			request	body		partnerapp.CreateCustomerRequest	true	"Customer"
//	@Success		201		{object}	dto.APIResponse[partnerapp.CustomerResponse]
//	@Failure		400		{object}	dto.ErrorResponse
//	@Failure		401		{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/customers [post]
func (h *CustomerHandler) Create(c *gin.Context) {
	tenantID, userID, ok := h.identity(c)
	if !ok {
		return
	}

	var req partnerapp.CreateCustomerRequest
	if !h.bindJSON(c, &req) {
		return
	}

	customer, err := h.customerService.Create(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, customer)
}

// GetByID godoc
// @ID           getCustomerById
//
//	@Summary		Get customer by ID
//	@Tags			customers
//	@Produce		json
//	@Param			id	path		string	true	"Customer ID"	format(uuid)
//	@Success		200	{object}	dto.APIResponse[partnerapp.CustomerResponse]
//	@Failure		400	{object}	dto.ErrorResponse
//	@Failure		404	{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/customers/{id} [get]
func (h *CustomerHandler) GetByID(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}
	customerID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	customer, err := h.customerService.GetByID(c.Request.Context(), tenantID, customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, customer)
}

// List godoc
// @ID           listCustomers
//
//	@Summary		List customers
//	@Tags			customers
//	@Produce		json
//	@Param			search		query		string	false	"Search by name, email or VAT ID"
//	@Param			is_active	query		bool	false	"Filter by active flag"
//	@Param			page		query		int		false	"Page number"	default(1)
//	@Param			page_size	query		int		false	"Page size"		default(20)	maximum(100)
//	@Param			order_by	query		string	false	"Sort field"
//	@Param			order_dir	query		string	false	"Sort direction"	Enums(asc, desc)
//	@Success		200			{object}	dto.APIResponse[[]partnerapp.CustomerResponse]
//	@Failure		400			{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/customers [get]
func (h *CustomerHandler) List(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}

	var filter partnerapp.CustomerListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	customers, total, err := h.customerService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, customers, total, filter.Page, filter.PageSize)
}

// Update godoc
// @ID           updateCustomer
//
//	@Summary		Replace a customer's details
//	@Tags			customers
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Customer ID"	format(uuid)
//	@Param			request	body		partnerapp.UpdateCustomerRequest	true	"Customer"
//	@Success		200		{object}	dto.APIResponse[partnerapp.CustomerResponse]
//	@Failure		400		{object}	dto.ErrorResponse
//	@Failure		404		{object}	dto.ErrorResponse
//	@Failure		409		{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/customers/{id} [put]
func (h *CustomerHandler) Update(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}
	customerID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req partnerapp.UpdateCustomerRequest
	if !h.bindJSON(c, &req) {
		return
	}

	customer, err := h.customerService.Update(c.Request.Context(), tenantID, customerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, customer)
}

// Activate godoc
// @ID           activateCustomer
//
//	@Summary		Activate a customer
//	@Tags			customers
//	@Produce		json
//	@Param			id	path		string	true	"Customer ID"	format(uuid)
//	@Success		200	{object}	dto.APIResponse[partnerapp.CustomerResponse]
//	@Failure		404	{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/customers/{id}/activate [post]
func (h *CustomerHandler) Activate(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}
	customerID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	customer, err := h.customerService.Activate(c.Request.Context(), tenantID, customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, customer)
}

// Deactivate godoc
// @ID           deactivateCustomer
//
//	@Summary		Deactivate a customer
//	@Description	Inactive customers cannot be invoiced.
//	@Tags			customers
//	@Produce		json
//	@Param			id	path		string	true	"Customer ID"	format(uuid)
//	@Success		200	{object}	dto.APIResponse[partnerapp.CustomerResponse]
//	@Failure		404	{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/customers/{id}/deactivate [post]
func (h *CustomerHandler) Deactivate(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}
	customerID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	customer, err := h.customerService.Deactivate(c.Request.Context(), tenantID, customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, customer)
}

// Delete godoc
// @ID           deleteCustomer
//
//	@Summary		Delete a customer
//	@Description	Customers referenced by documents cannot be deleted; deactivate them instead.
//	@Tags			customers
//	@Param			id	path	string	true	"Customer ID"	format(uuid)
//	@Success		204
//	@Failure		404	{object}	dto.ErrorResponse
//	@Failure		422	{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/customers/{id} [delete]
func (h *CustomerHandler) Delete(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}
	customerID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	if err := h.customerService.Delete(c.Request.Context(), tenantID, customerID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// CompanyProfileHandler serves the tenant's own company details
type CompanyProfileHandler struct {
	BaseHandler
	profileService *partnerapp.CompanyProfileService
}

// NewCompanyProfileHandler creates a new CompanyProfileHandler
func NewCompanyProfileHandler(profileService *partnerapp.CompanyProfileService) *CompanyProfileHandler {
	return &CompanyProfileHandler{profileService: profileService}
}

// Get godoc
// @ID           getCompanyProfile
//
//	@Summary		Get the company profile
//	@Tags			company-profile
//	@Produce		json
//	@Success		200	{object}	dto.APIResponse[partnerapp.CompanyProfileResponse]
//	@Failure		404	{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/company-profile [get]
func (h *CompanyProfileHandler) Get(c *gin.Context) {
	tenantID, _, ok := h.identity(c)
	if !ok {
		return
	}

	profile, err := h.profileService.Get(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, profile)
}

// Upsert godoc
// @ID           upsertCompanyProfile
//
//	@Summary		Create or replace the company profile
//	@Description	The profile supplies the seller block and number prefixes of issued documents.
//	@Tags			company-profile
//	@Accept			json
//	@Produce		json
//	@Param			request	body		partnerapp.CompanyProfileRequest	true	"Company profile"
//	@Success		200		{object}	dto.APIResponse[partnerapp.CompanyProfileResponse]
//	@Failure		400		{object}	dto.ErrorResponse
//	@Failure		409		{object}	dto.ErrorResponse
//	@Security		BearerAuth
//	@Router			/company-profile [put]
func (h *CompanyProfileHandler) Upsert(c *gin.Context) {
	tenantID, userID, ok := h.identity(c)
	if !ok {
		return
	}

	var req partnerapp.CompanyProfileRequest
	if !h.bindJSON(c, &req) {
		return
	}

	profile, err := h.profileService.Upsert(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, profile)
}
