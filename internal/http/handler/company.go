package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/camerontabion/JurisFlo/internal/reconcile"
	"github.com/camerontabion/JurisFlo/internal/service"
)

const companyNotFound = "company not found"

type createCompanyRequest struct {
	Name string `json:"name"`
}

type companyDataResponse struct {
	CompanyID string         `json:"company_id"`
	Data      reconcile.Data `json:"data"`
}

// ListCompanies godoc
//
// @Summary  List companies
// @Tags     companies
// @Produce  json
// @Param    limit  query int false "page size" default(10)
// @Param    offset query int false "offset" default(0)
// @Success  200 {object} service.CompanyListResult
// @Router   /companies [get]
func ListCompanies(companySvc service.CompanyService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, code := pageParams(c)
		if code != "" {
			return writeError(c, fiber.StatusBadRequest, code, "invalid pagination parameter")
		}
		res, err := companySvc.List(c.UserContext(), limit, offset)
		if err != nil {
			return serviceError(c, err, companyNotFound)
		}
		return c.JSON(res)
	}
}

// CreateCompany godoc
//
// @Summary  Create a company
// @Tags     companies
// @Accept   json
// @Produce  json
// @Param    body body createCompanyRequest true "company"
// @Success  201 {object} model.Company
// @Failure  400 {object} errorPayload
// @Router   /companies [post]
func CreateCompany(companySvc service.CompanyService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createCompanyRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		company, err := companySvc.Create(c.UserContext(), req.Name)
		if err != nil {
			return serviceError(c, err, companyNotFound)
		}
		return c.Status(fiber.StatusCreated).JSON(company)
	}
}

// GetCompany godoc
//
// @Summary  Get a company
// @Tags     companies
// @Produce  json
// @Param    id path string true "company id"
// @Success  200 {object} model.Company
// @Failure  404 {object} errorPayload
// @Router   /companies/{id} [get]
func GetCompany(companySvc service.CompanyService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if !validID(id) {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		company, err := companySvc.Get(c.UserContext(), id)
		if err != nil {
			return serviceError(c, err, companyNotFound)
		}
		return c.JSON(company)
	}
}

// DeleteCompany godoc
//
// @Summary  Delete a company; its documents are kept
// @Tags     companies
// @Param    id path string true "company id"
// @Success  204
// @Failure  404 {object} errorPayload
// @Router   /companies/{id} [delete]
func DeleteCompany(companySvc service.CompanyService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if !validID(id) {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := companySvc.Delete(c.UserContext(), id); err != nil {
			return serviceError(c, err, companyNotFound)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// CompanyData godoc
//
// @Summary  Aggregated company-level values
// @Tags     companies
// @Produce  json
// @Param    id path string true "company id"
// @Success  200 {object} companyDataResponse
// @Failure  404 {object} errorPayload
// @Router   /companies/{id}/data [get]
func CompanyData(companySvc service.CompanyService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if !validID(id) {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		data, err := companySvc.Data(c.UserContext(), id)
		if err != nil {
			return serviceError(c, err, companyNotFound)
		}
		if data == nil {
			data = reconcile.Data{}
		}
		return c.JSON(companyDataResponse{CompanyID: id, Data: data})
	}
}

// RebuildCompany godoc
//
// @Summary  Recompute company data from its completed documents
// @Tags     companies
// @Produce  json
// @Param    id path string true "company id"
// @Success  200 {object} model.Company
// @Failure  404 {object} errorPayload
// @Router   /companies/{id}/rebuild [post]
func RebuildCompany(companySvc service.CompanyService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if !validID(id) {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		company, err := companySvc.Rebuild(c.UserContext(), id)
		if err != nil {
			return serviceError(c, err, companyNotFound)
		}
		return c.JSON(company)
	}
}
