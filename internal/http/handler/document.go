package handler

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/camerontabion/JurisFlo/internal/service"
)

const (
	documentNotFound = "document not found"
	originalURLTTL   = 15 * time.Minute
)

type updateFieldRequest struct {
	Value string `json:"value"`
}

type assignCompanyRequest struct {
	CompanyID string `json:"company_id"`
}

type originalURLResponse struct {
	URL       string `json:"url"`
	ExpiresIn int    `json:"expires_in"`
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// pageParams reads limit & offset; the returned code is non-empty on bad input.
func pageParams(c *fiber.Ctx) (limit, offset int, code string) {
	limit, err := strconv.Atoi(c.Query("limit", "10"))
	if err != nil {
		return 0, 0, "INVALID_LIMIT"
	}
	offset, err = strconv.Atoi(c.Query("offset", "0"))
	if err != nil {
		return 0, 0, "INVALID_OFFSET"
	}
	return limit, offset, ""
}

// ListDocuments godoc
//
// @Summary  List documents
// @Tags     documents
// @Produce  json
// @Param    limit  query int false "page size" default(10)
// @Param    offset query int false "offset" default(0)
// @Success  200 {object} service.DocumentListResult
// @Failure  400 {object} errorPayload
// @Router   /documents [get]
func ListDocuments(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, code := pageParams(c)
		if code != "" {
			return writeError(c, fiber.StatusBadRequest, code, "invalid pagination parameter")
		}

		res, err := docSvc.List(c.UserContext(), limit, offset)
		if err != nil {
			return serviceError(c, err, documentNotFound)
		}
		return c.JSON(res)
	}
}

// UploadDocument godoc
//
// @Summary  Upload a document
// @Tags     documents
// @Accept   multipart/form-data
// @Produce  json
// @Param    file       formData file   true  "DOCX, PDF or text file"
// @Param    company_id formData string false "company to attach"
// @Success  201 {object} model.Document
// @Failure  400 {object} errorPayload
// @Failure  415 {object} errorPayload
// @Router   /documents [post]
func UploadDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		companyID := c.FormValue("company_id")
		if companyID != "" && !validID(companyID) {
			return writeError(c, fiber.StatusBadRequest, "INVALID_COMPANY_ID", "invalid company id format")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}

		doc, err := docSvc.Upload(c.UserContext(), f, fh.Filename, ct, fh.Size, companyID)
		if err != nil {
			return serviceError(c, err, documentNotFound)
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

// GetDocument godoc
//
// @Summary  Get a document with its fields
// @Tags     documents
// @Produce  json
// @Param    id path string true "document id"
// @Success  200 {object} model.Document
// @Failure  404 {object} errorPayload
// @Router   /documents/{id} [get]
func GetDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if !validID(id) {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		doc, err := docSvc.Get(c.UserContext(), id)
		if err != nil {
			return serviceError(c, err, documentNotFound)
		}
		return c.JSON(doc)
	}
}

// DeleteDocument godoc
//
// @Summary  Delete a document
// @Tags     documents
// @Param    id path string true "document id"
// @Success  204
// @Failure  404 {object} errorPayload
// @Router   /documents/{id} [delete]
func DeleteDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if !validID(id) {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := docSvc.Delete(c.UserContext(), id); err != nil {
			return serviceError(c, err, documentNotFound)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ParseDocument godoc
//
// @Summary      Extract placeholder fields
// @Description  With async=true the document is returned in status parsing and
// @Description  processed in the background.
// @Tags         documents
// @Produce      json
// @Param        id    path  string true  "document id"
// @Param        async query bool   false "run in the background"
// @Success      200 {object} model.Document
// @Success      202 {object} model.Document
// @Failure      409 {object} errorPayload
// @Failure      503 {object} errorPayload
// @Router       /documents/{id}/parse [post]
func ParseDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if !validID(id) {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		if c.QueryBool("async", false) {
			doc, err := docSvc.ParseAsync(c.UserContext(), id)
			if err != nil {
				return serviceError(c, err, documentNotFound)
			}
			return c.Status(fiber.StatusAccepted).JSON(doc)
		}

		doc, err := docSvc.Parse(c.UserContext(), id)
		if err != nil {
			return serviceError(c, err, documentNotFound)
		}
		return c.JSON(doc)
	}
}

// CompleteDocument godoc
//
// @Summary  Finalize a reviewed document
// @Tags     documents
// @Produce  json
// @Param    id path string true "document id"
// @Success  200 {object} model.Document
// @Failure  409 {object} errorPayload
// @Router   /documents/{id}/complete [post]
func CompleteDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if !validID(id) {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		doc, err := docSvc.Complete(c.UserContext(), id)
		if err != nil {
			return serviceError(c, err, documentNotFound)
		}
		return c.JSON(doc)
	}
}

// UpdateField godoc
//
// @Summary  Set one field value
// @Tags     fields
// @Accept   json
// @Produce  json
// @Param    id   path string             true "document id"
// @Param    key  path string             true "field key"
// @Param    body body updateFieldRequest true "new value"
// @Success  200 {object} model.Document
// @Failure  404 {object} errorPayload
// @Failure  409 {object} errorPayload
// @Router   /documents/{id}/fields/{key} [patch]
func UpdateField(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if !validID(id) {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var req updateFieldRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		doc, err := docSvc.UpdateField(c.UserContext(), id, c.Params("key"), req.Value)
		if err != nil {
			return serviceError(c, err, documentNotFound)
		}
		return c.JSON(doc)
	}
}

// FieldContext godoc
//
// @Summary  Where a field's placeholder appears in the text
// @Tags     fields
// @Produce  json
// @Param    id  path string true "document id"
// @Param    key path string true "field key"
// @Success  200 {object} service.FieldContext
// @Failure  404 {object} errorPayload
// @Failure  422 {object} errorPayload
// @Router   /documents/{id}/fields/{key}/context [get]
func FieldContext(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if !validID(id) {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		fc, err := docSvc.Context(c.UserContext(), id, c.Params("key"))
		if err != nil {
			return serviceError(c, err, documentNotFound)
		}
		return c.JSON(fc)
	}
}

// AssignCompany godoc
//
// @Summary  Attach (or detach with an empty id) a company
// @Tags     documents
// @Accept   json
// @Produce  json
// @Param    id   path string               true "document id"
// @Param    body body assignCompanyRequest true "company"
// @Success  200 {object} model.Document
// @Failure  404 {object} errorPayload
// @Router   /documents/{id}/company [put]
func AssignCompany(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if !validID(id) {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var req assignCompanyRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if req.CompanyID != "" && !validID(req.CompanyID) {
			return writeError(c, fiber.StatusBadRequest, "INVALID_COMPANY_ID", "invalid company id format")
		}
		doc, err := docSvc.AssignCompany(c.UserContext(), id, req.CompanyID)
		if err != nil {
			return serviceError(c, err, documentNotFound)
		}
		return c.JSON(doc)
	}
}

// DownloadDocument godoc
//
// @Summary  Download the filled document
// @Tags     documents
// @Produce  application/vnd.openxmlformats-officedocument.wordprocessingml.document
// @Produce  plain
// @Param    id path string true "document id"
// @Success  200 {file} file
// @Failure  409 {object} errorPayload
// @Router   /documents/{id}/download [get]
func DownloadDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if !validID(id) {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		out, err := docSvc.Render(c.UserContext(), id)
		if err != nil {
			return serviceError(c, err, documentNotFound)
		}
		c.Attachment(out.Filename)
		c.Set(fiber.HeaderContentType, out.ContentType)
		return c.Send(out.Body)
	}
}

// OriginalDocument godoc
//
// @Summary  Time-limited link to the uploaded file
// @Tags     documents
// @Produce  json
// @Param    id path string true "document id"
// @Success  200 {object} originalURLResponse
// @Failure  404 {object} errorPayload
// @Router   /documents/{id}/original [get]
func OriginalDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if !validID(id) {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		url, err := docSvc.OriginalURL(c.UserContext(), id, originalURLTTL)
		if err != nil {
			return serviceError(c, err, documentNotFound)
		}
		return c.JSON(originalURLResponse{URL: url, ExpiresIn: int(originalURLTTL.Seconds())})
	}
}
