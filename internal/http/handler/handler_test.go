package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/camerontabion/JurisFlo/internal/llm"
	"github.com/camerontabion/JurisFlo/internal/model"
	"github.com/camerontabion/JurisFlo/internal/reconcile"
	"github.com/camerontabion/JurisFlo/internal/service"
	serviceMocks "github.com/camerontabion/JurisFlo/internal/service/mocks"
	"github.com/camerontabion/JurisFlo/internal/storage"
)

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "SERVICE_UNAVAILABLE", body.Error.Code)
	})

	t.Run("failing extra check", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		app := fiber.New()
		app.Get("/health", HealthCheck(db, DependencyCheck{
			Name: "redis",
			Ping: func(ctx context.Context) error { return errors.New("connection refused") },
		}))

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "redis unavailable", body.Error.Message)
	})

	t.Run("no database", func(t *testing.T) {
		app := fiber.New()
		app.Get("/health", HealthCheck(nil))

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListDocuments(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Get("/documents", ListDocuments(mockSvc))

	t.Run("success", func(t *testing.T) {
		expectedRes := &service.DocumentListResult{
			Items: []model.Document{{ID: uuid.New().String(), Filename: "test.pdf"}},
			Total: 1,
		}
		mockSvc.On("List", mock.Anything, 10, 0).Return(expectedRes, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents?limit=10&offset=0", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result service.DocumentListResult
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Len(t, result.Items, 1)
		assert.Equal(t, 1, result.Total)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/documents?limit=abc", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "INVALID_LIMIT", body.Error.Code)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, 10, 0).Return(nil, errors.New("service error")).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestUploadDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Post("/documents", UploadDocument(mockSvc))

	t.Run("success", func(t *testing.T) {
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		part, _ := writer.CreateFormFile("file", "test.txt")
		part.Write([]byte("hello world"))
		writer.Close()

		expectedDoc := &model.Document{ID: uuid.New().String(), Filename: "test.txt"}
		mockSvc.On("Upload", mock.Anything, mock.Anything, "test.txt", mock.Anything, mock.Anything, "").Return(expectedDoc, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/documents", body)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var result model.Document
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, expectedDoc.ID, result.ID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("no file", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/documents", nil)
		// Missing content-type and body
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "FILE_REQUIRED", res.Error.Code)
	})

	t.Run("service error", func(t *testing.T) {
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		part, _ := writer.CreateFormFile("file", "test.txt")
		part.Write([]byte("hello"))
		writer.Close()

		mockSvc.On("Upload", mock.Anything, mock.Anything, "test.txt", mock.Anything, mock.Anything, "").Return(nil, errors.New("upload failed")).Once()

		req := httptest.NewRequest(http.MethodPost, "/documents", body)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("with company", func(t *testing.T) {
		companyID := uuid.New().String()
		body, contentType := multipartBody(t, "safe.docx", "PK", map[string]string{"company_id": companyID})

		mockSvc.On("Upload", mock.Anything, mock.Anything, "safe.docx", mock.Anything, int64(2), companyID).
			Return(&model.Document{ID: uuid.New().String(), CompanyID: companyID}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/documents", body)
		req.Header.Set("Content-Type", contentType)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid company id", func(t *testing.T) {
		body, contentType := multipartBody(t, "safe.docx", "PK", map[string]string{"company_id": "acme"})

		req := httptest.NewRequest(http.MethodPost, "/documents", body)
		req.Header.Set("Content-Type", contentType)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_COMPANY_ID", decodeError(t, resp).Error.Code)
	})

	t.Run("unsupported format", func(t *testing.T) {
		body, contentType := multipartBody(t, "logo.png", "png", nil)

		mockSvc.On("Upload", mock.Anything, mock.Anything, "logo.png", mock.Anything, mock.Anything, "").
			Return(nil, service.ErrUnsupportedFormat).Once()

		req := httptest.NewRequest(http.MethodPost, "/documents", body)
		req.Header.Set("Content-Type", contentType)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
		assert.Equal(t, "UNSUPPORTED_FORMAT", decodeError(t, resp).Error.Code)
	})
}

func multipartBody(t *testing.T, filename, content string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func decodeError(t *testing.T, resp *http.Response) errorPayload {
	t.Helper()
	var res errorPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	return res
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestGetDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Get("/documents/:id", GetDocument(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := uuid.New().String()
		expectedDoc := &model.Document{ID: id, Filename: "test.txt"}
		mockSvc.On("Get", mock.Anything, id).Return(expectedDoc, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result model.Document
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, id, result.ID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Get", mock.Anything, id).Return(nil, sql.ErrNoRows).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "NOT_FOUND", res.Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/documents/invalid-uuid", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "INVALID_ID", res.Error.Code)
	})

	t.Run("service error", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Get", mock.Anything, id).Return(nil, errors.New("db error")).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestDeleteDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Delete("/documents/:id", DeleteDocument(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Delete", mock.Anything, id).Return(nil).Once()

		req := httptest.NewRequest(http.MethodDelete, "/documents/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Delete", mock.Anything, id).Return(sql.ErrNoRows).Once()

		req := httptest.NewRequest(http.MethodDelete, "/documents/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "NOT_FOUND", res.Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("service error", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Delete", mock.Anything, id).Return(errors.New("delete error")).Once()

		req := httptest.NewRequest(http.MethodDelete, "/documents/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestRouting(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(),
	})

	mockSvc := new(serviceMocks.MockDocumentService)
	RegisterRoutes(app, Deps{
		Documents: mockSvc,
		Companies: new(serviceMocks.MockCompanyService),
		Chat:      new(serviceMocks.MockChatService),
		Metrics:   prometheus.NewRegistry(),
	})

	t.Run("not found route", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/non-existent", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "NOT_FOUND", res.Error.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		// Health endpoint only allows GET
		req := httptest.NewRequest(http.MethodPost, "/health", nil)
		resp, _ := app.Test(req)

		// Fiber returns 405 by default if route exists but method doesn't match
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "METHOD_NOT_ALLOWED", res.Error.Code)
	})

	t.Run("metrics", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("grouped route", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, 10, 0).
			Return(&service.DocumentListResult{Items: []model.Document{}}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/documents", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestParseDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Post("/documents/:id/parse", ParseDocument(mockSvc))

	t.Run("sync", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Parse", mock.Anything, id).Return(&model.Document{ID: id, Status: model.StatusReview}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/documents/"+id+"/parse", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var doc model.Document
		json.NewDecoder(resp.Body).Decode(&doc)
		assert.Equal(t, model.StatusReview, doc.Status)
	})

	t.Run("async", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("ParseAsync", mock.Anything, id).Return(&model.Document{ID: id, Status: model.StatusParsing}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/documents/"+id+"/parse?async=true", nil))

		assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	})

	t.Run("already completed", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Parse", mock.Anything, id).Return(nil, service.ErrInvalidStatus).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/documents/"+id+"/parse", nil))

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "INVALID_STATUS", decodeError(t, resp).Error.Code)
	})

	t.Run("model not configured", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Parse", mock.Anything, id).Return(&model.Document{ID: id, Status: model.StatusError}, llm.ErrNotConfigured).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/documents/"+id+"/parse", nil))

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "LLM_UNAVAILABLE", decodeError(t, resp).Error.Code)
	})

	mockSvc.AssertExpectations(t)
}

func TestCompleteDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Post("/documents/:id/complete", CompleteDocument(mockSvc))

	id := uuid.New().String()
	mockSvc.On("Complete", mock.Anything, id).Return(&model.Document{ID: id, Status: model.StatusCompleted}, nil).Once()

	resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/documents/"+id+"/complete", nil))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	mockSvc.AssertExpectations(t)
}

func TestUpdateField(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Patch("/documents/:id/fields/:key", UpdateField(mockSvc))
	id := uuid.New().String()

	t.Run("success", func(t *testing.T) {
		mockSvc.On("UpdateField", mock.Anything, id, "company_name", "Acme, Inc.").
			Return(&model.Document{ID: id}, nil).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPatch, "/documents/"+id+"/fields/company_name", `{"value":"Acme, Inc."}`))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("unknown field", func(t *testing.T) {
		mockSvc.On("UpdateField", mock.Anything, id, "nope", "x").Return(nil, service.ErrFieldNotFound).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPatch, "/documents/"+id+"/fields/nope", `{"value":"x"}`))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "FIELD_NOT_FOUND", decodeError(t, resp).Error.Code)
	})

	t.Run("invalid body", func(t *testing.T) {
		resp, _ := app.Test(jsonRequest(http.MethodPatch, "/documents/"+id+"/fields/date", `{`))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_BODY", decodeError(t, resp).Error.Code)
	})
}

func TestFieldContext(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Get("/documents/:id/fields/:key/context", FieldContext(mockSvc))
	id := uuid.New().String()

	t.Run("success", func(t *testing.T) {
		mockSvc.On("Context", mock.Anything, id, "company_name").Return(&service.FieldContext{
			Field:   reconcile.Field{Key: "company_name"},
			Matches: []reconcile.Match{{Start: 4, End: 18, Snippet: "by [Company Name] to", Exact: true}},
		}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/documents/"+id+"/fields/company_name/context", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var fc service.FieldContext
		json.NewDecoder(resp.Body).Decode(&fc)
		require.Len(t, fc.Matches, 1)
		assert.Equal(t, "by [Company Name] to", fc.Matches[0].Snippet)
	})

	t.Run("not located", func(t *testing.T) {
		mockSvc.On("Context", mock.Anything, id, "date").Return(nil, service.ErrFieldNotLocated).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/documents/"+id+"/fields/date/context", nil))

		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})
}

func TestAssignCompany(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Put("/documents/:id/company", AssignCompany(mockSvc))
	id := uuid.New().String()

	t.Run("attach", func(t *testing.T) {
		companyID := uuid.New().String()
		mockSvc.On("AssignCompany", mock.Anything, id, companyID).
			Return(&model.Document{ID: id, CompanyID: companyID}, nil).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPut, "/documents/"+id+"/company", `{"company_id":"`+companyID+`"}`))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("detach", func(t *testing.T) {
		mockSvc.On("AssignCompany", mock.Anything, id, "").Return(&model.Document{ID: id}, nil).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPut, "/documents/"+id+"/company", `{"company_id":""}`))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("unknown company", func(t *testing.T) {
		companyID := uuid.New().String()
		mockSvc.On("AssignCompany", mock.Anything, id, companyID).Return(nil, service.ErrCompanyNotFound).Once()

		resp, _ := app.Test(jsonRequest(http.MethodPut, "/documents/"+id+"/company", `{"company_id":"`+companyID+`"}`))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "COMPANY_NOT_FOUND", decodeError(t, resp).Error.Code)
	})

	mockSvc.AssertExpectations(t)
}

func TestDownloadDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Get("/documents/:id/download", DownloadDocument(mockSvc))
	id := uuid.New().String()

	mockSvc.On("Render", mock.Anything, id).Return(&service.Rendered{
		Filename:    "safe_filled.txt",
		ContentType: "text/plain; charset=utf-8",
		Body:        []byte("filled"),
	}, nil).Once()

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/documents/"+id+"/download", nil))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/plain; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), `filename="safe_filled.txt"`)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "filled", string(body))
	mockSvc.AssertExpectations(t)
}

func TestDownloadDocument_MissingFile(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Get("/documents/:id/download", DownloadDocument(mockSvc))
	id := uuid.New().String()

	mockSvc.On("Render", mock.Anything, id).
		Return(nil, fmt.Errorf("download: %w", storage.ErrObjectNotFound)).Once()

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/documents/"+id+"/download", nil))

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "FILE_NOT_FOUND", decodeError(t, resp).Error.Code)
	mockSvc.AssertExpectations(t)
}

func TestOriginalDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Get("/documents/:id/original", OriginalDocument(mockSvc))
	id := uuid.New().String()

	mockSvc.On("OriginalURL", mock.Anything, id, 15*time.Minute).Return("https://minio/documents/x.docx?sig", nil).Once()

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/documents/"+id+"/original", nil))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var res originalURLResponse
	json.NewDecoder(resp.Body).Decode(&res)
	assert.Equal(t, "https://minio/documents/x.docx?sig", res.URL)
	assert.Equal(t, 900, res.ExpiresIn)
	mockSvc.AssertExpectations(t)
}
