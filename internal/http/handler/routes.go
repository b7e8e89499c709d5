package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/camerontabion/JurisFlo/internal/http/middleware"
	"github.com/camerontabion/JurisFlo/internal/service"
)

// Deps are the collaborators the HTTP layer is wired with.
type Deps struct {
	DB        *sql.DB
	Checks    []DependencyCheck
	Documents service.DocumentService
	Companies service.CompanyService
	Chat      service.ChatService
	// Metrics, when set, is served on /metrics.
	Metrics prometheus.Gatherer
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, d Deps) {
	app.Get("/health", HealthCheck(d.DB, d.Checks...))
	app.Get("/healthz", LivenessProbe())
	if d.Metrics != nil {
		app.Get("/metrics", middleware.MetricsHandler(d.Metrics))
	}

	docs := app.Group("/documents")
	docs.Get("/", ListDocuments(d.Documents))
	docs.Post("/", UploadDocument(d.Documents))
	docs.Get("/:id", GetDocument(d.Documents))
	docs.Delete("/:id", DeleteDocument(d.Documents))
	docs.Post("/:id/parse", ParseDocument(d.Documents))
	docs.Post("/:id/complete", CompleteDocument(d.Documents))
	docs.Patch("/:id/fields/:key", UpdateField(d.Documents))
	docs.Get("/:id/fields/:key/context", FieldContext(d.Documents))
	docs.Put("/:id/company", AssignCompany(d.Documents))
	docs.Get("/:id/download", DownloadDocument(d.Documents))
	docs.Get("/:id/original", OriginalDocument(d.Documents))
	docs.Get("/:id/messages", ListMessages(d.Chat))
	docs.Post("/:id/messages", SendMessage(d.Chat))

	companies := app.Group("/companies")
	companies.Get("/", ListCompanies(d.Companies))
	companies.Post("/", CreateCompany(d.Companies))
	companies.Get("/:id", GetCompany(d.Companies))
	companies.Delete("/:id", DeleteCompany(d.Companies))
	companies.Get("/:id/data", CompanyData(d.Companies))
	companies.Post("/:id/rebuild", RebuildCompany(d.Companies))
}
