package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/camerontabion/JurisFlo/internal/cache"
	"github.com/camerontabion/JurisFlo/internal/extract"
	"github.com/camerontabion/JurisFlo/internal/llm"
	"github.com/camerontabion/JurisFlo/internal/logger"
	"github.com/camerontabion/JurisFlo/internal/model"
	"github.com/camerontabion/JurisFlo/internal/reconcile"
	"github.com/camerontabion/JurisFlo/internal/repository"
	"github.com/camerontabion/JurisFlo/internal/storage"
)

const defaultParseTimeout = 5 * time.Minute

// DocumentListResult is the service-level DTO for paginated documents.
type DocumentListResult struct {
	Items []model.Document `json:"data"`
	Total int              `json:"total"`
}

// FieldContext is where a field's placeholder sits in the document text.
type FieldContext struct {
	Field   reconcile.Field   `json:"field"`
	Matches []reconcile.Match `json:"matches"`
}

// Rendered is a filled copy of a document.
type Rendered struct {
	Filename    string
	ContentType string
	Body        []byte
}

// DocumentService defines the use cases for handling documents.
type DocumentService interface {
	// Upload stores the file, saves metadata with status uploaded, and removes the
	// object again if the DB insert fails. companyID is optional.
	Upload(ctx context.Context, r io.Reader, originalFilename, contentType string, size int64, companyID string) (*model.Document, error)

	// List returns documents using limit/offset and a total count.
	List(ctx context.Context, limit, offset int) (*DocumentListResult, error)

	// Get returns a single document by its ID.
	Get(ctx context.Context, id string) (*model.Document, error)

	// Delete removes a document from storage and repository. A completed
	// document's contribution is removed from its company.
	Delete(ctx context.Context, id string) error

	// Parse runs text extraction, field extraction and reconciliation and
	// returns the document in review (or error) status.
	Parse(ctx context.Context, id string) (*model.Document, error)

	// ParseAsync marks the document as parsing and runs Parse in the background.
	ParseAsync(ctx context.Context, id string) (*model.Document, error)

	// UpdateField sets one field value. The key is normalized first.
	UpdateField(ctx context.Context, id, key, value string) (*model.Document, error)

	// Complete finalizes a reviewed document and merges its company fields
	// into the company.
	Complete(ctx context.Context, id string) (*model.Document, error)

	// AssignCompany attaches the document to a company (or detaches it when
	// companyID is empty) and prefills company fields.
	AssignCompany(ctx context.Context, id, companyID string) (*model.Document, error)

	// Render produces the filled document.
	Render(ctx context.Context, id string) (*Rendered, error)

	// OriginalURL returns a time-limited download link for the uploaded file.
	OriginalURL(ctx context.Context, id string, expiry time.Duration) (string, error)

	// Context returns every location of a field's placeholder in the text.
	Context(ctx context.Context, id, key string) (*FieldContext, error)

	// Wait blocks until background parses have finished.
	Wait()
}

// DocumentOptions tunes the parse pipeline.
type DocumentOptions struct {
	SnippetPadding int
	ParseTimeout   time.Duration
}

// documentService is a concrete implementation of DocumentService.
type documentService struct {
	store     storage.Storage
	repo      repository.DocumentRepository
	companies companySync
	llm       llm.Client
	cache     cache.ExtractionCache
	log       *logger.Logger
	opts      DocumentOptions
	now       func() time.Time
	wg        sync.WaitGroup
}

// NewDocumentService constructs a new DocumentService. A nil cache disables caching.
func NewDocumentService(
	store storage.Storage,
	repo repository.DocumentRepository,
	companies repository.CompanyRepository,
	client llm.Client,
	extractionCache cache.ExtractionCache,
	log *logger.Logger,
	opts DocumentOptions,
) DocumentService {
	if extractionCache == nil {
		extractionCache = cache.Nop{}
	}
	if opts.SnippetPadding < 0 {
		opts.SnippetPadding = reconcile.DefaultPadding
	}
	if opts.ParseTimeout <= 0 {
		opts.ParseTimeout = defaultParseTimeout
	}
	return &documentService{
		store:     store,
		repo:      repo,
		companies: companySync{docs: repo, companies: companies},
		llm:       client,
		cache:     extractionCache,
		log:       log.With("component", "document_service"),
		opts:      opts,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *documentService) Upload(ctx context.Context, r io.Reader, originalFilename, contentType string, size int64, companyID string) (*model.Document, error) {
	if r == nil {
		return nil, ErrReaderNil
	}
	originalFilename = cleanFilename(originalFilename)
	if extract.Detect(contentType, originalFilename) == extract.FormatUnknown {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, originalFilename)
	}
	if companyID != "" {
		if _, err := s.companies.find(ctx, companyID); err != nil {
			return nil, err
		}
	}

	id := uuid.New().String()
	key := storage.DocumentKey(id, originalFilename)

	objInfo, err := s.store.Put(ctx, key, r, storage.PutObjectOptions{
		Size:        size,
		ContentType: contentType,
		Metadata: map[string]string{
			"original-filename": originalFilename,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	now := s.now()
	doc := &model.Document{
		ID:           id,
		CompanyID:    companyID,
		Filename:     path.Base(key),
		OriginalName: originalFilename,
		StoragePath:  objInfo.Key,
		Size:         objInfo.Size,
		ContentType:  objInfo.ContentType,
		Status:       model.StatusUploaded,
		Fields:       []reconcile.Field{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	stored, err := s.repo.Create(ctx, doc)
	if err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	return stored, nil
}

// cleanFilename drops any directory part a client sent along with the name.
func cleanFilename(name string) string {
	name = filepath.Base(filepath.Clean("/" + strings.ReplaceAll(name, "\\", "/")))
	if name == "/" || name == "." {
		return "document"
	}
	return name
}

// List returns paginated documents without exposing repository types.
func (s *documentService) List(ctx context.Context, limit, offset int) (*DocumentListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &DocumentListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *documentService) Get(ctx context.Context, id string) (*model.Document, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

// Delete removes the object first; if that fails the row is kept so the
// storage reference is not lost.
func (s *documentService) Delete(ctx context.Context, id string) error {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, doc.StoragePath); err != nil {
		return fmt.Errorf("delete storage: %w", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if doc.Status == model.StatusCompleted && doc.CompanyID != "" {
		if _, err := s.companies.detach(ctx, doc.CompanyID, doc.ID); err != nil && !errors.Is(err, ErrCompanyNotFound) {
			return fmt.Errorf("update company data: %w", err)
		}
	}
	return nil
}

func (s *documentService) Parse(ctx context.Context, id string) (*model.Document, error) {
	doc, err := s.beginParse(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.runParse(ctx, doc)
}

func (s *documentService) ParseAsync(ctx context.Context, id string) (*model.Document, error) {
	doc, err := s.beginParse(ctx, id)
	if err != nil {
		return nil, err
	}

	bg := *doc
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.ParseTimeout)
		defer cancel()
		_, _ = s.runParse(ctx, &bg)
	}()
	return doc, nil
}

func (s *documentService) Wait() {
	s.wg.Wait()
}

// beginParse moves a document into parsing. Completed documents and
// documents already being parsed are rejected.
func (s *documentService) beginParse(ctx context.Context, id string) (*model.Document, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	switch doc.Status {
	case model.StatusParsing, model.StatusCompleted:
		return nil, fmt.Errorf("%w: cannot parse a document in status %s", ErrInvalidStatus, doc.Status)
	}

	now := s.now()
	claimed, err := s.repo.MarkParsing(ctx, id, now)
	if err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}
	if !claimed {
		// Another request moved it on between the read and the write.
		return nil, fmt.Errorf("%w: document is already being parsed", ErrInvalidStatus)
	}
	doc.Status = model.StatusParsing
	doc.ErrorMessage = ""
	doc.UpdatedAt = now
	return doc, nil
}

// runParse never leaves a document in parsing: any failure is recorded as
// status error with its message.
func (s *documentService) runParse(ctx context.Context, doc *model.Document) (*model.Document, error) {
	start := time.Now()
	log := s.log.With("document_id", doc.ID)
	log.Info("document_parse_started", "content_type", doc.ContentType, "size", doc.Size)

	fields, text, err := s.extractFields(ctx, doc)
	if err != nil {
		log.Error("document_parse_failed", "error", err.Error(), "duration_ms", time.Since(start).Milliseconds())
		doc.Status = model.StatusError
		doc.ErrorMessage = err.Error()
		doc.UpdatedAt = s.now()
		if uerr := s.update(context.WithoutCancel(ctx), doc); uerr != nil {
			log.Error("document_status_update_failed", "error", uerr.Error())
		}
		return doc, err
	}

	fields, collisions := reconcile.Canonicalize(fields)
	for _, c := range collisions {
		log.Debug("field_key_collision", "key", c.Key, "kept", c.Kept, "dropped", c.Dropped)
	}

	located := 0
	for i := range fields {
		if m, ok := reconcile.Locate(text, fields[i].Pattern, s.opts.SnippetPadding); ok {
			fields[i].Match = &m
			located++
		}
		// Values entered before a re-parse survive when the key still exists.
		if j := reconcile.Find(doc.Fields, fields[i].Key); j >= 0 && fields[i].Value == "" {
			fields[i].Value = doc.Fields[j].Value
		}
	}

	prefilled := 0
	if doc.CompanyID != "" {
		c, err := s.companies.find(ctx, doc.CompanyID)
		switch {
		case err == nil:
			fields, prefilled = reconcile.Prefill(fields, c.Data)
		case errors.Is(err, ErrCompanyNotFound):
			log.Warn("document_company_missing", "company_id", doc.CompanyID)
		default:
			log.Warn("document_prefill_failed", "company_id", doc.CompanyID, "error", err.Error())
		}
	}

	doc.RawText = text
	doc.Fields = fields
	doc.Status = model.StatusReview
	doc.ErrorMessage = ""
	doc.UpdatedAt = s.now()
	if err := s.update(ctx, doc); err != nil {
		log.Error("document_parse_failed", "error", err.Error())
		return nil, err
	}

	log.Info("document_parse_completed",
		"fields", len(fields),
		"located", located,
		"prefilled", prefilled,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return doc, nil
}

// extractFields downloads the file, turns it into text and asks the model
// (or the cache) for its placeholders.
func (s *documentService) extractFields(ctx context.Context, doc *model.Document) ([]reconcile.Field, string, error) {
	body, err := s.download(ctx, doc)
	if err != nil {
		return nil, "", err
	}
	text, err := extract.Extract(bytes.NewReader(body), int64(len(body)), doc.ContentType, doc.OriginalName)
	if err != nil {
		return nil, "", fmt.Errorf("extract text: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, "", fmt.Errorf("extract text: %w: document has no text", extract.ErrInvalidDocument)
	}

	fields, hit, err := s.cache.Get(ctx, text)
	if err != nil {
		s.log.Warn("extraction_cache_get_failed", "document_id", doc.ID, "error", err.Error())
	}
	if hit {
		s.log.Debug("extraction_cache_hit", "document_id", doc.ID)
		return fields, text, nil
	}

	fields, err = s.llm.ExtractFields(ctx, text)
	if err != nil {
		return nil, "", err
	}
	if err := s.cache.Set(ctx, text, fields); err != nil {
		s.log.Warn("extraction_cache_set_failed", "document_id", doc.ID, "error", err.Error())
	}
	return fields, text, nil
}

func (s *documentService) download(ctx context.Context, doc *model.Document) ([]byte, error) {
	rc, _, err := s.store.Get(ctx, doc.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("download from storage: %w", err)
	}
	defer rc.Close()
	body, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read from storage: %w", err)
	}
	return body, nil
}

func (s *documentService) UpdateField(ctx context.Context, id, key, value string) (*model.Document, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.Status != model.StatusReview {
		return nil, fmt.Errorf("%w: fields can only be edited in review", ErrInvalidStatus)
	}
	if reconcile.Find(doc.Fields, key) < 0 {
		return nil, fmt.Errorf("%w: %s", ErrFieldNotFound, key)
	}
	applyValues(doc.Fields, map[string]string{key: value})
	doc.UpdatedAt = s.now()
	if err := s.update(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// applyValues sets field values by (normalized) key and returns what was
// applied under canonical keys. Unknown keys are ignored.
func applyValues(fields []reconcile.Field, values map[string]string) map[string]string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	applied := make(map[string]string)
	for _, k := range keys {
		i := reconcile.Find(fields, k)
		if i < 0 {
			continue
		}
		v := strings.TrimSpace(values[k])
		fields[i].Value = v
		applied[fields[i].Key] = v
	}
	return applied
}

func (s *documentService) Complete(ctx context.Context, id string) (*model.Document, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.Status != model.StatusReview {
		return nil, fmt.Errorf("%w: only documents in review can be completed", ErrInvalidStatus)
	}

	now := s.now()
	doc.Status = model.StatusCompleted
	doc.CompletedAt = &now
	doc.UpdatedAt = now
	if err := s.update(ctx, doc); err != nil {
		return nil, err
	}

	if doc.CompanyID != "" {
		if _, err := s.companies.merge(ctx, doc); err != nil {
			s.reopen(ctx, doc)
			return nil, fmt.Errorf("update company data: %w", err)
		}
	}
	return doc, nil
}

// reopen puts a document back into review after its company merge failed,
// so completing it can be retried.
func (s *documentService) reopen(ctx context.Context, doc *model.Document) {
	doc.Status = model.StatusReview
	doc.CompletedAt = nil
	doc.UpdatedAt = s.now()
	if err := s.update(ctx, doc); err != nil {
		s.log.Error("document_reopen_failed", "document_id", doc.ID, "error", err.Error())
	}
}

func (s *documentService) AssignCompany(ctx context.Context, id, companyID string) (*model.Document, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := doc.CompanyID
	if previous == companyID {
		return doc, nil
	}

	if companyID != "" {
		c, err := s.companies.find(ctx, companyID)
		if err != nil {
			return nil, err
		}
		if doc.Status != model.StatusCompleted {
			doc.Fields, _ = reconcile.Prefill(doc.Fields, c.Data)
		}
	}
	doc.CompanyID = companyID
	doc.UpdatedAt = s.now()
	if err := s.update(ctx, doc); err != nil {
		return nil, err
	}

	if doc.Status == model.StatusCompleted {
		if previous != "" {
			if _, err := s.companies.detach(ctx, previous, doc.ID); err != nil && !errors.Is(err, ErrCompanyNotFound) {
				return nil, fmt.Errorf("update previous company data: %w", err)
			}
		}
		if companyID != "" {
			if _, err := s.companies.merge(ctx, doc); err != nil {
				return nil, fmt.Errorf("update company data: %w", err)
			}
		}
	}
	return doc, nil
}

func (s *documentService) Render(ctx context.Context, id string) (*Rendered, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.Status != model.StatusReview && doc.Status != model.StatusCompleted {
		return nil, fmt.Errorf("%w: document has not been parsed", ErrInvalidStatus)
	}

	repls := replacements(doc)

	base := strings.TrimSuffix(doc.OriginalName, path.Ext(doc.OriginalName))
	if extract.Detect(doc.ContentType, doc.OriginalName) != extract.FormatDOCX {
		return &Rendered{
			Filename:    base + "_filled.txt",
			ContentType: "text/plain; charset=utf-8",
			Body:        []byte(extract.FillText(doc.RawText, repls)),
		}, nil
	}

	body, err := s.download(ctx, doc)
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := extract.FillDOCX(bytes.NewReader(body), int64(len(body)), &out, repls); err != nil {
		return nil, fmt.Errorf("render docx: %w", err)
	}
	return &Rendered{
		Filename:    base + "_filled.docx",
		ContentType: extract.MIMEDOCX,
		Body:        out.Bytes(),
	}, nil
}

// replacements covers every form of each filled placeholder: the extracted
// pattern plus whatever text the locator matched case- or space-insensitively.
func replacements(doc *model.Document) []extract.Replacement {
	var repls []extract.Replacement
	for _, f := range doc.Fields {
		if !f.Filled() || f.Pattern == "" {
			continue
		}
		seen := map[string]bool{}
		add := func(form string) {
			if form == "" || seen[form] {
				return
			}
			seen[form] = true
			repls = append(repls, extract.Replacement{Pattern: form, Value: f.Value})
		}
		add(f.Pattern)
		for _, m := range reconcile.LocateAll(doc.RawText, f.Pattern, 0) {
			add(doc.RawText[m.Start:m.End])
		}
	}
	return repls
}

func (s *documentService) OriginalURL(ctx context.Context, id string, expiry time.Duration) (string, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}
	url, err := s.store.PresignGet(ctx, doc.StoragePath, expiry)
	if err != nil {
		return "", fmt.Errorf("presign: %w", err)
	}
	return url, nil
}

func (s *documentService) Context(ctx context.Context, id, key string) (*FieldContext, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	i := reconcile.Find(doc.Fields, key)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrFieldNotFound, key)
	}
	f := doc.Fields[i]
	matches := reconcile.LocateAll(doc.RawText, f.Pattern, s.opts.SnippetPadding)
	if len(matches) == 0 {
		return nil, ErrFieldNotLocated
	}
	return &FieldContext{Field: f, Matches: matches}, nil
}

func (s *documentService) update(ctx context.Context, doc *model.Document) error {
	if err := s.repo.Update(ctx, doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}
