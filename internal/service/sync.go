package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/camerontabion/JurisFlo/internal/model"
	"github.com/camerontabion/JurisFlo/internal/reconcile"
	"github.com/camerontabion/JurisFlo/internal/repository"
)

// companySync keeps a company's aggregated data in line with its completed
// documents. Shared by the document and company services.
type companySync struct {
	docs      repository.DocumentRepository
	companies repository.CompanyRepository
}

func (s companySync) find(ctx context.Context, id string) (*model.Company, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	c, err := s.companies.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCompanyNotFound
		}
		return nil, err
	}
	return c, nil
}

// merge folds a completed document into its company.
func (s companySync) merge(ctx context.Context, doc *model.Document) (*model.Company, error) {
	c, err := s.find(ctx, doc.CompanyID)
	if err != nil {
		return nil, err
	}
	c.Data = reconcile.Merge(c.Data, doc.Source())
	if err := s.save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// detach drops a document's entries and lets the company's remaining
// completed documents fill the gaps.
func (s companySync) detach(ctx context.Context, companyID, documentID string) (*model.Company, error) {
	c, err := s.find(ctx, companyID)
	if err != nil {
		return nil, err
	}
	docs, err := s.docs.ListCompletedByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("list company documents: %w", err)
	}
	data := reconcile.Remove(c.Data, documentID)
	for i := range docs {
		if docs[i].ID == documentID {
			continue
		}
		data = reconcile.Merge(data, docs[i].Source())
	}
	c.Data = data
	if err := s.save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// rebuild recomputes the company data from scratch.
func (s companySync) rebuild(ctx context.Context, companyID string) (*model.Company, error) {
	c, err := s.find(ctx, companyID)
	if err != nil {
		return nil, err
	}
	docs, err := s.docs.ListCompletedByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("list company documents: %w", err)
	}
	sources := make([]reconcile.Source, 0, len(docs))
	for i := range docs {
		sources = append(sources, docs[i].Source())
	}
	c.Data = reconcile.Aggregate(sources)
	if err := s.save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s companySync) save(ctx context.Context, c *model.Company) error {
	if err := s.companies.UpdateData(ctx, c.ID, c.Data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCompanyNotFound
		}
		return fmt.Errorf("save company data: %w", err)
	}
	return nil
}
