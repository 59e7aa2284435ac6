package directory

import (
	"context"
	"fmt"
	"strings"

	model "boykot-backend/internal/models"
	"boykot-backend/internal/store"
)

// Service serves the boycott-company directory. The collection is read-only
// from the app's perspective; it is seeded offline.
type Service struct {
	store store.Store
}

func NewService(st store.Store) *Service {
	return &Service{store: st}
}

// ListOptions narrows a directory listing. Search matches case-sensitive name
// prefixes only: the underlying query model has no full-text search, so the
// lookup is emulated with a range filter on the name field.
type ListOptions struct {
	Category string
	Search   string
	Page     store.Page
}

func (s *Service) List(ctx context.Context, opts ListOptions) (model.CompanyPage, error) {
	q := store.Query{
		Sort: &store.Sort{Field: "name"},
		Page: opts.Page,
	}
	if opts.Category != "" {
		q.Filters = append(q.Filters, store.Filter{Field: "category", Op: store.OpEq, Value: opts.Category})
	}
	if search := strings.TrimSpace(opts.Search); search != "" {
		q.Filters = append(q.Filters, store.PrefixFilters("name", search)...)
	}

	var companies []model.Company
	next, err := s.store.ListMany(ctx, store.CollBoycottCompanies, q, &companies)
	if err != nil {
		return model.CompanyPage{}, fmt.Errorf("list companies: %w", err)
	}
	return model.CompanyPage{Companies: companies, NextCursor: next}, nil
}

func (s *Service) Get(ctx context.Context, id string) (model.Company, error) {
	var company model.Company
	if err := s.store.GetOne(ctx, store.CollBoycottCompanies, id, &company); err != nil {
		return model.Company{}, err
	}
	return company, nil
}
