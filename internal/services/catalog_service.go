package services

import (
	"context"

	"earnhub/internal/domain"
	"earnhub/internal/repos"
)

const (
	BrowseLimit   = 100
	FeaturedLimit = 6
	AdminLimit    = 200
)

// Listing is what a page renders. A failed store read degrades to an empty
// listing with LoadFailed set.
type Listing struct {
	Items      []domain.Opportunity
	LoadFailed bool
}

func (l Listing) Empty() bool { return len(l.Items) == 0 }

type CatalogService struct {
	Store repos.OpportunityStore
}

func NewCatalogService(store repos.OpportunityStore) *CatalogService {
	return &CatalogService{Store: store}
}

// Browse returns active records, newest first.
func (s *CatalogService) Browse(ctx context.Context) ([]domain.Opportunity, error) {
	return s.Store.Filter(ctx, domain.Predicate{IsActive: domain.Ref(true)}, repos.DefaultSort, BrowseLimit)
}

func (s *CatalogService) Featured(ctx context.Context) ([]domain.Opportunity, error) {
	return s.Store.Filter(ctx, domain.Predicate{
		IsFeatured: domain.Ref(true),
		IsActive:   domain.Ref(true),
	}, repos.DefaultSort, FeaturedLimit)
}

// Detail returns nil, nil when no record has the id. Inactive records are
// returned; callers decide who may see them.
func (s *CatalogService) Detail(ctx context.Context, id string) (*domain.Opportunity, error) {
	list, err := s.Store.Filter(ctx, domain.Predicate{ID: domain.Ref(id)}, repos.DefaultSort, 1)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return &list[0], nil
}

func (s *CatalogService) AdminList(ctx context.Context) ([]domain.Opportunity, error) {
	return s.Store.List(ctx, repos.DefaultSort, AdminLimit)
}

// Degrade turns a fetch result into a Listing. Callers log the error.
func Degrade(items []domain.Opportunity, err error) Listing {
	if err != nil {
		return Listing{Items: []domain.Opportunity{}, LoadFailed: true}
	}
	if items == nil {
		items = []domain.Opportunity{}
	}
	return Listing{Items: items}
}
