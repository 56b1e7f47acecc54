package repos

import (
	"context"
	"errors"
	"fmt"
	"time"

	"earnhub/internal/cache"
	"earnhub/internal/domain"
	applog "earnhub/internal/log"

	"github.com/google/uuid"
)

const DefaultCacheTTL = 2 * time.Minute

// CachedOpportunityRepo caches read results and drops all of them on any
// successful write by rotating a generation key. Cache failures fall
// through to the wrapped store.
type CachedOpportunityRepo struct {
	next   OpportunityStore
	cache  cache.Cache
	ttl    time.Duration
	prefix string
}

var _ OpportunityStore = (*CachedOpportunityRepo)(nil)

func NewCachedOpportunityRepo(next OpportunityStore, c cache.Cache, ttl time.Duration) *CachedOpportunityRepo {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedOpportunityRepo{next: next, cache: c, ttl: ttl, prefix: "opportunities:"}
}

func (r *CachedOpportunityRepo) genKey() string { return r.prefix + "gen" }

func (r *CachedOpportunityRepo) generation(ctx context.Context) string {
	b, err := r.cache.Get(ctx, r.genKey())
	if err == nil && len(b) > 0 {
		return string(b)
	}
	if err != nil && !errors.Is(err, cache.ErrNotFound) {
		applog.Error(nil, "cache.generation.fail", err, nil)
	}
	return r.rotate(ctx)
}

func (r *CachedOpportunityRepo) rotate(ctx context.Context) string {
	g := uuid.NewString()
	if err := r.cache.Set(ctx, r.genKey(), []byte(g), 0); err != nil {
		applog.Error(nil, "cache.invalidate.fail", err, nil)
	}
	return g
}

// Invalidate drops every cached listing.
func (r *CachedOpportunityRepo) Invalidate(ctx context.Context) { r.rotate(ctx) }

func (r *CachedOpportunityRepo) read(ctx context.Context, key string, load func() ([]domain.Opportunity, error)) ([]domain.Opportunity, error) {
	key = r.prefix + r.generation(ctx) + ":" + key

	var out []domain.Opportunity
	err := cache.GetJSON(ctx, r.cache, key, &out)
	if err == nil {
		return out, nil
	}
	if !errors.Is(err, cache.ErrNotFound) {
		applog.Error(nil, "cache.get.fail", err, map[string]any{"key": key})
	}

	out, err = load()
	if err != nil {
		return nil, err
	}
	if err := cache.SetJSON(ctx, r.cache, key, out, r.ttl); err != nil {
		applog.Error(nil, "cache.set.fail", err, map[string]any{"key": key})
	}
	return out, nil
}

func (r *CachedOpportunityRepo) List(ctx context.Context, sort string, limit int) ([]domain.Opportunity, error) {
	key := fmt.Sprintf("list:%s:%d", sort, limit)
	return r.read(ctx, key, func() ([]domain.Opportunity, error) {
		return r.next.List(ctx, sort, limit)
	})
}

func (r *CachedOpportunityRepo) Filter(ctx context.Context, p domain.Predicate, sort string, limit int) ([]domain.Opportunity, error) {
	key := fmt.Sprintf("filter:%s:%s:%d", predicateKey(p), sort, limit)
	return r.read(ctx, key, func() ([]domain.Opportunity, error) {
		return r.next.Filter(ctx, p, sort, limit)
	})
}

func (r *CachedOpportunityRepo) Create(ctx context.Context, o domain.Opportunity) (domain.Opportunity, error) {
	created, err := r.next.Create(ctx, o)
	if err != nil {
		return domain.Opportunity{}, err
	}
	r.rotate(ctx)
	return created, nil
}

func (r *CachedOpportunityRepo) Update(ctx context.Context, id string, p domain.OpportunityPatch) (domain.Opportunity, error) {
	updated, err := r.next.Update(ctx, id, p)
	if err != nil {
		return domain.Opportunity{}, err
	}
	r.rotate(ctx)
	return updated, nil
}

func (r *CachedOpportunityRepo) Delete(ctx context.Context, id string) error {
	if err := r.next.Delete(ctx, id); err != nil {
		return err
	}
	r.rotate(ctx)
	return nil
}

func predicateKey(p domain.Predicate) string {
	s := func(v *string) string {
		if v == nil {
			return "*"
		}
		return *v
	}
	b := func(v *bool) string {
		if v == nil {
			return "*"
		}
		return fmt.Sprint(*v)
	}
	var cat, rec *string
	if p.Category != nil {
		cat = domain.Ref(string(*p.Category))
	}
	if p.Recommendation != nil {
		rec = domain.Ref(string(*p.Recommendation))
	}
	return fmt.Sprintf("id=%s,cat=%s,rec=%s,active=%s,featured=%s",
		s(p.ID), s(cat), s(rec), b(p.IsActive), b(p.IsFeatured))
}
