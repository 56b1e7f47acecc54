package repos

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"earnhub/internal/domain"
	"earnhub/internal/tracing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel/attribute"
)

var ErrNotFound = errors.New("opportunity not found")

const (
	DefaultSort  = "-created_date"
	defaultLimit = 100
	maxLimit     = 500

	// Fixed width so text ordering equals time ordering.
	timeLayout = "2006-01-02T15:04:05.000000000Z"
)

// OpportunityStore is the generic entity API the catalog and the admin
// editor talk to.
type OpportunityStore interface {
	List(ctx context.Context, sort string, limit int) ([]domain.Opportunity, error)
	Filter(ctx context.Context, p domain.Predicate, sort string, limit int) ([]domain.Opportunity, error)
	Create(ctx context.Context, o domain.Opportunity) (domain.Opportunity, error)
	Update(ctx context.Context, id string, p domain.OpportunityPatch) (domain.Opportunity, error)
	Delete(ctx context.Context, id string) error
}

var _ OpportunityStore = (*OpportunityRepo)(nil)

type opportunityRow struct {
	ID               string  `db:"id"`
	Title            string  `db:"title"`
	Category         string  `db:"category"`
	Description      string  `db:"description"`
	EarningPotential string  `db:"earning_potential"`
	TimeInvestment   string  `db:"time_investment"`
	Difficulty       string  `db:"difficulty"`
	Recommendation   string  `db:"recommendation"`
	Rating           float64 `db:"rating"`
	Tips             string  `db:"tips"`
	ReferralLink     string  `db:"referral_link"`
	PlatformURL      string  `db:"platform_url"`
	CouponCode       string  `db:"coupon_code"`
	ImageURL         string  `db:"image_url"`
	EvidenceJSON     string  `db:"evidence_images_json"`
	IsFeatured       bool    `db:"is_featured"`
	IsActive         bool    `db:"is_active"`
	CreatedDate      string  `db:"created_date"`
	UpdatedDate      string  `db:"updated_date"`
}

const opportunityColumns = `
    id, title, category, description, earning_potential, time_investment,
    difficulty, recommendation, rating, tips, referral_link, platform_url,
    coupon_code, image_url, evidence_images_json, is_featured, is_active,
    created_date, updated_date`

func toRow(o domain.Opportunity) (opportunityRow, error) {
	images := o.EvidenceImages
	if images == nil {
		images = []string{}
	}
	b, err := json.Marshal(images)
	if err != nil {
		return opportunityRow{}, err
	}
	row := opportunityRow{
		ID:               o.ID,
		Title:            o.Title,
		Category:         string(o.Category),
		Description:      o.Description,
		EarningPotential: o.EarningPotential,
		TimeInvestment:   o.TimeInvestment,
		Difficulty:       string(o.Difficulty),
		Recommendation:   string(o.Recommendation),
		Rating:           domain.ClampRating(o.Rating),
		Tips:             o.Tips,
		ReferralLink:     o.ReferralLink,
		PlatformURL:      o.PlatformURL,
		CouponCode:       o.CouponCode,
		ImageURL:         o.ImageURL,
		EvidenceJSON:     string(b),
		IsFeatured:       o.IsFeatured,
		IsActive:         o.IsActive,
		CreatedDate:      o.CreatedDate.UTC().Format(timeLayout),
	}
	if !o.UpdatedDate.IsZero() {
		row.UpdatedDate = o.UpdatedDate.UTC().Format(timeLayout)
	}
	return row, nil
}

func (r opportunityRow) toDomain() domain.Opportunity {
	o := domain.Opportunity{
		ID:               r.ID,
		Title:            r.Title,
		Category:         domain.Category(r.Category),
		Description:      r.Description,
		EarningPotential: r.EarningPotential,
		TimeInvestment:   r.TimeInvestment,
		Difficulty:       domain.Difficulty(r.Difficulty),
		Recommendation:   domain.Recommendation(r.Recommendation),
		Rating:           r.Rating,
		Tips:             r.Tips,
		ReferralLink:     r.ReferralLink,
		PlatformURL:      r.PlatformURL,
		CouponCode:       r.CouponCode,
		ImageURL:         r.ImageURL,
		IsFeatured:       r.IsFeatured,
		IsActive:         r.IsActive,
	}
	// A corrupt image list should not hide the whole record.
	_ = json.Unmarshal([]byte(r.EvidenceJSON), &o.EvidenceImages)
	o.CreatedDate, _ = time.Parse(timeLayout, r.CreatedDate)
	if r.UpdatedDate != "" {
		o.UpdatedDate, _ = time.Parse(timeLayout, r.UpdatedDate)
	}
	return o
}

type OpportunityRepo struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewOpportunityRepo(db *sqlx.DB) *OpportunityRepo {
	return &OpportunityRepo{db: db, now: time.Now}
}

func (r *OpportunityRepo) List(ctx context.Context, sort string, limit int) ([]domain.Opportunity, error) {
	ctx, span := tracing.Get().StartSpan(ctx, "store.list")
	defer span.End()
	return r.query(ctx, domain.Predicate{}, sort, limit)
}

func (r *OpportunityRepo) Filter(ctx context.Context, p domain.Predicate, sort string, limit int) ([]domain.Opportunity, error) {
	ctx, span := tracing.Get().StartSpan(ctx, "store.filter")
	defer span.End()
	return r.query(ctx, p, sort, limit)
}

func (r *OpportunityRepo) query(ctx context.Context, p domain.Predicate, sort string, limit int) ([]domain.Opportunity, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	where, args := predicateSQL(p)
	q := `SELECT ` + opportunityColumns + `
  FROM opportunities` + where + `
  ORDER BY ` + orderBy(sort) + `
  LIMIT ?`
	args = append(args, limit)

	var rows []opportunityRow
	if err := r.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("select opportunities: %w", err)
	}
	out := make([]domain.Opportunity, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *OpportunityRepo) Create(ctx context.Context, o domain.Opportunity) (domain.Opportunity, error) {
	ctx, span := tracing.Get().StartSpan(ctx, "store.create")
	defer span.End()

	o.ID = uuid.NewString()
	o.CreatedDate = r.now().UTC()
	o.UpdatedDate = time.Time{}
	o.Rating = domain.ClampRating(o.Rating)
	row, err := toRow(o)
	if err != nil {
		return domain.Opportunity{}, err
	}
	span.SetAttributes(attribute.String("opportunity.id", o.ID))

	if _, err := r.db.NamedExecContext(ctx, `
	  INSERT INTO opportunities (`+opportunityColumns+`)
	  VALUES (
	    :id, :title, :category, :description, :earning_potential, :time_investment,
	    :difficulty, :recommendation, :rating, :tips, :referral_link, :platform_url,
	    :coupon_code, :image_url, :evidence_images_json, :is_featured, :is_active,
	    :created_date, :updated_date)`, row); err != nil {
		return domain.Opportunity{}, fmt.Errorf("insert opportunity: %w", err)
	}
	return row.toDomain(), nil
}

// Update applies a partial patch inside a transaction. Last write wins.
func (r *OpportunityRepo) Update(ctx context.Context, id string, p domain.OpportunityPatch) (domain.Opportunity, error) {
	ctx, span := tracing.Get().StartSpan(ctx, "store.update")
	defer span.End()
	span.SetAttributes(attribute.String("opportunity.id", id))

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.Opportunity{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var cur opportunityRow
	if err := tx.GetContext(ctx, &cur, `SELECT `+opportunityColumns+` FROM opportunities WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Opportunity{}, ErrNotFound
		}
		return domain.Opportunity{}, err
	}

	next := p.Apply(cur.toDomain())
	next.UpdatedDate = r.now().UTC()
	row, err := toRow(next)
	if err != nil {
		return domain.Opportunity{}, err
	}
	if _, err := tx.NamedExecContext(ctx, `
	  UPDATE opportunities SET
	    title = :title, category = :category, description = :description,
	    earning_potential = :earning_potential, time_investment = :time_investment,
	    difficulty = :difficulty, recommendation = :recommendation, rating = :rating,
	    tips = :tips, referral_link = :referral_link, platform_url = :platform_url,
	    coupon_code = :coupon_code, image_url = :image_url,
	    evidence_images_json = :evidence_images_json,
	    is_featured = :is_featured, is_active = :is_active, updated_date = :updated_date
	  WHERE id = :id`, row); err != nil {
		return domain.Opportunity{}, fmt.Errorf("update opportunity %s: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Opportunity{}, err
	}
	return row.toDomain(), nil
}

func (r *OpportunityRepo) Delete(ctx context.Context, id string) error {
	ctx, span := tracing.Get().StartSpan(ctx, "store.delete")
	defer span.End()
	span.SetAttributes(attribute.String("opportunity.id", id))

	res, err := r.db.ExecContext(ctx, `DELETE FROM opportunities WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete opportunity %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func predicateSQL(p domain.Predicate) (string, []any) {
	var conds []string
	var args []any
	if p.ID != nil {
		conds = append(conds, `id = ?`)
		args = append(args, *p.ID)
	}
	if p.Category != nil {
		conds = append(conds, `category = ?`)
		args = append(args, string(*p.Category))
	}
	if p.Recommendation != nil {
		conds = append(conds, `recommendation = ?`)
		args = append(args, string(*p.Recommendation))
	}
	if p.IsActive != nil {
		conds = append(conds, `is_active = ?`)
		args = append(args, *p.IsActive)
	}
	if p.IsFeatured != nil {
		conds = append(conds, `is_featured = ?`)
		args = append(args, *p.IsFeatured)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return "\n  WHERE " + strings.Join(conds, " AND "), args
}

var sortColumns = map[string]string{
	"created_date": "created_date",
	"updated_date": "updated_date",
	"title":        "title COLLATE NOCASE",
	"rating":       "rating",
}

// orderBy turns "-created_date" style keys into a whitelisted ORDER BY.
func orderBy(sort string) string {
	dir := "ASC"
	key := strings.TrimSpace(sort)
	if strings.HasPrefix(key, "-") {
		dir = "DESC"
		key = key[1:]
	}
	col, ok := sortColumns[key]
	if !ok {
		return "created_date DESC, rowid DESC"
	}
	return col + " " + dir + ", rowid " + dir
}
