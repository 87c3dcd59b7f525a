package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"talentbridge/portal-service/internal/identity"
	"talentbridge/portal-service/internal/portal"
)

const (
	industryTopN = 7
	schoolTopN   = 10

	governmentCachePrefix = "stats:government:dashboard"
	cacheTTL              = 30 * time.Minute
)

// governmentCacheKeyFor scopes the snapshot key by trend window, so a caller
// asking for a 12-month trend never gets the scheduler's default window.
func governmentCacheKeyFor(months int) string {
	return fmt.Sprintf("%s:%dm", governmentCachePrefix, months)
}

// Engine computes the role-scoped dashboards. All queries are read-only; a
// failure of any sub-query fails the whole aggregate.
type Engine struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
}

// NewEngine returns a configured Engine.
func NewEngine(pool *pgxpool.Pool, rdb *redis.Client) *Engine {
	return &Engine{pool: pool, rdb: rdb}
}

// GovernmentStats are the headline figures on the government dashboard.
type GovernmentStats struct {
	TotalApplications int     `json:"totalApplications"`
	TodayApplications int     `json:"todayApplications"`
	TotalInterviews   int     `json:"totalInterviews"`
	AvgMatchScore     float64 `json:"avgMatchScore"`
	RetentionRate     float64 `json:"retentionRate"`
}

// TrendBucket is one month of the retention trend.
type TrendBucket struct {
	Month        string `json:"month"`
	Applications int    `json:"applications"`
	Interviews   int    `json:"interviews"`
	Offers       int    `json:"offers"`
}

// GovernmentDashboard is the full aggregate view for GOVERNMENT callers.
// Every row is aggregate and non-identifying.
type GovernmentDashboard struct {
	Stats                GovernmentStats `json:"stats"`
	Trend                []TrendBucket   `json:"trend"`
	IndustryDistribution []IndustryShare `json:"industryDistribution"`
	SchoolRanking        []SchoolRank    `json:"schoolRanking"`
	GeneratedAt          time.Time       `json:"generatedAt"`
}

// SchoolDashboard is the employment view for one institution.
type SchoolDashboard struct {
	TotalStudents        int             `json:"totalStudents"`
	AppliedStudents      int             `json:"appliedStudents"`
	EmployedStudents     int             `json:"employedStudents"`
	EmploymentRate       float64         `json:"employmentRate"`
	TopIndustries        []CountRow      `json:"topIndustries"`
	TopCompanies         []CountRow      `json:"topCompanies"`
	IndustryDistribution []IndustryShare `json:"industryDistribution"`
}

// PlatformOverview is the ADMIN-only entity census.
type PlatformOverview struct {
	TotalUsers          int `json:"totalUsers"`
	TotalEnterprises    int `json:"totalEnterprises"`
	TotalSchools        int `json:"totalSchools"`
	TotalJobs           int `json:"totalJobs"`
	TotalApplications   int `json:"totalApplications"`
	ActiveJobs          int `json:"activeJobs"`
	VerifiedEnterprises int `json:"verifiedEnterprises"`
	VerifiedSchools     int `json:"verifiedSchools"`
}

// GovernmentDashboard serves GOVERNMENT and ADMIN callers only. Results come
// from the cached snapshot when fresh, falling back to a live computation.
func (e *Engine) GovernmentDashboard(ctx context.Context, claims identity.SessionClaims, months int) (GovernmentDashboard, error) {
	if !claims.Role.Equal(identity.RoleGovernment) && !claims.Role.Equal(identity.RoleAdmin) {
		return GovernmentDashboard{}, portal.ErrForbidden
	}

	months = clampMonths(months)
	if cached, ok := e.cachedGovernmentDashboard(ctx, months); ok {
		return cached, nil
	}
	return e.computeGovernmentDashboard(ctx, months)
}

// SchoolDashboard serves SCHOOL callers for their own institution and ADMIN
// for any. A SCHOOL caller's target is always their own schoolId from the
// claim set, regardless of the requested value.
func (e *Engine) SchoolDashboard(ctx context.Context, claims identity.SessionClaims, schoolID string) (SchoolDashboard, error) {
	switch {
	case claims.Role.Equal(identity.RoleSchool):
		if claims.SchoolID == "" {
			return SchoolDashboard{}, portal.ErrForbidden
		}
		schoolID = claims.SchoolID
	case claims.Role.Equal(identity.RoleAdmin):
		if schoolID == "" {
			return SchoolDashboard{}, &portal.ValidationError{Msg: "schoolId is required"}
		}
	default:
		return SchoolDashboard{}, portal.ErrForbidden
	}

	var (
		dash     SchoolDashboard
		industry []CountRow
	)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return e.pool.QueryRow(ctx,
			`SELECT COUNT(*) FROM users WHERE school_id = $1 AND role = 'STUDENT'`, schoolID,
		).Scan(&dash.TotalStudents)
	})
	g.Go(func() error {
		return e.pool.QueryRow(ctx,
			`SELECT COUNT(DISTINCT a.user_id)
			 FROM applications a JOIN users u ON u.id = a.user_id
			 WHERE u.school_id = $1`, schoolID,
		).Scan(&dash.AppliedStudents)
	})
	g.Go(func() error {
		return e.pool.QueryRow(ctx,
			`SELECT COUNT(DISTINCT a.user_id)
			 FROM applications a JOIN users u ON u.id = a.user_id
			 WHERE u.school_id = $1 AND a.status = 'OFFERED'`, schoolID,
		).Scan(&dash.EmployedStudents)
	})
	g.Go(func() (err error) {
		dash.TopIndustries, err = e.countRows(ctx,
			`SELECT COALESCE(NULLIF(j.industry, ''), 'unknown'), COUNT(*)
			 FROM applications a
			 JOIN users u ON u.id = a.user_id
			 JOIN jobs j ON j.id = a.job_id
			 WHERE u.school_id = $1
			 GROUP BY 1`, schoolID)
		return err
	})
	g.Go(func() (err error) {
		dash.TopCompanies, err = e.countRows(ctx,
			`SELECT e.name, COUNT(*)
			 FROM applications a
			 JOIN users u ON u.id = a.user_id
			 JOIN jobs j ON j.id = a.job_id
			 JOIN enterprises e ON e.id = j.enterprise_id
			 WHERE u.school_id = $1
			 GROUP BY e.name`, schoolID)
		return err
	})
	g.Go(func() (err error) {
		industry, err = e.industryCounts(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return SchoolDashboard{}, fmt.Errorf("schoolDashboard: %w", err)
	}

	dash.EmploymentRate = Rate(dash.EmployedStudents, dash.TotalStudents)
	dash.TopIndustries = TopCounts(dash.TopIndustries, 5)
	dash.TopCompanies = TopCounts(dash.TopCompanies, 5)
	dash.IndustryDistribution = IndustryDistribution(industry, industryTopN)
	return dash, nil
}

// PlatformOverview serves ADMIN callers only.
func (e *Engine) PlatformOverview(ctx context.Context, claims identity.SessionClaims) (PlatformOverview, error) {
	if !claims.Role.Equal(identity.RoleAdmin) {
		return PlatformOverview{}, portal.ErrForbidden
	}

	var o PlatformOverview
	g, ctx := errgroup.WithContext(ctx)

	count := func(dst *int, query string) {
		g.Go(func() error { return e.pool.QueryRow(ctx, query).Scan(dst) })
	}
	count(&o.TotalUsers, `SELECT COUNT(*) FROM users`)
	count(&o.TotalEnterprises, `SELECT COUNT(*) FROM enterprises`)
	count(&o.TotalSchools, `SELECT COUNT(*) FROM schools`)
	count(&o.TotalJobs, `SELECT COUNT(*) FROM jobs`)
	count(&o.TotalApplications, `SELECT COUNT(*) FROM applications`)
	count(&o.ActiveJobs, `SELECT COUNT(*) FROM jobs WHERE status = 'PUBLISHED'`)
	count(&o.VerifiedEnterprises, `SELECT COUNT(*) FROM enterprises WHERE verified`)
	count(&o.VerifiedSchools, `SELECT COUNT(*) FROM schools WHERE verified`)

	if err := g.Wait(); err != nil {
		return PlatformOverview{}, fmt.Errorf("platformOverview: %w", err)
	}
	return o, nil
}

// computeGovernmentDashboard runs the full fan-out. Called by the public
// accessor on cache miss and by the refresh scheduler directly.
func clampMonths(months int) int {
	if months < 1 || months > 24 {
		return 6
	}
	return months
}

func (e *Engine) computeGovernmentDashboard(ctx context.Context, months int) (GovernmentDashboard, error) {
	months = clampMonths(months)

	var (
		stats    GovernmentStats
		trend    []TrendBucket
		industry []CountRow
		ranking  []SchoolRank
	)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		stats, err = e.governmentStats(ctx)
		return err
	})
	g.Go(func() (err error) {
		trend, err = e.retentionTrend(ctx, months)
		return err
	})
	g.Go(func() (err error) {
		industry, err = e.industryCounts(ctx)
		return err
	})
	g.Go(func() (err error) {
		ranking, err = e.schoolRetention(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return GovernmentDashboard{}, fmt.Errorf("governmentDashboard: %w", err)
	}

	dash := GovernmentDashboard{
		Stats:                stats,
		Trend:                trend,
		IndustryDistribution: IndustryDistribution(industry, industryTopN),
		SchoolRanking:        RankSchools(ranking, schoolTopN),
		GeneratedAt:          time.Now().UTC(),
	}
	e.cacheGovernmentDashboard(ctx, months, dash)
	return dash, nil
}

func (e *Engine) governmentStats(ctx context.Context) (GovernmentStats, error) {
	var (
		s       GovernmentStats
		offered int
	)
	err := e.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE created_at >= date_trunc('day', NOW())),
		        COUNT(*) FILTER (WHERE status = 'INTERVIEWING'),
		        COALESCE(AVG(match_score) FILTER (WHERE match_score IS NOT NULL), 0),
		        COUNT(*) FILTER (WHERE status = 'OFFERED')
		 FROM applications`,
	).Scan(&s.TotalApplications, &s.TodayApplications, &s.TotalInterviews, &s.AvgMatchScore, &offered)
	if err != nil {
		return GovernmentStats{}, fmt.Errorf("governmentStats: %w", err)
	}
	s.RetentionRate = Rate(offered, s.TotalApplications)
	return s, nil
}

func (e *Engine) retentionTrend(ctx context.Context, months int) ([]TrendBucket, error) {
	rows, err := e.pool.Query(ctx,
		`SELECT to_char(date_trunc('month', created_at), 'YYYY-MM') AS month,
		        COUNT(*),
		        COUNT(*) FILTER (WHERE status = 'INTERVIEWING'),
		        COUNT(*) FILTER (WHERE status = 'OFFERED')
		 FROM applications
		 WHERE created_at >= date_trunc('month', NOW()) - ($1 - 1) * INTERVAL '1 month'
		 GROUP BY 1
		 ORDER BY 1`,
		months,
	)
	if err != nil {
		return nil, fmt.Errorf("retentionTrend: %w", err)
	}
	defer rows.Close()

	byMonth := make(map[string]TrendBucket)
	for rows.Next() {
		var b TrendBucket
		if err := rows.Scan(&b.Month, &b.Applications, &b.Interviews, &b.Offers); err != nil {
			return nil, fmt.Errorf("retentionTrend scan: %w", err)
		}
		byMonth[b.Month] = b
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("retentionTrend rows: %w", err)
	}

	// Emit every month in the window, zero-filled, oldest first.
	out := make([]TrendBucket, 0, months)
	now := time.Now()
	for i := months - 1; i >= 0; i-- {
		month := now.AddDate(0, -i, 0).Format("2006-01")
		b, ok := byMonth[month]
		if !ok {
			b = TrendBucket{Month: month}
		}
		out = append(out, b)
	}
	return out, nil
}

func (e *Engine) industryCounts(ctx context.Context) ([]CountRow, error) {
	return e.countRows(ctx,
		`SELECT industry, COUNT(*)
		 FROM jobs
		 WHERE status = 'PUBLISHED' AND industry <> ''
		 GROUP BY industry`)
}

func (e *Engine) schoolRetention(ctx context.Context) ([]SchoolRank, error) {
	rows, err := e.pool.Query(ctx,
		`SELECT s.id, s.name, COUNT(a.id),
		        COUNT(a.id) FILTER (WHERE a.status = 'OFFERED')
		 FROM schools s
		 JOIN users u ON u.school_id = s.id AND u.role = 'STUDENT'
		 JOIN applications a ON a.user_id = u.id
		 WHERE s.verified
		 GROUP BY s.id, s.name
		 HAVING COUNT(a.id) > 0
		 ORDER BY s.created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("schoolRetention: %w", err)
	}
	defer rows.Close()

	ranks := make([]SchoolRank, 0)
	for rows.Next() {
		var r SchoolRank
		if err := rows.Scan(&r.SchoolID, &r.SchoolName, &r.Total, &r.Offered); err != nil {
			return nil, fmt.Errorf("schoolRetention scan: %w", err)
		}
		ranks = append(ranks, r)
	}
	return ranks, rows.Err()
}

func (e *Engine) countRows(ctx context.Context, query string, args ...any) ([]CountRow, error) {
	rows, err := e.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]CountRow, 0)
	for rows.Next() {
		var r CountRow
		if err := rows.Scan(&r.Label, &r.Count); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (e *Engine) cachedGovernmentDashboard(ctx context.Context, months int) (GovernmentDashboard, bool) {
	if e.rdb == nil {
		return GovernmentDashboard{}, false
	}
	raw, err := e.rdb.Get(ctx, governmentCacheKeyFor(months)).Bytes()
	if err != nil {
		return GovernmentDashboard{}, false
	}
	var dash GovernmentDashboard
	if err := json.Unmarshal(raw, &dash); err != nil {
		return GovernmentDashboard{}, false
	}
	return dash, true
}

func (e *Engine) cacheGovernmentDashboard(ctx context.Context, months int, dash GovernmentDashboard) {
	if e.rdb == nil {
		return
	}
	raw, err := json.Marshal(dash)
	if err != nil {
		return
	}
	// Cache write failure is non-fatal; the next request recomputes.
	e.rdb.Set(ctx, governmentCacheKeyFor(months), raw, cacheTTL)
}
