package portal

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"talentbridge/portal-service/internal/identity"
)

const jobColumns = `j.id, j.enterprise_id, e.name, j.title, j.industry, j.category,
	j.salary_min, j.salary_max, j.location, j.address, j.description, j.requirements,
	j.benefits, j.skills, j.education_level, j.experience_years, j.fresh_graduate,
	j.headcount, j.status, j.published_at, j.created_at`

func scanJob(row pgx.Row) (Job, error) {
	var j Job
	err := row.Scan(
		&j.ID, &j.EnterpriseID, &j.EnterpriseName, &j.Title, &j.Industry, &j.Category,
		&j.SalaryMin, &j.SalaryMax, &j.Location, &j.Address, &j.Description, &j.Requirements,
		&j.Benefits, &j.Skills, &j.EducationLevel, &j.ExperienceYears, &j.FreshGraduate,
		&j.Headcount, &j.Status, &j.PublishedAt, &j.CreatedAt,
	)
	return j, err
}

// CreateJob inserts a new posting owned by the caller's enterprise. The
// owning reference always comes from the claim set; a client-supplied
// enterprise id is honored only for ADMIN callers acting on a tenant's
// behalf.
func (s *Store) CreateJob(ctx context.Context, claims identity.SessionClaims, job Job) (Job, error) {
	enterpriseID := claims.EnterpriseID
	if claims.Role.Equal(identity.RoleAdmin) && job.EnterpriseID != "" {
		enterpriseID = job.EnterpriseID
	}
	if enterpriseID == "" {
		return Job{}, ErrForbidden
	}

	if strings.TrimSpace(job.Title) == "" {
		return Job{}, &ValidationError{Msg: "title is required"}
	}
	if job.Skills == nil {
		job.Skills = []string{}
	}

	row := s.pool.QueryRow(ctx,
		`WITH ins AS (
		   INSERT INTO jobs (enterprise_id, title, industry, category, salary_min, salary_max,
		                     location, address, description, requirements, benefits, skills,
		                     education_level, experience_years, fresh_graduate, headcount, status)
		   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, 'DRAFT')
		   RETURNING *
		 )
		 SELECT `+strings.ReplaceAll(jobColumns, "j.", "ins.")+`
		 FROM ins JOIN enterprises e ON e.id = ins.enterprise_id`,
		enterpriseID, job.Title, job.Industry, job.Category, job.SalaryMin, job.SalaryMax,
		job.Location, job.Address, job.Description, job.Requirements, job.Benefits, job.Skills,
		job.EducationLevel, job.ExperienceYears, job.FreshGraduate, job.Headcount,
	)
	created, err := scanJob(row)
	if err != nil {
		return Job{}, fmt.Errorf("createJob: %w", err)
	}
	return created, nil
}

// UpdateJob edits a posting's mutable fields. The owning reference is
// immutable and never updated; the scope predicate requires the caller's
// enterprise to own the job, so a foreign posting reads as absent. ADMIN may
// edit any posting.
func (s *Store) UpdateJob(ctx context.Context, claims identity.SessionClaims, job Job) (Job, error) {
	if job.ID == "" {
		return Job{}, &ValidationError{Msg: "job id is required"}
	}
	if strings.TrimSpace(job.Title) == "" {
		return Job{}, &ValidationError{Msg: "title is required"}
	}
	if job.Skills == nil {
		job.Skills = []string{}
	}

	scope := ``
	args := []any{
		job.Title, job.Industry, job.Category, job.SalaryMin, job.SalaryMax,
		job.Location, job.Address, job.Description, job.Requirements, job.Benefits,
		job.Skills, job.EducationLevel, job.ExperienceYears, job.FreshGraduate,
		job.Headcount, job.ID,
	}
	if !claims.Role.Equal(identity.RoleAdmin) {
		if claims.EnterpriseID == "" {
			return Job{}, ErrForbidden
		}
		args = append(args, claims.EnterpriseID)
		scope = ` AND enterprise_id = $17`
	}

	row := s.pool.QueryRow(ctx,
		`WITH upd AS (
		   UPDATE jobs
		   SET title = $1, industry = $2, category = $3, salary_min = $4, salary_max = $5,
		       location = $6, address = $7, description = $8, requirements = $9, benefits = $10,
		       skills = $11, education_level = $12, experience_years = $13, fresh_graduate = $14,
		       headcount = $15
		   WHERE id = $16`+scope+`
		   RETURNING *
		 )
		 SELECT `+strings.ReplaceAll(jobColumns, "j.", "upd.")+`
		 FROM upd JOIN enterprises e ON e.id = upd.enterprise_id`,
		args...,
	)
	updated, err := scanJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Job{}, ErrNotFound
		}
		return Job{}, fmt.Errorf("updateJob: %w", err)
	}
	return updated, nil
}

// ListEnterpriseJobs returns the caller's own postings, newest first. An
// ADMIN caller may pass targetEnterpriseID to read on behalf of that tenant;
// for every other role the parameter is ignored.
func (s *Store) ListEnterpriseJobs(ctx context.Context, claims identity.SessionClaims, targetEnterpriseID string, page Page) ([]Job, int, error) {
	enterpriseID := claims.EnterpriseID
	if claims.Role.Equal(identity.RoleAdmin) {
		enterpriseID = targetEnterpriseID
	}
	if enterpriseID == "" {
		return nil, 0, ErrForbidden
	}

	page = page.Normalize(100)

	var total int
	if err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM jobs WHERE enterprise_id = $1`, enterpriseID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("listEnterpriseJobs count: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT `+jobColumns+`
		 FROM jobs j JOIN enterprises e ON e.id = j.enterprise_id
		 WHERE j.enterprise_id = $1
		 ORDER BY j.created_at DESC
		 LIMIT $2 OFFSET $3`,
		enterpriseID, page.Size, page.Offset(),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("listEnterpriseJobs query: %w", err)
	}
	defer rows.Close()

	jobs := make([]Job, 0)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("listEnterpriseJobs scan: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, total, nil
}

// PublishJob moves a draft posting to PUBLISHED. The predicate requires the
// caller's enterprise to own the job; a foreign job reads as absent.
func (s *Store) PublishJob(ctx context.Context, claims identity.SessionClaims, jobID string) (Job, error) {
	if claims.EnterpriseID == "" {
		return Job{}, ErrForbidden
	}

	row := s.pool.QueryRow(ctx,
		`WITH upd AS (
		   UPDATE jobs SET status = 'PUBLISHED', published_at = NOW()
		   WHERE id = $1 AND enterprise_id = $2 AND status = 'DRAFT'
		   RETURNING *
		 )
		 SELECT `+strings.ReplaceAll(jobColumns, "j.", "upd.")+`
		 FROM upd JOIN enterprises e ON e.id = upd.enterprise_id`,
		jobID, claims.EnterpriseID,
	)
	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Job{}, ErrNotFound
		}
		return Job{}, fmt.Errorf("publishJob: %w", err)
	}
	return job, nil
}

// ListPublishedJobs is the globally visible listing used by the public site
// and the open gateway. Only PUBLISHED postings are reachable here,
// regardless of caller-supplied filters.
func (s *Store) ListPublishedJobs(ctx context.Context, filter JobFilter, page Page) ([]Job, int, error) {
	page = page.Normalize(50)

	where := []string{`j.status = 'PUBLISHED'`}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.Industry != "" {
		where = append(where, `j.industry = `+arg(filter.Industry))
	}
	if filter.Location != "" {
		where = append(where, `j.location = `+arg(filter.Location))
	}
	if filter.Keyword != "" {
		p := arg("%" + filter.Keyword + "%")
		where = append(where, `(j.title ILIKE `+p+` OR j.description ILIKE `+p+`)`)
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM jobs j WHERE `+cond, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("listPublishedJobs count: %w", err)
	}

	args = append(args, page.Size, page.Offset())
	rows, err := s.pool.Query(ctx,
		`SELECT `+jobColumns+`
		 FROM jobs j JOIN enterprises e ON e.id = j.enterprise_id
		 WHERE `+cond+`
		 ORDER BY j.published_at DESC
		 LIMIT $`+fmt.Sprint(len(args)-1)+` OFFSET $`+fmt.Sprint(len(args)),
		args...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("listPublishedJobs query: %w", err)
	}
	defer rows.Close()

	jobs := make([]Job, 0)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("listPublishedJobs scan: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, total, nil
}

// GetPublishedJob fetches one published posting with its owning enterprise.
// Drafts, closed, and archived postings are indistinguishable from absent.
func (s *Store) GetPublishedJob(ctx context.Context, id string) (Job, Enterprise, error) {
	var (
		j Job
		e Enterprise
	)
	err := s.pool.QueryRow(ctx,
		`SELECT `+jobColumns+`, e.id, e.name, e.industry, e.scale, e.description,
		        e.address, e.logo, e.verified, e.created_at
		 FROM jobs j JOIN enterprises e ON e.id = j.enterprise_id
		 WHERE j.id = $1 AND j.status = 'PUBLISHED'`,
		id,
	).Scan(
		&j.ID, &j.EnterpriseID, &j.EnterpriseName, &j.Title, &j.Industry, &j.Category,
		&j.SalaryMin, &j.SalaryMax, &j.Location, &j.Address, &j.Description, &j.Requirements,
		&j.Benefits, &j.Skills, &j.EducationLevel, &j.ExperienceYears, &j.FreshGraduate,
		&j.Headcount, &j.Status, &j.PublishedAt, &j.CreatedAt,
		&e.ID, &e.Name, &e.Industry, &e.Scale, &e.Description,
		&e.Address, &e.Logo, &e.Verified, &e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Job{}, Enterprise{}, ErrNotFound
		}
		return Job{}, Enterprise{}, fmt.Errorf("getPublishedJob: %w", err)
	}
	return j, e, nil
}
