package portal

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"talentbridge/portal-service/internal/identity"
)

// CreatePolicy stores a government-authored policy as a draft.
func (s *Store) CreatePolicy(ctx context.Context, claims identity.SessionClaims, p Policy) (Policy, error) {
	if !claims.Role.Equal(identity.RoleGovernment) && !claims.Role.Equal(identity.RoleAdmin) {
		return Policy{}, ErrForbidden
	}
	if strings.TrimSpace(p.Title) == "" {
		return Policy{}, &ValidationError{Msg: "title is required"}
	}
	if p.Type == "" {
		p.Type = "OTHER"
	}

	err := s.pool.QueryRow(ctx,
		`INSERT INTO policies (title, type, content)
		 VALUES ($1, $2, $3)
		 RETURNING id, title, type, content, published, published_at, created_at`,
		p.Title, string(p.Type), p.Content,
	).Scan(&p.ID, &p.Title, &p.Type, &p.Content, &p.Published, &p.PublishedAt, &p.CreatedAt)
	if err != nil {
		return Policy{}, fmt.Errorf("createPolicy: %w", err)
	}
	return p, nil
}

// PublishPolicy makes a policy globally visible.
func (s *Store) PublishPolicy(ctx context.Context, claims identity.SessionClaims, id string) (Policy, error) {
	if !claims.Role.Equal(identity.RoleGovernment) && !claims.Role.Equal(identity.RoleAdmin) {
		return Policy{}, ErrForbidden
	}

	var p Policy
	err := s.pool.QueryRow(ctx,
		`UPDATE policies SET published = true, published_at = NOW()
		 WHERE id = $1
		 RETURNING id, title, type, content, published, published_at, created_at`,
		id,
	).Scan(&p.ID, &p.Title, &p.Type, &p.Content, &p.Published, &p.PublishedAt, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Policy{}, ErrNotFound
		}
		return Policy{}, fmt.Errorf("publishPolicy: %w", err)
	}
	return p, nil
}

// ListPublishedPolicies returns globally visible policies, newest first.
// Reachable without a session and through the open gateway.
func (s *Store) ListPublishedPolicies(ctx context.Context, page Page) ([]Policy, int, error) {
	page = page.Normalize(50)

	var total int
	if err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM policies WHERE published`,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("listPublishedPolicies count: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, title, type, content, published, published_at, created_at
		 FROM policies WHERE published
		 ORDER BY published_at DESC
		 LIMIT $1 OFFSET $2`,
		page.Size, page.Offset(),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("listPublishedPolicies query: %w", err)
	}
	defer rows.Close()

	policies := make([]Policy, 0)
	for rows.Next() {
		var p Policy
		if err := rows.Scan(&p.ID, &p.Title, &p.Type, &p.Content, &p.Published, &p.PublishedAt, &p.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("listPublishedPolicies scan: %w", err)
		}
		policies = append(policies, p)
	}
	return policies, total, nil
}

// CreateJobPushRecord records a school pushing a published job to its
// students. A SCHOOL caller always pushes for its own school; ADMIN may name
// any school. Job and school must both exist.
func (s *Store) CreateJobPushRecord(ctx context.Context, claims identity.SessionClaims, jobID, schoolID string, targetMajors []string) (JobPushRecord, error) {
	switch {
	case claims.Role.Equal(identity.RoleSchool):
		if claims.SchoolID == "" {
			return JobPushRecord{}, ErrForbidden
		}
		schoolID = claims.SchoolID
	case claims.Role.Equal(identity.RoleAdmin):
		// explicit schoolID passes through
	default:
		return JobPushRecord{}, ErrForbidden
	}
	if jobID == "" || schoolID == "" {
		return JobPushRecord{}, &ValidationError{Msg: "jobId and schoolId are required"}
	}
	if targetMajors == nil {
		targetMajors = []string{}
	}

	var exists bool
	if err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM jobs WHERE id = $1 AND status = 'PUBLISHED')`, jobID,
	).Scan(&exists); err != nil {
		return JobPushRecord{}, fmt.Errorf("createJobPush job lookup: %w", err)
	}
	if !exists {
		return JobPushRecord{}, ErrNotFound
	}
	if err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM schools WHERE id = $1)`, schoolID,
	).Scan(&exists); err != nil {
		return JobPushRecord{}, fmt.Errorf("createJobPush school lookup: %w", err)
	}
	if !exists {
		return JobPushRecord{}, ErrNotFound
	}

	var rec JobPushRecord
	err := s.pool.QueryRow(ctx,
		`INSERT INTO job_push_records (job_id, school_id, target_majors)
		 VALUES ($1, $2, $3)
		 RETURNING id, job_id, school_id, target_majors, push_count, created_at`,
		jobID, schoolID, targetMajors,
	).Scan(&rec.ID, &rec.JobID, &rec.SchoolID, &rec.TargetMajors, &rec.PushCount, &rec.CreatedAt)
	if err != nil {
		return JobPushRecord{}, fmt.Errorf("createJobPush: %w", err)
	}
	return rec, nil
}

// ListJobPushRecords returns push records scoped to the caller's school.
// ADMIN may pass targetSchoolID; empty means all schools.
func (s *Store) ListJobPushRecords(ctx context.Context, claims identity.SessionClaims, targetSchoolID string, page Page) ([]JobPushRecord, int, error) {
	schoolID := ""
	switch {
	case claims.Role.Equal(identity.RoleSchool):
		if claims.SchoolID == "" {
			return nil, 0, ErrForbidden
		}
		schoolID = claims.SchoolID
	case claims.Role.Equal(identity.RoleAdmin):
		schoolID = targetSchoolID
	default:
		return nil, 0, ErrForbidden
	}

	page = page.Normalize(100)

	cond := `1=1`
	args := []any{}
	if schoolID != "" {
		args = append(args, schoolID)
		cond = `school_id = $1`
	}

	var total int
	if err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM job_push_records WHERE `+cond, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("listJobPush count: %w", err)
	}

	args = append(args, page.Size, page.Offset())
	rows, err := s.pool.Query(ctx,
		`SELECT id, job_id, school_id, target_majors, push_count, created_at
		 FROM job_push_records WHERE `+cond+`
		 ORDER BY created_at DESC
		 LIMIT $`+fmt.Sprint(len(args)-1)+` OFFSET $`+fmt.Sprint(len(args)),
		args...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("listJobPush query: %w", err)
	}
	defer rows.Close()

	records := make([]JobPushRecord, 0)
	for rows.Next() {
		var rec JobPushRecord
		if err := rows.Scan(&rec.ID, &rec.JobID, &rec.SchoolID, &rec.TargetMajors, &rec.PushCount, &rec.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("listJobPush scan: %w", err)
		}
		records = append(records, rec)
	}
	return records, total, nil
}
