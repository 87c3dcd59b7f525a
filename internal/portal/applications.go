package portal

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"talentbridge/portal-service/internal/identity"
)

const applicationColumns = `a.id, a.user_id, a.job_id, j.title, a.resume_id, a.status,
	a.match_score, a.notes, a.created_at, a.updated_at`

func scanApplication(row pgx.Row) (Application, error) {
	var a Application
	err := row.Scan(
		&a.ID, &a.UserID, &a.JobID, &a.JobTitle, &a.ResumeID, &a.Status,
		&a.MatchScore, &a.Notes, &a.CreatedAt, &a.UpdatedAt,
	)
	return a, err
}

// ListApplications returns submissions visible to the caller, newest first.
// The scoping predicate comes from the claim set: an enterprise sees
// submissions to its own jobs, a student sees their own submissions, and an
// admin may pass explicit filter fields to read on behalf of a tenant. Any
// other role is refused.
func (s *Store) ListApplications(ctx context.Context, claims identity.SessionClaims, filter ApplicationFilter, page Page) ([]Application, int, error) {
	switch {
	case claims.Role.Equal(identity.RoleEnterprise):
		if claims.EnterpriseID == "" {
			return nil, 0, ErrForbidden
		}
		filter.EnterpriseID = claims.EnterpriseID
		filter.UserID = ""
	case claims.Role.Equal(identity.RoleStudent):
		filter.UserID = claims.Subject
		filter.EnterpriseID = ""
	case claims.Role.Equal(identity.RoleAdmin):
		// explicit filters pass through
	default:
		return nil, 0, ErrForbidden
	}

	page = page.Normalize(100)

	where := []string{`1=1`}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.EnterpriseID != "" {
		where = append(where, `j.enterprise_id = `+arg(filter.EnterpriseID))
	}
	if filter.UserID != "" {
		where = append(where, `a.user_id = `+arg(filter.UserID))
	}
	if filter.JobID != "" {
		where = append(where, `a.job_id = `+arg(filter.JobID))
	}
	if filter.Status != "" {
		where = append(where, `a.status = `+arg(string(filter.Status)))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM applications a JOIN jobs j ON j.id = a.job_id WHERE `+cond,
		args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("listApplications count: %w", err)
	}

	args = append(args, page.Size, page.Offset())
	rows, err := s.pool.Query(ctx,
		`SELECT `+applicationColumns+`
		 FROM applications a JOIN jobs j ON j.id = a.job_id
		 WHERE `+cond+`
		 ORDER BY a.updated_at DESC
		 LIMIT $`+fmt.Sprint(len(args)-1)+` OFFSET $`+fmt.Sprint(len(args)),
		args...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("listApplications query: %w", err)
	}
	defer rows.Close()

	apps := make([]Application, 0)
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("listApplications scan: %w", err)
		}
		apps = append(apps, a)
	}
	return apps, total, nil
}

// CreateApplication records a student's submission to a published job. The
// subject id always comes from the claim set. A second submission for the
// same (user, job) pair yields ErrConflict — enforced by the unique index,
// not just the pre-check.
func (s *Store) CreateApplication(ctx context.Context, claims identity.SessionClaims, jobID string, resumeID *string) (Application, error) {
	if !claims.Role.Equal(identity.RoleStudent) {
		return Application{}, ErrForbidden
	}
	if jobID == "" {
		return Application{}, &ValidationError{Msg: "jobId is required"}
	}

	var published bool
	err := s.pool.QueryRow(ctx,
		`SELECT status = 'PUBLISHED' FROM jobs WHERE id = $1`, jobID,
	).Scan(&published)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Application{}, ErrNotFound
		}
		return Application{}, fmt.Errorf("createApplication job lookup: %w", err)
	}
	if !published {
		return Application{}, ErrNotFound
	}

	row := s.pool.QueryRow(ctx,
		`WITH ins AS (
		   INSERT INTO applications (user_id, job_id, resume_id, status)
		   VALUES ($1, $2, $3, 'PENDING')
		   RETURNING *
		 )
		 SELECT ins.id, ins.user_id, ins.job_id, j.title, ins.resume_id, ins.status,
		        ins.match_score, ins.notes, ins.created_at, ins.updated_at
		 FROM ins JOIN jobs j ON j.id = ins.job_id`,
		claims.Subject, jobID, resumeID,
	)
	app, err := scanApplication(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return Application{}, ErrConflict
		}
		return Application{}, fmt.Errorf("createApplication: %w", err)
	}
	return app, nil
}

// UpdateApplicationStatus applies a single employer-side transition. The
// ownership check and the mutation share one transaction, so a concurrent
// owner change cannot slip between them. A record owned by a foreign tenant
// reads as absent.
func (s *Store) UpdateApplicationStatus(ctx context.Context, claims identity.SessionClaims, appID string, target Status, notes *string) (Application, error) {
	if !claims.Role.Equal(identity.RoleEnterprise) || claims.EnterpriseID == "" {
		return Application{}, ErrForbidden
	}
	if _, err := ParseStatus(string(target)); err != nil {
		return Application{}, &ValidationError{Msg: err.Error()}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Application{}, fmt.Errorf("updateStatus begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var current Status
	err = tx.QueryRow(ctx,
		`SELECT a.status
		 FROM applications a JOIN jobs j ON j.id = a.job_id
		 WHERE a.id = $1 AND j.enterprise_id = $2
		 FOR UPDATE OF a`,
		appID, claims.EnterpriseID,
	).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Application{}, ErrNotFound
		}
		return Application{}, fmt.Errorf("updateStatus lookup: %w", err)
	}

	if !IsTransitionAllowed(current, target) {
		return Application{}, fmt.Errorf("%w: %s → %s", ErrInvalidTransition, current, target)
	}

	row := tx.QueryRow(ctx,
		`WITH upd AS (
		   UPDATE applications
		   SET status = $1, notes = COALESCE($2, notes), updated_at = NOW()
		   WHERE id = $3
		   RETURNING *
		 )
		 SELECT upd.id, upd.user_id, upd.job_id, j.title, upd.resume_id, upd.status,
		        upd.match_score, upd.notes, upd.created_at, upd.updated_at
		 FROM upd JOIN jobs j ON j.id = upd.job_id`,
		string(target), notes, appID,
	)
	app, err := scanApplication(row)
	if err != nil {
		return Application{}, fmt.Errorf("updateStatus update: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Application{}, fmt.Errorf("updateStatus commit: %w", err)
	}

	s.publishStatusEvent(ctx, appID, current, target)
	return app, nil
}

// WithdrawApplication moves the caller's own submission to WITHDRAWN. Only
// the owning student may withdraw, from any non-terminal state.
func (s *Store) WithdrawApplication(ctx context.Context, claims identity.SessionClaims, appID string) (Application, error) {
	if !claims.Role.Equal(identity.RoleStudent) {
		return Application{}, ErrForbidden
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Application{}, fmt.Errorf("withdraw begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var current Status
	err = tx.QueryRow(ctx,
		`SELECT status FROM applications WHERE id = $1 AND user_id = $2 FOR UPDATE`,
		appID, claims.Subject,
	).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Application{}, ErrNotFound
		}
		return Application{}, fmt.Errorf("withdraw lookup: %w", err)
	}

	if !CanWithdraw(current) {
		return Application{}, fmt.Errorf("%w: %s → %s", ErrInvalidTransition, current, StatusWithdrawn)
	}

	row := tx.QueryRow(ctx,
		`WITH upd AS (
		   UPDATE applications SET status = 'WITHDRAWN', updated_at = NOW()
		   WHERE id = $1
		   RETURNING *
		 )
		 SELECT upd.id, upd.user_id, upd.job_id, j.title, upd.resume_id, upd.status,
		        upd.match_score, upd.notes, upd.created_at, upd.updated_at
		 FROM upd JOIN jobs j ON j.id = upd.job_id`,
		appID,
	)
	app, err := scanApplication(row)
	if err != nil {
		return Application{}, fmt.Errorf("withdraw update: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Application{}, fmt.Errorf("withdraw commit: %w", err)
	}

	s.publishStatusEvent(ctx, appID, current, StatusWithdrawn)
	return app, nil
}

// BatchUpdateStatus applies one transition to a set of submissions
// atomically. Every target row is locked and ownership-checked inside the
// transaction; if any id is missing or belongs to a foreign tenant the whole
// batch aborts with ErrForbidden and nothing is committed. Partial
// application is disallowed: under a security failure the client could not
// tell which items went through.
func (s *Store) BatchUpdateStatus(ctx context.Context, claims identity.SessionClaims, ids []string, target Status, notes *string) (int, error) {
	if !claims.Role.Equal(identity.RoleEnterprise) || claims.EnterpriseID == "" {
		return 0, ErrForbidden
	}
	if len(ids) == 0 {
		return 0, &ValidationError{Msg: "ids must not be empty"}
	}
	if len(ids) > 100 {
		return 0, &ValidationError{Msg: "at most 100 records per batch"}
	}
	if _, err := ParseStatus(string(target)); err != nil {
		return 0, &ValidationError{Msg: err.Error()}
	}

	// Repeated ids collapse to one row; without this the ownership count
	// below would reject a fully-owned batch.
	seen := make(map[string]struct{}, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	ids = unique

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("batchUpdate begin: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx,
		`SELECT a.id, a.status
		 FROM applications a JOIN jobs j ON j.id = a.job_id
		 WHERE a.id = ANY($1) AND j.enterprise_id = $2
		 FOR UPDATE OF a`,
		ids, claims.EnterpriseID,
	)
	if err != nil {
		return 0, fmt.Errorf("batchUpdate lock: %w", err)
	}

	current := make(map[string]Status, len(ids))
	for rows.Next() {
		var (
			id string
			st Status
		)
		if err := rows.Scan(&id, &st); err != nil {
			rows.Close()
			return 0, fmt.Errorf("batchUpdate scan: %w", err)
		}
		current[id] = st
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("batchUpdate rows: %w", err)
	}

	// Any id not owned by the caller is indistinguishable from absent here,
	// and either condition fails the whole batch.
	if len(current) != len(ids) {
		return 0, ErrForbidden
	}

	from := make(map[string]Status, len(ids))
	for id, st := range current {
		if !IsTransitionAllowed(st, target) {
			return 0, fmt.Errorf("%w: %s → %s", ErrInvalidTransition, st, target)
		}
		from[id] = st
	}

	tag, err := tx.Exec(ctx,
		`UPDATE applications
		 SET status = $1, notes = COALESCE($2, notes), updated_at = NOW()
		 WHERE id = ANY($3)`,
		string(target), notes, ids,
	)
	if err != nil {
		return 0, fmt.Errorf("batchUpdate update: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("batchUpdate commit: %w", err)
	}

	for id, st := range from {
		s.publishStatusEvent(ctx, id, st, target)
	}
	return int(tag.RowsAffected()), nil
}
