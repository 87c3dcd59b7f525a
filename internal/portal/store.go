// Package portal is the ownership-scoped query layer: every read or write of
// a tenant-owned record threads the caller's session-derived tenant
// identifiers into the query predicate. Identifiers arriving in request
// bodies or query strings only locate data; the claim set authorizes it.
package portal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"talentbridge/portal-service/internal/identity"
)

const uniqueViolation = "23505"

// Store encapsulates all scoped persistence operations. It is
// transport-agnostic: used by the HTTP handlers and by the stats engine's
// access checks.
type Store struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
}

// NewStore returns a configured Store.
func NewStore(pool *pgxpool.Pool, rdb *redis.Client) *Store {
	return &Store{pool: pool, rdb: rdb}
}

// Pool exposes the underlying pool for read-only collaborators (stats).
func (s *Store) Pool() *pgxpool.Pool { return s.pool }

// FindAccountByEmail looks up a stored account for the identity issuer.
func (s *Store) FindAccountByEmail(ctx context.Context, email string) (identity.Account, error) {
	var (
		a     identity.Account
		role  string
		entID *string
		schID *string
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, name, password_hash, role, status, enterprise_id, school_id
		 FROM users WHERE email = $1`,
		email,
	).Scan(&a.ID, &a.Email, &a.Name, &a.PasswordHash, &role, &a.Status, &entID, &schID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return identity.Account{}, ErrNotFound
		}
		return identity.Account{}, fmt.Errorf("findAccountByEmail: %w", err)
	}

	parsed, err := identity.ParseRole(role)
	if err != nil {
		return identity.Account{}, fmt.Errorf("findAccountByEmail: %w", err)
	}
	a.Role = parsed
	if entID != nil {
		a.EnterpriseID = *entID
	}
	if schID != nil {
		a.SchoolID = *schID
	}
	return a, nil
}

// CreateAccount registers a new user. A duplicate email yields ErrConflict.
func (s *Store) CreateAccount(ctx context.Context, a identity.Account) (identity.Account, error) {
	var entID, schID *string
	if a.EnterpriseID != "" {
		entID = &a.EnterpriseID
	}
	if a.SchoolID != "" {
		schID = &a.SchoolID
	}

	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (email, name, password_hash, role, status, enterprise_id, school_id)
		 VALUES ($1, $2, $3, $4, 'ACTIVE', $5, $6)
		 RETURNING id`,
		a.Email, a.Name, a.PasswordHash, string(a.Role), entID, schID,
	).Scan(&a.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return identity.Account{}, ErrConflict
		}
		return identity.Account{}, fmt.Errorf("createAccount: %w", err)
	}
	a.Status = "ACTIVE"
	return a, nil
}

// publishStatusEvent notifies subscribers of a completed transition.
// Non-fatal: a broker hiccup must not fail a committed update.
func (s *Store) publishStatusEvent(ctx context.Context, appID string, from, to Status) {
	if s.rdb == nil {
		return
	}
	event, _ := json.Marshal(map[string]string{
		"type":          "EVENT_APPLICATION_STATUS",
		"applicationId": appID,
		"from":          string(from),
		"to":            string(to),
	})
	if err := s.rdb.Publish(ctx, "EVENT_APPLICATION_STATUS", event).Err(); err != nil {
		slog.Warn("publish EVENT_APPLICATION_STATUS failed", "applicationId", appID, "err", err)
	}
}
