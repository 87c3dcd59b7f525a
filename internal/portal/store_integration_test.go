package portal_test

// Database-backed tests. They run against a real PostgreSQL pointed to by
// TEST_DATABASE_URL and are skipped when it is unset, so the default test run
// stays hermetic. The schema is bootstrapped and every table is emptied
// before each test.

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talentbridge/portal-service/internal/identity"
	"talentbridge/portal-service/internal/portal"
)

func newDBStore(t *testing.T) *portal.Store {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, portal.Bootstrap(ctx, pool))

	// Child tables first, so foreign keys never block the wipe.
	for _, table := range []string{
		"applications", "job_push_records", "interviews", "conversations",
		"resumes", "jobs", "users", "policies", "schools", "enterprises",
	} {
		_, err := pool.Exec(ctx, `DELETE FROM `+table)
		require.NoError(t, err)
	}

	return portal.NewStore(pool, nil)
}

func seedEnterprise(t *testing.T, store *portal.Store, name string) string {
	t.Helper()
	var id string
	err := store.Pool().QueryRow(context.Background(),
		`INSERT INTO enterprises (name) VALUES ($1) RETURNING id`, name,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

func seedStudent(t *testing.T, store *portal.Store, email string) identity.SessionClaims {
	t.Helper()
	acct, err := store.CreateAccount(context.Background(), identity.Account{
		Email: email, Name: "Student", PasswordHash: "x", Role: identity.RoleStudent,
	})
	require.NoError(t, err)
	return identity.SessionClaims{Subject: acct.ID, Email: email, Role: identity.RoleStudent}
}

func seedPublishedJob(t *testing.T, store *portal.Store, enterpriseID, title string) portal.Job {
	t.Helper()
	ctx := context.Background()

	admin := identity.SessionClaims{Subject: "seed-admin", Role: identity.RoleAdmin}
	job, err := store.CreateJob(ctx, admin, portal.Job{
		EnterpriseID: enterpriseID, Title: title, Headcount: 1,
	})
	require.NoError(t, err)

	owner := identity.SessionClaims{Subject: "seed-owner", Role: identity.RoleEnterprise, EnterpriseID: enterpriseID}
	job, err = store.PublishJob(ctx, owner, job.ID)
	require.NoError(t, err)
	return job
}

func applicationStatus(t *testing.T, store *portal.Store, appID string) portal.Status {
	t.Helper()
	var status portal.Status
	err := store.Pool().QueryRow(context.Background(),
		`SELECT status FROM applications WHERE id = $1`, appID,
	).Scan(&status)
	require.NoError(t, err)
	return status
}

// ── Duplicate submissions ──────────────────────────────────────────────────

func TestDBCreateApplication_DuplicateYieldsConflict(t *testing.T) {
	store := newDBStore(t)
	ctx := context.Background()

	ent := seedEnterprise(t, store, "Acme")
	job := seedPublishedJob(t, store, ent, "Backend Engineer")
	student := seedStudent(t, store, "dup@example.com")

	_, err := store.CreateApplication(ctx, student, job.ID, nil)
	require.NoError(t, err)

	_, err = store.CreateApplication(ctx, student, job.ID, nil)
	assert.ErrorIs(t, err, portal.ErrConflict, "the unique index rejects the second submission")
}

// ── Batch atomicity ────────────────────────────────────────────────────────

func TestDBBatchUpdateStatus_ForeignIDLeavesEveryRowUntouched(t *testing.T) {
	store := newDBStore(t)
	ctx := context.Background()

	entA := seedEnterprise(t, store, "Acme")
	entB := seedEnterprise(t, store, "Umbrella")
	jobA := seedPublishedJob(t, store, entA, "Backend Engineer")
	jobB := seedPublishedJob(t, store, entB, "Data Analyst")
	student := seedStudent(t, store, "batch@example.com")

	appA, err := store.CreateApplication(ctx, student, jobA.ID, nil)
	require.NoError(t, err)
	appB, err := store.CreateApplication(ctx, student, jobB.ID, nil)
	require.NoError(t, err)

	ownerA := identity.SessionClaims{Subject: "hr-a", Role: identity.RoleEnterprise, EnterpriseID: entA}
	n, err := store.BatchUpdateStatus(ctx, ownerA, []string{appA.ID, appB.ID}, portal.StatusViewed, nil)
	assert.ErrorIs(t, err, portal.ErrForbidden)
	assert.Zero(t, n)

	assert.Equal(t, portal.StatusPending, applicationStatus(t, store, appA.ID), "the owned row must not move either")
	assert.Equal(t, portal.StatusPending, applicationStatus(t, store, appB.ID))
}

func TestDBBatchUpdateStatus_RepeatedOwnedIDSucceeds(t *testing.T) {
	store := newDBStore(t)
	ctx := context.Background()

	ent := seedEnterprise(t, store, "Acme")
	job := seedPublishedJob(t, store, ent, "Backend Engineer")
	student := seedStudent(t, store, "repeat@example.com")

	app, err := store.CreateApplication(ctx, student, job.ID, nil)
	require.NoError(t, err)

	owner := identity.SessionClaims{Subject: "hr", Role: identity.RoleEnterprise, EnterpriseID: ent}
	n, err := store.BatchUpdateStatus(ctx, owner, []string{app.ID, app.ID}, portal.StatusViewed, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, portal.StatusViewed, applicationStatus(t, store, app.ID))
}

// ── Tenant isolation ───────────────────────────────────────────────────────

func TestDBListApplications_EnterpriseSeesOnlyItsOwnJobs(t *testing.T) {
	store := newDBStore(t)
	ctx := context.Background()

	entA := seedEnterprise(t, store, "Acme")
	entB := seedEnterprise(t, store, "Umbrella")
	jobA := seedPublishedJob(t, store, entA, "Backend Engineer")
	jobB := seedPublishedJob(t, store, entB, "Data Analyst")
	student := seedStudent(t, store, "isolated@example.com")

	appA, err := store.CreateApplication(ctx, student, jobA.ID, nil)
	require.NoError(t, err)
	_, err = store.CreateApplication(ctx, student, jobB.ID, nil)
	require.NoError(t, err)

	ownerA := identity.SessionClaims{Subject: "hr-a", Role: identity.RoleEnterprise, EnterpriseID: entA}
	apps, total, err := store.ListApplications(ctx, ownerA, portal.ApplicationFilter{}, portal.Page{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, apps, 1)
	assert.Equal(t, appA.ID, apps[0].ID)

	// A filter naming the other tenant cannot widen the view: the claim set
	// overwrites it.
	apps, _, err = store.ListApplications(ctx, ownerA, portal.ApplicationFilter{EnterpriseID: entB}, portal.Page{})
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, appA.ID, apps[0].ID)
}
