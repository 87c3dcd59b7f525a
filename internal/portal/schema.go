package portal

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schemaStatements bootstrap the relational schema on startup. The unique
// index on applications (user_id, job_id) is the enforced guarantee behind
// the duplicate-submission guard — the application-level pre-check alone
// would leave a race window between concurrent submissions.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS enterprises (
		id TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
		name TEXT NOT NULL,
		industry TEXT NOT NULL DEFAULT '',
		scale TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		logo TEXT NOT NULL DEFAULT '',
		verified BOOLEAN NOT NULL DEFAULT false,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS schools (
		id TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
		name TEXT NOT NULL,
		location TEXT NOT NULL DEFAULT '',
		verified BOOLEAN NOT NULL DEFAULT false,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
		email TEXT UNIQUE NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'ACTIVE',
		enterprise_id TEXT REFERENCES enterprises(id),
		school_id TEXT REFERENCES schools(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS jobs (
		id TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
		enterprise_id TEXT NOT NULL REFERENCES enterprises(id),
		title TEXT NOT NULL,
		industry TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		salary_min INTEGER NOT NULL DEFAULT 0,
		salary_max INTEGER NOT NULL DEFAULT 0,
		location TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		requirements TEXT NOT NULL DEFAULT '',
		benefits TEXT NOT NULL DEFAULT '',
		skills TEXT[] NOT NULL DEFAULT '{}',
		education_level TEXT NOT NULL DEFAULT '',
		experience_years INTEGER NOT NULL DEFAULT 0,
		fresh_graduate BOOLEAN NOT NULL DEFAULT false,
		headcount INTEGER NOT NULL DEFAULT 1,
		status TEXT NOT NULL DEFAULT 'DRAFT',
		published_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS resumes (
		id TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
		user_id TEXT REFERENCES users(id),
		external_user_id TEXT,
		resume_text TEXT NOT NULL DEFAULT '',
		name TEXT,
		phone TEXT,
		email TEXT,
		education JSONB NOT NULL DEFAULT '[]',
		experiences JSONB NOT NULL DEFAULT '[]',
		projects JSONB NOT NULL DEFAULT '[]',
		skills JSONB NOT NULL DEFAULT '[]',
		certifications JSONB NOT NULL DEFAULT '[]',
		awards JSONB NOT NULL DEFAULT '[]',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS resumes_external_user_idx ON resumes (external_user_id);`,
	`CREATE TABLE IF NOT EXISTS applications (
		id TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
		user_id TEXT NOT NULL REFERENCES users(id),
		job_id TEXT NOT NULL REFERENCES jobs(id),
		resume_id TEXT REFERENCES resumes(id),
		status TEXT NOT NULL DEFAULT 'PENDING',
		match_score DOUBLE PRECISION,
		notes TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS applications_user_job_unique_idx ON applications (user_id, job_id);`,
	`CREATE TABLE IF NOT EXISTS policies (
		id TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
		title TEXT NOT NULL,
		type TEXT NOT NULL DEFAULT 'OTHER',
		content TEXT NOT NULL DEFAULT '',
		published BOOLEAN NOT NULL DEFAULT false,
		published_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS job_push_records (
		id TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
		job_id TEXT NOT NULL REFERENCES jobs(id),
		school_id TEXT NOT NULL REFERENCES schools(id),
		target_majors TEXT[] NOT NULL DEFAULT '{}',
		push_count INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS conversations (
		id TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
		external_user_id TEXT NOT NULL,
		external_conversation_id TEXT UNIQUE NOT NULL,
		title TEXT,
		status TEXT NOT NULL DEFAULT 'active',
		type TEXT,
		session_data JSONB NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS conversations_external_user_idx ON conversations (external_user_id);`,
	`CREATE TABLE IF NOT EXISTS interviews (
		id TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
		external_user_id TEXT NOT NULL,
		external_interview_id TEXT UNIQUE NOT NULL,
		job_title TEXT,
		status TEXT NOT NULL DEFAULT 'in_progress',
		report JSONB NOT NULL DEFAULT '{}',
		score DOUBLE PRECISION,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS interviews_external_user_idx ON interviews (external_user_id);`,
}

// Bootstrap applies the schema statements.
func Bootstrap(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
