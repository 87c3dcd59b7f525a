package portal

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// GetResumeByExternalUser looks up a resume by the external channel's user
// identifier. This is the only resume lookup the open gateway performs.
func (s *Store) GetResumeByExternalUser(ctx context.Context, externalUserID string) (Resume, error) {
	var r Resume
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, external_user_id, resume_text, name, phone, email,
		        education, experiences, projects, skills, certifications, awards,
		        created_at, updated_at
		 FROM resumes WHERE external_user_id = $1
		 ORDER BY updated_at DESC LIMIT 1`,
		externalUserID,
	).Scan(
		&r.ID, &r.UserID, &r.ExternalUserID, &r.ResumeText, &r.Name, &r.Phone, &r.Email,
		&r.Education, &r.Experiences, &r.Projects, &r.Skills, &r.Certifications, &r.Awards,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Resume{}, ErrNotFound
		}
		return Resume{}, fmt.Errorf("getResumeByExternalUser: %w", err)
	}
	return r, nil
}

// SaveConversation creates or updates a conversation record keyed by the
// external conversation id. Repeat saves update the session payload in
// place.
func (s *Store) SaveConversation(ctx context.Context, c Conversation) (Conversation, error) {
	if c.ExternalUserID == "" || c.ExternalConversationID == "" {
		return Conversation{}, &ValidationError{Msg: "userId and conversationId are required"}
	}
	if c.Status == "" {
		c.Status = "active"
	}
	if len(c.SessionData) == 0 {
		c.SessionData = []byte(`{}`)
	}

	err := s.pool.QueryRow(ctx,
		`INSERT INTO conversations (external_user_id, external_conversation_id, title, status, type, session_data)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (external_conversation_id) DO UPDATE
		 SET title = COALESCE(EXCLUDED.title, conversations.title),
		     status = EXCLUDED.status,
		     session_data = EXCLUDED.session_data,
		     updated_at = NOW()
		 RETURNING id, external_user_id, external_conversation_id, title, status, type,
		           session_data, created_at, updated_at`,
		c.ExternalUserID, c.ExternalConversationID, c.Title, c.Status, c.Type, c.SessionData,
	).Scan(
		&c.ID, &c.ExternalUserID, &c.ExternalConversationID, &c.Title, &c.Status, &c.Type,
		&c.SessionData, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return Conversation{}, fmt.Errorf("saveConversation: %w", err)
	}
	return c, nil
}

const interviewColumns = `id, external_user_id, external_interview_id, job_title,
	status, report, score, created_at, updated_at`

func scanInterview(row pgx.Row) (Interview, error) {
	var iv Interview
	err := row.Scan(
		&iv.ID, &iv.ExternalUserID, &iv.ExternalInterviewID, &iv.JobTitle,
		&iv.Status, &iv.Report, &iv.Score, &iv.CreatedAt, &iv.UpdatedAt,
	)
	return iv, err
}

// SaveInterview creates or updates an interview record keyed by the external
// interview id, conversations-style: repeat saves refresh the report in
// place.
func (s *Store) SaveInterview(ctx context.Context, iv Interview) (Interview, error) {
	if iv.ExternalUserID == "" || iv.ExternalInterviewID == "" {
		return Interview{}, &ValidationError{Msg: "userId and interviewId are required"}
	}
	if iv.Status == "" {
		iv.Status = "in_progress"
	}
	if len(iv.Report) == 0 {
		iv.Report = []byte(`{}`)
	}

	row := s.pool.QueryRow(ctx,
		`INSERT INTO interviews (external_user_id, external_interview_id, job_title, status, report, score)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (external_interview_id) DO UPDATE
		 SET job_title = COALESCE(EXCLUDED.job_title, interviews.job_title),
		     status = EXCLUDED.status,
		     report = EXCLUDED.report,
		     score = COALESCE(EXCLUDED.score, interviews.score),
		     updated_at = NOW()
		 RETURNING `+interviewColumns,
		iv.ExternalUserID, iv.ExternalInterviewID, iv.JobTitle, iv.Status, iv.Report, iv.Score,
	)
	saved, err := scanInterview(row)
	if err != nil {
		return Interview{}, fmt.Errorf("saveInterview: %w", err)
	}
	return saved, nil
}

// GetInterviewByExternal fetches one interview by the external channel's
// interview identifier.
func (s *Store) GetInterviewByExternal(ctx context.Context, externalInterviewID string) (Interview, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+interviewColumns+` FROM interviews WHERE external_interview_id = $1`,
		externalInterviewID,
	)
	iv, err := scanInterview(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Interview{}, ErrNotFound
		}
		return Interview{}, fmt.Errorf("getInterview: %w", err)
	}
	return iv, nil
}

// UpdateInterviewProgress advances an existing interview: status always
// updates, report and score only when provided.
func (s *Store) UpdateInterviewProgress(ctx context.Context, externalInterviewID, status string, report []byte, score *float64) (Interview, error) {
	if status == "" {
		return Interview{}, &ValidationError{Msg: "status is required"}
	}

	var reportArg any
	if len(report) > 0 {
		reportArg = report
	}
	row := s.pool.QueryRow(ctx,
		`UPDATE interviews
		 SET status = $1, report = COALESCE($2, report), score = COALESCE($3, score), updated_at = NOW()
		 WHERE external_interview_id = $4
		 RETURNING `+interviewColumns,
		status, reportArg, score, externalInterviewID,
	)
	iv, err := scanInterview(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Interview{}, ErrNotFound
		}
		return Interview{}, fmt.Errorf("updateInterviewProgress: %w", err)
	}
	return iv, nil
}

// ListInterviewsByExternalUser returns a user's interviews through the
// external channel, newest first, capped.
func (s *Store) ListInterviewsByExternalUser(ctx context.Context, externalUserID string, limit int) ([]Interview, error) {
	if limit < 1 || limit > 50 {
		limit = 50
	}

	rows, err := s.pool.Query(ctx,
		`SELECT `+interviewColumns+`
		 FROM interviews WHERE external_user_id = $1
		 ORDER BY updated_at DESC
		 LIMIT $2`,
		externalUserID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listInterviews query: %w", err)
	}
	defer rows.Close()

	ivs := make([]Interview, 0)
	for rows.Next() {
		iv, err := scanInterview(rows)
		if err != nil {
			return nil, fmt.Errorf("listInterviews scan: %w", err)
		}
		ivs = append(ivs, iv)
	}
	return ivs, rows.Err()
}

// ListConversationsByExternalUser returns a user's conversations through the
// external channel, newest first, capped.
func (s *Store) ListConversationsByExternalUser(ctx context.Context, externalUserID string, limit int) ([]Conversation, error) {
	if limit < 1 || limit > 50 {
		limit = 50
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, external_user_id, external_conversation_id, title, status, type,
		        session_data, created_at, updated_at
		 FROM conversations WHERE external_user_id = $1
		 ORDER BY updated_at DESC
		 LIMIT $2`,
		externalUserID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listConversations query: %w", err)
	}
	defer rows.Close()

	convs := make([]Conversation, 0)
	for rows.Next() {
		var c Conversation
		if err := rows.Scan(
			&c.ID, &c.ExternalUserID, &c.ExternalConversationID, &c.Title, &c.Status, &c.Type,
			&c.SessionData, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("listConversations scan: %w", err)
		}
		convs = append(convs, c)
	}
	return convs, nil
}
