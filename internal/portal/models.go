package portal

import (
	"encoding/json"
	"time"
)

// JobStatus values mirror the job_status enum in PostgreSQL.
type JobStatus string

const (
	JobDraft     JobStatus = "DRAFT"
	JobPublished JobStatus = "PUBLISHED"
	JobClosed    JobStatus = "CLOSED"
	JobArchived  JobStatus = "ARCHIVED"
)

// Job is an enterprise-owned posting. EnterpriseID is the owning reference
// and is immutable after creation.
type Job struct {
	ID              string     `json:"id"`
	EnterpriseID    string     `json:"enterpriseId"`
	EnterpriseName  string     `json:"enterpriseName,omitempty"`
	Title           string     `json:"title"`
	Industry        string     `json:"industry"`
	Category        string     `json:"category"`
	SalaryMin       int        `json:"salaryMin"`
	SalaryMax       int        `json:"salaryMax"`
	Location        string     `json:"location"`
	Address         string     `json:"address"`
	Description     string     `json:"description"`
	Requirements    string     `json:"requirements"`
	Benefits        string     `json:"benefits"`
	Skills          []string   `json:"skills"`
	EducationLevel  string     `json:"educationLevel"`
	ExperienceYears int        `json:"experienceYears"`
	FreshGraduate   bool       `json:"freshGraduate"`
	Headcount       int        `json:"headcount"`
	Status          JobStatus  `json:"status"`
	PublishedAt     *time.Time `json:"publishedAt"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// Application is the one stateful entity: a student's submission to a job.
// At most one row exists per (UserID, JobID) pair.
type Application struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	JobID     string    `json:"jobId"`
	JobTitle  string    `json:"jobTitle,omitempty"`
	ResumeID  *string   `json:"resumeId"`
	Status    Status    `json:"status"`
	MatchScore *float64 `json:"matchScore"`
	Notes     *string   `json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Enterprise is a tenant organization on the employer side.
type Enterprise struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Industry    string    `json:"industry"`
	Scale       string    `json:"scale"`
	Description string    `json:"description"`
	Address     string    `json:"address"`
	Logo        string    `json:"logo"`
	Verified    bool      `json:"verified"`
	CreatedAt   time.Time `json:"createdAt"`
}

// School is a tenant organization on the institution side.
type School struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"createdAt"`
}

// PolicyType values mirror the policy_type enum in PostgreSQL.
type PolicyType string

// Policy is government-authored and globally visible once published.
type Policy struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Type        PolicyType `json:"type"`
	Content     string     `json:"content"`
	Published   bool       `json:"published"`
	PublishedAt *time.Time `json:"publishedAt"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// JobPushRecord tracks a school pushing a published job to its students.
type JobPushRecord struct {
	ID           string    `json:"id"`
	JobID        string    `json:"jobId"`
	SchoolID     string    `json:"schoolId"`
	TargetMajors []string  `json:"targetMajors"`
	PushCount    int       `json:"pushCount"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Resume holds a student's parsed resume. ExternalUserID links it to the
// external integration channel's user identifier.
type Resume struct {
	ID             string          `json:"id"`
	UserID         *string         `json:"userId"`
	ExternalUserID *string         `json:"externalUserId"`
	ResumeText     string          `json:"resumeText"`
	Name           *string         `json:"name"`
	Phone          *string         `json:"phone"`
	Email          *string         `json:"email"`
	Education      json.RawMessage `json:"education"`
	Experiences    json.RawMessage `json:"experiences"`
	Projects       json.RawMessage `json:"projects"`
	Skills         json.RawMessage `json:"skills"`
	Certifications json.RawMessage `json:"certifications"`
	Awards         json.RawMessage `json:"awards"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// Conversation is a record of an external-channel session, keyed by the
// external user identifier rather than any portal account.
type Conversation struct {
	ID                     string          `json:"id"`
	ExternalUserID         string          `json:"externalUserId"`
	ExternalConversationID string          `json:"externalConversationId"`
	Title                  *string         `json:"title"`
	Status                 string          `json:"status"`
	Type                   *string         `json:"type"`
	SessionData            json.RawMessage `json:"sessionData"`
	CreatedAt              time.Time       `json:"createdAt"`
	UpdatedAt              time.Time       `json:"updatedAt"`
}

// Interview is an external-channel interview session and its report, keyed
// like conversations by the channel's own identifiers rather than any portal
// account.
type Interview struct {
	ID                  string          `json:"id"`
	ExternalUserID      string          `json:"externalUserId"`
	ExternalInterviewID string          `json:"externalInterviewId"`
	JobTitle            *string         `json:"jobTitle"`
	Status              string          `json:"status"`
	Report              json.RawMessage `json:"report"`
	Score               *float64        `json:"score"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`
}

// Page is the caller-requested slice of a listing.
type Page struct {
	Number int
	Size   int
}

// Normalize clamps a page request to sane bounds.
func (p Page) Normalize(maxSize int) Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = 10
	}
	if p.Size > maxSize {
		p.Size = maxSize
	}
	return p
}

// Offset returns the SQL offset for the page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// PageMeta is the pagination block echoed back in list envelopes.
type PageMeta struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// NewPageMeta derives the response metadata for a page and total row count.
func NewPageMeta(p Page, total int) PageMeta {
	pages := 0
	if p.Size > 0 {
		pages = (total + p.Size - 1) / p.Size
	}
	return PageMeta{Page: p.Number, PageSize: p.Size, Total: total, TotalPages: pages}
}

// ApplicationFilter narrows application listings. Tenant fields here only
// locate records; authorization always comes from the session claims.
type ApplicationFilter struct {
	Status       Status
	EnterpriseID string
	UserID       string
	JobID        string
}

// JobFilter narrows job listings.
type JobFilter struct {
	Industry string
	Location string
	Keyword  string
	Status   JobStatus
}
