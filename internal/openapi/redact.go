package openapi

import (
	"encoding/json"
	"time"

	"talentbridge/portal-service/internal/portal"
)

// The external channel sees allow-list projections, never raw rows. Anything
// not copied here is withheld: internal tenant identifiers, draft content,
// salary negotiation notes.

// EnterpriseView is the public face of an employer: display fields only,
// never the internal enterprise id.
type EnterpriseView struct {
	Name     string `json:"name"`
	Industry string `json:"industry"`
	Scale    string `json:"scale,omitempty"`
	Logo     string `json:"logo,omitempty"`
}

// JobView is the public projection of a published job. The description field
// is exposed under the channel's "responsibilities" name.
type JobView struct {
	ID               string          `json:"id"`
	Title            string          `json:"title"`
	Industry         string          `json:"industry"`
	Category         string          `json:"category"`
	SalaryMin        int             `json:"salaryMin"`
	SalaryMax        int             `json:"salaryMax"`
	Location         string          `json:"location"`
	Responsibilities string          `json:"responsibilities"`
	Requirements     string          `json:"requirements"`
	Benefits         string          `json:"benefits"`
	Skills           []string        `json:"skills"`
	EducationLevel   string          `json:"educationLevel"`
	ExperienceYears  int             `json:"experienceYears"`
	FreshGraduate    bool            `json:"freshGraduate"`
	Enterprise       *EnterpriseView `json:"enterprise,omitempty"`
	PublishedAt      *time.Time      `json:"publishedAt"`
}

func jobView(j portal.Job) JobView {
	return JobView{
		ID:               j.ID,
		Title:            j.Title,
		Industry:         j.Industry,
		Category:         j.Category,
		SalaryMin:        j.SalaryMin,
		SalaryMax:        j.SalaryMax,
		Location:         j.Location,
		Responsibilities: j.Description,
		Requirements:     j.Requirements,
		Benefits:         j.Benefits,
		Skills:           j.Skills,
		EducationLevel:   j.EducationLevel,
		ExperienceYears:  j.ExperienceYears,
		FreshGraduate:    j.FreshGraduate,
		PublishedAt:      j.PublishedAt,
	}
}

func jobViews(jobs []portal.Job) []JobView {
	out := make([]JobView, 0, len(jobs))
	for _, j := range jobs {
		v := jobView(j)
		if j.EnterpriseName != "" {
			v.Enterprise = &EnterpriseView{Name: j.EnterpriseName}
		}
		out = append(out, v)
	}
	return out
}

func jobDetailView(j portal.Job, e portal.Enterprise) JobView {
	v := jobView(j)
	v.Enterprise = &EnterpriseView{
		Name:     e.Name,
		Industry: e.Industry,
		Scale:    e.Scale,
		Logo:     e.Logo,
	}
	return v
}

// PolicyView is the public projection of a published policy.
type PolicyView struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Type        portal.PolicyType `json:"type"`
	Content     string            `json:"content"`
	PublishedAt *time.Time        `json:"publishedAt"`
}

func policyViews(policies []portal.Policy) []PolicyView {
	out := make([]PolicyView, 0, len(policies))
	for _, p := range policies {
		out = append(out, PolicyView{
			ID: p.ID, Title: p.Title, Type: p.Type,
			Content: p.Content, PublishedAt: p.PublishedAt,
		})
	}
	return out
}

// ResumeView assembles the parsed resume sections under a structuredData
// block, the shape the external channel stores them in.
type ResumeView struct {
	ID             string          `json:"id"`
	UserID         string          `json:"userId"`
	ResumeText     string          `json:"resumeText"`
	StructuredData json.RawMessage `json:"structuredData"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

func resumeView(r portal.Resume) ResumeView {
	structured := map[string]json.RawMessage{
		"education":      orEmpty(r.Education),
		"experiences":    orEmpty(r.Experiences),
		"projects":       orEmpty(r.Projects),
		"skills":         orEmpty(r.Skills),
		"certifications": orEmpty(r.Certifications),
		"awards":         orEmpty(r.Awards),
	}
	if r.Name != nil {
		structured["name"], _ = json.Marshal(*r.Name)
	}
	if r.Phone != nil {
		structured["phone"], _ = json.Marshal(*r.Phone)
	}
	if r.Email != nil {
		structured["email"], _ = json.Marshal(*r.Email)
	}
	blob, _ := json.Marshal(structured)

	userID := ""
	if r.ExternalUserID != nil {
		userID = *r.ExternalUserID
	}
	return ResumeView{
		ID:             r.ID,
		UserID:         userID,
		ResumeText:     r.ResumeText,
		StructuredData: blob,
		UpdatedAt:      r.UpdatedAt,
	}
}

func orEmpty(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage(`[]`)
	}
	return raw
}

// ConversationView maps internal column names back to the external channel's
// vocabulary: userId and conversationId are the caller's identifiers.
type ConversationView struct {
	ID             string          `json:"id"`
	UserID         string          `json:"userId"`
	ConversationID string          `json:"conversationId"`
	Title          *string         `json:"title"`
	Status         string          `json:"status"`
	Type           *string         `json:"type"`
	SessionData    json.RawMessage `json:"sessionData"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

func conversationView(c portal.Conversation) ConversationView {
	return ConversationView{
		ID:             c.ID,
		UserID:         c.ExternalUserID,
		ConversationID: c.ExternalConversationID,
		Title:          c.Title,
		Status:         c.Status,
		Type:           c.Type,
		SessionData:    c.SessionData,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

func conversationViews(convs []portal.Conversation) []ConversationView {
	out := make([]ConversationView, 0, len(convs))
	for _, c := range convs {
		out = append(out, conversationView(c))
	}
	return out
}

// InterviewView mirrors ConversationView: userId and interviewId are the
// external channel's identifiers, not the internal column names.
type InterviewView struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	InterviewID string          `json:"interviewId"`
	JobTitle    *string         `json:"jobTitle"`
	Status      string          `json:"status"`
	Report      json.RawMessage `json:"report"`
	Score       *float64        `json:"score"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func interviewView(iv portal.Interview) InterviewView {
	return InterviewView{
		ID:          iv.ID,
		UserID:      iv.ExternalUserID,
		InterviewID: iv.ExternalInterviewID,
		JobTitle:    iv.JobTitle,
		Status:      iv.Status,
		Report:      iv.Report,
		Score:       iv.Score,
		CreatedAt:   iv.CreatedAt,
		UpdatedAt:   iv.UpdatedAt,
	}
}

func interviewViews(ivs []portal.Interview) []InterviewView {
	out := make([]InterviewView, 0, len(ivs))
	for _, iv := range ivs {
		out = append(out, interviewView(iv))
	}
	return out
}
