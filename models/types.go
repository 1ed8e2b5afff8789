package models

// Question types
const (
	TypeText           = "text"
	TypeSingleChoice   = "single_choice"
	TypeMultipleChoice = "multiple_choice"
	TypeScale          = "scale"
)

// Domain types

type Question struct {
	ID                  string   `json:"id" yaml:"id" validate:"required"`
	Order               int      `json:"order" yaml:"order"`
	Type                string   `json:"type" yaml:"type" validate:"required,oneof=text single_choice multiple_choice scale"`
	Text                string   `json:"text" yaml:"text" validate:"required"`
	Category            string   `json:"category,omitempty" yaml:"category"`
	Options             []string `json:"options,omitempty" yaml:"options" validate:"dive,required"`
	Required            bool     `json:"required" yaml:"required"`
	ConditionalOn       string   `json:"conditional_on,omitempty" yaml:"conditional_on"`
	ConditionalValue    string   `json:"conditional_value,omitempty" yaml:"conditional_value" validate:"required_with=ConditionalOn"`
	ProfileFieldMapping []string `json:"profile_field_mapping,omitempty" yaml:"profile_field_mapping" validate:"dive,required"`
	ScaleMin            *float64 `json:"scale_min,omitempty" yaml:"scale_min"`
	ScaleMax            *float64 `json:"scale_max,omitempty" yaml:"scale_max"`
}

// IsConditional reports whether the question's visibility depends on another answer.
func (q Question) IsConditional() bool {
	return q.ConditionalOn != ""
}

// HasOption reports whether opt is one of the question's listed options.
func (q Question) HasOption(opt string) bool {
	for _, o := range q.Options {
		if o == opt {
			return true
		}
	}
	return false
}

type Answer struct {
	QuestionID string `json:"question_id"`
	Value      Value  `json:"value"`
}

// AnswerSet maps question_id -> answer for one profile.
type AnswerSet map[string]Value

// Get returns the answer for id, or Null when absent.
func (s AnswerSet) Get(id string) Value {
	if s == nil {
		return Null
	}
	return s[id]
}

// Has reports whether a non-null answer exists for id.
func (s AnswerSet) Has(id string) bool {
	v, ok := s[id]
	return ok && !v.IsNull()
}

// Clone returns a deep copy.
func (s AnswerSet) Clone() AnswerSet {
	out := make(AnswerSet, len(s))
	for k, v := range s {
		out[k] = v.Clone()
	}
	return out
}

// FromAnswers builds an AnswerSet, skipping null values.
func FromAnswers(answers []Answer) AnswerSet {
	set := make(AnswerSet, len(answers))
	for _, a := range answers {
		if a.Value.IsNull() {
			continue
		}
		set[a.QuestionID] = a.Value
	}
	return set
}

type Profile struct {
	UserID    string            `json:"user_id"`
	FirstName string            `json:"first_name"`
	LastName  string            `json:"last_name"`
	Fields    map[string]string `json:"fields,omitempty"`
}

// Profile field names stored in dedicated columns
const (
	FieldFirstName = "first_name"
	FieldLastName  = "last_name"
)

// CompatibilityResult holds directional and averaged scores, each 0-100.
type CompatibilityResult struct {
	AToB    int `json:"a_to_b"`
	BToA    int `json:"b_to_a"`
	Average int `json:"average"`
}

type ComparisonRow struct {
	QuestionID      string  `json:"question_id"`
	QuestionText    string  `json:"question_text"`
	PreferenceValue Value   `json:"preference_value"`
	ProfileValue    Value   `json:"profile_value"`
	Score           float64 `json:"score"`
	IsMatch         bool    `json:"is_match"`
	ImportanceLabel string  `json:"importance_label"`
}

type RankedMatch struct {
	Rank   int                 `json:"rank"`
	UserID string              `json:"user_id"`
	Result CompatibilityResult `json:"result"`
}

type Progress struct {
	Visible          int  `json:"visible"`
	Answered         int  `json:"answered"`
	RequiredVisible  int  `json:"required_visible"`
	RequiredAnswered int  `json:"required_answered"`
	Complete         bool `json:"complete"`
}

// Request types

type CreateProfileRequest struct {
	FirstName string `json:"first_name" binding:"required,max=100"`
	LastName  string `json:"last_name" binding:"max=100"`
}

type SaveAnswerRequest struct {
	Value Value `json:"value"`
}

type RankRequest struct {
	UserID       string   `json:"user_id" binding:"required"`
	CandidateIDs []string `json:"candidate_ids" binding:"required,min=1,max=500,dive,required"`
}

// Response types

type CreateProfileResponse struct {
	UserID string `json:"user_id"`
	Token  string `json:"token"`
}

type CatalogCategory struct {
	Name        string   `json:"name"`
	QuestionIDs []string `json:"question_ids"`
}

type CatalogResponse struct {
	Questions  []Question        `json:"questions"`
	Categories []CatalogCategory `json:"categories"`
}

type QuestionnaireResponse struct {
	Questions []Question `json:"questions"`
	Answers   AnswerSet  `json:"answers"`
	Progress  Progress   `json:"progress"`
}

type SaveAnswerResponse struct {
	QuestionID  string   `json:"question_id"`
	Ignored     bool     `json:"ignored,omitempty"`
	Invalidated []string `json:"invalidated"`
}

type ComparisonResponse struct {
	UserID string          `json:"user_id"`
	Other  string          `json:"other_user_id"`
	Rows   []ComparisonRow `json:"rows"`
}

type ScoreResponse struct {
	A      string              `json:"a"`
	B      string              `json:"b"`
	Result CompatibilityResult `json:"result"`
}

type RankResponse struct {
	UserID  string        `json:"user_id"`
	Matches []RankedMatch `json:"matches"`
}

// Error response

type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}
