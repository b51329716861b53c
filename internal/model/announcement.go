package model

import "time"

// Subtype selects the weighting rule applied to a question's answers
type Subtype string

const (
	SubtypeShortText      Subtype = "short_text"
	SubtypeLongText       Subtype = "long_text"
	SubtypeNumber         Subtype = "number"
	SubtypeYesNo          Subtype = "yes_no"
	SubtypeSingleChoice   Subtype = "single_choice"
	SubtypeMultipleChoice Subtype = "multiple_choice"
	SubtypeLikertScale    Subtype = "likert_scale"
)

// IsText reports whether answers of this subtype are weighted manually by a reviewer
func (s Subtype) IsText() bool {
	return s == SubtypeShortText || s == SubtypeLongText
}

// IsChoice reports whether the subtype carries choice options
func (s Subtype) IsChoice() bool {
	return s == SubtypeSingleChoice || s == SubtypeMultipleChoice
}

// IsKnown reports whether s is one of the supported subtypes
func (s Subtype) IsKnown() bool {
	switch s {
	case SubtypeShortText, SubtypeLongText, SubtypeNumber, SubtypeYesNo,
		SubtypeSingleChoice, SubtypeMultipleChoice, SubtypeLikertScale:
		return true
	}
	return false
}

// ChoiceOption is one selectable option of a choice question
type ChoiceOption struct {
	ID     string  `json:"id" bson:"id" validate:"required"`
	Label  string  `json:"label" bson:"label"`
	Weight float64 `json:"weight" bson:"weight" validate:"finite"`
}

// ScoreBand maps a numeric answer range (inclusive) to a weight
type ScoreBand struct {
	Min    float64 `json:"min" bson:"min" validate:"finite"`
	Max    float64 `json:"max" bson:"max" validate:"finite,gtefield=Min"`
	Weight float64 `json:"weight" bson:"weight" validate:"finite"`
}

// QuestionDefinition is one question of an announcement's questionnaire
type QuestionDefinition struct {
	Identifier string  `json:"id" bson:"id" validate:"questionid"` // e.g. "Q1", referenced by the formula
	Text       string  `json:"text" bson:"text" validate:"notblank"`
	Subtype    Subtype `json:"subtype" bson:"subtype" validate:"subtype"`
	Required   bool    `json:"required" bson:"required"`

	// yes_no
	YesWeight float64 `json:"yesWeight,omitempty" bson:"yesWeight,omitempty" validate:"gte=0,lte=1"`
	NoWeight  float64 `json:"noWeight,omitempty" bson:"noWeight,omitempty" validate:"gte=0,lte=1"`

	// likert_scale display range, not used for weighting
	ScaleStart int `json:"scaleStart,omitempty" bson:"scaleStart,omitempty"`
	ScaleEnd   int `json:"scaleEnd,omitempty" bson:"scaleEnd,omitempty" validate:"gtefield=ScaleStart"`

	// number, likert_scale
	ScoreBands []ScoreBand `json:"scoreBands,omitempty" bson:"scoreBands,omitempty" validate:"dive"`

	// single_choice, multiple_choice
	ChoiceOptions []ChoiceOption `json:"choiceOptions,omitempty" bson:"choiceOptions,omitempty" validate:"dive"`
}

// Option returns the choice option with the given id
func (q *QuestionDefinition) Option(id string) (ChoiceOption, bool) {
	for _, op := range q.ChoiceOptions {
		if op.ID == id {
			return op, true
		}
	}
	return ChoiceOption{}, false
}

// RequiredDocument is a document type applicants must (or may) attach
type RequiredDocument struct {
	Type        string `json:"type" bson:"type" validate:"notblank"`
	Description string `json:"description" bson:"description"`
	Mandatory   bool   `json:"mandatory" bson:"mandatory"`
}

// Announcement (edital) is a published aid opportunity
type Announcement struct {
	ID                  string               `json:"id" bson:"_id,omitempty"`
	Name                string               `json:"name" bson:"name" validate:"notblank"`
	Description         string               `json:"description" bson:"description"`
	EligibilityCriteria string               `json:"eligibilityCriteria" bson:"eligibilityCriteria"`
	AcademicPeriod      string               `json:"academicPeriod" bson:"academicPeriod"`
	EnrollmentStart     time.Time            `json:"enrollmentStart" bson:"enrollmentStart" validate:"required"`
	EnrollmentEnd       time.Time            `json:"enrollmentEnd" bson:"enrollmentEnd" validate:"required,gtfield=EnrollmentStart"`
	MaxApproved         *int                 `json:"maxApproved,omitempty" bson:"maxApproved,omitempty" validate:"omitempty,gte=0"`
	RequiredDocuments   []RequiredDocument   `json:"requiredDocuments" bson:"requiredDocuments" validate:"dive"`
	Questions           []QuestionDefinition `json:"questions" bson:"questions" validate:"dive"`
	Formula             string               `json:"formula" bson:"formula"`
	Finalized           bool                 `json:"finalized" bson:"finalized"`
	CreatedAt           time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt           time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// Question returns the definition with the given identifier
func (a *Announcement) Question(identifier string) *QuestionDefinition {
	for i := range a.Questions {
		if a.Questions[i].Identifier == identifier {
			return &a.Questions[i]
		}
	}
	return nil
}

// Identifiers returns the identifiers of all questions, in definition order
func (a *Announcement) Identifiers() []string {
	ids := make([]string, 0, len(a.Questions))
	for _, q := range a.Questions {
		ids = append(ids, q.Identifier)
	}
	return ids
}

// EnrollmentOpen reports whether now falls inside the enrollment window
func (a *Announcement) EnrollmentOpen(now time.Time) bool {
	return !now.Before(a.EnrollmentStart) && !now.After(a.EnrollmentEnd)
}

// AnnouncementSummary is the listing projection of an announcement
type AnnouncementSummary struct {
	ID             string    `json:"id" bson:"_id,omitempty"`
	Name           string    `json:"name" bson:"name"`
	Description    string    `json:"description" bson:"description"`
	AcademicPeriod string    `json:"academicPeriod" bson:"academicPeriod"`
	CreatedAt      time.Time `json:"createdAt" bson:"createdAt"`
}
