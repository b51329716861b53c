package model

import "time"

type ApplicationStatus string

const (
	ApplicationPending   ApplicationStatus = "pending"
	ApplicationEvaluated ApplicationStatus = "evaluated"
	ApplicationApproved  ApplicationStatus = "approved"
	ApplicationRejected  ApplicationStatus = "rejected"
)

// AnsweredQuestion is one response within an application
type AnsweredQuestion struct {
	QuestionID string  `json:"questionId" bson:"questionId"` // matches QuestionDefinition.Identifier
	Subtype    Subtype `json:"subtype,omitempty" bson:"subtype,omitempty"`
	// Answer is a string, number, "sim"/"nao", an option id or a list of option ids
	Answer interface{} `json:"answer" bson:"answer"`
	// Weight is computed for every subtype except text ones, where a reviewer sets it
	Weight float64 `json:"weight" bson:"weight"`
}

// SubmittedDocument links an application to one of the applicant's documents
type SubmittedDocument struct {
	Type   string `json:"type" bson:"type"`
	FileID string `json:"fileId" bson:"fileId"` // Document.ID
}

type Application struct {
	ID             string              `json:"id" bson:"_id,omitempty"`
	UserID         string              `json:"userId" bson:"userId"`
	AnnouncementID string              `json:"announcementId" bson:"announcementId"`
	SubmittedAt    time.Time           `json:"submittedAt" bson:"submittedAt"`
	Status         ApplicationStatus   `json:"status" bson:"status"`
	Documents      []SubmittedDocument `json:"documents" bson:"documents"`
	Answers        []AnsweredQuestion  `json:"answers" bson:"answers"`
	FinalScore     float64             `json:"finalScore" bson:"finalScore"`
	ReviewerNote   string              `json:"reviewerNote,omitempty" bson:"reviewerNote,omitempty"`
	CreatedAt      time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt" bson:"updatedAt"`
}

// PendingApplication is a review queue entry
type PendingApplication struct {
	Application
	AnnouncementName string   `json:"announcementName"`
	Applicant        *Profile `json:"applicant,omitempty"`
	MaximumScore     *float64 `json:"maximumScore"`
}

// ReviewView bundles what a reviewer needs to evaluate one application
type ReviewView struct {
	Application  *Application  `json:"application"`
	Announcement *Announcement `json:"announcement"`
	Applicant    *Profile      `json:"applicant,omitempty"`
	MaximumScore *float64      `json:"maximumScore"`
}

// ImportedDocument is an approved document matched against a required type
type ImportedDocument struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// DocumentImport is the result of matching a student's approved documents
type DocumentImport struct {
	Imported []ImportedDocument `json:"imported"`
	Missing  []string           `json:"missing"`
}

// FinalizeResult summarizes an announcement's closing
type FinalizeResult struct {
	AnnouncementID string   `json:"announcementId"`
	Approved       []string `json:"approved"`
	Rejected       []string `json:"rejected"`
}
