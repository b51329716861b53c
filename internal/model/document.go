package model

import "time"

type DocumentStatus string

const (
	DocumentPending   DocumentStatus = "pending"
	DocumentSubmitted DocumentStatus = "submitted"
	DocumentApproved  DocumentStatus = "approved"
	DocumentRejected  DocumentStatus = "rejected"
)

// DocumentReview records who approved or rejected a document
type DocumentReview struct {
	ReviewedBy string     `json:"reviewedBy,omitempty" bson:"reviewedBy,omitempty"`
	ReviewedAt *time.Time `json:"reviewedAt,omitempty" bson:"reviewedAt,omitempty"`
}

// Document is a supporting file uploaded by a student; the blob lives in GridFS
type Document struct {
	ID         string         `json:"id" bson:"_id,omitempty"`
	UserID     string         `json:"userId" bson:"userId"`
	Type       string         `json:"type" bson:"type"` // e.g. CPF, RG
	Status     DocumentStatus `json:"status" bson:"status"`
	UploadedAt time.Time      `json:"uploadedAt" bson:"uploadedAt"`
	Filename   string         `json:"filename" bson:"filename"`
	FileSize   int64          `json:"fileSize" bson:"fileSize"`
	FileID     string         `json:"fileId" bson:"fileId"`
	Review     DocumentReview `json:"review" bson:"review"`
	Applicant  *Profile       `json:"applicant,omitempty" bson:"-"`
}
