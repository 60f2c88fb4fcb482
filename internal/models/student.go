package models

import "time"

type Student struct {
	ID                   string    `json:"id"`
	StudentName          string    `json:"studentName"`
	WhatsappNumber       string    `json:"whatsappNumber"`
	HighestQualification string    `json:"highestQualification"`
	WorkingInIT          string    `json:"workingInIT"` // yes, no
	CreatedAt            time.Time `json:"createdAt"`
}

// PublicStudent is the subset exposed without authentication.
type PublicStudent struct {
	StudentName          string `json:"studentName"`
	HighestQualification string `json:"highestQualification"`
}
