package models

import (
	"time"

	"github.com/google/uuid"
)

// GeneratedDocument is an AI-drafted legal document (e.g. a labor
// complaint) together with the inputs and sources it was built from.
type GeneratedDocument struct {
	ID        uuid.UUID              `json:"id"`
	Type      string                 `json:"type"`
	Content   string                 `json:"content"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}
