// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// BeforeCreate assigns the primary key in the application instead of relying
// on a database-side default, so the same models run against test databases.
func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		if str, isStr := value.(string); isStr {
			bytes = []byte(str)
		} else {
			return nil
		}
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type UserRole string

const (
	UserRoleManufacturer UserRole = "manufacturer"
	UserRoleConsumer     UserRole = "consumer"
	UserRoleAdmin        UserRole = "admin"
)

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusBanned    UserStatus = "banned"
)

type ProductStatus string

const (
	ProductStatusActive    ProductStatus = "active"
	ProductStatusRecalled  ProductStatus = "recalled"
	ProductStatusExpired   ProductStatus = "expired"
	ProductStatusReturned  ProductStatus = "returned"
	ProductStatusDestroyed ProductStatus = "destroyed"
)

type VerificationMethod string

const (
	VerificationMethodQR  VerificationMethod = "qr"
	VerificationMethodNFC VerificationMethod = "nfc"
)

type VerificationOutcome string

const (
	OutcomeAuthentic   VerificationOutcome = "authentic"
	OutcomeCounterfeit VerificationOutcome = "counterfeit"
	OutcomeTampered    VerificationOutcome = "tampered"
	OutcomeExpired     VerificationOutcome = "expired"
	OutcomeRecalled    VerificationOutcome = "recalled"
)
