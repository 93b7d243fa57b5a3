// internal/models/product.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// SecureTag is the per-product credential bundle written once at creation.
// SecretKey and TamperSeal never leave the server except embedded in the
// generated QR payload returned to the owning manufacturer.
type SecureTag struct {
	SecretKey  string `json:"-" gorm:"size:64;not null"`
	TagID      string `json:"tag_id" gorm:"uniqueIndex;size:64;not null"`
	TamperSeal string `json:"-" gorm:"size:64;not null"`
	IsActive   bool   `json:"is_active" gorm:"default:true"`
}

type Product struct {
	BaseModel
	ProductID         string         `json:"product_id" gorm:"uniqueIndex;size:64;not null"`
	ManufacturerID    uuid.UUID      `json:"manufacturer_id" gorm:"type:uuid;not null;index"`
	Name              string         `json:"name" gorm:"size:255;not null"`
	Description       string         `json:"description" gorm:"type:text"`
	Category          string         `json:"category" gorm:"size:100;index"`
	BatchNumber       string         `json:"batch_number" gorm:"size:100"`
	Origin            string         `json:"origin" gorm:"size:255"`
	ManufacturingDate time.Time      `json:"manufacturing_date"`
	ExpiryDate        *time.Time     `json:"expiry_date,omitempty"`
	Status            ProductStatus  `json:"status" gorm:"type:varchar(20);default:'active';index"`
	SecureTag         SecureTag      `json:"secure_tag" gorm:"embedded;embeddedPrefix:secure_"`
	Images            pq.StringArray `json:"images" gorm:"type:text[]"`
	Metadata          JSONB          `json:"metadata" gorm:"type:jsonb"`
	VerificationCount int64          `json:"verification_count" gorm:"default:0"`
	LastVerifiedAt    *time.Time     `json:"last_verified_at"`

	// Relationships
	Manufacturer  User                 `json:"manufacturer,omitempty" gorm:"foreignKey:ManufacturerID"`
	Verifications []VerificationRecord `json:"verifications,omitempty" gorm:"foreignKey:ProductRef"`
}
