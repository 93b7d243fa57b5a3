// internal/models/verification.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// VerificationRecord is the append-only ledger entry for one verification
// attempt. Rows are never updated after creation.
type VerificationRecord struct {
	BaseModel
	ProductRef uuid.UUID           `json:"product_ref" gorm:"type:uuid;not null;index"`
	Method     VerificationMethod  `json:"method" gorm:"type:varchar(10);not null"`
	Outcome    VerificationOutcome `json:"outcome" gorm:"type:varchar(20);not null;index"`
	Confidence int                 `json:"confidence"`
	Location   string              `json:"location" gorm:"size:255"`
	DeviceInfo string              `json:"device_info" gorm:"size:255"`
	VerifiedAt time.Time           `json:"verified_at" gorm:"index"`

	Product Product `json:"product,omitempty" gorm:"foreignKey:ProductRef"`
}

// VerificationAnalytics is the per-day, per-manufacturer counter bucket.
// One row per (date, manufacturer); counters only ever move up.
type VerificationAnalytics struct {
	BaseModel
	Date           time.Time `json:"date" gorm:"type:date;not null;uniqueIndex:idx_analytics_day_manufacturer"`
	ManufacturerID uuid.UUID `json:"manufacturer_id" gorm:"type:uuid;not null;uniqueIndex:idx_analytics_day_manufacturer"`

	TotalScans int64 `json:"total_scans" gorm:"default:0"`
	QRScans    int64 `json:"qr_scans" gorm:"default:0"`
	NFCScans   int64 `json:"nfc_scans" gorm:"default:0"`

	AuthenticCount   int64 `json:"authentic_count" gorm:"default:0"`
	CounterfeitCount int64 `json:"counterfeit_count" gorm:"default:0"`
	TamperedCount    int64 `json:"tampered_count" gorm:"default:0"`
	ExpiredCount     int64 `json:"expired_count" gorm:"default:0"`
	RecalledCount    int64 `json:"recalled_count" gorm:"default:0"`
}
