// internal/services/verification_store.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sealtrace/sealtrace-backend/internal/models"
)

// GormVerificationStore backs the verification core with PostgreSQL.
type GormVerificationStore struct {
	db *gorm.DB
}

func NewGormVerificationStore(db *gorm.DB) *GormVerificationStore {
	return &GormVerificationStore{db: db}
}

func (s *GormVerificationStore) GetProductByProductID(productID string) (*models.Product, error) {
	var product models.Product
	if err := s.db.Preload("Manufacturer").Where("product_id = ?", productID).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &product, nil
}

func (s *GormVerificationStore) GetProductByTagID(tagID string) (*models.Product, error) {
	var product models.Product
	if err := s.db.Preload("Manufacturer").Where("secure_tag_id = ?", tagID).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidTag
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &product, nil
}

// AppendVerification writes the ledger record and applies the product counter
// bump inside one transaction. The counter moves via a SQL add expression so
// concurrent verifications of the same product never lose updates.
func (s *GormVerificationStore) AppendVerification(record *models.VerificationRecord) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(record).Error; err != nil {
			return fmt.Errorf("failed to append verification record: %w", err)
		}

		if err := tx.Model(&models.Product{}).
			Where("id = ?", record.ProductRef).
			Updates(map[string]interface{}{
				"verification_count": gorm.Expr("verification_count + ?", 1),
				"last_verified_at":   record.VerifiedAt,
			}).Error; err != nil {
			return fmt.Errorf("failed to update verification counter: %w", err)
		}

		return nil
	})
}

// BumpAnalytics upserts the (day, manufacturer) bucket. All three increments
// ride one INSERT ... ON CONFLICT DO UPDATE statement, so they are never
// observably partial and concurrent bumps never lose counts.
func (s *GormVerificationStore) BumpAnalytics(manufacturerID uuid.UUID, day time.Time, method models.VerificationMethod, outcome models.VerificationOutcome) error {
	methodColumn := "qr_scans"
	if method == models.VerificationMethodNFC {
		methodColumn = "nfc_scans"
	}

	outcomeColumn, err := outcomeCounterColumn(outcome)
	if err != nil {
		return err
	}

	bucket := models.VerificationAnalytics{
		Date:           day,
		ManufacturerID: manufacturerID,
		TotalScans:     1,
	}
	switch methodColumn {
	case "qr_scans":
		bucket.QRScans = 1
	case "nfc_scans":
		bucket.NFCScans = 1
	}
	switch outcome {
	case models.OutcomeAuthentic:
		bucket.AuthenticCount = 1
	case models.OutcomeCounterfeit:
		bucket.CounterfeitCount = 1
	case models.OutcomeTampered:
		bucket.TamperedCount = 1
	case models.OutcomeExpired:
		bucket.ExpiredCount = 1
	case models.OutcomeRecalled:
		bucket.RecalledCount = 1
	}

	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "date"}, {Name: "manufacturer_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"total_scans": gorm.Expr("verification_analytics.total_scans + 1"),
			methodColumn:  gorm.Expr("verification_analytics." + methodColumn + " + 1"),
			outcomeColumn: gorm.Expr("verification_analytics." + outcomeColumn + " + 1"),
			"updated_at":  time.Now(),
		}),
	}).Create(&bucket).Error
}

func outcomeCounterColumn(outcome models.VerificationOutcome) (string, error) {
	switch outcome {
	case models.OutcomeAuthentic:
		return "authentic_count", nil
	case models.OutcomeCounterfeit:
		return "counterfeit_count", nil
	case models.OutcomeTampered:
		return "tampered_count", nil
	case models.OutcomeExpired:
		return "expired_count", nil
	case models.OutcomeRecalled:
		return "recalled_count", nil
	default:
		return "", fmt.Errorf("unknown verification outcome: %s", outcome)
	}
}
