// internal/services/verification_service.go
package services

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sealtrace/sealtrace-backend/internal/metrics"
	"github.com/sealtrace/sealtrace-backend/internal/models"
	"github.com/sealtrace/sealtrace-backend/internal/securetag"
)

var (
	ErrProductNotFound    = errors.New("product not found")
	ErrInvalidTag         = errors.New("invalid tag")
	ErrCredentialMismatch = errors.New("credential mismatch")
)

// VerificationStore is the narrow persistence surface the verification core
// depends on. The gorm implementation lives in verification_store.go; tests
// substitute an in-memory double.
type VerificationStore interface {
	// GetProductByProductID resolves a QR scan; returns ErrProductNotFound on a miss.
	GetProductByProductID(productID string) (*models.Product, error)
	// GetProductByTagID resolves an NFC tap; returns ErrInvalidTag on a miss.
	GetProductByTagID(tagID string) (*models.Product, error)
	// AppendVerification writes the ledger record and bumps the product's
	// verification counter as one unit of work. The counter update must be an
	// atomic add in the store, never a read-modify-write in the caller.
	AppendVerification(record *models.VerificationRecord) error
	// BumpAnalytics upserts the (day, manufacturer) bucket and applies the
	// total, method, and outcome increments as a single statement.
	BumpAnalytics(manufacturerID uuid.UUID, day time.Time, method models.VerificationMethod, outcome models.VerificationOutcome) error
}

type VerificationService struct {
	store  VerificationStore
	alerts NotificationSink
}

type VerifyQRRequest struct {
	Code       string `json:"code" validate:"required"`
	Location   string `json:"location,omitempty" validate:"omitempty,max=255"`
	DeviceInfo string `json:"device_info,omitempty" validate:"omitempty,max=255"`
}

type VerifyNFCRequest struct {
	TagID      string `json:"tag_id" validate:"required"`
	Location   string `json:"location,omitempty" validate:"omitempty,max=255"`
	DeviceInfo string `json:"device_info,omitempty" validate:"omitempty,max=255"`
}

type VerifiedProduct struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Manufacturer      string    `json:"manufacturer"`
	ManufacturingDate time.Time `json:"manufacturing_date"`
	Origin            string    `json:"origin"`
	VerificationCount int64     `json:"verification_count"`
}

type VerificationResult struct {
	Result     models.VerificationOutcome `json:"result"`
	Message    string                     `json:"message"`
	Confidence int                        `json:"confidence,omitempty"`
	Product    *VerifiedProduct           `json:"product,omitempty"`
}

// Evaluation is the outcome of the pure status decision. Confidence is a
// fixed score per outcome, not a computed probability.
type Evaluation struct {
	Outcome    models.VerificationOutcome
	Confidence int
	Message    string
}

func NewVerificationService(store VerificationStore, alerts NotificationSink) *VerificationService {
	return &VerificationService{
		store:  store,
		alerts: alerts,
	}
}

// EvaluateProduct decides the verification outcome for a located,
// authenticated product. Priority order is fixed and first-match-wins:
// recalled outranks expired outranks tampered. A recalled-but-also-expired
// product reports as recalled. No side effects.
func EvaluateProduct(product *models.Product, now time.Time) Evaluation {
	switch {
	case product.Status == models.ProductStatusRecalled:
		return Evaluation{
			Outcome:    models.OutcomeRecalled,
			Confidence: 95,
			Message:    "This product has been recalled by the manufacturer",
		}
	case product.Status == models.ProductStatusExpired ||
		(product.ExpiryDate != nil && product.ExpiryDate.Before(now)):
		return Evaluation{
			Outcome:    models.OutcomeExpired,
			Confidence: 90,
			Message:    "This product has expired",
		}
	case !product.SecureTag.IsActive:
		return Evaluation{
			Outcome:    models.OutcomeTampered,
			Confidence: 85,
			Message:    "The security tag on this product appears to have been tampered with",
		}
	default:
		return Evaluation{
			Outcome:    models.OutcomeAuthentic,
			Confidence: 100,
			Message:    "Product verified as authentic",
		}
	}
}

// VerifyQR handles the scanned-code path. Terminal counterfeit states
// (malformed payload, unknown product, secret mismatch) are returned as
// sentinel errors; only a located and authenticated product reaches the
// status evaluation and the ledger.
func (s *VerificationService) VerifyQR(req *VerifyQRRequest) (*VerificationResult, error) {
	productID, secretKey, err := securetag.DecodeQR(req.Code)
	if err != nil {
		// Malformed payload never reaches a lookup
		return nil, err
	}

	product, err := s.store.GetProductByProductID(productID)
	if err != nil {
		return nil, err
	}

	// Credential gate runs before any status check
	if subtle.ConstantTimeCompare([]byte(product.SecureTag.SecretKey), []byte(secretKey)) != 1 {
		s.recordCounterfeit(product, models.VerificationMethodQR, req.Location, req.DeviceInfo)
		return nil, ErrCredentialMismatch
	}

	return s.completeVerification(product, models.VerificationMethodQR, req.Location, req.DeviceInfo)
}

// VerifyNFC handles the tapped-tag path. Possession of a known tag identifier
// is the credential; there is no separate secret check.
func (s *VerificationService) VerifyNFC(req *VerifyNFCRequest) (*VerificationResult, error) {
	product, err := s.store.GetProductByTagID(req.TagID)
	if err != nil {
		return nil, err
	}

	return s.completeVerification(product, models.VerificationMethodNFC, req.Location, req.DeviceInfo)
}

func (s *VerificationService) completeVerification(product *models.Product, method models.VerificationMethod, location, deviceInfo string) (*VerificationResult, error) {
	now := time.Now()
	eval := EvaluateProduct(product, now)

	record := &models.VerificationRecord{
		ProductRef: product.ID,
		Method:     method,
		Outcome:    eval.Outcome,
		Confidence: eval.Confidence,
		Location:   location,
		DeviceInfo: deviceInfo,
		VerifiedAt: now,
	}

	// The ledger write is load-bearing: if it cannot be applied the
	// verification is not considered recorded and the request fails.
	if err := s.store.AppendVerification(record); err != nil {
		return nil, fmt.Errorf("failed to record verification: %w", err)
	}

	metrics.CountVerification(string(method), string(eval.Outcome))
	s.bumpAnalytics(product, method, eval.Outcome)

	return &VerificationResult{
		Result:     eval.Outcome,
		Message:    eval.Message,
		Confidence: eval.Confidence,
		Product: &VerifiedProduct{
			ID:                product.ProductID,
			Name:              product.Name,
			Manufacturer:      manufacturerName(product),
			ManufacturingDate: product.ManufacturingDate,
			Origin:            product.Origin,
			VerificationCount: product.VerificationCount + 1,
		},
	}, nil
}

// recordCounterfeit keeps a ledger trail for credential mismatches on located
// products and alerts the manufacturer. Unlike the main ledger write this is
// best-effort: the caller already knows the outcome is counterfeit.
func (s *VerificationService) recordCounterfeit(product *models.Product, method models.VerificationMethod, location, deviceInfo string) {
	record := &models.VerificationRecord{
		ProductRef: product.ID,
		Method:     method,
		Outcome:    models.OutcomeCounterfeit,
		Location:   location,
		DeviceInfo: deviceInfo,
		VerifiedAt: time.Now(),
	}

	if err := s.store.AppendVerification(record); err != nil {
		logrus.WithError(err).WithField("product_id", product.ProductID).
			Warn("Failed to record counterfeit verification")
	}

	metrics.CountVerification(string(method), string(models.OutcomeCounterfeit))
	s.bumpAnalytics(product, method, models.OutcomeCounterfeit)

	if s.alerts != nil {
		if err := s.alerts.Send("counterfeit_alert", product.Manufacturer.Email, map[string]interface{}{
			"ManufacturerName": manufacturerName(product),
			"ProductName":      product.Name,
			"ProductID":        product.ProductID,
			"Location":         location,
		}); err != nil {
			logrus.WithError(err).WithField("product_id", product.ProductID).
				Warn("Failed to send counterfeit alert")
		}
	}
}

// bumpAnalytics is the observability side-channel: failures are logged and
// swallowed so they never fail the verification request or roll back the
// ledger write.
func (s *VerificationService) bumpAnalytics(product *models.Product, method models.VerificationMethod, outcome models.VerificationOutcome) {
	day := dayOf(time.Now().UTC())
	if err := s.store.BumpAnalytics(product.ManufacturerID, day, method, outcome); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"manufacturer_id": product.ManufacturerID,
			"outcome":         outcome,
		}).Warn("Failed to update verification analytics")
	}
}

func manufacturerName(product *models.Product) string {
	if product.Manufacturer.CompanyName != "" {
		return product.Manufacturer.CompanyName
	}
	return product.Manufacturer.Username
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
