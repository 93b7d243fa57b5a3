// internal/services/analytics_service.go
package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sealtrace/sealtrace-backend/internal/models"
)

type AnalyticsService struct {
	db *gorm.DB
}

// AnalyticsTotals sums the daily buckets over the requested range.
type AnalyticsTotals struct {
	TotalScans       int64 `json:"total_scans"`
	QRScans          int64 `json:"qr_scans"`
	NFCScans         int64 `json:"nfc_scans"`
	AuthenticCount   int64 `json:"authentic_count"`
	CounterfeitCount int64 `json:"counterfeit_count"`
	TamperedCount    int64 `json:"tampered_count"`
	ExpiredCount     int64 `json:"expired_count"`
	RecalledCount    int64 `json:"recalled_count"`
}

type ManufacturerDashboard struct {
	StartDate   time.Time                      `json:"start_date"`
	EndDate     time.Time                      `json:"end_date"`
	Totals      AnalyticsTotals                `json:"totals"`
	Daily       []models.VerificationAnalytics `json:"daily"`
	TopProducts []ProductScanSummary           `json:"top_products"`
}

type ProductScanSummary struct {
	ProductID         string     `json:"product_id"`
	Name              string     `json:"name"`
	VerificationCount int64      `json:"verification_count"`
	LastVerifiedAt    *time.Time `json:"last_verified_at,omitempty"`
}

func NewAnalyticsService(db *gorm.DB) *AnalyticsService {
	return &AnalyticsService{db: db}
}

// GetManufacturerDashboard assembles the per-day buckets and range totals for
// one manufacturer. Days with no scans have no bucket and appear as gaps.
func (s *AnalyticsService) GetManufacturerDashboard(manufacturerID uuid.UUID, start, end time.Time) (*ManufacturerDashboard, error) {
	if end.IsZero() {
		end = time.Now().UTC()
	}
	if start.IsZero() {
		start = end.AddDate(0, 0, -30)
	}
	if start.After(end) {
		return nil, fmt.Errorf("start date %s is after end date %s", start.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	var daily []models.VerificationAnalytics
	if err := s.db.
		Where("manufacturer_id = ? AND date >= ? AND date <= ?", manufacturerID, dayOf(start), dayOf(end)).
		Order("date ASC").
		Find(&daily).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch analytics buckets: %w", err)
	}

	var totals AnalyticsTotals
	for _, bucket := range daily {
		totals.TotalScans += bucket.TotalScans
		totals.QRScans += bucket.QRScans
		totals.NFCScans += bucket.NFCScans
		totals.AuthenticCount += bucket.AuthenticCount
		totals.CounterfeitCount += bucket.CounterfeitCount
		totals.TamperedCount += bucket.TamperedCount
		totals.ExpiredCount += bucket.ExpiredCount
		totals.RecalledCount += bucket.RecalledCount
	}

	topProducts, err := s.topProducts(manufacturerID, 5)
	if err != nil {
		return nil, err
	}

	return &ManufacturerDashboard{
		StartDate:   dayOf(start),
		EndDate:     dayOf(end),
		Totals:      totals,
		Daily:       daily,
		TopProducts: topProducts,
	}, nil
}

func (s *AnalyticsService) topProducts(manufacturerID uuid.UUID, limit int) ([]ProductScanSummary, error) {
	var products []models.Product
	if err := s.db.
		Where("manufacturer_id = ?", manufacturerID).
		Order("verification_count DESC").
		Limit(limit).
		Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch top products: %w", err)
	}

	summaries := make([]ProductScanSummary, 0, len(products))
	for _, p := range products {
		summaries = append(summaries, ProductScanSummary{
			ProductID:         p.ProductID,
			Name:              p.Name,
			VerificationCount: p.VerificationCount,
			LastVerifiedAt:    p.LastVerifiedAt,
		})
	}

	return summaries, nil
}

// GetPlatformTotals sums the buckets across all manufacturers for the range.
// Admin-only view.
func (s *AnalyticsService) GetPlatformTotals(start, end time.Time) (*AnalyticsTotals, error) {
	if end.IsZero() {
		end = time.Now().UTC()
	}
	if start.IsZero() {
		start = end.AddDate(0, 0, -30)
	}

	var totals AnalyticsTotals
	if err := s.db.Model(&models.VerificationAnalytics{}).
		Where("date >= ? AND date <= ?", dayOf(start), dayOf(end)).
		Select("COALESCE(SUM(total_scans), 0) AS total_scans, " +
			"COALESCE(SUM(qr_scans), 0) AS qr_scans, " +
			"COALESCE(SUM(nfc_scans), 0) AS nfc_scans, " +
			"COALESCE(SUM(authentic_count), 0) AS authentic_count, " +
			"COALESCE(SUM(counterfeit_count), 0) AS counterfeit_count, " +
			"COALESCE(SUM(tampered_count), 0) AS tampered_count, " +
			"COALESCE(SUM(expired_count), 0) AS expired_count, " +
			"COALESCE(SUM(recalled_count), 0) AS recalled_count").
		Scan(&totals).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate platform totals: %w", err)
	}

	return &totals, nil
}
