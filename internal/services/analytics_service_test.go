// internal/services/analytics_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sealtrace/sealtrace-backend/internal/models"
)

func TestManufacturerDashboard(t *testing.T) {
	db := openTestDB(t, &models.User{}, &models.Product{}, &models.VerificationAnalytics{})
	svc := NewAnalyticsService(db)

	manufacturerID := uuid.New()
	otherID := uuid.New()
	day1 := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

	buckets := []models.VerificationAnalytics{
		{Date: day1, ManufacturerID: manufacturerID, TotalScans: 10, QRScans: 8, NFCScans: 2, AuthenticCount: 9, CounterfeitCount: 1},
		{Date: day2, ManufacturerID: manufacturerID, TotalScans: 5, QRScans: 5, AuthenticCount: 3, ExpiredCount: 2},
		{Date: day1, ManufacturerID: otherID, TotalScans: 100, QRScans: 100, AuthenticCount: 100},
	}
	for i := range buckets {
		require.NoError(t, db.Create(&buckets[i]).Error)
	}

	dashboard, err := svc.GetManufacturerDashboard(manufacturerID, day1, day2)
	require.NoError(t, err)

	// Only the requesting manufacturer's buckets are included
	require.Len(t, dashboard.Daily, 2)
	assert.True(t, dashboard.Daily[0].Date.Before(dashboard.Daily[1].Date))

	assert.Equal(t, int64(15), dashboard.Totals.TotalScans)
	assert.Equal(t, int64(13), dashboard.Totals.QRScans)
	assert.Equal(t, int64(2), dashboard.Totals.NFCScans)
	assert.Equal(t, int64(12), dashboard.Totals.AuthenticCount)
	assert.Equal(t, int64(1), dashboard.Totals.CounterfeitCount)
	assert.Equal(t, int64(2), dashboard.Totals.ExpiredCount)
}

func TestManufacturerDashboardRangeFilter(t *testing.T) {
	db := openTestDB(t, &models.User{}, &models.Product{}, &models.VerificationAnalytics{})
	svc := NewAnalyticsService(db)

	manufacturerID := uuid.New()
	inRange := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	outOfRange := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, db.Create(&models.VerificationAnalytics{
		Date: inRange, ManufacturerID: manufacturerID, TotalScans: 3, QRScans: 3, AuthenticCount: 3,
	}).Error)
	require.NoError(t, db.Create(&models.VerificationAnalytics{
		Date: outOfRange, ManufacturerID: manufacturerID, TotalScans: 7, QRScans: 7, AuthenticCount: 7,
	}).Error)

	dashboard, err := svc.GetManufacturerDashboard(manufacturerID,
		time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.Len(t, dashboard.Daily, 1)
	assert.Equal(t, int64(3), dashboard.Totals.TotalScans)
}

func TestManufacturerDashboardInvertedRange(t *testing.T) {
	db := openTestDB(t, &models.User{}, &models.Product{}, &models.VerificationAnalytics{})
	svc := NewAnalyticsService(db)

	_, err := svc.GetManufacturerDashboard(uuid.New(),
		time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC))
	assert.Error(t, err)
}

func TestDashboardTopProducts(t *testing.T) {
	db := openTestDB(t, &models.User{}, &models.Product{}, &models.VerificationAnalytics{})
	svc := NewAnalyticsService(db)

	manufacturer := &models.User{
		Username:    "glenfoyle",
		Email:       "ops@glenfoyle.example",
		Role:        models.UserRoleManufacturer,
		CompanyName: "Glenfoyle Distillers",
		Status:      models.UserStatusActive,
	}
	require.NoError(t, db.Create(manufacturer).Error)

	for i, count := range []int64{3, 42, 7} {
		require.NoError(t, db.Create(&models.Product{
			ProductID:         "ST0A1B2C3D4" + string(rune('A'+i)),
			ManufacturerID:    manufacturer.ID,
			Name:              "Bottling " + string(rune('A'+i)),
			ManufacturingDate: time.Now(),
			Status:            models.ProductStatusActive,
			SecureTag: models.SecureTag{
				SecretKey: "S", TagID: "T" + string(rune('A'+i)), IsActive: true,
			},
			VerificationCount: count,
		}).Error)
	}

	dashboard, err := svc.GetManufacturerDashboard(manufacturer.ID, time.Time{}, time.Time{})
	require.NoError(t, err)

	require.Len(t, dashboard.TopProducts, 3)
	assert.Equal(t, int64(42), dashboard.TopProducts[0].VerificationCount)
	assert.Equal(t, int64(7), dashboard.TopProducts[1].VerificationCount)
	assert.Equal(t, int64(3), dashboard.TopProducts[2].VerificationCount)
}

func TestPlatformTotals(t *testing.T) {
	db := openTestDB(t, &models.User{}, &models.Product{}, &models.VerificationAnalytics{})
	svc := NewAnalyticsService(db)

	day := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.Create(&models.VerificationAnalytics{
		Date: day, ManufacturerID: uuid.New(), TotalScans: 4, QRScans: 4, AuthenticCount: 4,
	}).Error)
	require.NoError(t, db.Create(&models.VerificationAnalytics{
		Date: day, ManufacturerID: uuid.New(), TotalScans: 6, NFCScans: 6, TamperedCount: 6,
	}).Error)

	totals, err := svc.GetPlatformTotals(day.AddDate(0, 0, -1), day.AddDate(0, 0, 1))
	require.NoError(t, err)

	assert.Equal(t, int64(10), totals.TotalScans)
	assert.Equal(t, int64(4), totals.QRScans)
	assert.Equal(t, int64(6), totals.NFCScans)
	assert.Equal(t, int64(4), totals.AuthenticCount)
	assert.Equal(t, int64(6), totals.TamperedCount)
}
