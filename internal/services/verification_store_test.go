// internal/services/verification_store_test.go
package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sealtrace/sealtrace-backend/internal/models"
)

func seedStoreProduct(t *testing.T, store *GormVerificationStore) *models.Product {
	t.Helper()

	manufacturer := &models.User{
		Username:    "glenfoyle",
		Email:       "ops@glenfoyle.example",
		Role:        models.UserRoleManufacturer,
		CompanyName: "Glenfoyle Distillers",
		Status:      models.UserStatusActive,
	}
	require.NoError(t, store.db.Create(manufacturer).Error)

	product := &models.Product{
		ProductID:         "ST0A1B2C3D4E",
		ManufacturerID:    manufacturer.ID,
		Name:              "Single Malt 12y",
		ManufacturingDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Status:            models.ProductStatusActive,
		SecureTag: models.SecureTag{
			SecretKey: "SECRETKEY",
			TagID:     "NFCTAG99",
			IsActive:  true,
		},
	}
	require.NoError(t, store.db.Create(product).Error)
	return product
}

func TestGormStoreLookups(t *testing.T) {
	db := openTestDB(t, &models.User{}, &models.Product{}, &models.VerificationRecord{}, &models.VerificationAnalytics{})
	store := NewGormVerificationStore(db)
	product := seedStoreProduct(t, store)

	found, err := store.GetProductByProductID(product.ProductID)
	require.NoError(t, err)
	assert.Equal(t, product.ID, found.ID)
	assert.Equal(t, "Glenfoyle Distillers", found.Manufacturer.CompanyName)

	found, err = store.GetProductByTagID("NFCTAG99")
	require.NoError(t, err)
	assert.Equal(t, product.ID, found.ID)

	_, err = store.GetProductByProductID("STDOESNOTEXIST")
	assert.ErrorIs(t, err, ErrProductNotFound)

	_, err = store.GetProductByTagID("nope")
	assert.ErrorIs(t, err, ErrInvalidTag)
}

func TestGormStoreAppendVerification(t *testing.T) {
	db := openTestDB(t, &models.User{}, &models.Product{}, &models.VerificationRecord{}, &models.VerificationAnalytics{})
	store := NewGormVerificationStore(db)
	product := seedStoreProduct(t, store)

	verifiedAt := time.Now().UTC()
	for i := 0; i < 3; i++ {
		err := store.AppendVerification(&models.VerificationRecord{
			ProductRef: product.ID,
			Method:     models.VerificationMethodQR,
			Outcome:    models.OutcomeAuthentic,
			Confidence: 100,
			VerifiedAt: verifiedAt,
		})
		require.NoError(t, err)
	}

	var stored models.Product
	require.NoError(t, db.First(&stored, product.ID).Error)
	assert.Equal(t, int64(3), stored.VerificationCount)
	require.NotNil(t, stored.LastVerifiedAt)

	var count int64
	db.Model(&models.VerificationRecord{}).Where("product_ref = ?", product.ID).Count(&count)
	assert.Equal(t, int64(3), count)
}

func TestGormStoreBumpAnalytics(t *testing.T) {
	db := openTestDB(t, &models.User{}, &models.Product{}, &models.VerificationRecord{}, &models.VerificationAnalytics{})
	store := NewGormVerificationStore(db)
	product := seedStoreProduct(t, store)

	day := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.BumpAnalytics(product.ManufacturerID, day, models.VerificationMethodQR, models.OutcomeAuthentic))
	require.NoError(t, store.BumpAnalytics(product.ManufacturerID, day, models.VerificationMethodNFC, models.OutcomeCounterfeit))
	require.NoError(t, store.BumpAnalytics(product.ManufacturerID, day, models.VerificationMethodQR, models.OutcomeAuthentic))

	var buckets []models.VerificationAnalytics
	require.NoError(t, db.Find(&buckets).Error)
	require.Len(t, buckets, 1)

	bucket := buckets[0]
	assert.Equal(t, int64(3), bucket.TotalScans)
	assert.Equal(t, int64(2), bucket.QRScans)
	assert.Equal(t, int64(1), bucket.NFCScans)
	assert.Equal(t, int64(2), bucket.AuthenticCount)
	assert.Equal(t, int64(1), bucket.CounterfeitCount)

	// A different day gets its own bucket
	nextDay := day.AddDate(0, 0, 1)
	require.NoError(t, store.BumpAnalytics(product.ManufacturerID, nextDay, models.VerificationMethodQR, models.OutcomeExpired))

	require.NoError(t, db.Find(&buckets).Error)
	assert.Len(t, buckets, 2)
}

func TestGormStoreUnknownOutcomeRejected(t *testing.T) {
	db := openTestDB(t, &models.User{}, &models.Product{}, &models.VerificationRecord{}, &models.VerificationAnalytics{})
	store := NewGormVerificationStore(db)
	product := seedStoreProduct(t, store)

	err := store.BumpAnalytics(product.ManufacturerID, time.Now(), models.VerificationMethodQR, models.VerificationOutcome("bogus"))
	assert.Error(t, err)
}
