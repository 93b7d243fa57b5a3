// internal/handlers/verification_test.go
package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sealtrace/sealtrace-backend/internal/models"
	"github.com/sealtrace/sealtrace-backend/internal/securetag"
	"github.com/sealtrace/sealtrace-backend/internal/services"
)

type stubVerificationStore struct {
	product *models.Product
}

func (s *stubVerificationStore) GetProductByProductID(productID string) (*models.Product, error) {
	if s.product != nil && s.product.ProductID == productID {
		return s.product, nil
	}
	return nil, services.ErrProductNotFound
}

func (s *stubVerificationStore) GetProductByTagID(tagID string) (*models.Product, error) {
	if s.product != nil && s.product.SecureTag.TagID == tagID {
		return s.product, nil
	}
	return nil, services.ErrInvalidTag
}

func (s *stubVerificationStore) AppendVerification(record *models.VerificationRecord) error {
	return nil
}

func (s *stubVerificationStore) BumpAnalytics(manufacturerID uuid.UUID, day time.Time, method models.VerificationMethod, outcome models.VerificationOutcome) error {
	return nil
}

func setupVerifyRouter(product *models.Product) *gin.Engine {
	gin.SetMode(gin.TestMode)

	store := &stubVerificationStore{product: product}
	svc := services.NewVerificationService(store, nil)
	handler := NewVerificationHandler(svc)

	r := gin.New()
	r.POST("/verify/qr", handler.VerifyQR)
	r.POST("/verify/nfc", handler.VerifyNFC)
	return r
}

func verifyProduct() *models.Product {
	return &models.Product{
		BaseModel:         models.BaseModel{ID: uuid.New()},
		ProductID:         "ST0A1B2C3D4E",
		ManufacturerID:    uuid.New(),
		Name:              "Single Malt 12y",
		ManufacturingDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Status:            models.ProductStatusActive,
		SecureTag: models.SecureTag{
			SecretKey: "SECRETKEY",
			TagID:     "NFCTAG99",
			IsActive:  true,
		},
		Manufacturer: models.User{
			Username:    "glenfoyle",
			CompanyName: "Glenfoyle Distillers",
			Email:       "ops@glenfoyle.example",
		},
	}
}

func postJSON(t *testing.T, r *gin.Engine, path string, payload map[string]interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req, _ := http.NewRequest("POST", path, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestVerifyQREndpointAuthentic(t *testing.T) {
	product := verifyProduct()
	r := setupVerifyRouter(product)

	w := postJSON(t, r, "/verify/qr", map[string]interface{}{
		"code": securetag.EncodeQR(product.ProductID, "SECRETKEY"),
	})

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Success bool                        `json:"success"`
		Data    services.VerificationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(t, response.Success)
	assert.Equal(t, models.OutcomeAuthentic, response.Data.Result)
	assert.Equal(t, 100, response.Data.Confidence)
	require.NotNil(t, response.Data.Product)
	assert.Equal(t, "Glenfoyle Distillers", response.Data.Product.Manufacturer)
}

func TestVerifyQREndpointMalformedCode(t *testing.T) {
	r := setupVerifyRouter(verifyProduct())

	w := postJSON(t, r, "/verify/qr", map[string]interface{}{
		"code": "definitely-not-a-tag",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var result services.VerificationResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, models.OutcomeCounterfeit, result.Result)
	assert.Zero(t, result.Confidence)
	assert.Nil(t, result.Product)
}

func TestVerifyQREndpointUnknownProduct(t *testing.T) {
	r := setupVerifyRouter(verifyProduct())

	w := postJSON(t, r, "/verify/qr", map[string]interface{}{
		"code": "ST-STFFFFFFFFFF-SECRETKEY",
	})

	assert.Equal(t, http.StatusNotFound, w.Code)

	var result services.VerificationResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, models.OutcomeCounterfeit, result.Result)
}

func TestVerifyQREndpointCredentialMismatch(t *testing.T) {
	product := verifyProduct()
	r := setupVerifyRouter(product)

	w := postJSON(t, r, "/verify/qr", map[string]interface{}{
		"code": securetag.EncodeQR(product.ProductID, "FORGED"),
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var result services.VerificationResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, models.OutcomeCounterfeit, result.Result)
}

func TestVerifyQREndpointMissingCode(t *testing.T) {
	r := setupVerifyRouter(verifyProduct())

	w := postJSON(t, r, "/verify/qr", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVerifyNFCEndpoint(t *testing.T) {
	product := verifyProduct()
	r := setupVerifyRouter(product)

	w := postJSON(t, r, "/verify/nfc", map[string]interface{}{
		"tag_id": "NFCTAG99",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w = postJSON(t, r, "/verify/nfc", map[string]interface{}{
		"tag_id": "unknown-tag",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
