// internal/services/product_service_test.go
package services

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/sealtrace/sealtrace-backend/internal/models"
	"github.com/sealtrace/sealtrace-backend/internal/securetag"
	"github.com/sealtrace/sealtrace-backend/internal/utils"
)

type ProductServiceTestSuite struct {
	suite.Suite
	db           *gorm.DB
	svc          *ProductService
	manufacturer *models.User
	consumer     *models.User
}

func (s *ProductServiceTestSuite) SetupTest() {
	s.db = openTestDB(s.T(), &models.User{}, &models.Product{}, &models.VerificationRecord{})
	s.svc = NewProductService(s.db, nil)

	s.manufacturer = &models.User{
		Username:    "glenfoyle",
		Email:       "ops@glenfoyle.example",
		Role:        models.UserRoleManufacturer,
		CompanyName: "Glenfoyle Distillers",
		Status:      models.UserStatusActive,
	}
	s.Require().NoError(s.db.Create(s.manufacturer).Error)

	s.consumer = &models.User{
		Username: "shopper",
		Email:    "shopper@example.com",
		Role:     models.UserRoleConsumer,
		Status:   models.UserStatusActive,
	}
	s.Require().NoError(s.db.Create(s.consumer).Error)
}

func (s *ProductServiceTestSuite) createProduct() *CreatedProduct {
	created, err := s.svc.CreateProduct(s.manufacturer.ID, &CreateProductRequest{
		Name:              "Single Malt 12y",
		Category:          "spirits",
		BatchNumber:       "B-2025-031",
		Origin:            "Speyside",
		ManufacturingDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	s.Require().NoError(err)
	return created
}

func (s *ProductServiceTestSuite) TestCreateProductIssuesSecureTag() {
	created := s.createProduct()
	product := created.Product

	assert.True(s.T(), strings.HasPrefix(product.ProductID, "ST"))
	assert.NotContains(s.T(), product.ProductID, "-")
	assert.NotEmpty(s.T(), product.SecureTag.SecretKey)
	assert.NotEmpty(s.T(), product.SecureTag.TagID)
	assert.NotEmpty(s.T(), product.SecureTag.TamperSeal)
	assert.True(s.T(), product.SecureTag.IsActive)
	assert.Equal(s.T(), models.ProductStatusActive, product.Status)
	assert.Equal(s.T(), int64(0), product.VerificationCount)

	// The returned payload decodes back to the stored credentials
	productID, secretKey, err := securetag.DecodeQR(created.QRCode)
	s.Require().NoError(err)
	assert.Equal(s.T(), product.ProductID, productID)
	assert.Equal(s.T(), product.SecureTag.SecretKey, secretKey)
}

func (s *ProductServiceTestSuite) TestCreateProductUniqueIdentities() {
	first := s.createProduct()
	second := s.createProduct()

	assert.NotEqual(s.T(), first.Product.ProductID, second.Product.ProductID)
	assert.NotEqual(s.T(), first.Product.SecureTag.SecretKey, second.Product.SecureTag.SecretKey)
	assert.NotEqual(s.T(), first.Product.SecureTag.TagID, second.Product.SecureTag.TagID)
}

func (s *ProductServiceTestSuite) TestCreateProductRejectsConsumer() {
	_, err := s.svc.CreateProduct(s.consumer.ID, &CreateProductRequest{
		Name:              "Knockoff",
		ManufacturingDate: time.Now(),
	})
	assert.ErrorContains(s.T(), err, "manufacturer")
}

func (s *ProductServiceTestSuite) TestGetQRCodeOwnerOnly() {
	created := s.createProduct()

	code, err := s.svc.GetQRCode(created.Product.ID, s.manufacturer.ID)
	s.Require().NoError(err)
	assert.Equal(s.T(), created.QRCode, code)

	_, err = s.svc.GetQRCode(created.Product.ID, s.consumer.ID)
	assert.Error(s.T(), err)
}

func (s *ProductServiceTestSuite) TestUpdateStatusRecall() {
	created := s.createProduct()

	product, err := s.svc.UpdateStatus(created.Product.ID, s.manufacturer.ID, &UpdateProductStatusRequest{
		Status: models.ProductStatusRecalled,
		Reason: "contaminated batch",
	})
	s.Require().NoError(err)
	assert.Equal(s.T(), models.ProductStatusRecalled, product.Status)

	var stored models.Product
	s.Require().NoError(s.db.First(&stored, created.Product.ID).Error)
	assert.Equal(s.T(), models.ProductStatusRecalled, stored.Status)
	assert.Equal(s.T(), "contaminated batch", stored.Metadata["status_reason"])
}

func (s *ProductServiceTestSuite) TestUpdateStatusRejectsUnknownState() {
	created := s.createProduct()

	_, err := s.svc.UpdateStatus(created.Product.ID, s.manufacturer.ID, &UpdateProductStatusRequest{
		Status: models.ProductStatus("melted"),
	})
	assert.ErrorContains(s.T(), err, "invalid product status")
}

func (s *ProductServiceTestSuite) TestUpdateProductOwnership() {
	created := s.createProduct()

	_, err := s.svc.UpdateProduct(created.Product.ID, s.consumer.ID, &UpdateProductRequest{
		Name: "Renamed Malt",
	})
	assert.ErrorContains(s.T(), err, "unauthorized")

	updated, err := s.svc.UpdateProduct(created.Product.ID, s.manufacturer.ID, &UpdateProductRequest{
		Name: "Renamed Malt",
	})
	s.Require().NoError(err)
	assert.Equal(s.T(), "Renamed Malt", updated.Name)
}

func (s *ProductServiceTestSuite) TestDeleteProductIsSoft() {
	created := s.createProduct()

	s.Require().NoError(s.svc.DeleteProduct(created.Product.ID, s.manufacturer.ID))

	var count int64
	s.db.Model(&models.Product{}).Count(&count)
	assert.Equal(s.T(), int64(0), count)

	var total int64
	s.db.Unscoped().Model(&models.Product{}).Count(&total)
	assert.Equal(s.T(), int64(1), total)
}

func (s *ProductServiceTestSuite) TestSearchProductsByManufacturer() {
	s.createProduct()
	s.createProduct()

	other := &models.User{
		Username:    "othermaker",
		Email:       "other@example.com",
		Role:        models.UserRoleManufacturer,
		CompanyName: "Other Co",
		Status:      models.UserStatusActive,
	}
	s.Require().NoError(s.db.Create(other).Error)
	_, err := s.svc.CreateProduct(other.ID, &CreateProductRequest{
		Name:              "Other Gin",
		ManufacturingDate: time.Now(),
	})
	s.Require().NoError(err)

	products, total, err := s.svc.SearchProducts(ProductSearchParams{
		PaginationParams: utils.PaginationParams{Page: 1, Limit: 20, Order: "desc"},
		ManufacturerID:   &s.manufacturer.ID,
	})
	s.Require().NoError(err)
	assert.Equal(s.T(), int64(2), total)
	for _, p := range products {
		assert.Equal(s.T(), s.manufacturer.ID, p.ManufacturerID)
	}
}

func TestProductServiceSuite(t *testing.T) {
	suite.Run(t, new(ProductServiceTestSuite))
}
