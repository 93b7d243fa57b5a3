// internal/services/product_service.go
package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/sealtrace/sealtrace-backend/internal/models"
	"github.com/sealtrace/sealtrace-backend/internal/securetag"
	"github.com/sealtrace/sealtrace-backend/internal/utils"
)

type ProductService struct {
	db            *gorm.DB
	notifications NotificationSink
}

type CreateProductRequest struct {
	Name              string                 `json:"name" validate:"required,min=3,max=255"`
	Description       string                 `json:"description,omitempty"`
	Category          string                 `json:"category,omitempty" validate:"omitempty,max=100"`
	BatchNumber       string                 `json:"batch_number,omitempty" validate:"omitempty,max=100"`
	Origin            string                 `json:"origin,omitempty" validate:"omitempty,max=255"`
	ManufacturingDate time.Time              `json:"manufacturing_date" validate:"required"`
	ExpiryDate        *time.Time             `json:"expiry_date,omitempty"`
	Images            []string               `json:"images,omitempty"`
	Metadata          map[string]interface{} `json:"metadata,omitempty"`
}

type UpdateProductRequest struct {
	Name        string                 `json:"name,omitempty" validate:"omitempty,min=3,max=255"`
	Description string                 `json:"description,omitempty"`
	Category    string                 `json:"category,omitempty" validate:"omitempty,max=100"`
	BatchNumber string                 `json:"batch_number,omitempty" validate:"omitempty,max=100"`
	Origin      string                 `json:"origin,omitempty" validate:"omitempty,max=255"`
	ExpiryDate  *time.Time             `json:"expiry_date,omitempty"`
	Images      []string               `json:"images,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

type UpdateProductStatusRequest struct {
	Status models.ProductStatus `json:"status" validate:"required"`
	Reason string               `json:"reason,omitempty" validate:"omitempty,max=500"`
}

type ProductSearchParams struct {
	utils.PaginationParams
	ManufacturerID *uuid.UUID            `json:"manufacturer_id,omitempty"`
	Status         *models.ProductStatus `json:"status,omitempty"`
}

// CreatedProduct bundles a freshly registered product with its scannable
// payload. The payload is returned exactly once here and on explicit owner
// re-issue; it embeds the secret key.
type CreatedProduct struct {
	Product *models.Product `json:"product"`
	QRCode  string          `json:"qr_code"`
}

func NewProductService(db *gorm.DB, notifications NotificationSink) *ProductService {
	return &ProductService{
		db:            db,
		notifications: notifications,
	}
}

func (s *ProductService) CreateProduct(manufacturerID uuid.UUID, req *CreateProductRequest) (*CreatedProduct, error) {
	// Validate request
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	// Verify manufacturer exists and is active
	var manufacturer models.User
	if err := s.db.First(&manufacturer, manufacturerID).Error; err != nil {
		return nil, fmt.Errorf("manufacturer not found: %w", err)
	}

	if manufacturer.Status != models.UserStatusActive {
		return nil, errors.New("manufacturer account is not active")
	}

	if manufacturer.Role != models.UserRoleManufacturer {
		return nil, errors.New("only manufacturer accounts can register products")
	}

	// Issue identity and credentials
	productID, err := securetag.NewProductID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate product identifier: %w", err)
	}

	creds, err := securetag.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate secure tag: %w", err)
	}

	product := &models.Product{
		ProductID:         productID,
		ManufacturerID:    manufacturerID,
		Name:              req.Name,
		Description:       req.Description,
		Category:          req.Category,
		BatchNumber:       req.BatchNumber,
		Origin:            req.Origin,
		ManufacturingDate: req.ManufacturingDate,
		ExpiryDate:        req.ExpiryDate,
		Status:            models.ProductStatusActive,
		SecureTag: models.SecureTag{
			SecretKey:  creds.SecretKey,
			TagID:      creds.TagID,
			TamperSeal: creds.TamperSeal,
			IsActive:   true,
		},
		Images:   req.Images,
		Metadata: models.JSONB(req.Metadata),
	}

	if err := s.db.Create(product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	product.Manufacturer = manufacturer

	return &CreatedProduct{
		Product: product,
		QRCode:  securetag.EncodeQR(product.ProductID, creds.SecretKey),
	}, nil
}

func (s *ProductService) GetProduct(id uuid.UUID, requesterID uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := s.db.Preload("Manufacturer").First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("product not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := s.authorizeOwner(&product, requesterID); err != nil {
		return nil, err
	}

	return &product, nil
}

func (s *ProductService) UpdateProduct(id uuid.UUID, manufacturerID uuid.UUID, req *UpdateProductRequest) (*models.Product, error) {
	// Validate request
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	// Find and verify ownership
	var product models.Product
	if err := s.db.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("product not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if product.ManufacturerID != manufacturerID {
		return nil, errors.New("unauthorized to update this product")
	}

	// Prepare updates
	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.Category != "" {
		updates["category"] = req.Category
	}
	if req.BatchNumber != "" {
		updates["batch_number"] = req.BatchNumber
	}
	if req.Origin != "" {
		updates["origin"] = req.Origin
	}
	if req.ExpiryDate != nil {
		updates["expiry_date"] = req.ExpiryDate
	}
	if req.Images != nil {
		updates["images"] = pq.StringArray(req.Images)
	}
	if req.Metadata != nil {
		updates["metadata"] = models.JSONB(req.Metadata)
	}

	// Apply updates
	if err := s.db.Model(&product).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.db.Preload("Manufacturer").First(&product, id)

	return &product, nil
}

// UpdateStatus moves a product through its lifecycle. Products are never
// physically deleted; recall/expire/return/destroy all travel through here.
func (s *ProductService) UpdateStatus(id uuid.UUID, manufacturerID uuid.UUID, req *UpdateProductStatusRequest) (*models.Product, error) {
	// Validate request
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	switch req.Status {
	case models.ProductStatusActive, models.ProductStatusRecalled, models.ProductStatusExpired,
		models.ProductStatusReturned, models.ProductStatusDestroyed:
	default:
		return nil, errors.New("invalid product status")
	}

	var product models.Product
	if err := s.db.Preload("Manufacturer").First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("product not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if product.ManufacturerID != manufacturerID {
		return nil, errors.New("unauthorized to update this product")
	}

	updates := map[string]interface{}{"status": req.Status}
	if req.Reason != "" {
		if product.Metadata == nil {
			product.Metadata = make(models.JSONB)
		}
		product.Metadata["status_reason"] = req.Reason
		updates["metadata"] = product.Metadata
	}

	if err := s.db.Model(&product).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update product status: %w", err)
	}

	product.Status = req.Status

	if req.Status == models.ProductStatusRecalled && s.notifications != nil {
		go func() {
			if err := s.notifications.Send("product_recalled", product.Manufacturer.Email, map[string]interface{}{
				"ManufacturerName": manufacturerName(&product),
				"ProductName":      product.Name,
				"ProductID":        product.ProductID,
			}); err != nil {
				logrus.WithError(err).WithField("product_id", product.ProductID).
					Warn("Failed to send recall confirmation")
			}
		}()
	}

	return &product, nil
}

func (s *ProductService) DeleteProduct(id uuid.UUID, manufacturerID uuid.UUID) error {
	// Find and verify ownership
	var product models.Product
	if err := s.db.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("product not found")
		}
		return fmt.Errorf("database error: %w", err)
	}

	if product.ManufacturerID != manufacturerID {
		return errors.New("unauthorized to delete this product")
	}

	// Soft delete; the verification ledger keeps referencing the row
	if err := s.db.Delete(&product).Error; err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	return nil
}

func (s *ProductService) SearchProducts(params ProductSearchParams) ([]models.Product, int64, error) {
	query := s.db.Model(&models.Product{}).Preload("Manufacturer")

	// Apply filters
	if params.ManufacturerID != nil {
		query = query.Where("manufacturer_id = ?", *params.ManufacturerID)
	}

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}

	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(product_id) LIKE ?",
			searchTerm, searchTerm, searchTerm)
	}

	// Get total count
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	// Apply sorting and pagination
	allowedSortFields := []string{"created_at", "updated_at", "name", "status", "verification_count"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	// Execute query
	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch products: %w", err)
	}

	return products, total, nil
}

// GetQRCode re-issues the scannable payload for an owned product.
func (s *ProductService) GetQRCode(id uuid.UUID, manufacturerID uuid.UUID) (string, error) {
	var product models.Product
	if err := s.db.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", errors.New("product not found")
		}
		return "", fmt.Errorf("database error: %w", err)
	}

	if product.ManufacturerID != manufacturerID {
		return "", errors.New("unauthorized to access this product's code")
	}

	return securetag.EncodeQR(product.ProductID, product.SecureTag.SecretKey), nil
}

// GetProductVerifications returns the ledger history for an owned product.
func (s *ProductService) GetProductVerifications(id uuid.UUID, requesterID uuid.UUID, params utils.PaginationParams) ([]models.VerificationRecord, int64, error) {
	var product models.Product
	if err := s.db.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, errors.New("product not found")
		}
		return nil, 0, fmt.Errorf("database error: %w", err)
	}

	if err := s.authorizeOwner(&product, requesterID); err != nil {
		return nil, 0, err
	}

	query := s.db.Model(&models.VerificationRecord{}).Where("product_ref = ?", product.ID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count verifications: %w", err)
	}

	var records []models.VerificationRecord
	if err := utils.ApplyPagination(query.Order("verified_at DESC"), params).Find(&records).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch verifications: %w", err)
	}

	return records, total, nil
}

func (s *ProductService) authorizeOwner(product *models.Product, requesterID uuid.UUID) error {
	if product.ManufacturerID == requesterID {
		return nil
	}

	var requester models.User
	if err := s.db.First(&requester, requesterID).Error; err != nil || requester.Role != models.UserRoleAdmin {
		return errors.New("product not found")
	}

	return nil
}
