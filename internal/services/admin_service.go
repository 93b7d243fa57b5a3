// internal/services/admin_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/sealtrace/sealtrace-backend/internal/models"
	"github.com/sealtrace/sealtrace-backend/internal/utils"
)

type AdminService struct {
	db            *gorm.DB
	notifications NotificationSink
	analytics     *AnalyticsService
}

type AdminDashboardStats struct {
	TotalUsers         int64           `json:"total_users"`
	ActiveUsers        int64           `json:"active_users"`
	NewUsersThisMonth  int64           `json:"new_users_this_month"`
	TotalManufacturers int64           `json:"total_manufacturers"`
	TotalProducts      int64           `json:"total_products"`
	ActiveProducts     int64           `json:"active_products"`
	RecalledProducts   int64           `json:"recalled_products"`
	TotalVerifications int64           `json:"total_verifications"`
	Last30Days         AnalyticsTotals `json:"last_30_days"`
	UserGrowth         float64         `json:"user_growth"`
}

type AdminUserFilter struct {
	utils.PaginationParams
	Role          *models.UserRole   `json:"role,omitempty"`
	Status        *models.UserStatus `json:"status,omitempty"`
	CreatedAfter  *time.Time         `json:"created_after,omitempty"`
	CreatedBefore *time.Time         `json:"created_before,omitempty"`
}

func NewAdminService(db *gorm.DB, notifications NotificationSink, analytics *AnalyticsService) *AdminService {
	return &AdminService{
		db:            db,
		notifications: notifications,
		analytics:     analytics,
	}
}

// Dashboard Statistics
func (s *AdminService) GetDashboardStats() (*AdminDashboardStats, error) {
	stats := &AdminDashboardStats{}
	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	lastMonthStart := monthStart.AddDate(0, -1, 0)

	// User statistics
	s.db.Model(&models.User{}).Count(&stats.TotalUsers)
	s.db.Model(&models.User{}).Where("status = ?", models.UserStatusActive).Count(&stats.ActiveUsers)
	s.db.Model(&models.User{}).Where("created_at >= ?", monthStart).Count(&stats.NewUsersThisMonth)
	s.db.Model(&models.User{}).Where("role = ?", models.UserRoleManufacturer).Count(&stats.TotalManufacturers)

	// Product statistics
	s.db.Model(&models.Product{}).Count(&stats.TotalProducts)
	s.db.Model(&models.Product{}).Where("status = ?", models.ProductStatusActive).Count(&stats.ActiveProducts)
	s.db.Model(&models.Product{}).Where("status = ?", models.ProductStatusRecalled).Count(&stats.RecalledProducts)

	// Ledger statistics
	s.db.Model(&models.VerificationRecord{}).Count(&stats.TotalVerifications)

	if s.analytics != nil {
		totals, err := s.analytics.GetPlatformTotals(now.AddDate(0, 0, -30), now)
		if err != nil {
			return nil, err
		}
		stats.Last30Days = *totals
	}

	// Growth calculations
	var lastMonthUsers int64
	s.db.Model(&models.User{}).
		Where("created_at >= ? AND created_at < ?", lastMonthStart, monthStart).
		Count(&lastMonthUsers)

	if lastMonthUsers > 0 {
		stats.UserGrowth = float64(stats.NewUsersThisMonth-lastMonthUsers) / float64(lastMonthUsers) * 100
	}

	return stats, nil
}

// User Management
func (s *AdminService) GetUsers(filter AdminUserFilter) ([]models.User, int64, error) {
	query := s.db.Model(&models.User{})

	// Apply filters
	if filter.Role != nil {
		query = query.Where("role = ?", *filter.Role)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Search != "" {
		searchTerm := "%" + filter.Search + "%"
		query = query.Where("username ILIKE ? OR email ILIKE ? OR company_name ILIKE ?",
			searchTerm, searchTerm, searchTerm)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at <= ?", *filter.CreatedBefore)
	}

	// Get total count
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	// Apply sorting and pagination
	allowedSortFields := []string{"created_at", "updated_at", "username", "email", "role", "status"}
	query = utils.ApplySort(query, filter.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, filter.PaginationParams)

	// Execute query
	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch users: %w", err)
	}

	return users, total, nil
}

func (s *AdminService) UpdateUserStatus(userID uuid.UUID, status models.UserStatus, adminID uuid.UUID, reason string) error {
	switch status {
	case models.UserStatusActive, models.UserStatusSuspended, models.UserStatusBanned:
	default:
		return errors.New("invalid user status")
	}

	// Find user
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("user not found")
		}
		return fmt.Errorf("database error: %w", err)
	}

	// Admins can only change their own status
	if user.Role == models.UserRoleAdmin && user.ID != adminID {
		return errors.New("cannot modify admin user status")
	}

	oldStatus := user.Status
	user.Status = status

	if err := s.db.Save(&user).Error; err != nil {
		return fmt.Errorf("failed to update user status: %w", err)
	}

	// Send notification to user
	go s.sendUserStatusNotification(&user, oldStatus, reason)

	return nil
}

func (s *AdminService) sendUserStatusNotification(user *models.User, oldStatus models.UserStatus, reason string) {
	if s.notifications == nil {
		return
	}

	if err := s.notifications.Send("user_status_change", user.Email, map[string]interface{}{
		"Username":  user.Username,
		"OldStatus": string(oldStatus),
		"NewStatus": string(user.Status),
		"Reason":    reason,
	}); err != nil {
		logrus.WithError(err).WithField("email", user.Email).Warn("Failed to send status change email")
	}
}
