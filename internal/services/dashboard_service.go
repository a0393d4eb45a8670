// internal/services/dashboard_service.go
package services

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/bayarlink/bayarlink-backend/internal/models"
)

type DashboardService struct {
	db *gorm.DB
}

type DashboardStats struct {
	TotalProducts     int64   `json:"total_products"`
	ActiveProducts    int64   `json:"active_products"`
	TotalPaymentLinks int64   `json:"total_payment_links"`
	PendingPayments   int64   `json:"pending_payments"`
	PaidPayments      int64   `json:"paid_payments"`
	PendingProofs     int64   `json:"pending_proofs"`
	TotalRevenue      float64 `json:"total_revenue"`
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

func (s *DashboardService) GetStats() (*DashboardStats, error) {
	stats := &DashboardStats{}

	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&stats.TotalProducts, s.db.Model(&models.Product{})},
		{&stats.ActiveProducts, s.db.Model(&models.Product{}).Where("is_active = ?", true)},
		{&stats.TotalPaymentLinks, s.db.Model(&models.PaymentLink{})},
		{&stats.PendingPayments, s.db.Model(&models.PaymentLink{}).Where("status = ?", models.LinkStatusPending)},
		{&stats.PaidPayments, s.db.Model(&models.PaymentLink{}).Where("status = ?", models.LinkStatusPaid)},
		{&stats.PendingProofs, s.db.Model(&models.PaymentProof{}).Where("status = ?", models.ProofStatusPending)},
	}

	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return nil, fmt.Errorf("failed to compute dashboard stats: %w", err)
		}
	}

	// Revenue is the sum of product prices over paid links
	err := s.db.Model(&models.PaymentLink{}).
		Joins("JOIN products ON products.id = payment_links.product_id").
		Where("payment_links.status = ?", models.LinkStatusPaid).
		Select("COALESCE(SUM(products.price), 0)").
		Scan(&stats.TotalRevenue).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute total revenue: %w", err)
	}

	return stats, nil
}

// GetRecentActivity returns the latest links and pending proofs shown on the
// admin dashboard.
func (s *DashboardService) GetRecentActivity() ([]models.PaymentLink, []models.PaymentProof, error) {
	var recentLinks []models.PaymentLink
	if err := s.db.Preload("Product").
		Order("created_at DESC").Limit(5).
		Find(&recentLinks).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to fetch recent payment links: %w", err)
	}

	var pendingProofs []models.PaymentProof
	if err := s.db.Preload("PaymentLink").Preload("PaymentLink.Product").
		Where("status = ?", models.ProofStatusPending).
		Order("created_at DESC").Limit(5).
		Find(&pendingProofs).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to fetch pending proofs: %w", err)
	}

	return recentLinks, pendingProofs, nil
}
