// internal/services/payment_link_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/bayarlink/bayarlink-backend/internal/models"
	"github.com/bayarlink/bayarlink-backend/internal/utils"
)

type PaymentLinkService struct {
	db                  *gorm.DB
	clock               Clock
	expiry              time.Duration
	notificationService *NotificationService
}

type CreatePaymentLinkRequest struct {
	ProductID     uuid.UUID `json:"product_id" validate:"required"`
	CustomerName  string    `json:"customer_name" validate:"required,max=255"`
	CustomerEmail string    `json:"customer_email" validate:"required,email,max=255"`
}

func NewPaymentLinkService(db *gorm.DB, clock Clock, expiryDays int, notificationService *NotificationService) *PaymentLinkService {
	return &PaymentLinkService{
		db:                  db,
		clock:               clock,
		expiry:              time.Duration(expiryDays) * 24 * time.Hour,
		notificationService: notificationService,
	}
}

func (s *PaymentLinkService) ListLinks(params utils.PaginationParams) ([]models.PaymentLink, int64, error) {
	query := s.db.Model(&models.PaymentLink{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count payment links: %w", err)
	}

	var links []models.PaymentLink
	if err := utils.ApplyPagination(query.Preload("Product").Order("created_at DESC"), params).
		Find(&links).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch payment links: %w", err)
	}

	return links, total, nil
}

// CreateLink mints a pending, token-addressed link for an existing product.
// The token and expiry are assigned server-side; callers cannot override them.
func (s *PaymentLinkService) CreateLink(req *CreatePaymentLinkRequest) (*models.PaymentLink, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	var product models.Product
	if err := s.db.First(&product, "id = ?", req.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("product not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	link := &models.PaymentLink{
		ProductID:     req.ProductID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		Status:        models.LinkStatusPending,
		ExpiresAt:     s.clock().Add(s.expiry),
	}

	if err := s.db.Create(link).Error; err != nil {
		return nil, fmt.Errorf("failed to create payment link: %w", err)
	}

	link.Product = product

	if s.notificationService != nil {
		go func(l models.PaymentLink) {
			if err := s.notificationService.SendPaymentLinkEmail(&l); err != nil {
				logrus.WithError(err).Warn("Failed to send payment link email")
			}
		}(*link)
	}

	return link, nil
}

// GetLink loads a link with its product and proofs, materializing expiry.
func (s *PaymentLinkService) GetLink(id uuid.UUID) (*models.PaymentLink, error) {
	var link models.PaymentLink
	err := s.db.Preload("Product").
		Preload("PaymentProofs", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		First(&link, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("payment link not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := s.materializeExpiry(&link); err != nil {
		return nil, err
	}

	return &link, nil
}

// GetLinkByToken is the buyer-facing lookup backing the payment page.
func (s *PaymentLinkService) GetLinkByToken(token string) (*models.PaymentLink, error) {
	var link models.PaymentLink
	err := s.db.Preload("Product").First(&link, "token = ?", token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("payment link not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := s.materializeExpiry(&link); err != nil {
		return nil, err
	}

	return &link, nil
}

// GetPaidLinkByToken returns the link only when its stored status is paid.
// Expiry is deliberately not re-checked here; the download gate trusts the
// literal status column.
func (s *PaymentLinkService) GetPaidLinkByToken(token string) (*models.PaymentLink, error) {
	var link models.PaymentLink
	err := s.db.Preload("Product").
		Where("token = ? AND status = ?", token, models.LinkStatusPaid).
		First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("payment link not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &link, nil
}

// DeleteLink hard-deletes the link and its proofs.
func (s *PaymentLinkService) DeleteLink(id uuid.UUID) error {
	var link models.PaymentLink
	if err := s.db.First(&link, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("payment link not found")
		}
		return fmt.Errorf("database error: %w", err)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("payment_link_id = ?", id).Delete(&models.PaymentProof{}).Error; err != nil {
			return fmt.Errorf("failed to delete payment proofs: %w", err)
		}

		if err := tx.Delete(&link).Error; err != nil {
			return fmt.Errorf("failed to delete payment link: %w", err)
		}

		return nil
	})
}

// materializeExpiry persists the expired status for pending links whose
// expiry has passed. Reading an already-expired link is a no-op, so the
// side-effecting read stays idempotent. Paid and cancelled links keep their
// status even past expiry.
func (s *PaymentLinkService) materializeExpiry(link *models.PaymentLink) error {
	if link.Status != models.LinkStatusPending || !link.IsExpired(s.clock()) {
		return nil
	}

	if err := s.db.Model(link).Update("status", models.LinkStatusExpired).Error; err != nil {
		return fmt.Errorf("failed to expire payment link: %w", err)
	}

	link.Status = models.LinkStatusExpired
	return nil
}
