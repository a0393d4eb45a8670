// internal/services/payment_proof_service.go
package services

import (
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/bayarlink/bayarlink-backend/internal/models"
	"github.com/bayarlink/bayarlink-backend/internal/utils"
)

const (
	proofFileFolder  = "payment-proofs"
	maxProofFileSize = 2 * 1024 * 1024 // 2MB
	maxProofNotes    = 1000
	maxAdminNotes    = 500
)

var allowedProofExtensions = []string{".jpg", ".jpeg", ".png"}

type PaymentProofService struct {
	db                  *gorm.DB
	storage             Storage
	clock               Clock
	notificationService *NotificationService
}

type ProofListFilter struct {
	utils.PaginationParams
	Status *models.ProofStatus
}

func NewPaymentProofService(db *gorm.DB, storage Storage, clock Clock, notificationService *NotificationService) *PaymentProofService {
	return &PaymentProofService{
		db:                  db,
		storage:             storage,
		clock:               clock,
		notificationService: notificationService,
	}
}

func (s *PaymentProofService) ListProofs(filter ProofListFilter) ([]models.PaymentProof, int64, error) {
	query := s.db.Model(&models.PaymentProof{})

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count payment proofs: %w", err)
	}

	var proofs []models.PaymentProof
	if err := utils.ApplyPagination(
		query.Preload("PaymentLink").Preload("PaymentLink.Product").Order("created_at DESC"),
		filter.PaginationParams,
	).Find(&proofs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch payment proofs: %w", err)
	}

	return proofs, total, nil
}

// SubmitProof accepts a buyer's transfer receipt against a pending,
// unexpired link. Nothing is written when a precondition fails, and the
// link's own status is never touched here.
func (s *PaymentProofService) SubmitProof(token string, file multipart.File, header *multipart.FileHeader, notes string) (*models.PaymentProof, error) {
	var link models.PaymentLink
	if err := s.db.First(&link, "token = ?", token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("payment link not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if link.Status != models.LinkStatusPending || link.IsExpired(s.clock()) {
		return nil, errors.New("payment link is no longer valid or has expired")
	}

	if err := validateProofFile(file, header); err != nil {
		return nil, err
	}

	if utf8.RuneCountInString(notes) > maxProofNotes {
		return nil, fmt.Errorf("notes must be at most %d characters", maxProofNotes)
	}

	result, err := s.storage.Upload(file, header, proofFileFolder)
	if err != nil {
		return nil, fmt.Errorf("failed to store proof file: %w", err)
	}

	proof := &models.PaymentProof{
		PaymentLinkID: link.ID,
		ProofFilePath: result.Key,
		Notes:         notes,
		Status:        models.ProofStatusPending,
	}

	if err := s.db.Create(proof).Error; err != nil {
		return nil, fmt.Errorf("failed to create payment proof: %w", err)
	}

	return proof, nil
}

func (s *PaymentProofService) GetProof(id uuid.UUID) (*models.PaymentProof, error) {
	var proof models.PaymentProof
	err := s.db.Preload("PaymentLink").Preload("PaymentLink.Product").
		First(&proof, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("payment proof not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &proof, nil
}

// ApproveProof marks the proof approved and the parent link paid in a single
// transaction; either both rows change or neither does. Only pending proofs
// on pending links can be approved.
func (s *PaymentProofService) ApproveProof(id uuid.UUID) (*models.PaymentProof, error) {
	var proof models.PaymentProof

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("PaymentLink").First(&proof, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New("payment proof not found")
			}
			return fmt.Errorf("database error: %w", err)
		}

		if proof.Status != models.ProofStatusPending {
			return errors.New("payment proof has already been reviewed")
		}

		if proof.PaymentLink.Status != models.LinkStatusPending {
			return errors.New("payment link is no longer pending")
		}

		now := s.clock()
		if err := tx.Model(&proof).Updates(map[string]interface{}{
			"status":      models.ProofStatusApproved,
			"approved_at": now,
		}).Error; err != nil {
			return fmt.Errorf("failed to approve payment proof: %w", err)
		}

		if err := tx.Model(&models.PaymentLink{}).
			Where("id = ?", proof.PaymentLinkID).
			Update("status", models.LinkStatusPaid).Error; err != nil {
			return fmt.Errorf("failed to mark payment link paid: %w", err)
		}

		proof.PaymentLink.Status = models.LinkStatusPaid
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.notificationService != nil {
		go func(p models.PaymentProof) {
			if err := s.notificationService.SendProofApprovedEmail(&p.PaymentLink); err != nil {
				logrus.WithError(err).Warn("Failed to send approval email")
			}
		}(proof)
	}

	return &proof, nil
}

// RejectProof marks the proof rejected with the admin's note. The link stays
// pending so the buyer can submit a new proof.
func (s *PaymentProofService) RejectProof(id uuid.UUID, adminNotes string) (*models.PaymentProof, error) {
	adminNotes = strings.TrimSpace(adminNotes)
	if adminNotes == "" {
		return nil, errors.New("admin notes are required when rejecting")
	}
	if utf8.RuneCountInString(adminNotes) > maxAdminNotes {
		return nil, fmt.Errorf("admin notes must be at most %d characters", maxAdminNotes)
	}

	var proof models.PaymentProof
	if err := s.db.Preload("PaymentLink").First(&proof, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("payment proof not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if proof.Status != models.ProofStatusPending {
		return nil, errors.New("payment proof has already been reviewed")
	}

	if err := s.db.Model(&proof).Updates(map[string]interface{}{
		"status":      models.ProofStatusRejected,
		"admin_notes": adminNotes,
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to reject payment proof: %w", err)
	}

	if s.notificationService != nil {
		go func(p models.PaymentProof) {
			if err := s.notificationService.SendProofRejectedEmail(&p.PaymentLink, p.AdminNotes); err != nil {
				logrus.WithError(err).Warn("Failed to send rejection email")
			}
		}(proof)
	}

	return &proof, nil
}

func validateProofFile(file multipart.File, header *multipart.FileHeader) error {
	if file == nil || header == nil {
		return errors.New("proof file is required")
	}

	if header.Size > maxProofFileSize {
		return fmt.Errorf("proof file size %d bytes exceeds maximum allowed size %d bytes", header.Size, maxProofFileSize)
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	allowed := false
	for _, allowedExt := range allowedProofExtensions {
		if ext == allowedExt {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("file type %s is not allowed, expected jpeg or png", ext)
	}

	// Check file signature in addition to the extension
	buffer := make([]byte, 8)
	n, err := file.Read(buffer)
	if err != nil {
		return fmt.Errorf("failed to read proof file: %w", err)
	}
	if _, err := file.Seek(0, 0); err != nil {
		return fmt.Errorf("failed to rewind proof file: %w", err)
	}

	if !isJPEG(buffer[:n]) && !isPNG(buffer[:n]) {
		return errors.New("proof file must be a JPEG or PNG image")
	}

	return nil
}

func isJPEG(buffer []byte) bool {
	return len(buffer) >= 3 && buffer[0] == 0xFF && buffer[1] == 0xD8 && buffer[2] == 0xFF
}

func isPNG(buffer []byte) bool {
	return len(buffer) >= 8 &&
		buffer[0] == 0x89 && buffer[1] == 0x50 && buffer[2] == 0x4E && buffer[3] == 0x47 &&
		buffer[4] == 0x0D && buffer[5] == 0x0A && buffer[6] == 0x1A && buffer[7] == 0x0A
}
