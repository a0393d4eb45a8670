// internal/services/product_service.go
package services

import (
	"errors"
	"fmt"
	"mime/multipart"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/bayarlink/bayarlink-backend/internal/models"
	"github.com/bayarlink/bayarlink-backend/internal/utils"
)

const productFileFolder = "products"

type ProductService struct {
	db      *gorm.DB
	storage Storage
}

type CreateProductRequest struct {
	Name        string   `form:"name" json:"name" validate:"required,max=255"`
	Description string   `form:"description" json:"description" validate:"required"`
	Price       *float64 `form:"price" json:"price" validate:"required,gte=0"`
	IsActive    *bool    `form:"is_active" json:"is_active,omitempty"`
}

type UpdateProductRequest struct {
	Name        string   `form:"name" json:"name" validate:"required,max=255"`
	Description string   `form:"description" json:"description" validate:"required"`
	Price       *float64 `form:"price" json:"price" validate:"required,gte=0"`
	IsActive    *bool    `form:"is_active" json:"is_active,omitempty"`
}

func NewProductService(db *gorm.DB, storage Storage) *ProductService {
	return &ProductService{
		db:      db,
		storage: storage,
	}
}

func (s *ProductService) ListProducts(params utils.PaginationParams) ([]models.Product, int64, error) {
	query := s.db.Model(&models.Product{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	var products []models.Product
	if err := utils.ApplyPagination(query.Order("created_at DESC"), params).
		Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch products: %w", err)
	}

	return products, total, nil
}

// GetProduct loads a product together with its five most recent payment links.
func (s *ProductService) GetProduct(id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := s.db.Preload("PaymentLinks", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at DESC").Limit(5)
	}).First(&product, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("product not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &product, nil
}

func (s *ProductService) CreateProduct(req *CreateProductRequest, file multipart.File, header *multipart.FileHeader) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
		IsActive:    true,
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if file != nil {
		result, err := s.storage.Upload(file, header, productFileFolder)
		if err != nil {
			return nil, fmt.Errorf("failed to store product file: %w", err)
		}
		product.FilePath = result.Key
	}

	if err := s.db.Create(product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

// UpdateProduct replaces the product's fields. When a new file is supplied the
// previous stored file is deleted first; a failed delete is logged and the
// stale blob is left behind.
func (s *ProductService) UpdateProduct(id uuid.UUID, req *UpdateProductRequest, file multipart.File, header *multipart.FileHeader) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}

	var product models.Product
	if err := s.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("product not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	updates := map[string]interface{}{
		"name":        req.Name,
		"description": req.Description,
		"price":       *req.Price,
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if file != nil {
		if product.FilePath != "" {
			if err := s.storage.Delete(product.FilePath); err != nil {
				logrus.WithError(err).WithField("key", product.FilePath).
					Warn("Failed to delete previous product file")
			}
		}

		result, err := s.storage.Upload(file, header, productFileFolder)
		if err != nil {
			return nil, fmt.Errorf("failed to store product file: %w", err)
		}
		updates["file_path"] = result.Key
	}

	if err := s.db.Model(&product).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return &product, nil
}

// DeleteProduct removes the stored file, then the product row together with
// its payment links and their proofs.
func (s *ProductService) DeleteProduct(id uuid.UUID) error {
	var product models.Product
	if err := s.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("product not found")
		}
		return fmt.Errorf("database error: %w", err)
	}

	if product.FilePath != "" {
		if err := s.storage.Delete(product.FilePath); err != nil {
			logrus.WithError(err).WithField("key", product.FilePath).
				Warn("Failed to delete product file")
		}
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("payment_link_id IN (?)",
			tx.Model(&models.PaymentLink{}).Select("id").Where("product_id = ?", id),
		).Delete(&models.PaymentProof{}).Error; err != nil {
			return fmt.Errorf("failed to delete payment proofs: %w", err)
		}

		if err := tx.Where("product_id = ?", id).Delete(&models.PaymentLink{}).Error; err != nil {
			return fmt.Errorf("failed to delete payment links: %w", err)
		}

		if err := tx.Delete(&product).Error; err != nil {
			return fmt.Errorf("failed to delete product: %w", err)
		}

		return nil
	})
}
