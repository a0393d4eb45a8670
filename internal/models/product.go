// internal/models/product.go
package models

// Product is a digital good sold through payment links. FilePath points at the
// downloadable blob in storage; it is empty for products without a file.
type Product struct {
	BaseModel
	Name        string  `json:"name" gorm:"size:255;not null"`
	Description string  `json:"description" gorm:"type:text;not null"`
	Price       float64 `json:"price" gorm:"type:decimal(12,2);not null"`
	FilePath    string  `json:"file_path" gorm:"size:500"`
	IsActive    bool    `json:"is_active" gorm:"default:true"`

	// Relationships
	PaymentLinks []PaymentLink `json:"payment_links,omitempty" gorm:"foreignKey:ProductID"`
}
