// internal/models/payment_link.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bayarlink/bayarlink-backend/internal/utils"
)

// PaymentLink is a buyer-facing, token-addressed record of one intended sale.
// The token is the public lookup key; it is generated once and never changes.
type PaymentLink struct {
	BaseModel
	ProductID     uuid.UUID  `json:"product_id" gorm:"type:uuid;not null;index"`
	Token         string     `json:"token" gorm:"size:32;uniqueIndex;not null"`
	CustomerName  string     `json:"customer_name" gorm:"size:255;not null"`
	CustomerEmail string     `json:"customer_email" gorm:"size:255;not null;index"`
	// The composite (status, created_at) index is created by raw SQL in the
	// migration step; a gorm tag here would claim the name for a
	// single-column index and shadow it.
	Status        LinkStatus `json:"status" gorm:"type:varchar(20);default:'pending';index:idx_payment_links_status"`
	ExpiresAt     time.Time  `json:"expires_at" gorm:"not null"`

	// Relationships
	Product       Product        `json:"product,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	PaymentProofs []PaymentProof `json:"payment_proofs,omitempty" gorm:"foreignKey:PaymentLinkID"`
}

func (l *PaymentLink) BeforeCreate(tx *gorm.DB) error {
	if err := l.BaseModel.BeforeCreate(tx); err != nil {
		return err
	}
	if l.Token == "" {
		token, err := utils.GenerateLinkToken()
		if err != nil {
			return err
		}
		l.Token = token
	}
	if l.Status == "" {
		l.Status = LinkStatusPending
	}
	return nil
}

// IsExpired reports whether the link's expiry timestamp has passed at the
// given instant. Status is not consulted.
func (l *PaymentLink) IsExpired(now time.Time) bool {
	return l.ExpiresAt.Before(now)
}
