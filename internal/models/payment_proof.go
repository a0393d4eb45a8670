// internal/models/payment_proof.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// PaymentProof is one buyer-uploaded bank-transfer receipt for a link. A link
// may accumulate several proofs when earlier ones were rejected.
type PaymentProof struct {
	BaseModel
	PaymentLinkID uuid.UUID   `json:"payment_link_id" gorm:"type:uuid;not null;index"`
	ProofFilePath string      `json:"proof_file_path" gorm:"size:500;not null"`
	Notes         string      `json:"notes" gorm:"size:1000"`
	Status        ProofStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	AdminNotes    string      `json:"admin_notes" gorm:"size:500"`
	ApprovedAt    *time.Time  `json:"approved_at"`

	// Relationships
	PaymentLink PaymentLink `json:"payment_link,omitempty" gorm:"foreignKey:PaymentLinkID;constraint:OnDelete:CASCADE"`
}
