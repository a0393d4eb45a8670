// internal/handlers/payment.go
package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bayarlink/bayarlink-backend/internal/services"
	"github.com/bayarlink/bayarlink-backend/internal/utils"
)

// PaymentHandler serves the public, token-addressed buyer flow: viewing a
// payment page and submitting a transfer proof against it.
type PaymentHandler struct {
	paymentLinkService  *services.PaymentLinkService
	paymentProofService *services.PaymentProofService
}

func NewPaymentHandler(paymentLinkService *services.PaymentLinkService, paymentProofService *services.PaymentProofService) *PaymentHandler {
	return &PaymentHandler{
		paymentLinkService:  paymentLinkService,
		paymentProofService: paymentProofService,
	}
}

// GET /payment/:token
func (h *PaymentHandler) ShowPayment(c *gin.Context) {
	token := c.Param("token")

	link, err := h.paymentLinkService.GetLinkByToken(token)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "Payment link not found")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"payment_link": link,
	})
}

// POST /payment/:token
func (h *PaymentHandler) SubmitProof(c *gin.Context) {
	token := c.Param("token")
	notes := c.PostForm("notes")

	header, err := c.FormFile("proof_file")
	if err != nil {
		utils.BadRequestResponse(c, "Proof file is required", nil)
		return
	}

	file, err := header.Open()
	if err != nil {
		utils.BadRequestResponse(c, "Failed to read proof file", err.Error())
		return
	}
	defer file.Close()

	proof, err := h.paymentProofService.SubmitProof(token, file, header, notes)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "Payment link not found")
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":       "Payment proof submitted successfully",
		"payment_proof": proof,
	})
}
