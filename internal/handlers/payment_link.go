// internal/handlers/payment_link.go
package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bayarlink/bayarlink-backend/internal/services"
	"github.com/bayarlink/bayarlink-backend/internal/utils"
)

type PaymentLinkHandler struct {
	paymentLinkService *services.PaymentLinkService
}

func NewPaymentLinkHandler(paymentLinkService *services.PaymentLinkService) *PaymentLinkHandler {
	return &PaymentLinkHandler{
		paymentLinkService: paymentLinkService,
	}
}

// GET /payment-links
func (h *PaymentLinkHandler) GetPaymentLinks(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	links, total, err := h.paymentLinkService.ListLinks(params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(links, total, params)
	utils.PaginatedResponse(c, result)
}

// POST /payment-links
func (h *PaymentLinkHandler) CreatePaymentLink(c *gin.Context) {
	var req services.CreatePaymentLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	link, err := h.paymentLinkService.CreateLink(&req)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "Product not found")
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":      "Payment link created successfully",
		"payment_link": link,
	})
}

// GET /payment-links/:id
func (h *PaymentLinkHandler) GetPaymentLink(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid payment link ID", nil)
		return
	}

	link, err := h.paymentLinkService.GetLink(id)
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

// DELETE /payment-links/:id
func (h *PaymentLinkHandler) DeletePaymentLink(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid payment link ID", nil)
		return
	}

	if err := h.paymentLinkService.DeleteLink(id); err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "Payment link not found")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": "Payment link deleted successfully",
	})
}
