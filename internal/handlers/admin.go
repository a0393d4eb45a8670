// internal/handlers/admin.go
package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bayarlink/bayarlink-backend/internal/models"
	"github.com/bayarlink/bayarlink-backend/internal/services"
	"github.com/bayarlink/bayarlink-backend/internal/utils"
)

type AdminHandler struct {
	paymentProofService *services.PaymentProofService
	dashboardService    *services.DashboardService
}

func NewAdminHandler(paymentProofService *services.PaymentProofService, dashboardService *services.DashboardService) *AdminHandler {
	return &AdminHandler{
		paymentProofService: paymentProofService,
		dashboardService:    dashboardService,
	}
}

// GET /admin/payment-proofs
func (h *AdminHandler) GetPaymentProofs(c *gin.Context) {
	filter := services.ProofListFilter{
		PaginationParams: utils.GetPaginationParams(c),
	}

	if status := c.Query("status"); status != "" {
		proofStatus := models.ProofStatus(status)
		filter.Status = &proofStatus
	}

	proofs, total, err := h.paymentProofService.ListProofs(filter)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(proofs, total, filter.PaginationParams)
	utils.PaginatedResponse(c, result)
}

// PATCH /admin/payment-proofs/:id/approve
func (h *AdminHandler) ApprovePaymentProof(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid payment proof ID", nil)
		return
	}

	proof, err := h.paymentProofService.ApproveProof(id)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "Payment proof not found")
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":       "Payment approved successfully",
		"payment_proof": proof,
	})
}

// PATCH /admin/payment-proofs/:id/reject
func (h *AdminHandler) RejectPaymentProof(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid payment proof ID", nil)
		return
	}

	var req struct {
		AdminNotes string `json:"admin_notes" validate:"required,max=500"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	proof, err := h.paymentProofService.RejectProof(id, req.AdminNotes)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.NotFoundResponse(c, "Payment proof not found")
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":       "Payment rejected successfully",
		"payment_proof": proof,
	})
}

// GET /admin/dashboard/stats
func (h *AdminHandler) GetDashboardStats(c *gin.Context) {
	stats, err := h.dashboardService.GetStats()
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	recentLinks, pendingProofs, err := h.dashboardService.GetRecentActivity()
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"stats":                stats,
		"recent_payment_links": recentLinks,
		"pending_proofs":       pendingProofs,
	})
}
