// internal/handlers/download.go
package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bayarlink/bayarlink-backend/internal/services"
	"github.com/bayarlink/bayarlink-backend/internal/utils"
)

// DownloadHandler gates product file retrieval on the link's paid status.
type DownloadHandler struct {
	paymentLinkService *services.PaymentLinkService
	storage            services.Storage
}

func NewDownloadHandler(paymentLinkService *services.PaymentLinkService, storage services.Storage) *DownloadHandler {
	return &DownloadHandler{
		paymentLinkService: paymentLinkService,
		storage:            storage,
	}
}

// GET /download/:token
func (h *DownloadHandler) Download(c *gin.Context) {
	token := c.Param("token")

	link, err := h.paymentLinkService.GetPaidLinkByToken(token)
	if err != nil {
		utils.NotFoundResponse(c, "Record not found")
		return
	}

	if link.Product.FilePath == "" {
		utils.NotFoundResponse(c, "File not found")
		return
	}

	if !h.storage.Exists(link.Product.FilePath) {
		utils.NotFoundResponse(c, "File not found")
		return
	}

	reader, err := h.storage.Open(link.Product.FilePath)
	if err != nil {
		utils.InternalErrorResponse(c, "Failed to open file")
		return
	}
	defer reader.Close()

	// The attachment is named after the product, not the stored key
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", link.Product.Name))
	c.Header("Content-Type", "application/octet-stream")
	c.Status(http.StatusOK)

	if _, err := io.Copy(c.Writer, reader); err != nil {
		// Headers are already written; nothing left to do but log via gin
		c.Error(err)
	}
}
