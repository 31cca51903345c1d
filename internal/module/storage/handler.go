package storage

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shoutly/server/internal/shared/response"
)

// Presigner generates presigned URLs for object storage.
type Presigner interface {
	PresignUpload(ctx context.Context, key, contentType string) (*PresignedURL, error)
	PresignDownload(ctx context.Context, key string) (*PresignedURL, error)
	ObjectExists(ctx context.Context, key string) (bool, error)
}

// Handler handles HTTP requests for uploads.
type Handler struct {
	presigner Presigner
	logger    *zap.Logger
}

// NewHandler creates a new storage handler.
func NewHandler(presigner Presigner, logger *zap.Logger) *Handler {
	return &Handler{presigner: presigner, logger: logger}
}

// RegisterRoutes registers public upload routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/uploads", h.CreateUploadURL)
}

// CreateUploadRequest represents a request for a presigned upload URL.
type CreateUploadRequest struct {
	FileName    string `json:"file_name" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
}

// CreateUploadResponse represents a presigned upload URL response.
type CreateUploadResponse struct {
	Key       string    `json:"key"`
	UploadURL string    `json:"upload_url"`
	Method    string    `json:"method"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CreateUploadURL issues a presigned URL for uploading a source video.
//
//	@Summary		Request upload URL
//	@Description	Returns a presigned URL for uploading a video file
//	@Tags			Upload
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateUploadRequest	true	"Upload request"
//	@Success		201		{object}	CreateUploadResponse
//	@Failure		400		{object}	response.ErrorResponse
//	@Router			/uploads [post]
func (h *Handler) CreateUploadURL(c *gin.Context) {
	var req CreateUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "file_name and content_type are required")
		return
	}

	if !IsAllowedVideoType(req.ContentType) {
		response.ErrorWithDetails(c, http.StatusBadRequest,
			"unsupported video format", gin.H{"allowed_types": AllowedVideoTypes()})
		return
	}

	key := BuildUploadKey(req.FileName)

	presigned, err := h.presigner.PresignUpload(c.Request.Context(), key, req.ContentType)
	if err != nil {
		h.logger.Error("failed to presign upload", zap.Error(err), zap.String("key", key))
		response.Error(c, http.StatusInternalServerError, "failed to create upload URL")
		return
	}

	c.JSON(http.StatusCreated, CreateUploadResponse{
		Key:       key,
		UploadURL: presigned.URL,
		Method:    presigned.Method,
		ExpiresAt: presigned.ExpiresAt,
	})
}
