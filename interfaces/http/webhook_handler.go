package http

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"socialcast/domain/dto"
	"socialcast/domain/model"
	"socialcast/domain/repository"
	"socialcast/infrastructure/logger"
	"socialcast/usecase"

	"github.com/gin-gonic/gin"
)

type IWebhookHandler interface {
	VideoReady(c *gin.Context)
	Payment(c *gin.Context)
}

type WebhookHandler struct {
	videoIdeas usecase.IVideoIdeaUsecase
	users      usecase.IUserUsecase
	archive    repository.IWebhookArchive
	secret     string
}

func NewWebhookHandler(videoIdeas usecase.IVideoIdeaUsecase, users usecase.IUserUsecase, archive repository.IWebhookArchive, secret string) IWebhookHandler {
	return &WebhookHandler{videoIdeas: videoIdeas, users: users, archive: archive, secret: secret}
}

// VideoReady ingests the generation pipeline's completion callback.
func (h *WebhookHandler) VideoReady(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "400", ResponseMessage: "Unreadable body"})
		return
	}
	if !h.verifySignature(c, body) {
		c.JSON(http.StatusUnauthorized, dto.Res{ResponseCode: "401", ResponseMessage: "Invalid signature"})
		return
	}
	h.archiveBody(c, "video_ready", body)

	var cb dto.VideoReadyCallback
	if err := json.Unmarshal(body, &cb); err != nil {
		c.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "400", ResponseMessage: "Malformed payload"})
		return
	}
	if cb.VideoIdeaID == "" {
		c.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "400", ResponseMessage: "video_idea_id is required"})
		return
	}
	if cb.FinalOutput == "" && cb.PreviewVideoURL == "" {
		c.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "400", ResponseMessage: "final_output or preview_video_url is required"})
		return
	}

	if err := h.videoIdeas.HandleVideoReady(c.Request.Context(), &cb); err != nil {
		if errors.Is(err, model.ErrVideoIdeaNotFound) {
			c.JSON(http.StatusNotFound, dto.Res{ResponseCode: "404", ResponseMessage: "Unknown video idea"})
			return
		}
		logger.GetLogger().WithField("error", err).Error("processing video-ready callback")
		c.JSON(http.StatusInternalServerError, dto.Res{ResponseCode: "500", ResponseMessage: "Failed to record callback"})
		return
	}
	c.JSON(http.StatusOK, dto.Res{ResponseCode: "00", ResponseMessage: "Success"})
}

// Payment credits the user's balance after a successful payment. Non-success
// statuses are acknowledged and ignored so the processor stops retrying.
func (h *WebhookHandler) Payment(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "400", ResponseMessage: "Unreadable body"})
		return
	}
	h.archiveBody(c, "payment", body)

	var cb dto.PaymentCallback
	if err := json.Unmarshal(body, &cb); err != nil {
		c.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "400", ResponseMessage: "Malformed payload"})
		return
	}
	if cb.UserID == "" || cb.Credits <= 0 {
		c.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "400", ResponseMessage: "user_id and positive credits are required"})
		return
	}
	if cb.Status != "succeeded" && cb.Status != "completed" {
		c.JSON(http.StatusOK, dto.Res{ResponseCode: "00", ResponseMessage: "Ignored"})
		return
	}

	balance, err := h.users.ApplyPayment(c.Request.Context(), cb.UserID, cb.Credits)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("applying payment")
		c.JSON(http.StatusInternalServerError, dto.Res{ResponseCode: "500", ResponseMessage: "Failed to apply payment"})
		return
	}
	c.JSON(http.StatusOK, dto.Res{ResponseCode: "00", ResponseMessage: "Success", Data: gin.H{"credits": balance}})
}

// verifySignature checks the HMAC-SHA256 of the raw body when a shared secret
// is configured. Without a secret any caller is accepted.
func (h *WebhookHandler) verifySignature(c *gin.Context, body []byte) bool {
	if h.secret == "" {
		return true
	}
	provided := c.GetHeader("X-Signature")
	if provided == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(h.secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(provided), []byte(expected))
}

func (h *WebhookHandler) archiveBody(c *gin.Context, source string, body []byte) {
	if h.archive == nil {
		return
	}
	if err := h.archive.Archive(c.Request.Context(), source, body); err != nil {
		logger.GetLogger().WithField("error", err).Warn("archiving webhook payload")
	}
}
