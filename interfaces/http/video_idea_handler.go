package http

import (
	"errors"
	"net/http"

	"socialcast/domain/dto"
	"socialcast/domain/model"
	"socialcast/usecase"

	"github.com/gin-gonic/gin"
)

type IVideoIdeaHandler interface {
	Submit(c *gin.Context)
	List(c *gin.Context)
	Get(c *gin.Context)
	Approve(c *gin.Context)
	Reject(c *gin.Context)
	Publish(c *gin.Context)
	Retry(c *gin.Context)
}

type VideoIdeaHandler struct {
	videoIdeas usecase.IVideoIdeaUsecase
	approvals  usecase.IApprovalUsecase
	publisher  usecase.IPublishUsecase
}

func NewVideoIdeaHandler(videoIdeas usecase.IVideoIdeaUsecase, approvals usecase.IApprovalUsecase, publisher usecase.IPublishUsecase) IVideoIdeaHandler {
	return &VideoIdeaHandler{videoIdeas: videoIdeas, approvals: approvals, publisher: publisher}
}

func (h *VideoIdeaHandler) Submit(c *gin.Context) {
	var req dto.SubmitVideoIdeaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "400", ResponseMessage: err.Error()})
		return
	}
	idea, err := h.videoIdeas.Submit(c.Request.Context(), c.GetString("user_id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.Res{ResponseCode: "00", ResponseMessage: "Success", Data: idea})
}

func (h *VideoIdeaHandler) List(c *gin.Context) {
	ideas, err := h.videoIdeas.List(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Res{ResponseCode: "00", ResponseMessage: "Success", Data: ideas})
}

func (h *VideoIdeaHandler) Get(c *gin.Context) {
	idea, err := h.videoIdeas.Get(c.Request.Context(), c.GetString("user_id"), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Res{ResponseCode: "00", ResponseMessage: "Success", Data: idea})
}

func (h *VideoIdeaHandler) Approve(c *gin.Context) {
	result, err := h.approvals.Approve(c.Request.Context(), c.GetString("user_id"), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Res{ResponseCode: "00", ResponseMessage: "Success", Data: result})
}

func (h *VideoIdeaHandler) Reject(c *gin.Context) {
	var req dto.RejectVideoIdeaRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "400", ResponseMessage: err.Error()})
		return
	}
	if err := h.approvals.Reject(c.Request.Context(), c.GetString("user_id"), c.Param("id"), req.Reason); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Res{ResponseCode: "00", ResponseMessage: "Success"})
}

func (h *VideoIdeaHandler) Publish(c *gin.Context) {
	result, err := h.publisher.Publish(c.Request.Context(), c.GetString("user_id"), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Res{ResponseCode: "00", ResponseMessage: "Success", Data: result})
}

func (h *VideoIdeaHandler) Retry(c *gin.Context) {
	var req dto.RetryPublishRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "400", ResponseMessage: err.Error()})
		return
	}
	result, err := h.publisher.Retry(c.Request.Context(), c.GetString("user_id"), c.Param("id"), req.Platforms)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Res{ResponseCode: "00", ResponseMessage: "Success", Data: result})
}

// respondError maps domain errors onto status codes in one place.
func respondError(c *gin.Context, err error) {
	var precondition *model.PreconditionError
	var transition *model.InvalidTransitionError
	switch {
	case errors.Is(err, model.ErrVideoIdeaNotFound), errors.Is(err, model.ErrCredentialNotFound):
		c.JSON(http.StatusNotFound, dto.Res{ResponseCode: "404", ResponseMessage: err.Error()})
	case errors.Is(err, model.ErrInsufficientCredits):
		c.JSON(http.StatusPaymentRequired, dto.Res{ResponseCode: "402", ResponseMessage: "Insufficient credits"})
	case errors.As(err, &precondition):
		c.JSON(http.StatusUnprocessableEntity, dto.Res{ResponseCode: "422", ResponseMessage: err.Error()})
	case errors.As(err, &transition):
		c.JSON(http.StatusConflict, dto.Res{ResponseCode: "409", ResponseMessage: err.Error()})
	case errors.Is(err, model.ErrReauthRequired):
		c.JSON(http.StatusUnauthorized, dto.Res{ResponseCode: "401", ResponseMessage: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, dto.Res{ResponseCode: "500", ResponseMessage: "Internal server error"})
	}
}
