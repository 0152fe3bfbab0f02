package http

import (
	"net/http"

	"socialcast/domain/dto"
	"socialcast/domain/model"
	"socialcast/usecase"

	"github.com/gin-gonic/gin"
)

type IConnectionHandler interface {
	Status(c *gin.Context)
	Disconnect(c *gin.Context)
}

type ConnectionHandler struct {
	credentials usecase.ICredentialUsecase
}

func NewConnectionHandler(credentials usecase.ICredentialUsecase) IConnectionHandler {
	return &ConnectionHandler{credentials: credentials}
}

func (h *ConnectionHandler) Status(c *gin.Context) {
	statuses, err := h.credentials.Status(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.Res{ResponseCode: "500", ResponseMessage: "Failed to load connections"})
		return
	}
	c.JSON(http.StatusOK, dto.Res{ResponseCode: "00", ResponseMessage: "Success", Data: statuses})
}

func (h *ConnectionHandler) Disconnect(c *gin.Context) {
	platform, err := model.ParsePlatform(c.Param("platform"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "400", ResponseMessage: err.Error()})
		return
	}
	if err := h.credentials.Disconnect(c.Request.Context(), c.GetString("user_id"), platform); err != nil {
		c.JSON(http.StatusInternalServerError, dto.Res{ResponseCode: "500", ResponseMessage: "Failed to disconnect"})
		return
	}
	c.JSON(http.StatusOK, dto.Res{ResponseCode: "00", ResponseMessage: "Success"})
}
