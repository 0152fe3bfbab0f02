package http

import (
	"errors"
	"net/http"

	"socialcast/domain/dto"
	"socialcast/domain/model"
	"socialcast/usecase"

	"github.com/gin-gonic/gin"
)

type IUserHandler interface {
	Login(c *gin.Context)
	Register(c *gin.Context)
	Profile(c *gin.Context)
}

type UserHandler struct {
	userUsecase usecase.IUserUsecase
}

func NewUserHandler(userUsecase usecase.IUserUsecase) IUserHandler {
	return &UserHandler{userUsecase: userUsecase}
}

func (h *UserHandler) Login(c *gin.Context) {
	var req model.ReqLogin
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "400", ResponseMessage: err.Error()})
		return
	}
	token, err := h.userUsecase.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, dto.Res{ResponseCode: "401", ResponseMessage: "Invalid username or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, dto.Res{ResponseCode: "500", ResponseMessage: "Login failed"})
		return
	}
	c.JSON(http.StatusOK, dto.Res{
		ResponseCode:    "00",
		ResponseMessage: "Success",
		Data:            gin.H{"token": token},
	})
}

func (h *UserHandler) Register(c *gin.Context) {
	var req model.ReqRegister
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Res{ResponseCode: "400", ResponseMessage: err.Error()})
		return
	}
	if err := h.userUsecase.Register(c.Request.Context(), &req); err != nil {
		c.JSON(http.StatusConflict, dto.Res{ResponseCode: "409", ResponseMessage: err.Error()})
		return
	}
	c.JSON(http.StatusCreated, dto.Res{ResponseCode: "00", ResponseMessage: "Success"})
}

func (h *UserHandler) Profile(c *gin.Context) {
	userID := c.GetString("user_id")
	user, err := h.userUsecase.Profile(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusNotFound, dto.Res{ResponseCode: "404", ResponseMessage: "User not found"})
		return
	}
	c.JSON(http.StatusOK, dto.Res{ResponseCode: "00", ResponseMessage: "Success", Data: user})
}
