package handler

import (
	"leadcapture_backend/internal/auth/service"
	"leadcapture_backend/internal/auth/transport"
	"leadcapture_backend/platform/httpkit"
	"leadcapture_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/sign-in", h.SignIn)
}

func (h *Handler) SignIn(c *gin.Context) {
	var req transport.SignInRequest
	if !httpkit.BindJSON(c, &req) {
		return
	}
	if httpkit.HandleError(c, h.val.Check(req)) {
		return
	}

	result, err := h.svc.SignIn(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

func (h *Handler) GetMe(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	httpkit.OK(c, transport.MeResponse{
		Username: id.Subject(),
		Roles:    id.Roles(),
	})
}
