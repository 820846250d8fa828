package http

import (
	"net/http"

	"reelshare/domain/dto"
	"reelshare/usecase"

	"github.com/gin-gonic/gin"
)

type IPushHandler interface {
	Subscribe(c *gin.Context)
	Unsubscribe(c *gin.Context)
	VAPIDPublicKey(c *gin.Context)
	Send(c *gin.Context)
}

type PushHandler struct {
	pushUsecase         usecase.IPushUsecase
	notificationUsecase usecase.INotificationUsecase
}

func NewPushHandler(pushUsecase usecase.IPushUsecase, notificationUsecase usecase.INotificationUsecase) IPushHandler {
	return &PushHandler{pushUsecase: pushUsecase, notificationUsecase: notificationUsecase}
}

func (h *PushHandler) Subscribe(c *gin.Context) {
	var req dto.SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.UserAgent == "" {
		req.UserAgent = c.Request.UserAgent()
	}
	if err := h.pushUsecase.Subscribe(c.Request.Context(), c.GetString("user_id"), req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Subscribed to push notifications"})
}

func (h *PushHandler) Unsubscribe(c *gin.Context) {
	var req dto.UnsubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.pushUsecase.Unsubscribe(c.Request.Context(), c.GetString("user_id"), req.Endpoint); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Unsubscribed from push notifications"})
}

func (h *PushHandler) VAPIDPublicKey(c *gin.Context) {
	key, err := h.pushUsecase.VAPIDPublicKey()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"publicKey": key})
}

func (h *PushHandler) Send(c *gin.Context) {
	var req dto.SendPushRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.notificationUsecase.Send(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "sent": res.Sent, "total": res.Total, "removed": res.Removed})
}
