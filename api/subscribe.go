package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"offerpress/email"
)

type subscribeRequest struct {
	SiteID int    `json:"site_id" binding:"required"`
	Email  string `json:"email" binding:"required"`
}

func (m *Module) subscribe(c *gin.Context) {
	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request", Details: err.Error()})
		return
	}

	st := m.storeFor(c)
	service := email.NewService(st.Emails, st.Sites, m.mailer)

	result, err := service.Subscribe(req.SiteID, req.Email)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":            result.Message,
		"already_subscribed": result.AlreadySubscribed,
	})
}

func (m *Module) unsubscribe(c *gin.Context) {
	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request", Details: err.Error()})
		return
	}

	st := m.storeFor(c)
	service := email.NewService(st.Emails, st.Sites, m.mailer)

	if err := service.Unsubscribe(req.SiteID, req.Email); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "You've been unsubscribed."})
}
