package api

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"offerpress/common"
	"offerpress/store"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// login verifies credentials within the request's tenant scope. Unknown
// address and wrong password answer identically so the endpoint does not
// confirm which addresses are registered.
func (m *Module) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request", Details: err.Error()})
		return
	}

	st := m.storeFor(c)
	user, err := st.Users.GetByEmail(req.Email)
	if err != nil || !store.CheckPassword(user, req.Password) {
		respondError(c, common.NewUnauthenticatedError("invalid credentials"))
		return
	}

	if _, ok := c.Get(sessions.DefaultKey); ok {
		session := sessions.Default(c)
		session.Set("user_id", user.ID)
		if err := session.Save(); err != nil {
			respondError(c, err)
			return
		}
	}

	st.LogActivity(&user.ID, "login", "user", user.ID, "")
	c.JSON(http.StatusOK, user)
}

func (m *Module) logout(c *gin.Context) {
	if _, ok := c.Get(sessions.DefaultKey); ok {
		session := sessions.Default(c)
		session.Clear()
		if err := session.Save(); err != nil {
			respondError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}
