package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// User endpoints run through the only tenant-scoped bundle: every lookup
// and mutation is confined to the X-Tenant-Id the request carried.

func (m *Module) listUsers(c *gin.Context) {
	users, err := m.storeFor(c).Users.GetAll()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

type createUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

func (m *Module) createUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request", Details: err.Error()})
		return
	}
	if req.Role == "" {
		req.Role = "editor"
	}

	st := m.storeFor(c)
	user, err := st.Users.Create(req.Email, req.Password, req.Name, req.Role)
	if err != nil {
		respondError(c, err)
		return
	}

	st.LogActivity(&user.ID, "create", "user", user.ID, user.Email)
	c.JSON(http.StatusCreated, user)
}

func (m *Module) getUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	user, err := m.storeFor(c).Users.GetByID(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (m *Module) updateUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request", Details: err.Error()})
		return
	}

	st := m.storeFor(c)
	user, err := st.Users.Update(id, patch(body, "email", "name", "role", "password"))
	if err != nil {
		respondError(c, err)
		return
	}

	st.LogActivity(&user.ID, "update", "user", user.ID, "")
	c.JSON(http.StatusOK, user)
}

func (m *Module) deleteUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	st := m.storeFor(c)
	if err := st.Users.Delete(id); err != nil {
		respondError(c, err)
		return
	}

	st.LogActivity(nil, "delete", "user", id, "")
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
