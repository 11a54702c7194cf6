package httpserver

import (
	"errors"
	"net/http"

	"storefront/internal/domain"
	usersvc "storefront/internal/service/user"

	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *handlers) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}

	user, err := h.deps.UserSvc.Signup(c.Request.Context(), usersvc.SignupInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	switch {
	case errors.Is(err, usersvc.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, domain.ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": "email is already registered"})
		return
	case err != nil:
		h.internalError(c, "register failed", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "registered", "userId": user.ID})
}

func (h *handlers) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	user, token, err := h.deps.UserSvc.Login(c.Request.Context(), req.Email, req.Password)
	if errors.Is(err, usersvc.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}
	if err != nil {
		h.internalError(c, "login failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "logged in",
		"token":   token,
		"role":    user.Role,
		"name":    user.Name,
	})
}

func (h *handlers) logout(c *gin.Context) {
	if token, ok := bearerToken(c.GetHeader("Authorization")); ok {
		if err := h.deps.UserSvc.Logout(c.Request.Context(), token); err != nil {
			h.internalError(c, "logout failed", err)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}
