package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"crypto-predict/internal/auth"
	"crypto-predict/internal/domain"
)

type registerRequest struct {
	UserName string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type userResponse struct {
	UserID   int64  `json:"user_id"`
	UserName string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		UserID:   u.UserID,
		UserName: u.UserName,
		Email:    u.Email,
		Role:     u.Role,
	}
}

func (s *Server) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	user, err := s.auth.Register(c.Request.Context(), req.UserName, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "email already registered"})
			return
		}
		s.logger.Error().Err(err).Msg("register failed")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "registration failed"})
		return
	}

	c.JSON(http.StatusCreated, toUserResponse(user))
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	token, user, err := s.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"detail": "invalid email or password"})
			return
		}
		s.logger.Error().Err(err).Msg("login failed")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "login failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "bearer",
		"user":         toUserResponse(user),
	})
}

func (s *Server) handleMe(c *gin.Context) {
	c.JSON(http.StatusOK, toUserResponse(currentUser(c)))
}
