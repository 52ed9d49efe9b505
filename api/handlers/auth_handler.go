// api/handlers/auth_handler.go
package handlers

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Annany2002/nebula-nlsql/api/models"
	"github.com/Annany2002/nebula-nlsql/config"
	"github.com/Annany2002/nebula-nlsql/internal/auth"
	"github.com/Annany2002/nebula-nlsql/internal/logger"
	"github.com/Annany2002/nebula-nlsql/internal/storage"
)

var (
	customLog = logger.NewLogger()
)

// AuthHandler holds dependencies for authentication handlers.
type AuthHandler struct {
	DB  *sql.DB
	Cfg *config.Config
}

// NewAuthHandler creates a new AuthHandler with dependencies.
func NewAuthHandler(db *sql.DB, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		DB:  db,
		Cfg: cfg,
	}
}

// Signup handles user registration requests.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		customLog.Warnf("Handler: Signup binding error: %v", err)
		_ = c.Error(err)
		return
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}

	username := req.Username
	if username == "" {
		username = req.Email
	}
	userID, err := storage.CreateUser(c.Request.Context(), h.DB, uuid.NewString(), username, req.Email, hashedPassword)
	if err != nil {
		customLog.Warnf("Handler: Failed to create user %s: %v", req.Email, err)
		_ = c.Error(err)
		return
	}

	customLog.Printf("Handler: Successfully registered user with email %s", req.Email)
	c.JSON(http.StatusCreated, gin.H{"user_id": userID, "message": "User registered successfully"})
}

// Login handles user login requests and issues JWT on success.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		customLog.Warnf("Handler: Login binding error: %v", err)
		_ = c.Error(err)
		return
	}

	user, err := storage.FindUserByEmail(c.Request.Context(), h.DB, req.Email)
	if err != nil {
		customLog.Warnf("Handler: Login failed for email %s: %v", req.Email, err)
		_ = c.Error(err)
		return
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		customLog.Warnf("Handler: Login attempt failed for email %s: invalid password", user.Email)
		_ = c.Error(storage.ErrInvalidCredentials)
		return
	}

	tokenString, err := auth.GenerateJWT(user.UserId, h.Cfg.JWTSecret, h.Cfg.JWTExpiration)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, models.LoginResponse{Message: "Login successful", User: *user, Token: tokenString})
}

// Me returns the authenticated user's account.
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := storage.FindUserByUserId(c.Request.Context(), h.DB, c.GetString("userId"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, user)
}
