package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"taskbuddy-api/internal/auth"
	"taskbuddy-api/internal/database"
	"taskbuddy-api/internal/middleware"
	"taskbuddy-api/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LoginRequest represents the login request payload
type LoginRequest struct {
	Username    string `json:"username" binding:"required"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoUrl"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	Token       string `json:"token"`
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoUrl"`
	Message     string `json:"message"`
}

// Login handles POST /api/login.
// Unknown usernames are registered on first sign-in; known ones must match
// their stored password.
func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request. Username and password are required.",
		})
		return
	}
	username := strings.TrimSpace(req.Username)

	db := database.GetDB().WithContext(c.Request.Context())
	var user models.User
	err := db.Where("username = ?", username).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register user"})
			return
		}
		displayName := strings.TrimSpace(req.DisplayName)
		if displayName == "" {
			displayName = username
		}
		user = models.User{
			ID:          uuid.NewString(),
			Username:    username,
			DisplayName: displayName,
			PhotoURL:    strings.TrimSpace(req.PhotoURL),
			Password:    hash,
		}
		if err := db.Create(&user).Error; err != nil {
			log.Printf("register user %s: %v", username, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register user"})
			return
		}
		log.Printf("Registered user %s (%s)", user.Username, user.ID)
	case err != nil:
		log.Printf("lookup user %s: %v", username, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch user"})
		return
	default:
		if err := auth.CheckPassword(user.Password, req.Password); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
			return
		}
	}

	token, err := auth.GenerateToken(auth.Profile{
		UserID:      user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		PhotoURL:    user.PhotoURL,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to generate token",
		})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token:       token,
		UserID:      user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		PhotoURL:    user.PhotoURL,
		Message:     "Login successful",
	})
}

// Me handles GET /api/me and returns the signed-in profile
func Me(c *gin.Context) {
	profile, ok := middleware.CurrentProfile(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authorized"})
		return
	}
	c.JSON(http.StatusOK, profile)
}
