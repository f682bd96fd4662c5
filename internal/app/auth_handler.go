package app

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rajpuc/GoalGrid/internal/service"
	"github.com/rajpuc/GoalGrid/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const maxUploadSize = 10 << 20 // 10 MB

type AuthHandler struct {
	authService      service.AuthService
	cloudinaryClient *util.CloudinaryClient
	jwtSecret        string
}

func NewAuthHandler(authService service.AuthService, cloudinaryClient *util.CloudinaryClient, jwtSecret string) *AuthHandler {
	return &AuthHandler{
		authService:      authService,
		cloudinaryClient: cloudinaryClient,
		jwtSecret:        jwtSecret,
	}
}

// Register handles user registration
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, formatValidationError(err))
		return
	}

	resp, err := h.authService.Register(req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			util.ErrorResponse(c, http.StatusConflict, err.Error(), nil)
		case errors.Is(err, service.ErrWeakPassword),
			errors.Is(err, service.ErrNameTooShort):
			util.BadRequest(c, err.Error())
		default:
			util.InternalError(c, "Failed to register user")
		}
		return
	}

	util.SuccessResponse(c, http.StatusCreated, "User registered successfully", resp)
}

// Login handles user login
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, formatValidationError(err))
		return
	}

	resp, err := h.authService.Login(req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			util.Unauthorized(c, err.Error())
			return
		}
		util.InternalError(c, "Failed to log in")
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Login successful", resp)
}

// GetMe returns the authenticated user
// GET /api/v1/auth/me
func (h *AuthHandler) GetMe(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	user, err := h.authService.GetMe(userID.(string))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			util.NotFound(c, err.Error())
			return
		}
		util.InternalError(c, "Failed to get user")
		return
	}

	util.SuccessResponse(c, http.StatusOK, "User retrieved successfully", gin.H{"user": user})
}

// UploadFile uploads an image to Cloudinary and returns its URL
// POST /api/v1/auth/upload-file
func (h *AuthHandler) UploadFile(c *gin.Context) {
	if _, exists := c.Get("userID"); !exists {
		util.Unauthorized(c, "User not authenticated")
		return
	}

	if h.cloudinaryClient == nil {
		util.ErrorResponse(c, http.StatusServiceUnavailable, "Image uploads are disabled", nil)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		util.BadRequest(c, "File is required")
		return
	}
	if fileHeader.Size > maxUploadSize {
		util.BadRequest(c, "File exceeds the 10MB limit")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		util.InternalError(c, "Failed to read file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		util.InternalError(c, "Failed to read file")
		return
	}

	url, err := h.cloudinaryClient.ProcessImageFromMemory(data, fileHeader.Filename)
	if err != nil {
		util.InternalError(c, "Failed to upload file")
		return
	}

	util.SuccessResponse(c, http.StatusOK, "File uploaded successfully", gin.H{"url": url})
}

// AuthMiddleware validates JWT token
func (h *AuthHandler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			util.Unauthorized(c, "Authorization header required")
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			util.Unauthorized(c, "Invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := util.ValidateToken(parts[1], h.jwtSecret)
		if err != nil {
			util.Unauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("email", claims.Email)
		c.Next()
	}
}

// OptionalAuthMiddleware sets the user context when a valid token is present
// but never rejects the request. Used by public reads that personalize their
// response for logged-in users.
func (h *AuthHandler) OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.Next()
			return
		}

		if claims, err := util.ValidateToken(parts[1], h.jwtSecret); err == nil {
			c.Set("userID", claims.UserID)
			c.Set("email", claims.Email)
		}

		c.Next()
	}
}

// formatValidationError turns validator errors into readable messages
func formatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		messages := make([]string, 0, len(validationErrors))
		for _, fieldErr := range validationErrors {
			switch fieldErr.Tag() {
			case "required":
				messages = append(messages, fmt.Sprintf("%s is required", fieldErr.Field()))
			case "email":
				messages = append(messages, fmt.Sprintf("%s must be a valid email address", fieldErr.Field()))
			case "min":
				messages = append(messages, fmt.Sprintf("%s must be at least %s characters", fieldErr.Field(), fieldErr.Param()))
			default:
				messages = append(messages, fmt.Sprintf("%s is invalid", fieldErr.Field()))
			}
		}
		return strings.Join(messages, "; ")
	}
	return err.Error()
}
