package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/Mod5ied/eagle-server/infrastructure/errors"
	"github.com/Mod5ied/eagle-server/infrastructure/logger"
	"github.com/Mod5ied/eagle-server/internal/auth"
	"github.com/Mod5ied/eagle-server/internal/models"
)

// sessionMaxAge is the session cookie lifetime in seconds.
const sessionMaxAge = 3600

// LoginRecorder counts login attempts.
type LoginRecorder interface {
	ObserveLogin(outcome string)
}

// AuthHandler serves login, logout and the current-user endpoint.
type AuthHandler struct {
	tokens       *auth.TokenService
	credentials  *auth.CredentialValidator
	secureCookie bool
	recorder     LoginRecorder
}

// NewAuthHandler creates an AuthHandler. recorder may be nil.
func NewAuthHandler(
	tokens *auth.TokenService,
	credentials *auth.CredentialValidator,
	secureCookie bool,
	recorder LoginRecorder,
) *AuthHandler {
	return &AuthHandler{
		tokens:       tokens,
		credentials:  credentials,
		secureCookie: secureCookie,
		recorder:     recorder,
	}
}

// Login checks the credentials and sets the session cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	var in models.LoginInput
	if err := bindJSON(c, &in); err != nil {
		_ = c.Error(err)
		return
	}

	user, ok := h.credentials.Validate(in.Email, in.Password)
	if !ok {
		logger.FromContext(c.Request.Context()).Warn("invalid_credentials", logger.String("email", in.Email))
		h.observe("failure")
		_ = c.Error(apperrors.Unauthorized("Invalid credentials"))
		return
	}

	token, err := h.tokens.Issue(user.ID, user.Email)
	if err != nil {
		_ = c.Error(apperrors.Internal(err))
		return
	}

	h.setSessionCookie(c, token, sessionMaxAge)
	logger.FromContext(c.Request.Context()).Info("login_success", logger.String("user_id", user.ID))
	h.observe("success")

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Me returns the user attached by auth.Middleware.
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := auth.IdentityFromGin(c)
	if !ok {
		_ = c.Error(apperrors.Unauthorized("Unauthorized"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Logout clears the session cookie. It succeeds without a session.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(auth.CookieName, value, maxAge, "/", "", h.secureCookie, true)
}

func (h *AuthHandler) observe(outcome string) {
	if h.recorder != nil {
		h.recorder.ObserveLogin(outcome)
	}
}
