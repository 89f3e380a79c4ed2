package handler

import (
	"errors"
	"net/http"
	"time"

	"steam-auth-service/internal/auth/provider"
	"steam-auth-service/internal/auth/provider/steam"
	"steam-auth-service/internal/auth/resolver"
	"steam-auth-service/internal/logger"
	"steam-auth-service/internal/session"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	strategies   *provider.Registry
	sessionStore session.Store
	resolver     resolver.Resolver
	sessionTTL   time.Duration
	now          func() time.Time
}

func NewHandler(
	registry *provider.Registry,
	sessionStore session.Store,
	resolver resolver.Resolver,
	sessionTTL time.Duration,
) *Handler {
	return &Handler{
		strategies:   registry,
		sessionStore: sessionStore,
		resolver:     resolver,
		sessionTTL:   sessionTTL,
		now:          time.Now,
	}
}

func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/auth/:provider/login", h.login)
	r.GET("/auth/:provider/callback", h.callback)
	r.POST("/auth/logout", h.Logout)
}

func (h *Handler) login(c *gin.Context) {
	strategy, err := h.strategies.Get(c.Param("provider"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown login provider"})
		return
	}

	redirectURL, err := strategy.Begin(c.Writer, c.Request)
	if err != nil {
		logger.Error("login redirect failed", map[string]any{
			"provider": strategy.Name(),
			"error":    err.Error(),
		})
		c.JSON(http.StatusBadGateway, gin.H{"error": "login provider unavailable"})
		return
	}

	c.Redirect(http.StatusFound, redirectURL)
}

func (h *Handler) callback(c *gin.Context) {
	strategy, err := h.strategies.Get(c.Param("provider"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown login provider"})
		return
	}

	identity, ok, err := strategy.Complete(c.Writer, c.Request)
	if err != nil {
		status, msg := authErrorResponse(err)
		logger.Warn("authentication failed", map[string]any{
			"provider": strategy.Name(),
			"status":   status,
			"error":    err.Error(),
		})
		c.JSON(status, gin.H{"error": msg})
		return
	}
	if !ok {
		logger.Info("authentication resolved to no user", map[string]any{
			"provider": strategy.Name(),
		})
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return
	}

	userID, err := h.resolver.Resolve(c.Request.Context(), identity)
	if err != nil {
		logger.Error("identity resolution failed", map[string]any{
			"provider": strategy.Name(),
			"error":    err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve user"})
		return
	}

	sessionID, err := session.GenerateID()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}

	now := h.now()
	expiresAt := now.Add(h.sessionTTL)

	sess := session.Session{
		SessionID: sessionID,
		UserID:    userID,
		Provider:  strategy.Name(),
		CreatedAt: now,
		ExpiresAt: expiresAt,
	}

	if err := h.sessionStore.Create(c.Request.Context(), sess); err != nil {
		logger.Error("session persist failed", map[string]any{
			"error": err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to persist session"})
		return
	}

	session.SetCookie(c.Writer, sessionID, expiresAt, session.CookieOptions{
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})

	logger.Info("login succeeded", map[string]any{
		"provider": strategy.Name(),
		"user_id":  userID,
		"ip":       c.ClientIP(),
	})

	c.JSON(http.StatusOK, gin.H{"status": "authenticated"})
}

// authErrorResponse maps strategy errors to a status and a client-safe
// message. Steam API failures are upstream errors, everything else is a
// rejected login.
func authErrorResponse(err error) (int, string) {
	var serr *steam.Error
	if errors.As(err, &serr) {
		switch serr.Kind {
		case steam.KindFetchFailed, steam.KindInvalidProfile:
			return http.StatusBadGateway, "steam profile unavailable"
		}
	}
	return http.StatusUnauthorized, "authentication failed"
}

func (h *Handler) Logout(c *gin.Context) {
	cookie, err := c.Request.Cookie(session.CookieName)
	if err == nil && cookie.Value != "" {
		// best-effort: the cookie is cleared either way
		if err := h.sessionStore.Delete(c.Request.Context(), cookie.Value); err != nil {
			logger.Warn("session delete failed", map[string]any{
				"error": err.Error(),
			})
		}
		logger.Info("logout", map[string]any{
			"ip": c.ClientIP(),
		})
	}

	session.ClearCookie(c.Writer, session.CookieOptions{
		Path:     "/",
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	c.Status(http.StatusNoContent)
}
