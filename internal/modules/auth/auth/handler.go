package auth

import (
	"errors"
	"net/http"

	"github.com/blogd/blogd/internal/middleware"
	"github.com/blogd/blogd/internal/pkg/response"
	"github.com/blogd/blogd/internal/pkg/validate"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc          *Service
	secureCookie bool
}

func NewHandler(svc *Service, secureCookie bool) *Handler {
	return &Handler{svc: svc, secureCookie: secureCookie}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	a := rg.Group("/auth")

	a.POST("/register", h.register)
	a.POST("/login", h.login)
	a.GET("/session", h.session)
	a.POST("/logout", authMW, h.logout)
	a.GET("/sessions", authMW, h.listSessions)
}

func (h *Handler) register(c *gin.Context) {
	var dto RegisterDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		if _, _, ok := validate.FirstError(err); ok {
			response.BadRequest(c, "Email and password are required")
			return
		}
		response.BadRequest(c, "Invalid request body")
		return
	}
	if _, err := h.svc.Register(c.Request.Context(), &dto); err != nil {
		switch {
		case errors.Is(err, errMissingCredentials):
			response.BadRequest(c, "Email and password are required")
		case errors.Is(err, errUserExists):
			response.Conflict(c, "User already exists")
		default:
			response.InternalError(c, "Signup failed", err)
		}
		return
	}
	response.Created(c, gin.H{"message": "Signup successful"})
}

func (h *Handler) login(c *gin.Context) {
	var dto LoginDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		if _, _, ok := validate.FirstError(err); ok {
			response.BadRequest(c, "Email and password are required")
			return
		}
		response.BadRequest(c, "Invalid request body")
		return
	}
	issued, u, err := h.svc.Login(c.Request.Context(), &dto, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		switch {
		case errors.Is(err, errMissingCredentials):
			response.BadRequest(c, "Email and password are required")
		case errors.Is(err, errInvalidCredentials):
			response.Unauthorized(c, "Invalid email or password")
		case errors.Is(err, errUserBlocked):
			response.Forbidden(c, "User is blocked")
		default:
			response.InternalError(c, "Login failed", err)
		}
		return
	}

	h.setTokenCookie(c, issued.Token, int(h.svc.ttl.Seconds()))
	response.OK(c, loginResponse{
		Token:     issued.Token,
		ExpiresAt: issued.ExpiresAt,
		User:      summarize(u),
	})
}

// session mirrors a client-side session lookup: the identity, or null.
func (h *Handler) session(c *gin.Context) {
	id := middleware.CurrentIdentity(c)
	if id == nil {
		response.OK(c, gin.H{"session": nil})
		return
	}
	response.OK(c, gin.H{"session": gin.H{"user": id}})
}

func (h *Handler) logout(c *gin.Context) {
	id := middleware.CurrentIdentity(c)
	if err := h.svc.Logout(c.Request.Context(), id.UserID, id.SessionID); err != nil {
		response.InternalError(c, "Logout failed", err)
		return
	}
	h.setTokenCookie(c, "", -1)
	response.OK(c, gin.H{"message": "Logged out"})
}

func (h *Handler) listSessions(c *gin.Context) {
	id := middleware.CurrentIdentity(c)
	sessions, err := h.svc.Sessions(c.Request.Context(), id.UserID)
	if err != nil {
		response.InternalError(c, "Failed to fetch sessions", err)
		return
	}
	items := make([]sessionResponse, len(sessions))
	for i, s := range sessions {
		items[i] = sessionResponse{
			ID:        s.ID,
			IP:        s.IP,
			UA:        s.UA,
			Current:   s.ID == id.SessionID,
			CreatedAt: s.CreatedAt,
			ExpiresAt: s.ExpiresAt,
			LastSeen:  s.LastSeenAt,
		}
	}
	response.OK(c, gin.H{"sessions": items})
}

func (h *Handler) setTokenCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, token, maxAge, "/", "", h.secureCookie, true)
}
