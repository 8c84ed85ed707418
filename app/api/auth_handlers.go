package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ehime-live/live-schedule/app/auth"
	"github.com/ehime-live/live-schedule/app/cfg"
	"github.com/ehime-live/live-schedule/app/database"
)

func (h *Handler) setSessionCookie(c *gin.Context, session *database.Session) {
	maxAge := int(session.ExpiresAt.Sub(h.now()).Seconds())
	if maxAge <= 0 {
		maxAge = int(h.sessionTTL.Seconds())
	}
	secure := strings.HasPrefix(cfg.Get().BaseUrl, "https://")

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.CookieName, session.Token, maxAge, "/", "", secure, true)
}

func (h *Handler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.CookieName, "", -1, "/", "", false, true)
}

// endSession closes the request's session if there is one.
func (h *Handler) endSession(c *gin.Context) {
	token := auth.CurrentToken(c)
	if token == "" {
		token = auth.TokenFromRequest(c.Request)
	}
	if token != "" {
		if err := h.auth.Logout(c.Request.Context(), token); err != nil {
			slog.Error("Failed to end session", "error", err)
		}
	}
	h.clearSessionCookie(c)
}

func (h *Handler) APILogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, codeInvalidRequestBody, "Invalid request body")
		return
	}

	session, user, err := h.auth.Login(c.Request.Context(), req.Name, req.Password)
	if err != nil {
		var missing *auth.MissingFieldsError
		switch {
		case errors.As(err, &missing):
			writeValidationError(c, http.StatusBadRequest, missing.Error(), missing.Fields)
		case errors.Is(err, auth.ErrInvalidCredentials):
			writeError(c, http.StatusUnauthorized, codeInvalidCredentials, err.Error())
		default:
			slog.Error("Login failed", "name", req.Name, "error", err)
			writeError(c, http.StatusInternalServerError, codeInternalError, "Login failed")
		}
		return
	}

	h.setSessionCookie(c, session)

	c.JSON(http.StatusOK, loginResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      userResponse{ID: user.ID, Name: user.Name},
	})
}

func (h *Handler) APILogout(c *gin.Context) {
	h.endSession(c)
	c.Status(http.StatusNoContent)
}

func (h *Handler) APIMe(c *gin.Context) {
	user := auth.CurrentUser(c)
	c.JSON(http.StatusOK, userResponse{ID: user.ID, Name: user.Name})
}

func (h *Handler) LoginPage(c *gin.Context) {
	next := safeNext(c.Query("next"))
	if auth.CurrentUser(c) != nil {
		c.Redirect(http.StatusSeeOther, next)
		return
	}

	h.render(c, http.StatusOK, "login.html", gin.H{
		"Title": "ログイン",
		"Next":  next,
	})
}

func (h *Handler) LoginSubmit(c *gin.Context) {
	var req loginRequest
	_ = c.ShouldBind(&req)
	next := safeNext(c.PostForm("next"))

	session, _, err := h.auth.Login(c.Request.Context(), req.Name, req.Password)
	if err != nil {
		status := http.StatusUnauthorized
		message := err.Error()

		var missing *auth.MissingFieldsError
		switch {
		case errors.As(err, &missing):
			status = http.StatusBadRequest
		case errors.Is(err, auth.ErrInvalidCredentials):
		default:
			slog.Error("Login failed", "name", req.Name, "error", err)
			status = http.StatusInternalServerError
			message = "Login failed"
		}

		h.render(c, status, "login.html", gin.H{
			"Title": "ログイン",
			"Next":  next,
			"Name":  req.Name,
			"Error": message,
		})
		return
	}

	h.setSessionCookie(c, session)
	c.Redirect(http.StatusSeeOther, next)
}

func (h *Handler) LogoutSubmit(c *gin.Context) {
	h.endSession(c)
	c.Redirect(http.StatusSeeOther, "/")
}

// safeNext restricts post-login redirects to local paths.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
