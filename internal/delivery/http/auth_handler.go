package http

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"chatwire/internal/delivery/websocket"
	"chatwire/internal/entity"
	"chatwire/internal/usecase"
)

type AuthHandler struct {
	authUc usecase.AuthUsecase
}

func NewAuthHandler(authUc usecase.AuthUsecase) *AuthHandler {
	return &AuthHandler{
		authUc: authUc,
	}
}

// POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req entity.RegisterRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Message: "invalid request body"})
		return
	}

	if req.Email == "" || req.Password == "" || req.Username == "" || req.Name == "" {
		writeJSON(w, http.StatusBadRequest, Response{Message: "email, username, password, and name are required"})
		return
	}

	if len(req.Password) < 6 {
		writeJSON(w, http.StatusBadRequest, Response{Message: "password must be at least 6 characters"})
		return
	}

	if len(req.Username) < 3 {
		writeJSON(w, http.StatusBadRequest, Response{Message: "username must be at least 3 characters"})
		return
	}

	authResponse, err := h.authUc.Register(r.Context(), req)
	if err != nil {
		log.Printf("Register error: %v", err)

		statusCode := http.StatusInternalServerError
		message := "internal server error"

		switch err {
		case usecase.ErrEmailAlreadyTaken:
			statusCode = http.StatusConflict
			message = "email already taken"
		case usecase.ErrUsernameAlreadyTaken:
			statusCode = http.StatusConflict
			message = "username already taken"
		}

		writeJSON(w, statusCode, Response{Message: message})
		return
	}

	h.setAuthCookies(w, authResponse)
	authResponse.RefreshToken = ""

	writeJSON(w, http.StatusCreated, Response{Message: "registration successful", Data: authResponse})
}

// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req entity.LoginRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Message: "invalid request body"})
		return
	}

	if req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, Response{Message: "email and password are required"})
		return
	}

	authResponse, err := h.authUc.Login(r.Context(), req)
	if err != nil {
		log.Printf("Login error: %v", err)

		statusCode := http.StatusInternalServerError
		message := "internal server error"

		if err == usecase.ErrInvalidCredentials {
			statusCode = http.StatusUnauthorized
			message = "invalid email or password"
		}

		writeJSON(w, statusCode, Response{Message: message})
		return
	}

	h.setAuthCookies(w, authResponse)
	authResponse.RefreshToken = ""

	writeJSON(w, http.StatusOK, Response{Message: "login successful", Data: authResponse})
}

// POST /auth/refresh
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	refreshToken := ""
	cookie, err := r.Cookie("refresh_token")
	if err == nil {
		refreshToken = cookie.Value
	}

	if refreshToken == "" {
		var req entity.RefreshTokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			refreshToken = req.RefreshToken
		}
	}

	if refreshToken == "" {
		writeJSON(w, http.StatusBadRequest, Response{Message: "refresh token is required"})
		return
	}

	authResponse, err := h.authUc.RefreshToken(r.Context(), refreshToken)
	if err != nil {
		log.Printf("Refresh token error: %v", err)

		message := "invalid or expired refresh token"
		switch err {
		case usecase.ErrInvalidRefreshToken:
			message = "invalid refresh token"
		case usecase.ErrExpiredRefreshToken:
			message = "refresh token has expired"
		case usecase.ErrRevokedRefreshToken:
			message = "refresh token has been revoked"
		}

		h.clearAuthCookies(w)
		writeJSON(w, http.StatusUnauthorized, Response{Message: message})
		return
	}

	h.setAuthCookies(w, authResponse)
	authResponse.RefreshToken = ""

	writeJSON(w, http.StatusOK, Response{Message: "token refreshed successfully", Data: authResponse})
}

// POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	refreshToken := ""
	cookie, err := r.Cookie("refresh_token")
	if err == nil {
		refreshToken = cookie.Value
	}

	if refreshToken == "" {
		var req entity.RefreshTokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			refreshToken = req.RefreshToken
		}
	}

	if refreshToken != "" {
		if err := h.authUc.Logout(r.Context(), refreshToken); err != nil {
			log.Printf("Logout error: %v", err)
		}
	}

	h.clearAuthCookies(w)
	writeJSON(w, http.StatusOK, Response{Message: "logout successful"})
}

// POST /auth/logout-all
func (h *AuthHandler) LogoutAllDevices(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, Response{Message: "unauthorized"})
		return
	}

	if err := h.authUc.LogoutAllDevices(r.Context(), claims.UserId); err != nil {
		log.Printf("Logout all devices error: %v", err)
		writeJSON(w, http.StatusInternalServerError, Response{Message: "internal server error"})
		return
	}

	h.clearAuthCookies(w)
	writeJSON(w, http.StatusOK, Response{Message: "logged out from all devices successfully"})
}

// setAuthCookies sets both the refresh token and the session cookie the
// websocket handshake reads. HttpOnly keeps them away from page scripts.
func (h *AuthHandler) setAuthCookies(w http.ResponseWriter, auth entity.AuthResponse) {
	http.SetCookie(w, &http.Cookie{
		Name:     "refresh_token",
		Value:    auth.RefreshToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   false, // Set to true in production with HTTPS
		SameSite: http.SameSiteLaxMode,
		MaxAge:   30 * 24 * 60 * 60,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     websocket.SessionCookieName,
		Value:    auth.AccessToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   false,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   15 * 60,
	})
}

func (h *AuthHandler) clearAuthCookies(w http.ResponseWriter) {
	for _, name := range []string{"refresh_token", websocket.SessionCookieName} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			Secure:   false,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   -1,
			Expires:  time.Unix(0, 0),
		})
	}
}
