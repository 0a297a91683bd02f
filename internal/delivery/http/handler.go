package http

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"chatwire/internal/entity"
	"chatwire/internal/usecase"
	"chatwire/pkg/apperr"

	"github.com/go-chi/chi/v5"
)

type HttpHandler struct {
	chatUc usecase.ChatUsecase
	userUc usecase.UserUsecase
}

func NewHttpHandler(chatUc usecase.ChatUsecase, userUc usecase.UserUsecase) *HttpHandler {
	return &HttpHandler{
		chatUc: chatUc,
		userUc: userUc,
	}
}

type Response struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, response Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	switch apperr.CodeOf(err) {
	case apperr.CodeInvalidArgument:
		status = http.StatusBadRequest
		message = apperr.MessageOf(err)
	case apperr.CodeUnauthenticated:
		status = http.StatusUnauthorized
		message = apperr.MessageOf(err)
	case apperr.CodePermissionDenied:
		status = http.StatusForbidden
		message = apperr.MessageOf(err)
	case apperr.CodeNotFound:
		status = http.StatusNotFound
		message = apperr.MessageOf(err)
	default:
		log.Printf("Internal error: %v", err)
	}

	writeJSON(w, status, Response{Message: message})
}

func claimsFrom(r *http.Request) (*entity.TokenClaims, bool) {
	claims, ok := r.Context().Value(UserContextKey).(*entity.TokenClaims)
	return claims, ok
}

// Method Get /chats
func (h *HttpHandler) ListChats(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, Response{Message: "unauthorized"})
		return
	}

	chats, err := h.chatUc.Index(r.Context(), claims.UserId)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, Response{Message: "success", Data: chats})
}

// Method Post /chats/direct
func (h *HttpHandler) CreateDirectChat(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, Response{Message: "unauthorized"})
		return
	}

	var req struct {
		OtherUserId string `json:"otherUserId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Message: "invalid request body"})
		return
	}

	chat, err := h.chatUc.CreateDirectChat(r.Context(), claims.UserId, req.OtherUserId)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, Response{Message: "success", Data: chat})
}

// Method Get /chats/:chatId/messages
func (h *HttpHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, Response{Message: "unauthorized"})
		return
	}

	chatId := chi.URLParam(r, "chatId")
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	messages, err := h.chatUc.GetMessages(r.Context(), chatId, claims.UserId, page, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, Response{Message: "success", Data: messages})
}

// Method Delete /chats/:chatId
func (h *HttpHandler) DeleteChat(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, Response{Message: "unauthorized"})
		return
	}

	chatId := chi.URLParam(r, "chatId")
	if err := h.chatUc.Delete(r.Context(), chatId, claims.UserId); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, Response{Message: "chat deleted"})
}

// Method Get /users
func (h *HttpHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, Response{Message: "unauthorized"})
		return
	}

	users, err := h.userUc.Index(r.Context(), claims.UserId)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, Response{Message: "success", Data: users})
}

// Method Get /users/:id
func (h *HttpHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userId := chi.URLParam(r, "id")

	user, err := h.userUc.Get(r.Context(), userId)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, Response{Message: "success", Data: user})
}
