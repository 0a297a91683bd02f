package http

import (
	"net/http"

	wsDelivery "chatwire/internal/delivery/websocket"

	"github.com/go-chi/chi/v5"
)

func MapHttpRoutes(r *chi.Mux, httpHandler HttpHandler, websocketHandler wsDelivery.WebsocketHandler, authHandler AuthHandler, authMiddleware *AuthMiddleware) {
	// The websocket gate does its own credential check on the handshake cookie.
	r.Handle("/ws", http.HandlerFunc(websocketHandler.HandleWebSocket))

	// Auth routes (public)
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", http.HandlerFunc(authHandler.Register))
		r.Post("/login", http.HandlerFunc(authHandler.Login))
		r.Post("/refresh", http.HandlerFunc(authHandler.RefreshToken))
		r.Post("/logout", http.HandlerFunc(authHandler.Logout))

		// Protected auth routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Post("/logout-all", http.HandlerFunc(authHandler.LogoutAllDevices))
		})
	})

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		r.Route("/chats", func(r chi.Router) {
			r.Get("/", http.HandlerFunc(httpHandler.ListChats))
			r.Post("/direct", http.HandlerFunc(httpHandler.CreateDirectChat))
			r.Get("/{chatId}/messages", http.HandlerFunc(httpHandler.GetMessages))
			r.Delete("/{chatId}", http.HandlerFunc(httpHandler.DeleteChat))
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", http.HandlerFunc(httpHandler.ListUsers))
			r.Get("/{id}", http.HandlerFunc(httpHandler.GetUser))
		})
	})
}
