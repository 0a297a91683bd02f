package websocket

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"chatwire/infrastructure/presence"
	"chatwire/infrastructure/ws"
	"chatwire/internal/event"
	"chatwire/internal/usecase"
	"chatwire/pkg/apperr"

	"github.com/gorilla/websocket"
)

// SessionCookieName carries the signed session credential on the
// handshake, the same cookie ordinary HTTP requests use.
const SessionCookieName = "jwt"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebsocketHandler struct {
	hub        ws.IHub
	presence   presence.Registry
	authUc     usecase.AuthUsecase
	userUc     usecase.UserUsecase
	deliveryUc usecase.DeliveryUsecase
}

func NewWebsocketHandler(
	hub ws.IHub,
	presenceReg presence.Registry,
	authUc usecase.AuthUsecase,
	userUc usecase.UserUsecase,
	deliveryUc usecase.DeliveryUsecase,
) *WebsocketHandler {
	return &WebsocketHandler{
		hub:        hub,
		presence:   presenceReg,
		authUc:     authUc,
		userUc:     userUc,
		deliveryUc: deliveryUc,
	}
}

// HandleWebSocket is the connection session gate. The credential is
// verified before the upgrade; a bad handshake is refused outright, never
// downgraded to an anonymous connection. Presence registration happens
// after the gate, once the connection is registered with the hub.
func (h *WebsocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		http.Error(w, "missing session credential", http.StatusUnauthorized)
		return
	}

	claims, err := h.authUc.ValidateAccessToken(cookie.Value)
	if err != nil {
		http.Error(w, "invalid or expired session credential", http.StatusUnauthorized)
		return
	}

	user, err := h.userUc.Get(r.Context(), claims.UserId)
	if err != nil {
		http.Error(w, "unknown user", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Upgrade error: %v", err)
		return
	}

	// The request context dies with the handshake; connection-scoped work
	// gets its own context.
	ctx := context.Background()

	client := ws.NewClient(user.Id, h.hub, conn)
	h.hub.RegisterClient(client)

	if err := h.presence.SetOnline(ctx, client.UserId, client.Handle); err != nil {
		log.Printf("SetOnline error: %v", err)
	}
	h.broadcastPresence(event.UserOnline, client.UserId)

	go client.WritePump()
	client.ReadPump(func(data []byte) {
		h.handleEvent(ctx, client, data)
	})
}

// HandleUnregisterClient runs when a connection leaves the hub. The
// conditional clear means a superseded connection's exit cannot evict the
// presence entry of the connection that replaced it; user:offline is only
// broadcast when the user really has no connection left.
func (h *WebsocketHandler) HandleUnregisterClient(client *ws.UserClient) error {
	ctx := context.Background()

	if err := h.presence.Clear(ctx, client.UserId, client.Handle); err != nil {
		return err
	}

	_, online, err := h.presence.Handle(ctx, client.UserId)
	if err != nil {
		return err
	}
	if !online {
		h.broadcastPresence(event.UserOffline, client.UserId)
	}
	return nil
}

func (h *WebsocketHandler) handleEvent(ctx context.Context, client *ws.UserClient, data []byte) {
	var env event.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Printf("Unknown event from %s: %v", client.UserId, err)
		return
	}

	switch env.Event {
	case event.MessageSend:
		h.handleSend(ctx, client, env.Data)

	case event.MessageReceivedSuccess:
		var confirm event.ReceivedSuccess
		if err := json.Unmarshal(env.Data, &confirm); err != nil {
			log.Printf("Invalid receivedSuccess payload from %s: %v", client.UserId, err)
			return
		}
		if err := h.deliveryUc.ConfirmDelivered(ctx, client.UserId, confirm); err != nil {
			log.Printf("ConfirmDelivered error: %v", err)
		}

	case event.ChatRead:
		var mark event.ChatReadMark
		if err := json.Unmarshal(env.Data, &mark); err != nil {
			log.Printf("Invalid chat:read payload from %s: %v", client.UserId, err)
			return
		}
		if err := h.deliveryUc.MarkChatRead(ctx, client.UserId, mark.ChatId, mark.OtherUserId); err != nil {
			log.Printf("MarkChatRead error: %v", err)
		}

	default:
		log.Printf("Unhandled event %q from %s", env.Event, client.UserId)
	}
}

// handleSend runs a send and acknowledges it on the same connection. Every
// failure comes back through the acknowledgement; nothing here closes the
// connection.
func (h *WebsocketHandler) handleSend(ctx context.Context, client *ws.UserClient, data json.RawMessage) {
	var req event.SendMessage
	if err := json.Unmarshal(data, &req); err != nil {
		h.ack(client, event.Ack{Success: false, Error: "invalid message payload"})
		return
	}

	message, err := h.deliveryUc.Send(ctx, client.UserId, req)
	if err != nil {
		if apperr.CodeOf(err) == apperr.CodeInternal {
			log.Printf("Send error: %v", err)
		}
		h.ack(client, event.Ack{Success: false, Error: apperr.MessageOf(err)})
		return
	}

	h.ack(client, event.Ack{Success: true, Message: &message})
}

func (h *WebsocketHandler) ack(client *ws.UserClient, ack event.Ack) {
	payload, err := event.Marshal(event.MessageSent, ack)
	if err != nil {
		log.Printf("Marshal ack error: %v", err)
		return
	}
	h.hub.Send(client.Handle, payload)
}

func (h *WebsocketHandler) broadcastPresence(eventName, userId string) {
	payload, err := event.Marshal(eventName, userId)
	if err != nil {
		log.Printf("Marshal %s error: %v", eventName, err)
		return
	}
	h.hub.Broadcast(payload)
}
