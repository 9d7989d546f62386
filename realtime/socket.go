package realtime

import (
	"net/http"
	"strings"

	socketio "github.com/googollee/go-socket.io"
	"go.uber.org/zap"
)

const namespace = "/"

// CartRoom is the socket.io room that receives events for one cart.
func CartRoom(cartID string) string {
	return "cart:" + cartID
}

// SocketServer serves socket.io clients. A client emits "subscribe" with a
// cart id to receive that cart's events.
type SocketServer struct {
	server *socketio.Server
	log    *zap.Logger
}

func NewSocketServer(log *zap.Logger) *SocketServer {
	server := socketio.NewServer(nil)
	s := &SocketServer{server: server, log: log}

	server.OnConnect(namespace, func(c socketio.Conn) error {
		log.Debug("Socket connected", zap.String("id", c.ID()))
		return nil
	})
	server.OnEvent(namespace, "subscribe", func(c socketio.Conn, cartID string) string {
		cartID = strings.TrimSpace(cartID)
		if cartID == "" {
			return "error: cart id required"
		}
		c.Join(CartRoom(cartID))
		return "ok"
	})
	server.OnEvent(namespace, "unsubscribe", func(c socketio.Conn, cartID string) string {
		c.Leave(CartRoom(strings.TrimSpace(cartID)))
		return "ok"
	})
	server.OnError(namespace, func(c socketio.Conn, err error) {
		log.Warn("Socket error", zap.Error(err))
	})
	server.OnDisconnect(namespace, func(c socketio.Conn, reason string) {
		log.Debug("Socket disconnected", zap.String("id", c.ID()), zap.String("reason", reason))
	})
	return s
}

// Serve runs the socket.io event loop until Close.
func (s *SocketServer) Serve() error {
	return s.server.Serve()
}

func (s *SocketServer) Close() error {
	return s.server.Close()
}

func (s *SocketServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.server.ServeHTTP(w, r)
}

// Publish sends cart events to the cart's room. Other events are ignored;
// they reach clients through the websocket feed.
func (s *SocketServer) Publish(e Event) {
	if e.Resource != "cart" || e.ID == "" {
		return
	}
	s.server.BroadcastToRoom(namespace, CartRoom(e.ID), e.Type, e)
}

func (s *SocketServer) Subscribers(cartID string) int {
	return s.server.RoomLen(namespace, CartRoom(cartID))
}

// NewMux routes the realtime endpoints.
func NewMux(hub *Hub, sockets *SocketServer) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	mux.Handle("/socket.io/", sockets)
	return mux
}
