// Package ws difunde los eventos del ledger a los clientes WebSocket conectados.
package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gofiber/contrib/websocket"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// Hub registro de conexiones y canal de difusión.
type Hub struct {
	clients    map[*websocket.Conn]bool
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	broadcast  chan []byte
	done       chan struct{}
	stopOnce   sync.Once
	mu         sync.Mutex
	log        *logger.Logger
}

// NewHub construye el hub; hay que arrancar Run en una goroutine.
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]bool),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		broadcast:  make(chan []byte, 256),
		done:       make(chan struct{}),
		log:        log.Named("ws"),
	}
}

// Run atiende altas, bajas y difusiones hasta que ctx termine; entonces cierra todas las conexiones.
// Después de Run, Serve ya no bloquea: cierra la conexión entrante y retorna.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.stopOnce.Do(func() { close(h.done) })
			h.mu.Lock()
			for conn := range h.clients {
				_ = conn.Close()
				delete(h.clients, conn)
			}
			h.mu.Unlock()
			return

		case conn := <-h.register:
			h.mu.Lock()
			h.clients[conn] = true
			h.mu.Unlock()
			h.log.Debug().Str("remote", conn.RemoteAddr().String()).Msg("cliente WS conectado")

		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				_ = conn.Close()
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.Lock()
			for conn := range h.clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					_ = conn.Close()
					delete(h.clients, conn)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Serve handler para websocket.New: registra la conexión y la mantiene hasta que el cliente cierre.
func (h *Hub) Serve(c *websocket.Conn) {
	if !h.add(c) {
		_ = c.Close()
		return
	}
	defer h.remove(c)
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			return
		}
	}
}

// add entrega la conexión a Run; false si el hub ya se detuvo.
func (h *Hub) add(c *websocket.Conn) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) remove(c *websocket.Conn) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Clients cantidad de conexiones registradas.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Publish encola el evento sin bloquear; si la cola está llena el evento se descarta.
func (h *Hub) Publish(event dto.LedgerEvent) {
	msg, err := json.Marshal(event)
	if err != nil {
		h.log.Error().Err(err).Msg("serializar evento del ledger")
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		h.log.Warn().Str("event", event.Event).Msg("cola WS llena, evento descartado")
	}
}
