package http

import (
	"slices"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/ws"
	"github.com/jhoicas/inventario-ledger/pkg/jwt"
)

// WSUpgrade exige upgrade WebSocket y autentica con ?token= (los navegadores no envían
// Authorization en el handshake). Un certificado de cliente verificado también sirve.
func WSUpgrade(jwtSecret string, roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		role := GetRole(c)
		if role == "" {
			claims, err := jwt.Parse(jwtSecret, c.Query("token"))
			if err != nil {
				return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
			}
			role = claims.Role
			c.Locals(LocalUserID, claims.UserID)
			c.Locals(LocalRole, role)
		}
		if !slices.Contains(roles, role) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "rol sin permiso para esta operación"})
		}
		return c.Next()
	}
}

// LedgerFeed sirve el feed de transacciones del hub.
func LedgerFeed(hub *ws.Hub) fiber.Handler {
	return websocket.New(hub.Serve)
}
