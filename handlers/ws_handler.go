package handlers

import (
	"errors"
	"fmt"
	"log"

	"github.com/anjiri1684/excursion_booking/websocket"
	websocketcontrib "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

func parseToken(tokenString, secret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// ServeDashboardWs authenticates with a first {"type":"auth","token":...}
// message, then streams booking notifications for that user.
func ServeDashboardWs(hub *websocket.Hub, secret string) func(*websocketcontrib.Conn) {
	return func(c *websocketcontrib.Conn) {
		type AuthMessage struct {
			Type  string `json:"type"`
			Token string `json:"token"`
		}
		var authMsg AuthMessage
		if err := c.ReadJSON(&authMsg); err != nil || authMsg.Type != "auth" {
			log.Printf("WebSocket auth failed: invalid or missing auth message: %v", err)
			_ = c.WriteJSON(fiber.Map{"error": "Invalid or missing auth message"})
			c.Close()
			return
		}

		claims, err := parseToken(authMsg.Token, secret)
		if err != nil {
			log.Printf("WebSocket auth failed: invalid token: %v", err)
			_ = c.WriteJSON(fiber.Map{"error": "Invalid token"})
			c.Close()
			return
		}

		rawID, _ := claims["user_id"].(string)
		userID, err := uuid.Parse(rawID)
		if err != nil {
			_ = c.WriteJSON(fiber.Map{"error": "Invalid user ID"})
			c.Close()
			return
		}

		// the hub owns writes once the client is registered
		_ = c.WriteJSON(fiber.Map{"type": "ready"})

		client := &websocket.Client{UserID: userID, Conn: c}
		hub.Register <- client
		defer func() {
			hub.Unregister <- client
			c.Close()
		}()

		for {
			if _, _, err := c.ReadMessage(); err != nil {
				if websocketcontrib.IsCloseError(err, websocketcontrib.CloseGoingAway, websocketcontrib.CloseNormalClosure) {
					log.Printf("WebSocket closed for client %s", userID)
				} else {
					log.Printf("WebSocket read error for client %s: %v", userID, err)
				}
				return
			}
		}
	}
}
