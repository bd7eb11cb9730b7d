package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// SessionConfig for the Redis-backed session cookie.
type SessionConfig struct {
	Secret            string
	RedisURL          string
	AllowCrossSiteDev bool
	IsProduction      bool
}

const (
	SessionCookieName  = "propshare.sid"
	SessionRedisPrefix = "session:"
	sessionMaxAge      = 24 * time.Hour
)

// SessionUser is the principal shape stored in session under "user".
type SessionUser struct {
	KeyID        string
	Address      string
	Label        string
	Capabilities []string
}

// Session dials Redis from cfg and returns the session middleware together with the client.
func Session(cfg SessionConfig) (fiber.Handler, *redis.Client, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	rdb := redis.NewClient(opt)
	return SessionWithClient(rdb, cfg.Secret), rdb, nil
}

// SessionWithClient loads the session named by the cookie from Redis and saves it after the handler ran.
// With a non-empty secret, cookies whose signature does not match are treated as absent.
func SessionWithClient(rdb *redis.Client, secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := parseSessionCookie(c.Cookies(SessionCookieName), secret)

		var data map[string]interface{}
		if sessionID != "" {
			b, err := rdb.Get(c.UserContext(), SessionRedisPrefix+sessionID).Bytes()
			if err == nil {
				_ = json.Unmarshal(b, &data)
			}
		}
		if data == nil {
			data = make(map[string]interface{})
		}

		c.Locals("session_data", data)
		if u, ok := data["user"]; ok {
			c.Locals(userLocal, u)
		} else {
			c.Locals(userLocal, nil)
		}
		c.Locals("session_id", sessionID)

		if err := c.Next(); err != nil {
			return err
		}

		// logout clears the id; a login sets a fresh one
		if sid, _ := c.Locals("session_id").(string); sid != "" {
			updated, _ := c.Locals("session_data").(map[string]interface{})
			if len(updated) > 0 {
				b, _ := json.Marshal(updated)
				if err := rdb.Set(context.Background(), SessionRedisPrefix+sid, b, sessionMaxAge).Err(); err != nil {
					log.Warn().Err(err).Msg("session save failed")
				}
			}
		}
		return nil
	}
}

// GetSessionID returns the current session ID from context (for login/logout).
func GetSessionID(c *fiber.Ctx) string {
	sid, _ := c.Locals("session_id").(string)
	return sid
}

// SetSessionUser sets the principal in the session and marks the session for save.
// Call RegenerateSessionID first to get a new id.
func SetSessionUser(c *fiber.Ctx, user SessionUser) {
	data, _ := c.Locals("session_data").(map[string]interface{})
	if data == nil {
		data = make(map[string]interface{})
	}
	caps := user.Capabilities
	if caps == nil {
		caps = []string{}
	}
	data["user"] = map[string]interface{}{
		"key_id":       user.KeyID,
		"address":      user.Address,
		"label":        user.Label,
		"capabilities": caps,
	}
	c.Locals("session_data", data)
	c.Locals(userLocal, data["user"])
}

// RegenerateSessionID creates a new session ID and sets it in Locals (cookie set by handler).
func RegenerateSessionID(c *fiber.Ctx) string {
	newID := uuid.New().String()
	c.Locals("session_id", newID)
	return newID
}

// DestroySession clears the principal and session data; caller must clear cookie and Redis.
func DestroySession(c *fiber.Ctx) {
	c.Locals("session_data", make(map[string]interface{}))
	c.Locals(userLocal, nil)
	c.Locals("session_id", "")
}

// SessionCookieValue is the cookie value for sid: "s:<id>" or, with a secret, "s:<id>.<hmac>".
func SessionCookieValue(secret, sid string) string {
	if secret == "" {
		return "s:" + sid
	}
	return "s:" + sid + "." + signSessionID(secret, sid)
}

func signSessionID(secret, sid string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(sid))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func parseSessionCookie(raw, secret string) string {
	raw = strings.TrimPrefix(raw, "s:")
	sid, sig, signed := strings.Cut(raw, ".")
	if secret == "" {
		return sid
	}
	if !signed || !hmac.Equal([]byte(sig), []byte(signSessionID(secret, sid))) {
		return ""
	}
	return sid
}

// SessionCookieConfig returns the cookie options used for SetCookie/ClearCookie.
func SessionCookieConfig(cfg SessionConfig) fiber.Cookie {
	sameSite := "Lax"
	if cfg.AllowCrossSiteDev {
		sameSite = "None"
	}
	secure := cfg.IsProduction && cfg.AllowCrossSiteDev
	return fiber.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   int(sessionMaxAge.Seconds()),
		HTTPOnly: true,
		Secure:   secure,
		SameSite: sameSite,
	}
}
