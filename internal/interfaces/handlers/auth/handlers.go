package auth

import (
	authsvc "propshare-backend/internal/auth"
	"propshare-backend/internal/middleware"
	"propshare-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Handlers holds dependencies for auth endpoints.
type Handlers struct {
	Finder authsvc.PrincipalFinder
	Rdb    *redis.Client
	Config middleware.SessionConfig
}

// Login POST /api/v1/auth/login: verify the API key, open a session, track it per key, set the cookie.
func (h *Handlers) Login(c *fiber.Ctx) error {
	if h.Finder == nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	var req authsvc.LoginInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, authsvc.ErrKeyRequired.Error(), fiber.StatusBadRequest, nil)
	}
	if req.KeyID == "" || req.Secret == "" {
		return response.Error(c, authsvc.ErrKeyRequired.Error(), fiber.StatusBadRequest, nil)
	}

	p, err := h.Finder.FindByKey(req.KeyID, req.Secret)
	if err != nil {
		switch err {
		case authsvc.ErrKeyRequired:
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		case authsvc.ErrUnknownKey, authsvc.ErrIncorrectSecret:
			return response.Error(c, err.Error(), fiber.StatusUnauthorized, nil)
		default:
			log.Error().Err(err).Msg("auth/login: key lookup failed")
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}
	sp, err := authsvc.ToSession(p)
	if err != nil {
		log.Error().Err(err).Str("key_id", p.KeyID.String()).Msg("auth/login: bad capability record")
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}

	sessionID := middleware.RegenerateSessionID(c)
	middleware.SetSessionUser(c, middleware.SessionUser{
		KeyID:        sp.KeyID,
		Address:      sp.Address,
		Label:        sp.Label,
		Capabilities: sp.Capabilities,
	})

	if err := h.Rdb.SAdd(c.UserContext(), authsvc.KeySessionsKey(sp.KeyID), sessionID).Err(); err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}

	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.Value = middleware.SessionCookieValue(h.Config.Secret, sessionID)
	c.Cookie(&cookie)

	log.Info().Str("key_id", sp.KeyID).Str("address", sp.Address).Msg("auth/login: success")
	return response.Success(c, "Login successful", fiber.Map{"principal": sp}, nil)
}

// Me GET /api/v1/auth/me returns the session principal.
func (h *Handlers) Me(c *fiber.Ctx) error {
	sp, err := authsvc.VerifyPrincipal(middleware.GetUser(c))
	if err != nil {
		log.Debug().Str("path", "/auth/me").Bool("session_id_present", middleware.GetSessionID(c) != "").
			Msg("auth/me: returning 401 Not authenticated")
		return response.Error(c, "Not authenticated", fiber.StatusUnauthorized, nil)
	}
	return response.Success(c, "Authenticated", fiber.Map{"principal": sp}, nil)
}

// Logout DELETE /api/v1/auth/logout drops the session from Redis and clears the cookie.
func (h *Handlers) Logout(c *fiber.Ctx) error {
	sessionID := middleware.GetSessionID(c)
	ctx := c.UserContext()

	if sessionID != "" {
		if sp, err := authsvc.VerifyPrincipal(middleware.GetUser(c)); err == nil {
			if err := h.Rdb.SRem(ctx, authsvc.KeySessionsKey(sp.KeyID), sessionID).Err(); err != nil {
				log.Warn().Err(err).Str("key_id", sp.KeyID).Msg("auth/logout: untrack session failed")
			}
		}
		if err := h.Rdb.Del(ctx, middleware.SessionRedisPrefix+sessionID).Err(); err != nil {
			log.Warn().Err(err).Msg("auth/logout: delete session failed")
		}
	}

	middleware.DestroySession(c)

	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.Value = ""
	cookie.MaxAge = -1
	c.Cookie(&cookie)

	return response.Success(c, "Logged out successfully", nil, nil)
}
