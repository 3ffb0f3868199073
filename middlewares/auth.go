package middlewares

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

const (
	authHeader    = "Authorization"
	bearerPrefix  = "Bearer "
	SessionCookie = "session"
)

// Claims is the session JWT payload (subject = username).
type Claims struct {
	jwt.RegisteredClaims
}

type sessionSettings struct {
	secret []byte
	ttl    time.Duration
	secure bool
}

var session sessionSettings

// ConfigureSession sets the signing secret and lifetime of session tokens. Call once at startup.
func ConfigureSession(secret string, ttl time.Duration, secureCookie bool) {
	session = sessionSettings{secret: []byte(secret), ttl: ttl, secure: secureCookie}
}

// GenerateToken signs a new HS256 session token for username.
func GenerateToken(username string) (string, time.Time, error) {
	if len(session.secret) == 0 {
		return "", time.Time{}, errors.New("session secret not configured")
	}
	now := time.Now()
	exp := now.Add(session.ttl)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(session.secret)
	return token, exp, err
}

// SetSessionCookie stores token in the HttpOnly session cookie.
func SetSessionCookie(c *fiber.Ctx, token string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   session.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func ClearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   session.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func tokenFromRequest(c *fiber.Ctx) string {
	if raw := strings.TrimSpace(c.Cookies(SessionCookie)); raw != "" {
		return raw
	}
	h := c.Get(authHeader)
	if len(h) > len(bearerPrefix) && strings.EqualFold(h[:len(bearerPrefix)], bearerPrefix) {
		return strings.TrimSpace(h[len(bearerPrefix):])
	}
	return ""
}

// RequireSession accepts the session cookie or a Bearer token and populates c.Locals("userID").
func RequireSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if len(session.secret) == 0 {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "server auth not configured"})
		}
		raw := tokenFromRequest(c)
		if raw == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "กรุณาเข้าสู่ระบบ"})
		}

		parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		var claims Claims
		token, err := parser.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
			return session.secret, nil
		})
		if err != nil || !token.Valid || strings.TrimSpace(claims.Subject) == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "session expired"})
		}

		c.Locals("userID", claims.Subject)
		return c.Next()
	}
}
