package controllers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"ssincom-backend/logger"
	"ssincom-backend/middlewares"
	"ssincom-backend/models"
)

var operator models.User

// ConfigureAccount hashes the operator password once at startup.
func ConfigureAccount(username, password string) error {
	u := models.User{Username: username}
	if err := u.SetPassword(password); err != nil {
		return err
	}
	operator = u
	return nil
}

type loginInput struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// Login accepts a form post or JSON body and starts a cookie session.
func Login(c *fiber.Ctx) error {
	var in loginInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest("invalid request body")
	}
	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" || in.Password == "" {
		return badRequest("username and password are required")
	}

	if !operator.Matches(in.Username, in.Password) {
		log := logger.WithComponent("auth")
		log.Warn().Str("username", in.Username).Str("ip", c.IP()).Msg("login failed")
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "ชื่อผู้ใช้หรือรหัสผ่านไม่ถูกต้อง",
		})
	}

	token, exp, err := middlewares.GenerateToken(in.Username)
	if err != nil {
		return err
	}
	middlewares.SetSessionCookie(c, token, exp)
	return c.JSON(fiber.Map{
		"message":    "success",
		"token":      token,
		"expires_at": exp,
		"user":       fiber.Map{"username": in.Username},
	})
}

func Logout(c *fiber.Ctx) error {
	middlewares.ClearSessionCookie(c)
	return c.JSON(fiber.Map{
		"message": "success",
	})
}

func Healthz(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
