package auth

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"almacen-backend/internal/config"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

type LoginRequest struct {
	Username string `json:"usuario"`
	Password string `json:"password"`
}

// Credentials es el único usuario administrador, tomado de la configuración.
type Credentials struct {
	username string
	hash     []byte
}

// NewCredentials acepta la contraseña en texto plano o ya hasheada con bcrypt.
func NewCredentials(username, password string) (*Credentials, error) {
	if strings.HasPrefix(password, "$2a$") || strings.HasPrefix(password, "$2b$") {
		if _, err := bcrypt.Cost([]byte(password)); err != nil {
			return nil, fmt.Errorf("ADMIN_PASSWORD no es un hash bcrypt válido: %w", err)
		}
		return &Credentials{username: username, hash: []byte(password)}, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("no se pudo hashear la contraseña: %w", err)
	}
	return &Credentials{username: username, hash: hash}, nil
}

func (cr *Credentials) Check(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(strings.TrimSpace(username)), []byte(cr.username)) == 1
	passOK := bcrypt.CompareHashAndPassword(cr.hash, []byte(password)) == nil
	return userOK && passOK
}

// POST /api/auth/login
func LoginHandler(cfg *config.Config, creds *Credentials) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la solicitud inválido")
		}

		if body.Username == "" || body.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Usuario y contraseña son obligatorios")
		}

		if !creds.Check(body.Username, body.Password) {
			return fiber.NewError(fiber.StatusUnauthorized, "Usuario o contraseña incorrectos")
		}

		token, expires, err := GenerateToken(cfg.JWTSecret, creds.username)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo generar el token")
		}

		return c.JSON(fiber.Map{
			"success": true,
			"token":   token,
			"expira":  expires.Format("2006-01-02T15:04:05Z07:00"),
			"usuario": creds.username,
		})
	}
}

// GET /api/auth/me
func MeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"usuario": CurrentUser(c),
			"rol":     c.Locals(CtxUserRoleKey),
		})
	}
}
