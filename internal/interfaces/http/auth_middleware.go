package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Mantenimiento-api/internal/application/dto"
	"github.com/jhoicas/Mantenimiento-api/pkg/jwt"
)

// Locals keys del actor que firma los movimientos y de su sucursal.
const (
	LocalUserID   = "user_id"
	LocalBranchID = "branch_id"
)

var (
	errMissingToken = errors.New("Authorization header requerido")
	errTokenFormat  = errors.New("formato: Bearer <token>")
)

// AuthMiddleware valida el Bearer token y deja actor y sucursal en c.Locals.
// El actor solo etiqueta movimientos, aprobaciones y recepciones; no hay control de permisos.
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := bearerToken(c.Get(fiber.HeaderAuthorization))
		switch {
		case errors.Is(err, errMissingToken):
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: err.Error()})
		case err != nil:
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: err.Error()})
		}

		userID, branchID, err := jwt.Parse(jwtSecret, token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		c.Locals(LocalUserID, userID)
		c.Locals(LocalBranchID, branchID)
		return c.Next()
	}
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", errMissingToken
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", errTokenFormat
	}
	if token = strings.TrimSpace(token); token == "" {
		return "", errMissingToken
	}
	return token, nil
}

// GetUserID actor del token; vacío si la ruta no pasó por AuthMiddleware.
func GetUserID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalUserID).(string)
	return s
}

// GetBranchID sucursal del token; vacío si el token no la trae.
func GetBranchID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalBranchID).(string)
	return s
}

// branchOr devuelve explicit si viene informado, si no la sucursal del token.
func branchOr(c *fiber.Ctx, explicit string) string {
	if explicit != "" {
		return explicit
	}
	return GetBranchID(c)
}
