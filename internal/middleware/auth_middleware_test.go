package middleware

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agristock/pkg/jwt"
)

func TestRequireAuthAndPrivilege(t *testing.T) {
	userID := uuid.New()
	authenticate := func(token string) (*jwt.Claims, error) {
		if token != "good" {
			return nil, errors.New("invalid or expired token")
		}
		return &jwt.Claims{UserID: userID, Name: "Asha", Privileges: []string{"invoice:create"}}, nil
	}

	app := fiber.New()
	app.Use(RequireAuth(authenticate))
	app.Get("/bill", RequirePrivilege("invoice:create"), func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("user_id").(string))
	})
	app.Get("/report", RequireAnyPrivilege("report:view", "stock:adjust"), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"missing header", "/bill", "", fiber.StatusUnauthorized},
		{"wrong scheme", "/bill", "Basic good", fiber.StatusUnauthorized},
		{"bad token", "/bill", "Bearer bad", fiber.StatusUnauthorized},
		{"granted", "/bill", "Bearer good", fiber.StatusOK},
		{"not granted", "/report", "Bearer good", fiber.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}
