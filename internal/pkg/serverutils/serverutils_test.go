package serverutils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"decidely-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newTestApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logger.NewNopLogger())})
	app.Use(ErrorHandlerMiddleware())
	return app
}

func decode(t *testing.T, body io.Reader) BaseResponse[json.RawMessage] {
	t.Helper()
	var out BaseResponse[json.RawMessage]
	require.NoError(t, json.NewDecoder(body).Decode(&out))
	return out
}

func TestErrorHandler_MapsErrors(t *testing.T) {
	app := newTestApp()
	app.Get("/app", func(c *fiber.Ctx) error { return NotFound("scenario not found") })
	app.Get("/fiber", func(c *fiber.Ctx) error { return fiber.ErrMethodNotAllowed })
	app.Get("/plain", func(c *fiber.Ctx) error { return errors.New("db exploded") })
	app.Get("/panic", func(c *fiber.Ctx) error { panic("boom") })

	tests := []struct {
		path    string
		code    int
		message string
	}{
		{"/app", 404, "scenario not found"},
		{"/fiber", 405, "Method Not Allowed"},
		{"/plain", 500, "internal server error"},
		{"/panic", 500, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest("GET", tt.path, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.code, resp.StatusCode)

			body := decode(t, resp.Body)
			assert.False(t, body.Success)
			assert.Equal(t, tt.code, body.Code)
			assert.Equal(t, tt.message, body.Message)
		})
	}
}

func TestValidateRequest(t *testing.T) {
	type req struct {
		ScenarioID string `validate:"required,uuid"`
		Difficulty int    `validate:"min=1,max=5"`
	}

	err := ValidateRequest(&req{ScenarioID: "nope", Difficulty: 9})
	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Code)
	assert.Contains(t, appErr.Message, "ScenarioID must be a valid UUID")
	assert.Contains(t, appErr.Message, "Difficulty must be at most 5")

	assert.NoError(t, ValidateRequest(&req{ScenarioID: uuid.NewString(), Difficulty: 3}))
}

func TestJwtMiddleware(t *testing.T) {
	app := newTestApp()
	app.Get("/me", JwtMiddleware(testSecret), func(c *fiber.Ctx) error {
		id, err := UserID(c)
		if err != nil {
			return err
		}
		return c.JSON(SuccessResponse("ok", id.String()))
	})

	userID := uuid.New()
	token, err := IssueToken(userID, "user", testSecret, time.Hour)
	require.NoError(t, err)

	t.Run("valid token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.JSONEq(t, `"`+userID.String()+`"`, string(decode(t, resp.Body).Data))
	})

	t.Run("missing token", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/me", nil))
		require.NoError(t, err)
		assert.Equal(t, 401, resp.StatusCode)
	})

	t.Run("wrong secret", func(t *testing.T) {
		bad, _ := IssueToken(userID, "user", "other", time.Hour)
		req := httptest.NewRequest("GET", "/me", nil)
		req.Header.Set("Authorization", "Bearer "+bad)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, 401, resp.StatusCode)
	})

	t.Run("expired token", func(t *testing.T) {
		old, _ := IssueToken(userID, "user", testSecret, -time.Minute)
		_, err := ParseToken(old, testSecret)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
