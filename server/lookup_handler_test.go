package server

import (
	"encoding/json"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupHandler(t *testing.T) {
	srv := newTestServer(t)

	t.Run("returns a code by dotted form", func(t *testing.T) {
		resp := testGet(t, srv, "/api/v1/codes/E11.9")
		defer resp.Body.Close()
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var out codeResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.Equal(t, "E11.9", out.Code)
		assert.True(t, out.Billable)
		assert.Equal(t, 4, out.Chapter)
		assert.Equal(t, "Endocrine, nutritional and metabolic diseases", out.ChapterName)
		assert.True(t, out.HasVector)
		assert.NotEmpty(t, out.Description)
	})

	t.Run("accepts the bare form", func(t *testing.T) {
		resp := testGet(t, srv, "/api/v1/codes/e119")
		defer resp.Body.Close()
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var out codeResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.Equal(t, "E11.9", out.Code)
	})

	t.Run("unknown code", func(t *testing.T) {
		resp := testGet(t, srv, "/api/v1/codes/E88.88")
		defer resp.Body.Close()
		require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

		var out map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.Contains(t, out["error"], "E88.88 not found")
	})

	t.Run("malformed code", func(t *testing.T) {
		resp := testGet(t, srv, "/api/v1/codes/GERD")
		defer resp.Body.Close()
		require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

		var out map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.Contains(t, out["error"], "malformed")
	})
}
