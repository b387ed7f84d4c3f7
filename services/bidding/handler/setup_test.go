package handler

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	model "bidding-marketplace/internal/models"
	"bidding-marketplace/services/bidding/helpers"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

var (
	ownerUser  = model.User{ID: "owner1", Name: "Owner", Email: "owner@example.com", Role: model.RoleUser}
	bidderUser = model.User{ID: "bidder1", Name: "Bidder", Email: "bidder@example.com", Role: model.RoleUser}
)

// newTestRouter returns a gin engine whose requests carry caller as the
// authenticated user. A zero caller leaves the request unauthenticated.
func newTestRouter(caller model.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	if caller.ID != "" {
		router.Use(func(c *gin.Context) {
			c.Set(helpers.CallerKey, caller)
			c.Next()
		})
	}
	return router
}

// performRequest sends body (a string is sent raw, anything else JSON-encoded)
// and decodes the envelope
func performRequest(t *testing.T, router *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reqBody []byte
	switch v := body.(type) {
	case nil:
	case string:
		reqBody = []byte(v)
	default:
		var err error
		reqBody, err = json.Marshal(v)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	require.Equal(t, expected, w.Code, "body: %s", w.Body.String())
}

