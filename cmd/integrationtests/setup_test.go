package integrationtests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bidding-marketplace/internal/auth"
	bidding "bidding-marketplace/internal/biddingService"
	collection "bidding-marketplace/internal/collectionService"
	"bidding-marketplace/internal/events"
	identity "bidding-marketplace/internal/identityService"
	"bidding-marketplace/internal/repository"
	"bidding-marketplace/internal/server"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// SetupTestRouter initializes the full router on top of an in-memory repository
func SetupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	repo := repository.NewMemoryRepo()
	publisher := events.NewLogPublisher()

	services := server.Services{
		Identity:    identity.NewIdentityService(repo, auth.NewTokenManager("integration-secret", time.Hour), bcrypt.MinCost),
		Collections: collection.NewCollectionService(repo, publisher),
		Bidding:     bidding.NewBiddingService(repo, publisher),
	}
	return server.SetupRouter(services, server.RateLimit{})
}

// ExecuteRequestAndParse executes an HTTP request on the given router and parses the
// JSON envelope. A non-empty token is sent as a bearer credential.
func ExecuteRequestAndParse(t *testing.T, router *gin.Engine, method, url, token string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()

	var reqBody []byte
	var err error

	switch v := body.(type) {
	case nil:
	case []byte:
		reqBody = v
	case string:
		reqBody = []byte(v)
	default:
		reqBody, err = json.Marshal(v)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	router.ServeHTTP(w, req)

	var resp map[string]any
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
	}
	return resp, w
}

// data returns the "data" object of a success envelope
func data(t *testing.T, resp map[string]any) map[string]any {
	t.Helper()
	d, ok := resp["data"].(map[string]any)
	require.True(t, ok, "response has no data object: %v", resp)
	return d
}

// testUser is a registered account and its bearer token
type testUser struct {
	ID    string
	Token string
}

func registerUser(t *testing.T, router *gin.Engine, email, name string) testUser {
	t.Helper()
	resp, w := ExecuteRequestAndParse(t, router, http.MethodPost, "/auth/register", "", map[string]any{
		"email":    email,
		"password": "password123",
		"name":     name,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	d := data(t, resp)
	user := d["user"].(map[string]any)
	return testUser{ID: user["id"].(string), Token: d["access_token"].(string)}
}

func createCollection(t *testing.T, router *gin.Engine, owner testUser, name, price string) string {
	t.Helper()
	resp, w := ExecuteRequestAndParse(t, router, http.MethodPost, "/collections", owner.Token, map[string]any{
		"name":        name,
		"description": name + " description",
		"stocks":      10,
		"price":       price,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	return data(t, resp)["id"].(string)
}

func placeBid(t *testing.T, router *gin.Engine, bidder testUser, collectionID, price string) string {
	t.Helper()
	resp, w := ExecuteRequestAndParse(t, router, http.MethodPost, "/bids", bidder.Token, map[string]any{
		"collection_id": collectionID,
		"price":         price,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	return data(t, resp)["id"].(string)
}

// bidStatuses maps bid id to status for every bid of a collection
func bidStatuses(t *testing.T, router *gin.Engine, collectionID string) map[string]string {
	t.Helper()
	resp, w := ExecuteRequestAndParse(t, router, http.MethodGet, "/collections/"+collectionID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	out := map[string]string{}
	for _, b := range data(t, resp)["bids"].([]any) {
		bid := b.(map[string]any)
		out[bid["id"].(string)] = bid["status"].(string)
	}
	return out
}
