package sharepoint

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/housingpipeline/housingpipeline/pkg/config"
)

func testGraphConfig() *config.GraphConfig {
	return &config.GraphConfig{
		TenantID:         "contoso",
		ClientID:         "client-id",
		ClientSecret:     "client-secret",
		BaseURL:          "https://graph.test/v1.0",
		LoginURL:         "https://login.test",
		PollInterval:     10 * time.Millisecond,
		ProvisionTimeout: 200 * time.Millisecond,
	}
}

func newTestClient(t *testing.T) *Client {
	t.Helper()
	client := NewClient(testGraphConfig(), zap.NewNop())
	httpmock.ActivateNonDefault(client.httpClient)
	t.Cleanup(httpmock.DeactivateAndReset)
	return client
}

func registerToken(t *testing.T) {
	t.Helper()
	httpmock.RegisterResponder(http.MethodPost, "https://login.test/contoso/oauth2/v2.0/token",
		httpmock.NewJsonResponderOrPanic(http.StatusOK, map[string]interface{}{
			"access_token": "test-token",
			"expires_in":   3600,
		}))
}

func TestAccessTokenCached(t *testing.T) {
	client := newTestClient(t)
	registerToken(t)

	token, err := client.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "test-token", token)

	_, err = client.AccessToken(context.Background())
	require.NoError(t, err)

	// Second call must be served from the cache.
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestAccessTokenRefreshAfterExpiry(t *testing.T) {
	client := newTestClient(t)
	registerToken(t)

	_, err := client.AccessToken(context.Background())
	require.NoError(t, err)

	client.tokenExpiry = time.Now().Add(-time.Second)

	_, err = client.AccessToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, httpmock.GetTotalCallCount())
}

func TestAccessTokenErrorResponse(t *testing.T) {
	client := newTestClient(t)
	httpmock.RegisterResponder(http.MethodPost, "https://login.test/contoso/oauth2/v2.0/token",
		httpmock.NewStringResponder(http.StatusUnauthorized, `{"error":"invalid_client"}`))

	_, err := client.AccessToken(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestCreateGroup(t *testing.T) {
	client := newTestClient(t)
	registerToken(t)
	httpmock.RegisterResponder(http.MethodPost, "https://graph.test/v1.0/groups",
		httpmock.NewJsonResponderOrPanic(http.StatusCreated, map[string]interface{}{
			"id": "group-123",
		}))

	groupID, nickname, err := client.CreateGroup(context.Background(), "Cedar Commons", "desc", "owner-1")
	require.NoError(t, err)
	assert.Equal(t, "group-123", groupID)
	assert.Equal(t, "cedarcommons", nickname)
}

func TestGetSiteNotFound(t *testing.T) {
	client := newTestClient(t)
	registerToken(t)
	httpmock.RegisterResponder(http.MethodGet, "https://graph.test/v1.0/groups/g1/sites/root",
		httpmock.NewStringResponder(http.StatusNotFound,
			`{"error":{"message":"Requested site could not be found"}}`))

	_, err := client.GetSite(context.Background(), "g1")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "Requested site could not be found")
}

func TestUploadFilePaths(t *testing.T) {
	client := newTestClient(t)
	registerToken(t)
	httpmock.RegisterResponder(http.MethodPut,
		"https://graph.test/v1.0/groups/g1/drive/root:/Financials/budget.xlsx:/content",
		httpmock.NewJsonResponderOrPanic(http.StatusCreated, map[string]interface{}{
			"id":     "item-1",
			"name":   "budget.xlsx",
			"webUrl": "https://contoso.sharepoint.com/budget.xlsx",
		}))

	item, err := client.UploadFile(context.Background(), "g1", "Financials", "budget.xlsx", []byte("data"))
	require.NoError(t, err)
	assert.Equal(t, "item-1", item.ID)
	assert.Equal(t, "https://contoso.sharepoint.com/budget.xlsx", item.WebURL)
}

func TestMailNickname(t *testing.T) {
	cases := map[string]string{
		"Cedar Commons":        "cedarcommons",
		"Riverside Apartments": "riversideapartments",
		"Phase 2 (North)":      "phase2north",
		"Ümlaut Höuse":         "ümlauthöuse",
	}
	for input, want := range cases {
		assert.Equal(t, want, MailNickname(input), "input %q", input)
	}

	long := ""
	for i := 0; i < 100; i++ {
		long += "a"
	}
	assert.Len(t, MailNickname(long), 64)
}

func TestDefaultFolderStructure(t *testing.T) {
	folders := DefaultFolderStructure([]string{"State HOME Funds", "AHP Grant"})

	require.Len(t, folders, 10)
	assert.Equal(t, "01 - Project Planning", folders[0])
	assert.Equal(t, "08 - Team Communications", folders[7])
	assert.Equal(t, "09 - State HOME Funds Application", folders[8])
	assert.Equal(t, "10 - AHP Grant Application", folders[9])
}
