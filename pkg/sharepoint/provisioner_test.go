package sharepoint

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestProvisioner(t *testing.T) (*Provisioner, *Client) {
	t.Helper()
	cfg := testGraphConfig()
	client := NewClient(cfg, zap.NewNop())
	httpmock.ActivateNonDefault(client.httpClient)
	t.Cleanup(httpmock.DeactivateAndReset)
	return NewProvisioner(client, cfg, zap.NewNop()), client
}

func registerGroupCreate(t *testing.T) {
	t.Helper()
	httpmock.RegisterResponder(http.MethodPost, "https://graph.test/v1.0/groups",
		httpmock.NewJsonResponderOrPanic(http.StatusCreated, map[string]interface{}{
			"id": "group-1",
		}))
}

func TestProvisionSiteSuccess(t *testing.T) {
	provisioner, _ := newTestProvisioner(t)
	registerToken(t)
	registerGroupCreate(t)

	// The site 404s twice before coming up, as a fresh group typically does.
	var calls int32
	httpmock.RegisterResponder(http.MethodGet, "https://graph.test/v1.0/groups/group-1/sites/root",
		func(req *http.Request) (*http.Response, error) {
			if atomic.AddInt32(&calls, 1) <= 2 {
				return httpmock.NewStringResponse(http.StatusNotFound,
					`{"error":{"message":"not yet provisioned"}}`), nil
			}
			return httpmock.NewJsonResponse(http.StatusOK, map[string]interface{}{
				"id":          "site-1",
				"displayName": "Cedar Commons",
				"webUrl":      "https://contoso.sharepoint.com/sites/cedarcommons",
			})
		})

	httpmock.RegisterResponder(http.MethodPost, "https://graph.test/v1.0/groups/group-1/drive/root/children",
		httpmock.NewJsonResponderOrPanic(http.StatusCreated, map[string]interface{}{
			"id": "folder-1",
		}))

	result, err := provisioner.ProvisionSite(context.Background(),
		"Cedar Commons", "Affordable housing project in Tacoma, WA", "owner-1",
		[]string{"State HOME Funds"})
	require.NoError(t, err)

	assert.Equal(t, "group-1", result.GroupID)
	assert.Equal(t, "cedarcommons", result.MailNickname)
	assert.Equal(t, "https://contoso.sharepoint.com/sites/cedarcommons", result.SiteURL)
	assert.Equal(t, "cedarcommons@contoso.onmicrosoft.com", result.Email)
	// 8 base folders plus one application folder.
	assert.Equal(t, 9, result.FoldersCreated)
}

func TestProvisionSiteTimeout(t *testing.T) {
	provisioner, _ := newTestProvisioner(t)
	registerToken(t)
	registerGroupCreate(t)

	httpmock.RegisterResponder(http.MethodGet, "https://graph.test/v1.0/groups/group-1/sites/root",
		httpmock.NewStringResponder(http.StatusNotFound,
			`{"error":{"message":"not yet provisioned"}}`))

	_, err := provisioner.ProvisionSite(context.Background(), "Cedar Commons", "desc", "owner-1", nil)
	require.ErrorIs(t, err, ErrProvisionTimeout)
}

func TestProvisionSiteTimeoutDuringReadinessCheck(t *testing.T) {
	provisioner, _ := newTestProvisioner(t)
	registerToken(t)
	registerGroupCreate(t)

	// The readiness call itself hangs until the wait budget runs out.
	httpmock.RegisterResponder(http.MethodGet, "https://graph.test/v1.0/groups/group-1/sites/root",
		func(req *http.Request) (*http.Response, error) {
			<-req.Context().Done()
			return nil, req.Context().Err()
		})

	_, err := provisioner.ProvisionSite(context.Background(), "Cedar Commons", "desc", "owner-1", nil)
	require.ErrorIs(t, err, ErrProvisionTimeout)
}

func TestProvisionSiteAbortsOnNonRetryableError(t *testing.T) {
	provisioner, _ := newTestProvisioner(t)
	registerToken(t)
	registerGroupCreate(t)

	httpmock.RegisterResponder(http.MethodGet, "https://graph.test/v1.0/groups/group-1/sites/root",
		httpmock.NewStringResponder(http.StatusForbidden,
			`{"error":{"message":"insufficient privileges"}}`))

	_, err := provisioner.ProvisionSite(context.Background(), "Cedar Commons", "desc", "owner-1", nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrProvisionTimeout)
	assert.Contains(t, err.Error(), "insufficient privileges")
}

func TestProvisionSiteFolderFailuresAreBestEffort(t *testing.T) {
	provisioner, _ := newTestProvisioner(t)
	registerToken(t)
	registerGroupCreate(t)

	httpmock.RegisterResponder(http.MethodGet, "https://graph.test/v1.0/groups/group-1/sites/root",
		httpmock.NewJsonResponderOrPanic(http.StatusOK, map[string]interface{}{
			"id":     "site-1",
			"webUrl": "https://contoso.sharepoint.com/sites/cedarcommons",
		}))
	httpmock.RegisterResponder(http.MethodPost, "https://graph.test/v1.0/groups/group-1/drive/root/children",
		httpmock.NewStringResponder(http.StatusInternalServerError,
			`{"error":{"message":"drive not ready"}}`))

	result, err := provisioner.ProvisionSite(context.Background(), "Cedar Commons", "desc", "owner-1", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, result.FoldersCreated)
}

func TestProvisionSiteGroupCreateFailure(t *testing.T) {
	provisioner, _ := newTestProvisioner(t)
	registerToken(t)
	httpmock.RegisterResponder(http.MethodPost, "https://graph.test/v1.0/groups",
		httpmock.NewStringResponder(http.StatusBadRequest,
			`{"error":{"message":"mailNickname already in use"}}`))

	_, err := provisioner.ProvisionSite(context.Background(), "Cedar Commons", "desc", "owner-1", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create group")
}
