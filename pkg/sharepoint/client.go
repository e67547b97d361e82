// Package sharepoint integrates with Microsoft Graph to provision and manage
// per-project collaboration sites.
package sharepoint

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
	"unicode"

	"go.uber.org/zap"

	"github.com/housingpipeline/housingpipeline/pkg/config"
	"github.com/housingpipeline/housingpipeline/pkg/metrics"
)

// tokenExpiryMargin is subtracted from the token lifetime so a token is never
// used right at its expiry.
const tokenExpiryMargin = 5 * time.Minute

// maxNicknameLength bounds the mail nickname derived from a project name.
const maxNicknameLength = 64

// APIError is a non-2xx response from the Graph API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("graph api error %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a Graph 404, which during site polling
// means "not provisioned yet" rather than failure.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Site is the subset of a Graph site resource the provisioner needs.
type Site struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	WebURL      string `json:"webUrl"`
}

// DriveItem is a created folder or uploaded file.
type DriveItem struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	WebURL string `json:"webUrl"`
}

// Client is an authenticated Microsoft Graph client. The bearer token is a
// single cached cell refreshed under a mutex when its expiry passes.
type Client struct {
	cfg        *config.GraphConfig
	httpClient *http.Client
	logger     *zap.Logger

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

func NewClient(cfg *config.GraphConfig, logger *zap.Logger) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

// AccessToken returns the cached bearer token, refreshing it through a
// client-credential exchange when missing or expired.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	tokenURL := fmt.Sprintf("%s/%s/oauth2/v2.0/token", c.cfg.LoginURL, c.cfg.TenantID)
	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {c.cfg.ClientID},
		"client_secret": {c.cfg.ClientSecret},
		"scope":         {"https://graph.microsoft.com/.default"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return "", errors.New("token response missing access_token")
	}

	expiresIn := tokenResp.ExpiresIn
	if expiresIn == 0 {
		expiresIn = 3600
	}

	c.token = tokenResp.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(expiresIn)*time.Second - tokenExpiryMargin)
	metrics.GraphTokenRefreshes.Inc()

	return c.token, nil
}

func (c *Client) doJSON(ctx context.Context, method, endpoint string, body, out interface{}) error {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return &APIError{StatusCode: resp.StatusCode, Message: graphErrorMessage(respBody)}
	}
	if out != nil && len(respBody) > 0 {
		return json.Unmarshal(respBody, out)
	}
	return nil
}

func graphErrorMessage(body []byte) string {
	var graphErr struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &graphErr); err == nil && graphErr.Error.Message != "" {
		return graphErr.Error.Message
	}
	return strings.TrimSpace(string(body))
}

// CreateGroup creates a Unified (Microsoft 365) group for the project, which
// in turn triggers SharePoint site provisioning. Returns the group id and the
// mail nickname derived from the project name.
func (c *Client) CreateGroup(ctx context.Context, displayName, description, ownerUserID string) (string, string, error) {
	nickname := MailNickname(displayName)

	groupData := map[string]interface{}{
		"displayName":     displayName,
		"description":     description,
		"groupTypes":      []string{"Unified"},
		"mailEnabled":     true,
		"mailNickname":    nickname,
		"securityEnabled": false,
		"owners@odata.bind": []string{
			c.cfg.BaseURL + "/users/" + ownerUserID,
		},
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/groups", groupData, &created); err != nil {
		return "", "", err
	}
	return created.ID, nickname, nil
}

// GetSite fetches the root SharePoint site of a group. Returns a 404 APIError
// while the site is still being provisioned.
func (c *Client) GetSite(ctx context.Context, groupID string) (*Site, error) {
	var site Site
	if err := c.doJSON(ctx, http.MethodGet, "/groups/"+groupID+"/sites/root", nil, &site); err != nil {
		return nil, err
	}
	return &site, nil
}

// CreateFolder creates one folder at the root of the group's document
// library, renaming on conflict.
func (c *Client) CreateFolder(ctx context.Context, groupID, name string) (*DriveItem, error) {
	folderData := map[string]interface{}{
		"name":   name,
		"folder": map[string]interface{}{},
		"@microsoft.graph.conflictBehavior": "rename",
	}

	var item DriveItem
	if err := c.doJSON(ctx, http.MethodPost, "/groups/"+groupID+"/drive/root/children", folderData, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// AddMember adds a user to the group, granting SharePoint access.
func (c *Client) AddMember(ctx context.Context, groupID, userID string) error {
	memberData := map[string]interface{}{
		"@odata.id": c.cfg.BaseURL + "/users/" + userID,
	}
	return c.doJSON(ctx, http.MethodPost, "/groups/"+groupID+"/members/$ref", memberData, nil)
}

// UploadFile uploads raw bytes into the group's document library, optionally
// under a folder path.
func (c *Client) UploadFile(ctx context.Context, groupID, folderPath, fileName string, content []byte) (*DriveItem, error) {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return nil, err
	}

	endpoint := "/groups/" + groupID + "/drive/root:/" + fileName + ":/content"
	if folderPath != "" {
		endpoint = "/groups/" + groupID + "/drive/root:/" + folderPath + "/" + fileName + ":/content"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.cfg.BaseURL+endpoint, bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: graphErrorMessage(respBody)}
	}

	var item DriveItem
	if err := json.Unmarshal(respBody, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// MailNickname derives the external system's unique nickname from a project
// name: lowercase, alphanumeric runes only, at most 64 characters.
func MailNickname(name string) string {
	var b strings.Builder
	count := 0
	for _, r := range name {
		if count == maxNicknameLength {
			break
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
			count++
		}
	}
	return b.String()
}
