package sharepoint

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/housingpipeline/housingpipeline/pkg/config"
	"github.com/housingpipeline/housingpipeline/pkg/metrics"
)

// ErrProvisionTimeout means the site never became ready within the configured
// wait budget. The group already exists; there is no automatic retry.
var ErrProvisionTimeout = errors.New("sharepoint site provisioning timed out")

// SiteResult is the outcome of a completed provisioning run.
type SiteResult struct {
	GroupID        string
	MailNickname   string
	SiteURL        string
	Email          string
	FoldersCreated int
}

// Provisioner runs the create-group / wait-for-site / create-folders workflow
// against the Graph API.
type Provisioner struct {
	client *Client
	cfg    *config.GraphConfig
	logger *zap.Logger
}

func NewProvisioner(client *Client, cfg *config.GraphConfig, logger *zap.Logger) *Provisioner {
	return &Provisioner{client: client, cfg: cfg, logger: logger}
}

// ProvisionSite creates the project group, waits for the SharePoint site to
// come up under the configured deadline, then creates the folder taxonomy.
// Folder creation is best-effort: individual failures are logged and counted
// but never abort the run.
func (p *Provisioner) ProvisionSite(ctx context.Context, projectName, description, ownerUserID string, fundingSources []string) (*SiteResult, error) {
	start := time.Now()

	groupID, nickname, err := p.client.CreateGroup(ctx, projectName, description, ownerUserID)
	if err != nil {
		metrics.SiteProvisionsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("create group: %w", err)
	}
	p.logger.Info("created project group",
		zap.String("group_id", groupID),
		zap.String("mail_nickname", nickname))

	site, err := p.waitForSite(ctx, groupID)
	if err != nil {
		if errors.Is(err, ErrProvisionTimeout) {
			metrics.SiteProvisionsTotal.WithLabelValues("timeout").Inc()
		} else {
			metrics.SiteProvisionsTotal.WithLabelValues("failed").Inc()
		}
		return nil, err
	}

	created := 0
	for _, folder := range DefaultFolderStructure(fundingSources) {
		if _, err := p.client.CreateFolder(ctx, groupID, folder); err != nil {
			p.logger.Warn("failed to create folder",
				zap.String("group_id", groupID),
				zap.String("folder", folder),
				zap.Error(err))
			metrics.FolderCreateFailures.Inc()
			continue
		}
		created++
	}

	metrics.SiteProvisionsTotal.WithLabelValues("succeeded").Inc()
	metrics.SiteProvisionDuration.Observe(time.Since(start).Seconds())

	return &SiteResult{
		GroupID:        groupID,
		MailNickname:   nickname,
		SiteURL:        site.WebURL,
		Email:          p.siteEmail(nickname),
		FoldersCreated: created,
	}, nil
}

// waitForSite polls for the group's site until it exists, the wait budget
// runs out, or a non-404 error comes back.
func (p *Provisioner) waitForSite(ctx context.Context, groupID string) (*Site, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.ProvisionTimeout)
	defer cancel()

	ticker := time.NewTicker(p.cfg.PollInterval)
	defer ticker.Stop()

	for {
		site, err := p.client.GetSite(ctx, groupID)
		if err == nil {
			return site, nil
		}
		if !IsNotFound(err) {
			// The wait budget can expire while a readiness call is in
			// flight; that is still a timeout, not an upstream failure.
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, ErrProvisionTimeout
			}
			return nil, fmt.Errorf("site readiness check: %w", err)
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, ErrProvisionTimeout
			}
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// siteEmail derives the group mailbox address from the nickname and the
// tenant's onmicrosoft prefix.
func (p *Provisioner) siteEmail(nickname string) string {
	prefix := strings.SplitN(p.cfg.TenantID, ".", 2)[0]
	return fmt.Sprintf("%s@%s.onmicrosoft.com", nickname, prefix)
}
