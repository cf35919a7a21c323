package portal

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/time/rate"

	"github.com/scan-io-git/portal-lens/internal/findings"
	"github.com/scan-io-git/portal-lens/pkg/shared/config"
	"github.com/scan-io-git/portal-lens/pkg/shared/httpclient"
)

// APIPrefix is appended to the configured portal URL.
const APIPrefix = "/api/v1"

type Client struct {
	httpc   *resty.Client
	limiter *rate.Limiter
	logger  hclog.Logger
	url     string
}

// New builds a portal client from the portal and http_client directives.
// It fails with ErrNotConfigured when the URL or token is missing.
func New(logger hclog.Logger, cfg *config.Config) (Client, error) {
	if cfg == nil || strings.TrimSpace(cfg.Portal.URL) == "" {
		return Client{}, fmt.Errorf("%w: base URL is not set, set portal.url or %s", ErrNotConfigured, config.EnvPortalURL)
	}
	if strings.TrimSpace(cfg.Portal.Token) == "" {
		return Client{}, fmt.Errorf("%w: token is not set, set portal.token or %s", ErrNotConfigured, config.EnvPortalToken)
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	portalURL := strings.TrimRight(strings.TrimSpace(cfg.Portal.URL), "/")

	httpc := httpclient.InitializeRestyClient(logger, cfg)
	httpc.SetBaseURL(portalURL + APIPrefix)
	httpc.SetHeader("Authorization", fmt.Sprintf("Token %s", cfg.Portal.Token))
	httpc.SetHeader("Accept", "application/json")

	limiter := rate.NewLimiter(rate.Inf, 1)
	if rps := httpclient.ApplyHTTPClientConfig(&cfg.HTTPClient).RequestsPerSecond; rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}

	return Client{
		httpc:   httpc,
		limiter: limiter,
		logger:  logger,
		url:     portalURL,
	}, nil
}

// URL returns the portal web URL without the API prefix.
func (c Client) URL() string {
	return c.url
}

func (c Client) request(ctx context.Context) (*resty.Request, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return c.httpc.R().SetContext(ctx), nil
}

func checkResponse(resp *resty.Response, operation string) error {
	if resp.IsSuccess() {
		return nil
	}
	return &StatusError{
		Operation:  operation,
		StatusCode: resp.StatusCode(),
		Body:       strings.TrimSpace(string(resp.Body())),
	}
}

// GetAssets returns one page of assets matching the query.
func (c Client) GetAssets(ctx context.Context, q AssetQuery) (*Page[findings.Asset], error) {
	req, err := c.request(ctx)
	if err != nil {
		return nil, err
	}

	var r Page[findings.Asset]
	resp, err := req.
		SetQueryParamsFromValues(q.Values()).
		SetResult(&r).
		Get("/product-assets/")
	if err != nil {
		return nil, fmt.Errorf("getting product assets: %w", err)
	}
	if err := checkResponse(resp, "getting product assets"); err != nil {
		return nil, err
	}
	if err := validateResponse("product assets", &r); err != nil {
		return nil, err
	}

	c.logger.Debug("assets page received", "search", q.Search, "page", q.Page, "count", r.Total(), "results", len(r.Results))
	return &r, nil
}

// GetFindings returns one page of findings matching the query.
func (c Client) GetFindings(ctx context.Context, q FindingQuery) (*Page[findings.Finding], error) {
	req, err := c.request(ctx)
	if err != nil {
		return nil, err
	}

	var r Page[findings.Finding]
	resp, err := req.
		SetQueryParamsFromValues(q.Values()).
		SetResult(&r).
		Get("/findings/")
	if err != nil {
		return nil, fmt.Errorf("getting findings page %d: %w", q.Page, err)
	}
	if err := checkResponse(resp, fmt.Sprintf("getting findings page %d", q.Page)); err != nil {
		return nil, err
	}
	if err := validateResponse("findings", &r); err != nil {
		return nil, err
	}

	c.logger.Debug("findings page received", "page", q.Page, "pages_count", r.Pages(), "count", r.Total(), "results", len(r.Results))
	return &r, nil
}

// SetStatus requests a triage status change. The resulting status is whatever the portal decides.
func (c Client) SetStatus(ctx context.Context, id int, status findings.TriageStatus) error {
	if !status.Editable() {
		return fmt.Errorf("triage status %q cannot be set directly", status)
	}

	req, err := c.request(ctx)
	if err != nil {
		return err
	}

	resp, err := req.
		SetHeader("Content-Type", "application/json").
		Post(fmt.Sprintf("/findings/%d/set-status/%d/", id, int(status)))
	if err != nil {
		return fmt.Errorf("setting status of finding %d: %w", id, err)
	}
	return checkResponse(resp, fmt.Sprintf("setting status of finding %d", id))
}

// AddTag attaches a tag to a finding.
func (c Client) AddTag(ctx context.Context, id int, name string) error {
	return c.postTag(ctx, id, "add", name)
}

// RemoveTag detaches a tag from a finding.
func (c Client) RemoveTag(ctx context.Context, id int, name string) error {
	return c.postTag(ctx, id, "remove", name)
}

func (c Client) postTag(ctx context.Context, id int, action, name string) error {
	req, err := c.request(ctx)
	if err != nil {
		return err
	}

	resp, err := req.
		SetBody(map[string]interface{}{"name": name}).
		Post(fmt.Sprintf("/findings/%d/tags/%s/", id, action))
	if err != nil {
		return fmt.Errorf("tag %s on finding %d: %w", action, id, err)
	}
	return checkResponse(resp, fmt.Sprintf("tag %s on finding %d", action, id))
}

// GetProfile returns the user the token belongs to.
func (c Client) GetProfile(ctx context.Context) (*findings.Profile, error) {
	req, err := c.request(ctx)
	if err != nil {
		return nil, err
	}

	var p findings.Profile
	resp, err := req.
		SetResult(&p).
		Get("/profile/")
	if err != nil {
		return nil, fmt.Errorf("getting profile: %w", err)
	}
	if err := checkResponse(resp, "getting profile"); err != nil {
		return nil, err
	}
	if err := validateResponse("profile", &p); err != nil {
		return nil, err
	}
	return &p, nil
}
