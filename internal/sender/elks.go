package sender

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jimmiewester/skippy/internal/config"
)

const (
	defaultBaseURL      = "https://api.46elks.com"
	maxResponseBodySize = 4096
)

// ElksClient sends outbound SMS through the 46elks REST API. Without
// credentials it degrades to log-only mode, which is the default in
// development.
type ElksClient struct {
	cfg     config.ElksConfig
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func NewElksClient(cfg config.ElksConfig, logger *zap.Logger) *ElksClient {
	return &ElksClient{
		cfg:     cfg,
		baseURL: defaultBaseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Send delivers one SMS. When no API credentials are configured the send is
// logged and reported as successful.
func (c *ElksClient) Send(ctx context.Context, toNumber, message string) error {
	if c.cfg.APIUsername == "" || c.cfg.APIPassword == "" {
		c.logger.Info("SMS reply logged (no gateway credentials configured)",
			zap.String("to_number", toNumber),
			zap.String("message", message),
		)
		return nil
	}

	form := url.Values{}
	form.Set("from", c.cfg.FromNumber)
	form.Set("to", toNumber)
	form.Set("message", message)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/a1/sms", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create SMS request: %w", err)
	}
	req.SetBasicAuth(c.cfg.APIUsername, c.cfg.APIPassword)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("SMS gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("SMS gateway returned HTTP %d: %s", resp.StatusCode, string(body))
	}

	c.logger.Info("SMS reply sent via gateway",
		zap.String("to_number", toNumber),
		zap.Int("http_status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)
	return nil
}
