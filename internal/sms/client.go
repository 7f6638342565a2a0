package sms

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Config carries Twilio style messaging credentials. An empty AccountSID
// leaves the client unconfigured and every send is skipped upstream.
type Config struct {
	AccountSID string
	AuthToken  string
	From       string
	BaseURL    string
}

const defaultBaseURL = "https://api.twilio.com"

// Client posts outbound text messages to the provider's REST API.
type Client struct {
	config     Config
	httpClient *http.Client
}

func NewClient(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Configured reports whether credentials are present.
func (c *Client) Configured() bool {
	return c.config.AccountSID != "" && c.config.AuthToken != "" && c.config.From != ""
}

// Send delivers one message to an E.164 number.
func (c *Client) Send(ctx context.Context, to, body string) error {
	if !c.Configured() {
		return fmt.Errorf("sms: client is not configured")
	}

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", c.config.From)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.config.BaseURL, c.config.AccountSID)
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("sms: failed to build request: %w", err)
	}
	request.SetBasicAuth(c.config.AccountSID, c.config.AuthToken)
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("sms: request failed: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(response.Body, 1024))
		return fmt.Errorf("sms: provider returned status %d: %s", response.StatusCode, strings.TrimSpace(string(detail)))
	}

	return nil
}
