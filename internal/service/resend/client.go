// Package resend sends transactional mail through the Resend HTTP API.
package resend

import (
	"context"
	"fmt"
	"time"

	xhttp "rrtracker/pkg/http"
)

const DefaultBaseURL = "https://api.resend.com"

// Client implements repository.Mailer.
type Client struct {
	apiKey  string
	baseURL string
	from    string
	http    *xhttp.Client
}

// New creates a Resend mail client. from is the verified sender address,
// e.g. "RR Tracker <alerts@example.com>".
func New(apiKey, baseURL, from string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		from:    from,
		http:    xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type sendResponse struct {
	ID string `json:"id"`
}

// Send delivers one message to one recipient. Each recipient gets its own
// API call so a bounced address never blocks the rest of a fan-out.
func (c *Client) Send(ctx context.Context, to, subject, html string) error {
	var resp sendResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    c.baseURL + "/emails",
		Headers: map[string]string{
			"Authorization": "Bearer " + c.apiKey,
		},
		Body: sendRequest{
			From:    c.from,
			To:      []string{to},
			Subject: subject,
			HTML:    html,
		},
	}, &resp)
	if err != nil {
		return fmt.Errorf("resend to %s: %w", to, err)
	}
	return nil
}
