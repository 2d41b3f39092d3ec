package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"engagesphere/pkg/logx"
)

const sendgridSendURL = "https://api.sendgrid.com/v3/mail/send"

type EmailConfig struct {
	APIKey    string
	FromEmail string
}

// EmailClient sends via the SendGrid v3 mail API. With no API key or sender
// configured it simulates: the send is logged and reported as success.
type EmailClient struct {
	cfg  EmailConfig
	http *http.Client
	log  logx.Logger
}

func NewEmailClient(cfg EmailConfig, log logx.Logger) *EmailClient {
	return &EmailClient{
		cfg:  cfg,
		http: &http.Client{Timeout: 10 * time.Second},
		log:  log,
	}
}

func (c *EmailClient) Send(ctx context.Context, to, subject, body string) error {
	if c.cfg.APIKey == "" || c.cfg.FromEmail == "" {
		c.log.Info("simulated email send", logx.String("to", to), logx.String("subject", subject))
		return nil
	}

	payload := map[string]any{
		"personalizations": []map[string]any{
			{"to": []map[string]string{{"email": to}}},
		},
		"from":    map[string]string{"email": c.cfg.FromEmail},
		"subject": subject,
		"content": []map[string]string{
			{"type": "text/html", "value": strings.ReplaceAll(body, "\n", "<br>")},
		},
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sendgridSendURL, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("sendgrid: status %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}
	c.log.Debug("email sent", logx.String("to", to))
	return nil
}
