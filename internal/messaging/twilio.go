package messaging

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"engagesphere/pkg/logx"
)

type WhatsAppConfig struct {
	AccountSID string
	AuthToken  string
	From       string // e.g. "whatsapp:+14155238886"
}

// WhatsAppClient sends via the Twilio messages API. Without credentials, or
// for users without a phone number, sends are simulated.
type WhatsAppClient struct {
	cfg  WhatsAppConfig
	http *http.Client
	log  logx.Logger
}

func NewWhatsAppClient(cfg WhatsAppConfig, log logx.Logger) *WhatsAppClient {
	return &WhatsAppClient{
		cfg:  cfg,
		http: &http.Client{Timeout: 10 * time.Second},
		log:  log,
	}
}

func (c *WhatsAppClient) Send(ctx context.Context, toPhone, body string) error {
	if c.cfg.AccountSID == "" || c.cfg.AuthToken == "" || toPhone == "" {
		c.log.Info("simulated whatsapp send", logx.String("to", toPhone))
		return nil
	}

	endpoint := fmt.Sprintf("https://api.twilio.com/2010-04-01/Accounts/%s/Messages.json", c.cfg.AccountSID)
	form := url.Values{}
	form.Set("From", c.cfg.From)
	form.Set("To", "whatsapp:"+toPhone)
	form.Set("Body", body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.cfg.AccountSID, c.cfg.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("twilio: status %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}
	c.log.Debug("whatsapp sent", logx.String("to", toPhone))
	return nil
}
