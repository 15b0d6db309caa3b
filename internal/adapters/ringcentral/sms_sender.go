package ringcentral_client

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

	"github.com/jsamit27/ava/internal/contextkeys"
	"github.com/jsamit27/ava/internal/core/port"
	"github.com/tidwall/gjson"
)

const (
	DefaultServer = "https://platform.ringcentral.com"

	tokenPath       = "/restapi/oauth/token"
	phoneNumberPath = "/restapi/v1.0/account/~/extension/~/phone-number"
	smsPath         = "/restapi/v1.0/account/~/extension/~/sms"

	jwtGrantType = "urn:ietf:params:oauth:grant-type:jwt-bearer"
)

var errUnauthorized = errors.New("ringcentral: unauthorized")

type Config struct {
	Server       string
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	// JWT если задан, вход идет через JWT grant вместо пароля
	JWT     string
	Timeout time.Duration
}

// SMSSender - реализация SMSSenderPort через RingCentral REST API.
type SMSSender struct {
	cfg        Config
	httpClient *http.Client

	mu         sync.Mutex
	token      string
	fromNumber string
}

func NewSMSSender(cfg Config) *SMSSender {
	if cfg.Server == "" {
		cfg.Server = DefaultServer
	}
	cfg.Server = strings.TrimRight(cfg.Server, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	return &SMSSender{cfg: cfg, httpClient: &http.Client{Timeout: cfg.Timeout}}
}

// SendSMS отправляет сообщение с первого номера, у которого есть SmsSender.
// 401 приводит к одному повторному входу и повтору запроса.
func (s *SMSSender) SendSMS(ctx context.Context, to, text string) error {
	clientLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "RingCentralSMSSender",
	})

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.send(ctx, to, text)
	if errors.Is(err, errUnauthorized) {
		clientLogger.Warn("RingCentral token rejected, logging in again", nil)
		s.token = ""
		err = s.send(ctx, to, text)
	}
	if err != nil {
		clientLogger.Error("Failed to send SMS", err, nil)
		return err
	}

	clientLogger.Info("Escalation SMS sent", nil)
	return nil
}

func (s *SMSSender) send(ctx context.Context, to, text string) error {
	if s.token == "" {
		if err := s.login(ctx); err != nil {
			return err
		}
	}
	if s.fromNumber == "" {
		from, err := s.smsSenderNumber(ctx)
		if err != nil {
			return err
		}
		s.fromNumber = from
	}

	body, err := json.Marshal(map[string]interface{}{
		"from": map[string]string{"phoneNumber": s.fromNumber},
		"to":   []map[string]string{{"phoneNumber": to}},
		"text": text,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal sms body: %w", err)
	}

	_, err = s.call(ctx, http.MethodPost, smsPath, bytes.NewReader(body))
	return err
}

func (s *SMSSender) login(ctx context.Context) error {
	form := url.Values{}
	if s.cfg.JWT != "" {
		form.Set("grant_type", jwtGrantType)
		form.Set("assertion", s.cfg.JWT)
	} else {
		form.Set("grant_type", "password")
		form.Set("username", s.cfg.Username)
		form.Set("password", s.cfg.Password)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.Server+tokenPath, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create token request: %w", err)
	}
	req.SetBasicAuth(s.cfg.ClientID, s.cfg.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ringcentral login failed: %w", err)
	}
	result, err := readResult(resp)
	if err != nil {
		return fmt.Errorf("unable to authenticate, check credentials: %w", err)
	}

	s.token = result.Get("access_token").String()
	if s.token == "" {
		return fmt.Errorf("ringcentral token response has no access_token")
	}
	return nil
}

func (s *SMSSender) smsSenderNumber(ctx context.Context) (string, error) {
	result, err := s.call(ctx, http.MethodGet, phoneNumberPath, nil)
	if err != nil {
		return "", err
	}

	for _, record := range result.Get("records").Array() {
		for _, feature := range record.Get("features").Array() {
			if feature.String() == "SmsSender" {
				return record.Get("phoneNumber").String(), nil
			}
		}
	}
	return "", fmt.Errorf("no SMS-capable number found for this account")
}

func (s *SMSSender) call(ctx context.Context, method, path string, body io.Reader) (gjson.Result, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.cfg.Server+path, body)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("ringcentral request failed: %w", err)
	}
	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		return gjson.Result{}, errUnauthorized
	}
	return readResult(resp)
}

func readResult(resp *http.Response) (gjson.Result, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := gjson.GetBytes(body, "message").String()
		if msg == "" {
			msg = gjson.GetBytes(body, "error_description").String()
		}
		return gjson.Result{}, fmt.Errorf("ringcentral returned status %d: %s", resp.StatusCode, msg)
	}
	return gjson.ParseBytes(body), nil
}
