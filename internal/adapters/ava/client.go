package ava_client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jsamit27/ava/internal/contextkeys"
	"github.com/jsamit27/ava/internal/core/domain"
	"github.com/jsamit27/ava/internal/core/port"
	"github.com/tidwall/gjson"
)

const (
	DefaultAPIURL    = "https://ava.andrew-chat.com"
	DefaultPrismURL  = "https://prism.andrew-chat.com"
	DefaultStreamURL = "wss://ava.andrew-chat.com"
	DefaultOrigin    = "https://ava.andrew-chat.com"

	endMarker  = "<<END_OF_RESPONSE>>"
	NoResponse = "Sorry—no response from Ava."
)

type Config struct {
	APIURL    string
	PrismURL  string
	StreamURL string
	Origin    string
	Timeout   time.Duration
}

// AvaAPIClient - клиент Ava: логин и сессии по HTTP, ответы по websocket.
type AvaAPIClient struct {
	cfg        Config
	httpClient *http.Client
	dialer     websocket.Dialer

	mu     sync.Mutex
	tokens map[string]string // user -> authorization
}

func NewAvaAPIClient(cfg Config) *AvaAPIClient {
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.PrismURL == "" {
		cfg.PrismURL = DefaultPrismURL
	}
	if cfg.StreamURL == "" {
		cfg.StreamURL = DefaultStreamURL
	}
	if cfg.Origin == "" {
		cfg.Origin = DefaultOrigin
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	return &AvaAPIClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		dialer:     websocket.Dialer{HandshakeTimeout: cfg.Timeout},
		tokens:     make(map[string]string),
	}
}

// doRequest - общий хелпер HTTP-запросов с trace id
func (c *AvaAPIClient) doRequest(ctx context.Context, method, url string, body io.Reader, token string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		req.Header.Set("X-Trace-ID", traceID)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	return c.httpClient.Do(req)
}

func readJSON(resp *http.Response) (gjson.Result, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return gjson.Result{}, fmt.Errorf("ava returned status %d: %s", resp.StatusCode, domain.Truncate(string(body), 200))
	}
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, fmt.Errorf("ava returned invalid JSON")
	}
	return gjson.ParseBytes(body), nil
}

// Login возвращает токен авторизации, ранее полученный токен пользователя переиспользуется
func (c *AvaAPIClient) Login(ctx context.Context, user, password string) (string, error) {
	c.mu.Lock()
	token, ok := c.tokens[user]
	c.mu.Unlock()
	if ok {
		return token, nil
	}
	if password == "" {
		return "", fmt.Errorf("no password provided and no token set")
	}

	clientLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "AvaAPIClient",
		"method":    "Login",
	})

	body, err := json.Marshal(map[string]string{"username": user, "password": password})
	if err != nil {
		return "", fmt.Errorf("failed to marshal login body: %w", err)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, c.cfg.APIURL+"/api/v1/user", bytes.NewReader(body), "")
	if err != nil {
		clientLogger.Error("Login request failed", err, nil)
		return "", fmt.Errorf("login request failed: %w", err)
	}
	result, err := readJSON(resp)
	if err != nil {
		clientLogger.Error("Login rejected", err, nil)
		return "", err
	}

	token = result.Get("authorization").String()
	if token == "" {
		return "", fmt.Errorf("login response has no authorization token")
	}

	c.mu.Lock()
	c.tokens[user] = token
	c.mu.Unlock()
	clientLogger.Info("Logged in to Ava", nil)
	return token, nil
}

// CreateSession всегда запрашивает новую сессию Prism (new=true)
func (c *AvaAPIClient) CreateSession(ctx context.Context, token, user string) (string, error) {
	return c.GetSession(ctx, token, user, true)
}

func (c *AvaAPIClient) GetSession(ctx context.Context, token, user string, forceNew bool) (string, error) {
	endpoint := fmt.Sprintf("%s/api/v1/prism/get_session/%s/ava", c.cfg.PrismURL, url.PathEscape(user))
	if forceNew {
		endpoint += "?new=true"
	}

	resp, err := c.doRequest(ctx, http.MethodGet, endpoint, nil, token)
	if err != nil {
		return "", fmt.Errorf("get session request failed: %w", err)
	}
	result, err := readJSON(resp)
	if err != nil {
		return "", err
	}

	id := result.Get("id")
	if !id.Exists() {
		return "", fmt.Errorf("session response has no id")
	}
	return id.String(), nil
}

type minimalPayload struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type legacyCar struct {
	VIN       string `json:"vin"`
	Year      int    `json:"year"`
	Make      string `json:"make"`
	Model     string `json:"model"`
	Trim      string `json:"trim"`
	Mileage   int    `json:"mileage"`
	Condition int    `json:"condition"`
	Color     string `json:"color"`
	Region    string `json:"region"`
}

type legacyPayload struct {
	Action    string    `json:"action"`
	Message   string    `json:"message"`
	UserID    string    `json:"user_id"`
	SessionID string    `json:"session_id"`
	Car       legacyCar `json:"car"`
}

// Ask отправляет сообщение минимальным payload, при пустом ответе повторяет legacy payload
func (c *AvaAPIClient) Ask(ctx context.Context, conv domain.AvaConversation, message string) (string, error) {
	clientLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":  "AvaAPIClient",
		"method":     "Ask",
		"session_id": domain.Truncate(conv.SessionID, 8),
	})

	clientLogger.Info("Sending message to Ava", port.Fields{"length": len(message)})
	text, bad, err := c.exchange(ctx, conv.Token, minimalPayload{UserID: conv.User, SessionID: conv.SessionID, Message: message})
	if err != nil {
		return "", err
	}
	if !bad && text != "" {
		clientLogger.Info("Received response from Ava", port.Fields{"length": len(text)})
		return text, nil
	}

	clientLogger.Info("Minimal payload failed, trying legacy payload", nil)
	text, _, err = c.exchange(ctx, conv.Token, legacyPayload{
		Action:    "create",
		Message:   message,
		UserID:    conv.User,
		SessionID: conv.SessionID,
		Car:       legacyCar{Year: -1, Mileage: -1, Color: "blue", Region: "WC"},
	})
	if err != nil {
		return "", err
	}
	if text == "" {
		clientLogger.Warn("No response received from Ava", nil)
		return NoResponse, nil
	}
	clientLogger.Info("Received response via legacy payload", port.Fields{"length": len(text)})
	return text, nil
}

// exchange открывает соединение на одно сообщение и читает поток до маркера конца
func (c *AvaAPIClient) exchange(ctx context.Context, token string, payload interface{}) (string, bool, error) {
	streamURL := c.cfg.StreamURL + "/api/v1/stream?token=" + url.QueryEscape(token)
	header := http.Header{}
	header.Set("Origin", c.cfg.Origin)

	conn, _, err := c.dialer.DialContext(ctx, streamURL, header)
	if err != nil {
		return "", false, fmt.Errorf("websocket dial: %w", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(payload); err != nil {
		return "", false, fmt.Errorf("websocket write: %w", err)
	}

	text, bad := c.readStream(ctx, conn)
	return text, bad, nil
}

func (c *AvaAPIClient) readStream(ctx context.Context, conn *websocket.Conn) (string, bool) {
	var sb strings.Builder
	for {
		if ctx.Err() != nil {
			break
		}
		_ = conn.SetReadDeadline(time.Now().Add(c.cfg.Timeout))
		_, frame, err := conn.ReadMessage()
		if err != nil || len(frame) == 0 {
			break
		}

		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(string(frame))), "bad request") {
			return strings.TrimSpace(sb.String()), true
		}

		if !gjson.ValidBytes(frame) {
			sb.Write(frame)
			continue
		}
		parsed := gjson.ParseBytes(frame)
		if !parsed.IsObject() {
			continue
		}
		if parsed.Get("response").String() == endMarker {
			break
		}
		if t := parsed.Get("text"); t.Exists() {
			sb.WriteString(t.String())
		}
	}
	return strings.TrimSpace(sb.String()), false
}
