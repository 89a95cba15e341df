package mpesa

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/saccopay/internal/domain"
	"github.com/iho/saccopay/internal/infrastructure/metrics"
)

const timestampLayout = "20060102150405"

var (
	errUnauthorized = errors.New("mpesa: access token rejected")

	// ErrProviderUnavailable marks transport failures and 5xx responses.
	ErrProviderUnavailable = errors.New("mpesa: provider unavailable")
)

// Client sends STK push requests to the Daraja API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	tokens     *TokenSource
	location   *time.Location
	now        func() time.Time
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

// NewClient creates a Daraja client. m may be nil.
func NewClient(cfg Config, m *metrics.Metrics, logger zerolog.Logger) (*Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.HTTPTimeout
		if timeout <= 0 {
			timeout = defaultHTTPTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	// Timestamps are read by the provider as East Africa Time.
	loc, err := time.LoadLocation("Africa/Nairobi")
	if err != nil {
		loc = time.FixedZone("EAT", 3*60*60)
	}

	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
		tokens:     NewTokenSource(httpClient, cfg.baseURL()+oauthPath, cfg.ConsumerKey, cfg.ConsumerSecret),
		location:   loc,
		now:        time.Now,
		metrics:    m,
		logger:     logger,
	}, nil
}

type stkPushPayload struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	TransactionType   string `json:"TransactionType"`
	Amount            int64  `json:"Amount"`
	PartyA            string `json:"PartyA"`
	PartyB            int64  `json:"PartyB"`
	PhoneNumber       string `json:"PhoneNumber"`
	CallBackURL       string `json:"CallBackURL"`
	AccountReference  string `json:"AccountReference"`
	TransactionDesc   string `json:"TransactionDesc"`
}

type stkPushResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
}

type errorResponse struct {
	RequestID    string `json:"requestId"`
	ErrorCode    string `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
}

// STKPush asks the provider to prompt the phone for payment. A rejected
// access token is refreshed and the push retried once.
func (c *Client) STKPush(ctx context.Context, req domain.STKPushRequest) (*domain.STKPushResult, error) {
	start := time.Now()

	result, err := c.stkPush(ctx, req)
	if errors.Is(err, errUnauthorized) {
		c.logger.Warn().Msg("mpesa access token rejected, refreshing")
		result, err = c.stkPush(ctx, req)
	}

	c.observe("stk_push", start, err)

	if err != nil {
		return nil, domain.Gateway("stk push", err)
	}

	return result, nil
}

func (c *Client) stkPush(ctx context.Context, req domain.STKPushRequest) (*domain.STKPushResult, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := c.buildPayload(req)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode stk push: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.baseURL()+stkPushPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build stk push request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: send stk push: %w", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read stk push response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.tokens.Invalidate(token)
		return nil, errUnauthorized
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var providerErr errorResponse
		_ = json.Unmarshal(raw, &providerErr)
		c.logger.Error().
			Int("status", resp.StatusCode).
			Str("request_id", providerErr.RequestID).
			Str("error_code", providerErr.ErrorCode).
			Msg("stk push rejected")
		err := fmt.Errorf("stk push returned %d: %s %s", resp.StatusCode, providerErr.ErrorCode, providerErr.ErrorMessage)
		if resp.StatusCode >= http.StatusInternalServerError {
			err = fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
		}
		return nil, err
	}

	var parsed stkPushResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		c.logger.Warn().Err(err).Msg("unparseable stk push response")
	}

	result := &domain.STKPushResult{
		MerchantRequestID:   parsed.MerchantRequestID,
		ResponseCode:        parsed.ResponseCode,
		ResponseDescription: parsed.ResponseDescription,
		CustomerMessage:     parsed.CustomerMessage,
	}
	if parsed.CheckoutRequestID != "" {
		id := parsed.CheckoutRequestID
		result.CheckoutRequestID = &id
	}

	return result, nil
}

func (c *Client) buildPayload(req domain.STKPushRequest) (stkPushPayload, error) {
	shortCode, err := strconv.ParseInt(c.cfg.ShortCode, 10, 64)
	if err != nil {
		return stkPushPayload{}, fmt.Errorf("invalid shortcode %q: %w", c.cfg.ShortCode, err)
	}

	timestamp := c.Timestamp()
	reference := req.AccountReference
	if reference == "" {
		reference = "SACCO"
	}

	return stkPushPayload{
		BusinessShortCode: c.cfg.ShortCode,
		Password:          Password(c.cfg.ShortCode, c.cfg.Passkey, timestamp),
		Timestamp:         timestamp,
		TransactionType:   transactionType,
		Amount:            req.Amount.Round(0).IntPart(),
		PartyA:            req.Phone,
		PartyB:            shortCode,
		PhoneNumber:       req.Phone,
		CallBackURL:       c.cfg.callbackURL(),
		AccountReference:  reference,
		TransactionDesc:   req.Description,
	}, nil
}

// Timestamp returns the current time formatted as YYYYMMDDHHmmss in Nairobi time.
func (c *Client) Timestamp() string {
	return c.now().In(c.location).Format(timestampLayout)
}

// Password is base64(shortcode + passkey + timestamp).
func Password(shortCode, passkey, timestamp string) string {
	return base64.StdEncoding.EncodeToString([]byte(shortCode + passkey + timestamp))
}

func (c *Client) observe(operation string, start time.Time, err error) {
	if c.metrics == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "error"
	}
	c.metrics.GatewayRequests.WithLabelValues(operation, status).Inc()
	c.metrics.GatewayDuration.Observe(time.Since(start).Seconds())
}
