package mpesa

import (
	"errors"
	"net/http"
	"strings"
	"time"
)

// Environments select the provider's base URL.
const (
	EnvSandbox    = "sandbox"
	EnvProduction = "production"
)

const (
	sandboxBaseURL    = "https://sandbox.safaricom.co.ke"
	productionBaseURL = "https://api.safaricom.co.ke"

	oauthPath   = "/oauth/v1/generate?grant_type=client_credentials"
	stkPushPath = "/mpesa/stkpush/v1/processrequest"

	transactionType   = "CustomerPayBillOnline"
	defaultHTTPTimeout = 30 * time.Second
)

// ErrNotConfigured is returned by NewClient when credentials are missing.
var ErrNotConfigured = errors.New("mpesa: consumer key, secret, shortcode, passkey and callback base URL are required")

// Config holds the Daraja credentials and endpoints.
type Config struct {
	Env             string
	ConsumerKey     string
	ConsumerSecret  string
	ShortCode       string
	Passkey         string
	CallbackBaseURL string
	// BaseURL overrides the environment's URL; used against test servers.
	BaseURL     string
	HTTPTimeout time.Duration
	HTTPClient  *http.Client
}

func (c Config) validate() error {
	if c.ConsumerKey == "" || c.ConsumerSecret == "" || c.ShortCode == "" || c.Passkey == "" || c.CallbackBaseURL == "" {
		return ErrNotConfigured
	}
	return nil
}

func (c Config) baseURL() string {
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/")
	}
	if c.Env == EnvProduction {
		return productionBaseURL
	}
	return sandboxBaseURL
}

func (c Config) callbackURL() string {
	return strings.TrimRight(c.CallbackBaseURL, "/") + "/callback"
}
