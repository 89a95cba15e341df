package main

import (
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iho/saccopay/internal/adapter/gateway/mpesa"
	"github.com/iho/saccopay/internal/infrastructure/config"
	"github.com/iho/saccopay/internal/infrastructure/eventpublisher"
	"github.com/iho/saccopay/internal/infrastructure/metrics"
)

func TestNewGatewayWithoutCredentials(t *testing.T) {
	cfg := &config.Config{MpesaEnv: config.MpesaSandbox}

	gw := newGateway(cfg, metrics.NewWithRegistry(prometheus.NewRegistry()), zerolog.Nop())
	if _, ok := gw.(mpesa.DisabledGateway); !ok {
		t.Fatalf("expected disabled gateway, got %T", gw)
	}
}

func TestNewGatewayWrapsClientInBreaker(t *testing.T) {
	cfg := &config.Config{
		MpesaEnv:             config.MpesaSandbox,
		MpesaConsumerKey:     "key",
		MpesaConsumerSecret:  "secret",
		MpesaShortCode:       "174379",
		MpesaPasskey:         "passkey",
		MpesaCallbackBaseURL: "https://sacco.example.com/api/v1/mpesa",
	}

	gw := newGateway(cfg, metrics.NewWithRegistry(prometheus.NewRegistry()), zerolog.Nop())
	breaker, ok := gw.(*mpesa.CircuitBreakerGateway)
	if !ok {
		t.Fatalf("expected circuit breaker gateway, got %T", gw)
	}
	if breaker.State() != mpesa.BreakerClosed {
		t.Fatalf("expected closed breaker, got %s", breaker.State())
	}
}

func TestNewEventSink(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	if _, ok := newEventSink(&config.Config{OutboxStream: "saccopay:events"}, client, zerolog.Nop()).(*eventpublisher.StreamPublisher); !ok {
		t.Fatal("expected stream publisher when a stream is configured")
	}
	if _, ok := newEventSink(&config.Config{}, client, zerolog.Nop()).(*eventpublisher.LogPublisher); !ok {
		t.Fatal("expected log publisher when no stream is configured")
	}
}

func TestRunRequiresJWTSecret(t *testing.T) {
	if err := run(&config.Config{}, zerolog.Nop()); err == nil {
		t.Fatal("expected error without JWT secret")
	}
}
