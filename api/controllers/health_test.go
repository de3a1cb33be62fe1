package controllers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/angelmondragon/storefront/internal/session"
	"github.com/angelmondragon/storefront/pkg/config"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthReady(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}

	resp, _ := serve(t, HealthReady(cfg, nil, nil), http.MethodGet, "/health/ready", "", session.Identity{})
	if resp.Code != http.StatusOK || resp.Header().Get("X-Storefront-Env") != "test" {
		t.Fatalf("ready without redis should pass, got %d", resp.Code)
	}

	down := pingerFunc(func(context.Context) error { return errors.New("connection refused") })
	resp, env := serve(t, HealthReady(cfg, nil, down), http.MethodGet, "/health/ready", "", session.Identity{})
	if resp.Code != http.StatusServiceUnavailable || env.Code != string(pkgerrors.CodeDependency) {
		t.Fatalf("expected 503 got %d %s", resp.Code, env.Code)
	}
}

func TestPublicPingReportsIdentity(t *testing.T) {
	_, env := serve(t, PublicPing(), http.MethodGet, "/api/ping", "", session.Identity{Token: "tok", UserID: "u1"})
	var data map[string]any
	env.decode(t, &data)
	if data["authenticated"] != true || data["user_id"] != "u1" {
		t.Fatalf("unexpected ping %v", data)
	}
}
