package infra

import (
	"testing"
	"time"
)

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV", "PORT", "REMOTE_BACKEND", "REMOTE_API_URL", "REMOTE_TIMEOUT_SECONDS",
		"DATABASE_URL", "MONGODB_URI", "LOCAL_BACKEND", "REDIS_URL", "SESSION_SECRET",
		"CORS_ALLOWED_ORIGINS", "OTP_ECHO", "LOCKOUT_THRESHOLD", "ACTIVITY_LOG_CAP", "TRUSTED_PROXIES",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.RemoteBackend != RemoteHTTP || cfg.RemoteAPIURL != "http://localhost:3000" {
		t.Fatalf("remote defaults mismatch: %q %q", cfg.RemoteBackend, cfg.RemoteAPIURL)
	}
	if cfg.RemoteTimeout != 5*time.Second {
		t.Fatalf("RemoteTimeout = %v, want 5s", cfg.RemoteTimeout)
	}
	if cfg.LocalBackend != LocalFile {
		t.Fatalf("LocalBackend = %q, want %q", cfg.LocalBackend, LocalFile)
	}
	if cfg.ActivityCap != 100 || cfg.ActivityRecent != 10 {
		t.Fatalf("activity defaults mismatch: %d %d", cfg.ActivityCap, cfg.ActivityRecent)
	}
	if cfg.LockoutThreshold != 5 || cfg.LockoutWindow != 5*time.Minute {
		t.Fatalf("lockout defaults mismatch: %d %v", cfg.LockoutThreshold, cfg.LockoutWindow)
	}
	if cfg.OTPTTL != 10*time.Minute || !cfg.OTPEcho {
		t.Fatalf("otp defaults mismatch: %v echo=%v", cfg.OTPTTL, cfg.OTPEcho)
	}
	if !cfg.SessionSecretGenerated || len(cfg.SessionSecret) != 64 {
		t.Fatalf("expected generated session secret, got %q", cfg.SessionSecret)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "*" {
		t.Fatalf("AllowedOrigins mismatch: %#v", cfg.AllowedOrigins)
	}
	if len(cfg.TrustedProxies) != 0 {
		t.Fatalf("expected no trusted proxies by default, got %v", cfg.TrustedProxies)
	}
}

func TestLoadConfigProductionRequiresSessionSecret(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("APP_ENV", "production")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error without SESSION_SECRET in production")
	}

	t.Setenv("SESSION_SECRET", "s3cret")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.SessionSecretGenerated || !cfg.SessionSecure || cfg.OTPEcho {
		t.Fatalf("production flags mismatch: %+v", cfg)
	}
}

func TestLoadConfigBackendRequirements(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{"postgres without url", map[string]string{"REMOTE_BACKEND": "postgres"}},
		{"mongo without uri", map[string]string{"REMOTE_BACKEND": "mongo"}},
		{"redis without url", map[string]string{"LOCAL_BACKEND": "redis"}},
		{"unknown remote", map[string]string{"REMOTE_BACKEND": "couchdb"}},
		{"unknown local", map[string]string{"LOCAL_BACKEND": "indexeddb"}},
		{"bad trusted proxy", map[string]string{"TRUSTED_PROXIES": "10.0.0.0/8,lb.internal"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearConfigEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := LoadConfig(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoadConfigParsesOriginList(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("REMOTE_BACKEND", "NONE")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.RemoteBackend != RemoteNone {
		t.Fatalf("RemoteBackend = %q", cfg.RemoteBackend)
	}
	want := []string{"https://a.example", "https://b.example"}
	if len(cfg.AllowedOrigins) != len(want) {
		t.Fatalf("AllowedOrigins = %#v", cfg.AllowedOrigins)
	}
	for i := range want {
		if cfg.AllowedOrigins[i] != want[i] {
			t.Fatalf("AllowedOrigins[%d] = %q, want %q", i, cfg.AllowedOrigins[i], want[i])
		}
	}
}

func TestLoadConfigParsesTrustedProxies(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 192.0.2.1")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	want := []string{"10.0.0.0/8", "192.0.2.1/32"}
	if len(cfg.TrustedProxies) != len(want) {
		t.Fatalf("TrustedProxies = %v", cfg.TrustedProxies)
	}
	for i := range want {
		if cfg.TrustedProxies[i].String() != want[i] {
			t.Fatalf("TrustedProxies[%d] = %s, want %s", i, cfg.TrustedProxies[i], want[i])
		}
	}
}
