package config

import (
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestParse_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/drs")

	cfg, err := parse()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "8000" {
		t.Errorf("Port = %q, want 8000", cfg.Port)
	}
	if !cfg.SMS.MockMode {
		t.Error("MockMode should default to true")
	}
	if got := cfg.Redis.Addr(); got != "localhost:6379" {
		t.Errorf("Redis.Addr() = %q, want localhost:6379", got)
	}
	if cfg.OTPTTL() != 300*time.Second {
		t.Errorf("OTPTTL() = %v, want 5m", cfg.OTPTTL())
	}
	if cfg.SlogLevel() != slog.LevelInfo {
		t.Errorf("SlogLevel() = %v, want info", cfg.SlogLevel())
	}
}

func TestParse_MissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	if _, err := parse(); err == nil {
		t.Fatal("expected error for missing DATABASE_URL")
	}
}

func TestParse_LiveTwilioRequiresCredentials(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/drs")
	t.Setenv("MOCK_SMS_MODE", "false")

	_, err := parse()
	if err == nil {
		t.Fatal("expected error when twilio credentials are missing")
	}
	if !strings.Contains(err.Error(), "TwilioAccountSID") {
		t.Errorf("error %q does not name TwilioAccountSID", err)
	}
}

func TestParse_LiveTwilioWithCredentials(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/drs")
	t.Setenv("MOCK_SMS_MODE", "false")
	t.Setenv("TWILIO_ACCOUNT_SID", "AC123")
	t.Setenv("TWILIO_AUTH_TOKEN", "secret")
	t.Setenv("TWILIO_PHONE_NUMBER", "+15005550006")

	cfg, err := parse()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SMS.MockMode {
		t.Error("MockMode should be false")
	}
}

func TestParse_LiveSNSDoesNotNeedTwilio(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/drs")
	t.Setenv("MOCK_SMS_MODE", "false")
	t.Setenv("SMS_PROVIDER", "sns")

	cfg, err := parse()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SMS.SNSRegion != "ap-south-1" {
		t.Errorf("SNSRegion = %q, want ap-south-1", cfg.SMS.SNSRegion)
	}
}

func TestParse_ShortJWTSecretRejected(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/drs")
	t.Setenv("JWT_SECRET", "too-short")

	if _, err := parse(); err == nil {
		t.Fatal("expected error for short JWT_SECRET")
	}
}
