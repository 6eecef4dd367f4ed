package config

import (
	"testing"
	"time"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Port != "5175" || cfg.Addr() != ":5175" {
		t.Fatalf("port = %q", cfg.Port)
	}
	if cfg.AnimationDuration != 2*time.Second || cfg.SettleDelay != 100*time.Millisecond {
		t.Fatalf("timing = %v/%v", cfg.AnimationDuration, cfg.SettleDelay)
	}
	if cfg.SessionTTL != 2*time.Hour || cfg.DefaultLang != "ja" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.Production() {
		t.Fatalf("default env is production")
	}
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ANIMATION_DURATION", "500ms")
	t.Setenv("APP_ENV", "production")
	t.Setenv("DEFAULT_LANG", "en")
	cfg, err := Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Port != "9000" || cfg.AnimationDuration != 500*time.Millisecond || !cfg.Production() || cfg.DefaultLang != "en" {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestParseRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"ANIMATION_DURATION": "0s",
		"SETTLE_DELAY":       "-1s",
		"SESSION_TTL":        "soon",
		"DEFAULT_LANG":       "!!",
	}
	for k, v := range cases {
		t.Run(k, func(t *testing.T) {
			t.Setenv(k, v)
			if _, err := Parse(); err == nil {
				t.Fatalf("%s=%s accepted", k, v)
			}
		})
	}
}
