package config

import (
	"testing"

	"github.com/spf13/pflag"
)

func TestLoadDefaultsWithNoFlags(t *testing.T) {
	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := Default()
	if cfg != want {
		t.Errorf("expected defaults %+v, got %+v", want, cfg)
	}
}

func TestLoadOverridesFromFlags(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(flags)
	if err := flags.Parse([]string{"--primary-retries=20", "--workers=4"}); err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	cfg, err := Load(flags)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.PrimaryRetries != 20 {
		t.Errorf("expected PrimaryRetries=20, got %d", cfg.PrimaryRetries)
	}
	if cfg.Workers != 4 {
		t.Errorf("expected Workers=4, got %d", cfg.Workers)
	}
	if cfg.FallbackRetries != Default().FallbackRetries {
		t.Errorf("expected untouched FallbackRetries to keep its default, got %d", cfg.FallbackRetries)
	}
}

func TestLoadRejectsNonPositiveCaps(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(flags)
	if err := flags.Parse([]string{"--scan-limit=0"}); err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}

	if _, err := Load(flags); err == nil {
		t.Error("expected an error for a non-positive scan limit")
	}
}
