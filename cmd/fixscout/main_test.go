package main

import (
	"testing"
	"time"

	"github.com/fixscout/fixscout/config"
)

func TestSinceDaysFromDate(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		value   string
		want    int
		wantErr bool
	}{
		{name: "date ten days back", value: "2025-06-05", want: 11},
		{name: "date yesterday", value: "2025-06-14", want: 2},
		{name: "same day rounds up to one", value: "2025-06-15", want: 1},
		{name: "rfc3339 timestamp", value: "2025-06-14T12:00:00Z", want: 1},
		{name: "future date rejected", value: "2026-01-01", wantErr: true},
		{name: "garbage rejected", value: "last tuesday", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := sinceDaysFromDate(tt.value, now)
			if tt.wantErr {
				if err == nil {
					t.Errorf("sinceDaysFromDate(%q) = %d, want error", tt.value, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("sinceDaysFromDate(%q) error: %v", tt.value, err)
			}
			if got != tt.want {
				t.Errorf("sinceDaysFromDate(%q) = %d, want %d", tt.value, got, tt.want)
			}
		})
	}
}

func TestApplyOverrides(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	t.Run("flags override config", func(t *testing.T) {
		cfg := config.Default()
		opts := &options{model: "claude-opus-4", sinceDays: 7, maxCommits: 10, maxPatchLines: 100}

		if err := applyOverrides(cfg, opts, now); err != nil {
			t.Fatalf("applyOverrides() error: %v", err)
		}
		if cfg.Model.Name != "claude-opus-4" {
			t.Errorf("Model.Name = %q", cfg.Model.Name)
		}
		if cfg.Extract.SinceDays != 7 || cfg.Extract.MaxCommits != 10 || cfg.Extract.MaxPatchLines != 100 {
			t.Errorf("extract = %+v", cfg.Extract)
		}
	})

	t.Run("zero flags keep config values", func(t *testing.T) {
		cfg := config.Default()
		if err := applyOverrides(cfg, &options{}, now); err != nil {
			t.Fatalf("applyOverrides() error: %v", err)
		}
		if cfg.Extract.SinceDays != 30 || cfg.Extract.MaxCommits != 50 {
			t.Errorf("extract = %+v", cfg.Extract)
		}
	})

	t.Run("since-date sets window", func(t *testing.T) {
		cfg := config.Default()
		opts := &options{sinceDate: "2025-06-05"}
		if err := applyOverrides(cfg, opts, now); err != nil {
			t.Fatalf("applyOverrides() error: %v", err)
		}
		if cfg.Extract.SinceDays != 11 {
			t.Errorf("SinceDays = %d, want 11", cfg.Extract.SinceDays)
		}
	})

	t.Run("since-days and since-date are exclusive", func(t *testing.T) {
		cfg := config.Default()
		opts := &options{sinceDays: 7, sinceDate: "2025-06-05"}
		if err := applyOverrides(cfg, opts, now); err == nil {
			t.Error("expected error, got nil")
		}
	})

	t.Run("negative flags rejected", func(t *testing.T) {
		for _, opts := range []*options{
			{sinceDays: -1},
			{maxCommits: -5},
			{maxPatchLines: -10},
		} {
			if err := applyOverrides(config.Default(), opts, now); err == nil {
				t.Errorf("opts %+v: expected error, got nil", opts)
			}
		}
	})
}

func TestHTMLPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "outputs/findings.json", want: "outputs/findings.html"},
		{in: "assessment.json", want: "assessment.html"},
	}
	for _, tt := range tests {
		if got := htmlPath(tt.in); got != tt.want {
			t.Errorf("htmlPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
