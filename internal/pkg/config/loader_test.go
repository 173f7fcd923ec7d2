package config_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Vodeneev/openingalert/internal/pkg/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLoad(t *testing.T) {
	Convey("Given the config loader", t, func() {
		clearEnv(t)

		Convey("When loading with defaults only", func() {
			cfg, err := config.Load("")

			Convey("Then the documented defaults apply", func() {
				So(err, ShouldBeNil)
				So(cfg.State.Backend, ShouldEqual, config.BackendFile)
				So(cfg.State.RetentionDays, ShouldEqual, 7)
				So(cfg.State.RetentionWindow(), ShouldEqual, 7*24*time.Hour)
				So(cfg.Telegram.Timeout, ShouldEqual, 30*time.Second)
				So(cfg.Timezone, ShouldEqual, "Europe/Paris")
				So(cfg.Sources["greenluck"].SportIDs, ShouldResemble, []string{"14", "15", "16", "17", "27", "28", "31", "32"})
				So(cfg.Sources["betify"].UseTor, ShouldBeTrue)
				So(cfg.Validate(), ShouldBeNil)
			})
		})

		Convey("When a YAML file overrides part of a source", func() {
			path := filepath.Join(t.TempDir(), "config.yaml")
			content := "state:\n  retention_days: 3\nsources:\n  sportaza:\n    sport_ids: [\"923\"]\n"
			So(os.WriteFile(path, []byte(content), 0o600), ShouldBeNil)

			cfg, err := config.Load(path)

			Convey("Then the file wins and untouched defaults survive", func() {
				So(err, ShouldBeNil)
				So(cfg.State.RetentionDays, ShouldEqual, 3)
				So(cfg.Sources["sportaza"].SportIDs, ShouldResemble, []string{"923"})
				So(cfg.Sources["sportaza"].Enabled, ShouldBeTrue)
				So(cfg.State.Path, ShouldEqual, "data.json")
			})
		})

		Convey("When environment variables are set", func() {
			t.Setenv("OPENING_STATE__RETENTION_DAYS", "14")
			t.Setenv("OPENING_TELEGRAM__CHAT_ID", "@channel")
			t.Setenv("TELEGRAM_TOKEN", "123:abc")

			cfg, err := config.Load("")

			Convey("Then they override the defaults", func() {
				So(err, ShouldBeNil)
				So(cfg.State.RetentionDays, ShouldEqual, 14)
				So(cfg.Telegram.ChatID, ShouldEqual, "@channel")
				So(cfg.Telegram.Token, ShouldEqual, "123:abc")
			})
		})

		Convey("When the legacy chat id variable is set", func() {
			t.Setenv("OPENING_TELEGRAM__CHAT_ID", "1")
			t.Setenv("TELEGRAM_CHAT_ID", "-100200")

			cfg, err := config.Load("")

			Convey("Then the legacy name takes precedence", func() {
				So(err, ShouldBeNil)
				So(cfg.Telegram.ChatID, ShouldEqual, "-100200")
			})
		})

		Convey("When the file does not exist", func() {
			_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))

			Convey("Then loading fails", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"zero retention", func(c *config.Config) { c.State.RetentionDays = 0 }},
		{"unknown backend", func(c *config.Config) { c.State.Backend = "s3" }},
		{"postgres without dsn", func(c *config.Config) { c.State.Backend = config.BackendPostgres }},
		{"redis without addr", func(c *config.Config) { c.State.Backend = config.BackendRedis }},
		{"bad timezone", func(c *config.Config) { c.Timezone = "Mars/Olympus" }},
		{"empty path", func(c *config.Config) { c.State.Path = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, config.ErrInvalid) {
				t.Errorf("Validate() = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestDumpMasksSecrets(t *testing.T) {
	cfg := config.Default()
	cfg.Telegram.Token = "123456:SECRET"
	cfg.State.DSN = "postgres://user:pass@db/state"

	var buf bytes.Buffer
	if err := config.Dump(&buf, cfg); err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "SECRET") || strings.Contains(out, "pass@db") {
		t.Errorf("Dump() leaked a secret:\n%s", out)
	}
	if !strings.Contains(out, "retention_days: 7") {
		t.Errorf("Dump() missing retention_days:\n%s", out)
	}
	if cfg.Telegram.Token != "123456:SECRET" {
		t.Errorf("Dump() mutated the config")
	}
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(key, "OPENING_") || key == "TELEGRAM_TOKEN" || key == "TELEGRAM_CHAT_ID" {
			t.Setenv(key, "")
			os.Unsetenv(key)
		}
	}
}
