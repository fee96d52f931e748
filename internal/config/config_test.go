package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/courses")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("DB_CONN_MAX_LIFETIME", "90s")
	t.Setenv("STATS_CRON", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Port = %s", cfg.Port)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v", cfg.LogLevel)
	}
	if cfg.Database.DSN() != "postgres://u:p@db:5432/courses" {
		t.Errorf("DSN() = %s", cfg.Database.DSN())
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "kafka-2:9092" {
		t.Errorf("KafkaBrokers = %v", cfg.KafkaBrokers)
	}
	if cfg.Database.ConnMaxLifetime != 90*time.Second {
		t.Errorf("ConnMaxLifetime = %v", cfg.Database.ConnMaxLifetime)
	}
	if cfg.StatsCron != "@every 15m" {
		t.Errorf("StatsCron = %q", cfg.StatsCron)
	}
}

func TestLoadConfig_InvalidLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "loud")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for invalid log level")
	}
}

func TestConfig_Validate(t *testing.T) {
	base := func() Config {
		return Config{
			Port:     "8080",
			Database: DatabaseConfig{Host: "localhost", Name: "courses", MaxOpenConns: 10, MaxIdleConns: 5},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "url only", mutate: func(c *Config) { c.Database = DatabaseConfig{URL: "postgres://x"} }},
		{name: "missing database", mutate: func(c *Config) { c.Database.Host = "" }, wantErr: true},
		{name: "empty port", mutate: func(c *Config) { c.Port = "" }, wantErr: true},
		{name: "idle above open", mutate: func(c *Config) { c.Database.MaxIdleConns = 50 }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "h", Port: "5432", User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	want := "host=h port=5432 user=u password=p dbname=n sslmode=disable"
	if got := d.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}
