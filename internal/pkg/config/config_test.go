package config

import (
	"strings"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("madar-test")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Telemetry.ServiceName != "madar-test" {
		t.Errorf("expected service name madar-test, got %q", cfg.Telemetry.ServiceName)
	}
	if cfg.Temporal.Enabled {
		t.Error("temporal should be disabled by default")
	}
	if cfg.Temporal.TaskQueue != "intervention-publish" {
		t.Errorf("unexpected task queue %q", cfg.Temporal.TaskQueue)
	}
	if cfg.Map.CacheTTL != 60 || cfg.Map.EventLogCapacity != 100 || cfg.Map.ErrorLogCapacity != 50 {
		t.Errorf("unexpected map defaults: %+v", cfg.Map)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("MADAR_SERVER_PORT", "9090")
	t.Setenv("MADAR_DATABASE_HOST", "db.internal")
	t.Setenv("MADAR_MAP_EVENT_LOG_CAPACITY", "250")
	t.Setenv("MADAR_TEMPORAL_ENABLED", "true")

	cfg, err := Load("madar-test")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Database.Host != "db.internal" {
		t.Errorf("expected db.internal, got %q", cfg.Database.Host)
	}
	if cfg.Map.EventLogCapacity != 250 {
		t.Errorf("expected capacity 250, got %d", cfg.Map.EventLogCapacity)
	}
	if !cfg.Temporal.Enabled {
		t.Error("expected temporal enabled")
	}
}

func TestLoad_InvalidEnv(t *testing.T) {
	t.Setenv("MADAR_MAP_CACHE_TTL", "0")

	if _, err := Load("madar-test"); err == nil || !strings.Contains(err.Error(), "map.cache_ttl") {
		t.Fatalf("expected cache_ttl validation error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Server:   ServerConfig{Port: 8080, ReadTimeout: 10, WriteTimeout: 10},
			Database: DatabaseConfig{Host: "localhost", Port: 5432, User: "madar", DBName: "madar"},
			NATS:     NATSConfig{URL: "nats://localhost:4222"},
			Valkey:   ValkeyConfig{Addr: "localhost:6379"},
			Map:      MapConfig{CacheTTL: 60, EventLogCapacity: 100, ErrorLogCapacity: 50},
		}
	}

	cfg := valid()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"port", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"db host", func(c *Config) { c.Database.Host = "" }, "database.host"},
		{"temporal", func(c *Config) { c.Temporal.Enabled = true }, "temporal.host_port"},
		{"error log", func(c *Config) { c.Map.ErrorLogCapacity = -1 }, "map.error_log_capacity"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error mentioning %s, got %v", tt.want, err)
			}
		})
	}
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "h", Port: 5432, User: "u", Password: "p", DBName: "madar", SSLMode: "disable"}
	if got := d.DSN(); got != "postgres://u:p@h:5432/madar?sslmode=disable" {
		t.Errorf("unexpected DSN %q", got)
	}
}
