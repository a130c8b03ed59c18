package config

import (
	"testing"
	"time"

	"github.com/ashik5757/Minio-Private-Bucket/internal/constants"
)

func TestValidateRequiresBucket(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err == nil {
		t.Error("Expected validation error without bucket")
	}

	cfg.Bucket = "my-bucket"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected valid config, got %v", err)
	}
}

func TestValidateClampsTunables(t *testing.T) {
	cfg := Default()
	cfg.Bucket = "my-bucket"
	cfg.MaxConcurrentDownloads = 0
	cfg.ArchiveRetention = -time.Second
	cfg.EventBuffer = constants.EventBusMaxBuffer * 10

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	if cfg.MaxConcurrentDownloads != constants.DefaultMaxConcurrentDownloads {
		t.Errorf("Expected default concurrency, got %d", cfg.MaxConcurrentDownloads)
	}
	if cfg.ArchiveRetention != constants.DefaultArchiveRetention {
		t.Errorf("Expected default retention, got %v", cfg.ArchiveRetention)
	}
	if cfg.EventBuffer != constants.EventBusMaxBuffer {
		t.Errorf("Expected event buffer clamped to %d, got %d",
			constants.EventBusMaxBuffer, cfg.EventBuffer)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("BUCKET_NAME", "env-bucket")
	t.Setenv("ENDPOINT_URL", "http://minio:9000")
	t.Setenv("MAX_CONCURRENT_DOWNLOADS", "2")
	t.Setenv("ARCHIVE_RETENTION", "30m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Bucket != "env-bucket" {
		t.Errorf("Expected bucket env-bucket, got %q", cfg.Bucket)
	}
	if cfg.Endpoint != "http://minio:9000" {
		t.Errorf("Expected endpoint set, got %q", cfg.Endpoint)
	}
	if cfg.MaxConcurrentDownloads != 2 {
		t.Errorf("Expected 2 concurrent downloads, got %d", cfg.MaxConcurrentDownloads)
	}
	if cfg.ArchiveRetention != 30*time.Minute {
		t.Errorf("Expected 30m retention, got %v", cfg.ArchiveRetention)
	}
	if cfg.ListenAddr != ":5000" {
		t.Errorf("Expected default listen addr, got %q", cfg.ListenAddr)
	}
}

func TestLoadFailsWithoutBucket(t *testing.T) {
	t.Setenv("BUCKET_NAME", "")
	if _, err := Load(); err == nil {
		t.Error("Expected Load to fail without BUCKET_NAME")
	}
}
