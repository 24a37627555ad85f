package config

import (
	"testing"
)

func TestDefaultEngineConfig(t *testing.T) {
	config := DefaultEngineConfig()

	if config.ModelName != "" {
		t.Errorf("Expected empty ModelName, got %q", config.ModelName)
	}

	if config.StrictMode {
		t.Error("Expected StrictMode off by default")
	}

	foundSQL := false
	for _, target := range config.Targets {
		if target == "sql" {
			foundSQL = true
			break
		}
	}
	if !foundSQL {
		t.Error("Expected 'sql' to be in Targets")
	}
}

func TestDefaultExpandConfig(t *testing.T) {
	config := DefaultExpandConfig()

	if config.RepeatMin != 2 {
		t.Errorf("Expected RepeatMin 2, got %d", config.RepeatMin)
	}

	foundPayments := false
	for _, term := range config.Denylist {
		if term == "payments" {
			foundPayments = true
			break
		}
	}
	if !foundPayments {
		t.Error("Expected 'payments' to be in Denylist")
	}
}

func TestDefaultStorageConfig(t *testing.T) {
	config := DefaultStorageConfig()

	if config.Backend != "local" {
		t.Errorf("Expected backend 'local', got %q", config.Backend)
	}

	if config.Local.Dir != DefaultOutDir {
		t.Errorf("Expected local dir %q, got %q", DefaultOutDir, config.Local.Dir)
	}

	if config.S3.Region != DefaultRegion {
		t.Errorf("Expected region %q, got %q", DefaultRegion, config.S3.Region)
	}
}
