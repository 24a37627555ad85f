package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	spanconfig "github.com/assafkip/spanforge/pkg/config"
	"github.com/assafkip/spanforge/pkg/storage"
)

// buildStore resolves the artifact store for a command. An explicit
// "s3://bucket[/prefix]" publish target wins; otherwise the storage section
// of the config file decides, falling back to the local out directory.
func buildStore(ctx context.Context, publish string) (storage.BlobStore, error) {
	cfg := spanconfig.DefaultStorageConfig()
	cfg.Local.Dir = outDir
	if err := viper.UnmarshalKey("storage", &cfg); err != nil {
		return nil, fmt.Errorf("invalid storage config: %w", err)
	}
	if rootCmd.PersistentFlags().Changed("out") {
		cfg.Local.Dir = outDir
	}

	if publish != "" {
		rest, ok := strings.CutPrefix(publish, "s3://")
		if !ok {
			return nil, fmt.Errorf("unsupported publish target %q (want s3://bucket[/prefix])", publish)
		}
		bucket, prefix, _ := strings.Cut(rest, "/")
		if bucket == "" {
			return nil, fmt.Errorf("publish target %q names no bucket", publish)
		}
		cfg.Backend = "s3"
		cfg.S3.Bucket = bucket
		cfg.S3.Prefix = prefix
	}

	switch cfg.Backend {
	case "local":
		return storage.NewLocalStore(cfg.Local.Dir), nil
	case "s3":
		if cfg.S3.Bucket == "" {
			return nil, fmt.Errorf("storage backend s3 configured without a bucket")
		}
		awsCfg, err := storage.LoadConfig(ctx, cfg.S3.Region)
		if err != nil {
			return nil, err
		}
		return storage.NewS3Store(awsCfg, cfg.S3.Bucket, cfg.S3.Prefix), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
