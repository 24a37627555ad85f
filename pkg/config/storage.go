package config

// StorageConfig selects where run artifacts are published.
type StorageConfig struct {
	// Backend is the store implementation: "local" or "s3".
	Backend string             `mapstructure:"backend"`
	Local   LocalStorageConfig `mapstructure:"local"`
	S3      S3StorageConfig    `mapstructure:"s3"`
}

type LocalStorageConfig struct {
	// Dir is the root directory artifacts are written under.
	Dir string `mapstructure:"dir"`
}

type S3StorageConfig struct {
	// Bucket is the destination bucket name.
	Bucket string `mapstructure:"bucket"`
	// Prefix is prepended to every object key.
	Prefix string `mapstructure:"prefix"`
	// Region overrides the SDK's resolved region.
	Region string `mapstructure:"region"`
}

// DefaultStorageConfig returns a configuration that publishes to the local
// filesystem; S3 stays opt-in.
func DefaultStorageConfig() StorageConfig {
	return StorageConfig{
		Backend: "local",
		Local: LocalStorageConfig{
			Dir: DefaultOutDir,
		},
		S3: S3StorageConfig{
			Region: DefaultRegion,
		},
	}
}
