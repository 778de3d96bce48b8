package main

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	. "github.com/weberc2/afs/pkg/types"
	"gopkg.in/yaml.v2"
)

const (
	envVarPrefix = "AFS"
	appName      = "afs"
)

type Config struct {
	Disk           string `envconfig:"AFS_DISK"            yaml:"disk"`
	BlockSize      Byte   `envconfig:"AFS_BLOCK_SIZE"      yaml:"blockSize"`
	BlockCount     Block  `envconfig:"AFS_BLOCK_COUNT"     yaml:"blockCount"`
	Addr           string `envconfig:"AFS_ADDR"            yaml:"addr"`
	SnapshotBucket string `envconfig:"AFS_SNAPSHOT_BUCKET" yaml:"snapshotBucket"`
	SnapshotPrefix string `envconfig:"AFS_SNAPSHOT_PREFIX" yaml:"snapshotPrefix"`
	SnapshotRegion string `envconfig:"AFS_SNAPSHOT_REGION" yaml:"snapshotRegion"`
	SnapshotDir    string `envconfig:"AFS_SNAPSHOT_DIR"    yaml:"snapshotDir"`
}

// DefaultConfig is the configuration before the config file and the
// environment are applied.
func DefaultConfig() Config {
	return Config{
		BlockSize:      DefaultBlockSize,
		BlockCount:     DefaultBlockCount,
		Addr:           "127.0.0.1:8080",
		SnapshotPrefix: "snapshots",
		SnapshotRegion: "us-east-1",
		SnapshotDir:    filepath.Join(os.Getenv("HOME"), ".cache", appName),
	}
}

func configFile() string {
	if configFile := os.Getenv(envVarPrefix + "_CONFIG_FILE"); configFile != "" {
		return configFile
	}
	return filepath.Join(os.Getenv("HOME"), ".config", appName+".yaml")
}

// LoadConfig layers the config file and then the environment over the
// defaults.
func LoadConfig() (*Config, error) {
	c := DefaultConfig()
	data, err := ioutil.ReadFile(configFile())
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	} else if err := yaml.UnmarshalStrict(data, &c); err != nil {
		return nil, fmt.Errorf("unmarshaling config file: %w", err)
	}

	if err := envconfig.Process(envVarPrefix, &c); err != nil {
		return nil, fmt.Errorf("parsing environment variables: %w", err)
	}

	return &c, nil
}

func (c *Config) Validate() error {
	if y, e := func() (string, string) {
		if c.Disk == "" {
			return "disk", "DISK"
		}
		if c.BlockSize == 0 {
			return "blockSize", "BLOCK_SIZE"
		}
		if c.BlockCount == 0 {
			return "blockCount", "BLOCK_COUNT"
		}
		return "", ""
	}(); y != "" {
		return fmt.Errorf(
			"missing required configuration: %s / %s_%s",
			y,
			envVarPrefix,
			e,
		)
	}
	if _, err := NewSuperblock(c.BlockSize, c.BlockCount); err != nil {
		return fmt.Errorf("validating configuration: %w", err)
	}
	return nil
}
