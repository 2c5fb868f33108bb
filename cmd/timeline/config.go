package main

import (
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds tool settings loaded from config files.
type Config struct {
	// ArchiveDB is the sqlite database archive saves go to.
	ArchiveDB string `koanf:"archive_db"`

	// ArchiveKeep is how many archived saves to retain after pruning.
	ArchiveKeep int `koanf:"archive_keep"`
}

// loadConfig reads tool configuration. Files are tried in order with the
// last one winning: ~/.config/timeline/config.toml, ./timeline.toml, then
// an explicit -config path.
func loadConfig(explicit string) (*Config, error) {
	k := koanf.New(".")

	paths := configPaths()
	if explicit != "" {
		paths = append(paths, explicit)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{
		ArchiveDB:   defaultArchiveDB(),
		ArchiveKeep: 20,
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	if cfg.ArchiveKeep <= 0 {
		cfg.ArchiveKeep = 20
	}
	return cfg, nil
}

func configPaths() []string {
	paths := []string{}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "timeline", "config.toml"))
	}
	paths = append(paths, "timeline.toml")
	return paths
}

func defaultArchiveDB() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "timeline-archive.db"
	}
	return filepath.Join(home, ".local", "share", "timeline", "archive.db")
}
