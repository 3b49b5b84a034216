// Package config reads settings from defaults, an optional config file
// (json, yaml or toml, picked by extension) and WORDTAG_* environment variables,
// in increasing order of priority.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kjk/wordtag/vocab"
	"github.com/spf13/viper"
)

const EnvPrefix = "WORDTAG"

type Backup struct {
	Endpoint string
	Access   string
	Secret   string
	Bucket   string
	Prefix   string
	// how long to wait after a save before uploading
	Delay time.Duration
}

// Enabled is true if all the credentials were provided
func (b *Backup) Enabled() bool {
	return b.Endpoint != "" && b.Access != "" && b.Secret != "" && b.Bucket != ""
}

type Config struct {
	StorePath     string
	ServerAddress string

	PageSize        int
	BottomThreshold int
	LoadDelay       time.Duration

	WordTypes  []string
	Categories []string
	// reject values outside of WordTypes / Categories
	Validate bool

	LogDir     string
	LogVerbose bool

	Backup Backup
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.path", "words.json")
	v.SetDefault("server.address", ":3000")
	v.SetDefault("view.pageSize", 20)
	v.SetDefault("view.bottomThreshold", 100)
	v.SetDefault("view.loadDelay", "500ms")
	v.SetDefault("vocab.wordTypes", vocab.DefaultWordTypes)
	v.SetDefault("vocab.categories", vocab.DefaultCategories)
	v.SetDefault("vocab.validate", true)
	v.SetDefault("log.dir", "logs")
	v.SetDefault("log.verbose", false)
	v.SetDefault("backup.prefix", "wordtag")
	v.SetDefault("backup.delay", "30s")
}

// Load reads config. path can be empty, in which case only defaults
// and environment variables are used.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	// WORDTAG_STORE_PATH overrides store.path
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config '%s': %w", path, err)
		}
	}

	c := &Config{
		StorePath:       v.GetString("store.path"),
		ServerAddress:   v.GetString("server.address"),
		PageSize:        v.GetInt("view.pageSize"),
		BottomThreshold: v.GetInt("view.bottomThreshold"),
		LoadDelay:       v.GetDuration("view.loadDelay"),
		WordTypes:       v.GetStringSlice("vocab.wordTypes"),
		Categories:      v.GetStringSlice("vocab.categories"),
		Validate:        v.GetBool("vocab.validate"),
		LogDir:          v.GetString("log.dir"),
		LogVerbose:      v.GetBool("log.verbose"),
		Backup: Backup{
			Endpoint: v.GetString("backup.endpoint"),
			Access:   v.GetString("backup.access"),
			Secret:   v.GetString("backup.secret"),
			Bucket:   v.GetString("backup.bucket"),
			Prefix:   v.GetString("backup.prefix"),
			Delay:    v.GetDuration("backup.delay"),
		},
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) validate() error {
	if c.StorePath == "" {
		return fmt.Errorf("store.path is empty")
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("view.pageSize must be positive, is %d", c.PageSize)
	}
	if c.BottomThreshold < 0 {
		return fmt.Errorf("view.bottomThreshold can't be negative, is %d", c.BottomThreshold)
	}
	if c.LoadDelay < 0 {
		return fmt.Errorf("view.loadDelay can't be negative, is %s", c.LoadDelay)
	}
	_, err := c.Vocabulary()
	return err
}

// Vocabulary builds the closed sets of word types and categories
func (c *Config) Vocabulary() (*vocab.Vocabulary, error) {
	return vocab.New(c.WordTypes, c.Categories)
}
