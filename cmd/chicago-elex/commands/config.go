package commands

import (
	"os"

	"chicago-openelex/internal/components/configutil"
	"chicago-openelex/internal/db"
	"chicago-openelex/internal/scrapers/chicago"
)

const (
	ENV_DB_URL        = "CHICAGO_ELEX_DB_URL"
	ENV_DB_AUTH_TOKEN = "CHICAGO_ELEX_DB_AUTH_TOKEN"
)

type CacheConfig struct {
	File     string `json:"file"`
	Disabled bool   `json:"disabled"`
}

type WatchConfig struct {
	// standard 5 field cron spec, evaluated in Chicago time
	Schedule string `json:"schedule"`
}

type Config struct {
	BaseUrl   string               `json:"base_url"`
	Client    chicago.ClientConfig `json:"client"`
	OutputDir string               `json:"output_dir"`
	Cache     CacheConfig          `json:"cache"`
	Store     db.Config            `json:"store"`
	Watch     WatchConfig          `json:"watch"`
}

func defaultConfig() Config {
	return Config{
		BaseUrl:   chicago.DEFAULT_BASE_URL,
		Client:    chicago.DefaultClientConfig(),
		OutputDir: "election_json",
		Cache: CacheConfig{
			File: ".cache/pages.db",
		},
		Store: db.Config{
			File: "chicago-elex.db",
		},
		Watch: WatchConfig{
			Schedule: "0 6 * * *",
		},
	}
}

// readConfig reads the config file (and its .local override) over the
// defaults, then applies the store overrides from the environment.
func readConfig(path string) (Config, error) {
	cfg, err := configutil.ReadOrDefault(path, defaultConfig())
	if err != nil {
		return Config{}, err
	}

	dbUrl, ok := os.LookupEnv(ENV_DB_URL)
	if ok {
		cfg.Store.Url = dbUrl
	}
	authToken, ok := os.LookupEnv(ENV_DB_AUTH_TOKEN)
	if ok {
		cfg.Store.AuthToken = authToken
	}
	return cfg, nil
}
