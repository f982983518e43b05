package config

import (
	"errors"
	"net/url"
	"strings"

	"github.com/spf13/viper"

	apperrors "taskflow/internal/errors"
)

// Placeholder sentinels shipped in the example remote config. A config
// still carrying them does not select the remote backend.
const (
	PlaceholderAPIKey    = "REPLACE_WITH_YOUR_API_KEY"
	PlaceholderProjectID = "REPLACE_WITH_PROJECT_ID"
)

// BackendMode selects which backend is active. Set exactly once at
// startup; never toggled at runtime.
type BackendMode int

const (
	// ModeLocal uses the on-device store, no network dependency.
	ModeLocal BackendMode = iota
	// ModeRemote uses the remote document store with realtime push.
	ModeRemote
)

// String returns a human-readable representation of the mode.
func (m BackendMode) String() string {
	switch m {
	case ModeLocal:
		return "local"
	case ModeRemote:
		return "remote"
	default:
		return "unknown"
	}
}

// RemoteConfig holds the remote provider identifiers.
type RemoteConfig struct {
	APIKey      string `mapstructure:"api_key"`
	ProjectID   string `mapstructure:"project_id"`
	DatabaseURL string `mapstructure:"database_url"`
}

// LoadRemoteConfig reads remote.{json,yaml,toml} from dir, with
// TASKFLOW_API_KEY / TASKFLOW_PROJECT_ID / TASKFLOW_DATABASE_URL
// environment overrides. A missing file is not an error: the zero value
// selects the local backend.
func LoadRemoteConfig(dir string) (RemoteConfig, error) {
	v := viper.New()
	v.SetConfigName(RemoteConfigFile)
	v.AddConfigPath(dir)
	v.SetEnvPrefix("TASKFLOW")
	v.AutomaticEnv()

	// AutomaticEnv only resolves keys viper already knows about.
	for _, key := range []string{"api_key", "project_id", "database_url"} {
		v.SetDefault(key, "")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return RemoteConfig{}, apperrors.NewConfigurationError("invalid remote config file", err)
		}
	}

	var rc RemoteConfig
	if err := v.Unmarshal(&rc); err != nil {
		return RemoteConfig{}, apperrors.NewConfigurationError("invalid remote config file", err)
	}
	return rc, nil
}

// Mode decides which backend a given remote configuration selects.
// Remote is chosen only when both identifiers are present and are not the
// placeholder sentinels. Pure predicate, deterministic, no side effects.
func Mode(rc RemoteConfig) BackendMode {
	if rc.APIKey == "" || rc.APIKey == PlaceholderAPIKey {
		return ModeLocal
	}
	if rc.ProjectID == "" || rc.ProjectID == PlaceholderProjectID {
		return ModeLocal
	}
	return ModeRemote
}

// ResolveDatabaseURL returns the document store base URL for a remote
// config, deriving the conventional per-project host when none is set.
func ResolveDatabaseURL(rc RemoteConfig) string {
	if rc.DatabaseURL != "" {
		return strings.TrimRight(rc.DatabaseURL, "/")
	}
	u := url.URL{Scheme: "https", Host: rc.ProjectID + ".taskflowdb.app"}
	return u.String()
}
