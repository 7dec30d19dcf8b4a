package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/avolkovs/accountd/internal/flagx"
	"github.com/avolkovs/accountd/internal/timex"
)

// JsonConfig is the intermediate DTO used only for reading JSON configuration
// files. Duration fields use timex.Duration so both "15m" strings and integer
// nanoseconds parse. After unmarshalling, the values are copied into the
// runtime Config.
type JsonConfig struct {
	EndpointAddrHTTP             string         `json:"endpoint_addr_http"`
	DatabaseDSN                  string         `json:"database_dsn"`
	SecretKey                    string         `json:"secret_key"`
	HashSecret                   string         `json:"hash_secret"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
}

// parseJson overlays configuration values from a JSON file onto config.
//
// The file path comes from the -c or -config command-line flags; when neither
// is set, no file is loaded. An unreadable file or invalid JSON panics, since
// a half-applied config is worse than a failed start.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()

	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.EndpointAddrHTTP = c.EndpointAddrHTTP
	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.HashSecret = c.HashSecret
	config.AccessTokenValidityDuration = time.Duration(c.AccessTokenValidityDuration.Duration)
	config.RefreshTokenValidityDuration = time.Duration(c.RefreshTokenValidityDuration.Duration)
}
