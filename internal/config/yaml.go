package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

type fileLayout struct {
	API struct {
		BaseURL string `yaml:"base_url"`
		Token   string `yaml:"token,omitempty"`
		Timeout string `yaml:"timeout"`
	} `yaml:"api"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Search struct {
		Debounce string `yaml:"debounce"`
	} `yaml:"search"`
	Logging struct {
		File string `yaml:"file"`
	} `yaml:"logging"`
}

// MarshalYAML renders the configuration in the layout of config.yaml. The API
// token is masked unless showSecrets is set.
func (c *Config) MarshalYAML(showSecrets bool) ([]byte, error) {
	var f fileLayout
	f.API.BaseURL = c.APIBaseURL
	f.API.Timeout = c.APITimeout.String()
	f.Database.Path = c.DatabasePath
	f.Search.Debounce = c.Debounce.String()
	f.Logging.File = c.LogFile

	switch {
	case c.APIToken == "":
	case showSecrets:
		f.API.Token = c.APIToken
	default:
		f.API.Token = maskToken(c.APIToken)
	}

	out, err := yaml.Marshal(&f)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return out, nil
}

func maskToken(token string) string {
	if len(token) <= 4 {
		return "****"
	}
	return "****" + token[len(token)-4:]
}
