package config

import (
	_ "embed"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/shopdesk/pkg/domain/types/apperr"
	"gopkg.in/yaml.v3"
)

//go:embed templates/config.yaml
var defaultConfigFile string

// File is the YAML configuration file. Every value is optional; flags and
// environment variables override it.
type File struct {
	API struct {
		BaseURL   string `yaml:"base_url"`
		Timeout   string `yaml:"timeout"`
		LoginPath string `yaml:"login_path"`
	} `yaml:"api"`

	Credential struct {
		Backend string `yaml:"backend"`
		Dir     string `yaml:"dir"`
		Profile string `yaml:"profile"`
	} `yaml:"credential"`

	Storage struct {
		Bucket   string `yaml:"bucket"`
		Prefix   string `yaml:"prefix"`
		Path     string `yaml:"path"`
		Compress bool   `yaml:"compress"`
	} `yaml:"storage"`

	Firestore struct {
		ProjectID       string `yaml:"project_id"`
		DatabaseID      string `yaml:"database_id"`
		CredentialsFile string `yaml:"credentials_file"`
	} `yaml:"firestore"`
}

// LoadFile reads and parses a configuration file
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V("path", path))
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, goerr.Wrap(err, "failed to parse config file",
			goerr.T(apperr.ErrTagInvalidInput),
			goerr.V("path", path))
	}
	return &f, nil
}

// DefaultConfigFile returns the commented template written by
// `shopdesk tool generate-config`
func DefaultConfigFile() string {
	return defaultConfigFile
}

// GenerateConfigFile writes the template to outputPath
func GenerateConfigFile(outputPath string) error {
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0750); err != nil { // #nosec G301 - 0750 is appropriate for config directories
		return goerr.Wrap(err, "failed to create directory", goerr.V("dir", dir))
	}

	if err := os.WriteFile(outputPath, []byte(defaultConfigFile), 0600); err != nil { // #nosec G306 - 0600 is appropriate for config files
		return goerr.Wrap(err, "failed to write config file", goerr.V("path", outputPath))
	}

	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
