package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v2"
)

type fileFormat string

const (
	formatYAML fileFormat = "yaml"
	formatJSON fileFormat = "json"
	formatTOML fileFormat = "toml"
)

// Extensions probed, in order, for a path given without one.
var probeExtensions = []string{".yaml", ".yml", ".toml", ".json", ".jsonc"}

func formatForExt(ext string) (fileFormat, bool) {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		return formatYAML, true
	case ".json", ".jsonc":
		return formatJSON, true
	case ".toml":
		return formatTOML, true
	}
	return "", false
}

// resolvePath maps the bootstrap argument to an existing file and its format.
func resolvePath(path string) (string, fileFormat, error) {
	if format, ok := formatForExt(filepath.Ext(path)); ok {
		return path, format, nil
	}

	for _, ext := range probeExtensions {
		candidate := path + ext
		if _, err := os.Stat(candidate); err == nil {
			format, _ := formatForExt(ext)
			return candidate, format, nil
		}
	}

	// Extension-less files are read as YAML, which also accepts plain JSON.
	if _, err := os.Stat(path); err == nil {
		return path, formatYAML, nil
	}
	return "", "", fmt.Errorf("configuration file %s not found", path)
}

// decode funnels every format through the YAML struct tags: JSON and TOML
// documents are decoded generically and re-encoded as YAML first.
func decode(format fileFormat, data []byte, cfg *Config) error {
	switch format {
	case formatJSON:
		var doc map[string]interface{}
		if err := json.Unmarshal(jsonc.ToJSON(data), &doc); err != nil {
			return err
		}
		return remarshal(doc, cfg)
	case formatTOML:
		var doc map[string]interface{}
		if err := toml.Unmarshal(data, &doc); err != nil {
			return err
		}
		return remarshal(doc, cfg)
	default:
		return yaml.Unmarshal(data, cfg)
	}
}

func remarshal(doc map[string]interface{}, cfg *Config) error {
	out, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(out, cfg)
}
