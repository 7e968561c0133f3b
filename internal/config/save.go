package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rileyhilliard/vitals/internal/errors"
	"gopkg.in/yaml.v3"
)

const fileHeader = `# vitals configuration
# Edit by hand or regenerate with 'vitals init'.

`

// fileConfig is the on-disk shape. Interval is kept as a duration string so
// the file stays readable ("1s" instead of nanoseconds).
type fileConfig struct {
	Theme     string `yaml:"theme"`
	Interval  string `yaml:"interval"`
	Interface string `yaml:"interface,omitempty"`
	History   int    `yaml:"history"`
}

// Save writes the full config to path, creating parent directories as needed.
// Any hand-edited layout or comments in an existing file are replaced; use
// UpdateTheme for the in-place single-key change.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot create config directory: "+dir,
			"Check directory permissions")
	}

	repr := fileConfig{
		Theme:     c.Theme,
		Interval:  c.Interval.String(),
		Interface: c.Interface,
		History:   c.History,
	}
	data, err := yaml.Marshal(repr)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to generate config YAML", "")
	}

	if err := os.WriteFile(path, []byte(fileHeader+string(data)), 0o644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to write config file: "+path,
			"Check directory permissions")
	}
	return nil
}

// UpdateTheme rewrites only the theme key in an existing config file,
// preserving the rest of the document including comments and any keys this
// version does not know about.
func UpdateTheme(path, theme string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot read config file: "+path,
			"Run 'vitals init' to create one")
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Config file is not valid YAML: "+path,
			"Fix the syntax or regenerate with 'vitals init'")
	}

	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		// Empty file: start a fresh single-key document.
		mapping := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		root = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{mapping}}
	}

	mapping := root.Content[0]
	if mapping.Kind != yaml.MappingNode {
		return errors.New(errors.ErrConfig,
			"Config file has an unexpected layout: "+path,
			"Expected top-level key: value pairs")
	}

	if node := findMapValue(mapping, "theme"); node != nil {
		node.Kind = yaml.ScalarNode
		node.Tag = "!!str"
		node.Value = theme
	} else {
		mapping.Content = append(mapping.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: "theme"},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: theme},
		)
	}

	var buf strings.Builder
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&root); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to encode config", "")
	}
	enc.Close()

	if err := os.WriteFile(path, []byte(buf.String()), 0o644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to write config file: "+path,
			"Check file permissions")
	}
	return nil
}

// findMapValue finds a value in a mapping node by key name.
func findMapValue(node *yaml.Node, key string) *yaml.Node {
	if node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i < len(node.Content)-1; i += 2 {
		if node.Content[i].Kind == yaml.ScalarNode && node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}
