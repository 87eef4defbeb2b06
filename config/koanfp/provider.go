// Package koanfp adapts koanf to config.Provider.
// https://github.com/knadh/koanf
package koanfp

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/miruken-go/mvc/config"
)

// provider of options populated by the koanf library.
type provider struct {
	k *koanf.Koanf
}

func (p *provider) Unmarshal(path string, flat bool, output any) error {
	return p.k.UnmarshalWithConf(path, output,
		koanf.UnmarshalConf{Tag: "path", FlatPaths: flat})
}

// P returns a config.Provider using the Koanf instance.
func P(k *koanf.Koanf) config.Provider {
	if k == nil {
		panic("k cannot be nil")
	}
	return &provider{k}
}

// LoadFile merges a json or yaml file into k.
func LoadFile(k *koanf.Koanf, path string) error {
	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		parser = json.Parser()
	case ".yaml", ".yml":
		parser = yaml.Parser()
	default:
		return fmt.Errorf("koanfp: unsupported config file %q", path)
	}
	return k.Load(file.Provider(path), parser)
}

// LoadEnv merges the environment variables starting with prefix
// into k.  MVC_STRICTELEMENTS becomes mvc.strictelements.
func LoadEnv(k *koanf.Koanf, prefix string) error {
	return k.Load(env.Provider(prefix, ".", func(key string) string {
		return strings.ReplaceAll(strings.ToLower(key), "_", ".")
	}), nil)
}
