package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/leapstack-labs/adpbuild/pkg/core"
)

// ConfigFileName is the name of the config file.
const ConfigFileName = "adpbuild.yaml"

// ConfigFileNameAlt is the alternate name of the config file.
const ConfigFileNameAlt = "adpbuild.yml"

var (
	usbIDType = reflect.TypeOf(core.USBID(0))
	byteType  = reflect.TypeOf(byte(0))
)

// HexIDHook decodes "0x1209"-style strings into USBID and byte fields.
// Plain integers are left to mapstructure.
func HexIDHook() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if from.Kind() != reflect.String {
			return data, nil
		}
		s, _ := data.(string)

		switch to {
		case usbIDType:
			v, err := strconv.ParseUint(s, 0, 16)
			if err != nil {
				return nil, fmt.Errorf("invalid USB id %q: %w", s, err)
			}
			return core.USBID(v), nil
		case byteType:
			v, err := strconv.ParseUint(s, 0, 8)
			if err != nil {
				return nil, fmt.Errorf("invalid byte %q: %w", s, err)
			}
			return byte(v), nil
		}
		return data, nil
	}
}

// Unmarshal decodes the koanf tree at path into out using the project's
// decode hooks.
func Unmarshal(k *koanf.Koanf, path string, out any) error {
	return k.UnmarshalWithConf(path, out, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				HexIDHook(),
				mapstructure.StringToSliceHookFunc(","),
			),
			Result:           out,
			WeaklyTypedInput: true,
			TagName:          "koanf",
		},
	})
}

// LoadFromDir loads a ProjectConfig from the given directory.
// Returns nil, nil if no config file is found (not an error condition).
func LoadFromDir(dir string) (*ProjectConfig, error) {
	configPath := FindConfigFile(dir)
	if configPath == "" {
		return nil, nil
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("read %s: %w", configPath, err)
	}

	var cfg ProjectConfig
	if err := Unmarshal(k, "", &cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", configPath, err)
	}
	ApplyDefaults(&cfg)

	return &cfg, nil
}

// FindConfigFile returns the config file in dir, or "" if there is none.
func FindConfigFile(dir string) string {
	for _, name := range []string{ConfigFileName, ConfigFileNameAlt} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// FindProjectRoot walks up from startDir to the first directory holding a
// config file, giving up after maxLevels parents. Returns "" if not found.
func FindProjectRoot(startDir string, maxLevels int) string {
	dir := startDir
	for i := 0; i <= maxLevels; i++ {
		if FindConfigFile(dir) != "" {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
	return ""
}
