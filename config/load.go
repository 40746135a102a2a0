package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar 指定配置文件路径的环境变量
const ConfigPathEnvVar = "FEEDRANK_CONFIG"

// EnvPrefix 配置项环境变量前缀
const EnvPrefix = "FEEDRANK_"

// DefaultConfigPaths 未显式指定时依次查找的配置文件
var DefaultConfigPaths = []string{"config.yaml", "config.yml"}

// legacyEnv 兼容的数据库环境变量
var legacyEnv = map[string]string{
	"POSTGRES_USERNAME": "database.user",
	"POSTGRES_PASSWORD": "database.password",
	"POSTGRES_HOST":     "database.host",
	"POSTGRES_PORT":     "database.port",
	"POSTGRES_DATABASE": "database.database",
}

// sliceConfigPaths 环境变量中以逗号分隔的列表项
var sliceConfigPaths = []string{
	"feast.features",
}

// Load 依次加载默认值、配置文件、环境变量，并校验。
// path 为空时先看 FEEDRANK_CONFIG，再查找 DefaultConfigPaths；都不存在则只用默认值与环境变量。
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}
	if err := processSliceFields(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		return p
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// envTransformFunc 把环境变量名映射为配置路径，返回空串表示忽略。
//
//	FEEDRANK_SERVER_PORT            -> server.port
//	FEEDRANK_MODEL_BREAKER_TIMEOUT  -> model.breaker.timeout
//	POSTGRES_HOST                   -> database.host
func envTransformFunc(key string) string {
	if path, ok := legacyEnv[key]; ok {
		return path
	}
	if !strings.HasPrefix(key, EnvPrefix) || key == ConfigPathEnvVar {
		return ""
	}
	rest := strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	section, field, ok := strings.Cut(rest, "_")
	if !ok {
		return ""
	}
	// 二级嵌套的结构体
	for _, nested := range nestedSections[section] {
		if after, found := strings.CutPrefix(field, nested+"_"); found {
			return section + "." + nested + "." + after
		}
	}
	return section + "." + field
}

// nestedSections 各 section 下的子结构体
var nestedSections = map[string][]string{
	"model":    {"breaker"},
	"features": {"key_prefix", "columns"},
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok || s == "" {
			continue
		}
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if err := k.Set(path, out); err != nil {
			return fmt.Errorf("set %s: %w", path, err)
		}
	}
	return nil
}
