package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/ini.v1"

	"proxyfetch/internal/shared/types"
)

// LoadIni 从 fileName 加载配置，未出现在文件中的字段保留默认值。
// fileName 为空或文件不存在时直接返回默认配置。
func LoadIni(fileName string) (*types.Config, error) {
	cfg := types.DefaultConfig()
	if fileName != "" {
		if _, err := os.Stat(fileName); err == nil {
			iniFile, err := ini.Load(fileName)
			if err != nil {
				return nil, fmt.Errorf("failed to load config file '%s': %w", fileName, err)
			}
			if err := iniFile.MapTo(cfg); err != nil {
				return nil, fmt.Errorf("failed to map config file '%s': %w", fileName, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to stat config file '%s': %w", fileName, err)
		}
	}
	applyEnv(cfg)
	return cfg, nil
}

// LoadIniBytes 与 LoadIni 相同，但从内存中的 ini 内容加载（例如标准输入）。
func LoadIniBytes(data []byte) (*types.Config, error) {
	cfg := types.DefaultConfig()
	iniFile, err := ini.Load(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ini content: %w", err)
	}
	if err := iniFile.MapTo(cfg); err != nil {
		return nil, fmt.Errorf("failed to map ini content to config struct: %w", err)
	}
	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *types.Config) {
	overrideFromEnvString(&cfg.SourceConf.Name, "PROXYFETCH_SOURCE")
	overrideFromEnvUint64(&cfg.FetchConf.Seed, "PROXYFETCH_SEED")
}

func overrideFromEnvString(target *string, envName string) {
	if envValue := os.Getenv(envName); envValue != "" {
		*target = envValue
	}
}

func overrideFromEnvUint64(target *uint64, envName string) {
	envValue := os.Getenv(envName)
	if envValue != "" {
		if v, err := strconv.ParseUint(envValue, 10, 64); err == nil {
			*target = v
		}
	}
}
