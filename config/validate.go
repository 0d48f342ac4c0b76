package config

import (
	"fmt"
	"strings"
)

var logLevels = map[string]struct{}{
	"trace": {}, "debug": {}, "info": {}, "warn": {}, "error": {},
}

// Validate checks runtime config for obvious operator mistakes.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if cfg.DataDir == "" {
		return fmt.Errorf("datadir must not be empty")
	}
	if cfg.RPC.Port < 0 || cfg.RPC.Port > 65535 {
		return fmt.Errorf("rpc.port must be in range [0, 65535]")
	}
	if cfg.Wallet.MaxScan == 0 {
		return fmt.Errorf("wallet.maxscan must be at least 1")
	}
	if cfg.Log.Level != "" {
		if _, ok := logLevels[strings.ToLower(cfg.Log.Level)]; !ok {
			return fmt.Errorf("log.level must be one of trace, debug, info, warn, error")
		}
	}
	return nil
}
