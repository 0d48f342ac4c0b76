// Package config handles application configuration.
//
// Configuration covers node-operational settings only: where state lives,
// how the RPC server binds, how much the resolver scans. Chain identity
// (networks, class hashes, preloaded tokens) ships as defaults and is
// persisted in the state store.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// Config holds runtime settings for walletd.
type Config struct {
	// Core
	DataDir string `conf:"datadir"`

	// RPC server
	RPC RPCConfig

	// Wallet behavior
	Wallet WalletConfig

	// Logging
	Log LogConfig
}

// RPCConfig holds RPC server settings.
type RPCConfig struct {
	Enabled     bool     `conf:"rpc.enabled"`
	Addr        string   `conf:"rpc.addr"`
	Port        int      `conf:"rpc.port"`
	AllowedIPs  []string `conf:"rpc.allowed"`
	CORSOrigins []string `conf:"rpc.cors"` // Allowed CORS origins ("*" = all).
}

// WalletConfig holds wallet behavior settings.
type WalletConfig struct {
	// MaxScan bounds the derivation scan when resolving unknown addresses.
	MaxScan uint32 `conf:"wallet.maxscan"`
	// AutoApprove skips confirmation dialogs. Headless operation only.
	AutoApprove bool `conf:"wallet.autoapprove"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `conf:"log.level"`
	File  string `conf:"log.file"`
	JSON  bool   `conf:"log.json"`
}

// DefaultDataDir returns the platform-specific default data directory.
//
//	Linux:   ~/.starkwallet
//	macOS:   ~/Library/Application Support/Starkwallet
//	Windows: %APPDATA%\Starkwallet
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".starkwallet"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Starkwallet")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "Starkwallet")
		}
		return filepath.Join(home, "AppData", "Roaming", "Starkwallet")
	default:
		return filepath.Join(home, ".starkwallet")
	}
}

// StateDir returns the state database directory.
func (c *Config) StateDir() string {
	return filepath.Join(c.DataDir, "state")
}

// KeystoreDir returns the keystore directory.
func (c *Config) KeystoreDir() string {
	return filepath.Join(c.DataDir, "keystore")
}

// LogsDir returns the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// ConfigFile returns the config file path.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.DataDir, "walletd.conf")
}
