// Starknet wallet daemon.
//
// Usage:
//
//	walletd [--datadir=... --rpc-port=...] Run the wallet backend
//	walletd --help                         Show help
package main

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/Consensys/starknet-snap-sub002/config"
	"github.com/Consensys/starknet-snap-sub002/internal/chain"
	"github.com/Consensys/starknet-snap-sub002/internal/keyring"
	klog "github.com/Consensys/starknet-snap-sub002/internal/log"
	"github.com/Consensys/starknet-snap-sub002/internal/rpc"
	"github.com/Consensys/starknet-snap-sub002/internal/state"
	"github.com/Consensys/starknet-snap-sub002/internal/storage"
	"github.com/Consensys/starknet-snap-sub002/internal/ui"
)

func main() {
	cfg, _, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logFile := cfg.Log.File
	if err := klog.Init(cfg.Log.Level, cfg.Log.JSON, logFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: init logging: %v\n", err)
		os.Exit(1)
	}
	logger := klog.WithComponent("walletd")

	seed, err := unlockSeed(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	deriver, err := keyring.NewBIP44Deriver(seed)
	keyring.ZeroBytes(seed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	db, err := storage.NewBadger(cfg.StateDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: open state db: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	store := state.NewStore(db)
	networks := config.DefaultNetworks()
	if err := state.NewNetworkStore(store, networks[0]).AddDefaults(networks); err != nil {
		fmt.Fprintf(os.Stderr, "Error: seed networks: %v\n", err)
		os.Exit(1)
	}
	preloaded := config.PreloadedTokens()
	if err := state.NewTokenStore(store, preloaded).AddDefaults(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: seed tokens: %v\n", err)
		os.Exit(1)
	}

	var dialog ui.Dialog = ui.AutoApprove{}
	if !cfg.Wallet.AutoApprove {
		dialog = newConsoleDialog()
	}

	clients := make(map[string]chain.Client)
	for _, n := range networks {
		clients[n.ChainID.PaddedHex()] = chain.NewStub(n.ChainID)
	}

	if !cfg.RPC.Enabled {
		fmt.Fprintln(os.Stderr, "Error: nothing to do with rpc disabled")
		os.Exit(1)
	}

	addr := net.JoinHostPort(cfg.RPC.Addr, fmt.Sprintf("%d", cfg.RPC.Port))
	server := rpc.New(addr, rpc.Deps{
		Store:     store,
		Deriver:   deriver,
		Dialog:    dialog,
		Fallback:  networks[0],
		Clients:   clients,
		Preloaded: preloaded,
		MaxScan:   cfg.Wallet.MaxScan,
	}, cfg.RPC)

	if err := server.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger.Info().Str("addr", server.Addr()).Msg("Wallet RPC listening")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	if err := server.Stop(); err != nil {
		logger.Warn().Err(err).Msg("Server shutdown failed")
	}
}

// unlockSeed loads the encrypted master seed, creating it on first run.
func unlockSeed(cfg *config.Config) ([]byte, error) {
	ks, err := keyring.NewKeystore(cfg.KeystoreDir())
	if err != nil {
		return nil, err
	}

	if !ks.Exists() {
		return createSeed(ks)
	}

	password, err := readPassword("Keystore password: ")
	if err != nil {
		return nil, fmt.Errorf("read password: %w", err)
	}
	defer keyring.ZeroBytes(password)
	seed, err := ks.Load(password)
	if err != nil {
		return nil, fmt.Errorf("unlock keystore: %w", err)
	}
	return seed, nil
}

// createSeed walks first-run setup: generate or import a mnemonic, encrypt
// the derived seed under a new password.
func createSeed(ks *keyring.Keystore) ([]byte, error) {
	fmt.Fprintln(os.Stderr, "No wallet seed found. Press Enter to generate a new one,")
	fmt.Fprint(os.Stderr, "or paste an existing 24-word recovery phrase: ")

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("read mnemonic: %w", err)
	}
	mnemonic := strings.TrimSpace(line)

	if mnemonic == "" {
		mnemonic, err = keyring.GenerateMnemonic()
		if err != nil {
			return nil, err
		}
		fmt.Fprintln(os.Stderr, "\nYour recovery phrase (write it down, it is shown once):")
		fmt.Fprintf(os.Stderr, "\n  %s\n\n", mnemonic)
	} else if !keyring.ValidateMnemonic(mnemonic) {
		return nil, fmt.Errorf("invalid recovery phrase")
	}

	password, err := readPassword("New keystore password: ")
	if err != nil {
		return nil, fmt.Errorf("read password: %w", err)
	}
	defer keyring.ZeroBytes(password)
	confirm, err := readPassword("Confirm password: ")
	if err != nil {
		return nil, fmt.Errorf("read password: %w", err)
	}
	defer keyring.ZeroBytes(confirm)
	if string(password) != string(confirm) {
		return nil, fmt.Errorf("passwords do not match")
	}

	seed, err := keyring.SeedFromMnemonic(mnemonic, "")
	if err != nil {
		return nil, err
	}
	if err := ks.Create(seed, password, keyring.DefaultParams()); err != nil {
		keyring.ZeroBytes(seed)
		return nil, err
	}
	return seed, nil
}

// ── Password helper ─────────────────────────────────────────────────────

func readPassword(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr) // newline after hidden input
	if err != nil {
		return nil, err
	}
	return password, nil
}
