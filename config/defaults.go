package config

import (
	"github.com/Consensys/starknet-snap-sub002/internal/state"
	"github.com/Consensys/starknet-snap-sub002/pkg/types"
)

// Chain ids of the built-in networks (short-string encoded).
var (
	ChainIDMainnet = types.MustFelt("0x534e5f4d41494e")
	ChainIDSepolia = types.MustFelt("0x534e5f5345504f4c4941")
)

// Well-known token contract addresses, identical on both networks.
var (
	addrETH  = types.MustFelt("0x049d36570d4e46f48e99674bd3fcc84644ddd6b96f7c741b1562b82f9e004dc7")
	addrSTRK = types.MustFelt("0x04718f5a0fc34cc1af16a1cdee98ffb20c31f5cd61d6ab07201858f4287c938d")
	addrUSDC = types.MustFelt("0x053c91253bc9682c04929ca02ed00b3e423f6710d2ee7e0d5ebb06f3ecf368a8")
	addrUSDT = types.MustFelt("0x068f5c6a61780768455de69077e07e89787839bf8166decfbf92b645209c0fb8")
)

// DefaultConfig returns the baseline runtime configuration.
func DefaultConfig() *Config {
	return &Config{
		DataDir: DefaultDataDir(),
		RPC: RPCConfig{
			Enabled: true,
			Addr:    "127.0.0.1",
			Port:    8547,
		},
		Wallet: WalletConfig{
			MaxScan: 20,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DefaultNetworks returns the built-in networks seeded into a fresh state
// store. Mainnet comes first and doubles as the stale-pointer fallback.
func DefaultNetworks() []state.Network {
	return []state.Network{
		{
			Name:            "Starknet Mainnet",
			ChainID:         ChainIDMainnet,
			NodeURL:         "https://alpha-mainnet.starknet.io",
			ExplorerURL:     "https://voyager.online",
			SupportsDataGas: true,
		},
		{
			Name:            "Sepolia Testnet",
			ChainID:         ChainIDSepolia,
			NodeURL:         "https://alpha-sepolia.starknet.io",
			ExplorerURL:     "https://sepolia.voyager.online",
			SupportsDataGas: true,
		},
	}
}

// PreloadedTokens returns the built-in ERC-20 set. Preloaded entries cannot
// be shadowed through watch-asset.
func PreloadedTokens() []state.Erc20Token {
	tokens := make([]state.Erc20Token, 0, 8)
	for _, chainID := range []types.Felt{ChainIDMainnet, ChainIDSepolia} {
		tokens = append(tokens,
			state.Erc20Token{Address: addrETH, Name: "Ether", Symbol: "ETH", Decimals: 18, ChainID: chainID},
			state.Erc20Token{Address: addrSTRK, Name: "Starknet Token", Symbol: "STRK", Decimals: 18, ChainID: chainID},
			state.Erc20Token{Address: addrUSDC, Name: "USD Coin", Symbol: "USDC", Decimals: 6, ChainID: chainID},
			state.Erc20Token{Address: addrUSDT, Name: "Tether USD", Symbol: "USDT", Decimals: 6, ChainID: chainID},
		)
	}
	return tokens
}
