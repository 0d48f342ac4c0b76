package chain

import (
	"context"
	"fmt"
	"sync"

	"github.com/holiman/uint256"
	"github.com/rs/zerolog"

	klog "github.com/Consensys/starknet-snap-sub002/internal/log"
	"github.com/Consensys/starknet-snap-sub002/pkg/types"
)

// StubClient is an in-process Client with scriptable reads and recorded
// writes. walletd wires one per network; tests drive it directly.
type StubClient struct {
	mu sync.Mutex

	// Scriptable responses keyed by padded address hex.
	classVersions map[string]string
	publicKeys    map[string]types.Felt
	balances      map[string]*uint256.Int
	nonces        map[string]types.Felt
	statuses      map[string]TxnStatus

	// Fee returned per estimate item when no explicit script is set.
	flatFee *uint256.Int
	unit    types.FeeToken

	// Recorded submissions.
	invokes []InvokeRequest
	deploys []DeployAccountRequest

	nextHash uint64
	logger   zerolog.Logger
}

// NewStub creates a stub client. Reads against unscripted addresses
// behave as an empty chain: ErrContractNotFound and zero balances.
func NewStub(chainID types.Felt) *StubClient {
	return &StubClient{
		classVersions: make(map[string]string),
		publicKeys:    make(map[string]types.Felt),
		balances:      make(map[string]*uint256.Int),
		nonces:        make(map[string]types.Felt),
		statuses:      make(map[string]TxnStatus),
		flatFee:       uint256.NewInt(1_000_000_000_000),
		unit:          types.FeeTokenETH,
		logger:        klog.Chain.With().Str("chain_id", chainID.String()).Logger(),
	}
}

// SetDeployed scripts a deployed contract at address with the given class
// version and owner public key.
func (c *StubClient) SetDeployed(address types.Felt, version string, publicKey types.Felt) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.classVersions[address.PaddedHex()] = version
	c.publicKeys[address.PaddedHex()] = publicKey
}

// SetBalance scripts a holder balance, shared across all tokens.
func (c *StubClient) SetBalance(holder types.Felt, balance *uint256.Int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.balances[holder.PaddedHex()] = new(uint256.Int).Set(balance)
}

// SetStatus scripts the status returned for a transaction hash.
func (c *StubClient) SetStatus(hash types.Felt, status TxnStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statuses[hash.PaddedHex()] = status
}

// SetFlatFee scripts the per-item fee returned by EstimateFeeBulk.
func (c *StubClient) SetFlatFee(fee *uint256.Int, unit types.FeeToken) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flatFee = new(uint256.Int).Set(fee)
	c.unit = unit
}

// Invokes returns the recorded invoke submissions.
func (c *StubClient) Invokes() []InvokeRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]InvokeRequest(nil), c.invokes...)
}

// Deploys returns the recorded deploy submissions.
func (c *StubClient) Deploys() []DeployAccountRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]DeployAccountRequest(nil), c.deploys...)
}

func (c *StubClient) newHash() types.Felt {
	c.nextHash++
	return types.NewFelt(0xdead_0000_0000 + c.nextHash)
}

// EstimateFeeBulk returns one flat-fee estimate per item, order preserved.
func (c *StubClient) EstimateFeeBulk(ctx context.Context, sender types.Felt, items []EstimateItem) ([]FeeEstimate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	estimates := make([]FeeEstimate, 0, len(items))
	for _, item := range items {
		if item.Type != EstimateInvoke && item.Type != EstimateDeployAccount {
			return nil, fmt.Errorf("unknown estimate item type %q", item.Type)
		}
		overall := new(uint256.Int).Set(c.flatFee)
		suggested := new(uint256.Int).Mul(overall, uint256.NewInt(3))
		suggested.Div(suggested, uint256.NewInt(2))
		estimates = append(estimates, FeeEstimate{
			OverallFee:      overall,
			SuggestedMaxFee: suggested,
			Unit:            c.unit,
			ResourceBounds: types.ResourceBounds{
				L1Gas: types.Bounds{
					MaxAmount:       types.NewFelt(1000),
					MaxPricePerUnit: types.NewFelt(1_000_000_000),
				},
				L2Gas: types.Bounds{
					MaxAmount:       types.NewFelt(500_000),
					MaxPricePerUnit: types.NewFelt(1_000_000),
				},
				L1DataGas: &types.Bounds{
					MaxAmount:       types.NewFelt(128),
					MaxPricePerUnit: types.NewFelt(1_000_000_000),
				},
			},
		})
	}
	return estimates, nil
}

// Invoke records the submission and returns a fresh transaction hash.
func (c *StubClient) Invoke(ctx context.Context, req InvokeRequest) (AddInvokeResult, error) {
	if err := ctx.Err(); err != nil {
		return AddInvokeResult{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invokes = append(c.invokes, req)
	hash := c.newHash()
	c.statuses[hash.PaddedHex()] = TxnStatus{FinalityStatus: "RECEIVED"}
	c.logger.Debug().Str("txnHash", hash.String()).Msg("Stub invoke accepted")
	return AddInvokeResult{TransactionHash: hash}, nil
}

// DeployAccount records the submission, marks the derived address as
// deployed and returns a fresh transaction hash.
func (c *StubClient) DeployAccount(ctx context.Context, req DeployAccountRequest) (AddDeployResult, error) {
	if err := ctx.Err(); err != nil {
		return AddDeployResult{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deploys = append(c.deploys, req)

	address := types.ComputeContractAddress(req.ContractAddressSalt, req.ClassHash, req.ConstructorCalldata)
	c.classVersions[address.PaddedHex()] = "1.0.0"
	if len(req.ConstructorCalldata) > 0 {
		c.publicKeys[address.PaddedHex()] = req.ConstructorCalldata[0]
	}
	hash := c.newHash()
	c.statuses[hash.PaddedHex()] = TxnStatus{FinalityStatus: "RECEIVED"}
	c.logger.Debug().Str("txnHash", hash.String()).Str("address", address.String()).
		Msg("Stub deploy accepted")
	return AddDeployResult{TransactionHash: hash, ContractAddress: address}, nil
}

// TransactionStatus reports the scripted status for a hash.
func (c *StubClient) TransactionStatus(ctx context.Context, hash types.Felt) (TxnStatus, error) {
	if err := ctx.Err(); err != nil {
		return TxnStatus{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	status, ok := c.statuses[hash.PaddedHex()]
	if !ok {
		return TxnStatus{}, fmt.Errorf("transaction %s not found", hash)
	}
	return status, nil
}

// ClassVersionAt reports the scripted class version at an address.
func (c *StubClient) ClassVersionAt(ctx context.Context, address types.Felt) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	version, ok := c.classVersions[address.PaddedHex()]
	if !ok {
		return "", ErrContractNotFound
	}
	return version, nil
}

// OwnerPublicKey reports the scripted signer key at an address.
func (c *StubClient) OwnerPublicKey(ctx context.Context, address types.Felt) (types.Felt, error) {
	if err := ctx.Err(); err != nil {
		return types.Felt{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	key, ok := c.publicKeys[address.PaddedHex()]
	if !ok {
		return types.Felt{}, ErrContractNotFound
	}
	return key, nil
}

// BalanceOf reports the scripted holder balance. Unscripted holders have
// a zero balance, not an error.
func (c *StubClient) BalanceOf(ctx context.Context, token, holder types.Felt) (*uint256.Int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	balance, ok := c.balances[holder.PaddedHex()]
	if !ok {
		return new(uint256.Int), nil
	}
	return new(uint256.Int).Set(balance), nil
}

// Nonce reports a nonce of 0 for undeployed and 1 for deployed addresses.
func (c *StubClient) Nonce(ctx context.Context, address types.Felt) (types.Felt, error) {
	if err := ctx.Err(); err != nil {
		return types.Felt{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.classVersions[address.PaddedHex()]; ok {
		return types.NewFelt(1), nil
	}
	return types.NewFelt(0), nil
}

var _ Client = (*StubClient)(nil)
