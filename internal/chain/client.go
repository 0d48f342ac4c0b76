package chain

import (
	"context"
	"errors"

	"github.com/holiman/uint256"

	"github.com/Consensys/starknet-snap-sub002/pkg/types"
)

// ErrContractNotFound is returned by read calls against an address that has
// no deployed contract on the queried network.
var ErrContractNotFound = errors.New("contract not found")

// FeeEstimate is the node's cost prediction for a single transaction.
type FeeEstimate struct {
	OverallFee      *uint256.Int
	SuggestedMaxFee *uint256.Int
	Unit            types.FeeToken
	ResourceBounds  types.ResourceBounds
}

// InvokeRequest is an execution of one or more calls from a deployed account.
type InvokeRequest struct {
	SenderAddress  types.Felt
	Calls          []types.Call
	Version        types.TxnVersion
	MaxFee         types.Felt
	Nonce          types.Felt
	ResourceBounds *types.ResourceBounds
}

// DeployAccountRequest deploys the account contract itself. The address is
// derived from the class hash, salt and constructor calldata, so the node
// can verify it before accepting the transaction.
type DeployAccountRequest struct {
	ClassHash           types.Felt
	ContractAddressSalt types.Felt
	ConstructorCalldata []types.Felt
	Version             types.TxnVersion
	MaxFee              types.Felt
	ResourceBounds      *types.ResourceBounds
}

// EstimateItem is one entry in a bulk estimation. Deploy items carry the
// deployment payload instead of calls.
type EstimateItem struct {
	Type   string // "INVOKE" or "DEPLOY_ACCOUNT"
	Invoke *InvokeRequest
	Deploy *DeployAccountRequest
}

// AddInvokeResult is the node acknowledgement of a submitted invoke.
type AddInvokeResult struct {
	TransactionHash types.Felt
}

// AddDeployResult is the node acknowledgement of a submitted account deploy.
type AddDeployResult struct {
	TransactionHash types.Felt
	ContractAddress types.Felt
}

// TxnStatus is the lifecycle position of a submitted transaction.
type TxnStatus struct {
	FinalityStatus  string
	ExecutionStatus string
}

// Client is the read/write surface of a single network's node. One client is
// bound to one network; callers pick the client for the active network.
type Client interface {
	// EstimateFeeBulk prices the given items in order. The response holds
	// exactly one estimate per item.
	EstimateFeeBulk(ctx context.Context, sender types.Felt, items []EstimateItem) ([]FeeEstimate, error)

	// Invoke submits an execution from an already deployed account.
	Invoke(ctx context.Context, req InvokeRequest) (AddInvokeResult, error)

	// DeployAccount submits the account contract deployment.
	DeployAccount(ctx context.Context, req DeployAccountRequest) (AddDeployResult, error)

	// TransactionStatus reports the current status of a transaction hash.
	TransactionStatus(ctx context.Context, hash types.Felt) (TxnStatus, error)

	// ClassVersionAt reads the contract class version string at an address.
	// Returns ErrContractNotFound when nothing is deployed there.
	ClassVersionAt(ctx context.Context, address types.Felt) (string, error)

	// OwnerPublicKey reads the signer public key of a deployed account.
	// Returns ErrContractNotFound when nothing is deployed there.
	OwnerPublicKey(ctx context.Context, address types.Felt) (types.Felt, error)

	// BalanceOf reads an ERC-20 balance for the given holder.
	BalanceOf(ctx context.Context, token, holder types.Felt) (*uint256.Int, error)

	// Nonce reads the account nonce at an address.
	Nonce(ctx context.Context, address types.Felt) (types.Felt, error)
}

const (
	EstimateInvoke        = "INVOKE"
	EstimateDeployAccount = "DEPLOY_ACCOUNT"
)
