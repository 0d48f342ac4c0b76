// Package state implements the persisted wallet state: networks, accounts,
// tokens, transaction records, and in-flight transaction requests. All
// durable mutations go through Store.Update; no other component touches the
// persisted bytes.
package state

import (
	"github.com/Consensys/starknet-snap-sub002/pkg/types"
)

// ContractVersion identifies the account contract code variant an account
// is addressed against.
type ContractVersion string

// Account contract versions. Legacy accounts sit behind a proxy contract
// and may require an upgrade before use.
const (
	VersionLegacy  ContractVersion = "legacy"
	VersionCurrent ContractVersion = "current"
)

// Account is a wallet account derived from the master seed. The address is
// a pure function of the public key and contract version.
type Account struct {
	Address         types.Felt      `json:"address"`
	PublicKey       types.Felt      `json:"publicKey"`
	Index           uint32          `json:"addressIndex"`
	DerivationPath  string          `json:"derivationPath"`
	ChainID         types.Felt      `json:"chainId"`
	ContractVersion ContractVersion `json:"contractVersion"`
	Name            string          `json:"name,omitempty"`
	Deployed        bool            `json:"deployed"`
	UpgradeRequired bool            `json:"upgradeRequired"`
	DeployTxnHash   types.Felt      `json:"deployTxnHash,omitzero"`
	Visible         bool            `json:"visible"`
}

// Network is a chain descriptor. Exactly one network is current at a time.
type Network struct {
	Name             string     `json:"name"`
	ChainID          types.Felt `json:"chainId"`
	NodeURL          string     `json:"nodeUrl"`
	ExplorerURL      string     `json:"explorerUrl,omitempty"`
	AccountClassHash types.Felt `json:"accountClassHash"`
	// SupportsDataGas is false on chains that predate the extended
	// l1DataGas resource dimension.
	SupportsDataGas bool `json:"supportsDataGas"`
}

// Erc20Token is a fungible token registered for display and fee payment.
// The (ChainID, Address) pair is unique per collection.
type Erc20Token struct {
	Address  types.Felt `json:"address"`
	Name     string     `json:"name"`
	Symbol   string     `json:"symbol"`
	Decimals uint8      `json:"decimals"`
	ChainID  types.Felt `json:"chainId"`
}

// TxnType labels a transaction record.
type TxnType string

// Transaction types.
const (
	TxnInvoke        TxnType = "invoke"
	TxnDeploy        TxnType = "deploy"
	TxnDeployAccount TxnType = "deploy_account"
)

// Transaction statuses as reported by the chain.
const (
	StatusReceived = "RECEIVED"
)

// TransactionRecord is an immutable audit entry created after a successful
// submission. Records are never mutated or deleted by the wallet core.
type TransactionRecord struct {
	TxnHash         types.Felt   `json:"txnHash"`
	Type            TxnType      `json:"txnType"`
	ChainID         types.Felt   `json:"chainId"`
	SenderAddress   types.Felt   `json:"senderAddress"`
	ContractAddress types.Felt   `json:"contractAddress"`
	EntryPoint      string       `json:"contractFuncName,omitempty"`
	Calldata        []types.Felt `json:"contractCallData,omitempty"`
	MaxFee          types.Felt   `json:"maxFee,omitzero"`
	FinalityStatus  string       `json:"finalityStatus"`
	ExecutionStatus string       `json:"executionStatus"`
	FailureReason   string       `json:"failureReason,omitempty"`
	Timestamp       int64        `json:"timestamp"`
}

// TransactionRequest is the mutable draft of a transaction awaiting user
// confirmation. It is created when the confirmation flow starts, edited by
// user-interaction events (fee token switches) while pending, and removed
// unconditionally once the flow resolves.
type TransactionRequest struct {
	ID               string                 `json:"id"`
	InterfaceID      string                 `json:"interfaceId"`
	Type             TxnType                `json:"type"`
	Signer           types.Felt             `json:"signer"`
	ChainID          types.Felt             `json:"chainId"`
	NetworkName      string                 `json:"networkName"`
	Calls            []types.Call           `json:"calls"`
	MaxFee           types.Felt             `json:"maxFee"`
	ResourceBounds   []types.ResourceBounds `json:"resourceBounds"`
	SelectedFeeToken types.FeeToken         `json:"selectedFeeToken"`
	IncludeDeploy    bool                   `json:"includeDeploy"`
}

// Snapshot is the full persisted wallet state. The store owns the durable
// representation; everything else holds at most a transient copy for the
// duration of one operation.
type Snapshot struct {
	Accounts       []Account            `json:"accContracts"`
	Networks       []Network            `json:"networks"`
	Tokens         []Erc20Token         `json:"erc20Tokens"`
	Transactions   []TransactionRecord  `json:"transactions"`
	Requests       []TransactionRequest `json:"transactionRequests"`
	CurrentChainID types.Felt           `json:"currentChainId,omitzero"`
	// CurrentAccounts maps a chain id (padded hex) to the address
	// (padded hex) of the chain's current account.
	CurrentAccounts map[string]string `json:"currentAccounts,omitempty"`
}

// normalize replaces nil collections with empty ones so mutators can append
// without nil checks. Called on every load.
func (s *Snapshot) normalize() {
	if s.Accounts == nil {
		s.Accounts = []Account{}
	}
	if s.Networks == nil {
		s.Networks = []Network{}
	}
	if s.Tokens == nil {
		s.Tokens = []Erc20Token{}
	}
	if s.Transactions == nil {
		s.Transactions = []TransactionRecord{}
	}
	if s.Requests == nil {
		s.Requests = []TransactionRequest{}
	}
	if s.CurrentAccounts == nil {
		s.CurrentAccounts = map[string]string{}
	}
}
