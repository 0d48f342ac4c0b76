package rpc

import (
	"fmt"

	"github.com/Consensys/starknet-snap-sub002/internal/keyring"
	"github.com/Consensys/starknet-snap-sub002/internal/state"
	"github.com/Consensys/starknet-snap-sub002/pkg/types"
)

// Request is a JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
	ID      interface{} `json:"id"`
}

// Response is a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string      `json:"jsonrpc"`
	Result  interface{} `json:"result,omitempty"`
	Error   *Error      `json:"error,omitempty"`
	ID      interface{} `json:"id"`
}

// Error is a JSON-RPC 2.0 error object.
type Error struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Params is a typed, validatable parameter object. Validate runs at the
// pipeline boundary before any business logic sees the request.
type Params interface {
	Validate() error
	Chain() types.Felt
}

// BaseParams carries the chain id every operation is keyed by.
type BaseParams struct {
	ChainID string `json:"chainId"`

	chainID types.Felt
}

// Validate parses the chain id. The felt form is available through Chain
// afterwards.
func (p *BaseParams) Validate() error {
	if p.ChainID == "" {
		return fmt.Errorf("%w: chainId is required", ErrInvalidParams)
	}
	chainID, err := types.ParseFelt(p.ChainID)
	if err != nil {
		return fmt.Errorf("%w: chainId: %v", ErrInvalidParams, err)
	}
	p.chainID = chainID
	return nil
}

// Chain returns the parsed chain id.
func (p *BaseParams) Chain() types.Felt {
	return p.chainID
}

// parseAddress parses a required felt field, naming it on violation.
func parseAddress(field, value string) (types.Felt, error) {
	if value == "" {
		return types.Felt{}, fmt.Errorf("%w: %s is required", ErrInvalidParams, field)
	}
	f, err := types.ParseFelt(value)
	if err != nil {
		return types.Felt{}, fmt.Errorf("%w: %s: %v", ErrInvalidParams, field, err)
	}
	return f, nil
}

// parseFelts parses a list of felt strings, naming the offending index.
func parseFelts(field string, values []string) ([]types.Felt, error) {
	out := make([]types.Felt, 0, len(values))
	for i, v := range values {
		f, err := types.ParseFelt(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %s[%d]: %v", ErrInvalidParams, field, i, err)
		}
		out = append(out, f)
	}
	return out, nil
}

// CallParam is the wire form of one contract call.
type CallParam struct {
	ContractAddress string   `json:"contractAddress"`
	Entrypoint      string   `json:"entrypoint"`
	Calldata        []string `json:"calldata"`
}

// parseCalls validates and converts the call batch.
func parseCalls(calls []CallParam) ([]types.Call, error) {
	if len(calls) == 0 {
		return nil, fmt.Errorf("%w: calls must not be empty", ErrInvalidParams)
	}
	out := make([]types.Call, 0, len(calls))
	for i, c := range calls {
		addr, err := parseAddress(fmt.Sprintf("calls[%d].contractAddress", i), c.ContractAddress)
		if err != nil {
			return nil, err
		}
		if c.Entrypoint == "" {
			return nil, fmt.Errorf("%w: calls[%d].entrypoint is required", ErrInvalidParams, i)
		}
		calldata, err := parseFelts(fmt.Sprintf("calls[%d].calldata", i), c.Calldata)
		if err != nil {
			return nil, err
		}
		out = append(out, types.Call{
			ContractAddress: addr,
			Entrypoint:      c.Entrypoint,
			Calldata:        calldata,
		})
	}
	return out, nil
}

// parseFeeToken validates an optional fee token field. Empty selects ETH.
func parseFeeToken(value string) (types.FeeToken, error) {
	switch types.FeeToken(value) {
	case "", types.FeeTokenETH:
		return types.FeeTokenETH, nil
	case types.FeeTokenSTRK:
		return types.FeeTokenSTRK, nil
	default:
		return "", fmt.Errorf("%w: feeToken must be ETH or STRK", ErrInvalidParams)
	}
}

// ── Param types ─────────────────────────────────────────────────────────

// CreateAccountParams bootstraps the wallet on a chain.
type CreateAccountParams struct {
	BaseParams
	Name string `json:"accountName,omitempty"`
}

// AddAccountParams adds the account at the next unused index.
type AddAccountParams struct {
	BaseParams
	Name string `json:"accountName,omitempty"`
}

// AddressParams is shared by operations keyed by (chainId, address).
type AddressParams struct {
	BaseParams
	Address string `json:"address"`

	address types.Felt
}

func (p *AddressParams) Validate() error {
	if err := p.BaseParams.Validate(); err != nil {
		return err
	}
	addr, err := parseAddress("address", p.Address)
	if err != nil {
		return err
	}
	p.address = addr
	return nil
}

// TargetAddress returns the parsed address.
func (p *AddressParams) TargetAddress() types.Felt {
	return p.address
}

// ListAccountsParams lists the visible accounts on a chain.
type ListAccountsParams struct {
	BaseParams
}

// GetCurrentAccountParams reads the chain's current account.
type GetCurrentAccountParams struct {
	BaseParams
}

// SwitchNetworkParams makes the given chain the active one.
type SwitchNetworkParams struct {
	BaseParams
}

// GetCurrentNetworkParams reads the active network. No chain id needed.
type GetCurrentNetworkParams struct{}

func (*GetCurrentNetworkParams) Validate() error   { return nil }
func (*GetCurrentNetworkParams) Chain() types.Felt { return types.Felt{} }

// EstimateFeeParams prices a call batch for a signer.
type EstimateFeeParams struct {
	AddressParams
	Calls    []CallParam `json:"calls"`
	FeeToken string      `json:"feeToken,omitempty"`

	calls    []types.Call
	feeToken types.FeeToken
}

func (p *EstimateFeeParams) Validate() error {
	if err := p.AddressParams.Validate(); err != nil {
		return err
	}
	calls, err := parseCalls(p.Calls)
	if err != nil {
		return err
	}
	token, err := parseFeeToken(p.FeeToken)
	if err != nil {
		return err
	}
	p.calls = calls
	p.feeToken = token
	return nil
}

// ExecuteTxnParams submits a call batch after user confirmation.
type ExecuteTxnParams struct {
	AddressParams
	Calls    []CallParam `json:"calls"`
	FeeToken string      `json:"feeToken,omitempty"`

	calls    []types.Call
	feeToken types.FeeToken
}

func (p *ExecuteTxnParams) Validate() error {
	if err := p.AddressParams.Validate(); err != nil {
		return err
	}
	calls, err := parseCalls(p.Calls)
	if err != nil {
		return err
	}
	token, err := parseFeeToken(p.FeeToken)
	if err != nil {
		return err
	}
	p.calls = calls
	p.feeToken = token
	return nil
}

// SignMessageParams signs an off-chain message.
type SignMessageParams struct {
	AddressParams
	Message         []string `json:"message"`
	EnableAuthorize bool     `json:"enableAuthorize,omitempty"`

	message []types.Felt
}

func (p *SignMessageParams) Validate() error {
	if err := p.AddressParams.Validate(); err != nil {
		return err
	}
	if len(p.Message) == 0 {
		return fmt.Errorf("%w: message must not be empty", ErrInvalidParams)
	}
	message, err := parseFelts("message", p.Message)
	if err != nil {
		return err
	}
	p.message = message
	return nil
}

// SignTransactionParams signs a call batch without submitting it.
type SignTransactionParams struct {
	AddressParams
	Calls           []CallParam `json:"calls"`
	EnableAuthorize bool        `json:"enableAuthorize,omitempty"`

	calls []types.Call
}

func (p *SignTransactionParams) Validate() error {
	if err := p.AddressParams.Validate(); err != nil {
		return err
	}
	calls, err := parseCalls(p.Calls)
	if err != nil {
		return err
	}
	p.calls = calls
	return nil
}

// SignDeclareParams signs a class declaration payload.
type SignDeclareParams struct {
	AddressParams
	ClassHash         string `json:"classHash"`
	CompiledClassHash string `json:"compiledClassHash,omitempty"`

	classHash         types.Felt
	compiledClassHash types.Felt
}

func (p *SignDeclareParams) Validate() error {
	if err := p.AddressParams.Validate(); err != nil {
		return err
	}
	classHash, err := parseAddress("classHash", p.ClassHash)
	if err != nil {
		return err
	}
	p.classHash = classHash
	if p.CompiledClassHash != "" {
		compiled, err := parseAddress("compiledClassHash", p.CompiledClassHash)
		if err != nil {
			return err
		}
		p.compiledClassHash = compiled
	}
	return nil
}

// DisplayPrivateKeyParams reveals a signer key in the host dialog.
type DisplayPrivateKeyParams struct {
	AddressParams
}

// WatchAssetParams registers a user-supplied ERC-20 token.
type WatchAssetParams struct {
	BaseParams
	TokenAddress string `json:"tokenAddress"`
	Name         string `json:"tokenName"`
	Symbol       string `json:"tokenSymbol"`
	Decimals     uint8  `json:"tokenDecimals"`

	tokenAddress types.Felt
}

func (p *WatchAssetParams) Validate() error {
	if err := p.BaseParams.Validate(); err != nil {
		return err
	}
	addr, err := parseAddress("tokenAddress", p.TokenAddress)
	if err != nil {
		return err
	}
	if p.Name == "" || p.Symbol == "" {
		return fmt.Errorf("%w: tokenName and tokenSymbol are required", ErrInvalidParams)
	}
	p.tokenAddress = addr
	return nil
}

// VerifySignatureParams checks a signature against a signer address.
type VerifySignatureParams struct {
	AddressParams
	Message   []string          `json:"message"`
	Signature keyring.Signature `json:"signature"`

	message []types.Felt
}

func (p *VerifySignatureParams) Validate() error {
	if err := p.AddressParams.Validate(); err != nil {
		return err
	}
	if len(p.Message) == 0 {
		return fmt.Errorf("%w: message must not be empty", ErrInvalidParams)
	}
	if p.Signature.R == "" || p.Signature.S == "" {
		return fmt.Errorf("%w: signature.r and signature.s are required", ErrInvalidParams)
	}
	message, err := parseFelts("message", p.Message)
	if err != nil {
		return err
	}
	p.message = message
	return nil
}

// GetTransactionStatusParams reads the status of a submitted transaction.
type GetTransactionStatusParams struct {
	BaseParams
	TransactionHash string `json:"transactionHash"`

	hash types.Felt
}

func (p *GetTransactionStatusParams) Validate() error {
	if err := p.BaseParams.Validate(); err != nil {
		return err
	}
	hash, err := parseAddress("transactionHash", p.TransactionHash)
	if err != nil {
		return err
	}
	p.hash = hash
	return nil
}

// ListTransactionsParams lists persisted records, optionally by sender.
type ListTransactionsParams struct {
	BaseParams
	SenderAddress string `json:"senderAddress,omitempty"`

	sender types.Felt
}

func (p *ListTransactionsParams) Validate() error {
	if err := p.BaseParams.Validate(); err != nil {
		return err
	}
	if p.SenderAddress != "" {
		sender, err := parseAddress("senderAddress", p.SenderAddress)
		if err != nil {
			return err
		}
		p.sender = sender
	}
	return nil
}

// SetAccountNameParams renames an account.
type SetAccountNameParams struct {
	AddressParams
	Name string `json:"accountName"`
}

func (p *SetAccountNameParams) Validate() error {
	if err := p.AddressParams.Validate(); err != nil {
		return err
	}
	if p.Name == "" {
		return fmt.Errorf("%w: accountName is required", ErrInvalidParams)
	}
	return nil
}

// GetDeploymentDataParams returns the deploy payload for an account.
type GetDeploymentDataParams struct {
	AddressParams
}

// ── Result types ────────────────────────────────────────────────────────

// AccountResult is the wire form of a wallet account.
type AccountResult struct {
	Address         string `json:"address"`
	PublicKey       string `json:"publicKey"`
	AddressIndex    uint32 `json:"addressIndex"`
	DerivationPath  string `json:"derivationPath"`
	Deployed        bool   `json:"deployed"`
	UpgradeRequired bool   `json:"upgradeRequired"`
	Name            string `json:"accountName,omitempty"`
	Visibility      bool   `json:"visibility"`
}

// NewAccountResult converts a persisted account.
func NewAccountResult(a state.Account) *AccountResult {
	return &AccountResult{
		Address:         a.Address.PaddedHex(),
		PublicKey:       a.PublicKey.String(),
		AddressIndex:    a.Index,
		DerivationPath:  a.DerivationPath,
		Deployed:        a.Deployed,
		UpgradeRequired: a.UpgradeRequired,
		Name:            a.Name,
		Visibility:      a.Visible,
	}
}

// NetworkResult is the wire form of a network.
type NetworkResult struct {
	Name        string `json:"name"`
	ChainID     string `json:"chainId"`
	NodeURL     string `json:"nodeUrl,omitempty"`
	ExplorerURL string `json:"explorerUrl,omitempty"`
}

// NewNetworkResult converts a persisted network.
func NewNetworkResult(n state.Network) *NetworkResult {
	return &NetworkResult{
		Name:        n.Name,
		ChainID:     n.ChainID.String(),
		NodeURL:     n.NodeURL,
		ExplorerURL: n.ExplorerURL,
	}
}

// EstimateFeeResult is the priced batch summary.
type EstimateFeeResult struct {
	SuggestedMaxFee string `json:"suggestedMaxFee"`
	OverallFee      string `json:"overallFee"`
	Unit            string `json:"unit"`
	IncludeDeploy   bool   `json:"includeDeploy"`
}

// ExecuteTxnResult reports the submitted hashes.
type ExecuteTxnResult struct {
	TransactionHash string `json:"transactionHash"`
	DeployHash      string `json:"deployTransactionHash,omitempty"`
}

// TransactionStatusResult is the lifecycle position of a transaction.
type TransactionStatusResult struct {
	FinalityStatus  string `json:"finalityStatus"`
	ExecutionStatus string `json:"executionStatus,omitempty"`
}

// TransactionResult is the wire form of a persisted record.
type TransactionResult struct {
	TxnHash        string `json:"txnHash"`
	Type           string `json:"txnType"`
	SenderAddress  string `json:"senderAddress"`
	FinalityStatus string `json:"finalityStatus"`
	Timestamp      int64  `json:"timestamp"`
}

// DeploymentDataResult is the payload needed to deploy an account contract.
type DeploymentDataResult struct {
	Address   string   `json:"address"`
	ClassHash string   `json:"class_hash"`
	Salt      string   `json:"salt"`
	Calldata  []string `json:"calldata"`
	Version   string   `json:"version"`
}
