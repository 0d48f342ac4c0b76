package rpc

import (
	"errors"

	"github.com/Consensys/starknet-snap-sub002/internal/account"
	"github.com/Consensys/starknet-snap-sub002/internal/chain"
	klog "github.com/Consensys/starknet-snap-sub002/internal/log"
	"github.com/Consensys/starknet-snap-sub002/internal/txn"
)

// JSON-RPC 2.0 error codes.
const (
	CodeParseError      = -32700
	CodeInvalidRequest  = -32600
	CodeMethodNotFound  = -32601
	CodeInvalidParams   = -32602
	CodeInternalError   = -32603
	CodeUserRejected    = -32001
	CodeDeployRequired  = -32002
	CodeUpgradeRequired = -32003
	CodeNotFound        = -32004
)

// Sentinel errors of the request pipeline. Handlers and stages return
// these (wrapped with context); the boundary maps them to wire errors.
var (
	// ErrInvalidParams marks a shape violation caught at the boundary.
	// The wrapping message names the violated field.
	ErrInvalidParams = errors.New("invalid request params")

	// ErrInvalidNetwork marks a well-formed request referencing an
	// unknown chain id.
	ErrInvalidNetwork = errors.New("unknown network")

	// ErrDeployRequired marks an account that must be deployed before
	// the requested operation can proceed.
	ErrDeployRequired = errors.New("account deployment required")

	// ErrUpgradeRequired marks a legacy account that must be upgraded
	// before the requested operation can proceed.
	ErrUpgradeRequired = errors.New("account upgrade required")

	// ErrAccountDeployed marks a request for deployment data of an
	// account that is already on chain.
	ErrAccountDeployed = errors.New("account already deployed")

	// ErrUnknown marks an internal consistency failure. The full detail
	// is logged, never sent to the caller.
	ErrUnknown = errors.New("internal error")
)

// toWireError maps a pipeline error onto the JSON-RPC error object.
// Internal detail stays in the log; the caller sees a stable message.
func toWireError(err error) *Error {
	switch {
	case errors.Is(err, ErrInvalidParams):
		return &Error{Code: CodeInvalidParams, Message: err.Error()}
	case errors.Is(err, ErrInvalidNetwork):
		return &Error{Code: CodeNotFound, Message: err.Error()}
	case errors.Is(err, account.ErrAddressNotFound):
		return &Error{Code: CodeNotFound, Message: err.Error()}
	case errors.Is(err, chain.ErrContractNotFound):
		return &Error{Code: CodeNotFound, Message: err.Error()}
	case errors.Is(err, ErrDeployRequired):
		return &Error{Code: CodeDeployRequired, Message: "the account must be deployed before this operation; execute a transaction to deploy it"}
	case errors.Is(err, ErrUpgradeRequired):
		return &Error{Code: CodeUpgradeRequired, Message: "the account contract is outdated; upgrade it before this operation"}
	case errors.Is(err, ErrAccountDeployed):
		return &Error{Code: CodeInvalidRequest, Message: err.Error()}
	case errors.Is(err, txn.ErrUserRejected):
		return &Error{Code: CodeUserRejected, Message: txn.ErrUserRejected.Error()}
	default:
		klog.RPC.Error().Err(err).Msg("Request failed")
		return &Error{Code: CodeInternalError, Message: "internal error"}
	}
}
