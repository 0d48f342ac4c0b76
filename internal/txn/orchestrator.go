// Package txn drives the confirm-then-submit lifecycle of user
// transactions, including the implicit account deployment a first
// transaction carries.
package txn

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Consensys/starknet-snap-sub002/internal/account"
	"github.com/Consensys/starknet-snap-sub002/internal/chain"
	"github.com/Consensys/starknet-snap-sub002/internal/fee"
	klog "github.com/Consensys/starknet-snap-sub002/internal/log"
	"github.com/Consensys/starknet-snap-sub002/internal/state"
	"github.com/Consensys/starknet-snap-sub002/internal/ui"
	"github.com/Consensys/starknet-snap-sub002/pkg/types"
)

// ErrUserRejected is returned when the user declines the confirmation
// dialog. It is an expected outcome, not a failure.
var ErrUserRejected = errors.New("user rejected the operation")

// Result reports the hashes of a completed execution. DeployHash is zero
// unless the call carried an account deployment.
type Result struct {
	TransactionHash types.Felt
	DeployHash      types.Felt
}

// Orchestrator owns the execute-transaction flow: estimate, persist a
// confirmation request, await the user decision, submit, record.
type Orchestrator struct {
	client    chain.Client
	estimator *fee.Estimator
	dialog    ui.Dialog
	accounts  *state.AccountStore
	requests  *state.RequestStore
	records   *state.TransactionStore
	logger    zerolog.Logger

	// now is stubbed in tests.
	now func() time.Time
}

// NewOrchestrator wires the flow's collaborators.
func NewOrchestrator(client chain.Client, estimator *fee.Estimator, dialog ui.Dialog,
	accounts *state.AccountStore, requests *state.RequestStore, records *state.TransactionStore) *Orchestrator {
	return &Orchestrator{
		client:    client,
		estimator: estimator,
		dialog:    dialog,
		accounts:  accounts,
		requests:  requests,
		records:   records,
		logger:    klog.Txn,
		now:       time.Now,
	}
}

// Execute runs the full transaction flow for the given account and calls.
// The pending request entity is removed on every exit path. Context
// cancellation while the confirmation is open counts as rejection.
func (o *Orchestrator) Execute(ctx context.Context, network state.Network, acct state.Account, calls []types.Call, feeToken types.FeeToken) (Result, error) {
	if len(calls) == 0 {
		return Result{}, fmt.Errorf("no calls to execute")
	}
	version := feeToken.Version()
	estimate, err := o.estimator.Estimate(ctx, network, acct, calls, version)
	if err != nil {
		return Result{}, err
	}

	request := state.TransactionRequest{
		ID:               uuid.New().String(),
		InterfaceID:      uuid.New().String(),
		Type:             state.TxnInvoke,
		Signer:           acct.Address,
		ChainID:          network.ChainID,
		NetworkName:      network.Name,
		Calls:            calls,
		MaxFee:           types.FeltFromUint256(estimate.SuggestedMaxFee),
		ResourceBounds:   []types.ResourceBounds{estimate.ResourceBounds},
		SelectedFeeToken: feeToken,
		IncludeDeploy:    estimate.IncludeDeploy,
	}
	if err := o.requests.Upsert(request); err != nil {
		return Result{}, fmt.Errorf("persist transaction request: %w", err)
	}
	defer func() {
		if err := o.requests.Remove(request.ID); err != nil {
			o.logger.Warn().Err(err).Str("id", request.ID).Msg("Request cleanup failed")
		}
	}()

	// A dialog with a fee token selector re-prices the pending request
	// before the confirmation is shown.
	if selector, ok := o.dialog.(ui.FeeTokenSelector); ok {
		choice, changed, err := selector.SelectFeeToken(ctx, feeToken)
		if err != nil {
			return Result{}, fmt.Errorf("select fee token: %w", err)
		}
		if changed && choice != feeToken {
			if err := o.UpdateFeeToken(ctx, network, request.ID, choice); err != nil {
				return Result{}, err
			}
			estimate, err = o.estimator.Estimate(ctx, network, acct, calls, choice.Version())
			if err != nil {
				return Result{}, err
			}
		}
	}

	approved, err := o.confirm(ctx, request, estimate)
	if err != nil {
		return Result{}, err
	}
	if !approved {
		o.logger.Info().Str("id", request.ID).Msg("Transaction rejected by user")
		return Result{}, ErrUserRejected
	}

	// The user may have switched the fee token while the confirmation was
	// open; the persisted request is the source of truth from here on.
	updated, ok, err := o.requests.Get(request.ID)
	if err != nil {
		return Result{}, fmt.Errorf("reload transaction request: %w", err)
	}
	if !ok {
		return Result{}, fmt.Errorf("failed to retrieve the updated transaction request")
	}
	version = updated.SelectedFeeToken.Version()

	var result Result
	nonce := types.NewFelt(0)
	if updated.IncludeDeploy {
		deployHash, err := o.deploy(ctx, network, acct, updated, version)
		result.DeployHash = deployHash
		if err != nil {
			return result, err
		}
		// The deployment itself consumes nonce 0.
		nonce = types.NewFelt(1)
	} else {
		nonce, err = o.client.Nonce(ctx, acct.Address)
		if err != nil {
			return Result{}, fmt.Errorf("read nonce: %w", err)
		}
	}

	invokeResult, err := o.client.Invoke(ctx, chain.InvokeRequest{
		SenderAddress:  acct.Address,
		Calls:          updated.Calls,
		Version:        version,
		MaxFee:         updated.MaxFee,
		Nonce:          nonce,
		ResourceBounds: requestBounds(updated),
	})
	if err != nil {
		return Result{}, fmt.Errorf("failed to execute transaction: %w", err)
	}
	result.TransactionHash = invokeResult.TransactionHash

	first := updated.Calls[0]
	if err := o.records.Add(state.TransactionRecord{
		TxnHash:         invokeResult.TransactionHash,
		Type:            state.TxnInvoke,
		ChainID:         network.ChainID,
		SenderAddress:   acct.Address,
		ContractAddress: first.ContractAddress,
		EntryPoint:      first.Entrypoint,
		Calldata:        first.Calldata,
		MaxFee:          updated.MaxFee,
		FinalityStatus:  state.StatusReceived,
		Timestamp:       o.now().UnixMilli(),
	}); err != nil {
		// The transaction is already on chain; the failed record write
		// surfaces with the hash attached.
		return result, fmt.Errorf("record invoke %s: %w", result.TransactionHash, err)
	}

	o.logger.Info().Str("txnHash", result.TransactionHash.String()).
		Str("sender", acct.Address.String()).Msg("Transaction submitted")
	return result, nil
}

// confirm renders the interactive confirmation and blocks for the user
// decision. Cancellation of ctx is an implicit rejection.
func (o *Orchestrator) confirm(ctx context.Context, request state.TransactionRequest, estimate fee.Estimate) (bool, error) {
	content := ui.Content{Heading: "Review transaction"}
	content.AddRow("Network", request.NetworkName)
	content.AddRow("Signer", request.Signer.String())
	for _, call := range request.Calls {
		content.AddRow("Call", fmt.Sprintf("%s on %s", call.Entrypoint, call.ContractAddress))
	}
	content.AddRow("Estimated fee", fmt.Sprintf("%s %s", estimate.OverallFee.Dec(), estimate.Unit))
	if request.IncludeDeploy {
		content.AddRow("Includes", "account deployment")
	}

	approved, err := o.dialog.ShowInteractive(ctx, request.InterfaceID, content)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return false, nil
		}
		return false, fmt.Errorf("render confirmation: %w", err)
	}
	return approved, nil
}

// deploy submits the account deployment and records it. A node-reported
// address that differs from the computed one is logged, not treated as an
// error.
func (o *Orchestrator) deploy(ctx context.Context, network state.Network, acct state.Account, request state.TransactionRequest, version types.TxnVersion) (types.Felt, error) {
	deployment := account.NewCalculator(network).Deployment(acct.PublicKey)
	deployResult, err := o.client.DeployAccount(ctx, chain.DeployAccountRequest{
		ClassHash:           deployment.ClassHash,
		ContractAddressSalt: deployment.Salt,
		ConstructorCalldata: deployment.ConstructorCalldata,
		Version:             version,
		MaxFee:              request.MaxFee,
		ResourceBounds:      requestBounds(request),
	})
	if err != nil {
		return types.Felt{}, fmt.Errorf("deploy account: %w", err)
	}
	if !deployResult.ContractAddress.IsZero() && !deployResult.ContractAddress.Equal(acct.Address) {
		o.logger.Warn().Str("expected", acct.Address.String()).
			Str("reported", deployResult.ContractAddress.String()).
			Msg("Deploy returned a different contract address")
	}

	if err := o.accounts.MarkDeployed(network.ChainID, acct.Address, deployResult.TransactionHash); err != nil {
		return deployResult.TransactionHash, fmt.Errorf("mark account deployed: %w", err)
	}
	if err := o.records.Add(state.TransactionRecord{
		TxnHash:        deployResult.TransactionHash,
		Type:           state.TxnDeployAccount,
		ChainID:        network.ChainID,
		SenderAddress:  acct.Address,
		MaxFee:         request.MaxFee,
		FinalityStatus: state.StatusReceived,
		Timestamp:      o.now().UnixMilli(),
	}); err != nil {
		// The deployment is already on chain; a lost record surfaces
		// with the hash attached.
		return deployResult.TransactionHash, fmt.Errorf("record deployment %s: %w", deployResult.TransactionHash, err)
	}
	return deployResult.TransactionHash, nil
}

// UpdateFeeToken re-prices a pending request after the user switched the
// fee token in the open confirmation, and persists the new fee fields.
func (o *Orchestrator) UpdateFeeToken(ctx context.Context, network state.Network, requestID string, token types.FeeToken) error {
	request, ok, err := o.requests.Get(requestID)
	if err != nil {
		return fmt.Errorf("load transaction request: %w", err)
	}
	if !ok {
		return fmt.Errorf("transaction request %s not found", requestID)
	}

	acct, ok, err := o.accounts.Get(request.ChainID, request.Signer)
	if err != nil {
		return fmt.Errorf("load signer account: %w", err)
	}
	if !ok {
		return fmt.Errorf("signer account %s not found", request.Signer)
	}

	estimate, err := o.estimator.Estimate(ctx, network, acct, request.Calls, token.Version())
	if err != nil {
		return fmt.Errorf("re-estimate fee: %w", err)
	}

	request.MaxFee = types.FeltFromUint256(estimate.SuggestedMaxFee)
	request.SelectedFeeToken = token
	request.ResourceBounds = []types.ResourceBounds{estimate.ResourceBounds}
	if err := o.requests.Upsert(request); err != nil {
		return fmt.Errorf("persist updated request: %w", err)
	}
	o.logger.Debug().Str("id", requestID).Str("feeToken", string(token)).
		Msg("Fee token updated on pending request")
	return nil
}

func requestBounds(request state.TransactionRequest) *types.ResourceBounds {
	if len(request.ResourceBounds) == 0 {
		return nil
	}
	bounds := request.ResourceBounds[0]
	return &bounds
}
