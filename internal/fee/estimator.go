// Package fee prices transactions, including the implicit account
// deployment a first transaction may carry.
package fee

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/rs/zerolog"

	"github.com/Consensys/starknet-snap-sub002/internal/account"
	"github.com/Consensys/starknet-snap-sub002/internal/chain"
	klog "github.com/Consensys/starknet-snap-sub002/internal/log"
	"github.com/Consensys/starknet-snap-sub002/internal/state"
	"github.com/Consensys/starknet-snap-sub002/pkg/types"
)

// Estimate is the priced result for one transaction batch.
type Estimate struct {
	OverallFee      *uint256.Int
	SuggestedMaxFee *uint256.Int
	Unit            types.FeeToken
	IncludeDeploy   bool
	Results         []chain.FeeEstimate
	ResourceBounds  types.ResourceBounds
}

// Estimator prices call batches against a node client.
type Estimator struct {
	client chain.Client
	logger zerolog.Logger
}

// NewEstimator creates an estimator over the given node client.
func NewEstimator(client chain.Client) *Estimator {
	return &Estimator{client: client, logger: klog.WithComponent("fee")}
}

// Estimate prices the calls for the given account. An undeployed account
// gets a synthetic deployment estimate prepended, so the total covers the
// deploy-then-invoke sequence the orchestrator will submit. Estimation
// errors propagate unchanged; there is no retry.
func (e *Estimator) Estimate(ctx context.Context, network state.Network, acct state.Account, calls []types.Call, version types.TxnVersion) (Estimate, error) {
	includeDeploy := !acct.Deployed

	items := make([]chain.EstimateItem, 0, 2)
	nonce := types.NewFelt(0)
	if includeDeploy {
		deployment := account.NewCalculator(network).Deployment(acct.PublicKey)
		items = append(items, chain.EstimateItem{
			Type: chain.EstimateDeployAccount,
			Deploy: &chain.DeployAccountRequest{
				ClassHash:           deployment.ClassHash,
				ContractAddressSalt: deployment.Salt,
				ConstructorCalldata: deployment.ConstructorCalldata,
				Version:             version,
			},
		})
		// The invoke executes right after the deployment.
		nonce = types.NewFelt(1)
	} else {
		current, err := e.client.Nonce(ctx, acct.Address)
		if err != nil {
			return Estimate{}, err
		}
		nonce = current
	}
	items = append(items, chain.EstimateItem{
		Type: chain.EstimateInvoke,
		Invoke: &chain.InvokeRequest{
			SenderAddress: acct.Address,
			Calls:         calls,
			Version:       version,
			Nonce:         nonce,
		},
	})

	results, err := e.client.EstimateFeeBulk(ctx, acct.Address, items)
	if err != nil {
		return Estimate{}, err
	}
	if len(results) != len(items) {
		return Estimate{}, fmt.Errorf("estimate count mismatch: %d results for %d items", len(results), len(items))
	}

	est := Consolidate(results)
	est.IncludeDeploy = includeDeploy
	est.Unit = types.UnitForVersion(version)
	if !network.SupportsDataGas {
		est.ResourceBounds = est.ResourceBounds.WithoutDataGas()
	}
	e.logger.Debug().Str("unit", string(est.Unit)).Bool("includeDeploy", includeDeploy).
		Str("overallFee", est.OverallFee.Dec()).Msg("Fee estimated")
	return est, nil
}

// Consolidate sums per-item fees and per-dimension resource bounds into a
// single combined estimate. Sums are exact unsigned arithmetic.
func Consolidate(results []chain.FeeEstimate) Estimate {
	overall := new(uint256.Int)
	suggested := new(uint256.Int)
	var bounds types.ResourceBounds
	for _, r := range results {
		if r.OverallFee != nil {
			overall.Add(overall, r.OverallFee)
		}
		if r.SuggestedMaxFee != nil {
			suggested.Add(suggested, r.SuggestedMaxFee)
		}
		bounds = bounds.Add(r.ResourceBounds)
	}
	return Estimate{
		OverallFee:      overall,
		SuggestedMaxFee: suggested,
		Results:         append([]chain.FeeEstimate(nil), results...),
		ResourceBounds:  bounds,
	}
}
