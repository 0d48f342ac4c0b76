package fee

import (
	"context"
	"testing"

	"github.com/holiman/uint256"

	"github.com/Consensys/starknet-snap-sub002/internal/chain"
	"github.com/Consensys/starknet-snap-sub002/internal/state"
	"github.com/Consensys/starknet-snap-sub002/pkg/types"
)

var testNetwork = state.Network{
	Name:            "Sepolia",
	ChainID:         types.MustFelt("0x534e5f5345504f4c4941"),
	SupportsDataGas: true,
}

var testCalls = []types.Call{{
	ContractAddress: types.MustFelt("0x49d3"),
	Entrypoint:      "transfer",
	Calldata:        []types.Felt{types.MustFelt("0xbeef"), types.NewFelt(100)},
}}

func TestEstimator_DeployedAccountSingleItem(t *testing.T) {
	client := chain.NewStub(testNetwork.ChainID)
	client.SetFlatFee(uint256.NewInt(500), types.FeeTokenETH)

	acct := state.Account{
		Address:   types.MustFelt("0xaaa"),
		PublicKey: types.MustFelt("0x111"),
		ChainID:   testNetwork.ChainID,
		Deployed:  true,
	}
	client.SetDeployed(acct.Address, "1.0.0", acct.PublicKey)

	est, err := NewEstimator(client).Estimate(
		context.Background(), testNetwork, acct, testCalls, types.TxnVersionV1)
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if est.IncludeDeploy {
		t.Error("deployed account must not include a deploy estimate")
	}
	if len(est.Results) != 1 {
		t.Fatalf("results = %d, want 1", len(est.Results))
	}
	if est.OverallFee.Uint64() != 500 {
		t.Errorf("OverallFee = %s, want 500", est.OverallFee.Dec())
	}
	if est.Unit != types.FeeTokenETH {
		t.Errorf("Unit = %s, want ETH for V1", est.Unit)
	}
}

func TestEstimator_UndeployedAccountPrependsDeploy(t *testing.T) {
	client := chain.NewStub(testNetwork.ChainID)
	client.SetFlatFee(uint256.NewInt(500), types.FeeTokenSTRK)

	acct := state.Account{
		Address:   types.MustFelt("0xaaa"),
		PublicKey: types.MustFelt("0x111"),
		ChainID:   testNetwork.ChainID,
		Deployed:  false,
	}

	est, err := NewEstimator(client).Estimate(
		context.Background(), testNetwork, acct, testCalls, types.TxnVersionV3)
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if !est.IncludeDeploy {
		t.Error("undeployed account must include a deploy estimate")
	}
	if len(est.Results) != 2 {
		t.Fatalf("results = %d, want deploy + invoke", len(est.Results))
	}
	// Exactly one synthetic deploy: both per-item fees summed.
	if est.OverallFee.Uint64() != 1000 {
		t.Errorf("OverallFee = %s, want exact sum 1000", est.OverallFee.Dec())
	}
	if est.Unit != types.FeeTokenSTRK {
		t.Errorf("Unit = %s, want STRK for V3", est.Unit)
	}
}

func TestEstimator_StripsDataGasWhenUnsupported(t *testing.T) {
	client := chain.NewStub(testNetwork.ChainID)
	noDataGas := testNetwork
	noDataGas.SupportsDataGas = false

	acct := state.Account{
		Address:   types.MustFelt("0xaaa"),
		PublicKey: types.MustFelt("0x111"),
		ChainID:   noDataGas.ChainID,
		Deployed:  true,
	}
	client.SetDeployed(acct.Address, "1.0.0", acct.PublicKey)

	est, err := NewEstimator(client).Estimate(
		context.Background(), noDataGas, acct, testCalls, types.TxnVersionV3)
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if est.ResourceBounds.L1DataGas != nil {
		t.Error("data gas dimension must be stripped on unsupporting networks")
	}

	est, err = NewEstimator(client).Estimate(
		context.Background(), testNetwork, acct, testCalls, types.TxnVersionV3)
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if est.ResourceBounds.L1DataGas == nil {
		t.Error("data gas dimension must survive on supporting networks")
	}
}

func TestConsolidate_SumsBounds(t *testing.T) {
	results := []chain.FeeEstimate{
		{
			OverallFee:      uint256.NewInt(100),
			SuggestedMaxFee: uint256.NewInt(150),
			ResourceBounds: types.ResourceBounds{
				L1Gas:     types.Bounds{MaxAmount: types.NewFelt(10), MaxPricePerUnit: types.NewFelt(5)},
				L1DataGas: &types.Bounds{MaxAmount: types.NewFelt(1), MaxPricePerUnit: types.NewFelt(2)},
			},
		},
		{
			OverallFee:      uint256.NewInt(200),
			SuggestedMaxFee: uint256.NewInt(300),
			ResourceBounds: types.ResourceBounds{
				L1Gas: types.Bounds{MaxAmount: types.NewFelt(30), MaxPricePerUnit: types.NewFelt(7)},
			},
		},
	}

	est := Consolidate(results)
	if est.OverallFee.Uint64() != 300 || est.SuggestedMaxFee.Uint64() != 450 {
		t.Errorf("sums = %s/%s, want 300/450", est.OverallFee.Dec(), est.SuggestedMaxFee.Dec())
	}
	if est.ResourceBounds.L1Gas.MaxAmount.Uint64() != 40 {
		t.Errorf("L1Gas.MaxAmount = %s, want 40", est.ResourceBounds.L1Gas.MaxAmount)
	}
	if est.ResourceBounds.L1DataGas == nil || est.ResourceBounds.L1DataGas.MaxAmount.Uint64() != 1 {
		t.Error("one-sided data gas dimension must survive consolidation")
	}
}
