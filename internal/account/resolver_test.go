package account

import (
	"context"
	"errors"
	"testing"

	"github.com/holiman/uint256"

	"github.com/Consensys/starknet-snap-sub002/internal/chain"
	"github.com/Consensys/starknet-snap-sub002/internal/keyring"
	"github.com/Consensys/starknet-snap-sub002/internal/state"
	"github.com/Consensys/starknet-snap-sub002/internal/storage"
	"github.com/Consensys/starknet-snap-sub002/pkg/types"
)

var testNetwork = state.Network{
	Name:    "Sepolia",
	ChainID: types.MustFelt("0x534e5f5345504f4c4941"),
}

func testDeriver(t *testing.T) keyring.Deriver {
	t.Helper()
	seed, err := keyring.SeedFromMnemonic(
		"legal winner thank year wave sausage worth useful legal winner thank year wave sausage worth useful legal winner thank year wave sausage worth title",
		"",
	)
	if err != nil {
		t.Fatalf("SeedFromMnemonic: %v", err)
	}
	d, err := keyring.NewBIP44Deriver(seed)
	if err != nil {
		t.Fatalf("NewBIP44Deriver: %v", err)
	}
	return d
}

func testAccounts(t *testing.T) *state.AccountStore {
	t.Helper()
	return state.NewAccountStore(state.NewStore(storage.NewMemory()))
}

func TestCalculator_AddressDistinctPerVersion(t *testing.T) {
	calc := NewCalculator(testNetwork)
	pub := types.MustFelt("0x1234")

	current, currentData := calc.ComputeAddress(pub, state.VersionCurrent)
	legacy, legacyData := calc.ComputeAddress(pub, state.VersionLegacy)

	if current.Equal(legacy) {
		t.Error("current and legacy generations must not share an address")
	}
	if len(currentData) != 2 || !currentData[0].Equal(pub) || !currentData[1].IsZero() {
		t.Errorf("current calldata = %v, want [publicKey, 0]", currentData)
	}
	if len(legacyData) != 5 || !legacyData[0].Equal(ClassHashLegacy) || !legacyData[3].Equal(pub) {
		t.Errorf("legacy calldata = %v, want proxy initializer shape", legacyData)
	}

	// Same key, same generation, same address.
	again, _ := calc.ComputeAddress(pub, state.VersionCurrent)
	if !again.Equal(current) {
		t.Error("address computation not deterministic")
	}
}

func TestCalculator_NetworkClassHashOverride(t *testing.T) {
	override := testNetwork
	override.AccountClassHash = types.MustFelt("0x999")

	pub := types.MustFelt("0x1234")
	a, _ := NewCalculator(testNetwork).ComputeAddress(pub, state.VersionCurrent)
	b, _ := NewCalculator(override).ComputeAddress(pub, state.VersionCurrent)
	if a.Equal(b) {
		t.Error("class hash override must change the address")
	}
}

func TestResolver_StoreLookupFirst(t *testing.T) {
	deriver := testDeriver(t)
	accounts := testAccounts(t)
	resolver := NewResolver(accounts, deriver, 0)

	kp, _ := deriver.Derive(3)
	addr := types.MustFelt("0xabc123")
	if err := accounts.Upsert(state.Account{
		Address:        addr,
		PublicKey:      kp.PublicKey,
		Index:          3,
		DerivationPath: kp.DerivationPath,
		ChainID:        testNetwork.ChainID,
	}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, gotKP, err := resolver.Resolve(context.Background(), testNetwork, addr)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Index != 3 || !gotKP.PublicKey.Equal(kp.PublicKey) {
		t.Errorf("resolved index %d key %s, want stored account", got.Index, gotKP.PublicKey)
	}
}

func TestResolver_ScanBothVersions(t *testing.T) {
	deriver := testDeriver(t)
	resolver := NewResolver(testAccounts(t), deriver, 0)
	calc := NewCalculator(testNetwork)

	kp, _ := deriver.Derive(5)
	for _, version := range []state.ContractVersion{state.VersionCurrent, state.VersionLegacy} {
		addr, _ := calc.ComputeAddress(kp.PublicKey, version)
		got, _, err := resolver.Resolve(context.Background(), testNetwork, addr)
		if err != nil {
			t.Fatalf("Resolve(%s): %v", version, err)
		}
		if got.Index != 5 || got.ContractVersion != version {
			t.Errorf("Resolve(%s): index=%d version=%s", version, got.Index, got.ContractVersion)
		}
	}
}

func TestResolver_ScanBoundExhausted(t *testing.T) {
	deriver := testDeriver(t)
	resolver := NewResolver(testAccounts(t), deriver, 2)
	calc := NewCalculator(testNetwork)

	// Index 5 is outside a scan bound of 2.
	kp, _ := deriver.Derive(5)
	addr, _ := calc.ComputeAddress(kp.PublicKey, state.VersionCurrent)

	_, _, err := resolver.Resolve(context.Background(), testNetwork, addr)
	if !errors.Is(err, ErrAddressNotFound) {
		t.Fatalf("Resolve = %v, want ErrAddressNotFound", err)
	}
}

func TestResolver_NextIndex(t *testing.T) {
	deriver := testDeriver(t)
	accounts := testAccounts(t)
	resolver := NewResolver(accounts, deriver, 0)

	// Empty store starts at 0.
	idx, err := resolver.NextIndex(testNetwork.ChainID)
	if err != nil {
		t.Fatalf("NextIndex: %v", err)
	}
	if idx != 0 {
		t.Errorf("NextIndex = %d, want 0", idx)
	}

	// Two materialized accounts and one placeholder with no key at index 2.
	for i := uint32(0); i < 2; i++ {
		kp, _ := deriver.Derive(i)
		if err := accounts.Upsert(state.Account{
			Address:        types.NewFelt(uint64(i + 1)),
			PublicKey:      kp.PublicKey,
			Index:          i,
			DerivationPath: kp.DerivationPath,
			ChainID:        testNetwork.ChainID,
		}); err != nil {
			t.Fatalf("Upsert: %v", err)
		}
	}
	if err := accounts.Upsert(state.Account{
		Address:        types.NewFelt(99),
		Index:          2,
		DerivationPath: deriver.Path() + "/2",
		ChainID:        testNetwork.ChainID,
	}); err != nil {
		t.Fatalf("Upsert placeholder: %v", err)
	}

	idx, err = resolver.NextIndex(testNetwork.ChainID)
	if err != nil {
		t.Fatalf("NextIndex: %v", err)
	}
	if idx != 2 {
		t.Errorf("NextIndex = %d, want placeholder index 2", idx)
	}
}

func TestEligibility_RequiresDeploy(t *testing.T) {
	deriver := testDeriver(t)
	kp, _ := deriver.Derive(0)
	calc := NewCalculator(testNetwork)
	currentAddr, _ := calc.ComputeAddress(kp.PublicKey, state.VersionCurrent)
	legacyAddr, _ := calc.ComputeAddress(kp.PublicKey, state.VersionLegacy)
	feeToken := types.MustFelt("0x49d3")

	tests := []struct {
		name  string
		setup func(*chain.StubClient)
		want  bool
	}{
		{
			name:  "nothing deployed, no funds",
			setup: func(c *chain.StubClient) {},
			want:  false,
		},
		{
			name: "nothing deployed, legacy address funded",
			setup: func(c *chain.StubClient) {
				c.SetBalance(legacyAddr, uint256.NewInt(1000))
			},
			want: true,
		},
		{
			name: "current generation already deployed",
			setup: func(c *chain.StubClient) {
				c.SetDeployed(currentAddr, "1.0.0", kp.PublicKey)
				c.SetBalance(legacyAddr, uint256.NewInt(1000))
			},
			want: false,
		},
		{
			name: "legacy generation deployed",
			setup: func(c *chain.StubClient) {
				c.SetDeployed(legacyAddr, "0.3.1", kp.PublicKey)
				c.SetBalance(legacyAddr, uint256.NewInt(1000))
			},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := chain.NewStub(testNetwork.ChainID)
			tt.setup(client)
			got, err := NewEligibility(client).RequiresDeploy(
				context.Background(), testNetwork, feeToken, kp.PublicKey)
			if err != nil {
				t.Fatalf("RequiresDeploy: %v", err)
			}
			if got != tt.want {
				t.Errorf("RequiresDeploy = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEligibility_RequiresUpgrade(t *testing.T) {
	deriver := testDeriver(t)
	kp, _ := deriver.Derive(0)
	calc := NewCalculator(testNetwork)
	legacyAddr, _ := calc.ComputeAddress(kp.PublicKey, state.VersionLegacy)

	tests := []struct {
		name    string
		version string
		deploy  bool
		want    bool
	}{
		{name: "not deployed", deploy: false, want: false},
		{name: "old version", deploy: true, version: "0.2.3", want: true},
		{name: "minimum version", deploy: true, version: "0.3.0", want: false},
		{name: "newer version", deploy: true, version: "0.3.1", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := chain.NewStub(testNetwork.ChainID)
			if tt.deploy {
				client.SetDeployed(legacyAddr, tt.version, kp.PublicKey)
			}
			got, err := NewEligibility(client).RequiresUpgrade(
				context.Background(), testNetwork, kp.PublicKey)
			if err != nil {
				t.Fatalf("RequiresUpgrade: %v", err)
			}
			if got != tt.want {
				t.Errorf("RequiresUpgrade = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVersionBelow_Malformed(t *testing.T) {
	if _, err := versionBelow("not-a-version", minContractVersion); err == nil {
		t.Error("expected error for malformed version")
	}
}
