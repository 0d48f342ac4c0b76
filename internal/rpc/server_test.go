package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/holiman/uint256"

	"github.com/Consensys/starknet-snap-sub002/config"
	"github.com/Consensys/starknet-snap-sub002/internal/account"
	"github.com/Consensys/starknet-snap-sub002/internal/chain"
	"github.com/Consensys/starknet-snap-sub002/internal/keyring"
	"github.com/Consensys/starknet-snap-sub002/internal/state"
	"github.com/Consensys/starknet-snap-sub002/internal/storage"
	"github.com/Consensys/starknet-snap-sub002/internal/ui"
	"github.com/Consensys/starknet-snap-sub002/pkg/types"
)

var testCallParams = []map[string]interface{}{{
	"contractAddress": "0x49d3",
	"entrypoint":      "transfer",
	"calldata":        []string{"0xbeef", "0x64"},
}}

type fixture struct {
	server  *Server
	client  *chain.StubClient
	dialog  *ui.FakeDialog
	deriver keyring.Deriver
	network state.Network
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := state.NewStore(storage.NewMemory())

	networks := config.DefaultNetworks()
	if err := state.NewNetworkStore(store, networks[0]).AddDefaults(networks); err != nil {
		t.Fatalf("seed networks: %v", err)
	}
	preloaded := config.PreloadedTokens()
	if err := state.NewTokenStore(store, preloaded).AddDefaults(); err != nil {
		t.Fatalf("seed tokens: %v", err)
	}

	seed, err := keyring.SeedFromMnemonic(
		"legal winner thank year wave sausage worth useful legal winner thank year wave sausage worth useful legal winner thank year wave sausage worth title",
		"",
	)
	if err != nil {
		t.Fatalf("SeedFromMnemonic: %v", err)
	}
	deriver, err := keyring.NewBIP44Deriver(seed)
	if err != nil {
		t.Fatalf("NewBIP44Deriver: %v", err)
	}

	sepolia := networks[1]
	client := chain.NewStub(sepolia.ChainID)
	dialog := &ui.FakeDialog{Approve: true}

	server := New("127.0.0.1:0", Deps{
		Store:     store,
		Deriver:   deriver,
		Dialog:    dialog,
		Fallback:  networks[0],
		Clients:   map[string]chain.Client{sepolia.ChainID.PaddedHex(): client},
		Preloaded: preloaded,
		MaxScan:   5,
	})
	return &fixture{
		server:  server,
		client:  client,
		dialog:  dialog,
		deriver: deriver,
		network: sepolia,
	}
}

// call dispatches a request and returns the typed result.
func (f *fixture) call(t *testing.T, method string, params map[string]interface{}) (interface{}, *Error) {
	t.Helper()
	return f.server.dispatch(context.Background(), &Request{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      1,
	})
}

func (f *fixture) chainID() string {
	return f.network.ChainID.String()
}

// createAccount bootstraps account 0 and returns its result.
func (f *fixture) createAccount(t *testing.T) *AccountResult {
	t.Helper()
	result, werr := f.call(t, "wallet_createAccount", map[string]interface{}{"chainId": f.chainID()})
	if werr != nil {
		t.Fatalf("createAccount: %+v", werr)
	}
	acct, ok := result.(*AccountResult)
	if !ok {
		t.Fatalf("createAccount result = %T, want *AccountResult", result)
	}
	return acct
}

func (f *fixture) keyAt(t *testing.T, index uint32) keyring.KeyPair {
	t.Helper()
	kp, err := f.deriver.Derive(index)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	return kp
}

func TestDispatch_MethodNotFound(t *testing.T) {
	f := newFixture(t)
	_, werr := f.call(t, "wallet_unknownMethod", nil)
	if werr == nil || werr.Code != CodeMethodNotFound {
		t.Fatalf("error = %+v, want code %d", werr, CodeMethodNotFound)
	}
}

func TestDispatch_InvalidParamsNamesField(t *testing.T) {
	f := newFixture(t)
	_, werr := f.call(t, "wallet_estimateFee", map[string]interface{}{
		"chainId": f.chainID(),
		"calls":   testCallParams,
	})
	if werr == nil || werr.Code != CodeInvalidParams {
		t.Fatalf("error = %+v, want code %d", werr, CodeInvalidParams)
	}
	if !strings.Contains(werr.Message, "address") {
		t.Errorf("message %q does not name the violated field", werr.Message)
	}
}

func TestDispatch_UnknownNetworkAfterShapeCheck(t *testing.T) {
	f := newFixture(t)
	_, werr := f.call(t, "wallet_listAccounts", map[string]interface{}{"chainId": "0xdead"})
	if werr == nil || werr.Code != CodeNotFound {
		t.Fatalf("error = %+v, want code %d for unknown network", werr, CodeNotFound)
	}

	// A malformed chain id is a shape violation, not a lookup miss.
	_, werr = f.call(t, "wallet_listAccounts", map[string]interface{}{"chainId": "zzz"})
	if werr == nil || werr.Code != CodeInvalidParams {
		t.Fatalf("error = %+v, want code %d for malformed chain id", werr, CodeInvalidParams)
	}
}

func TestCreateAndListAccounts(t *testing.T) {
	f := newFixture(t)
	created := f.createAccount(t)

	if len(created.Address) != 2+types.FeltHexDigits {
		t.Errorf("address %q is not zero padded", created.Address)
	}
	if created.AddressIndex != 0 {
		t.Errorf("index = %d, want 0", created.AddressIndex)
	}
	if created.Name != "Account 1" {
		t.Errorf("name = %q, want default name", created.Name)
	}

	// Creating again is idempotent: same address, still one account.
	again := f.createAccount(t)
	if again.Address != created.Address {
		t.Errorf("second create moved the address: %s != %s", again.Address, created.Address)
	}

	result, werr := f.call(t, "wallet_listAccounts", map[string]interface{}{"chainId": f.chainID()})
	if werr != nil {
		t.Fatalf("listAccounts: %+v", werr)
	}
	list := result.([]*AccountResult)
	if len(list) != 1 {
		t.Fatalf("accounts = %d, want 1", len(list))
	}
}

func TestAddAccount_SequentialIndices(t *testing.T) {
	f := newFixture(t)
	f.createAccount(t)

	for want := uint32(1); want <= 2; want++ {
		result, werr := f.call(t, "wallet_addAccount", map[string]interface{}{"chainId": f.chainID()})
		if werr != nil {
			t.Fatalf("addAccount: %+v", werr)
		}
		acct := result.(*AccountResult)
		if acct.AddressIndex != want {
			t.Errorf("index = %d, want %d", acct.AddressIndex, want)
		}
	}
}

func TestSetAccountName(t *testing.T) {
	f := newFixture(t)
	created := f.createAccount(t)

	result, werr := f.call(t, "wallet_setAccountName", map[string]interface{}{
		"chainId":     f.chainID(),
		"address":     created.Address,
		"accountName": "Savings",
	})
	if werr != nil {
		t.Fatalf("setAccountName: %+v", werr)
	}
	if got := result.(*AccountResult).Name; got != "Savings" {
		t.Errorf("name = %q, want Savings", got)
	}
}

func TestSwitchNetwork_ConfirmAndReject(t *testing.T) {
	f := newFixture(t)

	result, werr := f.call(t, "wallet_switchNetwork", map[string]interface{}{"chainId": f.chainID()})
	if werr != nil {
		t.Fatalf("switchNetwork: %+v", werr)
	}
	if got := result.(*NetworkResult).ChainID; got != f.chainID() {
		t.Errorf("switched to %s, want %s", got, f.chainID())
	}

	current, werr := f.call(t, "wallet_getCurrentNetwork", nil)
	if werr != nil {
		t.Fatalf("getCurrentNetwork: %+v", werr)
	}
	if got := current.(*NetworkResult).ChainID; got != f.chainID() {
		t.Errorf("current = %s, want %s after switch", got, f.chainID())
	}

	// A rejected switch leaves the pointer alone.
	f.dialog.Approve = false
	_, werr = f.call(t, "wallet_switchNetwork", map[string]interface{}{
		"chainId": config.ChainIDMainnet.String(),
	})
	if werr == nil || werr.Code != CodeUserRejected {
		t.Fatalf("error = %+v, want code %d", werr, CodeUserRejected)
	}
	current, _ = f.call(t, "wallet_getCurrentNetwork", nil)
	if got := current.(*NetworkResult).ChainID; got != f.chainID() {
		t.Errorf("current = %s, rejection must not switch", got)
	}
}

func TestEstimateFee_UndeployedIncludesDeploy(t *testing.T) {
	f := newFixture(t)
	created := f.createAccount(t)

	result, werr := f.call(t, "wallet_estimateFee", map[string]interface{}{
		"chainId": f.chainID(),
		"address": created.Address,
		"calls":   testCallParams,
	})
	if werr != nil {
		t.Fatalf("estimateFee: %+v", werr)
	}
	est := result.(*EstimateFeeResult)
	if !est.IncludeDeploy {
		t.Error("undeployed account must price the implicit deployment")
	}
	if est.Unit != string(types.FeeTokenETH) {
		t.Errorf("unit = %s, want ETH for the default token", est.Unit)
	}
	if est.SuggestedMaxFee == "" || est.SuggestedMaxFee == "0" {
		t.Errorf("suggestedMaxFee = %q, want nonzero", est.SuggestedMaxFee)
	}
}

func TestExecuteTxn_DeployRequiredGate(t *testing.T) {
	f := newFixture(t)
	created := f.createAccount(t)

	// The legacy address of the same key holds funds, so the account must
	// be deployed through the remediation flow first.
	kp := f.keyAt(t, 0)
	legacyAddr, _ := account.NewCalculator(f.network).ComputeAddress(kp.PublicKey, state.VersionLegacy)
	f.client.SetBalance(legacyAddr, uint256.NewInt(1000))

	_, werr := f.call(t, "wallet_executeTxn", map[string]interface{}{
		"chainId": f.chainID(),
		"address": created.Address,
		"calls":   testCallParams,
	})
	if werr == nil || werr.Code != CodeDeployRequired {
		t.Fatalf("error = %+v, want code %d", werr, CodeDeployRequired)
	}
	if len(f.dialog.Alerts()) == 0 {
		t.Error("gate must surface an advisory alert")
	}
	if len(f.client.Invokes()) != 0 {
		t.Error("gated request must not reach the chain")
	}
}

func TestExecuteTxn_UpgradeRequiredGate(t *testing.T) {
	f := newFixture(t)
	created := f.createAccount(t)

	kp := f.keyAt(t, 0)
	legacyAddr, _ := account.NewCalculator(f.network).ComputeAddress(kp.PublicKey, state.VersionLegacy)
	f.client.SetDeployed(legacyAddr, "0.2.3", kp.PublicKey)

	_, werr := f.call(t, "wallet_executeTxn", map[string]interface{}{
		"chainId": f.chainID(),
		"address": created.Address,
		"calls":   testCallParams,
	})
	if werr == nil || werr.Code != CodeUpgradeRequired {
		t.Fatalf("error = %+v, want code %d", werr, CodeUpgradeRequired)
	}
}

func TestExecuteTxn_GateAlertFailureDoesNotMaskGate(t *testing.T) {
	f := newFixture(t)
	created := f.createAccount(t)
	f.dialog.AlertErr = context.DeadlineExceeded

	kp := f.keyAt(t, 0)
	legacyAddr, _ := account.NewCalculator(f.network).ComputeAddress(kp.PublicKey, state.VersionLegacy)
	f.client.SetBalance(legacyAddr, uint256.NewInt(1))

	_, werr := f.call(t, "wallet_executeTxn", map[string]interface{}{
		"chainId": f.chainID(),
		"address": created.Address,
		"calls":   testCallParams,
	})
	if werr == nil || werr.Code != CodeDeployRequired {
		t.Fatalf("error = %+v, want the gate code even when the alert fails", werr)
	}
}

func TestExecuteTxn_ApprovedEndToEnd(t *testing.T) {
	f := newFixture(t)

	// The account contract is already on chain before the wallet first
	// sees it; create picks the deploy flag up from there.
	kp := f.keyAt(t, 0)
	addr, _ := account.NewCalculator(f.network).ComputeAddress(kp.PublicKey, state.VersionCurrent)
	f.client.SetDeployed(addr, "1.0.0", kp.PublicKey)
	created := f.createAccount(t)
	if !created.Deployed {
		t.Fatal("create must pick up the on-chain deployment")
	}

	result, werr := f.call(t, "wallet_executeTxn", map[string]interface{}{
		"chainId": f.chainID(),
		"address": created.Address,
		"calls":   testCallParams,
	})
	if werr != nil {
		t.Fatalf("executeTxn: %+v", werr)
	}
	out := result.(*ExecuteTxnResult)
	if out.TransactionHash == "" {
		t.Error("missing transaction hash")
	}
	if out.DeployHash != "" {
		t.Error("deployed account must not carry a deploy hash")
	}

	// The record shows up in the transaction listing.
	listed, werr := f.call(t, "wallet_listTransactions", map[string]interface{}{"chainId": f.chainID()})
	if werr != nil {
		t.Fatalf("listTransactions: %+v", werr)
	}
	records := listed.([]*TransactionResult)
	if len(records) != 1 || records[0].TxnHash != out.TransactionHash {
		t.Errorf("records = %+v, want the submitted invoke", records)
	}
}

func TestSwitchAccount_BypassesGateAndPersists(t *testing.T) {
	f := newFixture(t)

	// Index 1 was never persisted; the resolver must discover it by scan.
	kp := f.keyAt(t, 1)
	addr, _ := account.NewCalculator(f.network).ComputeAddress(kp.PublicKey, state.VersionCurrent)

	// The same key's legacy address is gate-worthy, but switch bypasses.
	legacyAddr, _ := account.NewCalculator(f.network).ComputeAddress(kp.PublicKey, state.VersionLegacy)
	f.client.SetBalance(legacyAddr, uint256.NewInt(500))

	result, werr := f.call(t, "wallet_switchAccount", map[string]interface{}{
		"chainId": f.chainID(),
		"address": addr.String(),
	})
	if werr != nil {
		t.Fatalf("switchAccount: %+v", werr)
	}
	acct := result.(*AccountResult)
	if acct.AddressIndex != 1 {
		t.Errorf("index = %d, want 1 from the scan", acct.AddressIndex)
	}

	// The discovered account is now in the store.
	listed, _ := f.call(t, "wallet_listAccounts", map[string]interface{}{"chainId": f.chainID()})
	if got := len(listed.([]*AccountResult)); got != 1 {
		t.Errorf("accounts = %d, want the materialized discovery", got)
	}
}

func TestGateCoversAccountOperations(t *testing.T) {
	f := newFixture(t)
	created := f.createAccount(t)

	// Funds on the legacy address make the account NEEDS_DEPLOY; every
	// account-keyed operation except switch must refuse to run.
	kp := f.keyAt(t, 0)
	legacyAddr, _ := account.NewCalculator(f.network).ComputeAddress(kp.PublicKey, state.VersionLegacy)
	f.client.SetBalance(legacyAddr, uint256.NewInt(1000))

	cases := []struct {
		method string
		extra  map[string]interface{}
	}{
		{"wallet_executeTxn", map[string]interface{}{"calls": testCallParams}},
		{"wallet_estimateFee", map[string]interface{}{"calls": testCallParams}},
		{"wallet_signMessage", map[string]interface{}{"message": []string{"0x1"}}},
		{"wallet_signTransaction", map[string]interface{}{"calls": testCallParams}},
		{"wallet_signDeclareTransaction", map[string]interface{}{"classHash": "0xabc"}},
		{"wallet_displayPrivateKey", nil},
		{"wallet_verifySignature", map[string]interface{}{
			"message":   []string{"0x1"},
			"signature": map[string]string{"r": "0x1", "s": "0x1"},
		}},
		{"wallet_setAccountName", map[string]interface{}{"accountName": "Blocked"}},
		{"wallet_getDeploymentData", nil},
	}
	for _, tc := range cases {
		t.Run(tc.method, func(t *testing.T) {
			params := map[string]interface{}{
				"chainId": f.chainID(),
				"address": created.Address,
			}
			for k, v := range tc.extra {
				params[k] = v
			}
			_, werr := f.call(t, tc.method, params)
			if werr == nil || werr.Code != CodeDeployRequired {
				t.Fatalf("error = %+v, want code %d", werr, CodeDeployRequired)
			}
		})
	}
	if got := len(f.client.Invokes()); got != 0 {
		t.Errorf("invokes = %d, want none past the gate", got)
	}
}

func TestGetCurrentAccount_FollowsSwitch(t *testing.T) {
	f := newFixture(t)
	first := f.createAccount(t)

	// Without a pointer the first visible account is current.
	result, werr := f.call(t, "wallet_getCurrentAccount", map[string]interface{}{"chainId": f.chainID()})
	if werr != nil {
		t.Fatalf("getCurrentAccount: %+v", werr)
	}
	if got := result.(*AccountResult); got.Address != first.Address {
		t.Errorf("current = %s, want the bootstrap account %s", got.Address, first.Address)
	}

	added, werr := f.call(t, "wallet_addAccount", map[string]interface{}{"chainId": f.chainID()})
	if werr != nil {
		t.Fatalf("addAccount: %+v", werr)
	}
	second := added.(*AccountResult)

	if _, werr := f.call(t, "wallet_switchAccount", map[string]interface{}{
		"chainId": f.chainID(),
		"address": second.Address,
	}); werr != nil {
		t.Fatalf("switchAccount: %+v", werr)
	}

	result, werr = f.call(t, "wallet_getCurrentAccount", map[string]interface{}{"chainId": f.chainID()})
	if werr != nil {
		t.Fatalf("getCurrentAccount: %+v", werr)
	}
	got := result.(*AccountResult)
	if got.Address != second.Address || got.AddressIndex != 1 {
		t.Errorf("current = %s (index %d), want the switched-to account", got.Address, got.AddressIndex)
	}
}

func TestGetCurrentAccount_BootstrapsEmptyChain(t *testing.T) {
	f := newFixture(t)
	result, werr := f.call(t, "wallet_getCurrentAccount", map[string]interface{}{"chainId": f.chainID()})
	if werr != nil {
		t.Fatalf("getCurrentAccount: %+v", werr)
	}
	got := result.(*AccountResult)
	if got.AddressIndex != 0 {
		t.Errorf("index = %d, want the index-0 bootstrap", got.AddressIndex)
	}

	listed, _ := f.call(t, "wallet_listAccounts", map[string]interface{}{"chainId": f.chainID()})
	if n := len(listed.([]*AccountResult)); n != 1 {
		t.Errorf("accounts = %d, want the bootstrapped account persisted", n)
	}
}

func TestResolve_OutOfScanBound(t *testing.T) {
	f := newFixture(t)
	_, werr := f.call(t, "wallet_displayPrivateKey", map[string]interface{}{
		"chainId": f.chainID(),
		"address": "0x123456",
	})
	if werr == nil || werr.Code != CodeNotFound {
		t.Fatalf("error = %+v, want code %d for unresolvable address", werr, CodeNotFound)
	}
}

func TestSignMessage_AndVerify(t *testing.T) {
	f := newFixture(t)
	created := f.createAccount(t)
	message := []string{"0x1", "0x2", "0x3"}

	result, werr := f.call(t, "wallet_signMessage", map[string]interface{}{
		"chainId": f.chainID(),
		"address": created.Address,
		"message": message,
	})
	if werr != nil {
		t.Fatalf("signMessage: %+v", werr)
	}
	sig := result.(keyring.Signature)
	if sig.R == "" || sig.S == "" {
		t.Fatalf("signature = %+v, want both halves", sig)
	}
	// No authorization was requested, so no dialog was rendered.
	if len(f.dialog.Confirms()) != 0 {
		t.Error("signMessage without enableAuthorize must not prompt")
	}

	verified, werr := f.call(t, "wallet_verifySignature", map[string]interface{}{
		"chainId":   f.chainID(),
		"address":   created.Address,
		"message":   message,
		"signature": map[string]string{"r": sig.R, "s": sig.S},
	})
	if werr != nil {
		t.Fatalf("verifySignature: %+v", werr)
	}
	if verified != true {
		t.Error("signature must verify against its own signer")
	}

	// A different message fails verification.
	verified, werr = f.call(t, "wallet_verifySignature", map[string]interface{}{
		"chainId":   f.chainID(),
		"address":   created.Address,
		"message":   []string{"0x9"},
		"signature": map[string]string{"r": sig.R, "s": sig.S},
	})
	if werr != nil {
		t.Fatalf("verifySignature: %+v", werr)
	}
	if verified != false {
		t.Error("signature over a different message must not verify")
	}
}

func TestSignMessage_AuthorizeRejected(t *testing.T) {
	f := newFixture(t)
	created := f.createAccount(t)
	f.dialog.Approve = false

	_, werr := f.call(t, "wallet_signMessage", map[string]interface{}{
		"chainId":         f.chainID(),
		"address":         created.Address,
		"message":         []string{"0x1"},
		"enableAuthorize": true,
	})
	if werr == nil || werr.Code != CodeUserRejected {
		t.Fatalf("error = %+v, want code %d", werr, CodeUserRejected)
	}
}

func TestSignTransaction_DistinctFromMessageHash(t *testing.T) {
	f := newFixture(t)
	created := f.createAccount(t)

	txnSig, werr := f.call(t, "wallet_signTransaction", map[string]interface{}{
		"chainId": f.chainID(),
		"address": created.Address,
		"calls":   testCallParams,
	})
	if werr != nil {
		t.Fatalf("signTransaction: %+v", werr)
	}
	declSig, werr := f.call(t, "wallet_signDeclareTransaction", map[string]interface{}{
		"chainId":   f.chainID(),
		"address":   created.Address,
		"classHash": "0xabc",
	})
	if werr != nil {
		t.Fatalf("signDeclareTransaction: %+v", werr)
	}
	if txnSig.(keyring.Signature) == declSig.(keyring.Signature) {
		t.Error("transaction and declare payloads must hash differently")
	}
}

func TestDisplayPrivateKey_ShownInDialogOnly(t *testing.T) {
	f := newFixture(t)
	created := f.createAccount(t)

	result, werr := f.call(t, "wallet_displayPrivateKey", map[string]interface{}{
		"chainId": f.chainID(),
		"address": created.Address,
	})
	if werr != nil {
		t.Fatalf("displayPrivateKey: %+v", werr)
	}
	if result != true {
		t.Errorf("result = %v, want acknowledgment only", result)
	}
	alerts := f.dialog.Alerts()
	if len(alerts) != 1 {
		t.Fatalf("alerts = %d, want the key reveal", len(alerts))
	}
	kp := f.keyAt(t, 0)
	found := false
	for _, row := range alerts[0].Rows {
		if row.Value == kp.PrivateKeyHex() {
			found = true
		}
	}
	if !found {
		t.Error("alert does not carry the private key")
	}
}

func TestWatchAsset_PreloadedShadowRejected(t *testing.T) {
	f := newFixture(t)

	ethAddr := config.PreloadedTokens()[0].Address
	_, werr := f.call(t, "wallet_watchAsset", map[string]interface{}{
		"chainId":       f.chainID(),
		"tokenAddress":  ethAddr.String(),
		"tokenName":     "Fake Ether",
		"tokenSymbol":   "ETH",
		"tokenDecimals": 18,
	})
	if werr == nil || werr.Code != CodeInvalidParams {
		t.Fatalf("error = %+v, want code %d for preloaded shadow", werr, CodeInvalidParams)
	}

	result, werr := f.call(t, "wallet_watchAsset", map[string]interface{}{
		"chainId":       f.chainID(),
		"tokenAddress":  "0x777",
		"tokenName":     "Mock",
		"tokenSymbol":   "MCK",
		"tokenDecimals": 8,
	})
	if werr != nil {
		t.Fatalf("watchAsset: %+v", werr)
	}
	if result != true {
		t.Errorf("result = %v, want true", result)
	}
}

func TestGetDeploymentData(t *testing.T) {
	f := newFixture(t)
	created := f.createAccount(t)

	result, werr := f.call(t, "wallet_getDeploymentData", map[string]interface{}{
		"chainId": f.chainID(),
		"address": created.Address,
	})
	if werr != nil {
		t.Fatalf("getDeploymentData: %+v", werr)
	}
	data := result.(*DeploymentDataResult)
	if data.Address != created.Address {
		t.Errorf("address = %s, want %s", data.Address, created.Address)
	}
	if len(data.Calldata) != 2 {
		t.Errorf("calldata = %v, want [publicKey, 0]", data.Calldata)
	}

	// Once deployed the payload is refused.
	kp := f.keyAt(t, 0)
	f.client.SetDeployed(types.MustFelt(created.Address), "1.0.0", kp.PublicKey)
	f.createAccount(t) // refresh the stored deploy flag
	_, werr = f.call(t, "wallet_getDeploymentData", map[string]interface{}{
		"chainId": f.chainID(),
		"address": created.Address,
	})
	if werr == nil || werr.Code != CodeInvalidRequest {
		t.Fatalf("error = %+v, want code %d for a deployed account", werr, CodeInvalidRequest)
	}
}

func TestGetTransactionStatus(t *testing.T) {
	f := newFixture(t)
	hash := types.MustFelt("0xfeed")
	f.client.SetStatus(hash, chain.TxnStatus{
		FinalityStatus:  "ACCEPTED_ON_L2",
		ExecutionStatus: "SUCCEEDED",
	})

	result, werr := f.call(t, "wallet_getTransactionStatus", map[string]interface{}{
		"chainId":         f.chainID(),
		"transactionHash": hash.String(),
	})
	if werr != nil {
		t.Fatalf("getTransactionStatus: %+v", werr)
	}
	status := result.(*TransactionStatusResult)
	if status.FinalityStatus != "ACCEPTED_ON_L2" || status.ExecutionStatus != "SUCCEEDED" {
		t.Errorf("status = %+v", status)
	}
}

func TestServer_HTTPRoundTrip(t *testing.T) {
	f := newFixture(t)
	if err := f.server.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer f.server.Stop()

	body, _ := json.Marshal(Request{
		JSONRPC: "2.0",
		Method:  "wallet_getCurrentNetwork",
		ID:      7,
	})
	resp, err := http.Post("http://"+f.server.Addr(), "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	defer resp.Body.Close()

	var decoded Response
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Error != nil {
		t.Fatalf("error = %+v", decoded.Error)
	}
	network, ok := decoded.Result.(map[string]interface{})
	if !ok || network["chainId"] == "" {
		t.Fatalf("result = %+v, want the fallback network", decoded.Result)
	}
}
