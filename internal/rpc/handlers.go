package rpc

import (
	"fmt"

	"github.com/Consensys/starknet-snap-sub002/internal/account"
	"github.com/Consensys/starknet-snap-sub002/internal/fee"
	"github.com/Consensys/starknet-snap-sub002/internal/keyring"
	"github.com/Consensys/starknet-snap-sub002/internal/state"
	"github.com/Consensys/starknet-snap-sub002/internal/txn"
	"github.com/Consensys/starknet-snap-sub002/internal/ui"
	"github.com/Consensys/starknet-snap-sub002/pkg/types"
)

// operation pairs a fresh params instance with the assembled pipeline for
// one method. The params instance is per-request; pipelines are stateless.
type operation struct {
	params   Params
	pipeline pipeline
}

// operation returns the operation for a method name. A fresh params struct
// is built per call so concurrent requests never share decode targets.
func (s *Server) operation(method string) (operation, bool) {
	switch method {
	case "wallet_createAccount":
		return operation{&CreateAccountParams{}, newPipeline(pipelineOpts{}, handleCreateAccount)}, true
	case "wallet_addAccount":
		return operation{&AddAccountParams{}, newPipeline(pipelineOpts{}, handleAddAccount)}, true
	case "wallet_switchAccount":
		return operation{&AddressParams{}, newPipeline(pipelineOpts{resolveAccount: true, gate: true, bypassGate: true}, handleSwitchAccount)}, true
	case "wallet_listAccounts":
		return operation{&ListAccountsParams{}, newPipeline(pipelineOpts{}, handleListAccounts)}, true
	case "wallet_getCurrentAccount":
		return operation{&GetCurrentAccountParams{}, newPipeline(pipelineOpts{}, handleGetCurrentAccount)}, true
	case "wallet_switchNetwork":
		return operation{&SwitchNetworkParams{}, newPipeline(pipelineOpts{}, handleSwitchNetwork)}, true
	case "wallet_getCurrentNetwork":
		return operation{&GetCurrentNetworkParams{}, newPipeline(pipelineOpts{}, handleGetCurrentNetwork)}, true
	case "wallet_estimateFee":
		return operation{&EstimateFeeParams{}, newPipeline(pipelineOpts{resolveAccount: true, gate: true}, handleEstimateFee)}, true
	case "wallet_executeTxn":
		return operation{&ExecuteTxnParams{}, newPipeline(pipelineOpts{resolveAccount: true, gate: true}, handleExecuteTxn)}, true
	case "wallet_signMessage":
		return operation{&SignMessageParams{}, newPipeline(pipelineOpts{resolveAccount: true, gate: true}, handleSignMessage)}, true
	case "wallet_signTransaction":
		return operation{&SignTransactionParams{}, newPipeline(pipelineOpts{resolveAccount: true, gate: true}, handleSignTransaction)}, true
	case "wallet_signDeclareTransaction":
		return operation{&SignDeclareParams{}, newPipeline(pipelineOpts{resolveAccount: true, gate: true}, handleSignDeclare)}, true
	case "wallet_displayPrivateKey":
		return operation{&DisplayPrivateKeyParams{}, newPipeline(pipelineOpts{resolveAccount: true, gate: true}, handleDisplayPrivateKey)}, true
	case "wallet_watchAsset":
		return operation{&WatchAssetParams{}, newPipeline(pipelineOpts{}, handleWatchAsset)}, true
	case "wallet_verifySignature":
		return operation{&VerifySignatureParams{}, newPipeline(pipelineOpts{resolveAccount: true, gate: true}, handleVerifySignature)}, true
	case "wallet_getTransactionStatus":
		return operation{&GetTransactionStatusParams{}, newPipeline(pipelineOpts{}, handleGetTransactionStatus)}, true
	case "wallet_listTransactions":
		return operation{&ListTransactionsParams{}, newPipeline(pipelineOpts{}, handleListTransactions)}, true
	case "wallet_setAccountName":
		return operation{&SetAccountNameParams{}, newPipeline(pipelineOpts{resolveAccount: true, gate: true}, handleSetAccountName)}, true
	case "wallet_getDeploymentData":
		return operation{&GetDeploymentDataParams{}, newPipeline(pipelineOpts{resolveAccount: true, gate: true}, handleGetDeploymentData)}, true
	}
	return operation{}, false
}

// ── Account endpoints ───────────────────────────────────────────────────

// materialize derives and persists the account at the given index. The
// deploy flag reflects the chain: an address that already carries class
// code was deployed by an earlier wallet installation.
func (s *Server) materialize(c *reqContext, index uint32, name string) (state.Account, error) {
	kp, err := s.deriver.Derive(index)
	if err != nil {
		return state.Account{}, fmt.Errorf("%w: derive index %d: %v", ErrUnknown, index, err)
	}
	calc := account.NewCalculator(c.network)
	address, _ := calc.ComputeAddress(kp.PublicKey, state.VersionCurrent)

	deployed := false
	if _, err := s.clientFor(c.network).ClassVersionAt(c.ctx, address); err == nil {
		deployed = true
	}

	if name == "" {
		name = fmt.Sprintf("Account %d", index+1)
	}
	acct := state.Account{
		Address:         address,
		PublicKey:       kp.PublicKey,
		Index:           index,
		DerivationPath:  kp.DerivationPath,
		ChainID:         c.network.ChainID,
		ContractVersion: state.VersionCurrent,
		Name:            name,
		Deployed:        deployed,
		Visible:         true,
	}
	if err := s.accounts.Upsert(acct); err != nil {
		return state.Account{}, fmt.Errorf("%w: persist account: %v", ErrUnknown, err)
	}
	return acct, nil
}

func handleCreateAccount(s *Server, c *reqContext) error {
	p := c.params.(*CreateAccountParams)
	acct, err := s.materialize(c, 0, p.Name)
	if err != nil {
		return err
	}
	c.result = NewAccountResult(acct)
	return nil
}

func handleAddAccount(s *Server, c *reqContext) error {
	p := c.params.(*AddAccountParams)
	index, err := s.resolver.NextIndex(c.network.ChainID)
	if err != nil {
		return fmt.Errorf("%w: next index: %v", ErrUnknown, err)
	}
	acct, err := s.materialize(c, index, p.Name)
	if err != nil {
		return err
	}
	c.result = NewAccountResult(acct)
	return nil
}

func handleSwitchAccount(s *Server, c *reqContext) error {
	// A scan-discovered account is persisted on switch so later requests
	// hit the store path.
	if err := s.accounts.Upsert(c.account); err != nil {
		return fmt.Errorf("%w: persist account: %v", ErrUnknown, err)
	}
	if err := s.accounts.SetVisibility(c.network.ChainID, c.account.Address, true); err != nil {
		return fmt.Errorf("%w: set visibility: %v", ErrUnknown, err)
	}
	acct, ok, err := s.accounts.Get(c.network.ChainID, c.account.Address)
	if err != nil || !ok {
		return fmt.Errorf("%w: reload account: %v", ErrUnknown, err)
	}
	if err := s.accounts.SetCurrent(c.network.ChainID, acct.Address); err != nil {
		return fmt.Errorf("%w: set current account: %v", ErrUnknown, err)
	}
	c.result = NewAccountResult(acct)
	return nil
}

func handleGetCurrentAccount(s *Server, c *reqContext) error {
	acct, ok, err := s.accounts.GetCurrent(c.network.ChainID)
	if err != nil {
		return fmt.Errorf("%w: load current account: %v", ErrUnknown, err)
	}
	if !ok {
		// First use on this chain bootstraps the index-0 account.
		acct, err = s.materialize(c, 0, "")
		if err != nil {
			return err
		}
	}
	c.result = NewAccountResult(acct)
	return nil
}

func handleListAccounts(s *Server, c *reqContext) error {
	all, err := s.accounts.List(c.network.ChainID)
	if err != nil {
		return fmt.Errorf("%w: list accounts: %v", ErrUnknown, err)
	}
	results := make([]*AccountResult, 0, len(all))
	for _, acct := range all {
		if !acct.Visible {
			continue
		}
		results = append(results, NewAccountResult(acct))
	}
	c.result = results
	return nil
}

func handleSetAccountName(s *Server, c *reqContext) error {
	p := c.params.(*SetAccountNameParams)
	if err := s.accounts.Upsert(c.account); err != nil {
		return fmt.Errorf("%w: persist account: %v", ErrUnknown, err)
	}
	if err := s.accounts.SetName(c.network.ChainID, c.account.Address, p.Name); err != nil {
		return fmt.Errorf("%w: set name: %v", ErrUnknown, err)
	}
	acct, ok, err := s.accounts.Get(c.network.ChainID, c.account.Address)
	if err != nil || !ok {
		return fmt.Errorf("%w: reload account: %v", ErrUnknown, err)
	}
	c.result = NewAccountResult(acct)
	return nil
}

// ── Network endpoints ───────────────────────────────────────────────────

func handleSwitchNetwork(s *Server, c *reqContext) error {
	current, err := s.networks.GetCurrent()
	if err != nil {
		return fmt.Errorf("%w: load current network: %v", ErrUnknown, err)
	}
	if current.ChainID.Equal(c.network.ChainID) {
		c.result = NewNetworkResult(current)
		return nil
	}

	content := ui.Content{Heading: "Switch network"}
	content.AddRow("From", current.Name)
	content.AddRow("To", c.network.Name)
	approved, err := s.dialog.Confirm(c.ctx, content)
	if err != nil {
		return fmt.Errorf("%w: render confirmation: %v", ErrUnknown, err)
	}
	if !approved {
		return txn.ErrUserRejected
	}

	// Re-check and flip against one snapshot so a concurrent switch
	// cannot interleave.
	err = s.networks.WithTransaction(func(snap *state.Snapshot) error {
		for _, n := range snap.Networks {
			if n.ChainID.Equal(c.network.ChainID) {
				snap.CurrentChainID = c.network.ChainID
				return nil
			}
		}
		return fmt.Errorf("%w: %s", ErrInvalidNetwork, c.network.ChainID)
	})
	if err != nil {
		return err
	}
	c.result = NewNetworkResult(c.network)
	return nil
}

func handleGetCurrentNetwork(_ *Server, c *reqContext) error {
	// stageResolveNetwork already resolved the active network for the
	// zero chain id these params carry.
	c.result = NewNetworkResult(c.network)
	return nil
}

// ── Transaction endpoints ───────────────────────────────────────────────

func handleEstimateFee(s *Server, c *reqContext) error {
	p := c.params.(*EstimateFeeParams)
	estimator := fee.NewEstimator(s.clientFor(c.network))
	estimate, err := estimator.Estimate(c.ctx, c.network, c.account, p.calls, p.feeToken.Version())
	if err != nil {
		return fmt.Errorf("estimate fee: %w", err)
	}
	c.result = &EstimateFeeResult{
		SuggestedMaxFee: estimate.SuggestedMaxFee.Dec(),
		OverallFee:      estimate.OverallFee.Dec(),
		Unit:            string(estimate.Unit),
		IncludeDeploy:   estimate.IncludeDeploy,
	}
	return nil
}

func handleExecuteTxn(s *Server, c *reqContext) error {
	p := c.params.(*ExecuteTxnParams)
	client := s.clientFor(c.network)
	orch := txn.NewOrchestrator(client, fee.NewEstimator(client), s.dialog,
		s.accounts, s.requests, s.records)

	// A scan-discovered signer must exist in the store before the flow
	// marks it deployed.
	if err := s.accounts.Upsert(c.account); err != nil {
		return fmt.Errorf("%w: persist account: %v", ErrUnknown, err)
	}

	result, err := orch.Execute(c.ctx, c.network, c.account, p.calls, p.feeToken)
	if err != nil {
		return err
	}
	out := &ExecuteTxnResult{TransactionHash: result.TransactionHash.PaddedHex()}
	if !result.DeployHash.IsZero() {
		out.DeployHash = result.DeployHash.PaddedHex()
	}
	c.result = out
	return nil
}

func handleGetTransactionStatus(s *Server, c *reqContext) error {
	p := c.params.(*GetTransactionStatusParams)
	status, err := s.clientFor(c.network).TransactionStatus(c.ctx, p.hash)
	if err != nil {
		return fmt.Errorf("transaction status: %w", err)
	}
	c.result = &TransactionStatusResult{
		FinalityStatus:  status.FinalityStatus,
		ExecutionStatus: status.ExecutionStatus,
	}
	return nil
}

func handleListTransactions(s *Server, c *reqContext) error {
	p := c.params.(*ListTransactionsParams)
	records, err := s.records.List(c.network.ChainID, p.sender)
	if err != nil {
		return fmt.Errorf("%w: list transactions: %v", ErrUnknown, err)
	}
	results := make([]*TransactionResult, 0, len(records))
	for _, r := range records {
		results = append(results, &TransactionResult{
			TxnHash:        r.TxnHash.PaddedHex(),
			Type:           string(r.Type),
			SenderAddress:  r.SenderAddress.PaddedHex(),
			FinalityStatus: r.FinalityStatus,
			Timestamp:      r.Timestamp,
		})
	}
	c.result = results
	return nil
}

// ── Signing endpoints ───────────────────────────────────────────────────

// authorize renders a signing confirmation when the caller asked for one.
func (s *Server) authorize(c *reqContext, enabled bool, heading string, rows []ui.Row) error {
	if !enabled {
		return nil
	}
	content := ui.Content{Heading: heading, Rows: rows}
	approved, err := s.dialog.Confirm(c.ctx, content)
	if err != nil {
		return fmt.Errorf("%w: render confirmation: %v", ErrUnknown, err)
	}
	if !approved {
		return txn.ErrUserRejected
	}
	return nil
}

func signHash(kp keyring.KeyPair, hash types.Felt) (keyring.Signature, error) {
	digest := hash.Bytes32()
	sig, err := kp.Sign(digest[:])
	if err != nil {
		return keyring.Signature{}, fmt.Errorf("%w: sign: %v", ErrUnknown, err)
	}
	return sig, nil
}

func handleSignMessage(s *Server, c *reqContext) error {
	p := c.params.(*SignMessageParams)
	err := s.authorize(c, p.EnableAuthorize, "Sign message", []ui.Row{
		{Label: "Signer", Value: c.account.Address.PaddedHex()},
		{Label: "Message words", Value: fmt.Sprintf("%d", len(p.message))},
	})
	if err != nil {
		return err
	}
	hash := types.MessageHash(c.network.ChainID, c.account.Address, p.message...)
	sig, err := signHash(c.keyPair, hash)
	if err != nil {
		return err
	}
	c.result = sig
	return nil
}

func handleSignTransaction(s *Server, c *reqContext) error {
	p := c.params.(*SignTransactionParams)
	rows := []ui.Row{{Label: "Signer", Value: c.account.Address.PaddedHex()}}
	for _, call := range p.calls {
		rows = append(rows, ui.Row{Label: "Call", Value: fmt.Sprintf("%s on %s", call.Entrypoint, call.ContractAddress)})
	}
	if err := s.authorize(c, p.EnableAuthorize, "Sign transaction", rows); err != nil {
		return err
	}
	hash := types.TransactionHash(c.network.ChainID, c.account.Address, p.calls)
	sig, err := signHash(c.keyPair, hash)
	if err != nil {
		return err
	}
	c.result = sig
	return nil
}

func handleSignDeclare(s *Server, c *reqContext) error {
	p := c.params.(*SignDeclareParams)
	err := s.authorize(c, true, "Sign declare transaction", []ui.Row{
		{Label: "Signer", Value: c.account.Address.PaddedHex()},
		{Label: "Class hash", Value: p.classHash.String()},
	})
	if err != nil {
		return err
	}
	hash := types.DeclareHash(c.network.ChainID, c.account.Address, p.classHash, p.compiledClassHash)
	sig, err := signHash(c.keyPair, hash)
	if err != nil {
		return err
	}
	c.result = sig
	return nil
}

func handleDisplayPrivateKey(s *Server, c *reqContext) error {
	approved, err := s.dialog.Confirm(c.ctx, ui.Content{
		Heading: "Reveal private key",
		Rows: []ui.Row{
			{Label: "Account", Value: c.account.Address.PaddedHex()},
			{Label: "Warning", Value: "Anyone with this key controls the account."},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: render confirmation: %v", ErrUnknown, err)
	}
	if !approved {
		return txn.ErrUserRejected
	}

	// The key is shown in the host dialog, never in the response.
	content := ui.Content{Heading: "Private key"}
	content.AddRow("Key", c.keyPair.PrivateKeyHex())
	if err := s.dialog.Alert(c.ctx, content); err != nil {
		return fmt.Errorf("%w: render private key: %v", ErrUnknown, err)
	}
	c.result = true
	return nil
}

func handleVerifySignature(s *Server, c *reqContext) error {
	p := c.params.(*VerifySignatureParams)
	hash := types.MessageHash(c.network.ChainID, c.account.Address, p.message...)
	digest := hash.Bytes32()
	c.result = keyring.VerifySignature(c.keyPair.PublicKeyBytes(), digest[:], p.Signature)
	return nil
}

// ── Token endpoints ─────────────────────────────────────────────────────

func handleWatchAsset(s *Server, c *reqContext) error {
	p := c.params.(*WatchAssetParams)
	content := ui.Content{Heading: "Add token"}
	content.AddRow("Network", c.network.Name)
	content.AddRow("Token", fmt.Sprintf("%s (%s)", p.Name, p.Symbol))
	content.AddRow("Address", p.tokenAddress.PaddedHex())
	approved, err := s.dialog.Confirm(c.ctx, content)
	if err != nil {
		return fmt.Errorf("%w: render confirmation: %v", ErrUnknown, err)
	}
	if !approved {
		return txn.ErrUserRejected
	}

	err = s.tokens.Upsert(state.Erc20Token{
		Address:  p.tokenAddress,
		Name:     p.Name,
		Symbol:   p.Symbol,
		Decimals: p.Decimals,
		ChainID:  c.network.ChainID,
	})
	if err != nil {
		// Shadowing a preloaded token is a caller mistake, not an
		// internal failure.
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	c.result = true
	return nil
}

// ── Deployment endpoints ────────────────────────────────────────────────

func handleGetDeploymentData(s *Server, c *reqContext) error {
	if c.account.Deployed {
		return fmt.Errorf("%w: %s", ErrAccountDeployed, c.account.Address)
	}
	deployment := account.NewCalculator(c.network).Deployment(c.account.PublicKey)
	calldata := make([]string, 0, len(deployment.ConstructorCalldata))
	for _, f := range deployment.ConstructorCalldata {
		calldata = append(calldata, f.String())
	}
	c.result = &DeploymentDataResult{
		Address:   deployment.Address.PaddedHex(),
		ClassHash: deployment.ClassHash.String(),
		Salt:      deployment.Salt.String(),
		Calldata:  calldata,
		Version:   string(types.TxnVersionV3),
	}
	return nil
}
