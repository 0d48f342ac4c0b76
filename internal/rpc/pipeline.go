package rpc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Consensys/starknet-snap-sub002/internal/account"
	"github.com/Consensys/starknet-snap-sub002/internal/keyring"
	klog "github.com/Consensys/starknet-snap-sub002/internal/log"
	"github.com/Consensys/starknet-snap-sub002/internal/state"
	"github.com/Consensys/starknet-snap-sub002/internal/ui"
	"github.com/Consensys/starknet-snap-sub002/pkg/types"
)

// reqContext is the shared state one request's stages read and write.
type reqContext struct {
	ctx     context.Context
	params  Params
	network state.Network
	account state.Account
	keyPair keyring.KeyPair
	result  interface{}
}

// stage is one step of an operation pipeline. A stage either enriches the
// context or aborts the request with an error.
type stage func(s *Server, c *reqContext) error

// pipeline is an ordered stage list assembled per operation. Stages run in
// order; the first error aborts the request.
type pipeline struct {
	stages []stage
}

func (p pipeline) run(s *Server, c *reqContext) error {
	for _, st := range p.stages {
		if err := st(s, c); err != nil {
			return err
		}
	}
	return nil
}

// pipelineOpts selects which stages an operation needs beyond validation.
type pipelineOpts struct {
	// resolveAccount derives the signer behind params' address field.
	resolveAccount bool
	// gate aborts with ErrDeployRequired / ErrUpgradeRequired before the
	// handler when the signer is not eligible.
	gate bool
	// bypassGate skips the eligibility abort while still resolving the
	// account (switch-account does this to let users reach remediation).
	bypassGate bool
}

// newPipeline assembles the stage order every operation shares:
// validate, resolveNetwork, resolveAccount, checkEligibility, handle,
// validateResponse. Options drop the stages an operation does not need.
func newPipeline(opts pipelineOpts, handle stage) pipeline {
	stages := []stage{stageValidate, stageResolveNetwork}
	if opts.resolveAccount {
		stages = append(stages, stageResolveAccount)
		if opts.gate && !opts.bypassGate {
			stages = append(stages, stageCheckEligibility)
		}
	}
	stages = append(stages, handle, stageValidateResponse)
	return pipeline{stages: stages}
}

// stageValidate runs the typed parameter validation at the boundary.
func stageValidate(_ *Server, c *reqContext) error {
	return c.params.Validate()
}

// stageResolveNetwork maps the chain id onto a known network. A zero chain
// id selects the active network. Unknown ids are a data error, reported
// after the shape check passed.
func stageResolveNetwork(s *Server, c *reqContext) error {
	chainID := c.params.Chain()
	if chainID.IsZero() {
		network, err := s.networks.GetCurrent()
		if err != nil {
			return fmt.Errorf("%w: load current network: %v", ErrUnknown, err)
		}
		c.network = network
		return nil
	}
	network, ok, err := s.networks.Get(chainID)
	if err != nil {
		return fmt.Errorf("%w: network lookup: %v", ErrUnknown, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrInvalidNetwork, chainID)
	}
	c.network = network
	return nil
}

// addressed is implemented by params carrying a signer address.
type addressed interface {
	TargetAddress() types.Felt
}

// stageResolveAccount finds the account and key pair behind the address
// parameter, scanning the derivation space when the store misses.
func stageResolveAccount(s *Server, c *reqContext) error {
	p, ok := c.params.(addressed)
	if !ok {
		return fmt.Errorf("%w: operation requires an address parameter", ErrUnknown)
	}
	acct, kp, err := s.resolver.Resolve(c.ctx, c.network, p.TargetAddress())
	if err != nil {
		return err
	}
	c.account = acct
	c.keyPair = kp
	return nil
}

// stageCheckEligibility aborts operations a not-yet-usable account must not
// perform. The advisory alert is best effort: a render failure is logged
// and the gate error still propagates.
func stageCheckEligibility(s *Server, c *reqContext) error {
	eligibility := account.NewEligibility(s.clientFor(c.network))

	upgrade, err := eligibility.RequiresUpgrade(c.ctx, c.network, c.account.PublicKey)
	if err != nil {
		return fmt.Errorf("%w: eligibility check: %v", ErrUnknown, err)
	}
	if upgrade {
		s.showGateAlert(c, "This account must be upgraded before it can be used.")
		return fmt.Errorf("%w: account %s", ErrUpgradeRequired, c.account.Address)
	}

	feeToken := types.Felt{}
	if token, ok, err := s.tokens.FeeToken(c.network.ChainID); err == nil && ok {
		feeToken = token.Address
	}
	deploy, err := eligibility.RequiresDeploy(c.ctx, c.network, feeToken, c.account.PublicKey)
	if err != nil {
		return fmt.Errorf("%w: eligibility check: %v", ErrUnknown, err)
	}
	if deploy {
		s.showGateAlert(c, "This account must be deployed before it can be used.")
		return fmt.Errorf("%w: account %s", ErrDeployRequired, c.account.Address)
	}
	return nil
}

func (s *Server) showGateAlert(c *reqContext, message string) {
	content := ui.Content{Heading: "Account action needed"}
	content.AddRow("Account", c.account.Address.PaddedHex())
	content.AddRow("Status", message)
	if err := s.dialog.Alert(c.ctx, content); err != nil {
		klog.RPC.Warn().Err(err).Msg("Gate alert not rendered")
	}
}

// stageValidateResponse rejects malformed handler output. A handler that
// produced nothing or an unserializable value is a programmer error; the
// caller gets a generic failure, the log gets the detail.
func stageValidateResponse(_ *Server, c *reqContext) error {
	if c.result == nil {
		return fmt.Errorf("%w: handler produced no result", ErrUnknown)
	}
	if _, err := json.Marshal(c.result); err != nil {
		klog.RPC.Error().Err(err).Msg("Handler result not serializable")
		return fmt.Errorf("%w: handler result not serializable", ErrUnknown)
	}
	return nil
}
