// Package ui defines the host-supplied confirmation surface. The wallet
// core never renders anything itself; it hands structured content to a
// Dialog and acts on the decision.
package ui

import (
	"context"

	"github.com/Consensys/starknet-snap-sub002/pkg/types"
)

// Content is a renderable confirmation payload: a heading plus ordered
// label/value rows. The host decides how it looks.
type Content struct {
	Heading string
	Rows    []Row
}

// Row is one label/value line of a confirmation dialog.
type Row struct {
	Label string
	Value string
}

// AddRow appends a label/value line.
func (c *Content) AddRow(label, value string) {
	c.Rows = append(c.Rows, Row{Label: label, Value: value})
}

// Dialog is the host's interactive surface.
type Dialog interface {
	// Confirm renders the content and blocks for an approve/deny
	// decision. Context cancellation counts as denial upstream.
	Confirm(ctx context.Context, content Content) (bool, error)

	// Alert renders the content without asking for a decision.
	Alert(ctx context.Context, content Content) error

	// ShowInteractive renders a long-lived interactive surface keyed by
	// interfaceID and blocks for the final decision. The surface may
	// mutate wallet state (fee token selection) while open.
	ShowInteractive(ctx context.Context, interfaceID string, content Content) (bool, error)
}

// FeeTokenSelector is implemented by dialogs that let the user pick the
// fee token while a transaction confirmation is being prepared. Dialogs
// without it keep the caller's token.
type FeeTokenSelector interface {
	// SelectFeeToken offers the choice and reports whether the user
	// changed it.
	SelectFeeToken(ctx context.Context, current types.FeeToken) (types.FeeToken, bool, error)
}

// AutoApprove is a Dialog that approves everything without rendering.
// walletd uses it when running headless.
type AutoApprove struct{}

func (AutoApprove) Confirm(ctx context.Context, _ Content) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return true, nil
}

func (AutoApprove) Alert(ctx context.Context, _ Content) error {
	return ctx.Err()
}

func (AutoApprove) ShowInteractive(ctx context.Context, _ string, _ Content) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return true, nil
}

var _ Dialog = AutoApprove{}
