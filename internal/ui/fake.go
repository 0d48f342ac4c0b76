package ui

import (
	"context"
	"sync"

	"github.com/Consensys/starknet-snap-sub002/pkg/types"
)

// FakeDialog is a scriptable Dialog for tests. It records every rendered
// content and returns the scripted decision.
type FakeDialog struct {
	mu sync.Mutex

	// Decision returned by Confirm and ShowInteractive.
	Approve bool
	// ConfirmErr, when set, is returned instead of a decision.
	ConfirmErr error
	// AlertErr, when set, is returned by Alert.
	AlertErr error
	// OnInteractive, when set, runs while the interactive surface is
	// "open", before the decision returns. Lets tests mutate state the
	// way a user editing the dialog would.
	OnInteractive func(interfaceID string)
	// SelectToken, when set, answers the fee token selection offer.
	SelectToken func(current types.FeeToken) (types.FeeToken, bool)

	confirms     []Content
	alerts       []Content
	interactives []string
}

func (d *FakeDialog) Confirm(ctx context.Context, content Content) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	d.mu.Lock()
	d.confirms = append(d.confirms, content)
	d.mu.Unlock()
	if d.ConfirmErr != nil {
		return false, d.ConfirmErr
	}
	return d.Approve, nil
}

func (d *FakeDialog) Alert(ctx context.Context, content Content) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	d.alerts = append(d.alerts, content)
	d.mu.Unlock()
	return d.AlertErr
}

func (d *FakeDialog) ShowInteractive(ctx context.Context, interfaceID string, content Content) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	d.mu.Lock()
	d.interactives = append(d.interactives, interfaceID)
	d.mu.Unlock()
	if d.OnInteractive != nil {
		d.OnInteractive(interfaceID)
		if err := ctx.Err(); err != nil {
			return false, err
		}
	}
	if d.ConfirmErr != nil {
		return false, d.ConfirmErr
	}
	return d.Approve, nil
}

func (d *FakeDialog) SelectFeeToken(ctx context.Context, current types.FeeToken) (types.FeeToken, bool, error) {
	if err := ctx.Err(); err != nil {
		return current, false, err
	}
	if d.SelectToken == nil {
		return current, false, nil
	}
	choice, changed := d.SelectToken(current)
	return choice, changed, nil
}

// Confirms returns the recorded confirmation contents.
func (d *FakeDialog) Confirms() []Content {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Content(nil), d.confirms...)
}

// Alerts returns the recorded alert contents.
func (d *FakeDialog) Alerts() []Content {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Content(nil), d.alerts...)
}

// Interactives returns the interface ids shown.
func (d *FakeDialog) Interactives() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.interactives...)
}

var _ Dialog = (*FakeDialog)(nil)
var _ FeeTokenSelector = (*FakeDialog)(nil)
