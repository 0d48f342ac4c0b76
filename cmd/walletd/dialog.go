package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/Consensys/starknet-snap-sub002/internal/ui"
	"github.com/Consensys/starknet-snap-sub002/pkg/types"
)

// consoleDialog renders confirmations on the terminal walletd runs in.
// Prompts are serialized; two concurrent requests never interleave their
// output.
type consoleDialog struct {
	mu     sync.Mutex
	reader *bufio.Reader
}

func newConsoleDialog() *consoleDialog {
	return &consoleDialog{reader: bufio.NewReader(os.Stdin)}
}

func (d *consoleDialog) render(content ui.Content) {
	fmt.Fprintf(os.Stderr, "\n=== %s ===\n", content.Heading)
	for _, row := range content.Rows {
		fmt.Fprintf(os.Stderr, "  %-14s %s\n", row.Label+":", row.Value)
	}
}

func (d *consoleDialog) ask(ctx context.Context) (bool, error) {
	type answer struct {
		approved bool
		err      error
	}
	ch := make(chan answer, 1)
	go func() {
		line, err := d.reader.ReadString('\n')
		if err != nil {
			ch <- answer{false, err}
			return
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			ch <- answer{true, nil}
		default:
			ch <- answer{false, nil}
		}
	}()
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case a := <-ch:
		return a.approved, a.err
	}
}

func (d *consoleDialog) Confirm(ctx context.Context, content ui.Content) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.render(content)
	fmt.Fprint(os.Stderr, "Approve? [y/N]: ")
	return d.ask(ctx)
}

func (d *consoleDialog) Alert(ctx context.Context, content ui.Content) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.render(content)
	return nil
}

func (d *consoleDialog) ShowInteractive(ctx context.Context, interfaceID string, content ui.Content) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.render(content)
	fmt.Fprintf(os.Stderr, "Approve? (request %s) [y/N]: ", interfaceID)
	return d.ask(ctx)
}

// SelectFeeToken lets the user pick the fee token before a transaction
// confirmation. Anything other than a recognized token name keeps the
// current one.
func (d *consoleDialog) SelectFeeToken(ctx context.Context, current types.FeeToken) (types.FeeToken, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprintf(os.Stderr, "\nFee token [%s], or enter ETH/STRK to change: ", current)

	type answer struct {
		line string
		err  error
	}
	ch := make(chan answer, 1)
	go func() {
		line, err := d.reader.ReadString('\n')
		ch <- answer{line, err}
	}()
	select {
	case <-ctx.Done():
		return current, false, ctx.Err()
	case a := <-ch:
		if a.err != nil {
			return current, false, a.err
		}
		switch strings.ToUpper(strings.TrimSpace(a.line)) {
		case string(types.FeeTokenETH):
			return types.FeeTokenETH, types.FeeTokenETH != current, nil
		case string(types.FeeTokenSTRK):
			return types.FeeTokenSTRK, types.FeeTokenSTRK != current, nil
		default:
			return current, false, nil
		}
	}
}

var _ ui.Dialog = (*consoleDialog)(nil)
var _ ui.FeeTokenSelector = (*consoleDialog)(nil)
