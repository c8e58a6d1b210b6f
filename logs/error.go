package logs

import (
	"context"
	"fmt"
)

// WrapPhase prefixes err with the phase recorded in ctx.
func WrapPhase(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	v := ctx.Value(PhaseKey)
	if v == nil {
		return err
	}
	return fmt.Errorf("%s: %w", v.(Phase), err)
}
