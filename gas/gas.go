// Package gas decides between the legacy single-gasPrice fee model and
// the EIP-1559 (maxPriorityFeePerGas, maxFeePerGas) model, and records
// which one it picked and why. The base-fee-nil check at its core treats
// a block header's base fee as optional, since it can be nil on pre-London
// chains.
package gas

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"
)

// FallbackPolicy governs what happens when a caller explicitly asks for
// EIP-1559 pricing but the chain's latest block carries no base fee.
type FallbackPolicy int

const (
	// FallbackWarn falls back to the legacy fee model and reports the
	// fallback in the returned Decision; it is the default policy.
	FallbackWarn FallbackPolicy = iota
	// FallbackSilent falls back without flagging it in the decision's
	// Warning field.
	FallbackSilent
	// Throw refuses to proceed, returning ErrBaseFeeUnavailable.
	Throw
)

// ErrBaseFeeUnavailable is returned under the Throw policy when EIP-1559
// pricing was requested but the chain has no base fee.
var ErrBaseFeeUnavailable = fmt.Errorf("gas: eip-1559 pricing requested but chain has no base fee")

// Model identifies which fee shape a Decision settled on.
type Model int

const (
	ModelLegacy Model = iota
	ModelEIP1559
)

func (m Model) String() string {
	if m == ModelEIP1559 {
		return "eip1559"
	}
	return "legacy"
}

// Preference lets a caller force a fee model instead of deferring to the
// base-fee heuristic.
type Preference int

const (
	PreferAuto Preference = iota
	PreferLegacy
	PreferEIP1559
)

// ChainState is the subset of a latest-block header the strategy needs:
// just whether (and what) base fee the chain reports.
type ChainState struct {
	BaseFeePerGas *uint256.Int // nil on a pre-London chain
}

// FeeSource supplies the raw fee quantities a decision may need: a legacy
// gas price, or a priority-fee suggestion plus the base fee already
// carried by ChainState.
type FeeSource interface {
	SuggestGasPrice(ctx context.Context) (*uint256.Int, error)
	SuggestPriorityFee(ctx context.Context) (*uint256.Int, error)
}

// Decision records which fee model was used, which values were fetched
// versus supplied by the caller, and whether a fallback fired, giving
// callers a structured record of the pricing decision rather than just
// the final numbers.
type Decision struct {
	Model                Model
	GasPrice             *uint256.Int // set when Model == ModelLegacy
	MaxPriorityFeePerGas *uint256.Int // set when Model == ModelEIP1559
	MaxFeePerGas         *uint256.Int // set when Model == ModelEIP1559
	FallbackFired        bool
	Warning              string
}

// Policy bundles the fallback policy with a gas-price multiplier applied
// to fetched suggestions, giving headroom against a rising base fee
// between fetch and inclusion.
type Policy struct {
	Fallback   FallbackPolicy
	Multiplier float64 // 0 defaults to 1.0 (no headroom)
}

func (p Policy) multiplier() float64 {
	if p.Multiplier <= 0 {
		return 1.0
	}
	return p.Multiplier
}

// Decide picks a fee model for pref against chain, fetching whichever
// quantities it needs from source. PreferAuto uses EIP-1559 whenever the
// chain reports a base fee, legacy otherwise; PreferLegacy/PreferEIP1559
// force a model, subject to Policy.Fallback when EIP-1559 is forced but
// unavailable.
func Decide(ctx context.Context, pref Preference, chain ChainState, source FeeSource, policy Policy) (*Decision, error) {
	wantEIP1559 := pref == PreferEIP1559 || (pref == PreferAuto && chain.BaseFeePerGas != nil)

	if wantEIP1559 && chain.BaseFeePerGas == nil {
		switch policy.Fallback {
		case Throw:
			return nil, ErrBaseFeeUnavailable
		case FallbackSilent:
			return decideLegacy(ctx, source, policy, true, "")
		default: // FallbackWarn
			return decideLegacy(ctx, source, policy, true,
				"eip-1559 pricing requested but chain reports no base fee; falling back to legacy gasPrice")
		}
	}

	if wantEIP1559 {
		return decideEIP1559(ctx, chain, source, policy)
	}
	return decideLegacy(ctx, source, policy, false, "")
}

func decideLegacy(ctx context.Context, source FeeSource, policy Policy, fallback bool, warning string) (*Decision, error) {
	price, err := source.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("gas: suggest gas price: %w", err)
	}
	return &Decision{
		Model:         ModelLegacy,
		GasPrice:      applyMultiplier(price, policy.multiplier()),
		FallbackFired: fallback,
		Warning:       warning,
	}, nil
}

func decideEIP1559(ctx context.Context, chain ChainState, source FeeSource, policy Policy) (*Decision, error) {
	tip, err := source.SuggestPriorityFee(ctx)
	if err != nil {
		return nil, fmt.Errorf("gas: suggest priority fee: %w", err)
	}
	// maxFeePerGas = baseFee*2 + tip, standard doubling headroom against a
	// base fee that can rise block over block, then the policy multiplier
	// on top.
	doubledBase := new(uint256.Int).Mul(chain.BaseFeePerGas, uint256.NewInt(2))
	maxFee := new(uint256.Int).Add(doubledBase, tip)

	return &Decision{
		Model:                ModelEIP1559,
		MaxPriorityFeePerGas: applyMultiplier(tip, policy.multiplier()),
		MaxFeePerGas:         applyMultiplier(maxFee, policy.multiplier()),
	}, nil
}

func applyMultiplier(v *uint256.Int, mult float64) *uint256.Int {
	if mult == 1.0 {
		return v
	}
	scaled, _ := new(uint256.Int).MulDivOverflow(v, uint256.NewInt(uint64(mult*1000)), uint256.NewInt(1000))
	return scaled
}
