package gas

import (
	"context"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	gasPrice *uint256.Int
	priority *uint256.Int
	err      error
}

func (s stubSource) SuggestGasPrice(ctx context.Context) (*uint256.Int, error) {
	return s.gasPrice, s.err
}

func (s stubSource) SuggestPriorityFee(ctx context.Context) (*uint256.Int, error) {
	return s.priority, s.err
}

func TestDecide_AutoUsesEIP1559WhenBaseFeePresent(t *testing.T) {
	chain := ChainState{BaseFeePerGas: uint256.NewInt(1_000_000_000)}
	source := stubSource{priority: uint256.NewInt(1_500_000_000)}

	d, err := Decide(context.Background(), PreferAuto, chain, source, Policy{})
	require.NoError(t, err)
	assert.Equal(t, ModelEIP1559, d.Model)
	assert.False(t, d.FallbackFired)
}

func TestDecide_AutoUsesLegacyWithoutBaseFee(t *testing.T) {
	source := stubSource{gasPrice: uint256.NewInt(20_000_000_000)}
	d, err := Decide(context.Background(), PreferAuto, ChainState{}, source, Policy{})
	require.NoError(t, err)
	assert.Equal(t, ModelLegacy, d.Model)
}

func TestDecide_ForcedEIP1559WithoutBaseFee_FallbackWarn(t *testing.T) {
	source := stubSource{gasPrice: uint256.NewInt(20_000_000_000)}
	d, err := Decide(context.Background(), PreferEIP1559, ChainState{}, source, Policy{Fallback: FallbackWarn})
	require.NoError(t, err)
	assert.Equal(t, ModelLegacy, d.Model)
	assert.True(t, d.FallbackFired)
	assert.NotEmpty(t, d.Warning)
}

func TestDecide_ForcedEIP1559WithoutBaseFee_FallbackSilent(t *testing.T) {
	source := stubSource{gasPrice: uint256.NewInt(20_000_000_000)}
	d, err := Decide(context.Background(), PreferEIP1559, ChainState{}, source, Policy{Fallback: FallbackSilent})
	require.NoError(t, err)
	assert.True(t, d.FallbackFired)
	assert.Empty(t, d.Warning)
}

func TestDecide_ForcedEIP1559WithoutBaseFee_Throw(t *testing.T) {
	source := stubSource{gasPrice: uint256.NewInt(20_000_000_000)}
	_, err := Decide(context.Background(), PreferEIP1559, ChainState{}, source, Policy{Fallback: Throw})
	assert.ErrorIs(t, err, ErrBaseFeeUnavailable)
}

func TestDecide_ForcedLegacyIgnoresBaseFee(t *testing.T) {
	chain := ChainState{BaseFeePerGas: uint256.NewInt(1_000_000_000)}
	source := stubSource{gasPrice: uint256.NewInt(20_000_000_000)}
	d, err := Decide(context.Background(), PreferLegacy, chain, source, Policy{})
	require.NoError(t, err)
	assert.Equal(t, ModelLegacy, d.Model)
	assert.False(t, d.FallbackFired)
}

func TestDecide_EIP1559_MaxFeeCoversDoubleBaseFeePlusTip(t *testing.T) {
	chain := ChainState{BaseFeePerGas: uint256.NewInt(1_000_000_000)}
	source := stubSource{priority: uint256.NewInt(500_000_000)}
	d, err := Decide(context.Background(), PreferAuto, chain, source, Policy{})
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(2_500_000_000), d.MaxFeePerGas)
}
