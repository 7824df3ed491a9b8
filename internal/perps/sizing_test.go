package perps

import (
	"testing"

	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const usdcDecimals = 6

// liveAccounts builds a snapshot with the given pool state and wallet
// balance. The LP supply is chosen so the implied JLP price comes out of the
// same fixed-point scale as aumUsd.
func liveAccounts(aumUsd, maxAumUsd, balanceNative, lpSupply uint64) *LiveAccounts {
	return &LiveAccounts{
		Pool: &Pool{
			AumUsd: aumUsd,
			Limit:  PoolLimit{MaxAumUsd: maxAumUsd},
		},
		LPMint:           token.Mint{Supply: lpSupply, Decimals: usdcDecimals},
		USDCTokenAccount: token.Account{Amount: balanceNative},
	}
}

func TestComputePlan_ConfiguredWithinRoomAndBalance(t *testing.T) {
	// room=100 > configured=50, balance=200ui: configured amount wins
	live := liveAccounts(900, 1000, ToNative(200, usdcDecimals), 500)

	plan, ok := DepositPolicy{AmountUI: 50}.ComputePlan(live, usdcDecimals)
	require.True(t, ok)
	assert.Equal(t, ToNative(50, usdcDecimals), plan.Amount)
	assert.NotZero(t, plan.MinOut)
}

func TestComputePlan_CapacityBound(t *testing.T) {
	// room=5 < configured=50: clamp to remaining capacity
	live := liveAccounts(995, 1000, ToNative(200, usdcDecimals), 500)

	plan, ok := DepositPolicy{AmountUI: 50}.ComputePlan(live, usdcDecimals)
	require.True(t, ok)
	assert.Equal(t, ToNative(5, usdcDecimals), plan.Amount)
}

func TestComputePlan_BalanceBound(t *testing.T) {
	// balance=3ui is tighter than both room=100 and configured=50
	live := liveAccounts(900, 1000, ToNative(3, usdcDecimals), 500)

	plan, ok := DepositPolicy{AmountUI: 50}.ComputePlan(live, usdcDecimals)
	require.True(t, ok)
	assert.Equal(t, ToNative(3, usdcDecimals), plan.Amount)
}

func TestComputePlan_BalanceBindsAfterCapacityClamp(t *testing.T) {
	// capacity clamps 50 down to room=10, balance=4ui clamps again
	live := liveAccounts(990, 1000, ToNative(4, usdcDecimals), 500)

	plan, ok := DepositPolicy{AmountUI: 50}.ComputePlan(live, usdcDecimals)
	require.True(t, ok)
	assert.Equal(t, ToNative(4, usdcDecimals), plan.Amount)
}

func TestComputePlan_SkipsAtCapacity(t *testing.T) {
	live := liveAccounts(1000, 1000, ToNative(200, usdcDecimals), 500)

	_, ok := DepositPolicy{AmountUI: 50}.ComputePlan(live, usdcDecimals)
	assert.False(t, ok)
}

func TestComputePlan_SkipCapacityCheckStillClamps(t *testing.T) {
	// skip-capacity-check attempts the deposit but room is zero, so the
	// capacity clamp zeroes the amount, then balance cannot raise it
	live := liveAccounts(1000, 1000, ToNative(200, usdcDecimals), 500)

	plan, ok := DepositPolicy{AmountUI: 50, SkipCapacityCheck: true}.ComputePlan(live, usdcDecimals)
	require.True(t, ok)
	assert.Zero(t, plan.Amount)
}

func TestComputePlan_SkipCapacityCheckOverLimitPool(t *testing.T) {
	// aum past the limit must read as zero room, not a wrapped uint64
	live := liveAccounts(1500, 1000, ToNative(200, usdcDecimals), 500)

	plan, ok := DepositPolicy{AmountUI: 50, SkipCapacityCheck: true}.ComputePlan(live, usdcDecimals)
	require.True(t, ok)
	assert.Zero(t, plan.Amount)
}

func TestComputePlan_ForceBypassesAllClamps(t *testing.T) {
	// at capacity and with a 1ui balance, force still deposits verbatim
	live := liveAccounts(1000, 1000, ToNative(1, usdcDecimals), 500)

	plan, ok := DepositPolicy{AmountUI: 50, Force: true}.ComputePlan(live, usdcDecimals)
	require.True(t, ok)
	assert.Equal(t, ToNative(50, usdcDecimals), plan.Amount)
}

func TestComputePlan_MinOutAppliesSlippageFloor(t *testing.T) {
	// supply=500 at decimals=6 gives ui supply 0.0005 and an implied price
	// of exactly 2.0, so 50 USDC expects 25 JLP and a 24.75 floor
	live := liveAccounts(1000, 2000, ToNative(200, usdcDecimals), 500)
	require.InDelta(t, 2.0, live.JLPPrice(), 1e-12)

	plan, ok := DepositPolicy{AmountUI: 50}.ComputePlan(live, usdcDecimals)
	require.True(t, ok)
	assert.InDelta(t, 24.75, ToUI(plan.MinOut, usdcDecimals), 1e-5)
}

func TestHasCapacity(t *testing.T) {
	assert.True(t, liveAccounts(999, 1000, 0, 1).HasCapacity())
	assert.False(t, liveAccounts(1000, 1000, 0, 1).HasCapacity())
	assert.False(t, liveAccounts(1001, 1000, 0, 1).HasCapacity())
}
