// =============================
// File: internal/perps/sizing.go
// =============================
package perps

// SlippageFactor is the hard-coded floor applied to the expected LP output:
// the on-chain program rejects the deposit if it would mint less than 99% of
// the locally computed amount.
const SlippageFactor = 0.99

// DepositPlan is the per-tick outcome of the sizing policy, in native units.
type DepositPlan struct {
	Amount uint64
	MinOut uint64
}

// DepositPolicy holds the operator-configured sizing inputs.
type DepositPolicy struct {
	// AmountUI is the target deposit per tick in UI units of the deposit
	// asset.
	AmountUI float64
	// Force deposits AmountUI verbatim, bypassing both the capacity and the
	// balance clamps.
	Force bool
	// SkipCapacityCheck attempts a (still clamped) deposit even when the
	// pool reports no remaining room.
	SkipCapacityCheck bool
}

// ComputePlan sizes the deposit for the current snapshot. ok=false means the
// tick is a no-op (pool at capacity), which is not an error.
//
// The pool room is USD-denominated (1e6 fixed point) while the deposit is
// asset-denominated; the two are compared without an oracle conversion, which
// holds only because the deposit asset is a dollar stablecoin whose decimals
// match the USD scale. A per-asset price hook belongs here if that ever
// changes.
func (p DepositPolicy) ComputePlan(live *LiveAccounts, decimals uint8) (DepositPlan, bool) {
	if !p.SkipCapacityCheck && !live.HasCapacity() && !p.Force {
		return DepositPlan{}, false
	}

	minJLPPerUSDC := 0.0
	if price := live.JLPPrice(); price > 0 {
		minJLPPerUSDC = 1.0 / price
	}

	if p.Force {
		return DepositPlan{
			Amount: ToNative(p.AmountUI, decimals),
			MinOut: ToNative(p.AmountUI*minJLPPerUSDC*SlippageFactor, decimals),
		}, true
	}

	amount := p.AmountUI
	// an over-limit pool has no room; the unguarded uint64 subtraction
	// would wrap
	room := 0.0
	if live.HasCapacity() {
		room = float64(live.Pool.Limit.MaxAumUsd - live.Pool.AumUsd)
	}
	if amount > room {
		// available capacity is smaller than the target, clamp to it
		amount = room
	}
	if balance := ToUI(live.USDCTokenAccount.Amount, decimals); amount > balance {
		// never attempt to deposit more than we hold
		amount = balance
	}

	return DepositPlan{
		Amount: ToNative(amount, decimals),
		MinOut: ToNative(amount*minJLPPerUSDC*SlippageFactor, decimals),
	}, true
}
