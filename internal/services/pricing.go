package services

// LiquidityConstant shapes the share-issuance curve of the market maker.
const LiquidityConstant = 100.0

// InitialOutcomeShares is the liquidity every outcome starts with.
const InitialOutcomeShares = 100.0

// SharesReceived computes how many shares a wager buys against the current
// liquidity of an outcome, using a constant-product-style curve:
//
//	k = L * currentShares
//	received = currentShares - k / (k/currentShares + pointsWagered)
//
// Issuance is strictly increasing in pointsWagered and diminishes as
// currentShares grows, which models price impact without an order book.
// The result is clamped at zero to guard against floating-point edge cases
// as currentShares approaches zero.
func SharesReceived(pointsWagered int64, currentShares float64) float64 {
	k := LiquidityConstant * currentShares
	received := currentShares - k/(k/currentShares+float64(pointsWagered))
	if received < 0 {
		return 0
	}
	return received
}
