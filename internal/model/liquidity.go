package model

// LiquidityAmounts holds the formatted token amounts inside the active price range.
type LiquidityAmounts struct {
	Token0 string `json:"token0"`
	Token1 string `json:"token1"`
}
