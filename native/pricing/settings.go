package pricing

import (
	"errors"
	"math/big"
)

// Canonical setting names used in change events and persisted payloads.
const (
	SettingBuyPrice           = "buyPrice"
	SettingSellFee            = "sellFee"
	SettingStandardDiscount   = "standardDiscount"
	SettingGovernanceDiscount = "governanceDiscount"
	SettingAgingDelay         = "agingDelay"
	SettingMinBalance         = "minBalance"
	SettingMaxBalance         = "maxBalance"
	SettingOwnerShare         = "ownerShare"
)

var (
	ErrBuyPriceOutOfBounds       = errors.New("pricing: buy price not within the lower and upper bounds")
	ErrSellFeeOutOfBounds        = errors.New("pricing: sell fee not within the lower and upper bounds")
	ErrStandardDiscountTooHigh   = errors.New("pricing: standard discount may not exceed 100%")
	ErrGovernanceDiscountTooHigh = errors.New("pricing: governance discount may not exceed 100%")
	ErrAgingDelayOutOfBounds     = errors.New("pricing: aging delay not within the lower and upper bounds")
	ErrMinBalanceOutOfBounds     = errors.New("pricing: minimum balance may not exceed the maximum balance or the absolute ceiling")
	ErrMaxBalanceOutOfBounds     = errors.New("pricing: maximum balance not within the lower and upper bounds")
	ErrOwnerShareTooHigh         = errors.New("pricing: owner share may not exceed 100%")
)

const (
	// BpsDenominator is the basis-point scale shared by discounts and the
	// owner revenue share.
	BpsDenominator = 10_000

	maxAgingDelayBlocks = uint64(1e18)
	minAgingDelayBlocks = uint64(2)
)

var (
	minBuyPrice = big.NewInt(2)
	minSellFee  = big.NewInt(1)
	// weiBoundCeiling backstops every wei-denominated setting at 1e18.
	weiBoundCeiling = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	// minBalanceCeiling is the absolute ceiling on the treasury reserve.
	minBalanceCeiling = new(big.Int).Exp(big.NewInt(10), big.NewInt(17), nil)
)

// Settings is the versioned configuration block for the engine economics.
// Wei amounts are big integers, percentages are basis points.
type Settings struct {
	BuyPrice              *big.Int `json:"buyPrice"`
	SellFee               *big.Int `json:"sellFee"`
	StandardDiscountBps   uint64   `json:"standardDiscountBps"`
	GovernanceDiscountBps uint64   `json:"governanceDiscountBps"`
	AgingDelayBlocks      uint64   `json:"agingDelayBlocks"`
	MinBalance            *big.Int `json:"minBalance"`
	MaxBalance            *big.Int `json:"maxBalance"`
	OwnerShareBps         uint64   `json:"ownerShareBps"`
}

// DefaultSettings returns the launch configuration: 0.02 ETH buy price, a
// 100 wei per-unit sell fee, governance-tier buyers pay a quarter of the buy
// price, standard-tier buyers pay three quarters, records age for 20000
// blocks, the treasury keeps a 0.001 ETH reserve, distributes above 0.1 ETH
// and routes 20% of withdrawals to the owner.
func DefaultSettings() Settings {
	return Settings{
		BuyPrice:              big.NewInt(20_000_000_000_000_000),
		SellFee:               big.NewInt(100),
		StandardDiscountBps:   2_500,
		GovernanceDiscountBps: 7_500,
		AgingDelayBlocks:      20_000,
		MinBalance:            big.NewInt(1_000_000_000_000_000),
		MaxBalance:            big.NewInt(100_000_000_000_000_000),
		OwnerShareBps:         2_000,
	}
}

// Clone returns a deep copy so callers can mutate the result freely.
func (s Settings) Clone() Settings {
	clone := s
	clone.BuyPrice = cloneBig(s.BuyPrice)
	clone.SellFee = cloneBig(s.SellFee)
	clone.MinBalance = cloneBig(s.MinBalance)
	clone.MaxBalance = cloneBig(s.MaxBalance)
	return clone
}

func cloneBig(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}

// Validate checks every field against its declared bound. The bound table is
// enforced on every mutation path so no code path can leave a field outside
// its range.
func (s Settings) Validate() error {
	if err := validateBuyPrice(s.BuyPrice); err != nil {
		return err
	}
	if err := validateSellFee(s.SellFee); err != nil {
		return err
	}
	if s.StandardDiscountBps > BpsDenominator {
		return ErrStandardDiscountTooHigh
	}
	if s.GovernanceDiscountBps > BpsDenominator {
		return ErrGovernanceDiscountTooHigh
	}
	if s.AgingDelayBlocks < minAgingDelayBlocks || s.AgingDelayBlocks > maxAgingDelayBlocks {
		return ErrAgingDelayOutOfBounds
	}
	if err := validateMinBalance(s.MinBalance, s.MaxBalance); err != nil {
		return err
	}
	if err := validateMaxBalance(s.MaxBalance, s.MinBalance); err != nil {
		return err
	}
	if s.OwnerShareBps > BpsDenominator {
		return ErrOwnerShareTooHigh
	}
	return nil
}

func validateBuyPrice(v *big.Int) error {
	if v == nil || v.Cmp(minBuyPrice) < 0 || v.Cmp(weiBoundCeiling) > 0 {
		return ErrBuyPriceOutOfBounds
	}
	return nil
}

func validateSellFee(v *big.Int) error {
	if v == nil || v.Cmp(minSellFee) < 0 || v.Cmp(weiBoundCeiling) > 0 {
		return ErrSellFeeOutOfBounds
	}
	return nil
}

func validateMinBalance(v, max *big.Int) error {
	if v == nil || v.Sign() < 0 || v.Cmp(minBalanceCeiling) > 0 {
		return ErrMinBalanceOutOfBounds
	}
	if max != nil && v.Cmp(max) > 0 {
		return ErrMinBalanceOutOfBounds
	}
	return nil
}

func validateMaxBalance(v, min *big.Int) error {
	if v == nil || v.Cmp(weiBoundCeiling) > 0 {
		return ErrMaxBalanceOutOfBounds
	}
	if min != nil && v.Cmp(min) < 0 {
		return ErrMaxBalanceOutOfBounds
	}
	return nil
}
