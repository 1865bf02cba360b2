package service

import (
	"strings"

	"github.com/letsco/splithub/common"
	"github.com/shopspring/decimal"
)

var (
	cardRate     = decimal.RequireFromString("0.015")
	cardFixedFee = decimal.RequireFromString("0.25")
	debitFee     = decimal.NewFromInt(35)
)

// CardFee is amount * 1.5% + 0.25, in the currency of the charge.
func CardFee(amount int64) decimal.Decimal {
	return decimal.NewFromInt(amount).Mul(cardRate).Add(cardFixedFee)
}

// DebitFee is flat whatever the amount.
func DebitFee(amount int64) decimal.Decimal {
	return debitFee
}

// ChargeFees returns the fees shown to the caller for the configured rail.
func (svc *SplithubService) ChargeFees(amount int64) decimal.Decimal {
	if strings.ToLower(svc.Config.PaymentRail) == common.RailCard {
		return CardFee(amount)
	}
	return DebitFee(amount)
}
