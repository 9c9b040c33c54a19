package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBpsShare_Flooring(t *testing.T) {
	// 5% of 1000 = 50 exactly
	assert.Equal(t, int64(50), bpsShare(1000, 500))

	// 5% of 999 = 49.95, floors to 49
	assert.Equal(t, int64(49), bpsShare(999, 500))

	// 2% of 50000 = 1000 exactly
	assert.Equal(t, int64(1000), bpsShare(50000, 200))

	// 2% of 101 = 2.02, floors to 2
	assert.Equal(t, int64(2), bpsShare(101, 200))

	// Small amounts floor to zero
	assert.Equal(t, int64(0), bpsShare(19, 500))
}

func TestBpsShare_NonPositiveInputs(t *testing.T) {
	assert.Equal(t, int64(0), bpsShare(0, 500))
	assert.Equal(t, int64(0), bpsShare(-1000, 500))
	assert.Equal(t, int64(0), bpsShare(1000, 0))
	assert.Equal(t, int64(0), bpsShare(1000, -500))
}

func TestReferralBonus(t *testing.T) {
	// The single-hop referral credit at the default 5% rate
	assert.Equal(t, int64(50), ReferralBonus(1000, 500))
	assert.Equal(t, int64(500), ReferralBonus(10000, 500))
}

func TestDepositBonus(t *testing.T) {
	assert.Equal(t, int64(50), DepositBonus(1000, 500))
	assert.Equal(t, int64(0), DepositBonus(10, 500))
}

func TestWithdrawalFee(t *testing.T) {
	assert.Equal(t, int64(1000), WithdrawalFee(50000, 200))
	assert.Equal(t, int64(0), WithdrawalFee(49, 200))
}
