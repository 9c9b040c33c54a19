package service

// bpsShare computes floor(amount * bps / 10000) in integer arithmetic.
// Non-positive inputs yield zero.
func bpsShare(amount, bps int64) int64 {
	if amount <= 0 || bps <= 0 {
		return 0
	}
	return amount * bps / 10000
}

// ReferralBonus computes the credit owed to a referrer when a referred
// account's deposit is approved. Pure; invoked only from deposit approval,
// at most once per approval.
func ReferralBonus(depositAmount, rateBps int64) int64 {
	return bpsShare(depositAmount, rateBps)
}

// DepositBonus computes the bonus credited alongside an approved deposit
func DepositBonus(depositAmount, rateBps int64) int64 {
	return bpsShare(depositAmount, rateBps)
}

// WithdrawalFee computes the fee deducted from a withdrawal's payout.
// Display and reporting only until approval finalizes it; the escrow debit
// is always the full requested amount.
func WithdrawalFee(withdrawalAmount, rateBps int64) int64 {
	return bpsShare(withdrawalAmount, rateBps)
}
