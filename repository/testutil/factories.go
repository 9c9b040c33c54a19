package testutil

import (
	"time"

	"github.com/google/uuid"

	"cashier/models"
)

// CreateTestAccount creates a test account with default values
func CreateTestAccount(accountID string) *models.Account {
	now := time.Now()
	return &models.Account{
		ID:        accountID,
		Balance:   100000,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CreateTestAccountWithBalance creates a test account with a specific balance
func CreateTestAccountWithBalance(accountID string, balance int64) *models.Account {
	account := CreateTestAccount(accountID)
	account.Balance = balance
	return account
}

// CreateTestDepositRequest creates a pending deposit request
func CreateTestDepositRequest(accountID string, amount int64) *models.TransferRequest {
	return &models.TransferRequest{
		ID:        uuid.New(),
		AccountID: accountID,
		Kind:      models.RequestKindDeposit,
		Amount:    amount,
		Status:    models.RequestStatusPending,
		PaymentMetadata: map[string]any{
			"channel": "test",
		},
	}
}

// CreateTestWithdrawalRequest creates a pending withdrawal request with a
// bank transfer payout method
func CreateTestWithdrawalRequest(accountID string, amount, deduction int64) *models.TransferRequest {
	return &models.TransferRequest{
		ID:              uuid.New(),
		AccountID:       accountID,
		Kind:            models.RequestKindWithdrawal,
		Amount:          amount,
		Status:          models.RequestStatusPending,
		DeductionAmount: deduction,
		FinalAmount:     amount - deduction,
		Method: &models.WithdrawalMethod{
			Kind: models.WithdrawalMethodBank,
			Bank: &models.BankTransferDetails{
				BankName:      "Test Bank",
				AccountNumber: "12345678",
				HolderName:    "Test Holder",
			},
		},
	}
}

// CreateTestLedgerEntry creates a ledger entry with consistent balances
func CreateTestLedgerEntry(accountID string, entryType models.EntryType, before, change int64) *models.LedgerEntry {
	return &models.LedgerEntry{
		ID:            uuid.New(),
		AccountID:     accountID,
		EntryType:     entryType,
		ChangeAmount:  change,
		BalanceBefore: before,
		BalanceAfter:  before + change,
		Metadata: map[string]any{
			"test": true,
		},
	}
}

// CreateTestGameRound creates a settled game round
func CreateTestGameRound(accountID string, ledgerEntryID uuid.UUID, won bool, bet, win int64) *models.GameRound {
	return &models.GameRound{
		ID:            uuid.New(),
		AccountID:     accountID,
		GameID:        "dice",
		BetAmount:     bet,
		WinAmount:     win,
		Won:           won,
		LedgerEntryID: ledgerEntryID,
	}
}
