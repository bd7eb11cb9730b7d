package ledger

import "errors"

var (
	// ErrUnauthorized indicates the caller lacks the capability or role the operation requires.
	ErrUnauthorized = errors.New("ledger: unauthorized")

	// ErrNotFound indicates an unknown property or proposal.
	ErrNotFound = errors.New("ledger: not found")

	// ErrInvalidArgument indicates a non-positive amount or quantity, or malformed input.
	ErrInvalidArgument = errors.New("ledger: invalid argument")

	// ErrSoldOut indicates a purchase larger than the remaining shares.
	ErrSoldOut = errors.New("ledger: not enough shares remaining")

	// ErrAmountMismatch indicates a deposit that differs from the pending verified amount.
	ErrAmountMismatch = errors.New("ledger: deposit does not match verified rent")

	// ErrNoVerification indicates a deposit with no verified rent pending.
	ErrNoVerification = errors.New("ledger: no verified rent pending")

	// ErrNoShareholders indicates rent accrual on a property with no shares sold.
	ErrNoShareholders = errors.New("ledger: property has no shareholders")

	// ErrNothingToWithdraw indicates a withdrawal with zero entitlement.
	ErrNothingToWithdraw = errors.New("ledger: nothing to withdraw")

	// ErrNotAShareholder indicates the caller holds no shares in the property.
	ErrNotAShareholder = errors.New("ledger: not a shareholder")

	// ErrAlreadyVoted indicates a second vote by the same address on a proposal.
	ErrAlreadyVoted = errors.New("ledger: already voted")

	// ErrAlreadyExecuted indicates the proposal reached its terminal state.
	ErrAlreadyExecuted = errors.New("ledger: proposal already executed")

	// ErrNotPassed indicates execution of a proposal whose votes for do not exceed votes against.
	ErrNotPassed = errors.New("ledger: proposal has not passed")
)
