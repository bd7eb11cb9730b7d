package httperr

import (
	"fmt"
	"testing"

	"propshare-backend/internal/ledger"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_MapsWrappedSentinels(t *testing.T) {
	cases := []struct {
		err  error
		code int
		kind string
	}{
		{ledger.ErrUnauthorized, fiber.StatusForbidden, "unauthorized"},
		{ledger.ErrNotFound, fiber.StatusNotFound, "not_found"},
		{ledger.ErrInvalidArgument, fiber.StatusBadRequest, "invalid_argument"},
		{ledger.ErrSoldOut, fiber.StatusConflict, "sold_out"},
		{ledger.ErrAmountMismatch, fiber.StatusConflict, "amount_mismatch"},
		{ledger.ErrNoVerification, fiber.StatusConflict, "no_verification"},
		{ledger.ErrNoShareholders, fiber.StatusConflict, "no_shareholders"},
		{ledger.ErrNothingToWithdraw, fiber.StatusConflict, "nothing_to_withdraw"},
		{ledger.ErrNotAShareholder, fiber.StatusConflict, "not_a_shareholder"},
		{ledger.ErrAlreadyVoted, fiber.StatusConflict, "already_voted"},
		{ledger.ErrAlreadyExecuted, fiber.StatusConflict, "already_executed"},
		{ledger.ErrNotPassed, fiber.StatusConflict, "not_passed"},
		{fmt.Errorf("disk on fire"), fiber.StatusInternalServerError, "internal"},
	}
	for _, tc := range cases {
		code, kind := Status(fmt.Errorf("%w: property 9", tc.err))
		assert.Equal(t, tc.code, code, tc.err.Error())
		assert.Equal(t, tc.kind, kind, tc.err.Error())
	}
}

func TestAmount(t *testing.T) {
	w, err := Amount("1500", "")
	require.NoError(t, err)
	assert.Equal(t, "1500", w.String())

	w, err = Amount("", "0.25")
	require.NoError(t, err)
	assert.Equal(t, "250000000000000000", w.String())

	_, err = Amount("1", "1")
	assert.Error(t, err)
	_, err = Amount("", "")
	assert.Error(t, err)
	_, err = Amount("abc", "")
	assert.Error(t, err)
}
