package apperrors

import "errors"

var (
	ErrRaffleNotFound      = errors.New("raffle not found")
	ErrTicketNotFound      = errors.New("ticket not found")
	ErrAccountNotFound     = errors.New("account not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInternalServerError = errors.New("internal server error")

	// raffle lifecycle
	ErrAlreadyResolved     = errors.New("raffle already resolved")
	ErrNotResolvableYet    = errors.New("raffle not resolvable yet")
	ErrNotResolved         = errors.New("raffle not resolved")
	ErrTicketDidNotWin     = errors.New("ticket did not win")
	ErrNoTicketsSold       = errors.New("no tickets sold")
	ErrPrizeAlreadyClaimed = errors.New("prize already claimed")

	// balances
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrBalanceOverflow     = errors.New("balance overflow")
)
