package domain

import "errors"

var (
	// 授权错误
	ErrNotOwner   = errors.New("caller is not the platform owner")
	ErrNotCreator = errors.New("caller is not the sale creator")

	// 校验错误
	ErrWrongFee             = errors.New("payment does not match the listing fee")
	ErrWrongPayment         = errors.New("payment does not match the purchase cost")
	ErrExceedsLimit         = errors.New("purchase exceeds the token limit")
	ErrInvalidAmount        = errors.New("amount must be positive")
	ErrInvalidMetadata      = errors.New("name and symbol must not be empty")
	ErrInsufficientTreasury = errors.New("insufficient treasury balance")
	ErrInsufficientBalance  = errors.New("insufficient token balance")

	// 生命周期错误
	ErrSaleNotFound     = errors.New("sale not found")
	ErrSaleClosed       = errors.New("sale is closed")
	ErrSaleStillOpen    = errors.New("sale is still open")
	ErrAlreadyDeposited = errors.New("remainder already deposited")
	ErrAlreadyMinted    = errors.New("token supply already minted")
)
