package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrValidation         = errors.New("validation failed")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrConflict           = errors.New("conflicting state")
	ErrOperationFailed    = errors.New("storage operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrInvalidExecContext = errors.New("invalid transaction handle")

	// Coupon validation outcomes
	ErrCouponInactive      = errors.New("coupon is inactive")
	ErrCouponExpired       = errors.New("coupon has expired")
	ErrCouponUsageCap      = errors.New("coupon usage cap reached")
	ErrCouponNotApplicable = errors.New("coupon not applicable to plan")
)
