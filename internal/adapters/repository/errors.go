package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound         = errors.New("record not found")
	ErrDuplicateEmail   = errors.New("email already registered")
	ErrAlreadyCompleted = errors.New("task already completed")
	ErrNegativeBalance  = errors.New("xp balance cannot go below zero")
)
