package model

import "errors"

// Common errors used across the application
var (
	// Auth errors
	ErrAuthFailed       = errors.New("authentication failed")
	ErrNotAuthenticated = errors.New("not authenticated")

	// Race errors
	ErrRaceNotFound   = errors.New("race not found")
	ErrRaceFull       = errors.New("race is full")
	ErrNotHost        = errors.New("player is not the host")
	ErrAlreadyStarted = errors.New("race already started")
)
