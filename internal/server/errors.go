package server

import "errors"

var (
	ErrFeedClosed         = errors.New("feed is closed")
	ErrFeedAlreadyRunning = errors.New("feed is already running")
	ErrMaxViewersReached  = errors.New("maximum viewers reached")
	ErrInvalidConfig      = errors.New("invalid feed configuration")
)
