package cron

import "errors"

var (
	ErrJobNotFound = errors.New("cron job not found")
	ErrJobRunning  = errors.New("cron job is already running")
)
