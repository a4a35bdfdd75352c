package model

import "errors"

// Event-level validation errors (§4.5 step 1, §7 "Event-level failure").
var (
	ErrInvalidStyleIndex = errors.New("model: style index out of range")
	ErrEmptyText         = errors.New("model: event text is empty")
)
