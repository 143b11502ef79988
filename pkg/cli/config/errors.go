package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrConfigNotFound   = goerr.New("configuration file not found")
	ErrInvalidConfig    = goerr.New("invalid configuration")
	ErrUnknownIntent    = goerr.New("unknown intent in configuration")
	ErrDuplicateIntent  = goerr.New("duplicate intent in configuration")
	ErrEmptyKeywordSet  = goerr.New("intent has no keywords")
	ErrInvalidReplySize = goerr.New("reply length limits are inconsistent")
)
