package prompts

import "errors"

// Prompt library errors.
var (
	ErrInvalidStage = errors.New("unknown generation stage")
	ErrLoad         = errors.New("load prompt overrides")
)
