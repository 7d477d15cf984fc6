package synth

import "errors"

var (
	// ErrNotConfigured is returned by operations that need the lookup tables.
	ErrNotConfigured = errors.New("synth is not configured")
	// ErrInvalidConfig is returned by Configure for unusable rates or sizes.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrNoFreeVoice means every voice is sounding; the note was dropped.
	ErrNoFreeVoice = errors.New("no free voice")
	// ErrVoiceNotFound means no active voice matched (channel, key).
	ErrVoiceNotFound = errors.New("voice not found")
	// ErrBankSize means a bulk instrument or percussion update had the wrong
	// number of entries. The entries that were present are still applied.
	ErrBankSize = errors.New("unexpected bank size")
)
