// Package errors provides structured error handling for keytree.
// It defines sentinel errors, exit codes, and helpers for adding
// context, details, and suggestions to errors.
//
//nolint:revive // Package name intentionally shadows stdlib for domain-specific error handling
package errors

import (
	"errors"
	"fmt"
	"sort"
)

// Exit codes returned by the CLI.
const (
	ExitSuccess  = 0 // Successful execution
	ExitGeneral  = 1 // General/unknown error
	ExitInput    = 2 // Invalid input
	ExitNotFound = 4 // Resource not found
)

// KeytreeError is the structured error type for keytree.
type KeytreeError struct {
	Code       string            // Machine-readable error code
	Message    string            // Human-readable message
	Details    map[string]string // Additional context
	Suggestion string            // Actionable suggestion for user
	Cause      error             // Underlying error
	ExitCode   int               // Exit code for CLI
}

func (e *KeytreeError) Error() string {
	msg := e.Message

	// Include details in error message (sorted for deterministic output)
	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			msg = fmt.Sprintf("%s (%s: %s)", msg, k, e.Details[k])
		}
	}

	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *KeytreeError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for KeytreeError.
func (e *KeytreeError) Is(target error) bool {
	var t *KeytreeError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// Sentinel errors.
var (
	ErrGeneral = &KeytreeError{
		Code:     "GENERAL_ERROR",
		Message:  "an error occurred",
		ExitCode: ExitGeneral,
	}

	ErrInvalidInput = &KeytreeError{
		Code:     "INVALID_INPUT",
		Message:  "invalid input",
		ExitCode: ExitInput,
	}

	// Mnemonic errors.
	ErrInvalidMnemonic = &KeytreeError{
		Code:     "INVALID_MNEMONIC",
		Message:  "invalid mnemonic phrase",
		ExitCode: ExitInput,
	}

	// ErrUnknownWord is a kind of ErrInvalidMnemonic; errors.Is matches both.
	ErrUnknownWord = &KeytreeError{
		Code:     "UNKNOWN_WORD",
		Message:  "word is not in the wordlist",
		Cause:    ErrInvalidMnemonic,
		ExitCode: ExitInput,
	}

	ErrInvalidEntropyLength = &KeytreeError{
		Code:     "INVALID_ENTROPY_LENGTH",
		Message:  "entropy must be a multiple of 32 bits between 128 and 256 bits",
		ExitCode: ExitInput,
	}

	ErrInvalidSeed = &KeytreeError{
		Code:     "INVALID_SEED",
		Message:  "seed must be between 16 and 64 bytes",
		ExitCode: ExitInput,
	}

	// Derivation errors.
	ErrInvalidChildKey = &KeytreeError{
		Code:     "INVALID_CHILD_KEY",
		Message:  "derived key is invalid, retry with the next index",
		ExitCode: ExitGeneral,
	}

	ErrHardenedFromPublic = &KeytreeError{
		Code:     "HARDENED_FROM_PUBLIC",
		Message:  "cannot derive a hardened child from a public key",
		ExitCode: ExitInput,
	}

	ErrDepthExceeded = &KeytreeError{
		Code:     "DEPTH_EXCEEDED",
		Message:  "maximum derivation depth of 255 exceeded",
		ExitCode: ExitInput,
	}

	ErrInvalidDerivationPath = &KeytreeError{
		Code:     "INVALID_DERIVATION_PATH",
		Message:  "invalid derivation path",
		ExitCode: ExitInput,
	}

	ErrInvalidPublicKey = &KeytreeError{
		Code:     "INVALID_PUBLIC_KEY",
		Message:  "invalid public key",
		ExitCode: ExitInput,
	}

	ErrInvalidPrivateKey = &KeytreeError{
		Code:     "INVALID_PRIVATE_KEY",
		Message:  "invalid private key",
		ExitCode: ExitInput,
	}

	// Encoding errors.
	ErrChecksumMismatch = &KeytreeError{
		Code:     "CHECKSUM_MISMATCH",
		Message:  "checksum mismatch",
		ExitCode: ExitInput,
	}

	ErrMalformedSerialization = &KeytreeError{
		Code:     "MALFORMED_SERIALIZATION",
		Message:  "malformed serialization",
		ExitCode: ExitInput,
	}

	// Coin and address errors.
	ErrUnsupportedCoin = &KeytreeError{
		Code:     "UNSUPPORTED_COIN",
		Message:  "unsupported coin",
		ExitCode: ExitInput,
	}

	ErrUnsupportedAddress = &KeytreeError{
		Code:     "UNSUPPORTED_ADDRESS",
		Message:  "unsupported address type for this key",
		ExitCode: ExitInput,
	}

	// Config-specific errors.
	ErrConfigNotFound = &KeytreeError{
		Code:     "CONFIG_NOT_FOUND",
		Message:  "configuration file not found",
		ExitCode: ExitNotFound,
	}

	ErrConfigInvalid = &KeytreeError{
		Code:     "CONFIG_INVALID",
		Message:  "configuration file is invalid",
		ExitCode: ExitInput,
	}

	ErrUnknownConfigKey = &KeytreeError{
		Code:     "UNKNOWN_CONFIG_KEY",
		Message:  "unknown config key",
		ExitCode: ExitInput,
	}
)

// New creates a new KeytreeError with the given code and message.
func New(code, message string) *KeytreeError {
	return &KeytreeError{
		Code:     code,
		Message:  message,
		ExitCode: ExitGeneral,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}

	msg := fmt.Sprintf(format, args...)

	var ke *KeytreeError
	if errors.As(err, &ke) {
		return &KeytreeError{
			Code:       ke.Code,
			Message:    fmt.Sprintf("%s: %s", msg, ke.Message),
			Details:    ke.Details,
			Suggestion: ke.Suggestion,
			Cause:      err,
			ExitCode:   ke.ExitCode,
		}
	}

	return &KeytreeError{
		Code:     "GENERAL_ERROR",
		Message:  msg,
		Cause:    err,
		ExitCode: ExitGeneral,
	}
}

// WithDetails adds details to an error.
func WithDetails(err error, details map[string]string) error {
	if err == nil {
		return nil
	}

	var ke *KeytreeError
	if errors.As(err, &ke) {
		return &KeytreeError{
			Code:       ke.Code,
			Message:    ke.Message,
			Details:    details,
			Suggestion: ke.Suggestion,
			Cause:      ke.Cause,
			ExitCode:   ke.ExitCode,
		}
	}

	return &KeytreeError{
		Code:     "GENERAL_ERROR",
		Message:  err.Error(),
		Details:  details,
		Cause:    err,
		ExitCode: ExitGeneral,
	}
}

// WithSuggestion adds a suggestion to an error.
func WithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}

	var ke *KeytreeError
	if errors.As(err, &ke) {
		return &KeytreeError{
			Code:       ke.Code,
			Message:    ke.Message,
			Details:    ke.Details,
			Suggestion: suggestion,
			Cause:      ke.Cause,
			ExitCode:   ke.ExitCode,
		}
	}

	return &KeytreeError{
		Code:       "GENERAL_ERROR",
		Message:    err.Error(),
		Suggestion: suggestion,
		Cause:      err,
		ExitCode:   ExitGeneral,
	}
}

// Newf returns a copy of a sentinel with a formatted reason as its cause.
// The result still matches the sentinel with errors.Is.
func Newf(sentinel *KeytreeError, format string, args ...any) error {
	return &KeytreeError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		Suggestion: sentinel.Suggestion,
		Cause:      fmt.Errorf(format, args...), //nolint:err113 // reason is caller supplied
		ExitCode:   sentinel.ExitCode,
	}
}

// ExitCode returns the appropriate exit code for an error.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var ke *KeytreeError
	if errors.As(err, &ke) {
		return ke.ExitCode
	}

	return ExitGeneral
}

// Code returns the error code for an error.
func Code(err error) string {
	var ke *KeytreeError
	if errors.As(err, &ke) {
		return ke.Code
	}
	return "GENERAL_ERROR"
}

// Is wraps errors.Is for convenience.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience.
func As(err error, target any) bool {
	return errors.As(err, target)
}
