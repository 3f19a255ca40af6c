package modules

import (
	"errors"
	"fmt"
)

const (
	CodespaceProgram = "program"
	CodespaceSystem  = "system"
	CodespaceToken   = "token"
)

// Error is a terminal failure of an operation, reported to the caller as codespace and code.
type Error struct {
	Codespace string
	Code      uint32
	Desc      string
}

func (err *Error) Error() string {
	return err.Desc
}

func register(codespace string, code uint32, desc string) *Error {
	return &Error{Codespace: codespace, Code: code, Desc: desc}
}

var (
	ErrInvalidInstruction    = register(CodespaceProgram, 1, "invalid instruction")
	ErrInvalidArguments      = register(CodespaceProgram, 2, "invalid instruction arguments")
	ErrMissingHandle         = register(CodespaceProgram, 3, "not enough record handles")
	ErrMissingAuthorization  = register(CodespaceProgram, 4, "missing required signature")
	ErrWrongOwner            = register(CodespaceProgram, 5, "record not owned by program")
	ErrAddressMismatch       = register(CodespaceProgram, 6, "derived address mismatch")
	ErrMalformedRecord       = register(CodespaceProgram, 7, "malformed record")
	ErrSemesterLimitExceeded = register(CodespaceProgram, 8, "semester limit exceeded")
	ErrNotYetEligible        = register(CodespaceProgram, 9, "not yet eligible")
	ErrArithmeticOverflow    = register(CodespaceProgram, 10, "arithmetic overflow")
	ErrDivisionHazard        = register(CodespaceProgram, 11, "division by zero")
	ErrCounterOverflow       = register(CodespaceProgram, 12, "counter overflow")
	ErrInvalidFeePercent     = register(CodespaceProgram, 13, "fee percent above 100")
	ErrAccountMismatch       = register(CodespaceProgram, 14, "record relation mismatch")
)

var (
	ErrAccountInUse          = register(CodespaceSystem, 1, "account already in use")
	ErrInsufficientLamports  = register(CodespaceSystem, 2, "insufficient lamports")
	ErrMissingSignature      = register(CodespaceSystem, 3, "missing signature for allocation")
	ErrInvalidAccountPayload = register(CodespaceSystem, 4, "invalid stored account")
)

var (
	ErrInsufficientFunds   = register(CodespaceToken, 1, "insufficient funds")
	ErrDecimalsMismatch    = register(CodespaceToken, 2, "decimals mismatch")
	ErrMintMismatch        = register(CodespaceToken, 3, "mint mismatch")
	ErrUnauthorized        = register(CodespaceToken, 4, "unauthorized authority")
	ErrAccountFrozen       = register(CodespaceToken, 5, "account frozen")
	ErrFreezeFailed        = register(CodespaceToken, 6, "freeze failed")
	ErrAlreadyInitialized  = register(CodespaceToken, 7, "already initialized")
	ErrUninitialized       = register(CodespaceToken, 8, "uninitialized token state")
	ErrInvalidTokenAccount = register(CodespaceToken, 9, "invalid token account")
)

func wrap(err *Error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{err}, args...)...)
}

// ErrorCode maps any error to the codespace and code reported to the caller, 0 for nil.
func ErrorCode(err error) (string, uint32) {
	if err == nil {
		return "", 0
	}
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Codespace, typed.Code
	}
	return "tuition", 1
}
