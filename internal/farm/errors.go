package farm

import (
	"errors"
	"fmt"
)

var (
	// ErrRPCFailure matches every *RPCError.
	ErrRPCFailure = errors.New("rpc failure")
	// ErrAbiFunctionNotFound is returned when a required method is missing from the ABI.
	ErrAbiFunctionNotFound = errors.New("abi function not found")
)

// RPCError wraps a failed or undecodable contract read.
type RPCError struct {
	Method string
	PoolID uint64
	Err    error
}

func (e *RPCError) Error() string {
	if e.PoolID > 0 {
		return fmt.Sprintf("%s(%d): %v", e.Method, e.PoolID, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Method, e.Err)
}

func (e *RPCError) Unwrap() error {
	return e.Err
}

func (e *RPCError) Is(target error) bool {
	return target == ErrRPCFailure
}
