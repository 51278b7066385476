package multicall

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// ErrCallFailed marks a sub-call that the batch contract reported as unsuccessful.
var ErrCallFailed = errors.New("sub-call reported failure")

type Call struct {
	Target common.Address
	ABI    *abi.ABI
	Method string
	Args   []any
}

func NewCall(target common.Address, contractABI *abi.ABI, method string, args ...any) Call {
	return Call{
		Target: target,
		ABI:    contractABI,
		Method: method,
		Args:   args,
	}
}

// CallError attributes a failure to a call position.
type CallError struct {
	Index  int
	Method string
	Err    error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("call %d (%s) failed: %v", e.Index, e.Method, e.Err)
}

func (e *CallError) Unwrap() error {
	return e.Err
}

type Result struct {
	ReturnData []byte
	Err        error

	method *abi.Method
}

func (r Result) Failed() bool {
	return r.Err != nil
}

// Decode unpacks the return data into out following the method's outputs.
// Methods with a single output need a pointer to that value, e.g. **big.Int
// for a uint256. Methods with several outputs decode into a struct pointer.
func (r Result) Decode(out any) error {
	if r.Err != nil {
		return r.Err
	}
	if r.method == nil {
		return errors.New("result has no method attached")
	}

	values, err := r.method.Outputs.Unpack(r.ReturnData)
	if err != nil {
		return fmt.Errorf("failed to unpack %s: %w", r.method.Name, err)
	}
	if err := r.method.Outputs.Copy(out, values); err != nil {
		return fmt.Errorf("failed to copy %s output: %w", r.method.Name, err)
	}

	return nil
}

// DecodeAs is Decode with the target allocated for the caller.
func DecodeAs[T any](r Result) (T, error) {
	var out T
	err := r.Decode(&out)
	return out, err
}

type encodedCall struct {
	target common.Address
	data   []byte
	method *abi.Method
}

func encode(calls []Call) ([]encodedCall, error) {
	encoded := make([]encodedCall, len(calls))
	for i, c := range calls {
		if c.ABI == nil {
			return nil, &CallError{Index: i, Method: c.Method, Err: errors.New("missing abi")}
		}
		method, ok := c.ABI.Methods[c.Method]
		if !ok {
			return nil, &CallError{Index: i, Method: c.Method, Err: errors.New("method not found in abi")}
		}
		data, err := c.ABI.Pack(c.Method, c.Args...)
		if err != nil {
			return nil, &CallError{Index: i, Method: c.Method, Err: fmt.Errorf("failed to encode: %w", err)}
		}
		encoded[i] = encodedCall{target: c.Target, data: data, method: &method}
	}
	return encoded, nil
}
