package errors

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/status"
)

type ErrorDump struct {
	TopMessage string `json:"top_message"`
	Code       Code   `json:"code,omitempty"`
	Reason     Reason `json:"reason,omitempty"`

	Chain []string `json:"chain,omitempty"`

	RPCCode    string `json:"rpc_code,omitempty"`
	RPCMessage string `json:"rpc_message,omitempty"`
}

// Dump flattens err for structured logging, including any gRPC status the
// document store returned underneath the typed error.
func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{
		TopMessage: err.Error(),
	}

	if te := As(err); te != nil {
		d.Code = te.Code()
		d.Reason = te.Reason()
	}

	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	var rpcErr interface{ GRPCStatus() *status.Status }
	if errors.As(err, &rpcErr) {
		if st := rpcErr.GRPCStatus(); st != nil {
			d.RPCCode = st.Code().String()
			d.RPCMessage = st.Message()
		}
	}

	return d
}
