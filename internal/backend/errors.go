package backend

import (
	"errors"
	"fmt"
)

// Kind classifies where a call failed.
type Kind int

const (
	// KindServer means a response arrived with a non-2xx status.
	KindServer Kind = iota + 1
	// KindNetwork means the request never reached the server.
	KindNetwork
	// KindRequest covers every other local failure.
	KindRequest
)

func (k Kind) String() string {
	switch k {
	case KindServer:
		return "server"
	case KindNetwork:
		return "network"
	case KindRequest:
		return "request"
	default:
		return "unknown"
	}
}

// Fixed messages shown when the server gave no detail of its own.
const (
	MsgServer  = "Erro no servidor"
	MsgNetwork = "Erro de conexão com o servidor"
	MsgRequest = "Erro na requisição"
)

// Error is the single failure shape returned by every backend call.
// Message is always human readable and safe to show to the user.
type Error struct {
	Kind     Kind
	Status   int
	Endpoint string
	Message  string
	Err      error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Detail renders the error with its classification, for logs.
func (e *Error) Detail() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s %s (%d): %s", e.Kind, e.Endpoint, e.Status, e.Message)
	}
	return fmt.Sprintf("%s %s: %s", e.Kind, e.Endpoint, e.Message)
}

// AsError extracts a *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var be *Error
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}

func serverError(endpoint string, status int, detail string) *Error {
	if detail == "" {
		detail = MsgServer
	}
	return &Error{Kind: KindServer, Status: status, Endpoint: endpoint, Message: detail}
}

func networkError(endpoint string, err error) *Error {
	return &Error{Kind: KindNetwork, Endpoint: endpoint, Message: MsgNetwork, Err: err}
}

func requestError(endpoint string, err error) *Error {
	return &Error{Kind: KindRequest, Endpoint: endpoint, Message: MsgRequest, Err: err}
}
