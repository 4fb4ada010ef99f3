package types

import "fmt"

// ErrorKind classifies a LanChatError the way spec.md's error-handling
// design separates propagation policy: Network/Protocol errors are
// recovered locally by the component loop that hit them, Crypto errors
// surface as an Error event, and initialization failures abort startup.
type ErrorKind int

const (
	ErrUnknown ErrorKind = iota
	ErrNetwork
	ErrProtocol
	ErrCrypto
	ErrPeerNotFound
	ErrFileTransfer
	ErrInvalidData
	ErrIO
)

func (k ErrorKind) String() string {
	switch k {
	case ErrNetwork:
		return "network"
	case ErrProtocol:
		return "protocol"
	case ErrCrypto:
		return "crypto"
	case ErrPeerNotFound:
		return "peer_not_found"
	case ErrFileTransfer:
		return "file_transfer"
	case ErrInvalidData:
		return "invalid_data"
	case ErrIO:
		return "io"
	default:
		return "unknown"
	}
}

// LanChatError is the error type returned across package boundaries,
// mirroring the original Rust ChatError enum (Network/Protocol/Crypto/
// PeerNotFound/FileTransfer/Io/InvalidData).
type LanChatError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *LanChatError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *LanChatError) Unwrap() error {
	return e.Cause
}

func newErr(kind ErrorKind, msg string, cause error) *LanChatError {
	return &LanChatError{Kind: kind, Message: msg, Cause: cause}
}

func NetworkError(msg string, cause error) *LanChatError     { return newErr(ErrNetwork, msg, cause) }
func ProtocolError(msg string, cause error) *LanChatError    { return newErr(ErrProtocol, msg, cause) }
func CryptoError(msg string, cause error) *LanChatError      { return newErr(ErrCrypto, msg, cause) }
func PeerNotFoundError(peerID string) *LanChatError {
	return newErr(ErrPeerNotFound, peerID, nil)
}
func FileTransferError(msg string, cause error) *LanChatError {
	return newErr(ErrFileTransfer, msg, cause)
}
func InvalidDataError(msg string, cause error) *LanChatError {
	return newErr(ErrInvalidData, msg, cause)
}
func IOError(msg string, cause error) *LanChatError { return newErr(ErrIO, msg, cause) }

// KindOf extracts the ErrorKind from err if it (or something it wraps) is
// a *LanChatError, otherwise ErrUnknown.
func KindOf(err error) ErrorKind {
	var lerr *LanChatError
	for err != nil {
		if le, ok := err.(*LanChatError); ok {
			lerr = le
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	if lerr == nil {
		return ErrUnknown
	}
	return lerr.Kind
}
