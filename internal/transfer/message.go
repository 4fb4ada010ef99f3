// Package transfer implements out-of-band chunked file transfer on
// TCP port 37844, reusing messaging's length-prefixed framing. It is
// grounded on original_source/crates/transfer (protocol.rs's
// TransferMessage enum and service.rs's send/receive lifecycle) and
// on the teacher's connection-handling idiom in pkg/chat, generalized
// from single-shot JSON lines to chunked binary transfer with
// mandatory hash verification on completion.
package transfer

import (
	"encoding/json"

	"lanchat/internal/types"
)

// ChunkSize is the fixed amount of file data carried per DataChunk.
const ChunkSize = 64 * 1024

// Kind tags which field of TransferMessage is populated.
type Kind string

const (
	KindTransferRequest  Kind = "transfer_request"
	KindTransferAccept   Kind = "transfer_accept"
	KindTransferReject   Kind = "transfer_reject"
	KindStartTransfer    Kind = "start_transfer"
	KindDataChunk        Kind = "data_chunk"
	KindTransferComplete Kind = "transfer_complete"
	KindTransferFailed   Kind = "transfer_failed"
	KindPause            Kind = "pause"
	KindResume           Kind = "resume"
	KindCancel           Kind = "cancel"
)

// TransferMessage is the self-describing tagged union framed over the
// transfer transport.
type TransferMessage struct {
	Kind Kind `json:"kind"`

	TransferID types.TransferId `json:"transfer_id"`

	// TransferRequest
	SenderID types.UserId `json:"sender_id,omitempty"`
	FileName string       `json:"file_name,omitempty"`
	FileSize uint64       `json:"file_size,omitempty"`
	FileHash string       `json:"file_hash,omitempty"`

	// TransferReject / TransferFailed
	Reason string `json:"reason,omitempty"`
	Error  string `json:"error,omitempty"`

	// DataChunk
	ChunkIndex uint64 `json:"chunk_index,omitempty"`
	Data       []byte `json:"data,omitempty"`

	// Resume
	FromChunk uint64 `json:"from_chunk,omitempty"`
}

func NewTransferRequest(transferID types.TransferId, senderID types.UserId, fileName string, fileSize uint64, fileHash string) TransferMessage {
	return TransferMessage{
		Kind:       KindTransferRequest,
		TransferID: transferID,
		SenderID:   senderID,
		FileName:   fileName,
		FileSize:   fileSize,
		FileHash:   fileHash,
	}
}

func NewTransferAccept(transferID types.TransferId) TransferMessage {
	return TransferMessage{Kind: KindTransferAccept, TransferID: transferID}
}

func NewTransferReject(transferID types.TransferId, reason string) TransferMessage {
	return TransferMessage{Kind: KindTransferReject, TransferID: transferID, Reason: reason}
}

func NewStartTransfer(transferID types.TransferId) TransferMessage {
	return TransferMessage{Kind: KindStartTransfer, TransferID: transferID}
}

func NewDataChunk(transferID types.TransferId, chunkIndex uint64, data []byte) TransferMessage {
	return TransferMessage{Kind: KindDataChunk, TransferID: transferID, ChunkIndex: chunkIndex, Data: data}
}

func NewTransferComplete(transferID types.TransferId) TransferMessage {
	return TransferMessage{Kind: KindTransferComplete, TransferID: transferID}
}

func NewTransferFailed(transferID types.TransferId, errMsg string) TransferMessage {
	return TransferMessage{Kind: KindTransferFailed, TransferID: transferID, Error: errMsg}
}

func NewPause(transferID types.TransferId) TransferMessage {
	return TransferMessage{Kind: KindPause, TransferID: transferID}
}

func NewResume(transferID types.TransferId, fromChunk uint64) TransferMessage {
	return TransferMessage{Kind: KindResume, TransferID: transferID, FromChunk: fromChunk}
}

func NewCancel(transferID types.TransferId) TransferMessage {
	return TransferMessage{Kind: KindCancel, TransferID: transferID}
}

// Encode serializes the message for transmission.
func (m *TransferMessage) Encode() ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, types.ProtocolError("failed to encode transfer message", err)
	}
	return data, nil
}

// DecodeMessage parses a TransferMessage from a frame payload.
func DecodeMessage(data []byte) (*TransferMessage, error) {
	var m TransferMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, types.ProtocolError("failed to decode transfer message", err)
	}
	return &m, nil
}
