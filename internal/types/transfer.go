package types

// TransferStatus transitions: Pending -> (Accepted | Cancelled);
// Accepted -> InProgress -> (Completed | Failed | Cancelled);
// InProgress <-> Paused.
type TransferStatus string

const (
	TransferPending    TransferStatus = "pending"
	TransferAccepted   TransferStatus = "accepted"
	TransferInProgress TransferStatus = "in_progress"
	TransferPaused     TransferStatus = "paused"
	TransferCompleted  TransferStatus = "completed"
	TransferFailed     TransferStatus = "failed"
	TransferCancelled  TransferStatus = "cancelled"
)

// CanTransitionTo reports whether a TransferStatus transition is legal.
func (from TransferStatus) CanTransitionTo(to TransferStatus) bool {
	switch from {
	case TransferPending:
		return to == TransferAccepted || to == TransferCancelled
	case TransferAccepted:
		return to == TransferInProgress || to == TransferCancelled
	case TransferInProgress:
		return to == TransferCompleted || to == TransferFailed || to == TransferCancelled || to == TransferPaused
	case TransferPaused:
		return to == TransferInProgress || to == TransferCancelled
	default:
		return false
	}
}

// FileTransfer tracks one chunked file exchange between a sender and a
// recipient.
type FileTransfer struct {
	TransferID        TransferId     `json:"transfer_id"`
	SenderID          UserId         `json:"sender_id"`
	RecipientID       UserId         `json:"recipient_id"`
	FileName          string         `json:"file_name"`
	FileSize          uint64         `json:"file_size"`
	FileHash          string         `json:"file_hash"`
	BytesTransferred  uint64         `json:"bytes_transferred"`
	Status            TransferStatus `json:"status"`
	Error             *string        `json:"error,omitempty"`
}

// NewFileTransfer creates a transfer record in the Pending state.
func NewFileTransfer(senderID, recipientID UserId, fileName string, fileSize uint64, fileHash string) FileTransfer {
	return FileTransfer{
		TransferID:  NewID(),
		SenderID:    senderID,
		RecipientID: recipientID,
		FileName:    fileName,
		FileSize:    fileSize,
		FileHash:    fileHash,
		Status:      TransferPending,
	}
}

// ProgressPercentage returns how much of the file has arrived, 0-100.
func (t *FileTransfer) ProgressPercentage() float64 {
	if t.FileSize == 0 {
		return 100.0
	}
	return (float64(t.BytesTransferred) / float64(t.FileSize)) * 100.0
}
