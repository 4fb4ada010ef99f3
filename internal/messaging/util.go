package messaging

import (
	"errors"
	"net"
)

func errIsClosedNetwork(err error) bool {
	return errors.Is(err, net.ErrClosed)
}
