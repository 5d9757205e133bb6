// SPDX-License-Identifier: MIT
package udp

import (
	"net"
	"sync"

	"github.com/pkg/errors"

	applog "aura/internal/log"
)

// Sender transmits pre-packed frame packets over a connected UDP
// socket.
type Sender struct {
	conn       *net.UDPConn
	targetAddr *net.UDPAddr
	mu         sync.Mutex // protects conn during Close
	closed     bool
}

// NewSender dials the target address, "host:port".
func NewSender(targetAddress string) (*Sender, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", targetAddress)
	if err != nil {
		return nil, errors.Wrapf(err, "resolving UDP target %q", targetAddress)
	}

	conn, err := net.DialUDP("udp", nil, udpAddr)
	if err != nil {
		return nil, errors.Wrapf(err, "dialing UDP target %q", targetAddress)
	}

	applog.Infof("UDP: sending frames to %s", conn.RemoteAddr())

	return &Sender{
		conn:       conn,
		targetAddr: udpAddr,
	}, nil
}

// Send transmits one packet. Safe for concurrent use.
func (s *Sender) Send(data []byte) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return errors.New("udp sender is closed")
	}
	_, err := s.conn.Write(data)
	s.mu.Unlock()

	if err != nil {
		return errors.Wrap(err, "sending UDP packet")
	}
	return nil
}

// Close closes the socket. Safe to call more than once.
func (s *Sender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if s.conn != nil {
		err := s.conn.Close()
		s.conn = nil
		if err != nil {
			return errors.Wrap(err, "closing UDP connection")
		}
	}
	return nil
}
