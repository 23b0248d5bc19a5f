// Copyright 2021-2025 The Connect Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package memhttp

import (
	"context"
	"errors"
	"net"
)

var errListenerClosed = errors.New("listener closed")

// pipeListener is a net.Listener whose connections are the server ends of
// net.Pipe pairs handed over by DialContext.
type pipeListener struct {
	addr    pipeAddr
	pending chan net.Conn
	done    context.Context //nolint:containedctx
	close   context.CancelFunc
}

func newPipeListener(addr string) *pipeListener {
	done, cancel := context.WithCancel(context.Background())
	return &pipeListener{
		addr:    pipeAddr(addr),
		pending: make(chan net.Conn),
		done:    done,
		close:   cancel,
	}
}

func (l *pipeListener) Accept() (net.Conn, error) {
	select {
	case conn := <-l.pending:
		return conn, nil
	case <-l.done.Done():
		return nil, l.opError("accept", errListenerClosed)
	}
}

func (l *pipeListener) Close() error {
	l.close()
	return nil
}

func (l *pipeListener) Addr() net.Addr {
	return l.addr
}

// DialContext connects to the listener. The network and address are
// ignored: every dial reaches this listener.
func (l *pipeListener) DialContext(ctx context.Context, _, _ string) (net.Conn, error) {
	serverEnd, clientEnd := net.Pipe()
	select {
	case l.pending <- serverEnd:
		return clientEnd, nil
	case <-ctx.Done():
		return nil, l.opError("dial", ctx.Err())
	case <-l.done.Done():
		return nil, l.opError("dial", errListenerClosed)
	}
}

func (l *pipeListener) opError(op string, err error) *net.OpError {
	return &net.OpError{Op: op, Net: l.addr.Network(), Addr: l.addr, Err: err}
}

type pipeAddr string

func (pipeAddr) Network() string  { return "memory" }
func (a pipeAddr) String() string { return string(a) }
