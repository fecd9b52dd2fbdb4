/*
 * cheriot - host bridge seam.
 *
 * Copyright 2026, CHERIoT Simulator Authors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package bridge is the external-interface seam mpact_cheriot.cc shows
// alongside the CLI: a second consumer of the *engine.Engine, reached
// over a line-oriented socket instead of a local terminal. It is a thin
// pass-through only — no renode wire protocol is implemented.
package bridge

import (
	"bufio"
	"fmt"
	"net"

	"github.com/cheriot-sim/cheriot/command/parser"
	"github.com/cheriot-sim/cheriot/engine"
)

// Server accepts a single line-oriented debug client at a time and runs
// each accepted connection's command lines through the same
// command/parser used by the interactive shell.
type Server struct {
	ln  net.Listener
	eng *engine.Engine
}

// Listen opens addr (host:port) and returns a Server bound to eng.
func Listen(addr string, eng *engine.Engine) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("bridge: listen %s: %w", addr, err)
	}
	return &Server{ln: ln, eng: eng}, nil
}

// Addr returns the listener's bound address, useful when addr was ":0".
func (s *Server) Addr() net.Addr {
	return s.ln.Addr()
}

// Close stops accepting new connections.
func (s *Server) Close() error {
	return s.ln.Close()
}

// Serve accepts connections until the listener is closed, handling each
// one serially; only one debug client is meaningful at a time since both
// sides share the same *engine.Engine.
func (s *Server) Serve() error {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return err
		}
		s.handle(conn)
	}
}

func (s *Server) handle(conn net.Conn) {
	defer conn.Close()
	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		quit, err := parser.ProcessCommand(scanner.Text(), s.eng)
		if err != nil {
			fmt.Fprintln(conn, "error: "+err.Error())
			continue
		}
		if quit {
			return
		}
		fmt.Fprintln(conn, "ok")
	}
}
