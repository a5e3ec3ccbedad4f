package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/funvibe/notebook-concat/internal/concatdoc"
)

// Server is the stdio JSON-RPC transport. Unlike the per-file document map
// the LSP document-sync surface usually keeps, there is exactly one logical
// document here — the concatenated notebook — so the server owns a single
// *concatdoc.Engine behind a mutex rather than a map[uri]*DocumentState —
// the engine itself is not internally locked, so callers must serialize.
type Server struct {
	engine *concatdoc.Engine
	mu     sync.Mutex
	writer io.Writer
	log    *logrus.Logger
}

func NewServer(engine *concatdoc.Engine, writer io.Writer, log *logrus.Logger) *Server {
	if writer == nil {
		writer = os.Stdout
	}
	return &Server{engine: engine, writer: writer, log: log}
}

// Start reads Content-Length-framed JSON-RPC messages from stdin until EOF,
// the same header-parsing loop as the LSP transport this is adapted from.
func (s *Server) Start() {
	reader := bufio.NewReader(os.Stdin)

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if err != io.EOF {
				s.logf("error reading header: %v", err)
			}
			break
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			continue
		}

		if !strings.HasPrefix(line, "Content-Length: ") {
			continue
		}
		contentLengthStr := strings.TrimPrefix(line, "Content-Length: ")
		contentLength, err := strconv.Atoi(contentLengthStr)
		if err != nil {
			s.logf("error parsing Content-Length: %v", err)
			continue
		}

		for {
			sep, err := reader.ReadString('\n')
			if err != nil {
				s.logf("error reading separator: %v", err)
				return
			}
			if strings.TrimRight(sep, "\r\n") == "" {
				break
			}
		}

		content := make([]byte, contentLength)
		if _, err := io.ReadFull(reader, content); err != nil {
			s.logf("error reading content: %v", err)
			break
		}

		if err := s.handleMessage(content); err != nil {
			s.logf("error handling message: %v", err)
		}
	}
}

func (s *Server) handleMessage(content []byte) error {
	var base struct {
		ID     interface{}     `json:"id,omitempty"`
		Method string          `json:"method"`
		Params json.RawMessage `json:"params,omitempty"`
	}
	if err := json.Unmarshal(content, &base); err != nil {
		return fmt.Errorf("unmarshal message: %w", err)
	}

	if base.ID != nil {
		return s.handleRequest(base.ID, base.Method, base.Params)
	}
	return s.handleNotification(base.Method, base.Params)
}

func (s *Server) handleRequest(id interface{}, method string, params json.RawMessage) error {
	switch method {
	case "initialize":
		var p InitializeParams
		if len(params) > 0 {
			if err := json.Unmarshal(params, &p); err != nil {
				return err
			}
		}
		return s.handleInitialize(id, p)
	case "shutdown":
		return s.sendResponse(ResponseMessage{Jsonrpc: "2.0", ID: id, Result: nil})
	default:
		return s.sendResponse(ResponseMessage{
			Jsonrpc: "2.0",
			ID:      id,
			Error:   &Error{Code: -32601, Message: fmt.Sprintf("method not found: %s", method)},
		})
	}
}

func (s *Server) handleNotification(method string, params json.RawMessage) error {
	switch method {
	case "initialized":
		return nil
	case "textDocument/didOpen":
		var p DidOpenParams
		if err := json.Unmarshal(params, &p); err != nil {
			return err
		}
		return s.handleDidOpen(p)
	case "textDocument/didChange":
		var p DidChangeParams
		if err := json.Unmarshal(params, &p); err != nil {
			return err
		}
		return s.handleDidChange(p)
	case "textDocument/didClose":
		var p DidCloseParams
		if err := json.Unmarshal(params, &p); err != nil {
			return err
		}
		return s.handleDidClose(p)
	case "notebook/refresh":
		var p RefreshParams
		if err := json.Unmarshal(params, &p); err != nil {
			return err
		}
		return s.handleRefresh(p)
	case "exit":
		os.Exit(0)
		return nil
	default:
		return nil
	}
}

func (s *Server) sendResponse(r ResponseMessage) error         { return s.sendMessage(r) }
func (s *Server) sendNotification(n NotificationMessage) error { return s.sendMessage(n) }

func (s *Server) sendMessage(message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	content := string(data)
	_, err = fmt.Fprintf(s.writer, "Content-Length: %d\r\n\r\n%s", len(content), content)
	return err
}

func (s *Server) logf(format string, args ...interface{}) {
	if s.log != nil {
		s.log.Errorf(format, args...)
	}
}
