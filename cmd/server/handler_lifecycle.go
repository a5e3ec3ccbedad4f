package main

func (s *Server) handleInitialize(id interface{}, params InitializeParams) error {
	result := InitializeResult{
		Capabilities: ServerCapabilities{
			TextDocumentSync: 2, // incremental: content changes carry ranges
		},
	}
	return s.sendResponse(ResponseMessage{Jsonrpc: "2.0", ID: id, Result: result})
}
