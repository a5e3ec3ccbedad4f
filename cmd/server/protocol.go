package main

// JSON-RPC envelope, unchanged from the LSP wire shape the transport is
// layered over (request/response/notification framing, not LSP's language
// features — this server only ever advertises document sync).
type RequestMessage struct {
	Jsonrpc string      `json:"jsonrpc"`
	ID      interface{} `json:"id,omitempty"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

type ResponseMessage struct {
	Jsonrpc string      `json:"jsonrpc"`
	ID      interface{} `json:"id,omitempty"`
	Result  interface{} `json:"result"`
	Error   *Error      `json:"error,omitempty"`
}

type NotificationMessage struct {
	Jsonrpc string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

type Error struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Initialize handshake. Capabilities are deliberately narrow: this server
// relays document sync events into the concat engine and emits the
// resulting concat document changes — it never answers hover, definition,
// or completion requests itself.
type InitializeParams struct {
	ProcessID *int    `json:"processId,omitempty"`
	RootURI   *string `json:"rootUri,omitempty"`
}

type InitializeResult struct {
	Capabilities ServerCapabilities `json:"capabilities"`
}

type ServerCapabilities struct {
	TextDocumentSync int `json:"textDocumentSync"`
}

// Position/Range keep a serialization-clean outbound shape: only
// {line, character} and {start, end}, no extra fields.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Inbound document-sync notifications.
type TextDocumentItem struct {
	URI     string `json:"uri"`
	Version int    `json:"version"`
	Text    string `json:"text"`
}

type VersionedTextDocumentIdentifier struct {
	URI     string `json:"uri"`
	Version int    `json:"version"`
}

type TextDocumentIdentifier struct {
	URI string `json:"uri"`
}

type TextDocumentContentChangeEvent struct {
	Range *Range `json:"range,omitempty"`
	Text  string `json:"text"`
}

type DidOpenParams struct {
	TextDocument TextDocumentItem `json:"textDocument"`
	ForceAppend  bool             `json:"forceAppend,omitempty"`
}

type DidChangeParams struct {
	TextDocument   VersionedTextDocumentIdentifier  `json:"textDocument"`
	ContentChanges []TextDocumentContentChangeEvent `json:"contentChanges"`
}

type DidCloseParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
}

// RefreshParams is the custom "notebook/refresh" notification: a full
// cell-order re-seed, outside the LSP document-sync vocabulary.
type RefreshParams struct {
	Cells []RefreshCellParams `json:"cells"`
}

type RefreshCellParams struct {
	TextDocument TextDocumentItem `json:"textDocument"`
}

// ConcatDocumentChangeParams is the outbound notification carrying the
// server-initiated edit the client applies to its mirror of the concat
// document.
type ConcatDocumentChangeParams struct {
	TextDocument   VersionedTextDocumentIdentifier  `json:"textDocument"`
	ContentChanges []OutboundTextDocumentChangeEvent `json:"contentChanges"`
}

type OutboundTextDocumentChangeEvent struct {
	Range       Range  `json:"range"`
	RangeOffset *int   `json:"rangeOffset,omitempty"`
	RangeLength int    `json:"rangeLength"`
	Text        string `json:"text"`
}
