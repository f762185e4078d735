// Package nativehost implements the native messaging host the cookiewatch
// browser extension talks to. Messages on stdin and stdout are a 4-byte
// little-endian length followed by a JSON payload.
package nativehost

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"

	"github.com/laurynn-wl/cookie-project/common"
)

// MaxMessageSize limits native messaging payloads in both directions.
const MaxMessageSize = common.MaxMessageSize

// Request is a call from the extension. ID correlates the response.
type Request struct {
	ID      int             `json:"id"`
	Method  string          `json:"method"`
	Message json.RawMessage `json:"message,omitempty"`
}

// Response is sent back for every Request.
type Response struct {
	ID     int    `json:"id"`
	Ok     bool   `json:"ok"`
	Error  string `json:"error,omitempty"`
	Result any    `json:"result,omitempty"`
}

// ReadMessage reads one length-prefixed frame.
func ReadMessage(r io.Reader) ([]byte, error) {
	var length uint32
	if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
		return nil, err
	}
	if length > uint32(MaxMessageSize) {
		return nil, fmt.Errorf("message too large: %d bytes (max %d)", length, MaxMessageSize)
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// WriteMessage writes msg as one length-prefixed frame.
func WriteMessage(w io.Writer, msg []byte) error {
	if len(msg) > MaxMessageSize {
		return fmt.Errorf("message too large: %d bytes (max %d)", len(msg), MaxMessageSize)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(msg))); err != nil {
		return err
	}
	_, err := w.Write(msg)
	return err
}

func ParseRequest(b []byte) (*Request, error) {
	var r Request
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// MakeSuccessResponse encodes an ok response carrying result.
func MakeSuccessResponse(id int, result any) []byte {
	b, err := json.Marshal(Response{ID: id, Ok: true, Result: result})
	if err != nil {
		return MakeErrorResponse(id, fmt.Errorf("encode result: %w", err))
	}
	return b
}

// MakeErrorResponse encodes a failed response.
func MakeErrorResponse(id int, err error) []byte {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	b, _ := json.Marshal(Response{ID: id, Ok: false, Error: msg})
	return b
}
