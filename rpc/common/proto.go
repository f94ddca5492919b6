package common

import (
	"encoding/json"

	"github.com/ValentinKolb/rbKV/lib/db"
	"github.com/cockroachdb/errors"
)

// --------------------------------------------------------------------------
// Message Structure
// --------------------------------------------------------------------------

// Message represents a single message used for both requests and responses.
// Which fields are used depends on the type of message.
type Message struct {
	// Type of message
	MsgType MessageType `json:"msg_type"`

	// General fields
	Key      string `json:"key,omitempty"`      // Used for: Set, Get, Has, Expire, Delete, Seek, start of Range, Count, DeleteRange
	End      string `json:"end,omitempty"`      // Used for: Range, Count, DeleteRange (exclusive, empty means unbounded)
	ExpireIn uint64 `json:"expireIn,omitempty"` // Used for: Set operations
	DeleteIn uint64 `json:"deleteIn,omitempty"` // Used for: Set operations
	Value    []byte `json:"value,omitempty"`    // Used for: Set (request), Get and Seek (response)
	Limit    int    `json:"limit,omitempty"`    // Used for: Range (<= 0 means no limit)
	Reverse  bool   `json:"reverse,omitempty"`  // Used for: Range

	// Response only fields
	Ok      bool        `json:"ok,omitempty"`      // Used for: Get, Has, Seek responses
	Count   uint64      `json:"count,omitempty"`   // Used for: Count, DeleteRange responses
	Entries []db.KVPair `json:"entries,omitempty"` // Used for: Range responses
	Err     string      `json:"err,omitempty"`     // Empty if no error, otherwise contains the error message

	// Meta information
	Meta []byte `json:"meta,omitempty"` // Unused, can be used for additional Adapters
}

// withErr sets the error string of a response if err is not nil.
func (m *Message) withErr(err error) *Message {
	if err != nil {
		m.Err = err.Error()
	}
	return m
}

// --------------------------------------------------------------------------
// Message Factory Functions
// --------------------------------------------------------------------------

// NewSetRequest creates a new Set request
func NewSetRequest(key string, value []byte) *Message {
	return &Message{MsgType: MsgTKVSet, Key: key, Value: value}
}

// NewSetResponse creates a new Set response
func NewSetResponse(err error) *Message {
	return (&Message{MsgType: MsgTKVSet}).withErr(err)
}

// NewSetERequest creates a new SetE request
func NewSetERequest(key string, value []byte, expireIn, deleteIn uint64) *Message {
	return &Message{
		MsgType:  MsgTKVSetE,
		Key:      key,
		Value:    value,
		ExpireIn: expireIn,
		DeleteIn: deleteIn,
	}
}

// NewSetEResponse creates a new SetE response
func NewSetEResponse(err error) *Message {
	return (&Message{MsgType: MsgTKVSetE}).withErr(err)
}

// NewSetEIfUnsetRequest creates a new SetEIfUnset request
func NewSetEIfUnsetRequest(key string, value []byte, expireIn, deleteIn uint64) *Message {
	return &Message{
		MsgType:  MsgTKVSetEIfUnset,
		Key:      key,
		Value:    value,
		ExpireIn: expireIn,
		DeleteIn: deleteIn,
	}
}

// NewSetEIfUnsetResponse creates a new SetEIfUnset response
func NewSetEIfUnsetResponse(err error) *Message {
	return (&Message{MsgType: MsgTKVSetEIfUnset}).withErr(err)
}

// NewExpireRequest creates a new Expire request
func NewExpireRequest(key string) *Message {
	return &Message{MsgType: MsgTKVExpire, Key: key}
}

// NewExpireResponse creates a new Expire response
func NewExpireResponse(err error) *Message {
	return (&Message{MsgType: MsgTKVExpire}).withErr(err)
}

// NewDeleteRequest creates a new Delete request
func NewDeleteRequest(key string) *Message {
	return &Message{MsgType: MsgTKVDelete, Key: key}
}

// NewDeleteResponse creates a new Delete response
func NewDeleteResponse(err error) *Message {
	return (&Message{MsgType: MsgTKVDelete}).withErr(err)
}

// NewDeleteRangeRequest creates a new DeleteRange request for the window [start, end)
func NewDeleteRangeRequest(start, end string) *Message {
	return &Message{MsgType: MsgTKVDeleteRange, Key: start, End: end}
}

// NewDeleteRangeResponse creates a new DeleteRange response
func NewDeleteRangeResponse(removed uint64, err error) *Message {
	return (&Message{MsgType: MsgTKVDeleteRange, Count: removed}).withErr(err)
}

// NewGetRequest creates a new Get request
func NewGetRequest(key string) *Message {
	return &Message{MsgType: MsgTKVGet, Key: key}
}

// NewGetResponse creates a new Get response
func NewGetResponse(value []byte, ok bool, err error) *Message {
	return (&Message{MsgType: MsgTKVGet, Ok: ok, Value: value}).withErr(err)
}

// NewHasRequest creates a new Has request
func NewHasRequest(key string) *Message {
	return &Message{MsgType: MsgTKVHas, Key: key}
}

// NewHasResponse creates a new Has response
func NewHasResponse(ok bool, err error) *Message {
	return (&Message{MsgType: MsgTKVHas, Ok: ok}).withErr(err)
}

// NewRangeRequest creates a new Range request for the window [start, end)
func NewRangeRequest(start, end string, limit int, reverse bool) *Message {
	return &Message{
		MsgType: MsgTKVRange,
		Key:     start,
		End:     end,
		Limit:   limit,
		Reverse: reverse,
	}
}

// NewRangeResponse creates a new Range response
func NewRangeResponse(entries []db.KVPair, err error) *Message {
	return (&Message{MsgType: MsgTKVRange, Entries: entries}).withErr(err)
}

// NewCountRequest creates a new Count request for the window [start, end)
func NewCountRequest(start, end string) *Message {
	return &Message{MsgType: MsgTKVCount, Key: start, End: end}
}

// NewCountResponse creates a new Count response
func NewCountResponse(count uint64, err error) *Message {
	return (&Message{MsgType: MsgTKVCount, Count: count}).withErr(err)
}

// NewSeekRequest creates a new Seek request
func NewSeekRequest(key string) *Message {
	return &Message{MsgType: MsgTKVSeek, Key: key}
}

// NewSeekResponse creates a new Seek response. The found key is returned in Key.
func NewSeekResponse(entry db.KVPair, ok bool, err error) *Message {
	return (&Message{MsgType: MsgTKVSeek, Key: entry.Key, Value: entry.Value, Ok: ok}).withErr(err)
}

// NewCustomRequest creates a new Custom request
func NewCustomRequest(meta []byte) *Message {
	return &Message{MsgType: MsgTCustom, Meta: meta}
}

// NewCustomResponse creates a new Custom response
func NewCustomResponse(meta []byte, err error) *Message {
	return (&Message{MsgType: MsgTCustom, Meta: meta}).withErr(err)
}

// NewErrorResponse creates a new Error response
func NewErrorResponse(err string) *Message {
	return &Message{MsgType: MsgTError, Err: err}
}

// --------------------------------------------------------------------------
// Message Type Definition
// --------------------------------------------------------------------------

// MessageType defines the type of message used in RPC communication.
type MessageType uint8

// messageTypeNames maps every known MessageType to its wire name (used by JSON and metrics).
var messageTypeNames = map[MessageType]string{
	MsgTSuccess:       "success",
	MsgTError:         "error",
	MsgTKVSet:         "set",
	MsgTKVSetE:        "setE",
	MsgTKVSetEIfUnset: "setEIfUnset",
	MsgTKVExpire:      "expire",
	MsgTKVDelete:      "delete",
	MsgTKVGet:         "get",
	MsgTKVHas:         "has",
	MsgTKVRange:       "range",
	MsgTKVCount:       "count",
	MsgTKVSeek:        "seek",
	MsgTKVDeleteRange: "deleteRange",
	MsgTCustom:        "custom",
}

// String returns the string representation of a MessageType.
func (t MessageType) String() string {
	if name, ok := messageTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// ParseMessageType returns the MessageType with the given name.
func ParseMessageType(s string) (MessageType, error) {
	for t, name := range messageTypeNames {
		if name == s {
			return t, nil
		}
	}
	return MsgTUnknown, errors.Newf("unknown message type: %s", s)
}

// MarshalJSON implements the json.Marshaller interface for MessageType.
// This allows MessageType to be serialized as a string in JSON.
func (t MessageType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for MessageType.
// This allows MessageType to be deserialized from a string in JSON.
func (t *MessageType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseMessageType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// --------------------------------------------------------------------------
// Message Type Constants
// --------------------------------------------------------------------------

const (
	// General message types

	MsgTUnknown MessageType = iota
	MsgTSuccess             // Indicates a successful operation
	MsgTError               // Indicates an error occurred

	// IStore operations

	MsgTKVSet         // Set a key-value pair
	MsgTKVSetE        // Set a key-value pair with expiration
	MsgTKVSetEIfUnset // Set a key-value pair if not already set
	MsgTKVExpire      // Expire a key
	MsgTKVDelete      // Delete a key-value pair
	MsgTKVGet         // Get a value by key
	MsgTKVHas         // Check if a key exists
	MsgTKVRange       // List live entries of a key window in order
	MsgTKVCount       // Count live entries of a key window
	MsgTKVSeek        // Find the first live entry at or after a key
	MsgTKVDeleteRange // Remove every entry of a key window

	// Custom operations

	MsgTCustom // Custom operation type
)
