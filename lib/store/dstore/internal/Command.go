package internal

import (
	"encoding/binary"
	"fmt"

	"github.com/ValentinKolb/rbKV/lib/db"
	"github.com/cockroachdb/errors"
)

// CommandType defines the possible operations for the state machine.
type CommandType uint8

const (
	CommandTSet         CommandType = iota // Insert or update an entry.
	CommandTSetE                           // Insert or update an entry with expiration and deletion times.
	CommandTSetIfUnset                     // Insert an entry if it does not exist.
	CommandTExpire                         // Expire the value of an entry immediately.
	CommandTDelete                         // Delete an entry.
	CommandTDeleteRange                    // Remove every entry in the key window [Key, End).
)

func (ct CommandType) String() string {
	switch ct {
	case CommandTSet:
		return "Set"
	case CommandTSetE:
		return "SetE"
	case CommandTSetIfUnset:
		return "SetIfUnset"
	case CommandTExpire:
		return "Expire"
	case CommandTDelete:
		return "Delete"
	case CommandTDeleteRange:
		return "DeleteRange"
	default:
		return fmt.Sprintf("Unknown(%d)", ct)
	}
}

// ToDBFeature converts a CommandType to the corresponding db.Feature.
// This can be used for checking if the database supports a certain operation.
func (ct CommandType) ToDBFeature() (db.Feature, error) {
	switch ct {
	case CommandTSet:
		return db.FeatureSet, nil
	case CommandTSetE:
		return db.FeatureSetE, nil
	case CommandTSetIfUnset:
		return db.FeatureSetEIfUnset, nil
	case CommandTExpire:
		return db.FeatureExpire, nil
	case CommandTDelete:
		return db.FeatureDelete, nil
	case CommandTDeleteRange:
		return db.FeatureDeleteRange, nil
	default:
		return 0, errors.Newf("unknown command type %d", ct)
	}
}

// headerSize is Type + ExpireIn + DeleteIn + KeyLen + EndLen
const headerSize = 1 + 8 + 8 + 4 + 4

// Command represents a command to be executed by the state machine (a single entry in the raft log)
type Command struct {
	Type     CommandType
	Key      string
	End      string // exclusive upper bound, only used by CommandTDeleteRange
	ExpireIn uint64
	DeleteIn uint64
	Value    []byte
}

// SizeBytes returns the exact number of bytes needed to serialize this command
func (command *Command) SizeBytes() int {
	return headerSize + len(command.Key) + len(command.End) + len(command.Value)
}

// Serialize serializes a command into a byte array with the format:
// 1 byte for operation type,
// 8 bytes for expireIn,
// 8 bytes for deleteIn,
// 4 bytes for key length (big endian),
// 4 bytes for end length (big endian),
// N bytes for key data,
// N bytes for end data,
// N bytes for value data (optional)
func (command *Command) Serialize() []byte {
	result := make([]byte, command.SizeBytes())

	result[0] = byte(command.Type)
	binary.BigEndian.PutUint64(result[1:9], command.ExpireIn)
	binary.BigEndian.PutUint64(result[9:17], command.DeleteIn)
	binary.BigEndian.PutUint32(result[17:21], uint32(len(command.Key)))
	binary.BigEndian.PutUint32(result[21:25], uint32(len(command.End)))

	off := headerSize
	off += copy(result[off:], command.Key)
	off += copy(result[off:], command.End)
	copy(result[off:], command.Value)

	return result
}

// Deserialize extracts all Command fields from a byte array.
func (command *Command) Deserialize(data []byte) error {
	if len(data) < headerSize {
		return errors.New("data too short for command")
	}

	command.Type = CommandType(data[0])
	command.ExpireIn = binary.BigEndian.Uint64(data[1:9])
	command.DeleteIn = binary.BigEndian.Uint64(data[9:17])
	keyLen := int(binary.BigEndian.Uint32(data[17:21]))
	endLen := int(binary.BigEndian.Uint32(data[21:25]))

	if len(data) < headerSize+keyLen {
		return errors.Newf("data too short for key of length %d", keyLen)
	}
	if len(data) < headerSize+keyLen+endLen {
		return errors.Newf("data too short for end of length %d", endLen)
	}

	off := headerSize
	command.Key = string(data[off : off+keyLen])
	off += keyLen
	command.End = string(data[off : off+endLen])
	off += endLen

	// Extract value if present
	if valueLen := len(data) - off; valueLen > 0 {
		// Reuse existing buffer if possible to reduce allocations
		if command.Value == nil || cap(command.Value) < valueLen {
			command.Value = make([]byte, valueLen)
		} else {
			command.Value = command.Value[:valueLen]
		}
		copy(command.Value, data[off:])
	} else {
		command.Value = nil
	}

	return nil
}
