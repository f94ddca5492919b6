package serializer

import (
	"bytes"
	"encoding/gob"

	"github.com/ValentinKolb/rbKV/rpc/common"
	"github.com/cockroachdb/errors"
)

// NewGOBSerializer creates a new serializer using Go's binary gob format.
// A fresh encoder is used per message, so every payload carries its own type description.
func NewGOBSerializer() IRPCSerializer {
	return gobSerializerImpl{}
}

type gobSerializerImpl struct{}

func (gobSerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(msg); err != nil {
		return nil, errors.Wrapf(err, "gob encode %s", msg.MsgType)
	}
	return buf.Bytes(), nil
}

func (gobSerializerImpl) Deserialize(b []byte, msg *common.Message) error {
	// gob leaves zero-valued fields untouched, so start from an empty message
	*msg = common.Message{}
	return errors.Wrap(gob.NewDecoder(bytes.NewReader(b)).Decode(msg), "gob decode")
}
