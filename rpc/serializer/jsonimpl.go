package serializer

import (
	"encoding/json"

	"github.com/ValentinKolb/rbKV/rpc/common"
	"github.com/cockroachdb/errors"
)

// NewJSONSerializer creates a new serializer using json encoding.
// Message types are encoded by name (see common.MessageType.MarshalJSON).
func NewJSONSerializer() IRPCSerializer {
	return jsonSerializerImpl{}
}

type jsonSerializerImpl struct{}

func (jsonSerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	b, err := json.Marshal(msg)
	return b, errors.Wrapf(err, "json encode %s", msg.MsgType)
}

func (jsonSerializerImpl) Deserialize(b []byte, msg *common.Message) error {
	*msg = common.Message{}
	return errors.Wrap(json.Unmarshal(b, msg), "json decode")
}
