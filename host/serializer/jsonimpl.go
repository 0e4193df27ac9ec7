package serializer

import (
	"encoding/json"

	"github.com/mbennett/easel/host/common"
)

// NewJSONSerializer creates a new serializer using the JSON format
func NewJSONSerializer() IHostSerializer {
	return &jsonSerializerImpl{}
}

// jsonSerializerImpl implements IHostSerializer using encoding/json
type jsonSerializerImpl struct{}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IHostSerializer)
// --------------------------------------------------------------------------

func (j jsonSerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	return json.Marshal(msg)
}

func (j jsonSerializerImpl) Deserialize(b []byte, msg *common.Message) error {
	return json.Unmarshal(b, msg)
}
