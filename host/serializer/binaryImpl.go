package serializer

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/mbennett/easel/host/common"
	"github.com/mbennett/easel/lib/document"
)

// NewBinarySerializer creates a new serializer using a custom binary format
// optimized for speed and efficiency
func NewBinarySerializer() IHostSerializer {
	return &binarySerializerImpl{}
}

// binarySerializerImpl implements IHostSerializer using a custom binary format
type binarySerializerImpl struct {
}

// Bit flags to indicate which optional fields are present
const (
	hasDocument  byte = 1 << 0
	hasCommands  byte = 1 << 1
	hasOptions   byte = 1 << 2
	hasResponses byte = 1 << 3
	hasLayers    byte = 1 << 4
	hasErr       byte = 1 << 5
)

// Smallest possible encoded size per element, used to validate counts
// against the remaining payload before allocating element slices.
const (
	minCommandSize   = 13 // name length + layer count + locked + params length
	minResponseSize  = 13 // command length + ok + body length + err length
	minLayerInfoSize = 21 // id + name length + parent + locked
)

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IHostSerializer)
// --------------------------------------------------------------------------

func (b binarySerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	var buf bytes.Buffer

	// Message type plus a placeholder for the flags byte
	buf.WriteByte(byte(msg.MsgType))
	buf.WriteByte(0)

	var flags byte = 0

	// Handle Document
	if msg.Document != "" {
		flags |= hasDocument
		writeString(&buf, string(msg.Document))
	}

	// Handle Commands
	if msg.Commands != nil {
		flags |= hasCommands
		writeCount(&buf, len(msg.Commands))
		for _, cmd := range msg.Commands {
			writeString(&buf, cmd.Name)
			writeCount(&buf, len(cmd.Layers))
			for _, l := range cmd.Layers {
				writeUint64(&buf, uint64(l))
			}
			writeBool(&buf, cmd.Locked)
			writeBytes(&buf, cmd.Params)
		}
	}

	// Handle Options (fixed-size block, present only if any option is set)
	if msg.Options != (common.PlayOptions{}) {
		flags |= hasOptions
		writeBool(&buf, msg.Options.Modal)
		writeBool(&buf, msg.Options.Silent)
		writeUint64(&buf, msg.Options.TimeoutMS)
	}

	// Handle Responses
	if msg.Responses != nil {
		flags |= hasResponses
		writeCount(&buf, len(msg.Responses))
		for _, resp := range msg.Responses {
			writeString(&buf, resp.Command)
			writeBool(&buf, resp.Ok)
			writeBytes(&buf, resp.Body)
			writeString(&buf, resp.Err)
		}
	}

	// Handle Layers
	if msg.Layers != nil {
		flags |= hasLayers
		writeCount(&buf, len(msg.Layers))
		for _, l := range msg.Layers {
			writeUint64(&buf, uint64(l.ID))
			writeString(&buf, l.Name)
			writeUint64(&buf, uint64(l.Parent))
			writeBool(&buf, l.Locked)
		}
	}

	// Handle Err
	if msg.Err != "" {
		flags |= hasErr
		writeString(&buf, msg.Err)
	}

	// Set flags byte after knowing which fields are present
	result := buf.Bytes()
	result[1] = flags

	return result, nil
}

func (b binarySerializerImpl) Deserialize(data []byte, msg *common.Message) error {
	// Check minimum size (MsgType + flags)
	if len(data) < 2 {
		return fmt.Errorf("data too short for message header")
	}

	// Read message type and flags
	msg.MsgType = common.MessageType(data[0])
	flags := data[1]

	r := &binaryReader{data: data, pos: 2}

	// Read Document if present
	if flags&hasDocument != 0 {
		s, err := r.readString("document")
		if err != nil {
			return err
		}
		msg.Document = document.DocumentID(s)
	} else {
		msg.Document = ""
	}

	// Read Commands if present
	if flags&hasCommands != 0 {
		count, err := r.readCount("command count", minCommandSize)
		if err != nil {
			return err
		}
		msg.Commands = make([]common.Command, count)
		for i := range msg.Commands {
			cmd := &msg.Commands[i]
			if cmd.Name, err = r.readString("command name"); err != nil {
				return err
			}
			layerCount, err := r.readCount("command layer count", 8)
			if err != nil {
				return err
			}
			if layerCount > 0 {
				cmd.Layers = make([]document.LayerID, layerCount)
				for j := range cmd.Layers {
					v, err := r.readUint64("command layer id")
					if err != nil {
						return err
					}
					cmd.Layers[j] = document.LayerID(v)
				}
			}
			if cmd.Locked, err = r.readBool("command locked flag"); err != nil {
				return err
			}
			params, err := r.readBytes("command params")
			if err != nil {
				return err
			}
			if len(params) > 0 {
				cmd.Params = json.RawMessage(params)
			}
		}
	} else {
		msg.Commands = nil
	}

	// Read Options if present
	if flags&hasOptions != 0 {
		var err error
		if msg.Options.Modal, err = r.readBool("options modal flag"); err != nil {
			return err
		}
		if msg.Options.Silent, err = r.readBool("options silent flag"); err != nil {
			return err
		}
		if msg.Options.TimeoutMS, err = r.readUint64("options timeout"); err != nil {
			return err
		}
	} else {
		msg.Options = common.PlayOptions{}
	}

	// Read Responses if present
	if flags&hasResponses != 0 {
		count, err := r.readCount("response count", minResponseSize)
		if err != nil {
			return err
		}
		msg.Responses = make([]common.Response, count)
		for i := range msg.Responses {
			resp := &msg.Responses[i]
			if resp.Command, err = r.readString("response command"); err != nil {
				return err
			}
			if resp.Ok, err = r.readBool("response ok flag"); err != nil {
				return err
			}
			body, err := r.readBytes("response body")
			if err != nil {
				return err
			}
			if len(body) > 0 {
				resp.Body = json.RawMessage(body)
			}
			if resp.Err, err = r.readString("response err"); err != nil {
				return err
			}
		}
	} else {
		msg.Responses = nil
	}

	// Read Layers if present
	if flags&hasLayers != 0 {
		count, err := r.readCount("layer count", minLayerInfoSize)
		if err != nil {
			return err
		}
		msg.Layers = make([]document.LayerInfo, count)
		for i := range msg.Layers {
			l := &msg.Layers[i]
			id, err := r.readUint64("layer id")
			if err != nil {
				return err
			}
			l.ID = document.LayerID(id)
			if l.Name, err = r.readString("layer name"); err != nil {
				return err
			}
			parent, err := r.readUint64("layer parent")
			if err != nil {
				return err
			}
			l.Parent = document.LayerID(parent)
			if l.Locked, err = r.readBool("layer locked flag"); err != nil {
				return err
			}
		}
	} else {
		msg.Layers = nil
	}

	// Read Err if present
	if flags&hasErr != 0 {
		s, err := r.readString("err")
		if err != nil {
			return err
		}
		msg.Err = s
	} else {
		msg.Err = ""
	}

	return nil
}

// --------------------------------------------------------------------------
// Write Helpers
// --------------------------------------------------------------------------

func writeCount(buf *bytes.Buffer, n int) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(n))
	buf.Write(b[:])
}

func writeUint64(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	buf.Write(b[:])
}

func writeBool(buf *bytes.Buffer, v bool) {
	if v {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}
}

func writeString(buf *bytes.Buffer, s string) {
	writeCount(buf, len(s))
	buf.WriteString(s)
}

func writeBytes(buf *bytes.Buffer, b []byte) {
	writeCount(buf, len(b))
	buf.Write(b)
}

// --------------------------------------------------------------------------
// Read Helpers (with bounds checks)
// --------------------------------------------------------------------------

// binaryReader walks the serialized data with explicit bounds checks so a
// truncated or corrupted message yields an error instead of a panic.
type binaryReader struct {
	data []byte
	pos  int
}

// readCount reads an element count. minElemSize is the smallest possible
// encoded size of one element; counts whose minimum payload cannot fit in
// the remaining data are rejected here, before the count ever drives an
// allocation.
func (r *binaryReader) readCount(field string, minElemSize int) (int, error) {
	if r.pos+4 > len(r.data) {
		return 0, fmt.Errorf("data too short for %s", field)
	}
	v := binary.BigEndian.Uint32(r.data[r.pos : r.pos+4])
	r.pos += 4
	if int64(v)*int64(minElemSize) > int64(len(r.data)-r.pos) {
		return 0, fmt.Errorf("%s %d exceeds remaining data", field, v)
	}
	return int(v), nil
}

func (r *binaryReader) readUint64(field string) (uint64, error) {
	if r.pos+8 > len(r.data) {
		return 0, fmt.Errorf("data too short for %s", field)
	}
	v := binary.BigEndian.Uint64(r.data[r.pos : r.pos+8])
	r.pos += 8
	return v, nil
}

func (r *binaryReader) readBool(field string) (bool, error) {
	if r.pos+1 > len(r.data) {
		return false, fmt.Errorf("data too short for %s", field)
	}
	v := r.data[r.pos] != 0
	r.pos += 1
	return v, nil
}

func (r *binaryReader) readString(field string) (string, error) {
	b, err := r.readBytes(field)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *binaryReader) readBytes(field string) ([]byte, error) {
	n, err := r.readCount(field+" length", 1)
	if err != nil {
		return nil, err
	}
	if n < 0 || r.pos+n > len(r.data) {
		return nil, fmt.Errorf("data too short for %s", field)
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}
