package kaproxy

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/kbukum/kaproxy-go/errors"
)

// EncodingBase64 marks a consumed value that the proxy sent base64 encoded.
const EncodingBase64 = "base64"

const noMessageSentinel = "no message in broker"

// ProduceResult holds the fields the proxy returns for a produced message,
// with every key lower-cased.
type ProduceResult map[string]any

// Topic returns the topic the message was written to.
func (r ProduceResult) Topic() string {
	s, _ := r["topic"].(string)
	return s
}

// Partition returns the partition the message was written to.
func (r ProduceResult) Partition() (int64, bool) {
	return toInt64(r["partition"])
}

// Offset returns the offset assigned to the message.
func (r ProduceResult) Offset() (int64, bool) {
	return toInt64(r["offset"])
}

// Message is a consumed message. Value is always the decoded payload.
type Message struct {
	// Value is the message payload.
	Value []byte
	// Encoding is the encoding the proxy used on the wire, e.g. "base64".
	Encoding string
	// Metadata holds every other field of the proxy response unmodified.
	Metadata map[string]any
}

// Field returns a metadata field.
func (m *Message) Field(name string) (any, bool) {
	v, ok := m.Metadata[name]
	return v, ok
}

// Key returns the message key.
func (m *Message) Key() string {
	s, _ := m.Metadata["key"].(string)
	return s
}

// Topic returns the topic the message was read from.
func (m *Message) Topic() string {
	s, _ := m.Metadata["topic"].(string)
	return s
}

// Partition returns the partition the message was read from.
func (m *Message) Partition() (int64, bool) {
	return toInt64(m.Metadata["partition"])
}

// Offset returns the message offset.
func (m *Message) Offset() (int64, bool) {
	return toInt64(m.Metadata["offset"])
}

// decodeRecord parses a proxy body as a JSON object. Numbers stay json.Number
// so offsets keep full precision.
func decodeRecord(statusCode int, body []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var record map[string]any
	if err := dec.Decode(&record); err != nil {
		return nil, errors.InvalidResponse(statusCode, "response is not a JSON object").WithCause(err)
	}
	if record == nil {
		return nil, errors.InvalidResponse(statusCode, "response is not a JSON object")
	}
	return record, nil
}

// errorText returns the record's error field, or "" when it is absent,
// empty, null or false.
func errorText(record map[string]any) string {
	switch v := record["error"].(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if !v {
			return ""
		}
	}
	return fmt.Sprint(record["error"])
}

func isNoMessage(text string) bool {
	return strings.EqualFold(text, noMessageSentinel)
}

// lowerKeys lower-cases every top-level key. On a collision the key that
// was already lower case wins.
func lowerKeys(record map[string]any) map[string]any {
	out := make(map[string]any, len(record))
	for k, v := range record {
		lk := strings.ToLower(k)
		if _, taken := out[lk]; taken && lk != k {
			continue
		}
		out[lk] = v
	}
	return out
}

// newMessage splits value and encoding from the metadata and decodes a
// base64 value.
func newMessage(statusCode int, record map[string]any) (*Message, error) {
	msg := &Message{Metadata: make(map[string]any, len(record))}
	for k, v := range record {
		if k != "value" && k != "encoding" {
			msg.Metadata[k] = v
		}
	}
	msg.Encoding, _ = record["encoding"].(string)

	raw, err := valueBytes(record["value"])
	if err != nil {
		return nil, errors.InvalidResponse(statusCode, err.Error())
	}
	if msg.Encoding != EncodingBase64 {
		msg.Value = raw
		return msg, nil
	}

	decoded, err := decodeBase64(raw)
	if err != nil {
		return nil, errors.InvalidResponse(statusCode, "malformed base64 value").WithCause(err)
	}
	msg.Value = decoded
	return msg, nil
}

func valueBytes(v any) ([]byte, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		return []byte(val), nil
	case json.Number:
		return []byte(val.String()), nil
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return nil, fmt.Errorf("unsupported value type %T", v)
		}
		return b, nil
	}
}

// decodeBase64 accepts padded and unpadded standard encoding.
func decodeBase64(raw []byte) ([]byte, error) {
	out, err := base64.StdEncoding.DecodeString(string(raw))
	if err == nil {
		return out, nil
	}
	if out, rawErr := base64.RawStdEncoding.DecodeString(string(raw)); rawErr == nil {
		return out, nil
	}
	return nil, err
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case float64:
		return int64(n), n == float64(int64(n))
	case int:
		return int64(n), true
	case int64:
		return n, true
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		return i, err == nil
	default:
		return 0, false
	}
}
