package kaproxy

import (
	"net/url"
	"time"

	"github.com/kbukum/kaproxy-go/errors"
)

const (
	// DefaultProduceTimeout bounds a produce exchange.
	DefaultProduceTimeout = 1000 * time.Millisecond
	// DefaultBlockingTimeout is how long the proxy waits for a message.
	DefaultBlockingTimeout = 3000 * time.Millisecond
	// MinBlockingTimeout is the smallest accepted blocking timeout.
	MinBlockingTimeout = 1000 * time.Millisecond
)

// Validation messages returned as INVALID_ARGUMENT.
const (
	msgTopicOrValueEmpty  = "topic or value can't be empty"
	msgKeyEmptyForHash    = "the key can't be empty while the partitioner is hash"
	msgGroupOrTopicEmpty  = "group or topic name can't be empty"
	msgBlockingTooShort   = "blocking timeout should be > 1000ms"
	msgTimeoutNotPositive = "produce timeout must be positive"
)

// Partitioner selects how the proxy picks a partition for a message.
type Partitioner string

const (
	// PartitionerHash hashes the message key.
	PartitionerHash Partitioner = "hash"
	// PartitionerRandom picks a random partition; the key may be empty.
	PartitionerRandom Partitioner = "random"
)

// ParsePartitioner returns PartitionerRandom for "random" and
// PartitionerHash for anything else.
func ParsePartitioner(s string) Partitioner {
	if Partitioner(s) == PartitionerRandom {
		return PartitionerRandom
	}
	return PartitionerHash
}

// ProduceRequest is one message to publish.
type ProduceRequest struct {
	Topic       string
	Key         string
	Value       string
	Partitioner Partitioner
	Replicate   bool
	Timeout     time.Duration
}

// ProduceOption customizes a Produce call.
type ProduceOption func(*ProduceRequest)

// WithPartitioner sets the partitioner. Values other than hash and random
// are sent as hash.
func WithPartitioner(p Partitioner) ProduceOption {
	return func(r *ProduceRequest) { r.Partitioner = p }
}

// WithProduceTimeout bounds the produce exchange. Defaults to 1000ms.
func WithProduceTimeout(d time.Duration) ProduceOption {
	return func(r *ProduceRequest) { r.Timeout = d }
}

// WithReplicate controls replication to other datacenters. Defaults to true.
func WithReplicate(replicate bool) ProduceOption {
	return func(r *ProduceRequest) { r.Replicate = replicate }
}

// NewProduceRequest applies opts over the defaults.
func NewProduceRequest(topic, key, value string, opts ...ProduceOption) ProduceRequest {
	r := ProduceRequest{
		Topic:       topic,
		Key:         key,
		Value:       value,
		Partitioner: PartitionerHash,
		Replicate:   true,
		Timeout:     DefaultProduceTimeout,
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// Validate checks the request and coerces the partitioner to hash or random.
func (r *ProduceRequest) Validate() error {
	if r.Topic == "" || r.Value == "" {
		return errors.InvalidArgument(msgTopicOrValueEmpty)
	}
	r.Partitioner = ParsePartitioner(string(r.Partitioner))
	if r.Partitioner != PartitionerRandom && r.Key == "" {
		return errors.InvalidArgument(msgKeyEmptyForHash)
	}
	if r.Timeout <= 0 {
		return errors.InvalidArgument(msgTimeoutNotPositive)
	}
	return nil
}

func (r ProduceRequest) path() string {
	return "topic/" + url.PathEscape(r.Topic)
}

func (r ProduceRequest) form() url.Values {
	replicate := "no"
	if r.Replicate {
		replicate = "yes"
	}
	return url.Values{
		"key":         {r.Key},
		"value":       {r.Value},
		"partitioner": {string(r.Partitioner)},
		"replicate":   {replicate},
	}
}

// ConsumeRequest asks for the next message of a group on a topic.
type ConsumeRequest struct {
	Group           string
	Topic           string
	BlockingTimeout time.Duration
}

// ConsumeOption customizes a Consume call.
type ConsumeOption func(*ConsumeRequest)

// WithBlockingTimeout sets how long the proxy waits for a message. Must be at
// least 1000ms. Defaults to 3000ms.
func WithBlockingTimeout(d time.Duration) ConsumeOption {
	return func(r *ConsumeRequest) { r.BlockingTimeout = d }
}

// NewConsumeRequest applies opts over the defaults.
func NewConsumeRequest(group, topic string, opts ...ConsumeOption) ConsumeRequest {
	r := ConsumeRequest{
		Group:           group,
		Topic:           topic,
		BlockingTimeout: DefaultBlockingTimeout,
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// Validate checks the request.
func (r ConsumeRequest) Validate() error {
	if r.Group == "" || r.Topic == "" {
		return errors.InvalidArgument(msgGroupOrTopicEmpty)
	}
	if r.BlockingTimeout < MinBlockingTimeout {
		return errors.InvalidArgument(msgBlockingTooShort)
	}
	return nil
}

// TransportTimeout is the client deadline for the exchange: one and a half
// times the blocking timeout.
func (r ConsumeRequest) TransportTimeout() time.Duration {
	return r.BlockingTimeout * 3 / 2
}

func (r ConsumeRequest) path() string {
	return "group/" + url.PathEscape(r.Group) + "/topic/" + url.PathEscape(r.Topic)
}
