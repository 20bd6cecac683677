package kaproxytest

import (
	"context"
	"hash/fnv"
	"math/rand/v2"
	"sync"
	"time"
)

// Record is a message stored by the fake broker.
type Record struct {
	Topic     string
	Partition int32
	Offset    int64
	Key       string
	Value     string
	Timestamp time.Time
}

type cursorKey struct {
	group string
	topic string
}

// Broker is an in-memory partitioned log with per-group cursors.
type Broker struct {
	partitions int

	mu      sync.Mutex
	topics  map[string][][]Record
	cursors map[cursorKey][]int64
	next    map[cursorKey]int
	notify  chan struct{}
}

// NewBroker creates a broker with n partitions per topic. n below 1 is
// treated as 1.
func NewBroker(n int) *Broker {
	if n < 1 {
		n = 1
	}
	return &Broker{
		partitions: n,
		topics:     make(map[string][][]Record),
		cursors:    make(map[cursorKey][]int64),
		next:       make(map[cursorKey]int),
		notify:     make(chan struct{}),
	}
}

// Partitions returns the number of partitions per topic.
func (b *Broker) Partitions() int {
	return b.partitions
}

// Produce appends a message. With random set the partition is chosen at
// random, otherwise by the FNV-1a hash of key.
func (b *Broker) Produce(topic, key, value string, random bool) Record {
	partition := b.partitionFor(key, random)

	b.mu.Lock()
	parts := b.topicLocked(topic)
	rec := Record{
		Topic:     topic,
		Partition: int32(partition),
		Offset:    int64(len(parts[partition])),
		Key:       key,
		Value:     value,
		Timestamp: time.Now(),
	}
	parts[partition] = append(parts[partition], rec)
	close(b.notify)
	b.notify = make(chan struct{})
	b.mu.Unlock()
	return rec
}

// Poll returns the next unread message for group on topic without waiting.
// Partitions are visited round-robin across calls.
func (b *Broker) Poll(group, topic string) (Record, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	rec, ok, _ := b.pollLocked(group, topic)
	return rec, ok
}

// Wait polls until a message arrives, timeout elapses or ctx is done.
func (b *Broker) Wait(ctx context.Context, group, topic string, timeout time.Duration) (Record, bool) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		b.mu.Lock()
		rec, ok, notify := b.pollLocked(group, topic)
		b.mu.Unlock()
		if ok {
			return rec, true
		}

		select {
		case <-notify:
		case <-timer.C:
			return Record{}, false
		case <-ctx.Done():
			return Record{}, false
		}
	}
}

// Records returns every message stored for topic in partition then offset
// order.
func (b *Broker) Records(topic string) []Record {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []Record
	for _, part := range b.topics[topic] {
		out = append(out, part...)
	}
	return out
}

// Lag returns how many messages group has not read yet on topic.
func (b *Broker) Lag(group, topic string) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	parts := b.topics[topic]
	cur := b.cursors[cursorKey{group, topic}]
	var lag int64
	for i, part := range parts {
		var read int64
		if cur != nil {
			read = cur[i]
		}
		lag += int64(len(part)) - read
	}
	return lag
}

func (b *Broker) partitionFor(key string, random bool) int {
	if random || b.partitions == 1 {
		return rand.IntN(b.partitions)
	}
	h := fnv.New32a()
	h.Write([]byte(key))
	return int(h.Sum32() % uint32(b.partitions))
}

func (b *Broker) topicLocked(topic string) [][]Record {
	parts, ok := b.topics[topic]
	if !ok {
		parts = make([][]Record, b.partitions)
		b.topics[topic] = parts
	}
	return parts
}

// pollLocked returns the next record, or the channel that is closed on the
// next produce.
func (b *Broker) pollLocked(group, topic string) (Record, bool, <-chan struct{}) {
	key := cursorKey{group, topic}
	parts := b.topics[topic]
	if len(parts) == 0 {
		return Record{}, false, b.notify
	}
	cur, ok := b.cursors[key]
	if !ok {
		cur = make([]int64, b.partitions)
		b.cursors[key] = cur
	}

	start := b.next[key]
	for i := 0; i < b.partitions; i++ {
		p := (start + i) % b.partitions
		if cur[p] < int64(len(parts[p])) {
			rec := parts[p][cur[p]]
			cur[p]++
			b.next[key] = (p + 1) % b.partitions
			return rec, true, nil
		}
	}
	return Record{}, false, b.notify
}
