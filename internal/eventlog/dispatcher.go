package eventlog

import (
	"context"
	"encoding/json"
	"hash/fnv"
	"log"
	"time"

	"github.com/IBM/sarama"

	"tablesync/internal/concurrency"
	"tablesync/internal/sheet"
)

// DispatcherOptions configures a Dispatcher's local queue, group-batch
// coalescing policy, and retry/backoff policy.
type DispatcherOptions struct {
	QueueSize int
	Workers   int

	// MaxBatch is the most events a single GroupID accumulates before its
	// batch is flushed early, without waiting for FlushInterval.
	MaxBatch int
	// FlushInterval is how often a shard flushes whatever partial batches
	// it's holding, so a group that never reaches MaxBatch still ships.
	FlushInterval time.Duration

	MaxRetry    int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
}

// DefaultOptions returns a reasonable single-process default: a small
// bounded queue, a handful of shards, small batches flushed at least every
// second, and short capped backoff.
func DefaultOptions() DispatcherOptions {
	return DispatcherOptions{
		QueueSize:     256,
		Workers:       4,
		MaxBatch:      8,
		FlushInterval: time.Second,
		MaxRetry:      3,
		BaseBackoff:   100 * time.Millisecond,
		MaxBackoff:    2 * time.Second,
	}
}

// Dispatcher coalesces Events sharing a GroupID into a single Kafka message
// instead of shipping one message per event. A group is the run of messages
// one client issued between two GroupID rotations (internal/client mints a
// fresh GroupID on every accepted message and on a sync to a newer
// version, so in practice a multi-message group is an offline burst); an
// audit consumer cares about how a burst
// as a whole resolved, not a firehose of one-line records, and keeping
// every event for a group on the same partition (keyed by GroupID, not
// MessageID) lets a consumer replay a burst in arrival order even when a
// later message in it was rejected because an earlier one poisoned the
// group. Events route to one of several shards by a hash of their GroupID,
// so different groups coalesce independently and in parallel; within a
// shard, a batch flushes either when it reaches MaxBatch or when the
// shard's idle ticker fires, whichever comes first. Enqueue never blocks
// the coordinator's process loop beyond its shard's queue capacity, and a
// shard degrades by dropping its whole pending batch rather than growing
// unbounded.
type Dispatcher struct {
	producer sarama.SyncProducer
	topic    string

	shardQueues []chan Event
	sem         *concurrency.Semaphore

	maxBatch      int
	flushInterval time.Duration
	maxRetry      int
	baseBackoff   time.Duration
	maxBackoff    time.Duration
}

// NewDispatcher constructs and starts a Dispatcher. producer may be nil in
// tests, in which case sendBatch is a no-op success.
func NewDispatcher(producer sarama.SyncProducer, topic string, sem *concurrency.Semaphore, opt DispatcherOptions) *Dispatcher {
	shards := opt.Workers
	if shards <= 0 {
		shards = 1
	}
	maxBatch := opt.MaxBatch
	if maxBatch <= 0 {
		maxBatch = 1
	}
	flushInterval := opt.FlushInterval
	if flushInterval <= 0 {
		flushInterval = 2 * time.Second
	}

	d := &Dispatcher{
		producer:      producer,
		topic:         topic,
		sem:           sem,
		maxBatch:      maxBatch,
		flushInterval: flushInterval,
		maxRetry:      opt.MaxRetry,
		baseBackoff:   opt.BaseBackoff,
		maxBackoff:    opt.MaxBackoff,
	}
	d.shardQueues = make([]chan Event, shards)
	for i := range d.shardQueues {
		d.shardQueues[i] = make(chan Event, opt.QueueSize)
		go d.collectLoop(d.shardQueues[i])
	}
	return d
}

// Enqueue places evt on its GroupID's shard queue, waiting until ctx is
// done if that shard's queue is full.
func (d *Dispatcher) Enqueue(ctx context.Context, evt Event) error {
	q := d.shardQueues[d.shardOf(evt.GroupID)]
	select {
	case q <- evt:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) shardOf(gid sheet.GroupID) int {
	if len(d.shardQueues) == 1 {
		return 0
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(gid))
	return int(h.Sum32() % uint32(len(d.shardQueues)))
}

// collectLoop owns one shard's pending-batch map exclusively, so it needs
// no lock of its own.
func (d *Dispatcher) collectLoop(q chan Event) {
	pending := make(map[sheet.GroupID][]Event)
	ticker := time.NewTicker(d.flushInterval)
	defer ticker.Stop()

	flush := func(gid sheet.GroupID) {
		batch := pending[gid]
		delete(pending, gid)
		if len(batch) > 0 {
			go d.sendBatchWithRetry(gid, batch)
		}
	}

	for {
		select {
		case evt, ok := <-q:
			if !ok {
				for gid := range pending {
					flush(gid)
				}
				return
			}
			pending[evt.GroupID] = append(pending[evt.GroupID], evt)
			if len(pending[evt.GroupID]) >= d.maxBatch {
				flush(evt.GroupID)
			}
		case <-ticker.C:
			for gid := range pending {
				flush(gid)
			}
		}
	}
}

func (d *Dispatcher) sendBatchWithRetry(gid sheet.GroupID, batch []Event) {
	for attempt := 0; attempt <= d.maxRetry; attempt++ {
		if d.sem != nil {
			_ = d.sem.Acquire(context.Background())
		}
		err := d.sendBatch(gid, batch)
		if d.sem != nil {
			_ = d.sem.Release()
		}

		if err == nil {
			return
		}
		if attempt == d.maxRetry {
			log.Printf("eventlog: batch send failed, dropping %d event(s) group=%s err=%v",
				len(batch), gid, err)
			return
		}

		backoff := d.baseBackoff * time.Duration(1<<attempt)
		if backoff > d.maxBackoff {
			backoff = d.maxBackoff
		}
		time.Sleep(backoff)
	}
}

func (d *Dispatcher) sendBatch(gid sheet.GroupID, batch []Event) error {
	if d.producer == nil || d.topic == "" {
		return nil
	}
	b, err := json.Marshal(batch)
	if err != nil {
		return err
	}
	msg := &sarama.ProducerMessage{
		Topic: d.topic,
		Key:   sarama.StringEncoder(string(gid)),
		Value: sarama.ByteEncoder(b),
	}
	_, _, err = d.producer.SendMessage(msg)
	return err
}
