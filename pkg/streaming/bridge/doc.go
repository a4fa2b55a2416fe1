/*
Package bridge turns a producer task that pushes rows onto an unbounded queue
into a pull-based iterator for a consumer on another goroutine.

The producer side is Produce, which reads a result.Cursor once and pushes one
result.Row per record. The consumer side is Iterator, which watches the
producer's future: the producer finishing is the only end-of-stream signal,
so no sentinel item ever travels through the queue.

Key Components:
  - Queue: unbounded FIFO with bounded waits (Poll, Take) and bulk DrainTo
  - Produce: cursor to rows, sharing one result.Key
  - Iterator: HasNext/Next, ForEachRemaining, range-over-func All, Stream

Waiting:

HasNext never blocks indefinitely in a single step. It alternates a short
poll of the queue (PollTimeout) with a wait on the producer (WaitTimeout)
and a scheduler yield, until an item arrives or the producer is done. The
caller's context bounds the whole wait; an ended context is reported as a
KindInterrupted error and the iterator stays usable.

	it := bridge.New[*result.Row](task, q)
	defer it.Close()

	for {
		row, ok, err := it.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		process(row)
	}

ForEachRemaining is the high-throughput path. It drains everything queued
in one step and then gives the producer DrainWait to get ahead:

	err := it.ForEachRemaining(ctx, func(row *result.Row) error {
		return sink.Write(row)
	})

Producer Failures:

A failed producer is reported only after every row it queued has been
delivered. The error is a KindProducer error wrapping the producer's own
failure, and every later call returns it again.

Closing:

Close discards whatever is queued. By default it also cancels a producer
that is still running; WithDetachedProducer leaves the producer alone.

Metrics:

WithMetrics reports consumed rows, the queue depth and producer failures
through pkg/metrics.
*/
package bridge
