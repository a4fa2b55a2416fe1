/*
Package stream provides lazy, pull-based streams over any Source.

A Stream wraps a Source with intermediate operations that do nothing until a
terminal operation runs. Terminal operations pull elements on the calling
goroutine and close the stream when they return:

	rows := iterator.Stream().
		Filter(func(r *result.Row) bool { return r.Len() > 0 }).
		Limit(100)

	n, err := rows.Count(ctx)

Sources:

	stream.FromSlice([]int{1, 2, 3})
	stream.FromChannel(ch)
	stream.Empty[int]()
	stream.New[T](source) // any Source, such as a bridge.Iterator

Intermediate operations: Filter, Map, Skip, Limit and Peek. MapTo changes
the element type. Terminal operations: ForEach, ToSlice, Count, Reduce,
AnyMatch and FindFirst.

Bulk Draining:

A source that also implements BulkSource hands its elements over in batches.
When every stage of a pipeline can forward the batch path, terminal
operations use it instead of calling Next per element. Query streams from
the bridge package take this path, which avoids a poll per row.

Errors:

A failing Source ends the terminal operation with its error. Elements that
were delivered before the failure have already been seen by the pipeline.
Operations on a closed stream return ErrStreamClosed.

Thread Safety:

A Stream is consumed by one goroutine. Streams start no goroutines of their own.
*/
package stream
