// Package redisstream exports query results to a Redis stream.
//
// A Sink drains a row source, typically the iterator returned by
// scope.StreamQuery, and appends one stream entry per row with XADD. Commands
// are pipelined and flushed every BatchSize rows, so a large result set costs
// one round trip per batch rather than one per row.
//
//	rdb := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	sink, err := redisstream.New(redisstream.DefaultConfig(rdb, "orders"))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	rows := scope.StreamQuery(ctx, exec, sqldb.Prepared("SELECT * FROM orders"), nil)
//	defer rows.Close()
//	n, err := sink.Drain(ctx, rows)
//
// Entry fields map column names to the string form of each value; binary
// columns are written as raw bytes and NULL columns are left out. A failure
// of the source stops the drain after the rows already received have been
// flushed. Redis failures are reported as errors.KindExecute.
package redisstream
