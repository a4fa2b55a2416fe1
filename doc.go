/*
Package sqlflow runs database work asynchronously inside resource scopes and
streams query results back to callers.

Resource Scopes (pkg/scope):
  - Executor: opens a connection per operation on a worker pool and
    releases statement then connection in every outcome
  - Submit, WithConnection, Run: callback scopes returning futures
  - BatchUpdate, BatchUpdateN, BatchUpdateSeq: batched updates with a
    per-operation fallback for drivers without batching
  - StreamQuery, Stream: query results as a pull iterator
  - QueryRow, QueryObject, QueryExtract: single-result helpers

Results and Streaming:
  - result: schema Key, typed Value and Row with by-name and by-index access
  - streaming/bridge: producer queue and consumer Iterator
  - streaming/stream: lazy stream operations
  - future: Future, Promise, Constant, Flatten, Await, AwaitAll

Adapters and Sinks:
  - sqldb: database/sql connections and statements for the executor
  - sink/redisstream: export rows to a Redis stream

Task Scheduling (pkg/scheduling):
  - workerpool: background task processing
  - scheduler: cron and interval-based scheduling

Example usage:

	import (
		"github.com/vnykmshr/sqlflow/pkg/sqldb"
		_ "modernc.org/sqlite"
	)

	db, _ := sqldb.Open("sqlite", "app.db", sqldb.DefaultConfig())
	defer db.Close()

	rows := db.QueryStream(ctx, "SELECT id, name FROM users WHERE active = ?", []any{true})
	defer rows.Close()
	err := rows.ForEachRemaining(ctx, func(r *result.Row) error {
		fmt.Println(r)
		return nil
	})
*/
package sqlflow
