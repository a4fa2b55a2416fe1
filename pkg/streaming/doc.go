/*
Package streaming turns query results into pull-based streams.

  - bridge: an unbounded queue filled by a producer task and the Iterator
    that consumes it one item at a time or in bulk
  - stream: lazy Filter, Map, Skip and Limit stages with terminal
    operations such as Count, Reduce and ToSlice

The usual entry point is scope.StreamQuery, which runs a query on the
executor's pool and returns a bridge.Iterator over its rows:

	rows := scope.StreamQuery(ctx, exec, sqldb.Prepared("SELECT id, total FROM orders"), nil)
	defer rows.Close()

	for row, err := range rows.All(ctx) {
		if err != nil {
			return err
		}
		fmt.Println(row)
	}

Iterator.Stream adapts the iterator to the stream API. Terminal operations
use the bulk path, which drains the whole queue per wake-up.
*/
package streaming
