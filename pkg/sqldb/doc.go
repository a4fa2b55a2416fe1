// Package sqldb adapts database/sql to the scope package: a DB is a
// scope.ConnectionProvider handing out *sql.Conn based connections, and
// Stmt implements both scope.QueryStatement and scope.BatchStatement.
//
//	db, err := sqldb.Open("sqlite", "orders.db", sqldb.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer db.Close()
//
//	rows := db.QueryStream(ctx, "SELECT id, total FROM orders WHERE total > ?", []any{100})
//	defer rows.Close()
//
// database/sql has no batch round trip. With Config.Batching set,
// ExecuteBatch runs the accumulated operations back to back on one
// connection; either way the update counts come back in order.
//
// There are no separate providers for stored procedure calls or generated
// keys, since database/sql has neither. A CALL statement runs through
// Prepared or Plain like any other, and generated keys are read back as a
// query with RETURNING:
//
//	id, err := sqldb.QueryObject[int64](ctx, db, "INSERT INTO orders (total) VALUES (?) RETURNING id", 250).Get()
package sqldb
