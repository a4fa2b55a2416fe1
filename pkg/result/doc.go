/*
Package result models query results: a Key describing the columns, a Row
holding one record and a Value holding one tagged column value.

A Key is built once per query from the cursor's metadata and shared by every
Row of that query:

	key, err := result.KeyOf(cursor)
	for {
		ok, err := cursor.Advance()
		if err != nil || !ok {
			break
		}
		row := result.NewRow(key)
		if err := row.Load(cursor); err != nil {
			return err
		}
		emit(row)
	}

Rows are addressed by name or by zero-based position, and both lookups reach
the same value:

	v, _ := row.Get("amount")
	w, _ := row.Lookup(2)
	n, ok := v.Int()

Name lookups are case-sensitive and never panic for unknown names. A Key with
unset or duplicate names panics on its first lookup; Validate reports the
same condition as an error.

Values are normalized by the column's declared Type, so a TypeInt column
always holds int64 and its accessors are checked rather than cast.
*/
package result
