package bridge

import (
	"context"

	sferrors "github.com/vnykmshr/sqlflow/pkg/common/errors"
	"github.com/vnykmshr/sqlflow/pkg/result"
)

const module = "bridge"

// Produce reads every record of cursor once and pushes one Row per record
// onto q in read order. The Key is built from the cursor's metadata before
// the first record is read and is shared by all rows.
//
// Produce returns the number of rows pushed. Metadata and row-read failures
// are KindRead errors; rows pushed before a failure stay queued. Produce
// does not close the cursor.
func Produce(ctx context.Context, cursor result.Cursor, q *Queue[*result.Row]) (int, error) {
	key, err := result.KeyOf(cursor)
	if err != nil {
		return 0, sferrors.Wrap(sferrors.KindRead, module, "Produce", err)
	}

	n := 0
	for {
		if err := ctx.Err(); err != nil {
			return n, sferrors.Wrapf(sferrors.KindInterrupted, module, "Produce", err, "after %d rows", n)
		}

		ok, err := cursor.Advance()
		if err != nil {
			return n, sferrors.Wrapf(sferrors.KindRead, module, "Produce", err, "advancing past row %d", n)
		}
		if !ok {
			return n, nil
		}

		row := result.NewRow(key)
		if err := row.Load(cursor); err != nil {
			return n, sferrors.Wrapf(sferrors.KindRead, module, "Produce", err, "row %d", n+1)
		}
		q.Push(row)
		n++
	}
}
