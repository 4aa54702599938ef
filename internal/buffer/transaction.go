package buffer

// Transaction batches a set of Edits into one atomic Commit. Callers append
// edits in the buffer's pre-commit coordinate space — as if each edit were
// the only one happening — and Commit rebases them into sequential order
// before applying, so independent multi-cursor edits never see each other's
// shifts.
type Transaction struct {
	edits []Edit
}

// NewTransaction starts an empty transaction.
func NewTransaction() *Transaction {
	return &Transaction{}
}

// Insert requests an insertion of data at pos (pre-commit coordinates). A
// cursor sitting exactly at pos is pushed past the inserted text.
func (t *Transaction) Insert(pos uint64, data []byte) {
	t.edits = append(t.edits, Edit{Position: pos, Value: append([]byte(nil), data...), Flags: EditInsert})
}

// InsertAfterPosition is like Insert but a cursor exactly at pos is left in
// place rather than pushed past the insertion — used for the closing half
// of a paired insert.
func (t *Transaction) InsertAfterPosition(pos uint64, data []byte) {
	t.edits = append(t.edits, Edit{Position: pos, Value: append([]byte(nil), data...), Flags: EditInsertAfterPosition})
}

// Remove requests deletion of the half-open range [pos, pos+n) (pre-commit
// coordinates).
func (t *Transaction) Remove(pos uint64, n int) {
	t.edits = append(t.edits, Edit{Position: pos, Length: n, Flags: EditRemove})
}

// Empty reports whether the transaction has no queued edits.
func (t *Transaction) Empty() bool { return len(t.edits) == 0 }

// rebase converts edits expressed in a shared pre-commit coordinate space
// into sequential form, where edit i's Position accounts for edits
// 0..i-1 already having been applied. Edits are processed in the order
// they were queued (callers are expected to queue in ascending cursor
// order for multi-cursor commands, matching the source's convention).
func rebase(edits []Edit) []Edit {
	out := make([]Edit, len(edits))

	for i, e := range edits {
		pos := e.Position
		for j := 0; j < i; j++ {
			pos = positionAfterEdit(pos, out[j])
		}

		rebased := e
		rebased.Position = pos
		out[i] = rebased
	}

	return out
}

// Commit rebases and applies the transaction's edits to c, appends a Commit
// to log, and returns its id. No edit is applied if any rebased edit would
// leave position > len at the time it is applied; the whole commit fails
// atomically with ErrInvalidEdit.
func (t *Transaction) Commit(c *Contents, log *ChangeLog) (CommitID, error) {
	if t.Empty() {
		return log.CurrentID, nil
	}

	rebased := rebase(t.edits)

	// Validate before mutating anything, so a bad edit never partially
	// applies.
	runningLen := c.Len()

	for _, e := range rebased {
		switch e.Flags {
		case EditInsert, EditInsertAfterPosition:
			if e.Position > runningLen {
				return log.CurrentID, ErrInvalidEdit
			}

			runningLen += uint64(len(e.Value))
		case EditRemove:
			if e.Position > runningLen || e.Position+uint64(e.Length) > runningLen {
				return log.CurrentID, ErrInvalidEdit
			}

			runningLen -= uint64(e.Length)
		}
	}

	applied := make([]Edit, len(rebased))
	for i, e := range rebased {
		applied[i] = apply(c, e)
	}

	id := log.append(applied)
	t.edits = nil

	return id, nil
}
