package buffer

// EditFlags distinguishes how an Edit shifts surrounding cursor positions.
type EditFlags uint8

const (
	// EditInsert inserts Value at Position. A cursor exactly at Position is
	// pushed past the inserted text (the common "type a character" case).
	EditInsert EditFlags = iota
	// EditInsertAfterPosition also inserts Value at Position, but a cursor
	// exactly at Position is left in place. Used for the closing half of a
	// paired insert (e.g. the ")" after typing "(") so the cursor lands
	// between the pair rather than past it.
	EditInsertAfterPosition
	// EditRemove deletes Length bytes starting at Position. Value holds the
	// removed bytes once the edit has been applied, so undo is lossless.
	EditRemove
)

// Edit is one insertion or removal within a Commit.
type Edit struct {
	Value    []byte
	Position uint64
	Length   int // for EditRemove requests before commit; len(Value) after
	Flags    EditFlags
}

// positionAfterEdit applies the §4.3 cursor-adjustment rule for a single
// edit to a position. It is also the rebasing primitive a Transaction uses
// to convert a batch of edits expressed in pre-commit coordinates into
// sequential form.
func positionAfterEdit(pos uint64, e Edit) uint64 {
	switch e.Flags {
	case EditInsert:
		if e.Position <= pos {
			return pos + uint64(len(e.Value))
		}

		return pos

	case EditInsertAfterPosition:
		if e.Position < pos {
			return pos + uint64(len(e.Value))
		}

		return pos

	case EditRemove:
		length := uint64(e.Length)
		if e.Length == 0 {
			length = uint64(len(e.Value))
		}

		end := e.Position + length

		switch {
		case pos <= e.Position:
			return pos
		case pos >= end:
			return pos - length
		default:
			return e.Position
		}
	}

	return pos
}

// reversed returns the Edit that undoes e. Value must already hold the
// captured bytes (the removed slice for EditRemove, the inserted slice
// otherwise).
func (e Edit) reversed() Edit {
	switch e.Flags {
	case EditInsert, EditInsertAfterPosition:
		return Edit{Position: e.Position, Length: len(e.Value), Value: e.Value, Flags: EditRemove}
	case EditRemove:
		return Edit{Position: e.Position, Value: e.Value, Flags: EditInsert}
	}

	return e
}

// apply performs the edit against contents, capturing removed bytes into
// the returned Edit so it can be reversed later.
func apply(c *Contents, e Edit) Edit {
	switch e.Flags {
	case EditInsert, EditInsertAfterPosition:
		c.Insert(e.Position, e.Value)
		return e
	case EditRemove:
		length := e.Length
		if length == 0 {
			length = len(e.Value)
		}

		removed := c.Remove(e.Position, length)

		return Edit{Position: e.Position, Value: removed, Length: len(removed), Flags: EditRemove}
	}

	return e
}
