package editor

import (
	"fmt"

	"github.com/quillkit/quill/internal/input"
	"github.com/quillkit/quill/internal/window"
)

// registerBuiltinCommands installs the commands every Editor carries
// regardless of client, the editor-level equivalent of the source's
// built-in command table.
func registerBuiltinCommands(e *Editor) {
	_ = e.Commands.Register(input.Command{
		Name:        "diff-against-disk",
		Description: `show how the selected buffer differs from the file it was loaded from`,
		Run: func(ctx any) error {
			ed, ok := ctx.(*Editor)
			if !ok {
				return fmt.Errorf("editor: diff-against-disk requires an *Editor context")
			}

			return ed.diffSelectedAgainstDisk()
		},
	})
}

// diffSelectedAgainstDisk runs DiffAgainstDisk on the selected window's
// buffer and posts the result (or any failure) as a status message.
func (e *Editor) diffSelectedAgainstDisk() error {
	if e.Selected == nil || e.Selected.Tag != window.Unified {
		err := fmt.Errorf("editor: no buffer selected to diff")
		e.ShowMessage(err.Error())

		return err
	}

	hunks, err := DiffAgainstDisk(e.Selected.Leaf.Handle.Buffer())
	if err != nil {
		e.ShowMessage(err.Error())
		return err
	}

	e.ShowMessage(FormatDiff(hunks))

	return nil
}
