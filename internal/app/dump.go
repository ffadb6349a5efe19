package app

import (
	"encoding/json"
	"io"
	"os"

	"github.com/cockroachdb/errors"

	"github.com/hoanghonghuy/commitgen/internal/prompt"
)

// DumpPrompt writes conv as indented JSON to outPath, or to w when outPath is
// empty.
func DumpPrompt(w io.Writer, conv prompt.Conversation, outPath string) (err error) {
	if outPath != "" {
		f, cerr := os.Create(outPath)
		if cerr != nil {
			return errors.Wrap(cerr, "create output file")
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = errors.Wrap(cerr, "close output file")
			}
		}()
		w = f
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(conv); err != nil {
		return errors.Wrap(err, "write json")
	}
	return nil
}
