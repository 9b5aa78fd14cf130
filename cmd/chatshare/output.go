package main

import (
	"encoding/json"
	"fmt"

	"github.com/fwojciec/chatshare"
)

// emit reports warnings, applies --strict and writes the transcript to
// stdout or, with --output, to a file.
func emit(deps *Dependencies, t *chatshare.Transcript) error {
	for _, w := range t.Warnings {
		fmt.Fprintf(deps.Stderr, "warning: %s\n", chatshare.ErrorMessage(w))
	}

	if t.Empty() {
		if deps.Strict {
			err := chatshare.Errorf(chatshare.ENOMESSAGES, "no conversation found")
			fmt.Fprintf(deps.Stderr, "error: %s\n", chatshare.ErrorMessage(err))
			return err
		}
		if deps.Writer != nil {
			fmt.Fprintln(deps.Stderr, "No conversation found; nothing written.")
			return nil
		}
	}

	if deps.Writer != nil {
		path, err := deps.Writer.WriteTranscript(deps.Ctx, t)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", chatshare.ErrorMessage(err))
			return err
		}
		fmt.Fprintf(deps.Stdout, "Wrote %d messages to %s\n", len(t.Messages), path)
		return nil
	}

	switch deps.Format {
	case "text":
		if out := chatshare.FormatText(t.Messages); out != "" {
			fmt.Fprintln(deps.Stdout, out)
		}
		return nil
	case "markdown":
		if out := chatshare.FormatMarkdown(t.Messages); out != "" {
			fmt.Fprintln(deps.Stdout, out)
		}
		return nil
	default:
		return writeJSON(deps, t)
	}
}

func writeJSON(deps *Dependencies, t *chatshare.Transcript) error {
	out := *t
	if out.Messages == nil {
		out.Messages = []chatshare.Message{}
	}

	enc := json.NewEncoder(deps.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(&out)
}
