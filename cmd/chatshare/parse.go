package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fwojciec/chatshare"
)

// Run executes the parse command.
func (c *ParseCmd) Run(deps *Dependencies) error {
	doc, err := c.read(deps.Stdin)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", chatshare.ErrorMessage(err))
		return err
	}

	t, err := deps.Extractor.ExtractFromDocument(deps.Ctx, doc)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", chatshare.ErrorMessage(err))
		return err
	}

	return emit(deps, t)
}

func (c *ParseCmd) read(stdin io.Reader) (string, error) {
	var (
		data []byte
		err  error
	)
	if c.File == "-" {
		if stdin == nil {
			return "", chatshare.Errorf(chatshare.EINVALID, "no stdin available")
		}
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(c.File)
	}
	if err != nil {
		return "", chatshare.Errorf(chatshare.EINVALID, "read %s: %v", c.File, err)
	}
	return string(data), nil
}
