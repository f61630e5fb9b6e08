package main

import (
	"io"
	"os"
	"path/filepath"

	"github.com/carbocation/pfx"
	"github.com/inconshreveable/log15"
)

// newLogger logs Info and above to stdout and everything to the diagnostic
// file at path, which is truncated. The caller closes the returned file.
func newLogger(path string) (log15.Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, pfx.Err(err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, nil, pfx.Err(err)
	}

	logger := log15.New()
	logger.SetHandler(log15.MultiHandler(
		log15.LvlFilterHandler(log15.LvlInfo, log15.StreamHandler(os.Stdout, log15.TerminalFormat())),
		log15.StreamHandler(f, log15.LogfmtFormat()),
	))

	return logger, f, nil
}
