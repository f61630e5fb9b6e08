package radiomics

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/carbocation/pfx"
	"github.com/carbocation/radiomix/features"
	"github.com/inconshreveable/log15"
)

// DefaultPyradiomicsBinary is looked up on PATH.
const DefaultPyradiomicsBinary = "pyradiomics"

// passthroughColumns are echoed by the pyradiomics CLI around the feature
// vector and are not part of it.
var passthroughColumns = map[string]bool{
	"":       true,
	"Image":  true,
	"Mask":   true,
	"Label":  true,
	"Reader": true,
}

// CommandExtractor runs the pyradiomics command line tool once per pair.
type CommandExtractor struct {
	Binary   string
	Settings Settings
	Log      log15.Logger
}

func NewCommandExtractor(binary string, s Settings, log log15.Logger) (*CommandExtractor, error) {
	if binary == "" {
		binary = DefaultPyradiomicsBinary
	}
	if log == nil {
		log = log15.New()
		log.SetHandler(log15.DiscardHandler())
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &CommandExtractor{Binary: binary, Settings: s, Log: log}, nil
}

func (c *CommandExtractor) Extract(ctx context.Context, imagePath, maskPath string) (features.Record, error) {
	params, err := c.writeParams()
	if err != nil {
		return nil, err
	}
	defer os.Remove(params)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.Binary, imagePath, maskPath, "--param", params, "--format", "csv")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	c.Log.Debug("running extractor", "cmd", strings.Join(cmd.Args, " "))

	if err := cmd.Run(); err != nil {
		return nil, pfx.Err(fmt.Errorf("%s: %w: %s", c.Binary, err, strings.TrimSpace(stderr.String())))
	}
	if stderr.Len() > 0 {
		c.Log.Debug("extractor stderr", "image", imagePath, "output", strings.TrimSpace(stderr.String()))
	}

	return ParseCSVOutput(&stdout)
}

func (c *CommandExtractor) writeParams() (string, error) {
	b, err := c.Settings.Marshal()
	if err != nil {
		return "", err
	}

	f, err := os.CreateTemp("", "radiomix-params-*.yaml")
	if err != nil {
		return "", pfx.Err(err)
	}
	if _, err := f.Write(b); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", pfx.Err(err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", pfx.Err(err)
	}

	return f.Name(), nil
}

// ParseCSVOutput reads a header line and a single result line, in column
// order, dropping the input-echo columns. Numeric cells become float64.
func ParseCSVOutput(r io.Reader) (features.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, pfx.Err(fmt.Errorf("extractor produced no output"))
	} else if err != nil {
		return nil, pfx.Err(err)
	}

	row, err := cr.Read()
	if err == io.EOF {
		return nil, pfx.Err(fmt.Errorf("extractor produced a header but no result"))
	} else if err != nil {
		return nil, pfx.Err(err)
	}
	if len(row) != len(header) {
		return nil, pfx.Err(fmt.Errorf("extractor output has %d columns but %d values", len(header), len(row)))
	}

	out := make(features.Record, 0, len(header))
	for i, name := range header {
		if passthroughColumns[name] {
			continue
		}
		out.Add(name, features.ParseValue(row[i]))
	}

	return out, nil
}
