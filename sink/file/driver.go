// ciphr/sink/file/driver.go
package file

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/hashicorp/go-multierror"

	"ciphr/sink"
)

/* ────────── public config ────────── */
type Config struct {
	Path string `yaml:"path"`
	Mode string `yaml:"mode"` // octal permission bits, default 0644
}

/* ────────── driver ────────── */
type driver struct {
	f *os.File
	w *bufio.Writer
}

/* ────────── sink.Adapter ────────── */

// Configure creates (or truncates) the target file.
func (d *driver) Configure(raw any) error {
	c, ok := raw.(Config)
	if !ok {
		return fmt.Errorf("file-sink: expected Config, got %T", raw)
	}
	if c.Path == "" {
		return errors.New("file-sink: path is required")
	}
	mode := os.FileMode(0o644)
	if c.Mode != "" {
		m, err := strconv.ParseUint(c.Mode, 8, 32)
		if err != nil {
			return fmt.Errorf("file-sink: mode %q: %w", c.Mode, err)
		}
		mode = os.FileMode(m)
	}
	f, err := os.OpenFile(c.Path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("file-sink: %w", err)
	}
	d.f, d.w = f, bufio.NewWriter(f)
	return nil
}

func (d *driver) Write(chunk []byte) error {
	if d.w == nil {
		return errors.New("file-sink: not open")
	}
	_, err := d.w.Write(chunk)
	return err
}

func (d *driver) Close() error {
	if d.f == nil {
		return nil
	}
	f, w := d.f, d.w
	d.f, d.w = nil, nil
	return multierror.Append(w.Flush(), f.Close()).ErrorOrNil()
}

/* ────────── auto-register ────────── */
func init() {
	sink.Register("file", func() sink.Adapter { return &driver{} })
}
