// ciphr/sink/stdout/driver.go
package stdout

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"ciphr/sink"
)

/* ────────── public config ────────── */
type Config struct {
	Newline bool `yaml:"newline"` // terminate the output with '\n'
}

// Output is where the driver writes. Tests swap it.
var Output io.Writer = os.Stdout

/* ────────── driver ────────── */
type driver struct {
	cfg    Config
	w      *bufio.Writer
	closed bool
}

/* ────────── sink.Adapter ────────── */
func (d *driver) Configure(raw any) error {
	c, ok := raw.(Config)
	if !ok {
		return fmt.Errorf("stdout-sink: expected Config, got %T", raw)
	}
	d.cfg = c
	return nil
}

func (d *driver) Write(chunk []byte) error {
	if d.closed {
		return fmt.Errorf("stdout-sink: write after close")
	}
	if d.w == nil {
		d.w = bufio.NewWriter(Output)
	}
	_, err := d.w.Write(chunk)
	return err
}

func (d *driver) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	if d.w == nil {
		d.w = bufio.NewWriter(Output)
	}
	if d.cfg.Newline {
		if err := d.w.WriteByte('\n'); err != nil {
			return err
		}
	}
	return d.w.Flush()
}

/* ────────── auto-register ────────── */
func init() {
	sink.Register("stdout", func() sink.Adapter { return &driver{} })
}
