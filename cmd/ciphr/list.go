package main

import (
	"fmt"
	"io"
	"strings"

	"ciphr/internal/transform"
)

// writeKinds prints one line per kind: its name, whether it runs in reverse,
// and every alias it answers to.
func writeKinds(w io.Writer, reg *transform.Registry) error {
	for _, k := range reg.Kinds() {
		var names []string
		for _, v := range k.Variants() {
			for _, n := range v.Names {
				if e, ok := reg.Lookup(n); ok && e.Kind == k {
					names = append(names, n)
				}
			}
		}
		if len(names) == 0 {
			continue
		}
		mark := " "
		if k.Invertible {
			mark = "~"
		}
		if _, err := fmt.Fprintf(w, "%s %-8s %s\n", mark, k.Name, strings.Join(names, " ")); err != nil {
			return err
		}
	}
	return nil
}
