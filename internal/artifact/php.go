package artifact

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/interop-labs/modreg/internal/registry"
)

// PHPEncoder renders a PHP file returning the list of factory records:
//
//	<?php
//	return [
//	    [
//	        'name' => 'acme/foo_0',
//	        'description' => 'Module for package acme/foo',
//	        'module' => new Acme\FooModule(),
//	        'priority' => 0,
//	    ],
//	];
//
// The module expression is written verbatim so it stays live code.
type PHPEncoder struct{}

// Encode implements Encoder.
func (PHPEncoder) Encode(w io.Writer, records []registry.Record) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("<?php\nreturn [\n")
	for _, r := range records {
		bw.WriteString("    [\n")
		writePHPField(bw, "name", phpString(r.Name))
		writePHPField(bw, "description", phpString(r.Description))
		writePHPField(bw, "module", phpExpression(r.Module))
		writePHPField(bw, "priority", strconv.Itoa(r.Priority))
		bw.WriteString("    ],\n")
	}
	bw.WriteString("];\n")
	return bw.Flush()
}

func writePHPField(w *bufio.Writer, key, value string) {
	w.WriteString("        '")
	w.WriteString(key)
	w.WriteString("' => ")
	w.WriteString(value)
	w.WriteString(",\n")
}

var phpEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// phpString encodes s the way var_export does: single-quoted, with
// backslashes and quotes escaped and NUL bytes spliced in as "\0".
func phpString(s string) string {
	parts := strings.Split(s, "\x00")
	for i, p := range parts {
		parts[i] = "'" + phpEscaper.Replace(p) + "'"
	}
	return strings.Join(parts, ` . "\0" . `)
}

// phpExpression returns expr unchanged, or null when it is blank.
func phpExpression(expr string) string {
	if strings.TrimSpace(expr) == "" {
		return "null"
	}
	return expr
}
