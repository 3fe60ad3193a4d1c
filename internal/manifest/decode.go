package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"go.yaml.in/yaml/v3"
)

// decode unmarshals a lock file or manifest into v. JSON documents are read
// with encoding/json and rebuilt as a yaml.Node, so JSON-only escapes such as
// "\/" are understood while the YAML decoding rules (ordered require maps)
// apply to both formats.
func decode(data []byte, v any) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || (trimmed[0] != '{' && trimmed[0] != '[') {
		return yaml.Unmarshal(data, v)
	}

	node, err := jsonToNode(trimmed)
	if err != nil {
		return err
	}
	return node.Decode(v)
}

// jsonToNode converts a single JSON document into a yaml document node.
func jsonToNode(data []byte) (*yaml.Node, error) {
	b := &nodeBuilder{data: data, dec: json.NewDecoder(bytes.NewReader(data))}
	b.dec.UseNumber()

	root, err := b.value()
	if err != nil {
		return nil, fmt.Errorf("json: %w", err)
	}
	if _, err := b.dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("json: line %d: unexpected data after top-level value", b.line())
	}
	return &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root}}, nil
}

type nodeBuilder struct {
	data []byte
	dec  *json.Decoder
}

// line returns the 1-based line of the decoder's current offset.
func (b *nodeBuilder) line() int {
	off := min(int(b.dec.InputOffset()), len(b.data))
	return 1 + bytes.Count(b.data[:off], []byte("\n"))
}

func (b *nodeBuilder) value() (*yaml.Node, error) {
	line := b.line()
	tok, err := b.dec.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", Line: line}
			for b.dec.More() {
				keyLine := b.line()
				keyTok, err := b.dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("line %d: object key is %T", keyLine, keyTok)
				}
				val, err := b.value()
				if err != nil {
					return nil, err
				}
				n.Content = append(n.Content, scalar("!!str", key, keyLine), val)
			}
			if _, err := b.dec.Token(); err != nil {
				return nil, err
			}
			return n, nil
		case '[':
			n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Line: line}
			for b.dec.More() {
				val, err := b.value()
				if err != nil {
					return nil, err
				}
				n.Content = append(n.Content, val)
			}
			if _, err := b.dec.Token(); err != nil {
				return nil, err
			}
			return n, nil
		}
		return nil, fmt.Errorf("line %d: unexpected delimiter %q", line, t)
	case string:
		return scalar("!!str", t, line), nil
	case json.Number:
		if _, err := t.Int64(); err == nil {
			return scalar("!!int", t.String(), line), nil
		}
		return scalar("!!float", t.String(), line), nil
	case bool:
		return scalar("!!bool", strconv.FormatBool(t), line), nil
	case nil:
		return scalar("!!null", "null", line), nil
	}
	return nil, fmt.Errorf("line %d: unexpected token %v", line, tok)
}

func scalar(tag, value string, line int) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value, Line: line}
}
