// Package frontmatter reads and writes documents made of a "---" delimited
// YAML header followed by a free-text body.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const delimiter = "---"

// ErrUnterminated is returned when the opening delimiter has no closing one
var ErrUnterminated = errors.New("frontmatter: header is not terminated")

// Parse splits src into its decoded header fields and body. A document
// without a header yields empty fields and the whole input as body.
func Parse(src []byte) (map[string]any, string, error) {
	text := strings.TrimPrefix(string(src), "\ufeff")
	fields := map[string]any{}

	first, rest, found := cutLine(text)
	if !found && first == "" {
		return fields, "", nil
	}
	if strings.TrimRight(first, " \t\r") != delimiter {
		return fields, text, nil
	}

	var header strings.Builder
	for {
		var line string
		line, rest, found = cutLine(rest)
		if strings.TrimRight(line, " \t\r") == delimiter {
			break
		}
		if !found {
			return nil, "", ErrUnterminated
		}
		header.WriteString(line)
		header.WriteByte('\n')
	}

	if err := yaml.Unmarshal([]byte(header.String()), &fields); err != nil {
		return nil, "", fmt.Errorf("frontmatter: decode header: %w", err)
	}
	if fields == nil {
		fields = map[string]any{}
	}

	body := strings.TrimPrefix(rest, "\r\n")
	body = strings.TrimPrefix(body, "\n")
	if strings.HasSuffix(body, "\r\n") {
		body = strings.TrimSuffix(body, "\r\n")
	} else {
		body = strings.TrimSuffix(body, "\n")
	}
	return fields, body, nil
}

func cutLine(s string) (line, rest string, found bool) {
	i := strings.IndexByte(s, '\n')
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+1:], true
}

// Header builds an ordered YAML mapping
type Header struct {
	node yaml.Node
	keys map[string]bool
}

// NewHeader creates an empty header
func NewHeader() *Header {
	return &Header{
		node: yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"},
		keys: map[string]bool{},
	}
}

// Has reports whether key was already added
func (h *Header) Has(key string) bool {
	return h.keys[key]
}

// String adds a plain string value
func (h *Header) String(key, value string) {
	h.add(key, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value})
}

// Quoted adds a string value that is always written double-quoted
func (h *Header) Quoted(key, value string) {
	h.add(key, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value, Style: yaml.DoubleQuotedStyle})
}

// Bool adds a boolean value
func (h *Header) Bool(key string, value bool) {
	v := "false"
	if value {
		v = "true"
	}
	h.add(key, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: v})
}

// Strings adds a flow-style sequence of strings
func (h *Header) Strings(key string, values []string) {
	seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Style: yaml.FlowStyle}
	for _, v := range values {
		seq.Content = append(seq.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v})
	}
	h.add(key, seq)
}

// Value adds an arbitrary value encoded by yaml.v3
func (h *Header) Value(key string, value any) error {
	var n yaml.Node
	if err := n.Encode(value); err != nil {
		return fmt.Errorf("frontmatter: encode %q: %w", key, err)
	}
	h.add(key, &n)
	return nil
}

// Extra adds every key in fields not yet present, in sorted order
func (h *Header) Extra(fields map[string]any) error {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if !h.keys[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := h.Value(k, fields[k]); err != nil {
			return err
		}
	}
	return nil
}

func (h *Header) add(key string, value *yaml.Node) {
	if h.keys[key] {
		for i := 0; i+1 < len(h.node.Content); i += 2 {
			if h.node.Content[i].Value == key {
				h.node.Content[i+1] = value
				return
			}
		}
	}
	h.keys[key] = true
	h.node.Content = append(h.node.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		value,
	)
}

// Render writes the header and body as a document. The body is followed by
// exactly one line ending, which Parse strips again. A body ending in a bare
// "\r" gets "\r\n" so that byte survives.
func (h *Header) Render(body string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(delimiter + "\n")

	if len(h.node.Content) > 0 {
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(&h.node); err != nil {
			return nil, fmt.Errorf("frontmatter: encode header: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("frontmatter: encode header: %w", err)
		}
	}

	buf.WriteString(delimiter + "\n\n")
	buf.WriteString(body)
	if strings.HasSuffix(body, "\r") {
		buf.WriteString("\r\n")
	} else {
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}
