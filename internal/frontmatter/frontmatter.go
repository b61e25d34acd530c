// Package frontmatter splits a note's raw bytes into a YAML frontmatter
// block and a Markdown body, and re-serializes the frontmatter on request
// under one of three emission strategies. Parsing keeps the YAML mapping's
// original key order (via yaml.Node) so a postprocessor's mutation is the
// only thing that can change the emitted order.
package frontmatter

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Strategy selects how frontmatter is emitted on write.
type Strategy int

const (
	// StrategyIfPresent emits exactly what was parsed, re-serialized so
	// postprocessor mutations take effect. This is the default.
	StrategyIfPresent Strategy = iota
	// StrategyAlways emits a frontmatter block even for notes that had
	// none, using an empty "---\n---\n" in that case.
	StrategyAlways
	// StrategyNever drops frontmatter entirely regardless of input.
	StrategyNever
)

// ParseStrategy parses a CLI-facing strategy name. The empty string is
// treated as StrategyIfPresent.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ifpresent":
		return StrategyIfPresent, nil
	case "always":
		return StrategyAlways, nil
	case "never":
		return StrategyNever, nil
	default:
		return 0, fmt.Errorf("frontmatter: unknown strategy %q", s)
	}
}

// Document is a note's parsed frontmatter, held as a yaml.Node tree so key
// order survives a parse/mutate/render round trip.
type Document struct {
	node           *yaml.Node
	hadFrontmatter bool
}

// Split separates source into its frontmatter Document and remaining body.
// Frontmatter is recognized only when the very first line is exactly "---"
// and a later line is exactly "---" on its own; anything else yields an
// empty Document and the untouched source as body.
func Split(source []byte) (*Document, []byte, error) {
	if !bytes.HasPrefix(source, []byte("---")) {
		return &Document{}, source, nil
	}

	afterFence := source[3:]
	firstNL := bytes.IndexByte(afterFence, '\n')
	if firstNL < 0 {
		return &Document{}, source, nil
	}
	if len(bytes.TrimRight(afterFence[:firstNL], "\r")) != 0 {
		return &Document{}, source, nil
	}

	rest := afterFence[firstNL+1:]
	closeOffset, closeLen := findClosingFence(rest)
	if closeOffset < 0 {
		return &Document{}, source, nil
	}

	yamlBlock := rest[:closeOffset]
	body := rest[closeOffset+closeLen:]

	doc := &Document{hadFrontmatter: true}
	if len(bytes.TrimSpace(yamlBlock)) == 0 {
		doc.ensureMapping()
		return doc, body, nil
	}

	var node yaml.Node
	if err := yaml.Unmarshal(yamlBlock, &node); err != nil {
		return nil, nil, fmt.Errorf("frontmatter: parse: %w", err)
	}
	doc.node = &node
	return doc, body, nil
}

func findClosingFence(rest []byte) (offset, lineLen int) {
	pos := 0
	for {
		idx := bytes.IndexByte(rest[pos:], '\n')
		var line []byte
		var consumed int
		if idx < 0 {
			line = rest[pos:]
			consumed = len(line)
		} else {
			line = rest[pos : pos+idx]
			consumed = idx + 1
		}
		if string(bytes.TrimRight(line, "\r")) == "---" {
			return pos, consumed
		}
		if idx < 0 {
			return -1, 0
		}
		pos += consumed
	}
}

// HadFrontmatter reports whether the source had a frontmatter block at all,
// even an empty one.
func (d *Document) HadFrontmatter() bool {
	return d != nil && d.hadFrontmatter
}

func (d *Document) ensureMapping() {
	if d.node == nil {
		d.node = &yaml.Node{
			Kind:    yaml.DocumentNode,
			Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}},
		}
		return
	}
	if len(d.node.Content) == 0 {
		d.node.Content = append(d.node.Content, &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"})
	}
}

func (d *Document) mapping() *yaml.Node {
	d.ensureMapping()
	return d.node.Content[0]
}

// Get decodes the value stored under key into a generic Go value. Ok is
// false when the key is absent or there was never any frontmatter.
func (d *Document) Get(key string) (value any, ok bool) {
	if d == nil || d.node == nil {
		return nil, false
	}
	mapping := d.mapping()
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			var out any
			if err := mapping.Content[i+1].Decode(&out); err != nil {
				return nil, false
			}
			return out, true
		}
	}
	return nil, false
}

// Set inserts or replaces the value stored under key, preserving the
// position of existing keys and appending new ones at the end.
func (d *Document) Set(key string, value any) error {
	raw, err := yaml.Marshal(value)
	if err != nil {
		return fmt.Errorf("frontmatter: encode %q: %w", key, err)
	}
	var wrapper yaml.Node
	if err := yaml.Unmarshal(raw, &wrapper); err != nil {
		return fmt.Errorf("frontmatter: encode %q: %w", key, err)
	}
	if len(wrapper.Content) == 0 {
		return fmt.Errorf("frontmatter: encode %q: empty value", key)
	}
	valueNode := wrapper.Content[0]

	mapping := d.mapping()
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			mapping.Content[i+1] = valueNode
			return nil
		}
	}
	mapping.Content = append(mapping.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: key}, valueNode)
	return nil
}

// Tags returns the frontmatter's "tags" field, accepting either a YAML
// sequence of strings or a single bare string, matching the shapes
// Obsidian itself writes for the tags property.
func (d *Document) Tags() []string {
	value, ok := d.Get("tags")
	if !ok {
		return nil
	}
	switch v := value.(type) {
	case []any:
		tags := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				tags = append(tags, s)
			}
		}
		return tags
	case string:
		return []string{v}
	default:
		return nil
	}
}

// Render serializes the frontmatter block per strategy, returning nil for
// "no block should be emitted".
func (d *Document) Render(strategy Strategy) ([]byte, error) {
	if d == nil {
		d = &Document{}
	}

	switch strategy {
	case StrategyNever:
		return nil, nil
	case StrategyIfPresent:
		if !d.hadFrontmatter {
			return nil, nil
		}
	case StrategyAlways:
		// fall through to render below even if input had none
	}

	if d.node == nil || len(d.mapping().Content) == 0 {
		return []byte("---\n---\n"), nil
	}

	body, err := yaml.Marshal(d.mapping())
	if err != nil {
		return nil, fmt.Errorf("frontmatter: render: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(body)
	buf.WriteString("---\n")
	return buf.Bytes(), nil
}
