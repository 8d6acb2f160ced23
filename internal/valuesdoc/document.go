// Package valuesdoc edits Helm values documents in place.
//
// A Document keeps the bytes it was loaded from and a yaml.v3 node tree of
// them. Setting a value rewrites only the text of that value, and missing
// keys are inserted as new lines at the end of their parent mapping, indented
// like the rest of the document. Everything else (comments, blank lines,
// document markers, flow collections, quoting and indentation) is left as
// written.
//
// Edits the text patcher does not handle fall back to re-encoding the whole
// tree, which normalizes indentation to two spaces and drops blank lines and
// document markers. That happens when the path runs through a flow mapping
// or an alias, or when the value being replaced is a block or multi-line
// scalar or a collection.
package valuesdoc

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
	sigsyaml "sigs.k8s.io/yaml"
)

// Path addresses a value by its chain of mapping keys.
type Path []string

func (p Path) String() string { return strings.Join(p, ".") }

// Document is a parsed values document whose top-level node is a mapping.
type Document struct {
	src  []byte
	root *yaml.Node
}

// Load parses data. Empty input, a comment-only document and an explicit null
// document yield an empty mapping.
func Load(data []byte) (*Document, error) {
	d := &Document{src: append([]byte(nil), data...)}
	if err := d.parse(); err != nil {
		return nil, err
	}
	if top := d.root.Content[0]; isNull(top) && top.Value != "" {
		// "~" or "null": the text carries nothing worth keeping.
		d.src = nil
		if err := d.parse(); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func (d *Document) parse() error {
	var n yaml.Node
	if err := yaml.Unmarshal(d.src, &n); err != nil {
		return fmt.Errorf("parse values document: %w", err)
	}
	if n.Kind == 0 {
		n.Kind = yaml.DocumentNode
	}
	if n.Kind != yaml.DocumentNode {
		return fmt.Errorf("parse values document: unexpected node kind %d", n.Kind)
	}
	if len(n.Content) == 0 {
		n.Content = []*yaml.Node{newMapping()}
	}
	top := n.Content[0]
	if isNull(top) && top.Value == "" {
		toMapping(top)
	}
	if top.Kind != yaml.MappingNode && !isNull(top) {
		return fmt.Errorf("parse values document: top level must be a mapping")
	}
	d.root = &n
	return nil
}

// Bytes returns the document text.
func (d *Document) Bytes() ([]byte, error) {
	return append([]byte(nil), d.src...), nil
}

// Clone returns an independent copy.
func (d *Document) Clone() (*Document, error) {
	c := &Document{src: append([]byte(nil), d.src...)}
	if err := c.parse(); err != nil {
		return nil, err
	}
	return c, nil
}

// Decode unmarshals the document into out.
func (d *Document) Decode(out any) error {
	return d.root.Decode(out)
}

// Has reports whether p resolves to a value.
func (d *Document) Has(p Path) bool {
	n, err := d.lookup(p, false)
	return err == nil && n != nil
}

// GetString returns the scalar at p.
func (d *Document) GetString(p Path) (string, bool) {
	n, err := d.lookup(p, false)
	if err != nil || n == nil || n.Kind != yaml.ScalarNode || isNull(n) {
		return "", false
	}
	return n.Value, true
}

// SetString sets the string at p, creating missing mappings along the way.
// An existing quoting style is kept. Plain values that a YAML 1.1 reader
// would take for something other than a string are double-quoted.
func (d *Document) SetString(p Path, value string) error {
	return d.set(p, scalar{tag: "!!str", value: value})
}

// SetBool sets a boolean at p, creating missing mappings along the way.
func (d *Document) SetBool(p Path, value bool) error {
	return d.set(p, scalar{tag: "!!bool", value: strconv.FormatBool(value)})
}

type scalar struct {
	tag   string
	value string
}

func (d *Document) set(p Path, v scalar) error {
	if len(p) == 0 {
		return fmt.Errorf("empty path")
	}
	done, err := d.patch(p, v)
	if err != nil || done {
		return err
	}
	return d.rewrite(p, v)
}

// patch edits the source text. It reports false when the edit has to go
// through rewrite instead.
func (d *Document) patch(p Path, v scalar) (bool, error) {
	cur := d.root.Content[0]
	for i, key := range p {
		if cur.Kind != yaml.MappingNode || cur.Style&yaml.FlowStyle != 0 {
			return false, nil
		}
		k, val := mappingPair(cur, key)
		if val == nil {
			return d.insertUnder(cur, p[i:], v)
		}
		if i == len(p)-1 {
			if val.Kind != yaml.ScalarNode {
				return false, nil
			}
			return d.replaceScalar(k, val, v)
		}
		switch {
		case val.Kind == yaml.MappingNode:
			cur = val
		case isNull(val):
			return d.insertUnderNull(k, val, p[i+1:], v)
		case val.Kind == yaml.AliasNode:
			return false, nil
		default:
			return false, fmt.Errorf("%s is not a mapping", Path(p[:i+1]))
		}
	}
	return false, nil
}

// insertUnder appends rest as new lines after the last entry of the block
// mapping m.
func (d *Document) insertUnder(m *yaml.Node, rest Path, v scalar) (bool, error) {
	col, at := 0, len(d.src)
	if len(m.Content) > 0 {
		col = m.Content[0].Column - 1
		last := m.Content[len(m.Content)-2]
		at = d.lineStart(d.lastContentLine(last.Line, col) + 1)
	} else if m != d.root.Content[0] {
		return false, nil
	}
	text, ok := d.renderLines(col, rest, v)
	if !ok {
		return false, nil
	}
	return true, d.insertAt(at, text)
}

// insertUnderNull turns the null value of key k into a mapping holding rest.
func (d *Document) insertUnderNull(k, null *yaml.Node, rest Path, v scalar) (bool, error) {
	if null.Value != "" {
		start, end, ok := d.scalarSpan(null)
		if !ok || null.Line != k.Line {
			return false, nil
		}
		for start > 0 && (d.src[start-1] == ' ' || d.src[start-1] == '\t') {
			start--
		}
		d.src = append(d.src[:start:start], d.src[end:]...)
	}
	text, ok := d.renderLines(k.Column-1+d.indentUnit(), rest, v)
	if !ok {
		return false, nil
	}
	return true, d.insertAt(d.lineStart(k.Line+1), text)
}

// replaceScalar rewrites the value text of key k.
func (d *Document) replaceScalar(k, val *yaml.Node, v scalar) (bool, error) {
	if isNull(val) && val.Value == "" {
		colon, ok := d.colonAfterKey(k)
		if !ok {
			return false, nil
		}
		text, ok := encodeScalar(v, 0)
		if !ok {
			return false, nil
		}
		return true, d.replace(colon+1, colon+1, " "+text)
	}
	start, end, ok := d.scalarSpan(val)
	if !ok {
		return false, nil
	}
	style := val.Style
	if isNull(val) {
		style = 0
	}
	text, ok := encodeScalar(v, style)
	if !ok {
		return false, nil
	}
	return true, d.replace(start, end, text)
}

func (d *Document) insertAt(at int, text string) error {
	if at == len(d.src) && at > 0 && d.src[at-1] != '\n' {
		text = d.newline() + text
	}
	return d.replace(at, at, text)
}

func (d *Document) replace(start, end int, text string) error {
	out := make([]byte, 0, len(d.src)-(end-start)+len(text))
	out = append(out, d.src[:start]...)
	out = append(out, text...)
	out = append(out, d.src[end:]...)
	d.src = out
	return d.parse()
}

// renderLines formats rest as nested block mapping lines starting at column
// col, the last key holding v.
func (d *Document) renderLines(col int, rest Path, v scalar) (string, bool) {
	var b strings.Builder
	unit := d.indentUnit()
	nl := d.newline()
	for i, key := range rest {
		b.WriteString(strings.Repeat(" ", col+i*unit))
		b.WriteString(encodeKey(key))
		b.WriteString(":")
		if i == len(rest)-1 {
			text, ok := encodeScalar(v, 0)
			if !ok {
				return "", false
			}
			b.WriteString(" " + text)
		}
		b.WriteString(nl)
	}
	return b.String(), true
}

// lastContentLine returns the last line that still belongs to the entry
// starting on line from in a block mapping whose keys sit at column col
// (0-based). Trailing blank and comment lines are not counted.
func (d *Document) lastContentLine(from, col int) int {
	lines := d.lines()
	last := from
	for l := from + 1; l <= len(lines); l++ {
		text := strings.TrimRight(lines[l-1], "\r")
		trimmed := strings.TrimSpace(text)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		if strings.HasPrefix(text, "---") || strings.HasPrefix(text, "...") {
			break
		}
		indent := len(text) - len(strings.TrimLeft(text, " "))
		if indent > col || (indent == col && (trimmed == "-" || strings.HasPrefix(trimmed, "- "))) {
			last = l
			continue
		}
		break
	}
	return last
}

// scalarSpan returns the byte range of a single-line scalar's text. It
// reports false for block, multi-line, tagged or anchored scalars.
func (d *Document) scalarSpan(n *yaml.Node) (int, int, bool) {
	start := d.offset(n.Line, n.Column)
	if start < 0 || start >= len(d.src) {
		return 0, 0, false
	}
	eol := bytes.IndexByte(d.src[start:], '\n')
	if eol < 0 {
		eol = len(d.src)
	} else {
		eol += start
	}
	line := d.src[:eol]

	end := -1
	switch {
	case n.Style&yaml.DoubleQuotedStyle != 0:
		if line[start] != '"' {
			return 0, 0, false
		}
		for i := start + 1; i < eol; i++ {
			if line[i] == '\\' {
				i++
				continue
			}
			if line[i] == '"' {
				end = i + 1
				break
			}
		}
	case n.Style&yaml.SingleQuotedStyle != 0:
		if line[start] != '\'' {
			return 0, 0, false
		}
		for i := start + 1; i < eol; i++ {
			if line[i] == '\'' {
				if i+1 < eol && line[i+1] == '\'' {
					i++
					continue
				}
				end = i + 1
				break
			}
		}
	case n.Style&(yaml.LiteralStyle|yaml.FoldedStyle) != 0:
		return 0, 0, false
	default:
		end = start
		for end < eol {
			c := line[end]
			if c == '#' && end > start && (line[end-1] == ' ' || line[end-1] == '\t') {
				break
			}
			end++
		}
		for end > start && (line[end-1] == ' ' || line[end-1] == '\t' || line[end-1] == '\r') {
			end--
		}
		if string(line[start:end]) != n.Value {
			return 0, 0, false
		}
		return start, end, true
	}
	if end < 0 {
		return 0, 0, false
	}
	var check yaml.Node
	if err := yaml.Unmarshal(d.src[start:end], &check); err != nil ||
		len(check.Content) != 1 || check.Content[0].Value != n.Value {
		return 0, 0, false
	}
	return start, end, true
}

// colonAfterKey returns the offset of the ':' following key k when nothing
// but a comment follows it on the line.
func (d *Document) colonAfterKey(k *yaml.Node) (int, bool) {
	start := d.offset(k.Line, k.Column)
	if start < 0 {
		return 0, false
	}
	var end int
	if k.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle) != 0 {
		var ok bool
		if _, end, ok = d.scalarSpan(k); !ok {
			return 0, false
		}
	} else {
		end = start + len(k.Value)
		if end > len(d.src) || string(d.src[start:end]) != k.Value {
			return 0, false
		}
	}
	i := end
	for i < len(d.src) && (d.src[i] == ' ' || d.src[i] == '\t') {
		i++
	}
	if i >= len(d.src) || d.src[i] != ':' {
		return 0, false
	}
	rest := d.src[i+1:]
	if eol := bytes.IndexByte(rest, '\n'); eol >= 0 {
		rest = rest[:eol]
	}
	if r := strings.TrimSpace(string(rest)); r != "" && !strings.HasPrefix(r, "#") {
		return 0, false
	}
	return i, true
}

// indentUnit is the indentation step of the first nested block mapping, or 2.
func (d *Document) indentUnit() int {
	var walk func(n *yaml.Node) int
	walk = func(n *yaml.Node) int {
		if n.Kind != yaml.MappingNode || n.Style&yaml.FlowStyle != 0 {
			return 0
		}
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			if v.Kind == yaml.MappingNode && v.Style&yaml.FlowStyle == 0 && len(v.Content) > 0 {
				if step := v.Content[0].Column - k.Column; step > 0 {
					return step
				}
			}
			if step := walk(v); step > 0 {
				return step
			}
		}
		return 0
	}
	if step := walk(d.root.Content[0]); step > 0 {
		return step
	}
	return 2
}

func (d *Document) newline() string {
	if bytes.Contains(d.src, []byte("\r\n")) {
		return "\r\n"
	}
	return "\n"
}

func (d *Document) lines() []string {
	s := string(d.src)
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// lineStart returns the offset of 1-based line l, or len(src) past the end.
func (d *Document) lineStart(l int) int {
	off := 0
	for i := 1; i < l; i++ {
		nl := bytes.IndexByte(d.src[off:], '\n')
		if nl < 0 {
			return len(d.src)
		}
		off += nl + 1
	}
	return off
}

// offset converts a 1-based line and rune column into a byte offset.
func (d *Document) offset(line, col int) int {
	if line < 1 || col < 1 {
		return -1
	}
	off := d.lineStart(line)
	for i := 1; i < col; i++ {
		if off >= len(d.src) || d.src[off] == '\n' {
			return -1
		}
		_, size := utf8.DecodeRune(d.src[off:])
		off += size
	}
	return off
}

// rewrite applies the edit to the node tree and re-encodes the document.
func (d *Document) rewrite(p Path, v scalar) error {
	n, err := d.lookup(p, true)
	if err != nil {
		return err
	}
	setScalar(n, v)
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d.root); err != nil {
		return fmt.Errorf("encode values document: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode values document: %w", err)
	}
	d.src = buf.Bytes()
	return d.parse()
}

func (d *Document) lookup(p Path, create bool) (*yaml.Node, error) {
	if len(p) == 0 {
		return nil, fmt.Errorf("empty path")
	}
	cur := d.root.Content[0]
	for i, key := range p {
		cur = deref(cur)
		if cur.Kind != yaml.MappingNode {
			if !create || !isNull(cur) {
				return nil, fmt.Errorf("%s is not a mapping", Path(p[:i]))
			}
			toMapping(cur)
		}
		_, v := mappingPair(cur, key)
		if v == nil {
			if !create {
				return nil, nil
			}
			v = &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null"}
			if i < len(p)-1 {
				v = newMapping()
			}
			cur.Content = append(cur.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}, v)
		}
		cur = v
	}
	return deref(cur), nil
}

func mappingPair(m *yaml.Node, key string) (*yaml.Node, *yaml.Node) {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i], m.Content[i+1]
		}
	}
	return nil, nil
}

// encodeScalar renders v for a value position. style is the style of the
// value being replaced.
func encodeScalar(v scalar, style yaml.Style) (string, bool) {
	if v.tag == "!!bool" {
		return v.value, true
	}
	s := v.value
	switch {
	case strings.ContainsAny(s, "\n\r"):
		return "", false
	case style&yaml.SingleQuotedStyle != 0:
		return "'" + strings.ReplaceAll(s, "'", "''") + "'", true
	case style&yaml.DoubleQuotedStyle != 0 || !plainSafe(s):
		return strconv.Quote(s), true
	default:
		return s, true
	}
}

func encodeKey(k string) string {
	if plainSafe(k) {
		return k
	}
	return strconv.Quote(k)
}

// plainSafe reports whether s can be written unquoted and still read back as
// the same string, both by yaml.v3 and by the YAML 1.1 reader Helm uses.
func plainSafe(s string) bool {
	if s == "" || strings.TrimSpace(s) != s || strings.ContainsAny(s, "\n\r\t") {
		return false
	}
	out, err := yaml.Marshal(s)
	if err != nil || string(out) != s+"\n" {
		return false
	}
	var got any
	if err := sigsyaml.Unmarshal([]byte(s), &got); err != nil {
		return false
	}
	str, ok := got.(string)
	return ok && str == s
}

func setScalar(n *yaml.Node, v scalar) {
	n.Kind = yaml.ScalarNode
	n.Content = nil
	n.Tag = v.tag
	n.Value = v.value
	n.Style = 0
	if v.tag == "!!str" && !plainSafe(v.value) {
		n.Style = yaml.DoubleQuotedStyle
	}
}

func deref(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Tag == "!!null"
}

func newMapping() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
}

func toMapping(n *yaml.Node) {
	n.Kind = yaml.MappingNode
	n.Tag = "!!map"
	n.Value = ""
	n.Style = 0
}
