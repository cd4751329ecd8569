package seq

import (
	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// YAMLSerializer builds a YAML node tree. Tuples are sequences and structs
// are mappings keyed by field name.
type YAMLSerializer struct {
	node *yaml.Node
}

// NewYAMLSerializer returns a serializer filling node.
func NewYAMLSerializer(node *yaml.Node) *YAMLSerializer {
	return &YAMLSerializer{node: node}
}

func (s *YAMLSerializer) SerializeValue(v any) error {
	if m, ok := v.(Marshaler); ok {
		return m.MarshalSeq(s)
	}
	return s.node.Encode(v)
}

func (s *YAMLSerializer) SerializeTuple(n int) (TupleSerializer, error) {
	*s.node = yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Style: yaml.FlowStyle}
	return &yamlTuple{node: s.node, want: n}, nil
}

func (s *YAMLSerializer) SerializeStruct(_ string, n int) (StructSerializer, error) {
	*s.node = yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	return &yamlStruct{node: s.node, want: n}, nil
}

type yamlTuple struct {
	node *yaml.Node
	want int
}

func (t *yamlTuple) SerializeElement(v any) error {
	if len(t.node.Content) >= t.want {
		return InvalidLength(len(t.node.Content)+1, t.want)
	}
	child := &yaml.Node{}
	if err := NewYAMLSerializer(child).SerializeValue(v); err != nil {
		return err
	}
	t.node.Content = append(t.node.Content, child)
	return nil
}

func (t *yamlTuple) End() error {
	if len(t.node.Content) != t.want {
		return InvalidLength(len(t.node.Content), t.want)
	}
	return nil
}

type yamlStruct struct {
	node *yaml.Node
	want int
}

func (t *yamlStruct) SerializeField(name string, v any) error {
	key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name}
	value := &yaml.Node{}
	if err := NewYAMLSerializer(value).SerializeValue(v); err != nil {
		return err
	}
	t.node.Content = append(t.node.Content, key, value)
	return nil
}

func (t *yamlStruct) End() error {
	if got := len(t.node.Content) / 2; got != t.want {
		return InvalidLength(got, t.want)
	}
	return nil
}

// YAMLDeserializer reads from a YAML node tree.
type YAMLDeserializer struct {
	node *yaml.Node
}

// NewYAMLDeserializer returns a deserializer reading node. Document nodes are
// unwrapped to their content.
func NewYAMLDeserializer(node *yaml.Node) *YAMLDeserializer {
	if node.Kind == yaml.DocumentNode && len(node.Content) == 1 {
		node = node.Content[0]
	}
	return &YAMLDeserializer{node: node}
}

func (d *YAMLDeserializer) DeserializeValue(dst any) error {
	if u, ok := dst.(Unmarshaler); ok {
		return u.UnmarshalSeq(d)
	}
	return d.node.Decode(dst)
}

func (d *YAMLDeserializer) DeserializeTuple(n int) (TupleAccess, error) {
	if d.node.Kind != yaml.SequenceNode {
		return nil, errors.Wrapf(ErrUnexpectedKind, "expected a sequence at line %d", d.node.Line)
	}
	if len(d.node.Content) > n {
		return nil, InvalidLength(len(d.node.Content), n)
	}
	return &yamlTupleAccess{elems: d.node.Content}, nil
}

func (d *YAMLDeserializer) DeserializeStruct(_ string) (StructAccess, error) {
	if d.node.Kind != yaml.MappingNode {
		return nil, errors.Wrapf(ErrUnexpectedKind, "expected a mapping at line %d", d.node.Line)
	}
	return &yamlStructAccess{content: d.node.Content, next: -2}, nil
}

type yamlTupleAccess struct {
	elems []*yaml.Node
	next  int
}

func (a *yamlTupleAccess) NextElement(dst any) (bool, error) {
	if a.next >= len(a.elems) {
		return false, nil
	}
	node := a.elems[a.next]
	a.next++
	if err := NewYAMLDeserializer(node).DeserializeValue(dst); err != nil {
		return false, err
	}
	return true, nil
}

// yamlStructAccess walks key/value pairs of a mapping node; next indexes the
// current key.
type yamlStructAccess struct {
	content []*yaml.Node
	next    int
}

func (a *yamlStructAccess) NextField() (string, bool, error) {
	a.next += 2
	if a.next+1 >= len(a.content) {
		return "", false, nil
	}
	return a.content[a.next].Value, true, nil
}

func (a *yamlStructAccess) FieldValue(dst any) error {
	return NewYAMLDeserializer(a.content[a.next+1]).DeserializeValue(dst)
}

func (a *yamlStructAccess) SkipValue() error {
	return nil
}

// MarshalYAML encodes the struct v as a YAML document.
func MarshalYAML(v any) ([]byte, error) {
	var node yaml.Node
	if err := Marshal(NewYAMLSerializer(&node), v); err != nil {
		return nil, err
	}
	return yaml.Marshal(&node)
}

// UnmarshalYAML decodes a YAML document into the struct v points to.
func UnmarshalYAML(data []byte, v any) error {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}
	if doc.Kind == 0 {
		return errors.Wrap(ErrUnexpectedKind, "empty document")
	}
	return Unmarshal(NewYAMLDeserializer(&doc), v)
}
