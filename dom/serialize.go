package dom

import (
	"fmt"
	"strings"
)

// Mode selects the serialization dialect for Serialize, per this package.
type Mode int

const (
	// HTML serializes using HTML5 fragment-serialization rules: void
	// elements close without a trailing slash, script/style content is
	// emitted verbatim, and text escaping uses the minimal entity set.
	HTML Mode = iota
	// XML serializes using well-formed XML rules: every element closes
	// explicitly (or self-closes when empty), and comment contents are
	// escaped to avoid a premature "--" close sequence.
	XML
)

// voidElements are HTML5 elements that never have content and are
// serialized without a closing tag, per the WHATWG HTML serialization
// algorithm referenced by this package.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// rawTextElements hold their text-node children verbatim, unescaped, in
// both serialization modes (script/style content is never entity-escaped).
var rawTextElements = map[string]bool{
	"script": true, "style": true,
}

// IsVoidElement reports whether name is an HTML5 void element (never has
// content, no closing tag). Exposed so html.Builder can apply the same
// void-element rule while building the tree, not only while serializing it.
func IsVoidElement(name string) bool {
	return voidElements[strings.ToLower(name)]
}

// IsRawTextElement reports whether name's children are treated as opaque
// character data (script, style) rather than parsed markup.
func IsRawTextElement(name string) bool {
	return rawTextElements[strings.ToLower(name)]
}

// Serialize renders the subtree rooted at node as a byte string in the
// given mode (this package's `serialize(node, mode)`). The serializer never
// fails on a well-formed tree; node itself is included in the output.
func Serialize(node Node, mode Mode) (string, error) {
	var b strings.Builder
	if err := serializeNode(&b, node, mode); err != nil {
		return "", err
	}
	return b.String(), nil
}

func serializeNode(b *strings.Builder, n Node, mode Mode) error {
	kind, err := n.Kind()
	if err != nil {
		return err
	}
	switch kind {
	case KindDocument, KindFragment:
		c := n.Children()
		for {
			child, ok := c.Next()
			if !ok {
				break
			}
			if err := serializeNode(b, child, mode); err != nil {
				return err
			}
		}
		return nil
	case KindDoctype:
		name, pub, sys, err := n.DoctypeData()
		if err != nil {
			return err
		}
		return writeDoctype(b, name, pub, sys)
	case KindComment:
		text, err := n.CommentData()
		if err != nil {
			return err
		}
		if mode == XML {
			text = escapeComment(text)
		}
		b.WriteString("<!--")
		b.WriteString(text)
		b.WriteString("-->")
		return nil
	case KindText:
		text, err := n.TextData()
		if err != nil {
			return err
		}
		b.WriteString(escapeText(text))
		return nil
	case KindPI:
		target, data, err := n.PIData()
		if err != nil {
			return err
		}
		b.WriteString("<?")
		b.WriteString(target)
		if data != "" {
			b.WriteByte(' ')
			b.WriteString(data)
		}
		b.WriteString("?>")
		return nil
	case KindElement:
		return serializeElement(b, n, mode)
	default:
		return ErrTypeMismatch("unknown node kind")
	}
}

func writeDoctype(b *strings.Builder, name, pub, sys string) error {
	b.WriteString("<!DOCTYPE ")
	b.WriteString(name)
	switch {
	case pub != "":
		fmt.Fprintf(b, " PUBLIC %q", pub)
		if sys != "" {
			fmt.Fprintf(b, " %q", sys)
		}
	case sys != "":
		fmt.Fprintf(b, " SYSTEM %q", sys)
	}
	b.WriteByte('>')
	return nil
}

func serializeElement(b *strings.Builder, n Node, mode Mode) error {
	name, err := n.Name()
	if err != nil {
		return err
	}
	tag := name.String()
	b.WriteByte('<')
	b.WriteString(tag)

	attrs := n.Attrs()
	for i := 0; i < attrs.Len(); i++ {
		key, value, err := attrs.Get(i)
		if err != nil {
			return err
		}
		b.WriteByte(' ')
		b.WriteString(key.String())
		b.WriteString(`="`)
		b.WriteString(escapeAttrValue(value))
		b.WriteByte('"')
	}

	local := strings.ToLower(name.Local)
	if !n.HasChildren() {
		if mode == HTML && voidElements[local] {
			b.WriteByte('>')
			return nil
		}
		if mode == XML {
			b.WriteString("/>")
			return nil
		}
	}
	b.WriteByte('>')

	if mode == HTML && voidElements[local] {
		return nil
	}

	if rawTextElements[local] {
		c := n.Children()
		for {
			child, ok := c.Next()
			if !ok {
				break
			}
			if child.IsText() {
				text, err := child.TextData()
				if err != nil {
					return err
				}
				b.WriteString(text)
			}
		}
	} else {
		c := n.Children()
		for {
			child, ok := c.Next()
			if !ok {
				break
			}
			if err := serializeNode(b, child, mode); err != nil {
				return err
			}
		}
	}

	b.WriteString("</")
	b.WriteString(tag)
	b.WriteByte('>')
	return nil
}
