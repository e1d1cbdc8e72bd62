package xml

import (
	"bytes"
	"encoding/xml"
	"io"

	"github.com/htmlarena/htmlarena/dom"
)

type lifecycle int

const (
	stateNew lifecycle = iota
	stateRunning
	stateFinished
	stateConverted
)

// Parser is the XML parser lifecycle object from this package, the same
// shape as html.Parser.
type Parser struct {
	state     lifecycle
	buf       bytes.Buffer
	byteInput bool
	opts      ParseOptions
	builder   *Builder
}

// NewParser creates a parser in the NEW state.
func NewParser(opts ParseOptions) *Parser {
	return &Parser{state: stateNew, opts: opts}
}

// Process feeds a chunk of input (string or []byte); valid only in NEW or
// RUNNING, and moves the parser to RUNNING.
func (p *Parser) Process(chunk any) error {
	if p.state != stateNew && p.state != stateRunning {
		return errIllegalState("process is only valid in NEW or RUNNING")
	}
	switch v := chunk.(type) {
	case string:
		p.buf.WriteString(v)
	case []byte:
		p.buf.Write(v)
		p.byteInput = true
	default:
		return &TypeError{Message: "process accepts only string or []byte input"}
	}
	p.state = stateRunning
	return nil
}

// Finish drives the Decoder across everything buffered so far; valid in
// NEW (empty input) or RUNNING, and moves the parser to FINISHED.
func (p *Parser) Finish() error {
	if p.state != stateNew && p.state != stateRunning {
		return errIllegalState("finish is only valid in NEW or RUNNING")
	}
	p.builder = newBuilder()

	content := p.buf.Bytes()
	if p.opts.DiscardBOM {
		content = bytes.TrimPrefix(content, []byte{0xEF, 0xBB, 0xBF})
	}

	d := xml.NewDecoder(bytes.NewReader(content))
	p.run(d)
	p.state = stateFinished
	return nil
}

func (p *Parser) run(d *xml.Decoder) {
	b := p.builder
	for {
		tok, err := d.Token()
		if err != nil {
			if err != io.EOF {
				b.reportError(err.Error())
			}
			break
		}
		b.line = d.InputOffset() // monotonic proxy for progress, not a true line count
		switch t := tok.(type) {
		case xml.StartElement:
			attrs := make([]xmlAttr, 0, len(t.Attr))
			for _, a := range t.Attr {
				attrs = append(attrs, xmlAttr{Space: a.Name.Space, Local: a.Name.Local, Value: a.Value})
			}
			b.startElement(t.Name.Space, t.Name.Local, attrs)
		case xml.EndElement:
			b.endElement()
		case xml.CharData:
			b.charData(string(t))
		case xml.Comment:
			b.comment(string(t))
		case xml.ProcInst:
			b.procInst(t.Target, string(t.Inst))
		case xml.Directive:
			b.directive(string(t))
		}
	}
}

// IntoDOM returns the finished tree; valid only in FINISHED, and moves the
// parser to CONVERTED.
func (p *Parser) IntoDOM() (*dom.Tree, error) {
	if p.state != stateFinished {
		return nil, errIllegalState("into_dom is only valid in FINISHED")
	}
	p.state = stateConverted
	return p.builder.tree, nil
}

// Errors returns the accumulated non-fatal parse errors; observable once
// Finish has run.
func (p *Parser) Errors() ([]string, error) {
	if p.state == stateNew || p.state == stateRunning {
		return nil, errIllegalState("errors is only observable after finish")
	}
	return p.builder.errs, nil
}

// LineNumber returns the parser's progress counter; observable once
// Finish has run.
func (p *Parser) LineNumber() (int, error) {
	if p.state == stateNew || p.state == stateRunning {
		return 0, errIllegalState("line_number is only observable after finish")
	}
	return p.builder.line, nil
}

// Result is what Xml()/Parse() return.
type Result struct {
	Tree   *dom.Tree
	Root   dom.Node
	Errors []string
}

// Serialize renders Result.Root in XML mode.
func (r *Result) Serialize() (string, error) {
	return dom.Serialize(r.Root, dom.XML)
}

// Xml parses content as a single shot and returns the finished Result.
func Xml(content string, opts ParseOptions) (*Result, error) {
	p := NewParser(opts)
	if err := p.Process(content); err != nil {
		return nil, err
	}
	return finishResult(p)
}

// Parse drives a streaming parser to completion from r, reading until EOF.
func Parse(r io.Reader, opts ParseOptions) (*Result, error) {
	p := NewParser(opts)
	chunk := make([]byte, 32*1024)
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			buf := make([]byte, n)
			copy(buf, chunk[:n])
			if perr := p.Process(buf); perr != nil {
				return nil, perr
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	return finishResult(p)
}

func finishResult(p *Parser) (*Result, error) {
	if err := p.Finish(); err != nil {
		return nil, err
	}
	tree, err := p.IntoDOM()
	if err != nil {
		return nil, err
	}
	errs, _ := p.Errors()
	return &Result{Tree: tree, Root: dom.Wrap(tree.Root()), Errors: errs}, nil
}
