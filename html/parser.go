// Package html implements the HTML5 tree-construction sink: a streaming
// Parser with an explicit lifecycle (NEW -> RUNNING -> FINISHED ->
// CONVERTED) driving golang.org/x/net/html's low-level Tokenizer into a
// dom.Tree, plus single-shot Html()/Parse() convenience entry points.
package html

import (
	"bytes"
	"io"

	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/charset"

	"github.com/htmlarena/htmlarena/dom"
)

type lifecycle int

const (
	stateNew lifecycle = iota
	stateRunning
	stateFinished
	stateConverted
)

// Parser is the HTML5 parser lifecycle object from this package: Process
// chunks accumulate, Finish runs the tree-construction sink against the
// full buffered content (chunk granularity does not affect the output
// tree — this package's streaming-convenience property), and IntoDOM hands
// back the finished tree exactly once.
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

// Finish runs the tree builder against everything buffered so far; valid
// in NEW (empty input) or RUNNING, and moves the parser to FINISHED.
func (p *Parser) Finish() error {
	if p.state != stateNew && p.state != stateRunning {
		return errIllegalState("finish is only valid in NEW or RUNNING")
	}
	p.builder = newBuilder(p.opts)

	var reader io.Reader = bytes.NewReader(p.buf.Bytes())
	if p.byteInput {
		decoded, err := decodeContent(p.buf.Bytes(), p.opts)
		if err != nil {
			return err
		}
		reader = decoded
	}

	z := xhtml.NewTokenizer(reader)
	p.builder.run(z)
	p.state = stateFinished
	return nil
}

// decodeContent applies the HTML5 encoding-sniffing rule (BOM -> declared
// <meta> charset -> UTF-8 if the bytes are valid UTF-8, otherwise
// windows-1252) via golang.org/x/net/html/charset, the same
// dependency the prior html/parser.go pulls in through golang.org/x/net.
func decodeContent(content []byte, opts ParseOptions) (io.Reader, error) {
	if opts.DiscardBOM {
		content = bytes.TrimPrefix(content, []byte{0xEF, 0xBB, 0xBF})
	}
	r, err := charset.NewReader(bytes.NewReader(content), "")
	if err != nil {
		return nil, &DecodeError{Message: err.Error()}
	}
	return r, nil
}

// IntoDOM returns the finished tree; valid only in FINISHED, and moves the
// parser to CONVERTED. Further Process/Finish/IntoDOM calls fail with
// IllegalState once converted; Errors, LineNumber and QuirksMode do not
// fail after conversion and keep returning the finished parse's values.
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

// LineNumber returns the parser's current line-number estimate; observable
// once Finish has run.
func (p *Parser) LineNumber() (int, error) {
	if p.state == stateNew || p.state == stateRunning {
		return 0, errIllegalState("line_number is only observable after finish")
	}
	return p.builder.line, nil
}

// QuirksMode returns the document's resolved quirks mode; observable once
// Finish has run.
func (p *Parser) QuirksMode() (QuirksMode, error) {
	if p.state == stateNew || p.state == stateRunning {
		return QuirksOff, errIllegalState("quirks_mode is only observable after finish")
	}
	return p.builder.quirks, nil
}

// Result is what Html()/Parse() return: a finished tree plus the parser
// observables this package requires a single-shot entry point to expose.
type Result struct {
	Tree   *dom.Tree
	Root   dom.Node
	Errors []string
	Quirks QuirksMode
}

// Serialize renders Result.Root in the given mode.
func (r *Result) Serialize(mode dom.Mode) (string, error) {
	return dom.Serialize(r.Root, mode)
}

// Html parses content as a single shot and returns the finished Result.
func Html(content string, opts ParseOptions) (*Result, error) {
	p := NewParser(opts)
	if err := p.Process(content); err != nil {
		return nil, err
	}
	return finishResult(p)
}

// Parse drives a streaming parser to completion from r, reading until EOF.
// Chunk size does not affect the resulting tree.
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
	quirks, _ := p.QuirksMode()
	return &Result{
		Tree:   tree,
		Root:   dom.Wrap(tree.Root()),
		Errors: errs,
		Quirks: quirks,
	}, nil
}
