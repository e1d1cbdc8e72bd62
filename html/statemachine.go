package html

import (
	"bytes"
	"io"
	"strings"

	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/htmlarena/htmlarena/dom"
)

// run drives z to completion against b, implementing the practically
// load-bearing subset of the HTML5 tree-construction insertion modes (see
// SPEC_FULL.md §4.3's documented simplification): initial, beforeHTML,
// beforeHead, inHead, afterHead, inBody, text (RCDATA/RAWTEXT), afterBody,
// afterAfterBody, plus table foster-parenting and p-autoclose.
func (b *Builder) run(z *xhtml.Tokenizer) {
	for {
		tt := z.Next()
		b.line += bytes.Count(z.Raw(), []byte{'\n'})
		if tt == xhtml.ErrorToken {
			if err := z.Err(); err != nil && err != io.EOF {
				b.reportError(err.Error())
			}
			return
		}
		b.dispatch(tt, z.Token(), tt == xhtml.SelfClosingTagToken)
	}
}

func (b *Builder) dispatch(tt xhtml.TokenType, tok xhtml.Token, selfClosing bool) {
	switch tt {
	case xhtml.DoctypeToken:
		b.handleDoctype(tok)
	case xhtml.CommentToken:
		if err := b.insertComment(tok.Data); err != nil {
			b.reportError(err.Error())
		}
	case xhtml.TextToken:
		b.handleText(tok)
	case xhtml.StartTagToken, xhtml.SelfClosingTagToken:
		b.handleStartTag(tok, selfClosing)
	case xhtml.EndTagToken:
		b.handleEndTag(tok)
	}
}

func attrsFromToken(tok xhtml.Token) []dom.Attr {
	if len(tok.Attr) == 0 {
		return nil
	}
	out := make([]dom.Attr, 0, len(tok.Attr))
	for _, a := range tok.Attr {
		out = append(out, dom.Attr{Key: dom.QN(a.Key), Value: a.Val})
	}
	return out
}

func tokenAtom(tok xhtml.Token) atom.Atom {
	if tok.DataAtom != 0 {
		return tok.DataAtom
	}
	return atom.Lookup([]byte(tok.Data))
}

func (b *Builder) handleDoctype(tok xhtml.Token) {
	if b.mode != modeInitial {
		b.reportError("unexpected doctype")
		return
	}
	if !b.quirksForced {
		b.quirks = classifyQuirks(tok)
	}
	if !b.opts.DropDoctype {
		name := tok.Data
		var public, system string
		for _, a := range tok.Attr {
			switch a.Key {
			case "public":
				public = a.Val
			case "system":
				system = a.Val
			}
		}
		if _, err := b.root.CreateDoctype(name, public, system, dom.Append); err != nil {
			b.reportError(err.Error())
		}
	}
	b.mode = modeBeforeHTML
}

// classifyQuirks implements a simplified version of the HTML5 "quirks mode
// from doctype" algorithm: a bare `<!DOCTYPE html>` is standards mode,
// anything with an HTML4 transitional/frameset public ID and no system ID
// is full quirks, and any other non-"html" doctype name is full quirks.
func classifyQuirks(tok xhtml.Token) QuirksMode {
	name := strings.ToLower(tok.Data)
	var public, system string
	for _, a := range tok.Attr {
		switch a.Key {
		case "public":
			public = strings.ToLower(a.Val)
		case "system":
			system = strings.ToLower(a.Val)
		}
	}
	if name == "html" && public == "" && system == "" {
		return QuirksOff
	}
	if name != "html" {
		return QuirksFull
	}
	if strings.HasPrefix(public, "-//w3c//dtd html 4.01 frameset") ||
		strings.HasPrefix(public, "-//w3c//dtd html 4.01 transitional") {
		if system == "" {
			return QuirksFull
		}
		return QuirksLimited
	}
	return QuirksLimited
}

func (b *Builder) handleText(tok xhtml.Token) {
	data := tok.Data
	switch b.mode {
	case modeInitial:
		if isWhitespace(data) {
			return
		}
		b.mode = modeBeforeHTML
		b.handleText(tok)
	case modeBeforeHTML:
		if isWhitespace(data) {
			return
		}
		b.openHTMLImplicit()
		b.mode = modeBeforeHead
		b.handleText(tok)
	case modeBeforeHead:
		if isWhitespace(data) {
			return
		}
		b.openHeadImplicit()
		b.mode = modeInHead
		b.handleText(tok)
	case modeInHead:
		if isWhitespace(data) {
			if err := b.insertText(data); err != nil {
				b.reportError(err.Error())
			}
			return
		}
		b.closeHeadImplicit()
		b.mode = modeAfterHead
		b.handleText(tok)
	case modeAfterHead:
		if isWhitespace(data) {
			if err := b.insertText(data); err != nil {
				b.reportError(err.Error())
			}
			return
		}
		b.openBodyImplicit()
		b.mode = modeInBody
		b.handleText(tok)
	case modeText:
		if err := b.insertText(data); err != nil {
			b.reportError(err.Error())
		}
	case modeAfterBody, modeAfterAfterBody:
		if !isWhitespace(data) {
			b.mode = modeInBody
		}
		if err := b.insertText(data); err != nil {
			b.reportError(err.Error())
		}
	default: // modeInBody
		if err := b.insertText(data); err != nil {
			b.reportError(err.Error())
		}
	}
}

func (b *Builder) handleStartTag(tok xhtml.Token, selfClosing bool) {
	a := tokenAtom(tok)
	name := tok.Data
	attrs := attrsFromToken(tok)

	switch b.mode {
	case modeInitial:
		b.mode = modeBeforeHTML
		b.handleStartTag(tok, selfClosing)

	case modeBeforeHTML:
		if a == atom.Html {
			node, err := b.root.CreateElement(dom.QN(name), attrs, false, false, dom.Append)
			if err != nil {
				b.reportError(err.Error())
				return
			}
			b.push(node)
			b.mode = modeBeforeHead
			return
		}
		b.openHTMLImplicit()
		b.mode = modeBeforeHead
		b.handleStartTag(tok, selfClosing)

	case modeBeforeHead:
		switch a {
		case atom.Html:
			b.reopenHTML(attrs)
		case atom.Head:
			if _, err := b.insertElement(name, attrs, true); err != nil {
				b.reportError(err.Error())
			}
			b.mode = modeInHead
		default:
			b.openHeadImplicit()
			b.mode = modeInHead
			b.handleStartTag(tok, selfClosing)
		}

	case modeInHead:
		switch a {
		case atom.Html:
			b.reopenHTML(attrs)
		case atom.Base, atom.Basefont, atom.Bgsound, atom.Link, atom.Meta:
			if _, err := b.insertElement(name, attrs, false); err != nil {
				b.reportError(err.Error())
			}
		case atom.Title, atom.Noscript, atom.Noframes, atom.Style, atom.Script:
			if _, err := b.insertElement(name, attrs, true); err != nil {
				b.reportError(err.Error())
				return
			}
			b.enterText(modeInHead, name)
		case atom.Head:
			b.reportError("unexpected head start tag")
		default:
			b.closeHeadImplicit()
			b.mode = modeAfterHead
			b.handleStartTag(tok, selfClosing)
		}

	case modeAfterHead:
		switch a {
		case atom.Html:
			b.reopenHTML(attrs)
		case atom.Body:
			if _, err := b.insertElement(name, attrs, true); err != nil {
				b.reportError(err.Error())
				return
			}
			b.mode = modeInBody
		case atom.Head:
			b.reportError("unexpected head start tag")
		default:
			b.openBodyImplicit()
			b.mode = modeInBody
			b.handleStartTag(tok, selfClosing)
		}

	case modeText:
		// unreachable: the tokenizer itself stays in RCDATA/RAWTEXT state
		// until the matching end tag, so no start tag can surface here.

	case modeAfterBody, modeAfterAfterBody:
		if a == atom.Html {
			b.reopenHTML(attrs)
			return
		}
		b.mode = modeInBody
		b.handleStartTag(tok, selfClosing)

	default: // modeInBody
		b.startTagInBody(name, a, attrs, selfClosing)
	}
}

func (b *Builder) startTagInBody(name string, a atom.Atom, attrs []dom.Attr, selfClosing bool) {
	switch a {
	case atom.Html:
		b.reopenHTML(attrs)
		return
	case atom.Title, atom.Script, atom.Style, atom.Textarea:
		if _, err := b.insertElement(name, attrs, true); err != nil {
			b.reportError(err.Error())
			return
		}
		b.enterText(modeInBody, name)
		return
	case atom.Form:
		if b.haveForm && b.templateDepth == 0 {
			b.reportError("nested form element")
			return
		}
		node, err := b.insertElement(name, attrs, true)
		if err != nil {
			b.reportError(err.Error())
			return
		}
		b.formElement = node
		b.haveForm = true
		return
	case atom.Template:
		node, err := b.insertElement(name, attrs, true)
		if err != nil {
			b.reportError(err.Error())
			return
		}
		if err := node.SetTemplate(true); err != nil {
			b.reportError(err.Error())
		}
		b.templateDepth++
		return
	}

	if blockAutoClose[a] {
		if elementAtom(b.current()) == atom.P {
			b.popThrough("p")
		}
	}

	push := !dom.IsVoidElement(name) && !selfClosing
	if _, err := b.insertElement(name, attrs, push); err != nil {
		b.reportError(err.Error())
	}
}

func (b *Builder) handleEndTag(tok xhtml.Token) {
	a := tokenAtom(tok)
	name := tok.Data

	switch b.mode {
	case modeText:
		if strings.EqualFold(name, b.textTag) {
			b.popThrough(name)
			b.mode = b.origMode
			return
		}
		b.reportError("unexpected end tag in text mode: " + name)

	case modeInHead:
		if a == atom.Head {
			b.popThrough("head")
			b.mode = modeAfterHead
			return
		}
		b.reportError("unexpected end tag in head: " + name)

	case modeInitial, modeBeforeHTML, modeBeforeHead, modeAfterHead:
		b.reportError("unexpected end tag: " + name)

	case modeAfterBody:
		if a == atom.Html {
			b.mode = modeAfterAfterBody
			return
		}
		b.mode = modeInBody
		b.handleEndTag(tok)

	case modeAfterAfterBody:
		b.reportError("unexpected end tag after html: " + name)

	default: // modeInBody
		if a == atom.Body {
			b.mode = modeAfterBody
			return
		}
		if a == atom.Html {
			b.mode = modeAfterBody
			b.handleEndTag(tok)
			return
		}
		if a == atom.Template && b.templateDepth > 0 {
			b.templateDepth--
		}
		if a == atom.Form {
			b.haveForm = false
		}
		if !b.popThrough(name) {
			b.reportError("unmatched end tag: " + name)
		}
	}
}

func (b *Builder) openHTMLImplicit() {
	node, err := b.root.CreateElement(dom.QN("html"), nil, false, false, dom.Append)
	if err != nil {
		b.reportError(err.Error())
		return
	}
	b.push(node)
}

func (b *Builder) openHeadImplicit() {
	if _, err := b.insertElement("head", nil, true); err != nil {
		b.reportError(err.Error())
	}
}

func (b *Builder) closeHeadImplicit() {
	b.popThrough("head")
}

func (b *Builder) openBodyImplicit() {
	if _, err := b.insertElement("body", nil, true); err != nil {
		b.reportError(err.Error())
	}
}
