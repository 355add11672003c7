// Package css implements a hand-rolled recursive-descent parser for the
// practical CSS subset this browser understands: rules, at-rules, comments,
// the Simple/Ancestor selector grammar, and the full cssval.Value grammar
// (lengths, colors, function calls, unicode ranges, arity-2..4 shorthand
// arrays). It deliberately does not delegate to an off-the-shelf CSS parser:
// the bespoke value algebra and the Open-Question-corrected selector
// semantics (see Specificity below) are the component under construction.
package css

import (
	"strconv"
	"strings"

	"github.com/npillmayer/schuko/tracing"

	"github.com/go-webcore/minibrowser/core/browserr"
	"github.com/go-webcore/minibrowser/core/cssval"
)

func tracer() tracing.Trace {
	return tracing.Select("minibrowser.css")
}

// Stylesheet is a parsed CSS document: a source-ordered list of rules, an
// optional predecessor forming the cascade chain (the embedded user-agent
// sheet is typically the root), and the URL rules/url(...)s were resolved
// relative to.
type Stylesheet struct {
	Rules   []RuleType
	Parent  *Stylesheet
	BaseURL string
}

// RuleKind discriminates the variant a RuleType holds.
type RuleKind int

const (
	StyleRuleKind RuleKind = iota
	AtRuleKind
	CommentKind
)

// RuleType is a tagged union of a style rule, an at-rule, or a comment,
// retained in source order.
type RuleType struct {
	Kind    RuleKind
	Style   StyleRule
	At      AtRule
	Comment string
}

// StyleRule is a selector list plus the declarations it applies.
type StyleRule struct {
	Selectors    []Selector
	Declarations []Declaration
}

// AtRule models @import, @font-face, @media, @page, and any other at-rule
// the generic grammar can recognize: a name, an optional single value, and
// at most one embedded rule (enough to recognize, not apply, @media bodies).
type AtRule struct {
	Name     string
	Value    cssval.Value
	HasValue bool
	Rules    []RuleType
}

// SelectorKind discriminates the variant a Selector holds.
type SelectorKind int

const (
	SimpleSelectorKind SelectorKind = iota
	AncestorSelectorKind
)

// Selector is either a Simple selector (tag/id/classes) or an Ancestor
// (descendant-combinator) selector joining two Selectors.
type Selector struct {
	Kind     SelectorKind
	Tag      string
	ID       string
	Classes  []string
	Ancestor *Selector
	Child    *Selector
}

// Specificity is the lexicographically-compared (ids, classes, tags) triple
// used to order the cascade.
type Specificity struct {
	IDs, Classes, Tags int
}

// Less reports whether a has strictly lower specificity than b.
func (a Specificity) Less(b Specificity) bool {
	if a.IDs != b.IDs {
		return a.IDs < b.IDs
	}
	if a.Classes != b.Classes {
		return a.Classes < b.Classes
	}
	return a.Tags < b.Tags
}

// Specificity computes a selector's specificity triple. For AncestorSelectorKind
// this sums both halves' contributions component-wise rather than returning
// only the ancestor selector's specificity: the source this grammar was
// distilled from dropped the child selector's contribution entirely, which
// under-counts real CSS specificity (see DESIGN.md open question #2).
func (s Selector) Specificity() Specificity {
	switch s.Kind {
	case SimpleSelectorKind:
		sp := Specificity{Classes: len(s.Classes)}
		if s.ID != "" {
			sp.IDs = 1
		}
		if s.Tag != "" && s.Tag != "*" {
			sp.Tags = 1
		}
		return sp
	case AncestorSelectorKind:
		a := s.Ancestor.Specificity()
		c := s.Child.Specificity()
		return Specificity{a.IDs + c.IDs, a.Classes + c.Classes, a.Tags + c.Tags}
	}
	return Specificity{}
}

// Declaration is a single "name: value;" pair.
type Declaration struct {
	Name  string
	Value cssval.Value
}

// Parse parses a complete stylesheet from CSS source bytes. The returned
// Stylesheet has Parent unset; callers assemble the cascade chain themselves
// (see package browser).
func Parse(data []byte, baseURL string) (*Stylesheet, error) {
	p := &parser{data: data}
	var rules []RuleType
	for {
		p.skipSpace()
		if p.eof() {
			break
		}
		before := p.pos
		if r, ok := p.parseComment(); ok {
			rules = append(rules, r)
			continue
		}
		if r, ok := p.parseRule(); ok {
			rules = append(rules, r)
			continue
		}
		if r, ok := p.parseImportRule(); ok {
			rules = append(rules, r)
			continue
		}
		if r, ok := p.parseAtRule(); ok {
			rules = append(rules, r)
			continue
		}
		if p.pos == before {
			tracer().Debugf("css: stuck at byte %d, expected rule/at-rule/comment", p.pos)
			return nil, browserr.NewParseError("css", p.pos, "rule, at-rule, or comment")
		}
	}
	return &Stylesheet{Rules: rules, BaseURL: baseURL}, nil
}

// --- byte-cursor scanner ----------------------------------------------------

// parser is a backtracking byte-cursor scanner: every parseX method either
// advances pos past what it consumed and returns true, or restores pos to
// where it started and returns false. Composing these by sequencing and
// trying alternatives in order implements the grammar without a combinator
// library, matching the teacher's own hand-rolled byte-cursor table readers.
type parser struct {
	data []byte
	pos  int
}

func (p *parser) eof() bool { return p.pos >= len(p.data) }

func (p *parser) skipSpace() {
	for !p.eof() {
		switch p.data[p.pos] {
		case ' ', '\t', '\r', '\n':
			p.pos++
		default:
			return
		}
	}
}

// skipSpace1 requires at least one whitespace byte and reports whether any
// was consumed.
func (p *parser) skipSpace1() bool {
	start := p.pos
	p.skipSpace()
	return p.pos > start
}

func (p *parser) consumeByte(b byte) bool {
	if !p.eof() && p.data[p.pos] == b {
		p.pos++
		return true
	}
	return false
}

func (p *parser) consumeSeq(s string) bool {
	if p.pos+len(s) <= len(p.data) && string(p.data[p.pos:p.pos+len(s)]) == s {
		p.pos += len(s)
		return true
	}
	return false
}

func isAlpha(b byte) bool { return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') }
func isDigit(b byte) bool { return b >= '0' && b <= '9' }
func isAlphaNum(b byte) bool { return isAlpha(b) || isDigit(b) }
func isHex(b byte) bool {
	return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func (p *parser) countHex() int {
	n := 0
	for p.pos+n < len(p.data) && isHex(p.data[p.pos+n]) {
		n++
	}
	return n
}

// --- lexical primitives ------------------------------------------------------

func (p *parser) parseIdentifier() (string, bool) {
	save := p.pos
	p.skipSpace()
	if p.eof() || !isAlpha(p.data[p.pos]) {
		p.pos = save
		return "", false
	}
	start := p.pos
	p.pos++
	for !p.eof() && (isAlphaNum(p.data[p.pos]) || p.data[p.pos] == '-') {
		p.pos++
	}
	return string(p.data[start:p.pos]), true
}

// parseAlphaNumTag parses the grammar's bare "[A-Za-z0-9]+" token used for
// tag-name and class-name components of selectors.
func (p *parser) parseAlphaNumTag() (string, bool) {
	start := p.pos
	for !p.eof() && isAlphaNum(p.data[p.pos]) {
		p.pos++
	}
	if p.pos == start {
		return "", false
	}
	return string(p.data[start:p.pos]), true
}

// parseNumber parses an optionally-signed float accepting a leading '.'
// (".3em") and a leading '-' ("-3px"), matching the original grammar.
func (p *parser) parseNumber() (float64, bool) {
	start := p.pos
	p.consumeByte('-')
	digitsStart := p.pos
	for !p.eof() && isDigit(p.data[p.pos]) {
		p.pos++
	}
	intDigits := p.pos - digitsStart
	hasFrac := false
	if !p.eof() && p.data[p.pos] == '.' {
		dotPos := p.pos
		p.pos++
		fracStart := p.pos
		for !p.eof() && isDigit(p.data[p.pos]) {
			p.pos++
		}
		if p.pos > fracStart {
			hasFrac = true
		} else {
			p.pos = dotPos
		}
	}
	if intDigits == 0 && !hasFrac {
		p.pos = start
		return 0, false
	}
	v, err := strconv.ParseFloat(string(p.data[start:p.pos]), 64)
	if err != nil {
		p.pos = start
		return 0, false
	}
	return v, true
}

// parseSimpleNumber parses a bare unitless number, used as the
// lowest-priority one_value alternative (e.g. "font-weight: 400" or
// "line-height: 1.5"). It accepts the same forms as parseNumber.
func (p *parser) parseSimpleNumber() (cssval.Value, bool) {
	v, ok := p.parseNumber()
	if !ok {
		return cssval.Value{}, false
	}
	return cssval.Number(v), true
}

func (p *parser) parseUnit() (cssval.Unit, bool) {
	// Tried in this order so "rem" is matched before its "em" suffix.
	if p.consumeByte('%') {
		return cssval.Per, true
	}
	if p.consumeSeq("px") {
		return cssval.Px, true
	}
	if p.consumeSeq("rem") {
		return cssval.Rem, true
	}
	if p.consumeSeq("em") {
		return cssval.Em, true
	}
	return cssval.NoUnit, false
}

func (p *parser) parseLengthUnit() (cssval.Value, bool) {
	save := p.pos
	n, ok := p.parseNumber()
	if !ok {
		p.pos = save
		return cssval.Value{}, false
	}
	u, ok := p.parseUnit()
	if !ok {
		p.pos = save
		return cssval.Value{}, false
	}
	return cssval.Length(n, u), true
}

func (p *parser) parseHexColor() (cssval.Value, bool) {
	save := p.pos
	if !p.consumeByte('#') {
		p.pos = save
		return cssval.Value{}, false
	}
	if n := p.countHex(); n >= 6 {
		s := string(p.data[p.pos : p.pos+6])
		p.pos += 6
		return cssval.HexColorValue("#" + strings.ToLower(s)), true
	} else if n >= 3 {
		s := string(p.data[p.pos : p.pos+3])
		p.pos += 3
		return cssval.HexColorValue("#" + strings.ToLower(s)), true
	}
	p.pos = save
	return cssval.Value{}, false
}

// parseKeyword parses a bare identifier-ish token made of letters and
// hyphens. Unlike parseIdentifier it does not require an initial letter
// followed by alphanumerics — CSS keywords like "inline-block" are just
// runs of [A-Za-z-]. Keywords are stored case-sensitively, as written.
func (p *parser) parseKeyword() (cssval.Value, bool) {
	save := p.pos
	p.skipSpace()
	start := p.pos
	for !p.eof() && (isAlpha(p.data[p.pos]) || p.data[p.pos] == '-') {
		p.pos++
	}
	if p.pos == start {
		p.pos = save
		return cssval.Value{}, false
	}
	return cssval.Keyword(string(p.data[start:p.pos])), true
}

func unescape(b byte) byte {
	switch b {
	case 'n':
		return '\n'
	case 'r':
		return '\r'
	case 't':
		return '\t'
	case 'b':
		return '\b'
	case 'f':
		return '\f'
	default:
		return b
	}
}

func (p *parser) parseDoubleQuoted() (cssval.Value, bool) {
	save := p.pos
	if !p.consumeByte('"') {
		p.pos = save
		return cssval.Value{}, false
	}
	var sb strings.Builder
	for !p.eof() && p.data[p.pos] != '"' {
		if p.data[p.pos] == '\\' && p.pos+1 < len(p.data) {
			p.pos++
			sb.WriteByte(unescape(p.data[p.pos]))
			p.pos++
			continue
		}
		sb.WriteByte(p.data[p.pos])
		p.pos++
	}
	if !p.consumeByte('"') {
		p.pos = save
		return cssval.Value{}, false
	}
	return cssval.StringLiteral(sb.String()), true
}

func (p *parser) parseSingleQuoted() (cssval.Value, bool) {
	save := p.pos
	if !p.consumeByte('\'') {
		p.pos = save
		return cssval.Value{}, false
	}
	start := p.pos
	for !p.eof() && p.data[p.pos] != '\'' {
		p.pos++
	}
	if p.eof() {
		p.pos = save
		return cssval.Value{}, false
	}
	s := string(p.data[start:p.pos])
	p.pos++
	return cssval.StringLiteral(s), true
}

func (p *parser) parseStringLiteral() (cssval.Value, bool) {
	if v, ok := p.parseDoubleQuoted(); ok {
		return v, true
	}
	return p.parseSingleQuoted()
}

// parseURLToken parses a url(...)'s argument: a string literal, or (absent
// quotes) every byte up to the first ')' or '>'.
func (p *parser) parseURLToken() (cssval.Value, bool) {
	if v, ok := p.parseStringLiteral(); ok {
		return v, true
	}
	start := p.pos
	for !p.eof() && p.data[p.pos] != ')' && p.data[p.pos] != '>' {
		p.pos++
	}
	if p.pos == start {
		return cssval.Value{}, false
	}
	return cssval.StringLiteral(string(p.data[start:p.pos])), true
}

// parseFormatFollower parses and discards a trailing format('woff2')-style
// hint after a url(...) funcall, per spec §4.1.
func (p *parser) parseFormatFollower() bool {
	save := p.pos
	p.skipSpace()
	if !p.consumeSeq("format") {
		p.pos = save
		return false
	}
	if !p.consumeByte('(') {
		p.pos = save
		return false
	}
	if _, ok := p.parseURLToken(); !ok {
		p.pos = save
		return false
	}
	if !p.consumeByte(')') {
		p.pos = save
		return false
	}
	return true
}

func (p *parser) parseURLFunCall() (cssval.Value, bool) {
	save := p.pos
	p.skipSpace()
	if !p.consumeSeq("url") {
		p.pos = save
		return cssval.Value{}, false
	}
	p.skipSpace()
	if !p.consumeByte('(') {
		p.pos = save
		return cssval.Value{}, false
	}
	v, ok := p.parseURLToken()
	if !ok {
		p.pos = save
		return cssval.Value{}, false
	}
	if !p.consumeByte(')') {
		p.pos = save
		return cssval.Value{}, false
	}
	p.skipSpace()
	p.parseFormatFollower()
	return cssval.FunCall("url", v), true
}

// parseFunArg parses a function-call argument: the grammar's narrower
// funarg set (string, hex color, length, or keyword) rather than the full
// one_value set — function arguments never carry unicode ranges or nested
// function calls in this grammar.
func (p *parser) parseFunArg() (cssval.Value, bool) {
	if v, ok := p.parseStringLiteral(); ok {
		return v, true
	}
	if v, ok := p.parseHexColor(); ok {
		return v, true
	}
	if v, ok := p.parseLengthUnit(); ok {
		return v, true
	}
	if v, ok := p.parseKeyword(); ok {
		return v, true
	}
	return cssval.Value{}, false
}

func (p *parser) parseNormalFunCall() (cssval.Value, bool) {
	save := p.pos
	p.skipSpace()
	name, ok := p.parseIdentifier()
	if !ok {
		p.pos = save
		return cssval.Value{}, false
	}
	p.skipSpace()
	if !p.consumeByte('(') {
		p.pos = save
		return cssval.Value{}, false
	}
	p.skipSpace()
	var args []cssval.Value
	if arg, ok := p.parseFunArg(); ok {
		args = append(args, arg)
		for {
			save2 := p.pos
			p.skipSpace()
			if !p.consumeByte(',') {
				p.pos = save2
				break
			}
			p.skipSpace()
			nextArg, ok := p.parseFunArg()
			if !ok {
				p.pos = save2
				break
			}
			args = append(args, nextArg)
		}
	}
	p.skipSpace()
	if !p.consumeByte(')') {
		p.pos = save
		return cssval.Value{}, false
	}
	return cssval.FunCall(name, args...), true
}

func (p *parser) parseFunCall() (cssval.Value, bool) {
	if v, ok := p.parseURLFunCall(); ok {
		return v, true
	}
	return p.parseNormalFunCall()
}

func (p *parser) parseHex4() (int32, bool) {
	if p.pos+4 > len(p.data) {
		return 0, false
	}
	for i := 0; i < 4; i++ {
		if !isHex(p.data[p.pos+i]) {
			return 0, false
		}
	}
	v, err := strconv.ParseInt(string(p.data[p.pos:p.pos+4]), 16, 32)
	if err != nil {
		return 0, false
	}
	p.pos += 4
	return int32(v), true
}

func (p *parser) parseUnicodeRange() (cssval.Value, bool) {
	save := p.pos
	p.skipSpace()
	if !p.consumeSeq("U+") {
		p.pos = save
		return cssval.Value{}, false
	}
	lo, ok := p.parseHex4()
	if !ok {
		p.pos = save
		return cssval.Value{}, false
	}
	if !p.consumeByte('-') {
		p.pos = save
		return cssval.Value{}, false
	}
	hi, ok := p.parseHex4()
	if !ok {
		p.pos = save
		return cssval.Value{}, false
	}
	return cssval.UnicodeRangeValue(rune(lo), rune(hi)), true
}

func (p *parser) parseUnicodeCodepoint() (cssval.Value, bool) {
	save := p.pos
	p.skipSpace()
	if !p.consumeSeq("U+") {
		p.pos = save
		return cssval.Value{}, false
	}
	cp, ok := p.parseHex4()
	if !ok {
		p.pos = save
		return cssval.Value{}, false
	}
	return cssval.UnicodeCodepointValue(rune(cp)), true
}

// parseOneValue implements one_value, trying alternatives in the exact
// order spec §4.1 requires: unicode range/codepoint before funcall (so a
// bare "U+..." token is never mistaken for an identifier), hex color and
// length before keyword, keyword before string, string before a bare number.
func (p *parser) parseOneValue() (cssval.Value, bool) {
	if v, ok := p.parseUnicodeRange(); ok {
		return v, true
	}
	if v, ok := p.parseUnicodeCodepoint(); ok {
		return v, true
	}
	if v, ok := p.parseFunCall(); ok {
		return v, true
	}
	if v, ok := p.parseHexColor(); ok {
		return v, true
	}
	if v, ok := p.parseLengthUnit(); ok {
		return v, true
	}
	if v, ok := p.parseKeyword(); ok {
		return v, true
	}
	if v, ok := p.parseStringLiteral(); ok {
		return v, true
	}
	if v, ok := p.parseSimpleNumber(); ok {
		return v, true
	}
	return cssval.Value{}, false
}

// parseArrayN parses exactly n one_values separated by required whitespace
// (no commas) — the shorthand arity-2..4 form (e.g. "1px 2px 3px 4px").
func (p *parser) parseArrayN(n int) ([]cssval.Value, bool) {
	save := p.pos
	values := make([]cssval.Value, 0, n)
	v, ok := p.parseOneValue()
	if !ok {
		p.pos = save
		return nil, false
	}
	values = append(values, v)
	for i := 1; i < n; i++ {
		if !p.skipSpace1() {
			p.pos = save
			return nil, false
		}
		v, ok := p.parseOneValue()
		if !ok {
			p.pos = save
			return nil, false
		}
		values = append(values, v)
	}
	return values, true
}

// parseCommaList implements list_array_value: a comma-separated list of
// one_values, collapsing to a single Value when exactly one element was
// found (arrays only arise from space-separated shorthand or an actual
// multi-element comma list).
func (p *parser) parseCommaList() (cssval.Value, bool) {
	save := p.pos
	var values []cssval.Value
	v, ok := p.parseOneValue()
	if !ok {
		p.pos = save
		return cssval.Value{}, false
	}
	values = append(values, v)
	for {
		save2 := p.pos
		p.skipSpace()
		if !p.consumeByte(',') {
			p.pos = save2
			break
		}
		p.skipSpace()
		next, ok := p.parseOneValue()
		if !ok {
			p.pos = save2
			break
		}
		values = append(values, next)
	}
	if len(values) == 1 {
		return values[0], true
	}
	return cssval.Array(values...), true
}

// parseValue implements value := array4 | array3 | array2 | comma_list |
// one_value, attempted in exactly that order.
func (p *parser) parseValue() (cssval.Value, bool) {
	if items, ok := p.parseArrayN(4); ok {
		return cssval.Array(items...), true
	}
	if items, ok := p.parseArrayN(3); ok {
		return cssval.Array(items...), true
	}
	if items, ok := p.parseArrayN(2); ok {
		return cssval.Array(items...), true
	}
	if v, ok := p.parseCommaList(); ok {
		return v, true
	}
	return p.parseOneValue()
}

func (p *parser) parseDeclaration() (Declaration, bool) {
	save := p.pos
	p.skipSpace()
	name, ok := p.parseIdentifier()
	if !ok {
		p.pos = save
		return Declaration{}, false
	}
	p.skipSpace()
	if !p.consumeByte(':') {
		p.pos = save
		return Declaration{}, false
	}
	p.skipSpace()
	val, ok := p.parseValue()
	if !ok {
		p.pos = save
		return Declaration{}, false
	}
	p.skipSpace()
	if !p.consumeByte(';') {
		p.pos = save
		return Declaration{}, false
	}
	return Declaration{Name: name, Value: val}, true
}

// --- selectors ---------------------------------------------------------------

func (p *parser) parseStarSelector() (Selector, bool) {
	if p.consumeByte('*') {
		return Selector{Kind: SimpleSelectorKind, Tag: "*"}, true
	}
	return Selector{}, false
}

func (p *parser) parseClassSelector() (Selector, bool) {
	save := p.pos
	if !p.consumeByte('.') {
		p.pos = save
		return Selector{}, false
	}
	name, ok := p.parseAlphaNumTag()
	if !ok {
		p.pos = save
		return Selector{}, false
	}
	return Selector{Kind: SimpleSelectorKind, Classes: []string{name}}, true
}

func (p *parser) parseAncestorSelector() (Selector, bool) {
	save := p.pos
	a, ok := p.parseAlphaNumTag()
	if !ok {
		p.pos = save
		return Selector{}, false
	}
	if !p.skipSpace1() {
		p.pos = save
		return Selector{}, false
	}
	b, ok := p.parseAlphaNumTag()
	if !ok {
		p.pos = save
		return Selector{}, false
	}
	ancestor := Selector{Kind: SimpleSelectorKind, Tag: a}
	child := Selector{Kind: SimpleSelectorKind, Tag: b}
	return Selector{Kind: AncestorSelectorKind, Ancestor: &ancestor, Child: &child}, true
}

// parseSelector implements selector := ancestor | class | star | tag.
func (p *parser) parseSelector() (Selector, bool) {
	p.skipSpace()
	var sel Selector
	var ok bool
	if sel, ok = p.parseAncestorSelector(); !ok {
		if sel, ok = p.parseClassSelector(); !ok {
			if sel, ok = p.parseStarSelector(); !ok {
				if tag, tagOK := p.parseAlphaNumTag(); tagOK {
					sel, ok = Selector{Kind: SimpleSelectorKind, Tag: tag}, true
				}
			}
		}
	}
	if !ok {
		return Selector{}, false
	}
	p.skipSpace()
	return sel, true
}

func (p *parser) parseSelectorList() ([]Selector, bool) {
	save := p.pos
	first, ok := p.parseSelector()
	if !ok {
		p.pos = save
		return nil, false
	}
	sels := []Selector{first}
	for {
		save2 := p.pos
		p.skipSpace()
		if !p.consumeByte(',') {
			p.pos = save2
			break
		}
		next, ok := p.parseSelector()
		if !ok {
			p.pos = save2
			break
		}
		sels = append(sels, next)
	}
	return sels, true
}

// --- rules, at-rules, comments -------------------------------------------

func (p *parser) parseComment() (RuleType, bool) {
	save := p.pos
	p.skipSpace()
	if !p.consumeSeq("/*") {
		p.pos = save
		return RuleType{}, false
	}
	start := p.pos
	for !p.eof() {
		if p.data[p.pos] == '*' && p.pos+1 < len(p.data) && p.data[p.pos+1] == '/' {
			break
		}
		p.pos++
	}
	if p.eof() {
		p.pos = save
		return RuleType{}, false
	}
	text := string(p.data[start:p.pos])
	p.pos += 2
	return RuleType{Kind: CommentKind, Comment: text}, true
}

func (p *parser) wsSym(ch byte) bool {
	p.skipSpace()
	if !p.consumeByte(ch) {
		return false
	}
	p.skipSpace()
	return true
}

func (p *parser) parseRule() (RuleType, bool) {
	save := p.pos
	sels, ok := p.parseSelectorList()
	if !ok {
		p.pos = save
		return RuleType{}, false
	}
	if !p.wsSym('{') {
		p.pos = save
		return RuleType{}, false
	}
	p.parseComment()
	var decls []Declaration
	for {
		p.skipSpace()
		if _, ok := p.parseComment(); ok {
			continue
		}
		d, ok := p.parseDeclaration()
		if !ok {
			break
		}
		decls = append(decls, d)
	}
	p.parseComment()
	if !p.wsSym('}') {
		p.pos = save
		return RuleType{}, false
	}
	return RuleType{Kind: StyleRuleKind, Style: StyleRule{Selectors: sels, Declarations: decls}}, true
}

func (p *parser) parseImportRule() (RuleType, bool) {
	save := p.pos
	p.skipSpace()
	if !p.consumeByte('@') {
		p.pos = save
		return RuleType{}, false
	}
	name, ok := p.parseIdentifier()
	if !ok {
		p.pos = save
		return RuleType{}, false
	}
	p.skipSpace()
	if !p.consumeSeq("url") {
		p.pos = save
		return RuleType{}, false
	}
	if !p.consumeByte('(') {
		p.pos = save
		return RuleType{}, false
	}
	urlVal, ok := p.parseURLToken()
	if !ok {
		p.pos = save
		return RuleType{}, false
	}
	if !p.consumeByte(')') {
		p.pos = save
		return RuleType{}, false
	}
	if !p.consumeByte(';') {
		p.pos = save
		return RuleType{}, false
	}
	return RuleType{Kind: AtRuleKind, At: AtRule{
		Name:     name,
		Value:    cssval.FunCall("url", urlVal),
		HasValue: true,
	}}, true
}

// parseAtRule implements the generic at-rule grammar: '@' ident keyword?
// string_literal? rule? ';'? — enough to recognize @font-face, @page, and
// @media screen { ... } bodies without applying @media's contained rules
// (spec §4.1/§9).
func (p *parser) parseAtRule() (RuleType, bool) {
	save := p.pos
	p.skipSpace()
	if !p.consumeByte('@') {
		p.pos = save
		return RuleType{}, false
	}
	name, ok := p.parseIdentifier()
	if !ok {
		p.pos = save
		return RuleType{}, false
	}
	p.skipSpace()
	var value cssval.Value
	hasValue := false
	if kw, ok := p.parseKeyword(); ok {
		value, hasValue = kw, true
	}
	p.skipSpace()
	if !hasValue {
		if sv, ok := p.parseStringLiteral(); ok {
			value, hasValue = sv, true
		}
	}
	p.skipSpace()
	var rules []RuleType
	if r, ok := p.parseRule(); ok {
		rules = append(rules, r)
	} else if body := p.pos; p.wsSym('{') {
		// A braced body holds either one nested rule (@media screen { div {...} })
		// or a selector-less declaration block (@font-face { src: ...; }).
		r, ok := p.parseRule()
		if !ok {
			r = RuleType{Kind: StyleRuleKind}
			for d, ok := p.parseDeclaration(); ok; d, ok = p.parseDeclaration() {
				r.Style.Declarations = append(r.Style.Declarations, d)
			}
		}
		if p.wsSym('}') {
			rules = append(rules, r)
		} else {
			p.pos = body
		}
	}
	p.skipSpace()
	p.consumeByte(';')
	at := AtRule{Name: name, Rules: rules, HasValue: hasValue}
	if hasValue {
		at.Value = value
	}
	tracer().Debugf("css: recognized at-rule @%s, not applied", name)
	return RuleType{Kind: AtRuleKind, At: at}, true
}
