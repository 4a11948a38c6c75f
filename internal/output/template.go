package output

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/mattn/go-runewidth"
)

// Default line templates for normal and virtual results.
const (
	DefaultTemplate        = "%s%A%u %|a %|n %|v - %d"
	DefaultVirtualTemplate = "%s%A%u %|a %|n -> %p %v"
)

// archWidth is the fixed column width of an aligned architecture.
const archWidth = 6

// Field selects the result attribute substituted for a placeholder.
type Field rune

const (
	FieldName      Field = 'n'
	FieldVersion   Field = 'v'
	FieldArch      Field = 'a'
	FieldPackage   Field = 'p'
	FieldSummary   Field = 'd'
	FieldState     Field = 's'
	FieldAutomatic Field = 'A'
	FieldSelect    Field = 'S'
	FieldUpgrade   Field = 'u'
)

// alignable reports whether the field accepts the '|' alignment flag.
// Single-character flags are accepted and render unchanged.
func (f Field) alignable() bool {
	switch f {
	case FieldName, FieldVersion, FieldArch, FieldState, FieldAutomatic, FieldSelect, FieldUpgrade:
		return true
	}
	return false
}

func (f Field) valid() bool {
	return f.alignable() || f == FieldPackage || f == FieldSummary
}

// Template errors
var (
	ErrUnknownField          = errors.New("unknown format field")
	ErrUnsupportedAlign      = errors.New("field does not support alignment")
	ErrIncompletePlaceholder = errors.New("incomplete placeholder")
)

// FormatError reports a template that cannot be compiled.
type FormatError struct {
	Template string
	Offset   int
	Err      error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid format %q at offset %d: %v", e.Template, e.Offset, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// AST types for Participle grammar

type templateExpr struct {
	Parts []*partExpr `parser:"@@*"`
}

type partExpr struct {
	Pos         lexer.Position
	Placeholder *string `parser:"  @Placeholder"`
	Literal     *string `parser:"| @Literal"`
}

var templateLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Placeholder", Pattern: `%\|?(?s:.)?`},
	{Name: "Literal", Pattern: `[^%]+`},
})

var templateParser = participle.MustBuild[templateExpr](
	participle.Lexer(templateLexer),
)

// segment is either literal text or a placeholder.
type segment struct {
	literal string
	field   Field
	align   bool
}

// Template is a compiled line template.
type Template struct {
	source   string
	segments []segment
}

// Widths are the column widths of aligned name and version fields.
type Widths struct {
	Name    int
	Version int
}

// CompileTemplate compiles a line template. '%' followed by a field
// character is substituted per result, "%|" pads the field to its column
// width.
func CompileTemplate(text string) (*Template, error) {
	t := &Template{source: text}
	if text == "" {
		return t, nil
	}

	ast, err := templateParser.ParseString("", text)
	if err != nil {
		return nil, &FormatError{Template: text, Err: err}
	}

	for _, part := range ast.Parts {
		if part.Literal != nil {
			t.segments = append(t.segments, segment{literal: *part.Literal})
			continue
		}

		ph := strings.TrimPrefix(*part.Placeholder, "%")
		seg := segment{}
		if rest, ok := strings.CutPrefix(ph, "|"); ok {
			seg.align = true
			ph = rest
		}
		if ph == "" {
			return nil, &FormatError{Template: text, Offset: part.Pos.Offset, Err: ErrIncompletePlaceholder}
		}

		seg.field = Field([]rune(ph)[0])
		switch {
		case !seg.field.valid():
			return nil, &FormatError{
				Template: text,
				Offset:   part.Pos.Offset,
				Err:      fmt.Errorf("%w %q", ErrUnknownField, ph),
			}
		case seg.align && !seg.field.alignable():
			return nil, &FormatError{
				Template: text,
				Offset:   part.Pos.Offset,
				Err:      fmt.Errorf("%w: %q", ErrUnsupportedAlign, ph),
			}
		}
		t.segments = append(t.segments, seg)
	}
	return t, nil
}

// MustCompileTemplate is like CompileTemplate but panics on error.
func MustCompileTemplate(text string) *Template {
	t, err := CompileTemplate(text)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Template) String() string {
	return t.source
}

// Render substitutes r into the template.
func (t *Template) Render(r Result, w Widths) string {
	var b strings.Builder
	for _, seg := range t.segments {
		if seg.field == 0 {
			b.WriteString(seg.literal)
			continue
		}

		value := r.field(seg.field)
		if seg.align {
			switch seg.field {
			case FieldName:
				value = runewidth.FillRight(value, w.Name)
			case FieldVersion:
				value = runewidth.FillRight(value, w.Version)
			case FieldArch:
				value = runewidth.FillRight(value, archWidth)
			}
		}
		b.WriteString(value)
	}
	return b.String()
}
