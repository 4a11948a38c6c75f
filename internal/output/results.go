package output

import (
	"encoding/json"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/ivoronin/tap/internal/classify"
	"github.com/ivoronin/tap/internal/query"
)

// Result is one rendered search result.
type Result struct {
	Name         string
	Package      string
	Version      string
	Architecture string
	Summary      string
	Flags        classify.Flags
}

// NewResult classifies m.
func NewResult(m query.Match) Result {
	return Result{
		Name:         m.Name,
		Package:      m.Package().Name,
		Version:      m.Version.Version,
		Architecture: m.Version.Architecture,
		Summary:      m.Version.Summary(),
		Flags:        classify.Classify(m.Name, m.Version),
	}
}

func (r Result) field(f Field) string {
	switch f {
	case FieldName:
		return r.Name
	case FieldVersion:
		return r.Version
	case FieldArch:
		return r.Architecture
	case FieldPackage:
		return r.Package
	case FieldSummary:
		return r.Summary
	case FieldState:
		return string(r.Flags.State)
	case FieldAutomatic:
		return string(r.Flags.Automatic)
	case FieldSelect:
		return string(r.Flags.Select)
	case FieldUpgrade:
		return string(r.Flags.Upgrade)
	}
	return ""
}

// resultJSON is the JSON form of a Result. Blank flags are omitted.
type resultJSON struct {
	Name         string `json:"name"`
	Package      string `json:"package"`
	Version      string `json:"version"`
	Architecture string `json:"architecture"`
	Summary      string `json:"summary"`
	State        string `json:"state"`
	Automatic    string `json:"automatic,omitempty"`
	Select       string `json:"select,omitempty"`
	Upgrade      string `json:"upgrade,omitempty"`
	Virtual      bool   `json:"virtual"`
	Installed    bool   `json:"installed"`
	Line         string `json:"line"`
}

func flag(r rune) string {
	return strings.TrimSpace(string(r))
}

// ResultList implements Formatter for search results.
type ResultList struct {
	Results []Result
	// Template renders non-virtual results, VirtualTemplate virtual ones.
	Template        *Template
	VirtualTemplate *Template
	// MaxWidth truncates rendered lines to the given display width, 0 disables.
	MaxWidth int
}

// NewResultList classifies matches in order.
func NewResultList(matches []query.Match, normal, virtual *Template) *ResultList {
	results := make([]Result, 0, len(matches))
	for _, m := range matches {
		results = append(results, NewResult(m))
	}
	return &ResultList{
		Results:         results,
		Template:        normal,
		VirtualTemplate: virtual,
	}
}

// Widths returns the widest name and version across all results.
func (l *ResultList) Widths() Widths {
	var w Widths
	for _, r := range l.Results {
		w.Name = max(w.Name, runewidth.StringWidth(r.Name))
		w.Version = max(w.Version, runewidth.StringWidth(r.Version))
	}
	return w
}

// Lines renders every result with the template matching its kind.
func (l *ResultList) Lines() []string {
	w := l.Widths()
	lines := make([]string, 0, len(l.Results))
	for _, r := range l.Results {
		t := l.Template
		if r.Flags.Virtual {
			t = l.VirtualTemplate
		}
		line := t.Render(r, w)
		if l.MaxWidth > 0 {
			line = runewidth.Truncate(line, l.MaxWidth, "")
		}
		lines = append(lines, line)
	}
	return lines
}

// FormatText returns one rendered line per result.
func (l *ResultList) FormatText() string {
	return strings.Join(l.Lines(), "\n")
}

// FormatTable returns kubectl-style table output.
// Header: STATE, NAME, VERSION, ARCH, SUMMARY
func (l *ResultList) FormatTable() string {
	if len(l.Results) == 0 {
		return ""
	}

	tw := NewTableWriter("STATE", "NAME", "VERSION", "ARCH", "SUMMARY")
	for _, r := range l.Results {
		state := string([]rune{r.Flags.State, r.Flags.Automatic, r.Flags.Upgrade})
		name := r.Name
		if r.Flags.Virtual {
			name += " -> " + r.Package
		}
		tw.Row(state, name, r.Version, r.Architecture, r.Summary)
	}
	return tw.String()
}

// FormatJSON returns JSON array output. Every entry carries its rendered
// line, never truncated.
func (l *ResultList) FormatJSON() ([]byte, error) {
	if len(l.Results) == 0 {
		return []byte("[]"), nil
	}

	full := *l
	full.MaxWidth = 0
	lines := full.Lines()

	entries := make([]resultJSON, 0, len(l.Results))
	for i, r := range l.Results {
		entries = append(entries, resultJSON{
			Name:         r.Name,
			Package:      r.Package,
			Version:      r.Version,
			Architecture: r.Architecture,
			Summary:      r.Summary,
			State:        string(r.Flags.State),
			Automatic:    flag(r.Flags.Automatic),
			Select:       flag(r.Flags.Select),
			Upgrade:      flag(r.Flags.Upgrade),
			Virtual:      r.Flags.Virtual,
			Installed:    r.Flags.Installed,
			Line:         lines[i],
		})
	}
	return json.MarshalIndent(entries, "", "  ")
}
