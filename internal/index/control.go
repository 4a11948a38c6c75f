package index

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"unicode"
)

// Stanza is one paragraph of a Debian control file.
type Stanza map[string]string

// maxFieldSize bounds a single stanza line.
const maxFieldSize = 2 * 1024 * 1024

// ErrMalformedStanza is returned for a line that is neither a field nor a continuation.
var ErrMalformedStanza = errors.New("malformed stanza syntax")

// Only descriptions keep their line structure: Description in Packages and
// status files, Description-<lang> in Translation files.
func isMultiline(field string) bool {
	if field == "Description" {
		return true
	}
	return strings.HasPrefix(field, "Description-") && field != descriptionMD5Field
}

const descriptionMD5Field = "Description-Md5"

// translatedDescription returns the first Description-<lang> field of a
// Translation stanza.
func translatedDescription(s Stanza) string {
	for field, value := range s {
		if isMultiline(field) && field != "Description" {
			return value
		}
	}
	return ""
}

// canonicalCase normalises field names: "pre-depends" -> "Pre-Depends".
func canonicalCase(field string) string {
	startOfWord := true
	return strings.Map(func(r rune) rune {
		if startOfWord {
			startOfWord = false
			return unicode.ToUpper(r)
		}
		if r == '-' {
			startOfWord = true
		}
		return unicode.ToLower(r)
	}, field)
}

// StanzaReader reads control files stanza by stanza.
type StanzaReader struct {
	scanner *bufio.Scanner
}

// NewStanzaReader wraps r with buffering.
func NewStanzaReader(r io.Reader) *StanzaReader {
	scanner := bufio.NewScanner(bufio.NewReaderSize(r, 32768))
	scanner.Buffer(nil, maxFieldSize)
	return &StanzaReader{scanner: scanner}
}

// Next returns the next stanza, or nil at end of input.
func (s *StanzaReader) Next() (Stanza, error) {
	stanza := make(Stanza, 16)
	lastField := ""
	lastMultiline := false

	for s.scanner.Scan() {
		line := s.scanner.Text()

		if strings.TrimSpace(line) == "" {
			if len(stanza) > 0 {
				return stanza, nil
			}
			continue
		}

		if line[0] == ' ' || line[0] == '\t' {
			if lastField == "" {
				return nil, ErrMalformedStanza
			}
			if lastMultiline {
				stanza[lastField] += line + "\n"
			} else {
				stanza[lastField] += " " + strings.TrimSpace(line)
			}
			continue
		}

		if line[0] == '#' {
			continue
		}

		name, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, ErrMalformedStanza
		}
		lastField = canonicalCase(name)
		lastMultiline = isMultiline(lastField)
		if lastMultiline {
			stanza[lastField] = strings.TrimSpace(value) + "\n"
		} else {
			stanza[lastField] = strings.TrimSpace(value)
		}
	}
	if err := s.scanner.Err(); err != nil {
		return nil, err
	}
	if len(stanza) > 0 {
		return stanza, nil
	}
	return nil, nil
}

// description converts a raw multiline Description field into plain text:
// continuation lines lose their leading space and " ." becomes an empty line.
func description(raw string) string {
	lines := strings.Split(strings.TrimRight(raw, "\n"), "\n")
	for i := 1; i < len(lines); i++ {
		line := strings.TrimPrefix(lines[i], " ")
		if line == "." {
			line = ""
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

// provides extracts the virtual names of a Provides field, dropping
// version and architecture qualifiers and duplicates.
func provides(field string) []string {
	if field == "" {
		return nil
	}
	var names []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(field, ",") {
		name := strings.TrimSpace(part)
		if i := strings.IndexAny(name, " ("); i != -1 {
			name = name[:i]
		}
		name, _, _ = strings.Cut(name, ":")
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// versionFromStanza builds a Version from a binary package stanza.
func versionFromStanza(s Stanza) *Version {
	return &Version{
		Version:        s["Version"],
		Architecture:   s["Architecture"],
		Provides:       provides(s["Provides"]),
		Description:    description(s["Description"]),
		descriptionMD5: s[descriptionMD5Field],
		Depends:        s["Depends"],
		PreDepends:     s["Pre-Depends"],
		Recommends:     s["Recommends"],
	}
}
