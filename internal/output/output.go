package output

// Format represents the output format type.
type Format int

const (
	FormatText Format = iota
	FormatJSON
	FormatTable
)

// Formatter is the interface for output formatters.
// Types implementing this interface can output in text or JSON format.
type Formatter interface {
	FormatText() string
	FormatJSON() ([]byte, error)
}

// TableFormatter is implemented by formatters with a tabular text form.
type TableFormatter interface {
	Formatter
	FormatTable() string
}

// FormatOutput formats the given Formatter based on the specified format.
// FormatTable falls back to text for formatters without a table form.
func FormatOutput(f Formatter, format Format) (string, error) {
	switch format {
	case FormatJSON:
		data, err := f.FormatJSON()
		if err != nil {
			return "", err
		}
		return string(data), nil
	case FormatTable:
		if tf, ok := f.(TableFormatter); ok {
			return tf.FormatTable(), nil
		}
		return f.FormatText(), nil
	default:
		return f.FormatText(), nil
	}
}
