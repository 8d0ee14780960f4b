package output

import "encoding/json"

// JSONFormatter renders rows as JSON.
type JSONFormatter struct {
	Indent bool
}

// FormatDatasets renders dataset rows as a JSON array.
func (f *JSONFormatter) FormatDatasets(rows []DatasetRow) (string, error) {
	if rows == nil {
		rows = []DatasetRow{}
	}

	var (
		data []byte
		err  error
	)

	if f.Indent {
		data, err = json.MarshalIndent(rows, "", "  ")
	} else {
		data, err = json.Marshal(rows)
	}
	if err != nil {
		return "", err
	}

	return string(data), nil
}
