package document

import "strings"

// Values maps field names to their current text.
type Values map[string]string

func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, s := range v {
		out[k] = s
	}
	return out
}

// NonEmpty drops fields whose trimmed value is empty.
func (v Values) NonEmpty() Values {
	out := make(Values, len(v))
	for k, s := range v {
		if strings.TrimSpace(s) != "" {
			out[k] = s
		}
	}
	return out
}
