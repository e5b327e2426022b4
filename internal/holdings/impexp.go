package holdings

// this file handles the file import/export format: a plain JSON array
// of holdings, meant to be human readable and easy to hand-edit.

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// Export writes the holdings list as an indented JSON array.
func Export(w io.Writer, list []Holding) error {
	if list == nil {
		list = []Holding{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(list)
}

// Import reads a JSON document and returns the replacement holdings
// list. The list is replaced if and only if the payload parses to a
// JSON array; anything else (parse failure, object, null) is a logged
// no-op and returns ok=false. Individual holding shape is not
// validated, but symbols are folded to uppercase so the rest of the
// system can rely on it.
func Import(r io.Reader, log zerolog.Logger) (list []Holding, ok bool) {
	b, err := io.ReadAll(r)
	if err != nil {
		log.Warn().Err(err).Msg("import read failed; keeping current holdings")
		return nil, false
	}
	trimmed := bytes.TrimLeft(b, " \t\r\n")
	if len(trimmed) == 0 || trimmed[0] != '[' {
		log.Warn().Msg("import payload is not a JSON array; keeping current holdings")
		return nil, false
	}
	if err := json.Unmarshal(trimmed, &list); err != nil {
		log.Warn().Err(err).Msg("import payload unparsable; keeping current holdings")
		return nil, false
	}
	for i := range list {
		list[i].Symbol = strings.ToUpper(strings.TrimSpace(list[i].Symbol))
	}
	if list == nil {
		list = []Holding{}
	}
	return list, true
}
