package events

import (
	"bufio"
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/adoreport/adoreport/model"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaURL = "mem://adoreport/event.schema.json"

// maxLineSize bounds a single event line. Stack traces can be long.
const maxLineSize = 16 << 20

//go:embed schema.json
var schemaJSON []byte

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
})

type eventJSON struct {
	Type   Type            `json:"type"`
	Test   *model.TestCase `json:"test"`
	Result *resultJSON     `json:"result"`
}

// Decoder reads newline-delimited JSON events. Lines that are not valid
// JSON or do not match the event schema are logged and skipped.
type Decoder struct {
	logger  zerolog.Logger
	scanner *bufio.Scanner
	schema  *jsonschema.Schema
	baseDir string

	line    int
	skipped int
}

// NewDecoder returns a Decoder reading from r. Relative attachment paths
// are resolved against baseDir when it is set.
func NewDecoder(logger zerolog.Logger, r io.Reader, baseDir string) (*Decoder, error) {
	schema, err := compileSchema()
	if err != nil {
		return nil, err
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	return &Decoder{
		logger:  logger,
		scanner: scanner,
		schema:  schema,
		baseDir: baseDir,
	}, nil
}

// Skipped returns the number of lines rejected so far.
func (d *Decoder) Skipped() int {
	return d.skipped
}

func (d *Decoder) Next() (Event, error) {
	for d.scanner.Scan() {
		d.line++
		raw := bytes.TrimSpace(d.scanner.Bytes())
		if len(raw) == 0 {
			continue
		}

		e, err := d.decode(raw)
		if err != nil {
			d.skipped++
			d.logger.Warn().Err(err).Int("line", d.line).Msg("Skipping invalid event")
			continue
		}
		return e, nil
	}
	if err := d.scanner.Err(); err != nil {
		return Event{}, fmt.Errorf("failed to read events at line %d: %w", d.line+1, err)
	}
	return Event{}, io.EOF
}

func (d *Decoder) decode(raw []byte) (Event, error) {
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Event{}, fmt.Errorf("malformed json: %w", err)
	}
	if err := d.schema.Validate(payload); err != nil {
		return Event{}, err
	}

	var ev eventJSON
	if err := json.Unmarshal(raw, &ev); err != nil {
		return Event{}, fmt.Errorf("malformed event: %w", err)
	}

	e := Event{Type: ev.Type}
	if ev.Type == TypeTestEnd {
		e.Test = *ev.Test
		e.Result = ev.Result.toModel(d.baseDir)
	}
	return e, nil
}
