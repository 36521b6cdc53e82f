package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// compiled schemas, keyed by Schema.Name
var schemas sync.Map

// ValidateJSON checks raw against schema. A nil schema accepts anything.
// Failures, including raw not being a single JSON document, are returned
// as *ErrInvalidResponse carrying raw.
func ValidateJSON(schema *Schema, raw []byte) error {
	if schema == nil {
		return nil
	}
	invalid := func(format string, args ...any) error {
		return &ErrInvalidResponse{Content: string(raw), Err: fmt.Errorf(format, args...)}
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return invalid("not a JSON document: %w", err)
	}
	sch, err := compile(schema)
	if err != nil {
		return invalid("schema %q: %w", schema.Name, err)
	}
	if err := sch.Validate(doc); err != nil {
		return invalid("does not match schema %q: %w", schema.Name, err)
	}
	return nil
}

func compile(schema *Schema) (*jsonschema.Schema, error) {
	if sch, ok := schemas.Load(schema.Name); ok {
		return sch.(*jsonschema.Schema), nil
	}

	// Round trip through JSON so the compiler sees plain decoded values
	// rather than typed Go slices.
	def, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, err
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(def))
	if err != nil {
		return nil, err
	}

	url := "mem://" + schema.Name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, err
	}
	sch, err := c.Compile(url)
	if err != nil {
		return nil, err
	}

	actual, _ := schemas.LoadOrStore(schema.Name, sch)
	return actual.(*jsonschema.Schema), nil
}

// finishResponse runs the checks shared by every vendor: blank text and a
// truncated answer are errors, and a request with a Schema must get back a
// conforming document.
func finishResponse(req Request, resp *Response) (*Response, error) {
	switch {
	case strings.TrimSpace(resp.Text) == "":
		return nil, &ErrInvalidResponse{Err: errors.New("empty response text")}
	case resp.StopReason == "max_tokens":
		return nil, &ErrMaxTokensExceeded{Content: resp.Text}
	}
	if err := ValidateJSON(req.Schema, []byte(resp.Text)); err != nil {
		return nil, err
	}
	return resp, nil
}
