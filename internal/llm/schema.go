package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Schema is the JSON shape a prompt asks for. It is compiled on first use;
// share it by pointer.
type Schema struct {
	// Name is sent as the schema or tool name, kebab-case.
	Name        string
	Description string
	Definition  map[string]any

	once     sync.Once
	compiled *jsonschema.Schema
	err      error
}

func (s *Schema) compile() (*jsonschema.Schema, error) {
	s.once.Do(func() {
		raw, err := json.Marshal(s.Definition)
		if err != nil {
			s.err = fmt.Errorf("encode schema %s: %w", s.Name, err)
			return
		}
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
		if err != nil {
			s.err = fmt.Errorf("decode schema %s: %w", s.Name, err)
			return
		}
		url := "mem://llm/" + s.Name + ".json"
		c := jsonschema.NewCompiler()
		if err := c.AddResource(url, doc); err != nil {
			s.err = fmt.Errorf("add schema %s: %w", s.Name, err)
			return
		}
		s.compiled, s.err = c.Compile(url)
	})
	return s.compiled, s.err
}

// Check reports whether raw is JSON in the shape of s. Bad output wraps
// ErrInvalidOutput; a schema that does not compile is returned as is.
func (s *Schema) Check(raw []byte) error {
	compiled, err := s.compile()
	if err != nil {
		return err
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return &Error{Kind: ErrInvalidOutput, Err: fmt.Errorf("not JSON: %w", err)}
	}
	if err := compiled.Validate(doc); err != nil {
		return &Error{Kind: ErrInvalidOutput, Err: err}
	}
	return nil
}

// Decode checks raw and unmarshals it into v.
func (s *Schema) Decode(raw []byte, v any) error {
	if err := s.Check(raw); err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

// checkedProvider holds every completion to its prompt's schema. On a
// mismatch the completion is returned with the error so it still reaches
// the event log.
type checkedProvider struct {
	inner Provider
}

func (c checkedProvider) Complete(ctx context.Context, p Prompt) (*Completion, error) {
	out, err := c.inner.Complete(ctx, p)
	if err != nil || p.Schema == nil {
		return out, err
	}
	if err := p.Schema.Check(out.JSON); err != nil {
		if out.Truncated {
			err = &Error{Kind: ErrTruncated, Err: err}
		}
		return out, err
	}
	return out, nil
}

func (c checkedProvider) Model() string { return c.inner.Model() }

// withoutLengthCaps copies def minus string length keywords, which the
// Anthropic and OpenAI structured output modes refuse. checkedProvider
// still enforces them on the reply.
func withoutLengthCaps(def map[string]any) map[string]any {
	out := make(map[string]any, len(def))
	for k, v := range def {
		switch k {
		case "minLength", "maxLength":
			continue
		}
		switch v := v.(type) {
		case map[string]any:
			if k == "properties" {
				props := make(map[string]any, len(v))
				for name, sub := range v {
					if m, ok := sub.(map[string]any); ok {
						props[name] = withoutLengthCaps(m)
					} else {
						props[name] = sub
					}
				}
				out[k] = props
				continue
			}
			out[k] = withoutLengthCaps(v)
		default:
			out[k] = v
		}
	}
	return out
}
