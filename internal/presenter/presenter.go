package presenter

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tidwall/gjson"

	"vinr.eu/secretsdemo/internal/errs"
)

var (
	ErrMalformedPayload = errors.New("presenter: malformed payload")
	ErrNotObject        = fmt.Errorf("%w: top-level value is not an object", ErrMalformedPayload)
)

const delimiter = "---------------"

type Kind int

const (
	Raw Kind = iota
	Structured
)

func (k Kind) String() string {
	switch k {
	case Structured:
		return "structured"
	default:
		return "raw"
	}
}

type Field struct {
	Key   string
	Value string
}

// Presentation is the outcome of interpreting a payload. Fields is set only
// for Structured; Err records why a payload fell back to Raw.
type Presentation struct {
	Kind    Kind
	Fields  []Field
	Payload string
	Err     error
}

// Parse returns the top-level fields of a JSON object payload in document
// order. A repeated key keeps its first position and its last value.
func Parse(payload string) ([]Field, error) {
	if !gjson.Valid(payload) {
		return nil, errs.WrapMsg(ErrMalformedPayload, "invalid JSON")
	}
	root := gjson.Parse(payload)
	if !root.IsObject() {
		return nil, errs.WrapMsg(ErrNotObject, root.Type.String())
	}

	fields := make([]Field, 0)
	index := make(map[string]int)
	root.ForEach(func(key, value gjson.Result) bool {
		f := Field{Key: key.String(), Value: valueText(value)}
		if i, ok := index[f.Key]; ok {
			fields[i] = f
			return true
		}
		index[f.Key] = len(fields)
		fields = append(fields, f)
		return true
	})
	return fields, nil
}

func valueText(v gjson.Result) string {
	switch v.Type {
	case gjson.String:
		return v.Str
	case gjson.Null:
		return "null"
	default:
		return v.Raw
	}
}

// Present never fails: anything Parse rejects is shown verbatim.
func Present(payload string) Presentation {
	fields, err := Parse(payload)
	if err != nil {
		return Presentation{Kind: Raw, Payload: payload, Err: err}
	}
	return Presentation{Kind: Structured, Fields: fields, Payload: payload}
}

func (p Presentation) String() string {
	var b strings.Builder
	_ = Render(&b, p)
	return b.String()
}

// Render writes the console block for p. Both kinds are framed by the same
// heading and a closing delimiter line; for Raw that closing line is an
// addition over the original demo output, which left the block open.
func Render(w io.Writer, p Presentation) error {
	var b strings.Builder
	b.WriteString("\nSecret contents:\n")
	b.WriteString(delimiter + "\n")
	switch p.Kind {
	case Structured:
		for _, f := range p.Fields {
			b.WriteString(f.Key + ": " + f.Value + "\n")
		}
	default:
		b.WriteString("Raw secret value: " + p.Payload + "\n")
	}
	b.WriteString(delimiter + "\n\n")
	_, err := io.WriteString(w, b.String())
	return err
}
