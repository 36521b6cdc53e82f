package lessons

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// AnswerKind tells which field of an Answer is meaningful.
type AnswerKind int

const (
	AnswerText AnswerKind = iota
	AnswerIndex
	AnswerBool
)

// Answer is the correct answer of a question. Multiple-choice questions
// answer with an index into the options, true/false questions with a
// boolean, and the rest with free text.
type Answer struct {
	Kind  AnswerKind
	Index int
	Bool  bool
	Text  string
}

func IndexAnswer(i int) Answer { return Answer{Kind: AnswerIndex, Index: i} }
func BoolAnswer(b bool) Answer { return Answer{Kind: AnswerBool, Bool: b} }
func TextAnswer(s string) Answer { return Answer{Kind: AnswerText, Text: s} }

func (a Answer) String() string {
	switch a.Kind {
	case AnswerIndex:
		return strconv.Itoa(a.Index)
	case AnswerBool:
		return strconv.FormatBool(a.Bool)
	}
	return a.Text
}

func (a Answer) MarshalJSON() ([]byte, error) {
	switch a.Kind {
	case AnswerIndex:
		return json.Marshal(a.Index)
	case AnswerBool:
		return json.Marshal(a.Bool)
	}
	return json.Marshal(a.Text)
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}

	switch v := v.(type) {
	case bool:
		*a = BoolAnswer(v)
	case string:
		*a = TextAnswer(v)
	case json.Number:
		if i, err := v.Int64(); err == nil {
			*a = IndexAnswer(int(i))
			return nil
		}
		f, err := v.Float64()
		if err != nil {
			return fmt.Errorf("correctAnswer: %w", err)
		}
		if f == math.Trunc(f) {
			*a = IndexAnswer(int(f))
		} else {
			*a = TextAnswer(v.String())
		}
	default:
		return fmt.Errorf("correctAnswer must be a string, number or boolean, got %s", data)
	}
	return nil
}
