// Package checkers holds quicktest checkers shared by tests.
package checkers

import (
	"encoding/json"
	"fmt"

	qt "github.com/frankban/quicktest"
	"github.com/yalp/jsonpath"
)

// JSONPathEquals returns a checker that reads the value at path from a
// JSON document (string or []byte) and compares it with the expected value
// using qt.DeepEquals. The expected value goes through a JSON round trip
// first, so 3 and 3.0 compare equal.
//
//	c.Assert(text, checkers.JSONPathEquals("$.removed"), "Tools")
func JSONPathEquals(path string) qt.Checker {
	return &jsonPathChecker{path: path}
}

type jsonPathChecker struct {
	path string
}

func (*jsonPathChecker) ArgNames() []string {
	return []string{"got", "want"}
}

func (c *jsonPathChecker) Check(got any, args []any, note func(key string, value any)) error {
	var raw []byte
	switch v := got.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return qt.BadCheckf("got is %T, want string or []byte", got)
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		note("json", string(raw))
		return fmt.Errorf("cannot parse JSON: %w", err)
	}
	value, err := jsonpath.Read(doc, c.path)
	if err != nil {
		note("json", string(raw))
		return fmt.Errorf("jsonpath %s: %w", c.path, err)
	}

	want, err := normalize(args[0])
	if err != nil {
		return qt.BadCheckf("cannot encode want: %v", err)
	}
	note("path", c.path)
	return qt.DeepEquals.Check(value, []any{want}, note)
}

func normalize(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}
