package textjson

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestExtractWholeText(t *testing.T) {
	parsed, ok := Extract(`{"foo": 1, "bar": [1,2,3]}`)
	if !ok {
		t.Fatalf("expected value")
	}
	obj, isMap := parsed.(map[string]any)
	if !isMap {
		t.Fatalf("expected object, got %T", parsed)
	}
	if obj["foo"] != float64(1) {
		t.Fatalf("expected foo=1, got %v", obj["foo"])
	}
	if _, isArr := obj["bar"].([]any); !isArr {
		t.Fatalf("expected bar array, got %T", obj["bar"])
	}
}

func TestExtractPrimitives(t *testing.T) {
	cases := []struct {
		name string
		text string
		want any
	}{
		{name: "number", text: "42", want: float64(42)},
		{name: "string", text: `"hello"`, want: "hello"},
		{name: "bool", text: " true ", want: true},
		{name: "null", text: "null", want: nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Extract(tc.text)
			if !ok {
				t.Fatalf("expected value for %q", tc.text)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestExtractRoundTrip(t *testing.T) {
	values := []any{
		map[string]any{"a": float64(1), "b": []any{"x", true, nil}},
		[]any{float64(1), float64(2.5), "three"},
		"plain string",
		map[string]any{"nested": map[string]any{"deep": map[string]any{}}},
	}
	for _, v := range values {
		raw, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		got, ok := Extract(string(raw))
		if !ok {
			t.Fatalf("expected value for %s", raw)
		}
		if !reflect.DeepEqual(got, v) {
			t.Fatalf("round trip mismatch: want %#v, got %#v", v, got)
		}
	}
}

func TestExtractFencedBlock(t *testing.T) {
	cases := []struct {
		name string
		text string
		key  string
		want any
	}{
		{name: "json tag", text: "prefix ```json\n{\"a\":2}\n``` suffix", key: "a", want: float64(2)},
		{name: "no tag", text: "Some text\n```\n{\"x\":true}\n```", key: "x", want: true},
		{name: "upper tag", text: "```JSON\n{\"y\":\"z\"}\n```", key: "y", want: "z"},
		{name: "array inside", text: "here:\n```json\n[1]\n```\nand {\"k\":1}", key: "", want: []any{float64(1)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Extract(tc.text)
			if !ok {
				t.Fatalf("expected value")
			}
			if tc.key == "" {
				if !reflect.DeepEqual(got, tc.want) {
					t.Fatalf("expected %v, got %v", tc.want, got)
				}
				return
			}
			obj, _ := got.(map[string]any)
			if obj[tc.key] != tc.want {
				t.Fatalf("expected %s=%v, got %v", tc.key, tc.want, got)
			}
		})
	}
}

func TestExtractOnlyFirstFencedBlock(t *testing.T) {
	// The second block is never tried as a block; the balanced scan finds its object.
	text := "```json\nnot json\n```\n```json\n{\"b\":1}\n```"
	got, ok := Extract(text)
	if !ok {
		t.Fatalf("expected balanced-scan fallback to find the object")
	}
	obj := got.(map[string]any)
	if obj["b"] != float64(1) {
		t.Fatalf("expected b=1, got %v", got)
	}
}

func TestExtractBrokenFenceFallsBackToBalancedScan(t *testing.T) {
	text := "intro {\"k\":\"v\"} then ```json\n{broken\n```"
	got, ok := Extract(text)
	if !ok {
		t.Fatalf("expected value")
	}
	if got.(map[string]any)["k"] != "v" {
		t.Fatalf("expected k=v, got %v", got)
	}
}

func TestExtractBalancedSubstring(t *testing.T) {
	got, ok := Extract(`Note: config = {"k":"v"} and more text`)
	if !ok {
		t.Fatalf("expected value")
	}
	if got.(map[string]any)["k"] != "v" {
		t.Fatalf("expected k=v, got %v", got)
	}

	nested, ok := Extract(`result: {"a":{"b":{"c":1}}} trailing }`)
	if !ok {
		t.Fatalf("expected nested value")
	}
	if _, isMap := nested.(map[string]any)["a"].(map[string]any); !isMap {
		t.Fatalf("expected nested object, got %v", nested)
	}
}

func TestExtractNotFound(t *testing.T) {
	cases := map[string]string{
		"empty":              "",
		"plain text":         "no json here just text",
		"unmatched brace":    `start {"a": 1 never closed`,
		"first object bad":   `{not json} later {"ok":true}`,
		"only closing brace": "} nothing",
	}
	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			if got, ok := Extract(text); ok {
				t.Fatalf("expected not found, got %v", got)
			}
		})
	}
}
