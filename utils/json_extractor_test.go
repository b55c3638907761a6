package utils

import (
	"errors"
	"testing"
)

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"bare array", `[{"a":1}]`, `[{"a":1}]`},
		{"bare object", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n[{\"a\":1}]\n```", `[{"a":1}]`},
		{"plain fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding prose", `Here is your quiz: [{"a":1}] hope it helps!`, `[{"a":1}]`},
		{"brackets inside strings", `[{"q":"what is [1,2]?","a":"a ] b"}]`, `[{"q":"what is [1,2]?","a":"a ] b"}]`},
		{"escaped quotes", `{"q":"she said \"hi\""}`, `{"q":"she said \"hi\""}`},
		{"nested arrays", `[[1,2],[3,4]]`, `[[1,2],[3,4]]`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ExtractJSON(tc.input)
			if err != nil {
				t.Fatalf("ExtractJSON(%q) failed: %v", tc.input, err)
			}
			if got != tc.want {
				t.Errorf("ExtractJSON(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestExtractJSONRejects(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"whitespace", "   \n  "},
		{"prose only", "Sorry, I cannot generate a quiz."},
		{"unterminated array", `[{"a":1}`},
		{"invalid json", `{"a":}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ExtractJSON(tc.input); !errors.Is(err, ErrNoJSONFound) {
				t.Errorf("ExtractJSON(%q) err = %v, want ErrNoJSONFound", tc.input, err)
			}
		})
	}
}

func TestExtractJSONTo(t *testing.T) {
	var target []struct {
		Question     string   `json:"question"`
		Options      []string `json:"options"`
		CorrectIndex int      `json:"correctIndex"`
	}

	input := "```json\n[{\"question\":\"Q?\",\"options\":[\"a\",\"b\",\"c\",\"d\"],\"correctIndex\":2}]\n```"
	if err := ExtractJSONTo(input, &target); err != nil {
		t.Fatalf("ExtractJSONTo failed: %v", err)
	}
	if len(target) != 1 || target[0].CorrectIndex != 2 || len(target[0].Options) != 4 {
		t.Errorf("unexpected decode result: %+v", target)
	}
}
