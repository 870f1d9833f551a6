package questions

import (
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "comma joined",
			input: "What is the score?, How many years of experience?",
			want:  []string{"What is the score?", "How many years of experience?"},
		},
		{
			name:  "newline separated",
			input: "What is the score?\nHow many years of experience?",
			want:  []string{"What is the score?", "How many years of experience?"},
		},
		{
			name:  "semicolon joined",
			input: "A?; B?",
			want:  []string{"A?", "B?"},
		},
		{
			name:  "trailing question mark restored",
			input: "Rate the skills?, Summarize the experience",
			want:  []string{"Rate the skills?", "Summarize the experience?"},
		},
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
		{
			name:  "blank lines dropped",
			input: "\n  \nOnly one?\n\n",
			want:  []string{"Only one?"},
		},
		{
			name:  "plain line kept verbatim",
			input: "Describe the candidate strengths",
			want:  []string{"Describe the candidate strengths"},
		},
		{
			name:  "duplicates preserved",
			input: "Same?\nSame?",
			want:  []string{"Same?", "Same?"},
		},
		{
			name:  "mixed lines and inline splits",
			input: "First?\nSecond?, Third?; Fourth",
			want:  []string{"First?", "Second?", "Third?", "Fourth?"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Parse(tc.input)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("Parse(%q) = %#v, want %#v", tc.input, got, tc.want)
			}
		})
	}
}
