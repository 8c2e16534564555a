// Copyright (c) 2025 Quarry
// Licensed under the MIT License. See LICENSE file in the project root for details.

package shell

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestReaderSourceLineEndings(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "unix newlines",
			input: "select 1;\nselect 2;\n",
			want:  []string{"select 1;", "select 2;"},
		},
		{
			name:  "windows newlines",
			input: "select *\r\nfrom t;\r\n",
			want:  []string{"select *", "from t;"},
		},
		{
			name:  "final line without newline",
			input: "select 1",
			want:  []string{"select 1"},
		},
		{
			name:  "final line with bare carriage return",
			input: "select 1;\r",
			want:  []string{"select 1;"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := NewReaderSource(strings.NewReader(tt.input))
			for i, want := range tt.want {
				line, err := src.ReadLine("")
				if err != nil {
					t.Fatalf("ReadLine() #%d error = %v", i, err)
				}
				if line != want {
					t.Errorf("ReadLine() #%d = %q, want %q", i, line, want)
				}
			}
			if _, err := src.ReadLine(""); !errors.Is(err, io.EOF) {
				t.Errorf("ReadLine() after input = %v, want io.EOF", err)
			}
		})
	}
}

func TestCRLFInputAssemblesCleanStatements(t *testing.T) {
	var a Assembler
	src := NewReaderSource(strings.NewReader("select *\r\nfrom t;\r\n"))
	var stmts []string
	for {
		line, err := src.ReadLine("")
		if err != nil {
			break
		}
		stmts = append(stmts, a.Feed(line)...)
	}
	if len(stmts) != 1 || stmts[0] != "select *\nfrom t" {
		t.Errorf("assembled = %q, want one carriage-return-free statement", stmts)
	}
}
