// Copyright (c) 2025 Quarry
// Licensed under the MIT License. See LICENSE file in the project root for details.

package shell

import (
	"reflect"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Command
	}{
		{
			name: "empty input",
			text: "   \n  ",
			want: Command{Kind: CommandEmpty},
		},
		{
			name: "plain sql",
			text: "select 1",
			want: Command{Kind: CommandSQL, Text: "select 1"},
		},
		{
			name: "sql with leading whitespace",
			text: "  update t set x = 1  ",
			want: Command{Kind: CommandSQL, Text: "update t set x = 1"},
		},
		{
			name: "quit",
			text: "quit",
			want: Command{Kind: CommandMeta, Name: "quit", Args: []string{}, Text: "quit"},
		},
		{
			name: "exit alias",
			text: "exit",
			want: Command{Kind: CommandMeta, Name: "quit", Args: []string{}, Text: "exit"},
		},
		{
			name: "case insensitive",
			text: "QUIT",
			want: Command{Kind: CommandMeta, Name: "quit", Args: []string{}, Text: "QUIT"},
		},
		{
			name: "backslash prefix",
			text: `\q`,
			want: Command{Kind: CommandMeta, Name: "quit", Args: []string{}, Text: `\q`},
		},
		{
			name: "format with argument",
			text: "format csv",
			want: Command{Kind: CommandMeta, Name: "format", Args: []string{"csv"}, Text: "format csv"},
		},
		{
			name: "unknown backslash command stays meta",
			text: `\frobnicate now`,
			want: Command{Kind: CommandMeta, Name: "frobnicate", Args: []string{"now"}, Text: `\frobnicate now`},
		},
		{
			name: "select is never a meta command",
			text: "select help from topics",
			want: Command{Kind: CommandSQL, Text: "select help from topics"},
		},
		{
			name: "meta name inside sql is sql",
			text: "delete from history",
			want: Command{Kind: CommandSQL, Text: "delete from history"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.text)
			if got.Kind != tt.want.Kind || got.Name != tt.want.Name || got.Text != tt.want.Text {
				t.Errorf("Classify(%q) = %+v, want %+v", tt.text, got, tt.want)
			}
			if len(got.Args) != len(tt.want.Args) {
				t.Errorf("Classify(%q).Args = %v, want %v", tt.text, got.Args, tt.want.Args)
			} else if len(got.Args) > 0 && !reflect.DeepEqual(got.Args, tt.want.Args) {
				t.Errorf("Classify(%q).Args = %v, want %v", tt.text, got.Args, tt.want.Args)
			}
		})
	}
}
