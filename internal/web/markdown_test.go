// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SolHub Contributors

package web

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderMarkdown(t *testing.T) {
	tests := []struct {
		name        string
		src         string
		contains    []string
		notContains []string
	}{
		{name: "empty", src: ""},
		{name: "emphasis", src: "a **bold** move", contains: []string{"<strong>bold</strong>"}},
		{name: "gfm table", src: "| a | b |\n|---|---|\n| 1 | 2 |", contains: []string{"<table>", "<td>1</td>"}},
		{name: "links kept", src: "[drawdown](https://drawdown.org)", contains: []string{`href="https://drawdown.org"`, `rel="nofollow"`}},
		{name: "script stripped", src: "hi <script>alert(1)</script>", contains: []string{"hi"}, notContains: []string{"<script"}},
		{name: "event handler stripped", src: `<img src="x.png" onerror="alert(1)">`, notContains: []string{"onerror"}},
		{name: "javascript url stripped", src: "[x](javascript:alert(1))", notContains: []string{"javascript:"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(renderMarkdown(tt.src))
			if tt.src == "" {
				assert.Empty(t, got)
			}
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
			for _, bad := range tt.notContains {
				assert.NotContains(t, got, bad)
			}
		})
	}
}
