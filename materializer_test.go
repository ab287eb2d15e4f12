package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCleanCode(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		expected string
	}{
		{
			name:     "fenced with language tag",
			code:     "```python\nprint(1)\n```",
			expected: "print(1)",
		},
		{
			name:     "fenced without language tag",
			code:     "```\nimport graphviz\n```",
			expected: "import graphviz",
		},
		{
			name:     "no fences",
			code:     "dot = graphviz.Digraph()",
			expected: "dot = graphviz.Digraph()",
		},
		{
			name:     "surrounding whitespace",
			code:     "\n\n  print(2)  \n\n",
			expected: "print(2)",
		},
		{
			name:     "fences and whitespace",
			code:     "\n```python\ndot.render('recipe_flow')\n```\n\n",
			expected: "dot.render('recipe_flow')",
		},
		{
			name:     "only fences",
			code:     "```python\n```",
			expected: "",
		},
		{
			name:     "empty input",
			code:     "",
			expected: "",
		},
		{
			name:     "multiline body preserved",
			code:     "```python\nimport graphviz\n\ndot = graphviz.Digraph()\n```",
			expected: "import graphviz\n\ndot = graphviz.Digraph()",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CleanCode(tt.code)
			if result != tt.expected {
				t.Errorf("CleanCode() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestMaterializeCode(t *testing.T) {
	dir := t.TempDir()

	t.Run("writes cleaned code", func(t *testing.T) {
		path := filepath.Join(dir, "graph.py")
		err := MaterializeCode("```python\nprint(1)\n```", path)
		if err != nil {
			t.Fatalf("MaterializeCode() unexpected error: %v", err)
		}

		content, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("reading materialized file: %v", err)
		}
		if string(content) != "print(1)" {
			t.Errorf("materialized content = %q, want %q", string(content), "print(1)")
		}
	})

	t.Run("overwrites existing file", func(t *testing.T) {
		path := filepath.Join(dir, "overwrite.py")
		if err := os.WriteFile(path, []byte("old"), 0644); err != nil {
			t.Fatal(err)
		}

		if err := MaterializeCode("new code", path); err != nil {
			t.Fatalf("MaterializeCode() unexpected error: %v", err)
		}

		content, _ := os.ReadFile(path)
		if string(content) != "new code" {
			t.Errorf("materialized content = %q, want %q", string(content), "new code")
		}
	})

	t.Run("empty code leaves target untouched", func(t *testing.T) {
		path := filepath.Join(dir, "untouched.py")
		if err := os.WriteFile(path, []byte("keep me"), 0644); err != nil {
			t.Fatal(err)
		}

		err := MaterializeCode("```python\n```", path)
		if err == nil {
			t.Fatal("MaterializeCode() expected error for empty code, got nil")
		}

		content, _ := os.ReadFile(path)
		if string(content) != "keep me" {
			t.Errorf("existing file was modified: %q", string(content))
		}
	})
}
