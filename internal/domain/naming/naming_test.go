package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransliterate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "ascii unchanged", input: "Blog Post", expected: "Blog Post"},
		{name: "accents folded", input: "Café Crème", expected: "Cafe Creme"},
		{name: "ligatures expanded", input: "Straße", expected: "Strasse"},
		{name: "polish letters", input: "Łódź", expected: "Lodz"},
		{name: "non latin replaced", input: "日本", expected: "??"},
		{name: "empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Transliterate(tt.input))
		})
	}
}

func TestUnderscore(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "single word", input: "Comment", expected: "comment"},
		{name: "camel case", input: "BlogPost", expected: "blog_post"},
		{name: "acronym", input: "HTMLParser", expected: "html_parser"},
		{name: "lower camel", input: "jobSkill", expected: "job_skill"},
		{name: "digits", input: "Job2Skill", expected: "job2_skill"},
		{name: "dashes", input: "job-skill", expected: "job_skill"},
		{name: "namespace", input: "Admin::User", expected: "admin/user"},
		{name: "spaces kept", input: "Blog Post", expected: "blog post"},
		{name: "already snake", input: "post_id", expected: "post_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Underscore(tt.input))
		})
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "simple", input: "Comment", expected: "comment"},
		{name: "spaces", input: "Blog Post", expected: "blog_post"},
		{name: "camel case", input: "BlogPost", expected: "blog_post"},
		{name: "accented", input: "Café Menu", expected: "cafe_menu"},
		{name: "mixed", input: "Job Add-On", expected: "job_add_on"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Slug(tt.input))
		})
	}
}

func TestEntryName(t *testing.T) {
	assert.Equal(t, "comment_10", EntryName("comment", "10"))
}

func TestIndexFileName(t *testing.T) {
	assert.Equal(t, "post_id_comment.json", IndexFileName("post_id", "Comment"))
	assert.Equal(t, "job_id_job_skill.json", IndexFileName("job_id", "JobSkill"))
}
