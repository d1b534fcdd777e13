package services

import (
	"context"
	"encoding/json"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/entrylink/internal/domain/entities"
)

// buildAndLink runs both phases for Post and returns the processed count.
func buildAndLink(t *testing.T, f *blogFixture, opts LinkOptions) int {
	t.Helper()
	ctx := context.Background()
	_, err := f.indexService().BuildModels(ctx, f.schema.LinkedModels())
	require.NoError(t, err)
	n, err := f.linkService(opts).Materialize(ctx, "Post")
	require.NoError(t, err)
	return n
}

func ref(typ, id string) map[string]any {
	return map[string]any{"type": typ, "id": id}
}

func TestLinkService_Many(t *testing.T) {
	f := newBlogFixture(t, manyComments)

	n := buildAndLink(t, f, LinkOptions{})
	assert.Equal(t, 2, n)

	post := f.entries.Get("post", "post_1")
	assert.Equal(t, []any{ref("Entry", "comment_10"), ref("Entry", "comment_11")}, post["comments"])

	other := f.entries.Get("post", "post_2")
	assert.Equal(t, []any{ref("Entry", "comment_12")}, other["comments"])
}

func TestLinkService_Many_PreservesUntouchedFields(t *testing.T) {
	f := newBlogFixture(t, manyComments)
	before := f.entries.Get("post", "post_1")

	buildAndLink(t, f, LinkOptions{})

	after := f.entries.Get("post", "post_1")
	for k, v := range before {
		assert.Equal(t, v, after[k], "field %s changed", k)
	}
	assert.Len(t, after, len(before)+1)
}

func TestLinkService_Many_AppendMode(t *testing.T) {
	f := newBlogFixture(t, manyComments)
	f.entries.Put("post", "post_1", entities.Record{
		"database_id": 1,
		"comments":    []any{ref("Entry", "comment_1")},
	})

	buildAndLink(t, f, LinkOptions{ManyMode: ManyAppend})
	post := f.entries.Get("post", "post_1")
	assert.Equal(t, []any{
		ref("Entry", "comment_1"), ref("Entry", "comment_10"), ref("Entry", "comment_11"),
	}, post["comments"])

	// Re-running appends again.
	_, err := f.linkService(LinkOptions{ManyMode: ManyAppend}).Materialize(context.Background(), "Post")
	require.NoError(t, err)
	post = f.entries.Get("post", "post_1")
	assert.Len(t, post["comments"], 5)
}

func TestLinkService_Many_ReplaceModeIsIdempotent(t *testing.T) {
	f := newBlogFixture(t, manyComments)
	f.entries.Put("post", "post_1", entities.Record{
		"database_id": 1,
		"comments":    []any{ref("Entry", "comment_1")},
	})

	buildAndLink(t, f, LinkOptions{ManyMode: ManyReplace})
	first := f.entries.Get("post", "post_1")

	_, err := f.linkService(LinkOptions{ManyMode: ManyReplace}).Materialize(context.Background(), "Post")
	require.NoError(t, err)
	second := f.entries.Get("post", "post_1")

	assert.Equal(t, []any{ref("Entry", "comment_10"), ref("Entry", "comment_11")}, second["comments"])
	assert.Equal(t, first, second)
}

func TestLinkService_ManyThrough(t *testing.T) {
	f := newBlogFixture(t, manyTagsThrough)

	buildAndLink(t, f, LinkOptions{})

	post := f.entries.Get("post", "post_1")
	assert.Equal(t, []any{ref("Entry", "tag_7"), ref("Entry", "tag_8")}, post["tags"])
	assert.NotContains(t, f.entries.Get("post", "post_2"), "tags")
}

func TestLinkService_HasOne_SelectsFirst(t *testing.T) {
	f := newBlogFixture(t, hasOneCover)

	buildAndLink(t, f, LinkOptions{})

	post := f.entries.Get("post", "post_1")
	assert.Equal(t, ref("File", "image_3"), post["cover"])
}

func TestLinkService_BelongsTo(t *testing.T) {
	f := newBlogFixture(t, belongsToAuthor)

	buildAndLink(t, f, LinkOptions{})

	assert.Equal(t, ref("Entry", "author_5"), f.entries.Get("post", "post_1")["author"])
	assert.NotContains(t, f.entries.Get("post", "post_2"), "author")
}

func TestLinkService_AggregateHasOne(t *testing.T) {
	f := newBlogFixture(t, firstCommentTitle)

	buildAndLink(t, f, LinkOptions{})

	assert.Equal(t, "Hi", f.entries.Get("post", "post_1")["first_comment"])
	assert.Equal(t, "Other", f.entries.Get("post", "post_2")["first_comment"])
}

func TestLinkService_AggregateThrough(t *testing.T) {
	f := newBlogFixture(t, tagNamesThrough)

	buildAndLink(t, f, LinkOptions{})

	assert.Equal(t, []any{"go", "json"}, f.entries.Get("post", "post_1")["tag_names"])
}

func TestLinkService_AggregateMany_SaveAs(t *testing.T) {
	spec := entities.RelationSpec{
		Kind: entities.RelationAggregateMany, RelationTo: "Comment", PrimaryID: "post_id",
		Field: "title", SaveAs: "comment_titles",
	}
	f := newBlogFixture(t, spec)

	buildAndLink(t, f, LinkOptions{})

	post := f.entries.Get("post", "post_1")
	assert.Equal(t, []any{"Hi", "Second"}, post["comment_titles"])
	assert.NotContains(t, post, "comments")
}

func TestLinkService_AggregateBelongs(t *testing.T) {
	f := newBlogFixture(t, authorName)

	buildAndLink(t, f, LinkOptions{})

	assert.Equal(t, "Ada", f.entries.Get("post", "post_1")["author_name"])
	assert.NotContains(t, f.entries.Get("post", "post_2"), "author_name")
}

func TestLinkService_AggregateBelongs_JSONPath(t *testing.T) {
	spec := authorName
	spec.Field = "$.profile.city"
	spec.SaveAs = "author_city"
	f := newBlogFixture(t, spec)

	buildAndLink(t, f, LinkOptions{})

	assert.Equal(t, "London", f.entries.Get("post", "post_1")["author_city"])
}

func TestLinkService_AggregateBelongs_AbsentFieldKeepsValue(t *testing.T) {
	tests := []struct {
		name  string
		field string
	}{
		{name: "plain field", field: "nickname"},
		{name: "jsonpath without match", field: "$.profile.country"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := authorName
			spec.Field = tt.field
			spec.SaveAs = "keep"
			f := newBlogFixture(t, spec)
			f.entries.Put("post", "post_1", entities.Record{"database_id": 1, "author_id": 5, "keep": "original"})

			buildAndLink(t, f, LinkOptions{})

			assert.Equal(t, "original", f.entries.Get("post", "post_1")["keep"])
		})
	}
}

func TestLinkService_AggregateMany_SkipsAbsentField(t *testing.T) {
	spec := entities.RelationSpec{
		Kind: entities.RelationAggregateMany, RelationTo: "Comment", PrimaryID: "post_id",
		Field: "title", SaveAs: "comment_titles",
	}
	f := newBlogFixture(t, spec)
	f.entries.Put("comment", "comment_10", entities.Record{"database_id": 10, "post_id": 1})

	buildAndLink(t, f, LinkOptions{})

	assert.Equal(t, []any{"Second"}, f.entries.Get("post", "post_1")["comment_titles"])
}

func TestLinkService_MissingRelated(t *testing.T) {
	f := newBlogFixture(t, authorName)
	f.entries.Put("post", "post_2", entities.Record{"database_id": 2, "author_id": 99})

	t.Run("skip leaves the field untouched", func(t *testing.T) {
		n, err := f.linkService(LinkOptions{OnMissingRelated: MissingSkip}).Materialize(context.Background(), "Post")
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.NotContains(t, f.entries.Get("post", "post_2"), "author_name")
	})

	t.Run("fail aborts", func(t *testing.T) {
		_, err := f.linkService(LinkOptions{OnMissingRelated: MissingFail}).Materialize(context.Background(), "Post")
		require.Error(t, err)
		assert.ErrorIs(t, err, entities.ErrEntryNotFound)
		assert.Contains(t, err.Error(), "author_99")
	})
}

func TestLinkService_EntityNotIndexed(t *testing.T) {
	f := newBlogFixture(t, manyComments)
	f.entries.Put("post", "post_3", entities.Record{"database_id": 3, "title": "Lonely"})

	buildAndLink(t, f, LinkOptions{})

	assert.Equal(t, entities.Record{"database_id": json.Number("3"), "title": "Lonely"}, f.entries.Get("post", "post_3"))
}

func TestLinkService_MissingIndexFailsBeforeWrites(t *testing.T) {
	f := newBlogFixture(t, belongsToAuthor, manyComments)

	_, err := f.linkService(LinkOptions{}).Materialize(context.Background(), "Post")
	require.Error(t, err)
	assert.ErrorIs(t, err, entities.ErrIndexNotFound)
	assert.Zero(t, f.entries.Writes())
}

func TestLinkService_SchemaErrorFailsBeforeWrites(t *testing.T) {
	f := newBlogFixture(t, belongsToAuthor, manyComments)
	_, err := f.indexService().BuildModels(context.Background(), f.schema.LinkedModels())
	require.NoError(t, err)
	f.structure["Post"].Fields = nil

	_, err = f.linkService(LinkOptions{}).Materialize(context.Background(), "Post")
	require.Error(t, err)
	assert.True(t, entities.IsConfigError(err))
	assert.Contains(t, err.Error(), "Post")
	assert.Zero(t, f.entries.Writes())
}

func TestLinkService_DeclarationOrder(t *testing.T) {
	// Both relations write "author"; the later one wins.
	second := authorName
	second.SaveAs = "author"
	f := newBlogFixture(t, belongsToAuthor, second)

	buildAndLink(t, f, LinkOptions{})
	assert.Equal(t, "Ada", f.entries.Get("post", "post_1")["author"])

	f2 := newBlogFixture(t, second, belongsToAuthor)
	buildAndLink(t, f2, LinkOptions{})
	assert.Equal(t, ref("Entry", "author_5"), f2.entries.Get("post", "post_1")["author"])
}

func TestLinkService_SingleWritePerEntry(t *testing.T) {
	f := newBlogFixture(t, manyComments, belongsToAuthor, firstCommentTitle)

	buildAndLink(t, f, LinkOptions{})

	// post_1 and post_2 each written once.
	assert.Equal(t, 2, f.entries.Writes())
}

func TestLinkService_Workers(t *testing.T) {
	links := []entities.RelationSpec{manyComments, belongsToAuthor, firstCommentTitle, manyTagsThrough}
	f := newBlogFixture(t, links...)
	for i := 3; i < 60; i++ {
		f.entries.Put("post", entryName("post", strconv.Itoa(i)), entities.Record{"database_id": i})
	}
	f.source.Tables["comment"] = append(f.source.Tables["comment"], entities.Row{"id": int64(13), "post_id": int64(40)})
	f.entries.Put("comment", "comment_13", entities.Record{"database_id": 13, "title": "Late"})

	n := buildAndLink(t, f, LinkOptions{Workers: 8})
	assert.Equal(t, 59, n)

	sequential := newBlogFixture(t, links...)
	for i := 3; i < 60; i++ {
		sequential.entries.Put("post", entryName("post", strconv.Itoa(i)), entities.Record{"database_id": i})
	}
	sequential.source.Tables["comment"] = f.source.Tables["comment"]
	sequential.entries.Put("comment", "comment_13", entities.Record{"database_id": 13, "title": "Late"})
	buildAndLink(t, sequential, LinkOptions{Workers: 1})

	for i := 1; i < 60; i++ {
		name := entryName("post", strconv.Itoa(i))
		assert.Equal(t, sequential.entries.Get("post", name), f.entries.Get("post", name), name)
	}
	assert.Equal(t, "Late", f.entries.Get("post", "post_40")["first_comment"])
}

func TestLinkService_ModelWithoutLinks(t *testing.T) {
	f := newBlogFixture(t)

	n, err := f.linkService(LinkOptions{}).Materialize(context.Background(), "Post")
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, f.entries.Writes())
}

func TestLinkService_Cancelled(t *testing.T) {
	f := newBlogFixture(t, belongsToAuthor)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.linkService(LinkOptions{}).Materialize(ctx, "Post")
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, f.entries.Writes())
}

func TestBuildReferenceObjects(t *testing.T) {
	idx := entities.ForeignKeyIndex{"1": {int64(10), "11"}}

	refs := BuildReferenceObjects(idx, "1", "comment", entities.LinkTypeEntry)
	assert.Equal(t, []entities.ReferenceObject{
		{Type: "Entry", ID: "comment_10"},
		{Type: "Entry", ID: "comment_11"},
	}, refs)

	assert.Empty(t, BuildReferenceObjects(idx, "2", "comment", entities.LinkTypeEntry))
}
