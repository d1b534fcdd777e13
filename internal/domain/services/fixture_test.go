package services

import (
	"testing"

	"github.com/ersonp/entrylink/internal/domain/entities"
	"github.com/ersonp/entrylink/internal/domain/mocks"
)

// blogFixture wires a small blog export: posts with comments, an author,
// tags through a join table and an asset cover.
type blogFixture struct {
	schema    *entities.RelationSchema
	structure entities.TargetSchema
	source    *mocks.SourceReader
	entries   *mocks.EntryStore
	indexes   *mocks.IndexStore
}

func newBlogFixture(t *testing.T, postLinks ...entities.RelationSpec) *blogFixture {
	t.Helper()

	schema := entities.NewRelationSchema(
		&entities.ModelMapping{Name: "Post", ContentType: "Post", Links: postLinks},
		&entities.ModelMapping{Name: "Comment", ContentType: "Comment"},
		&entities.ModelMapping{Name: "Author", ContentType: "Author"},
		&entities.ModelMapping{Name: "Tag", ContentType: "Tag"},
		&entities.ModelMapping{Name: "Image", ContentType: "Image", Type: entities.EntryTypeAsset},
	)

	structure := entities.TargetSchema{
		"Post": {
			ID: "post",
			Fields: map[string]entities.FieldAttrs{
				"title":     {Type: "Text"},
				"Comment":   {ID: "comments", Type: entities.FieldTypeArray, Link: "Entry"},
				"Author":    {ID: "author", Type: entities.FieldTypeEntry},
				"Tag":       {ID: "tags", Type: entities.FieldTypeArray, Link: "Entry"},
				"Tag Names": {ID: "tag_names", Type: entities.FieldTypeArray},
				"Cover":     {ID: "cover", Type: entities.FieldTypeAsset},
				"Image":     {ID: "image", Type: entities.FieldTypeAsset},
			},
		},
		"Comment": {ID: "comment", Fields: map[string]entities.FieldAttrs{}},
		"Author":  {ID: "author", Fields: map[string]entities.FieldAttrs{}},
		"Tag":     {ID: "tag", Fields: map[string]entities.FieldAttrs{}},
	}

	source := mocks.NewSourceReader()
	source.Tables["comment"] = []entities.Row{
		{"id": int64(10), "post_id": int64(1), "title": "Hi"},
		{"id": int64(11), "post_id": int64(1), "title": "Second"},
		{"id": int64(12), "post_id": int64(2), "title": "Other"},
	}
	source.Tables["post_tag"] = []entities.Row{
		{"post_id": int64(1), "tag_id": int64(7)},
		{"post_id": int64(1), "tag_id": int64(8)},
	}
	source.Tables["image"] = []entities.Row{
		{"id": int64(3), "post_id": int64(1)},
		{"id": int64(4), "post_id": int64(1)},
	}

	entries := mocks.NewEntryStore()
	entries.Put("post", "post_1", entities.Record{"database_id": 1, "title": "First post", "author_id": 5})
	entries.Put("post", "post_2", entities.Record{"database_id": 2, "title": "Second post"})
	entries.Put("comment", "comment_10", entities.Record{"database_id": 10, "title": "Hi", "post_id": 1})
	entries.Put("comment", "comment_11", entities.Record{"database_id": 11, "title": "Second", "post_id": 1})
	entries.Put("comment", "comment_12", entities.Record{"database_id": 12, "title": "Other", "post_id": 2})
	entries.Put("author", "author_5", entities.Record{"database_id": 5, "name": "Ada", "profile": map[string]any{"city": "London"}})
	entries.Put("tag", "tag_7", entities.Record{"database_id": 7, "name": "go"})
	entries.Put("tag", "tag_8", entities.Record{"database_id": 8, "name": "json"})

	return &blogFixture{
		schema:    schema,
		structure: structure,
		source:    source,
		entries:   entries,
		indexes:   mocks.NewIndexStore(),
	}
}

func (f *blogFixture) indexService() *IndexService {
	return NewIndexService(f.schema, f.source, f.indexes, nil)
}

func (f *blogFixture) linkService(opts LinkOptions) *LinkService {
	planner := NewPlanner(f.schema, NewFieldResolver(f.schema, f.structure))
	return NewLinkService(planner, f.entries, f.indexes, opts, nil)
}

var (
	manyComments = entities.RelationSpec{
		Kind: entities.RelationMany, RelationTo: "Comment", PrimaryID: "post_id", ForeignID: "id",
	}
	belongsToAuthor = entities.RelationSpec{
		Kind: entities.RelationBelongsTo, RelationTo: "Author", ForeignID: "author_id",
	}
	manyTagsThrough = entities.RelationSpec{
		Kind: entities.RelationManyThrough, RelationTo: "Tag", Through: "PostTag", PrimaryID: "post_id", ForeignID: "tag_id",
	}
	hasOneCover = entities.RelationSpec{
		Kind: entities.RelationHasOne, RelationTo: "Image", PrimaryID: "post_id", MapsTo: "Cover",
	}
	firstCommentTitle = entities.RelationSpec{
		Kind: entities.RelationAggregateHasOne, RelationTo: "Comment", PrimaryID: "post_id", Field: "title", SaveAs: "first_comment",
	}
	tagNamesThrough = entities.RelationSpec{
		Kind: entities.RelationAggregateThrough, RelationTo: "Tag", Through: "PostTag", PrimaryID: "post_id",
		ForeignID: "tag_id", Field: "name", MapsTo: "Tag Names",
	}
	authorName = entities.RelationSpec{
		Kind: entities.RelationAggregateBelongs, RelationTo: "Author", PrimaryID: "author_id", Field: "name", SaveAs: "author_name",
	}
)
