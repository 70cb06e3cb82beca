package usecase

import (
	"testing"

	"github.com/shelfclub/bookclub-backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiffInts(t *testing.T) {
	toAdd, toRemove := diffInts([]int{1, 2, 3}, []int{2, 3, 4})
	assert.Equal(t, []int{4}, toAdd)
	assert.Equal(t, []int{1}, toRemove)
}

func TestDiffIntsEmptyTarget(t *testing.T) {
	toAdd, toRemove := diffInts([]int{1, 2}, []int{})
	assert.Empty(t, toAdd)
	assert.Equal(t, []int{1, 2}, toRemove)
}

func TestDiffIntsDeduplicatesTarget(t *testing.T) {
	toAdd, toRemove := diffInts([]int{1}, []int{2, 2, 1, 1})
	assert.Equal(t, []int{2}, toAdd)
	assert.Empty(t, toRemove)
}

// Applying the produced diff and diffing again must yield nothing.
func TestDiffIntsIdempotent(t *testing.T) {
	current := []int{1, 2, 3}
	target := []int{3, 4, 5}

	toAdd, toRemove := diffInts(current, target)
	require.NotEmpty(t, toAdd)
	require.NotEmpty(t, toRemove)

	toAdd2, toRemove2 := diffInts(target, target)
	assert.Empty(t, toAdd2)
	assert.Empty(t, toRemove2)
}

func TestDiffStrings(t *testing.T) {
	toAdd, toRemove := diffStrings([]string{"a", "b"}, []string{"b", "c"})
	assert.Equal(t, []string{"c"}, toAdd)
	assert.Equal(t, []string{"a"}, toRemove)
}

func TestMissingStrings(t *testing.T) {
	missing := missingStrings([]string{"a", "b"}, []string{"b", "c", "d"})
	assert.Equal(t, []string{"c", "d"}, missing)

	missing = missingStrings([]string{"a"}, []string{"a"})
	assert.Empty(t, missing)
}

func TestMergeBookKeepsAbsentFields(t *testing.T) {
	edition := "First"
	current := model.Book{
		Id:      7,
		Title:   "Dune",
		Author:  "Frank Herbert",
		Edition: &edition,
	}

	pageCount := 412
	merged := mergeBook(current, model.BookPatch{PageCount: &pageCount})

	assert.Equal(t, 7, merged.Id)
	assert.Equal(t, "Dune", merged.Title)
	assert.Equal(t, "Frank Herbert", merged.Author)
	require.NotNil(t, merged.Edition)
	assert.Equal(t, "First", *merged.Edition)
	require.NotNil(t, merged.PageCount)
	assert.Equal(t, 412, *merged.PageCount)
}

func TestMergeBookOverlaysPresentFields(t *testing.T) {
	current := model.Book{Title: "Dune", Author: "Frank Herbert"}

	title := "Dune Messiah"
	year := 1969
	merged := mergeBook(current, model.BookPatch{Title: &title, Year: &year})

	assert.Equal(t, "Dune Messiah", merged.Title)
	assert.Equal(t, "Frank Herbert", merged.Author)
	require.NotNil(t, merged.Year)
	assert.Equal(t, 1969, *merged.Year)
}

func TestValidateDiscussionsReportsIndex(t *testing.T) {
	err := validateDiscussions([]model.DiscussionCreateRequest{
		{Title: "Part One", Date: "2024-03-10"},
		{Title: "", Date: "2024-03-20"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index 1")

	err = validateDiscussions([]model.DiscussionCreateRequest{
		{Title: "Part One", Date: ""},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing a date")
}

func TestValidateDiscussionsAcceptsCompleteBatch(t *testing.T) {
	err := validateDiscussions([]model.DiscussionCreateRequest{
		{Title: "Part One", Date: "2024-03-10"},
		{Title: "Part Two", Date: "2024-03-20"},
	})
	assert.NoError(t, err)
}

func TestValidateDiscussionsEmptyBatch(t *testing.T) {
	assert.NoError(t, validateDiscussions(nil))
}
