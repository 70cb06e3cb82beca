package usecase

import (
	"fmt"

	"github.com/shelfclub/bookclub-backend/internal/constant"
	"github.com/shelfclub/bookclub-backend/internal/model"
)

// diffInts computes the add/remove sets between the stored collection and the
// requested target collection. Applying the same target twice yields an empty
// diff on the second pass.
func diffInts(current []int, target []int) ([]int, []int) {
	currentSet := make(map[int]struct{}, len(current))
	for _, id := range current {
		currentSet[id] = struct{}{}
	}

	targetSet := make(map[int]struct{}, len(target))
	toAdd := []int{}
	for _, id := range target {
		if _, dup := targetSet[id]; dup {
			continue
		}
		targetSet[id] = struct{}{}

		if _, ok := currentSet[id]; !ok {
			toAdd = append(toAdd, id)
		}
	}

	toRemove := []int{}
	for _, id := range current {
		if _, ok := targetSet[id]; !ok {
			toRemove = append(toRemove, id)
		}
	}

	return toAdd, toRemove
}

func diffStrings(current []string, target []string) ([]string, []string) {
	currentSet := make(map[string]struct{}, len(current))
	for _, id := range current {
		currentSet[id] = struct{}{}
	}

	targetSet := make(map[string]struct{}, len(target))
	toAdd := []string{}
	for _, id := range target {
		if _, dup := targetSet[id]; dup {
			continue
		}
		targetSet[id] = struct{}{}

		if _, ok := currentSet[id]; !ok {
			toAdd = append(toAdd, id)
		}
	}

	toRemove := []string{}
	for _, id := range current {
		if _, ok := targetSet[id]; !ok {
			toRemove = append(toRemove, id)
		}
	}

	return toAdd, toRemove
}

// missingStrings returns the ids of target that are absent from existing,
// preserving request order.
func missingStrings(existing []string, target []string) []string {
	existingSet := make(map[string]struct{}, len(existing))
	for _, id := range existing {
		existingSet[id] = struct{}{}
	}

	missing := []string{}
	for _, id := range target {
		if _, ok := existingSet[id]; !ok {
			missing = append(missing, id)
		}
	}

	return missing
}

// mergeBook overlays the fields present in the patch onto the stored book.
// Absent fields keep their stored values.
func mergeBook(current model.Book, patch model.BookPatch) model.Book {
	merged := current

	if patch.Title != nil {
		merged.Title = *patch.Title
	}
	if patch.Author != nil {
		merged.Author = *patch.Author
	}
	if patch.Edition != nil {
		merged.Edition = patch.Edition
	}
	if patch.Year != nil {
		merged.Year = patch.Year
	}
	if patch.Isbn != nil {
		merged.Isbn = patch.Isbn
	}
	if patch.PageCount != nil {
		merged.PageCount = patch.PageCount
	}

	return merged
}

// validateDiscussions rejects the whole batch when any element misses a
// required field, reporting the offending index.
func validateDiscussions(discussions []model.DiscussionCreateRequest) error {
	for i, discussion := range discussions {
		if discussion.Title == "" {
			return &model.ValidationError{
				Code:    constant.ERR_VALIDATION_CODE,
				Message: fmt.Sprintf("Discussion at index %d is missing a title", i),
				Param:   "discussions",
			}
		}
		if discussion.Date == "" {
			return &model.ValidationError{
				Code:    constant.ERR_VALIDATION_CODE,
				Message: fmt.Sprintf("Discussion at index %d is missing a date", i),
				Param:   "discussions",
			}
		}
	}

	return nil
}
