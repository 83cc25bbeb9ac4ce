package review

import "errors"

var (
	errInvalidRating  = errors.New("rating must be between 1 and 5")
	errMissingProduct = errors.New("product ID is required")
	errReviewNotFound = errors.New("review not found")
	errNotAuthor      = errors.New("only the author can delete this review")
)
