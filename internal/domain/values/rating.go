package values

import (
	"fmt"
	"math"
)

// Rating is a user's reputation aggregate: the running mean of all
// review scores received, rounded to one decimal place, and the count
// of reviews that produced it.
type Rating struct {
	average float64
	count   int
}

// MinScore and MaxScore bound an individual review score.
const (
	MinScore = 1
	MaxScore = 5
)

// NewRating creates a rating aggregate from stored values.
func NewRating(average float64, count int) (Rating, error) {
	if count < 0 {
		return Rating{}, fmt.Errorf("review count cannot be negative")
	}
	if average < 0 || average > MaxScore {
		return Rating{}, fmt.Errorf("average must be between 0 and %d", MaxScore)
	}
	if count == 0 && average != 0 {
		return Rating{}, fmt.Errorf("average must be zero when no reviews exist")
	}
	return Rating{average: average, count: count}, nil
}

// MustNewRating creates a Rating and panics on error (for tests)
func MustNewRating(average float64, count int) Rating {
	r, err := NewRating(average, count)
	if err != nil {
		panic(err)
	}
	return r
}

// ValidateScore checks that an individual review score is in range.
func ValidateScore(score int) error {
	if score < MinScore || score > MaxScore {
		return fmt.Errorf("score must be between %d and %d", MinScore, MaxScore)
	}
	return nil
}

// Apply folds a new review score into the aggregate:
// newAverage = (average*count + score) / (count+1), rounded to one decimal.
func (r Rating) Apply(score int) (Rating, error) {
	if err := ValidateScore(score); err != nil {
		return Rating{}, err
	}

	newCount := r.count + 1
	newAverage := (r.average*float64(r.count) + float64(score)) / float64(newCount)

	return Rating{
		average: math.Round(newAverage*10) / 10,
		count:   newCount,
	}, nil
}

// Average returns the one-decimal running mean.
func (r Rating) Average() float64 {
	return r.average
}

// Count returns the number of reviews received.
func (r Rating) Count() int {
	return r.count
}

// IsZero reports whether the user has never been reviewed.
func (r Rating) IsZero() bool {
	return r.count == 0
}

func (r Rating) String() string {
	return fmt.Sprintf("%.1f (%d reviews)", r.average, r.count)
}
