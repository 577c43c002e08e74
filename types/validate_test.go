package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateRevision(t *testing.T) {
	ok := RevisionProblem{Submission: Submission{Title: "Two Sum"}, ConfidenceLevel: 5}
	assert.NoError(t, ValidateRevision(&ok))

	noTitle := ok
	noTitle.Title = ""
	err := ValidateRevision(&noTitle)
	assert.True(t, errors.Is(err, ErrInvalidRevision))
	assert.Contains(t, err.Error(), "title is required")

	tooLow := ok
	tooLow.ConfidenceLevel = 0
	err = ValidateRevision(&tooLow)
	assert.True(t, errors.Is(err, ErrInvalidRevision))
	assert.Contains(t, err.Error(), "confidence_level must be at least 1")

	tooHigh := ok
	tooHigh.ConfidenceLevel = 6
	assert.ErrorContains(t, ValidateRevision(&tooHigh), "confidence_level must be at most 5")
}

func TestCheckStoreVersion(t *testing.T) {
	assert.NoError(t, CheckStoreVersion(CurrentVersion.Version))
	assert.NoError(t, CheckStoreVersion(CurrentVersion.StoreVersionRequired))
	assert.Error(t, CheckStoreVersion("99.0.0"))
	assert.Error(t, CheckStoreVersion("0.9.0"))
	assert.Error(t, CheckStoreVersion("not-a-version"))
}
