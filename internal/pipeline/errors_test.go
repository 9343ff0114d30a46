package pipeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDataQualityWarningsBecomesFatalPastLimit(t *testing.T) {
	w := NewDataQualityWarnings(2)
	assert.NoError(t, w.Add(errors.New("one")))
	assert.NoError(t, w.Add(errors.New("two")))
	assert.Error(t, w.Add(errors.New("three")))
	assert.Equal(t, 3, w.Count())
}

func TestContractErrorMessage(t *testing.T) {
	err := NewContractError("gene", "ghost", "not in catalog")
	assert.Contains(t, err.Error(), "gene")
	assert.Contains(t, err.Error(), "ghost")
}
