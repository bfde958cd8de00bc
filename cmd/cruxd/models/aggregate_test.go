package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeCounts(t *testing.T) {
	lhs := []CountByGroup{{Label: "5.10a", Count: 2}, {Label: "5.11a", Count: 1}}
	rhs := []CountByGroup{{Label: "5.11a", Count: 3}, {Label: "v4", Count: 5}}

	got := MergeCounts(lhs, rhs)
	assert.Equal(t, []CountByGroup{
		{Label: "5.10a", Count: 2},
		{Label: "5.11a", Count: 4},
		{Label: "v4", Count: 5},
	}, got)

	// inputs untouched
	assert.Equal(t, 1, lhs[1].Count)
}

func TestMergeCounts_Empty(t *testing.T) {
	rhs := []CountByGroup{{Label: "sport", Count: 1}}
	assert.Equal(t, rhs, MergeCounts(nil, rhs))
	assert.Equal(t, rhs, MergeCounts(rhs, nil))
}

func TestMergeAggregates(t *testing.T) {
	lhs := NewAggregate()
	lhs.ByGrade = []CountByGroup{{Label: "5.9", Count: 1}}
	lhs.ByGradeBand.Add(BandIntermediate)

	rhs := NewAggregate()
	rhs.ByGrade = []CountByGroup{{Label: "5.9", Count: 2}}
	rhs.ByDiscipline = []CountByGroup{{Label: "trad", Count: 2}}
	rhs.ByGradeBand.Add(BandIntermediate)
	rhs.ByGradeBand.Add(BandExpert)

	got := MergeAggregates(lhs, rhs)
	assert.Equal(t, []CountByGroup{{Label: "5.9", Count: 3}}, got.ByGrade)
	assert.Equal(t, []CountByGroup{{Label: "trad", Count: 2}}, got.ByDiscipline)
	assert.Equal(t, 2, got.ByGradeBand.Intermediate)
	assert.Equal(t, 1, got.ByGradeBand.Expert)

	// lhs unchanged
	assert.Equal(t, 1, lhs.ByGradeBand.Intermediate)
}

func TestGradeBandCounts_Add(t *testing.T) {
	var g GradeBandCounts
	g.Add(BandBeginner)
	g.Add(BandUnknown)
	g.Add(GradeBand("bogus"))
	assert.Equal(t, 1, g.Beginner)
	assert.Equal(t, 2, g.Unknown)
}
