package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cruxdb/cruxd/cmd/cruxd/models"
)

func TestBandForGrade_Routes(t *testing.T) {
	tests := []struct {
		grade string
		want  models.GradeBand
	}{
		{"5.5", models.BandBeginner},
		{"5.8", models.BandBeginner},
		{"5.9", models.BandIntermediate},
		{"5.10d", models.BandIntermediate},
		{"5.11a", models.BandAdvanced},
		{"5.12d", models.BandAdvanced},
		{"5.13a", models.BandExpert},
		{"5.15a", models.BandExpert},
	}
	for _, tt := range tests {
		t.Run(tt.grade, func(t *testing.T) {
			assert.Equal(t, tt.want, BandForGrade(tt.grade, false, "US"))
		})
	}
}

func TestBandForGrade_Boulders(t *testing.T) {
	tests := []struct {
		grade string
		want  models.GradeBand
	}{
		{"VB", models.BandBeginner},
		{"V0", models.BandBeginner},
		{"V1", models.BandIntermediate},
		{"V2", models.BandIntermediate},
		{"V3", models.BandAdvanced},
		{"V6", models.BandAdvanced},
		{"V7", models.BandExpert},
		{"V17", models.BandExpert},
	}
	for _, tt := range tests {
		t.Run(tt.grade, func(t *testing.T) {
			assert.Equal(t, tt.want, BandForGrade(tt.grade, true, "US"))
		})
	}
}

func TestBandForGrade_FrenchContext(t *testing.T) {
	// same cutoffs, French tables
	assert.Equal(t, models.BandBeginner, BandForGrade("4c", false, "FR"))
	assert.Equal(t, models.BandIntermediate, BandForGrade("6b", false, "FR"))
	assert.Equal(t, models.BandAdvanced, BandForGrade("7c", false, "FR"))
	assert.Equal(t, models.BandExpert, BandForGrade("8a", false, "FR"))

	// Font for boulders
	assert.Equal(t, models.BandBeginner, BandForGrade("4", true, "FR"))
	assert.Equal(t, models.BandIntermediate, BandForGrade("6a", true, "FR"))
	assert.Equal(t, models.BandAdvanced, BandForGrade("7a", true, "FR"))
	assert.Equal(t, models.BandExpert, BandForGrade("8a", true, "FR"))
}

func TestBandForGrade_Unknown(t *testing.T) {
	assert.Equal(t, models.BandUnknown, BandForGrade("", false, "US"))
	assert.Equal(t, models.BandUnknown, BandForGrade("not-a-grade", false, "US"))
	// a YDS grade under the FR context does not parse
	assert.Equal(t, models.BandUnknown, BandForGrade("5.10a", false, "FR"))
}

func TestBandForGrade_Normalization(t *testing.T) {
	assert.Equal(t, BandForGrade("v5", true, "US"), BandForGrade("  V5 ", true, "US"))
}
