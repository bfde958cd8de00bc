package service

import (
	"strings"

	"github.com/cruxdb/cruxd/cmd/cruxd/models"
)

// Grade scales used for banding. Route grades score on a YDS-aligned
// axis, boulder grades on a V-scale-aligned axis; the FR context swaps
// in the French/Fontainebleau tables over the same axes.
const (
	scaleYDS    = "yds"
	scaleFrench = "french"
	scaleVScale = "vscale"
	scaleFont   = "font"
)

// BandForGrade buckets a raw grade into a coarse difficulty band.
// Unparseable grades land in the unknown band rather than failing.
func BandForGrade(grade string, isBoulder bool, gradeContext string) models.GradeBand {
	scale := scaleForClimb(isBoulder, gradeContext)

	score, ok := gradeScores[scale][normalizeGrade(grade)]
	if !ok {
		return models.BandUnknown
	}

	if isBoulder {
		return vScoreToBand(score)
	}
	return routeScoreToBand(score)
}

func scaleForClimb(isBoulder bool, gradeContext string) string {
	if gradeContext == "FR" {
		if isBoulder {
			return scaleFont
		}
		return scaleFrench
	}
	if isBoulder {
		return scaleVScale
	}
	return scaleYDS
}

func normalizeGrade(grade string) string {
	return strings.ToLower(strings.TrimSpace(grade))
}

func routeScoreToBand(score float64) models.GradeBand {
	switch {
	case score < 54:
		return models.BandBeginner
	case score < 67.5:
		return models.BandIntermediate
	case score < 82.5:
		return models.BandAdvanced
	default:
		return models.BandExpert
	}
}

func vScoreToBand(score float64) models.GradeBand {
	switch {
	case score < 50:
		return models.BandBeginner
	case score < 60:
		return models.BandIntermediate
	case score < 72:
		return models.BandAdvanced
	default:
		return models.BandExpert
	}
}

// gradeScores places each grade on its scale's sort axis. The axes are
// shared between the US and FR tables so the band cutoffs above apply
// to both.
var gradeScores = map[string]map[string]float64{
	scaleYDS: {
		"5.0": 10, "5.1": 16, "5.2": 22, "5.3": 28, "5.4": 34, "5.5": 40,
		"5.6": 46, "5.7": 50, "5.8": 52,
		"5.9": 55,
		"5.10a": 56, "5.10b": 58, "5.10": 59, "5.10c": 60, "5.10d": 62,
		"5.11a": 68, "5.11b": 70, "5.11": 71, "5.11c": 72, "5.11d": 74,
		"5.12a": 76, "5.12b": 78, "5.12": 79, "5.12c": 80, "5.12d": 82,
		"5.13a": 84, "5.13b": 86, "5.13": 87, "5.13c": 88, "5.13d": 90,
		"5.14a": 92, "5.14b": 94, "5.14": 95, "5.14c": 96, "5.14d": 98,
		"5.15a": 100, "5.15b": 102, "5.15": 103, "5.15c": 104, "5.15d": 106,
	},
	scaleFrench: {
		"1": 16, "2": 24, "3": 32, "4a": 40, "4b": 44, "4c": 48,
		"5a": 55, "5b": 57, "5c": 59,
		"6a": 61, "6a+": 63, "6b": 65,
		"6b+": 68, "6c": 70, "6c+": 72,
		"7a": 74, "7a+": 76, "7b": 78, "7b+": 80, "7c": 82,
		"7c+": 84, "8a": 86, "8a+": 88, "8b": 90, "8b+": 92, "8c": 94,
		"8c+": 96, "9a": 98, "9a+": 100, "9b": 102, "9b+": 104, "9c": 106,
	},
	scaleVScale: {
		"vb": 44, "v0": 48,
		"v1": 52, "v2": 56,
		"v3": 62, "v4": 64, "v5": 66, "v6": 70,
		"v7": 74, "v8": 76, "v9": 78, "v10": 80, "v11": 82, "v12": 84,
		"v13": 86, "v14": 88, "v15": 90, "v16": 92, "v17": 94,
	},
	scaleFont: {
		"3": 44, "4": 48,
		"5": 52, "5+": 54, "6a": 58,
		"6a+": 60, "6b": 62, "6b+": 64, "6c": 66, "6c+": 68, "7a": 70,
		"7a+": 73, "7b": 76, "7b+": 78, "7c": 80, "7c+": 82, "8a": 84,
		"8a+": 86, "8b": 88, "8b+": 90, "8c": 92, "8c+": 94, "9a": 96,
	},
}
