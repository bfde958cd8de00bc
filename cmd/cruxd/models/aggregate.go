package models

// CountByGroup is one histogram bucket (grade label or discipline name)
type CountByGroup struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// GradeBand buckets grades into coarse difficulty bands
type GradeBand string

const (
	BandUnknown      GradeBand = "unknown"
	BandBeginner     GradeBand = "beginner"
	BandIntermediate GradeBand = "intermediate"
	BandAdvanced     GradeBand = "advanced"
	BandExpert       GradeBand = "expert"
)

// GradeBandCounts is a fixed-shape histogram over bands
type GradeBandCounts struct {
	Unknown      int `json:"unknown"`
	Beginner     int `json:"beginner"`
	Intermediate int `json:"intermediate"`
	Advanced     int `json:"advanced"`
	Expert       int `json:"expert"`
}

// Add increments the counter for band
func (g *GradeBandCounts) Add(band GradeBand) {
	switch band {
	case BandBeginner:
		g.Beginner++
	case BandIntermediate:
		g.Intermediate++
	case BandAdvanced:
		g.Advanced++
	case BandExpert:
		g.Expert++
	default:
		g.Unknown++
	}
}

// Merge sums other into g
func (g *GradeBandCounts) Merge(other GradeBandCounts) {
	g.Unknown += other.Unknown
	g.Beginner += other.Beginner
	g.Intermediate += other.Intermediate
	g.Advanced += other.Advanced
	g.Expert += other.Expert
}

// Aggregate is the derived climb statistics attached to every area
type Aggregate struct {
	ByGrade      []CountByGroup  `json:"byGrade"`
	ByDiscipline []CountByGroup  `json:"byDiscipline"`
	ByGradeBand  GradeBandCounts `json:"byGradeBand"`
}

// NewAggregate returns an empty aggregate with non-nil slices so the
// JSON shape stays stable
func NewAggregate() Aggregate {
	return Aggregate{
		ByGrade:      []CountByGroup{},
		ByDiscipline: []CountByGroup{},
	}
}

// MergeCounts merges two histograms by summing matching labels and
// unioning the rest. Output order follows lhs, then new rhs labels in
// their original order, which keeps repeated merges deterministic.
func MergeCounts(lhs, rhs []CountByGroup) []CountByGroup {
	out := make([]CountByGroup, len(lhs))
	copy(out, lhs)

	index := make(map[string]int, len(out))
	for i, e := range out {
		index[e.Label] = i
	}

	for _, e := range rhs {
		if i, ok := index[e.Label]; ok {
			out[i].Count += e.Count
		} else {
			index[e.Label] = len(out)
			out = append(out, e)
		}
	}
	return out
}

// MergeAggregates merges rhs into a copy of lhs
func MergeAggregates(lhs, rhs Aggregate) Aggregate {
	merged := Aggregate{
		ByGrade:      MergeCounts(lhs.ByGrade, rhs.ByGrade),
		ByDiscipline: MergeCounts(lhs.ByDiscipline, rhs.ByDiscipline),
		ByGradeBand:  lhs.ByGradeBand,
	}
	merged.ByGradeBand.Merge(rhs.ByGradeBand)
	return merged
}
