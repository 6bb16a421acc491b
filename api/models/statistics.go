package models

// Row is one record of a statistics document, columns in order.
type Row []any

type StatisticsResponse struct {
	Statistics []Row  `json:"statistics,omitempty"`
	Metric     string `json:"metric"`
	Unit       string `json:"unit"`
	Interval   string `json:"interval"`
}

// HasData reports whether the document carries rows to render.
func (r *StatisticsResponse) HasData() bool {
	return r != nil && len(r.Statistics) > 0
}

type DatabaseDescriptor struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

type DatabaseList struct {
	Bases []DatabaseDescriptor `json:"bases"`
}
