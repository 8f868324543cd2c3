package pipeline

import "go.uber.org/zap"

// Outcome is what happened to one listing row during a refresh.
type Outcome int

const (
	OutcomeEnriched Outcome = iota
	OutcomeSkipped
	OutcomeNoData
	OutcomeEncodingFailed
	OutcomeTransportFailed
	OutcomeMalformed
	OutcomeInvalidDate
)

func (o Outcome) String() string {
	switch o {
	case OutcomeEnriched:
		return "enriched"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeNoData:
		return "no_data"
	case OutcomeEncodingFailed:
		return "encoding_failed"
	case OutcomeTransportFailed:
		return "transport_failed"
	case OutcomeMalformed:
		return "malformed"
	case OutcomeInvalidDate:
		return "invalid_date"
	}
	return "unknown"
}

// Report summarizes a refresh run.
type Report struct {
	Year            int `json:"year"`
	Listed          int `json:"listed"`
	Enriched        int `json:"enriched"`
	Skipped         int `json:"skipped"`
	NoData          int `json:"no_data"`
	EncodingFailed  int `json:"encoding_failed"`
	TransportFailed int `json:"transport_failed"`
	Malformed       int `json:"malformed"`
	InvalidDate     int `json:"invalid_date"`
	Saved           int `json:"saved"`
}

func (r *Report) count(o Outcome) {
	switch o {
	case OutcomeEnriched:
		r.Enriched++
	case OutcomeSkipped:
		r.Skipped++
	case OutcomeNoData:
		r.NoData++
	case OutcomeEncodingFailed:
		r.EncodingFailed++
	case OutcomeTransportFailed:
		r.TransportFailed++
	case OutcomeMalformed:
		r.Malformed++
	case OutcomeInvalidDate:
		r.InvalidDate++
	}
}

// Dropped is the number of rows left out of the batch for a reason other than dedup.
func (r Report) Dropped() int {
	return r.NoData + r.EncodingFailed + r.TransportFailed + r.Malformed + r.InvalidDate
}

func (r Report) Fields() []zap.Field {
	return []zap.Field{
		zap.Int("year", r.Year),
		zap.Int("listed", r.Listed),
		zap.Int("enriched", r.Enriched),
		zap.Int("skipped", r.Skipped),
		zap.Int("no_data", r.NoData),
		zap.Int("encoding_failed", r.EncodingFailed),
		zap.Int("transport_failed", r.TransportFailed),
		zap.Int("malformed", r.Malformed),
		zap.Int("invalid_date", r.InvalidDate),
		zap.Int("saved", r.Saved),
	}
}
