package kmdb

import "strings"

// Response is the KMDB search envelope. Every level is optional: the source omits keys,
// sends empty arrays and empty strings interchangeably.
type Response struct {
	Query      string      `json:"Query"`
	TotalCount int         `json:"TotalCount"`
	Data       []DataBlock `json:"Data"`
}

type DataBlock struct {
	CollName   string   `json:"CollName"`
	TotalCount int      `json:"TotalCount"`
	Count      int      `json:"Count"`
	Result     []Result `json:"Result"`
}

type Result struct {
	DOCID   string  `json:"DOCID"`
	Title   string  `json:"title"`
	KmdbURL string  `json:"kmdbUrl"`
	Runtime string  `json:"runtime"`
	Rating  string  `json:"rating"`
	Posters string  `json:"posters"`
	Plots   *Plots  `json:"plots"`
	Actors  *Actors `json:"actors"`
}

type Plots struct {
	Plot []Plot `json:"plot"`
}

type Plot struct {
	PlotLang string `json:"plotLang"`
	PlotText string `json:"plotText"`
}

type Actors struct {
	Actor []Actor `json:"actor"`
}

type Actor struct {
	ActorNm   string `json:"actorNm"`
	ActorEnNm string `json:"actorEnNm"`
	ActorID   string `json:"actorId"`
}

// PosterDelimiter separates poster URLs in Result.Posters.
const PosterDelimiter = "|"

// FirstDataBlock returns the first data block, if any. Safe on a nil response.
func (r *Response) FirstDataBlock() (DataBlock, bool) {
	if r == nil || len(r.Data) == 0 {
		return DataBlock{}, false
	}
	return r.Data[0], true
}

// FirstResult returns the first result of the block, if any.
func (d DataBlock) FirstResult() (Result, bool) {
	if len(d.Result) == 0 {
		return Result{}, false
	}
	return d.Result[0], true
}

// FirstResult walks Data[0].Result[0].
func (r *Response) FirstResult() (Result, bool) {
	block, ok := r.FirstDataBlock()
	if !ok {
		return Result{}, false
	}
	return block.FirstResult()
}

// FirstPlot returns the first plot entry, if any.
func (r Result) FirstPlot() (Plot, bool) {
	if r.Plots == nil || len(r.Plots.Plot) == 0 {
		return Plot{}, false
	}
	return r.Plots.Plot[0], true
}

// ActorNames returns actor names in source order, untrimmed and unfiltered.
func (r Result) ActorNames() []string {
	if r.Actors == nil {
		return nil
	}
	names := make([]string, 0, len(r.Actors.Actor))
	for _, a := range r.Actors.Actor {
		names = append(names, a.ActorNm)
	}
	return names
}

// PosterURLs splits Posters on the delimiter. Empty input gives nil.
func (r Result) PosterURLs() []string {
	if strings.TrimSpace(r.Posters) == "" {
		return nil
	}
	return strings.Split(r.Posters, PosterDelimiter)
}
