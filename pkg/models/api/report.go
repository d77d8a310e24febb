package api

type Error struct {
	Error string `json:"error"`
}

type Deleted struct {
	Deleted int64 `json:"deleted"`
}

type Entities struct {
	Entities []string `json:"entities"`
}

type PeriodTotal struct {
	Period string  `json:"period"`
	Label  string  `json:"label"`
	Count  int64   `json:"count"`
	Amount float64 `json:"amount"`
}

type Totals struct {
	Totals []PeriodTotal `json:"totals"`
}
