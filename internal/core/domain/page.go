package domain

// Page is a bounded slice of the lead collection plus its total count.
// Total is independent of Skip and Limit.
type Page struct {
	Items []Lead `json:"items"`
	Total int64  `json:"total"`
	Skip  int    `json:"skip"`
	Limit int    `json:"limit"`
}
