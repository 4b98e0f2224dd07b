package models

// ImportRow is one parsed CSV row as it leaves the upstream parser: every
// cell still a string. Coercion and the required-field filter happen in the
// HTTP layer, so rows that reach the importer are already well-typed.
type ImportRow struct {
	UserNumber string `json:"user_number"`
	MeterCode  string `json:"meter_code"`
	Month      string `json:"month"`
	Year       string `json:"year"`
	Usage      string `json:"electricity_usage"`
	TotalCost  string `json:"total_with_vat"`
	FtRate     string `json:"ft_rate"`
}

// ImportResult reports the outcome of one bulk import run. Duplicates are
// counted separately and also appear as entries in Errors.
type ImportResult struct {
	Success    int      `json:"success"`
	Duplicates int      `json:"duplicates"`
	Errors     []string `json:"errors"`
}
