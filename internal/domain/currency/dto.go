package currency

// CurrencyResponse is the public view of a catalog row.
type CurrencyResponse struct {
	Code       string `json:"code"`
	Symbol     string `json:"symbol"`
	RateToBase string `json:"rate_to_base"`
	MinorUnits int32  `json:"minor_units"`
}

// ConversionResponse is returned by the convert endpoint.
type ConversionResponse struct {
	Amount    string `json:"amount"`
	From      string `json:"from"`
	To        string `json:"to"`
	Converted string `json:"converted"`
	Formatted string `json:"formatted"`
}

func toResponse(c Currency) CurrencyResponse {
	return CurrencyResponse{
		Code:       c.Code,
		Symbol:     c.Symbol,
		RateToBase: c.RateToBase.String(),
		MinorUnits: c.MinorUnits,
	}
}
