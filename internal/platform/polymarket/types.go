package polymarket

import (
	"encoding/json"
	"strconv"
	"strings"
)

// flexBool unmarshals from JSON bool or string ("true"/"false") so Gamma API
// responses work whether "active" is sent as bool or string.
type flexBool bool

func (f *flexBool) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = flexBool(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*f = flexBool(strings.EqualFold(s, "true") || s == "1")
	return nil
}

// APIMarket represents a market as returned by the Polymarket Gamma API.
// Numeric fields arrive as strings; OutcomePrices is a JSON-encoded array
// inside a string, e.g. "[\"0.62\",\"0.38\"]".
type APIMarket struct {
	ID            string   `json:"id"`
	Question      string   `json:"question"`
	Slug          string   `json:"slug"`
	Active        flexBool `json:"active"`
	Closed        bool     `json:"closed"`
	OutcomePrices string   `json:"outcomePrices"`
	Volume        string   `json:"volume"`
	Volume24hr    float64  `json:"volume24hr"`
	Liquidity     string   `json:"liquidity"`
	EndDate       string   `json:"endDate"`
}

// Prices decodes the OutcomePrices field into floats. Unparseable entries
// are skipped rather than failing the whole market.
func (m *APIMarket) Prices() []float64 {
	if m.OutcomePrices == "" {
		return nil
	}
	var raw []string
	if err := json.Unmarshal([]byte(m.OutcomePrices), &raw); err != nil {
		return nil
	}
	out := make([]float64, 0, len(raw))
	for _, s := range raw {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			out = append(out, v)
		}
	}
	return out
}

// VolumeFloat parses the string-encoded total volume, defaulting to 0.
func (m *APIMarket) VolumeFloat() float64 {
	v, _ := strconv.ParseFloat(m.Volume, 64)
	return v
}

// LiquidityFloat parses the string-encoded liquidity, defaulting to 0.
func (m *APIMarket) LiquidityFloat() float64 {
	v, _ := strconv.ParseFloat(m.Liquidity, 64)
	return v
}
