package nse

// optionChainEnvelope mirrors the slice of the upstream option-chain
// document the fetcher consumes. Everything else in the response is
// ignored by the decoder.
type optionChainEnvelope struct {
	Records struct {
		ExpiryDates []string      `json:"expiryDates"`
		Data        []optionEntry `json:"data"`
	} `json:"records"`
}

// optionEntry is one strike/expiry pair as the upstream reports it.
// The call and put sides stay loosely typed; the upstream omits
// individual metrics freely, so field extraction happens in
// flattenEntry with zero substituted for anything absent.
type optionEntry struct {
	StrikePrice float64                `json:"strikePrice"`
	ExpiryDate  string                 `json:"expiryDate"`
	Call        map[string]interface{} `json:"CE"`
	Put         map[string]interface{} `json:"PE"`
}

// OptionRow pairs the call-side and put-side metrics of one strike and
// expiry, in workbook column order.
type OptionRow struct {
	StrikePrice  float64
	ExpiryDate   string
	CallOI       float64
	CallChangeOI float64
	CallVolume   float64
	CallIV       float64
	CallLTP      float64
	CallChange   float64
	PutOI        float64
	PutChangeOI  float64
	PutVolume    float64
	PutIV        float64
	PutLTP       float64
	PutChange    float64
}

// optionChainHeaders is the workbook header row matching OptionRow.
var optionChainHeaders = []string{
	"Strike Price", "Expiry Date",
	"CE OI", "CE Change in OI", "CE Volume", "CE IV", "CE LTP", "CE Change",
	"PE OI", "PE Change in OI", "PE Volume", "PE IV", "PE LTP", "PE Change",
}

// cells returns the row values in optionChainHeaders order.
func (r OptionRow) cells() []interface{} {
	return []interface{}{
		r.StrikePrice, r.ExpiryDate,
		r.CallOI, r.CallChangeOI, r.CallVolume, r.CallIV, r.CallLTP, r.CallChange,
		r.PutOI, r.PutChangeOI, r.PutVolume, r.PutIV, r.PutLTP, r.PutChange,
	}
}

// flattenEntry projects one upstream entry into an OptionRow. Entries
// missing either side are dropped so the workbook only carries strikes
// quoted on both.
func flattenEntry(e optionEntry) (OptionRow, bool) {
	if e.Call == nil || e.Put == nil {
		return OptionRow{}, false
	}
	return OptionRow{
		StrikePrice:  e.StrikePrice,
		ExpiryDate:   e.ExpiryDate,
		CallOI:       numField(e.Call, "openInterest"),
		CallChangeOI: numField(e.Call, "changeinOpenInterest"),
		CallVolume:   numField(e.Call, "totalTradedVolume"),
		CallIV:       numField(e.Call, "impliedVolatility"),
		CallLTP:      numField(e.Call, "lastPrice"),
		CallChange:   numField(e.Call, "change"),
		PutOI:        numField(e.Put, "openInterest"),
		PutChangeOI:  numField(e.Put, "changeinOpenInterest"),
		PutVolume:    numField(e.Put, "totalTradedVolume"),
		PutIV:        numField(e.Put, "impliedVolatility"),
		PutLTP:       numField(e.Put, "lastPrice"),
		PutChange:    numField(e.Put, "change"),
	}, true
}

// numField reads a numeric field from a decoded JSON object, returning
// zero when the key is absent or holds a non-number.
func numField(side map[string]interface{}, key string) float64 {
	v, ok := side[key]
	if !ok {
		return 0
	}
	f, ok := v.(float64)
	if !ok {
		return 0
	}
	return f
}
