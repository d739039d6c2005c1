package model

// Candidate is one proposed interpretation of an uploaded table.
type Candidate struct {
	Encoding          string   `json:"encoding"`
	Delimiter         string   `json:"delimiter"`
	HeaderRow         int      `json:"header_row"`     // 1-based
	DataStartRow      int      `json:"data_start_row"` // 1-based
	HeadersNormalized []string `json:"headers_normalized"`
	HeaderSignature   string   `json:"header_signature"`
	PreviewRows       []RawRow `json:"preview_rows"`
	Confidence        float64  `json:"confidence"`
	Reason            string   `json:"reason"`
}
