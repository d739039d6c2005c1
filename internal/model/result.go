package model

// RowError reports a row excluded from the transaction list.
type RowError struct {
	RowIndex int     `json:"row_index"`
	Issues   []Issue `json:"issues"`
	Raw      RawRow  `json:"raw"`
}

// ImportMeta describes how the input was read.
type ImportMeta struct {
	EncodingUsed string `json:"encoding_used"`
	Delimiter    string `json:"delimiter"`
	Sheet        string `json:"sheet,omitempty"`
}

// ImportResult is the outcome of applying a mapping template to one file.
type ImportResult struct {
	RowsOK        int                    `json:"rows_ok"`
	RowsError     int                    `json:"rows_error"`
	Errors        []RowError             `json:"errors"`
	Transactions  []CanonicalTransaction `json:"transactions"`
	PostingsDraft []DraftPosting         `json:"postings_draft"`
	Meta          ImportMeta             `json:"meta"`
}
