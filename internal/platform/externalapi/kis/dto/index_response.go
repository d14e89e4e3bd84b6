package dto

// IndexResponse represents inquire-index-price.
type IndexResponse struct {
	Envelope
	Output *IndexOutput `json:"output"`
}

// IndexOutput is the current level block of a sector index.
type IndexOutput struct {
	Price  string `json:"bstp_nmix_prpr"`
	Sign   string `json:"prdy_vrss_sign"`
	Change string `json:"bstp_nmix_prdy_vrss"`
	Rate   string `json:"bstp_nmix_prdy_ctrt"`
}
