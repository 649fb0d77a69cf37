package models

// PhotoResponse is the assessment returned for an uploaded worksite photo.
type PhotoResponse struct {
	Result string `json:"result"`
}
