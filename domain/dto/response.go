package dto

// Res is the error envelope shared by middleware and handlers.
type Res struct {
	ResponseCode    string `json:"responseCode"`
	ResponseMessage string `json:"responseMessage"`
}
