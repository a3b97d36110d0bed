package requests

type BatchParams struct {
	BatchID    string `json:"batch_id" validate:"required,batch_id"`
	AllowCache bool   `json:"allow_cache"`
}

type BatchVersionParams struct {
	BatchID string `json:"batch_id" validate:"required,batch_id"`
	Version string `json:"version" validate:"required"`
}
