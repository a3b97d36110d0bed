package models

type MetadataValidation struct {
	Schema        string   `json:"schema"`
	BatchID       string   `json:"batchId"`
	AnalysesCount int      `json:"analysesCount"`
	Errors        Messages `json:"errors"`
	Warnings      Messages `json:"warnings"`
}

func (v *MetadataValidation) AddError(field, message string) {
	v.Errors.Add(field, message)
}

func (v *MetadataValidation) AddWarning(field, message string) {
	v.Warnings.Add(field, message)
}

func (v *MetadataValidation) IsValid() bool {
	return v.Errors.IsEmpty() && v.AnalysesCount > 0
}

type FilesValidation struct {
	Schema     string   `json:"schema"`
	BatchID    string   `json:"batchId"`
	FilesCount int      `json:"filesCount"`
	VCFsCount  int      `json:"vcfsCount"`
	Errors     Messages `json:"errors"`
}

func (v *FilesValidation) AddError(field, message string) {
	v.Errors.Add(field, message)
}

func (v *FilesValidation) IsValid() bool {
	return v.Errors.IsEmpty() && v.FilesCount > 0
}

type VCFsValidation struct {
	Schema    string   `json:"schema"`
	BatchID   string   `json:"batchId"`
	VCFsCount int      `json:"vcfsCount"`
	Errors    Messages `json:"errors"`
	Warnings  Messages `json:"warnings"`
}

func (v *VCFsValidation) AddError(field, message string) {
	v.Errors.Add(field, message)
}

func (v *VCFsValidation) AddWarning(field, message string) {
	v.Warnings.Add(field, message)
}

func (v *VCFsValidation) IsValid() bool {
	return v.Errors.IsEmpty() && v.VCFsCount > 0
}

// BatchStatus aggregates the three reports of a batch.
type BatchStatus struct {
	Status   string              `json:"status"`
	Metadata *MetadataValidation `json:"metadata"`
	Files    *FilesValidation    `json:"files,omitempty"`
	VCFs     *VCFsValidation     `json:"vcfs,omitempty"`
}
