package constvars

const (
	ResponseSuccess                 = "success"
	ResponseUnknown                 = "unknown"
	ResponseHealthy                 = "UP"
	ResponseUnhealthy               = "DOWN"
	BatchFoundSuccessMessage        = "batch metadata found"
	BatchSavedSuccessMessage        = "batch metadata validated and saved"
	BatchInvalidMessage             = "batch metadata is invalid"
	BatchStatusSuccessMessage       = "batch status computed"
	BatchHistorySuccessMessage      = "batch metadata history found"
	BatchHistoryVersionFoundMessage = "batch metadata version found"
	LoginSuccessMessage             = "login succeeded"
)
