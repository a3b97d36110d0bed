package constvars

var CustomValidationErrorMessages = map[string]string{
	"required": "is required",
	"email":    "must be a valid email",
	"min":      "must be at least %s characters long",
	"max":      "maximum at %s characters long",
	"oneof":    "must be one of [%s]",
	"batch_id": "must contain only letters, digits, dots, dashes or underscores",
	"numeric":  "must be a number",
}

var TagsWithParams = map[string]bool{
	"min":   true,
	"max":   true,
	"oneof": true,
}

// Error messages for clients
const (
	ErrClientCannotProcessRequest          = "failed to process your request"
	ErrClientSomethingWrongWithApplication = "there is something wrong with the application"
	ErrClientServerLongRespond             = "the app taking too long to respond"
	ErrClientNotAuthorized                 = "you can't access this feature"
	ErrClientNotLoggedIn                   = "your session ended, please login again"
	ErrClientInvalidUsernameOrPassword     = "invalid username or password"
	ErrClientBatchNotFound                 = "batch not found"
	ErrClientMetadataVersionNotFound       = "metadata version not found"
	ErrClientBatchLocked                   = "batch is being updated by another request, please retry"
	ErrClientReferenceDataUnavailable      = "reference data is currently unavailable"
	ErrClientInvalidVCF                    = "a variant file of the batch could not be read"
)

// Error messages for developers
const (
	ErrDevInvalidInput             = "invalid input"
	ErrDevValidationFailed         = "request validation failed"
	ErrDevCannotParseJSON          = "cannot parse JSON into struct or other data types"
	ErrDevCannotMarshalJSON        = "cannot convert struct or other data types to JSON"
	ErrDevURLParamValidationFailed = "url param %s validation failed"
	ErrDevServerDeadlineExceeded   = "server deadline exceeded"
	ErrDevCreateHTTPRequest        = "failed to create HTTP request"
	ErrDevSendHTTPRequest          = "failed to send HTTP request"
	ErrDevDecodeResponse           = "failed to decode %s response"
	ErrDevInvalidCredentials       = "invalid credentials"

	ErrDevAuthTokenMissing          = "authorization token missing"
	ErrDevAuthTokenInvalidOrExpired = "authorization token invalid or expired"
	ErrDevAuthMissingRole           = "token does not carry role %s"
	ErrDevAuthFetchKeys             = "failed to fetch signing keys from %s"
	ErrDevAuthUnknownKey            = "no signing key found for kid %s"
	ErrDevKeycloakRequest           = "keycloak %s request failed"

	ErrDevFHIRGetResource     = "failed to get FHIR %s"
	ErrDevFHIRCircuitOpen     = "FHIR circuit breaker rejected %s request"
	ErrDevReferenceDataFailed = "failed to load reference data %s"

	ErrDevStorageListObjects  = "failed to list objects under %s"
	ErrDevStorageStatObject   = "failed to stat object %s"
	ErrDevStorageGetObject    = "failed to get object %s"
	ErrDevStoragePutObject    = "failed to put object %s"
	ErrDevStorageCopyObject   = "failed to copy object %s to %s"
	ErrDevStorageDeleteObject = "failed to delete object %s"
	ErrDevStorageNotFound     = "object %s not found"

	ErrDevCacheEncode = "failed to encode cache entry %s"
	ErrDevCacheDecode = "failed to decode cache entry %s"
	ErrDevCacheGet    = "failed to read cache entry %s"
	ErrDevCachePut    = "failed to write cache entry %s"
	ErrDevCacheRemove = "failed to remove cache entry %s"

	ErrDevRedisGet    = "failed to get redis key %s"
	ErrDevRedisSet    = "failed to set redis key"
	ErrDevRedisDelete = "failed to delete redis key"
	ErrDevRedisSetNX  = "failed to set redis key if not exists"
	ErrDevRedisUnlock = "failed to release redis lock"

	ErrDevVCFOpen           = "failed to open gzip stream of %s"
	ErrDevVCFRead           = "failed to read variant file %s"
	ErrDevVCFNoAliquotIDs   = "No aliquots IDs found in: %s"
	ErrDevBatchLocked       = "batch %s is locked"
	ErrDevBatchNotFound     = "metadata of batch %s not found"
	ErrDevVersionNotFound   = "metadata version %s of batch %s not found"
	ErrDevPublishEvent      = "failed to publish event %s"
	ErrDevMetadataMalformed = "stored metadata of batch %s is malformed"
)
