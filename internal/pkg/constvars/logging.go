package constvars

const (
	LoggingRequestIDKey      = "request_id"
	LoggingMethodKey         = "method"
	LoggingEndpointKey       = "endpoint"
	LoggingRemoteAddrKey     = "remote_addr"
	LoggingUserAgentKey      = "user_agent"
	LoggingQueryKey          = "query"
	LoggingStatusCodeKey     = "status_code"
	LoggingDurationKey       = "duration"
	LoggingSuccessKey        = "success"
	LoggingOperationKey      = "operation"
	LoggingErrorCodeKey      = "error_code"
	LoggingErrorMessageKey   = "error_message"
	LoggingResponseLengthKey = "response_length"

	LoggingBatchIDKey         = "batch_id"
	LoggingSchemaKey          = "schema"
	LoggingVersionKey         = "version"
	LoggingObjectKey          = "object_key"
	LoggingObjectCountKey     = "object_count"
	LoggingBucketKey          = "bucket"
	LoggingPrefixKey          = "prefix"
	LoggingCacheKey           = "cache_key"
	LoggingCacheNameKey       = "cache_name"
	LoggingCacheHitKey        = "cache_hit"
	LoggingAllowCacheKey      = "allow_cache"
	LoggingAliquotCountKey    = "aliquot_count"
	LoggingAnalysesCountKey   = "analyses_count"
	LoggingFilesCountKey      = "files_count"
	LoggingVCFsCountKey       = "vcfs_count"
	LoggingErrorsCountKey     = "errors_count"
	LoggingWarningsCountKey   = "warnings_count"
	LoggingIsValidKey         = "is_valid"
	LoggingFhirUrlKey         = "fhir_url"
	LoggingFhirResourceKey    = "fhir_resource"
	LoggingFhirCountKey       = "fhir_count"
	LoggingRedisKey           = "redis_key"
	LoggingLockValueKey       = "lock_value"
	LoggingLockStoredValueKey = "lock_stored_value"
	LoggingLockExpectedKey    = "lock_expected_value"
	LoggingLockExpirationKey  = "lock_expiration"
	LoggingEventNameKey       = "event_name"
	LoggingQueueKey           = "queue"
	LoggingSubjectKey         = "subject"
	LoggingRolesKey           = "roles"
	LoggingKeyIDKey           = "kid"
)
