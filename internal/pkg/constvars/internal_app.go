package constvars

type ContextKey string

const (
	CONTEXT_REQUEST_ID_KEY           ContextKey = "request_id"
	CONTEXT_IS_CLIENT_REQUEST_ID_KEY ContextKey = "is_client_request_id"
	CONTEXT_AUTH_TOKEN_KEY           ContextKey = "auth_token"
	CONTEXT_AUTH_SUBJECT_KEY         ContextKey = "auth_subject"
	CONTEXT_AUTH_ROLES_KEY           ContextKey = "auth_roles"
)

const (
	REQUEST_ID_PREFIX = "QLINME_SVC_"
)

const (
	AppEnvDevelopment = "development"
	AppEnvProduction  = "production"
)

const (
	RolePrefixClin = "clin"
	RoleQlinMe     = "clin_qlin_me"
)

const (
	BatchStatusReadyToImport = "READY_TO_IMPORT"
	BatchStatusErrors        = "ERRORS"
)

const (
	LockKeyBatchFormat = "lock:batch:%s"
)

const (
	EventBatchMetadataSaved = "batch.metadata.saved"
)
