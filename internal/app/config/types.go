package config

type (
	DriverConfig struct {
		Redis    Redis
		Logger   Logger
		Minio    Minio
		S3       S3
		RabbitMQ RabbitMQ
	}

	Redis struct {
		Host     string
		Port     string
		Password string
		DB       int
	}
	Logger struct {
		Level               string
		OutputFileName      string
		OutputErrorFileName string
	}
	Minio struct {
		Host     string
		Port     string
		Username string
		Password string
		UseSSL   bool
	}
	// S3 targets any S3 compatible endpoint through the AWS SDK.
	S3 struct {
		Endpoint     string
		Region       string
		AccessKey    string
		SecretKey    string
		UsePathStyle bool
	}
	RabbitMQ struct {
		Host     string
		Port     string
		Username string
		Password string
	}
)

type (
	InternalConfig struct {
		App        App
		FHIR       FHIR
		Keycloak   Keycloak
		Security   Security
		Storage    Storage
		Cache      Cache
		Validation Validation
		RabbitMQ   AppRabbitMQ
		Metrics    Metrics
	}

	App struct {
		Env                        string
		Port                       string
		Version                    string
		Address                    string
		MaxRequests                int
		ShutdownTimeout            int
		RequestTimeoutInSeconds    int
		RequestBodyLimitInMegabyte int
		BatchLockTTLInSeconds      int
	}
	FHIR struct {
		BaseUrl                string
		RequestTimeoutInSecond int
		RequestsPerSecond      int
		Burst                  int
	}
	Keycloak struct {
		Url                    string
		Realm                  string
		Client                 string
		Audience               string
		RequestTimeoutInSecond int
	}
	Security struct {
		Enabled      bool
		SystemClient string
		Publics      []string
	}
	Storage struct {
		Driver              string
		BucketName          string
		VCFTimeoutInSeconds int
		VCFWorkers          int
	}
	Cache struct {
		Driver                   string
		MemorySize               int
		VCFTTLInMinutes          int
		ReferenceDataTTLInMinute int
	}
	Validation struct {
		WorkflowVersions []string
	}
	AppRabbitMQ struct {
		Enabled    bool
		Exchange   string
		RoutingKey string
	}
	Metrics struct {
		Enabled bool
		Path    string
	}
)

// Issuer is the realm url tokens are signed by.
func (k Keycloak) Issuer() string {
	return k.Url + "/realms/" + k.Realm
}
