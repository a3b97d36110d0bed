package constvars

const (
	StorageMaxKeys         = 4500
	StoragePathSeparator   = "/"
	StorageCachePrefix     = ".cache/"
	StorageBackupPrefix    = ".backup/"
	StorageMetadataFile    = "metadata.json"
	StorageBackupLatest    = "latest"
	StorageSuccessMarker   = "_SUCCESS"
	StorageLogsPrefix      = "logs/"
	StorageSuffixMD5Sum    = ".md5sum"
	StorageSuffixExtraTgz  = ".extra_results.tgz"
	StorageSuffixHPO       = ".hpo"
	StorageDriverMinio     = "minio"
	StorageDriverS3        = "s3"
	StorageDriverMemory    = "memory"
	CacheDriverMemory      = "memory"
	CacheDriverStorage     = "storage"
	CacheDriverRedis       = "redis"
	CacheKeyVCFFormat      = "vcfs/%s.%d"
	RedisCacheKeyPrefix    = "qlinme:cache:"
	CacheNameVCF           = "vcf"
	CacheNameReferenceData = "reference_data"
)
