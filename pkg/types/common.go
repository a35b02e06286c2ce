package types

const (
	NO_PAGINATION = 0
)

const (
	DEFAULT_APPNAME = "quka-iot"

	// object storage prefix of archived csv exports
	FIXED_EXPORT_PATH_PREFIX = "/exports/"
)
