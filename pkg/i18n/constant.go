package i18n

var ALLOW_LANG = map[string]bool{
	"en":    true,
	"zh-CN": true,
}

const DEFAULT_LANG = "en"

const (
	ERROR_INTERNAL          = "error.internal"
	ERROR_NOT_FOUND         = "error.notfound"
	ERROR_INVALIDARGUMENT   = "error.invalidargument"
	ERROR_PERMISSION_DENIED = "error.permission.denied"
	ERROR_UNAUTHORIZED      = "error.unauthorized"
	ERROR_INVALID_TOKEN     = "error.invalid.token"
	ERROR_EXIST             = "error.exist"
	ERROR_FORBIDDEN         = "error.forbidden"
	ERROR_TOO_MANY_REQUESTS = "error.tooManyRequests"
	ERROR_UNSUPPORTED       = "error.unsupported.feature"
	ERROR_LOCKED            = "error.locked"

	ERROR_LOGIN_ACCOUNT_INCORRECT = "error.login.account.incorrect"
	ERROR_EMAIL_ALREADY_REGISTED  = "error.email_has_already_registed"
	ERROR_USER_NOT_FOUND          = "error.user.notfound"
	ERROR_INVALID_MOBILE          = "error.user.invalid_mobile"
	ERROR_PASSWORD_TOO_SHORT      = "error.user.password_too_short"
	ERROR_PROFILE_EMPTY           = "error.user.profile_empty"

	ERROR_CHANNEL_NOT_FOUND       = "error.channel.notfound"
	ERROR_CHANNEL_NAME_REQUIRED   = "error.channel.name_required"
	ERROR_CHANNEL_FIELDS_REQUIRED = "error.channel.fields_required"
	ERROR_CHANNEL_NO_ENTRIES      = "error.channel.no_entries"
	ERROR_INVALID_API_KEY         = "error.channel.invalid_api_key"

	ERROR_FIELD_NOT_FOUND    = "error.field.notfound"
	ERROR_FIELD_INVALID_NAME = "error.field.invalid_name"
	ERROR_FIELD_EXIST        = "error.field.exist"
	ERROR_FIELD_NOT_SCALAR   = "error.field.not_scalar"
	ERROR_NO_VALID_FIELDS    = "error.entry.no_valid_fields"
)
