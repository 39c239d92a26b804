package constant

const (
	// OwnerKeyAuthMaxCookieAgeSec is ten years, in seconds
	OwnerKeyAuthMaxCookieAgeSec = 315360000

	OwnerKeyCookieKey = "boxstats_id"

	// OwnerKeySetHeader carries a freshly issued owner key for clients that cannot use cookies
	OwnerKeySetHeader = "X-BoxStats-Set-ID"

	// OwnerKeyAuthorizationRealm is the prefix of the `Authorization` header value
	OwnerKeyAuthorizationRealm = "BoxStatsID"

	OwnerKeyLength = 24
)
