package constants

const (
	ErrorBadRequest          = "Bad Request"
	ErrorInternal            = "Internal Service Error"
	ErrorMissingRoom         = "No room found for this session, start a new one"
	ErrorInvalidRoom         = "Invalid room id"
	ErrorNotAuthenticated    = "Spotify session expired, sign in again"
	ErrorInvalidGrant        = "Spotify rejected the sign in, try again"
	ErrorInsufficientMembers = "At least two members must join before merging"
	ErrorAlreadyMerged       = "This room has already been merged"
	ErrorStorage             = "Storage unavailable, try again"
	ErrorRemoteTimeout       = "Spotify took too long to respond, try again"
	ErrorRemote              = "Spotify request failed"
	ErrorNotFound            = "Not found"
)
