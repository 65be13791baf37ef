package domain

type ctxKey string

// RequesterCtxKey carries the authenticated User through the request
// context, set by the auth middleware.
const RequesterCtxKey ctxKey = "sa-requester"
