package handler

import "net/http"

type ContextKey string

var (
	RoleCtxKey ContextKey = "role"
	SubCtxKey  ContextKey = "sub"
	OrgCtxKey  ContextKey = "organizationID"
)

// organizationID 取出 auth 中间件放入的组织 ID
func organizationID(r *http.Request) int64 {
	return r.Context().Value(OrgCtxKey).(int64)
}
