package utils

import (
	"context"
)

type contextKey string

const (
	AdminKey contextKey = "admin"
)

const RoleAdmin = "admin"

func SetAdminContext(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, AdminKey, username)
}

func GetAdminFromContext(ctx context.Context) (string, bool) {
	val := ctx.Value(AdminKey)
	if val == nil {
		return "", false
	}

	username, ok := val.(string)
	return username, ok && username != ""
}
