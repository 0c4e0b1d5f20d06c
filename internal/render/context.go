// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package render

import "context"

type ctxKey struct{}

// WithUser returns a context carrying the signed-in user for the layout.
func WithUser(ctx context.Context, u *CurrentUser) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// UserFromContext returns the user stored by WithUser, or nil.
func UserFromContext(ctx context.Context) *CurrentUser {
	u, _ := ctx.Value(ctxKey{}).(*CurrentUser)
	return u
}
