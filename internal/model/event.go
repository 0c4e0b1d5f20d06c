// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model holds the shared constants and view types that sit between
// the store rows and the templates.
package model

// Event levels
const (
	EventLevelInfo    = "info"
	EventLevelWarning = "warning"
	EventLevelError   = "error"
)

// Event categories
const (
	EventCategoryAuth      = "auth"
	EventCategoryProfile   = "profile"
	EventCategoryBlog      = "blog"
	EventCategorySeed      = "seed"
	EventCategoryDashboard = "dashboard"
	EventCategoryCache     = "cache"
	EventCategoryConfig    = "config"
	EventCategorySystem    = "system"
)
