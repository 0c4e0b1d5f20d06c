// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

// Route pattern constants for chi router registration.
const (
	RouteRoot   = "/"
	RouteHealth = "/health"

	// Auth
	RouteSignup = "/signup"
	RouteLogin  = "/login"
	RouteLogout = "/logout"

	// Profiles
	RouteProfile         = "/profile"
	RouteCreateProfile   = "/create_profile"
	RouteUpdateProfile   = "/update_profile"
	RouteDisplayProfiles = "/display_profiles"
	RouteProfileByName   = RouteDisplayProfiles + "/{username}"

	// Blog
	RoutePosts        = "/posts"
	RoutePostsID      = RoutePosts + "/{id}"
	RoutePostComments = RoutePostsID + "/comments"

	// Reference data
	RouteCountries = "/countries"

	// Cookie demo
	RouteCookie       = "/cookie"
	RouteDeleteCookie = "/delete-cookie"
	RouteArticle      = "/article"

	// Dashboard
	RouteDashboard           = "/dashboard"
	RouteCallbackLineChart   = RouteDashboard + "/_callback/line-chart"
	RouteCallbackRatioCharts = RouteDashboard + "/_callback/ratio-charts"
	RouteCallbackHighlight   = RouteDashboard + "/_callback/highlight"
	RouteFigureGender        = RouteDashboard + "/_figures/gender/{type}"
	RouteFigureMap           = RouteDashboard + "/_figures/map/{style}"
	RouteDataTopTenGold      = RouteDashboard + "/_data/top-ten-gold"
	RouteDataMedals          = RouteDashboard + "/_data/medals"
)

// Redirect targets.
const (
	redirectHome          = RouteRoot
	redirectSignup        = RouteSignup
	redirectLogin         = RouteLogin
	redirectCreateProfile = RouteCreateProfile
	redirectUpdateProfile = RouteUpdateProfile
	redirectPosts         = RoutePosts
)
