package handler

import "github.com/labstack/echo/v4"

// currentUserID returns the authenticated user's id set by the auth
// middleware, or 0 when the request is unauthenticated.
func currentUserID(c echo.Context) uint {
	id, ok := c.Get("user_id").(uint)
	if !ok {
		return 0
	}
	return id
}

// currentRole returns the authenticated user's role, or ""
func currentRole(c echo.Context) string {
	role, ok := c.Get("role").(string)
	if !ok {
		return ""
	}
	return role
}
