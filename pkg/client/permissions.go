package client

import "context"

// ReloadPermissionsParams holds options for PermissionsReload.
type ReloadPermissionsParams struct {
	// RestorePlansDevices reloads the lists of existing plans and devices
	// from disk before recomputing permissions.
	RestorePlansDevices *bool
	// RestorePermissions reloads user group permissions from disk instead of
	// reusing the current ones.
	RestorePermissions *bool
}

// PermissionsReload recomputes the lists of allowed plans and devices.
func (c *Client) PermissionsReload(ctx context.Context, p ReloadPermissionsParams) (map[string]any, error) {
	params := map[string]any{}
	addParam(params, "restore_plans_devices", p.RestorePlansDevices)
	addParam(params, "restore_permissions", p.RestorePermissions)
	return c.sendOp(ctx, "permissions_reload", params)
}

// PermissionsGet returns the current user group permissions.
func (c *Client) PermissionsGet(ctx context.Context) (map[string]any, error) {
	return c.sendOp(ctx, "permissions_get", nil)
}

// PermissionsSet uploads user group permissions to the manager.
func (c *Client) PermissionsSet(ctx context.Context, permissions map[string]any) (map[string]any, error) {
	return c.sendOp(ctx, "permissions_set", map[string]any{"user_group_permissions": permissions})
}
