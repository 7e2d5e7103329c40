package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[SetBackendVariantMessage]   = (*SetBackendVariantCommand)(nil)
	_ gocmd.Commander[SetCloudBaseURLMessage]     = (*SetCloudBaseURLCommand)(nil)
	_ gocmd.Commander[UseCloudWithURLMessage]     = (*UseCloudWithURLCommand)(nil)
	_ gocmd.Commander[SetSupabaseConfigMessage]   = (*SetSupabaseConfigCommand)(nil)
	_ gocmd.Commander[ClearSupabaseConfigMessage] = (*ClearSupabaseConfigCommand)(nil)
	_ gocmd.Commander[RefreshEnvironmentMessage]  = (*RefreshEnvironmentCommand)(nil)
)
