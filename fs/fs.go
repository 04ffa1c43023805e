package appfs

import "embed"

// FS embeds runtime assets: SQL migrations, email templates and datasets.
//
//go:embed migrations assets
var FS embed.FS
