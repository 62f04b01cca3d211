// Package mcpserver adapts the dispatcher to the MCP protocol surface
// (spec §6): a single scout tool plus the resource-URI read surface,
// reachable over either STDIO or HTTP transport.
package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"scout-gateway/internal/config"
	"scout-gateway/internal/dispatch"
	"scout-gateway/internal/router"
)

const serverName = "scout-gateway"

// version is the protocol-reported server version; there is no build-time
// injection mechanism in this repo, so it is a fixed literal.
const version = "1.0.0"

// New builds an *server.MCPServer with the scout tool and the advertised
// resource surface (hosts://list, the global scout:// template, and one
// template per configured host). Every read is routed by the router the
// dispatcher was built with (see BuildRouter), not by these templates.
func New(cfg *config.Config, d *dispatch.Dispatcher) *server.MCPServer {
	s := server.NewMCPServer(serverName, version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(true, false),
		server.WithRecovery(),
	)

	registerScoutTool(s, d)
	registerResources(s, cfg, d)

	return s
}

// BuildRouter registers the canonical per-host pattern order (spec §4.5)
// plus the global cross-scheme patterns into rt. Kept separate from the
// mcp-go resource-template registration above: rt is the router the
// dispatcher actually matches against (internal/router), while the
// mcp-go templates below exist only so MCP clients can discover and list
// resource URIs — both must agree on shape, so both are driven from the
// same host list.
func BuildRouter(hosts []string) *router.Router {
	rt := router.New()
	for _, h := range hosts {
		rt.Register(h, "docker/{container}/logs", "docker_logs", h)
		rt.Register(h, "docker", "docker_ps", h)
		rt.Register(h, "compose", "compose_ls", h)
		rt.Register(h, "compose/{project}", "compose_file", h)
		rt.Register(h, "compose/{project}/logs", "compose_logs", h)
		rt.Register(h, "zfs", "zfs_pools", h)
		rt.Register(h, "zfs/{pool}", "zfs_dataset_root", h)
		rt.Register(h, "zfs/{pool}/datasets", "zfs_datasets", h)
		rt.Register(h, "zfs/snapshots", "zfs_snapshots", h)
		rt.Register(h, "syslog", "syslog_read", h)
		rt.Register(h, "system", "system_summary", h)
		rt.Register(h, "{path*}", "path_read", h)
	}
	rt.Register("scout", "{host}/{path*}", "scout_path", "")
	rt.Register("hosts", "list", "hosts_list", "")
	return rt
}

func registerScoutTool(s *server.MCPServer, d *dispatch.Dispatcher) {
	tool := mcp.NewTool("scout",
		mcp.WithDescription("Inspect files, directories, containers, compose/zfs/syslog state, or run an ad-hoc query on a configured host. Target is \"hosts\" to list the fleet, or \"host:path\"."),
		mcp.WithString("target", mcp.Required(), mcp.Description(`"hosts" or "host:path"`)),
		mcp.WithString("query", mcp.Description("optional shell command to run in the target path instead of reading it")),
		mcp.WithBoolean("tree", mcp.Description("when the target is a directory, render a recursive tree instead of a flat listing")),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		target, err := req.RequireString("target")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		query := req.GetString("query", "")
		tree := req.GetBool("tree", false)

		return mcp.NewToolResultText(d.Scout(target, query, tree)), nil
	})
}

// registerResources advertises the resource-URI surface to MCP clients.
// Every concrete read still goes through the dispatcher/router above —
// these templates only give clients something to list and build URIs
// from; the handler ignores mcp-go's own template variable extraction
// and hands the raw URI to d.ReadResource, which re-parses and re-routes
// it through internal/router (the single source of truth for matching).
func registerResources(s *server.MCPServer, cfg *config.Config, d *dispatch.Dispatcher) {
	handler := func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		res, err := d.ReadResource(req.Params.URI)
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: req.Params.URI, MIMEType: res.MIME, Text: res.Text},
		}, nil
	}

	s.AddResource(
		mcp.NewResource("hosts://list", "Configured hosts",
			mcp.WithResourceDescription("Every configured host and its online/offline status"),
			mcp.WithMIMEType("text/plain"),
		),
		handler,
	)

	s.AddResourceTemplate(
		mcp.NewResourceTemplate("scout://{host}/{path}", "Host path (global scheme)",
			mcp.WithTemplateDescription("Read a path on any configured host via the global scout:// scheme"),
			mcp.WithTemplateMIMEType("text/plain"),
		),
		handler,
	)

	for _, h := range cfg.Hosts {
		s.AddResourceTemplate(
			mcp.NewResourceTemplate(h.Name+"://{path}", h.Name+" resources",
				mcp.WithTemplateDescription("Files, docker, compose, zfs, and syslog resources on "+h.Name),
				mcp.WithTemplateMIMEType("text/plain"),
			),
			handler,
		)
	}
}
