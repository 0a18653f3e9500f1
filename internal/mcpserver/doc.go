// Package mcpserver exposes a provider as a Model Context Protocol server.
//
// Two tools are registered: "execute" runs a prompt through the provider and
// "status" reports its health. The server speaks MCP over stdio so it can be
// mounted by any MCP client, including Claude Code itself.
package mcpserver
