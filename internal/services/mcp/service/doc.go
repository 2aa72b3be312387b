// Package service hosts the crowdfund MCP server over stdio or streamable
// HTTP. Tool handlers live in the domain package; this package only registers
// them and owns transport lifecycles.
package service
