// Package domain holds the MCP tool contracts and handlers for the crowdfund
// node. Handlers build signed transactions from tool input, execute them on
// the ledger, and translate the outcome back into tool results.
package domain
