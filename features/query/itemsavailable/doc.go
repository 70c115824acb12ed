// Package itemsavailable implements the Items Available query use case.
//
// The view lists catalog items that currently have at least one available
// copy, ordered by title.
package itemsavailable
