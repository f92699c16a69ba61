package main

import (
	"os"

	"github.com/csp2hub/plugin-repository/internal/cli"
)

// @title CSP2 Plugin Repository API
// @version 1.0
// @description Read-only HTTP view of the CounterStrikeSharp plugin catalog.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @BasePath /
// @schemes http https

// @tag.name Catalog
// @tag.description Published catalog documents

// @tag.name Plugins
// @tag.description Plugin lookup and search

// @tag.name System
// @tag.description Health and maintenance endpoints

func main() {
	os.Exit(cli.Execute())
}
