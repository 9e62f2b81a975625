// cmd/delgen/main.go
package main

import (
	"delgen/internal/app"
	"delgen/internal/appshell"
)

func main() {
	appshell.Main(app.Run)
}
