//go:build !wasm

package main

import (
	"github.com/vishnusankar2203/Diabetes-Predictor/cmd"
)

func main() {
	cmd.Execute()
}
