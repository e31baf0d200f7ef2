// Example program demonstrating the openstay-release library API.
//
// Run from a project root:
//
//	go run ./example/
//
// With BUMP=minor it also bumps the version when the project changed:
//
//	BUMP=minor go run ./example/
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/openstay/openstay-release/pkg/sdk"
)

func main() {
	status, err := sdk.Assess(sdk.Options{Path: "."})
	if err != nil {
		log.Fatalf("change check failed: %v", err)
	}
	fmt.Print(status.Explanation)

	kind := os.Getenv("BUMP")
	if kind == "" {
		return
	}

	result, err := sdk.SmartBump(context.Background(), sdk.BumpOptions{
		Options: sdk.Options{Path: "."},
		Kind:    kind,
	})
	if err != nil {
		log.Fatalf("bump failed: %v", err)
	}
	printVariables(result.Variables)
}

func printVariables(vars map[string]string) {
	fmt.Println("=== Release ===")

	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		fmt.Printf("  %-18s %s\n", k, vars[k])
	}
}
