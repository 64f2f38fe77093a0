//go:build swagger

package main

// Links the document generated by go generate into the binary.
import _ "github.com/avocado/teamhub/docs"
