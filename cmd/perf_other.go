//go:build !linux

package cmd

import (
	"log"

	"github.com/spf13/viper"
)

func measure(fn func() error) error {
	if viper.GetBool("perf") {
		log.Printf("perf: instruction counts need linux")
	}
	return fn()
}
