//go:build linux

package cmd

import (
	"log"

	perf "github.com/hodgesds/perf-utils"
	"github.com/spf13/viper"
)

// measure runs fn, counting its CPU instructions when --perf is set.
func measure(fn func() error) (err error) {
	if !viper.GetBool("perf") {
		return fn()
	}
	var (
		ran   bool
		fnErr error
		pv    *perf.ProfileValue
	)
	pv, err = perf.CPUInstructions(func() error {
		ran = true
		fnErr = fn()
		return fnErr
	})
	if fnErr != nil {
		return fnErr
	}
	if err != nil {
		log.Printf("perf: %v", err)
		if !ran {
			return fn()
		}
		return nil
	}
	log.Printf("perf: %d CPU instructions", pv.Value)
	return
}
