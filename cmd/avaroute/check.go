package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/vyrodovalexey/avaroute/internal/config"
	"github.com/vyrodovalexey/avaroute/internal/router"
)

// errCheckFailed is returned when at least one route fails to compile.
var errCheckFailed = errors.New("route check failed")

// runCheckCommand implements -check. It returns the process exit code.
func runCheckCommand(configPath string) int {
	path, err := config.ResolveConfigPath(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		return 1
	}
	if err := runCheck(cfg, os.Stdout, os.Stderr); err != nil {
		return 1
	}
	return 0
}

// runCheck compiles every configured route in table order and prints the
// resulting patterns to out. Compile errors are written to errOut and
// all routes are checked before returning.
func runCheck(cfg *config.GatewayConfig, out, errOut io.Writer) error {
	b := router.NewBuilder[string]()

	failed := 0
	for i := range cfg.Spec.Routes {
		r := &cfg.Spec.Routes[i]
		var opts []router.RouteOption
		if r.Name != "" {
			opts = append(opts, router.WithName(r.Name))
		}
		if _, err := b.Register(r.Path, r.Name, opts...); err != nil {
			fmt.Fprintf(errOut, "route %d: %v\n", i, err)
			failed++
		}
	}
	rt := b.Build()

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ROUTE\tPATTERN\tFIXED\tWILDCARD\tVARIABLES")
	for _, route := range rt.Routes() {
		for _, p := range route.Patterns() {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%t\t%s\n",
				route.Name(), p.String(), p.FixedLen(), p.HasWildcard(), strings.Join(p.Variables(), ","))
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "%d routes, %d patterns\n", rt.Len(), rt.PatternCount())

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d routes", errCheckFailed, failed, len(cfg.Spec.Routes))
	}
	return nil
}
