package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	"github.com/MKhiriev/go-pos-offline/internal/cli"
	"github.com/MKhiriev/go-pos-offline/internal/logger"
	"github.com/MKhiriev/go-pos-offline/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	info := models.NewAppBuildInfo(buildVersion, buildDate, buildCommit)
	rootCmd := cli.NewRootCmd(info, nil, logger.Nop())

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		stop()
		os.Exit(1)
	}
}
