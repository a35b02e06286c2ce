package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quka-ai/quka-iot/cmd/service"
	_ "github.com/quka-ai/quka-iot/pkg/plugins/selfhost"
)

func main() {
	root := &cobra.Command{
		Use:   "quka-iot",
		Short: "quka-iot",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("empty command")
		},
	}

	root.AddCommand(service.NewCommand(), service.NewExportCommand())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
