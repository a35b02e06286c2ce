package service

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/quka-ai/quka-iot/app/core"
	v1 "github.com/quka-ai/quka-iot/app/logic/v1"
)

type ExportOptions struct {
	ConfigPath string
	ChannelID  string
	Out        string
}

func (o *ExportOptions) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVarP(&o.ConfigPath, "config", "c", "", "service config path")
	flagSet.StringVar(&o.ChannelID, "channel", "", "channel id to export")
	flagSet.StringVarP(&o.Out, "out", "o", "", "output file, default channel_<id>_fields.csv")
}

func NewExportCommand() *cobra.Command {
	opts := &ExportOptions{}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "export channel entries as csv",
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunExport(opts)
		},
	}
	opts.AddFlags(cmd.Flags())
	_ = cmd.MarkFlagRequired("channel")
	return cmd
}

func RunExport(opts *ExportOptions) error {
	app := core.MustSetupCore(core.MustLoadBaseConfig(opts.ConfigPath))

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	channel, err := app.Store().ChannelStore().GetChannel(ctx, opts.ChannelID)
	if err != nil {
		return fmt.Errorf("failed to load channel %s: %w", opts.ChannelID, err)
	}

	raw, err := v1.ChannelCSV(ctx, app, channel)
	if err != nil {
		return err
	}

	out := opts.Out
	if out == "" {
		out = v1.CSVFilename(channel.ID)
	}
	if err = os.WriteFile(out, raw, 0o644); err != nil {
		return err
	}

	app.Metrics().CSVExportInc("cli")
	fmt.Printf("Exported %s to %s\n", channel.Name, out)
	return nil
}
