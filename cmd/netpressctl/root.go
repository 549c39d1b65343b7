package main

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"netpress/internal/domain"
	"netpress/internal/infra/adminapi"
	"netpress/internal/infra/telemetry"
)

type cliOptions struct {
	serverAddress  string
	metricsAddress string
	timeoutSeconds int
	jobID          string
	jsonOutput     bool
}

// effectiveJobID resolves the correlation id once per invocation, so the
// x-job-id header and the job_id tool parameter agree.
func (o *cliOptions) effectiveJobID() string {
	if o.jobID == "" {
		o.jobID = telemetry.NewJobID()
	}
	return o.jobID
}

func (o *cliOptions) client() *adminapi.Client {
	c := adminapi.NewClient(o.serverAddress, time.Duration(o.timeoutSeconds)*time.Second)
	return c.WithJobID(o.effectiveJobID())
}

func newRootCommand() *cobra.Command {
	opts := cliOptions{
		serverAddress:  "http://" + domain.DefaultAdminListenAddress,
		metricsAddress: "http://" + domain.DefaultObservabilityListenAddr,
		timeoutSeconds: domain.DefaultAdminRequestTimeoutSecs,
	}

	root := &cobra.Command{
		Use:   "netpressctl",
		Short: "CLI client for the netpress admin API",
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			applyRootFlagBindings(cmd, &opts)
		},
	}

	root.PersistentFlags().StringVar(&opts.serverAddress, "server", opts.serverAddress, "admin API address")
	root.PersistentFlags().StringVar(&opts.metricsAddress, "metrics", opts.metricsAddress, "observability server address")
	root.PersistentFlags().IntVar(&opts.timeoutSeconds, "timeout", opts.timeoutSeconds, "request timeout in seconds")
	root.PersistentFlags().StringVar(&opts.jobID, "job-id", "", "correlation id for requests (generated when empty)")
	root.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "output JSON")

	root.AddCommand(
		newSitesCmd(&opts),
		newPostsCmd(&opts),
		newTermsCmd(&opts),
		newSeedCmd(&opts),
		newToolsCmd(&opts),
		newSearchCmd(&opts),
		newReadCmd(&opts),
		newContextCmd(&opts),
		newAskCmd(&opts),
		newStatsCmd(&opts),
		newVersionCmd(&opts),
	)

	return root
}

func applyRootFlagBindings(cmd *cobra.Command, opts *cliOptions) {
	flags := cmd.Flags()
	flags.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "server":
			opts.serverAddress, _ = flags.GetString("server")
		case "metrics":
			opts.metricsAddress, _ = flags.GetString("metrics")
		case "timeout":
			opts.timeoutSeconds, _ = flags.GetInt("timeout")
		case "job-id":
			opts.jobID, _ = flags.GetString("job-id")
		case "json":
			opts.jsonOutput, _ = flags.GetBool("json")
		}
	})
}
