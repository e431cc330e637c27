package cli

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/turtacn/KeyIP-Continuity/internal/application/lookup"
	"github.com/turtacn/KeyIP-Continuity/internal/infrastructure/monitoring/logging"
)

type lookupFunc func(ctx context.Context, svc lookup.Service) (*lookup.Result, error)

// runLookup bounds the call by --timeout and prints the result.
func runLookup(cmd *cobra.Command, op string, fn lookupFunc) error {
	cc, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	defer cc.Backend.Close()

	ctx := cmd.Context()
	if cc.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cc.Timeout)
		defer cancel()
	}

	res, err := fn(ctx, cc.Backend.LookupService())
	if err != nil {
		cc.Logger.WithError(err).Debug("command failed", logging.String("command", op))
		return err
	}
	return PrintResult(cmd, res)
}

func newLookupCmd() *cobra.Command {
	var req lookup.Request
	cmd := &cobra.Command{
		Use:   "lookup",
		Short: "Look up one application, patent or publication",
		Example: "  keyipc lookup --patent 10123456\n" +
			"  keyipc lookup --application 16123456 -o json\n" +
			"  keyipc lookup --publication US20200123456A1",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLookup(cmd, "lookup", func(ctx context.Context, svc lookup.Service) (*lookup.Result, error) {
				return svc.Resolve(ctx, req)
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&req.Application, "application", "", "application number (e.g. 16123456 or PCT/US2020/012345)")
	f.StringVar(&req.Patent, "patent", "", "granted patent number")
	f.StringVar(&req.Publication, "publication", "", "pre-grant or WO publication number")
	cmd.MarkFlagsMutuallyExclusive("application", "patent", "publication")
	cmd.MarkFlagsOneRequired("application", "patent", "publication")
	return cmd
}

func newSearchCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "search <term>...",
		Short: "Free-text search with summary rows and related proceedings",
		Long: "search runs a free-text query.  A bare application number or a trial docket\n" +
			"number (e.g. IPR2021-00001) is recognized.  Result sets larger than the\n" +
			"configured cap return a preview unless --all is given.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			term := strings.Join(args, " ")
			return runLookup(cmd, "search", func(ctx context.Context, svc lookup.Service) (*lookup.Result, error) {
				return svc.Search(ctx, term, all)
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "fetch every result even when the total exceeds the cap")
	return cmd
}

func newProceedingCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "proceeding <number>",
		Aliases: []string{"docket"},
		Short:   "Show a PTAB trial docket and its documents",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLookup(cmd, "proceeding", func(ctx context.Context, svc lookup.Service) (*lookup.Result, error) {
				return svc.Proceeding(ctx, args[0])
			})
		},
	}
}

func newFamilyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "family <application>",
		Short: "Reconstruct the continuity family of an application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLookup(cmd, "family", func(ctx context.Context, svc lookup.Service) (*lookup.Result, error) {
				return svc.Family(ctx, args[0])
			})
		},
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			defer cc.Backend.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return cc.Backend.Run(ctx)
		},
	}
}

//Personal.AI order the ending
