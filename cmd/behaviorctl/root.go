package main

import (
	"fmt"
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/metrico/tracebehavior/reader/model"
	"github.com/metrico/tracebehavior/reader/service"
	"github.com/metrico/tracebehavior/reader/spansource"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type options struct {
	input  string
	output string
	limit  int
	nested bool
	pid    string
}

func newRoot(version string) *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "behaviorctl",
		Short:         "Rebuild process behaviour out of a Jaeger trace document",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.Version = version
	cmd.SetVersionTemplate("behaviorctl {{.Version}}\n")

	cmd.PersistentFlags().StringVarP(&opts.input, "file", "f", "-", "Jaeger trace JSON file, - for stdin")
	cmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "json", "Output format: json, yaml")
	cmd.PersistentFlags().IntVar(&opts.limit, "limit", 0, "Analyze at most this many spans, 0 for all")

	cmd.AddCommand(newViewCmd(opts, "timeline", "Chronological, de-duplicated process timeline",
		func(svc model.IBehaviorService, c *cobra.Command, id string) (any, error) {
			return svc.Timeline(c.Context(), id, opts.limit)
		}))
	tree := newViewCmd(opts, "tree", "Process creation records",
		func(svc model.IBehaviorService, c *cobra.Command, id string) (any, error) {
			return svc.ProcessTree(c.Context(), id, opts.limit, opts.nested)
		})
	tree.Flags().BoolVar(&opts.nested, "nested", false, "Link children under their parent process")
	cmd.AddCommand(tree)
	cmd.AddCommand(newViewCmd(opts, "alerts", "Sigma alerts raised in the trace",
		func(svc model.IBehaviorService, c *cobra.Command, id string) (any, error) {
			return svc.SecurityAlerts(c.Context(), id, opts.limit)
		}))
	cmd.AddCommand(newViewCmd(opts, "metrics", "Span, alert and event counters",
		func(svc model.IBehaviorService, c *cobra.Command, id string) (any, error) {
			return svc.Metrics(c.Context(), id, opts.limit)
		}))
	events := newViewCmd(opts, "events", "Every event of one process in time order",
		func(svc model.IBehaviorService, c *cobra.Command, id string) (any, error) {
			if opts.pid == "" {
				return nil, fmt.Errorf("--pid is required")
			}
			return svc.ProcessEvents(c.Context(), id, opts.pid, opts.limit)
		})
	events.Flags().StringVar(&opts.pid, "pid", "", "Process id to list events for")
	cmd.AddCommand(events)
	cmd.AddCommand(newViewCmd(opts, "patterns", "Most frequent alert labels and process images",
		func(svc model.IBehaviorService, c *cobra.Command, id string) (any, error) {
			return svc.SecurityPatterns(c.Context(), id, opts.limit)
		}))
	cmd.AddCommand(newViewCmd(opts, "histogram", "Per second event counts by event id",
		func(svc model.IBehaviorService, c *cobra.Command, id string) (any, error) {
			return svc.EventHistogram(c.Context(), id, opts.limit)
		}))
	cmd.AddCommand(newViewCmd(opts, "report", "All of the above in one document",
		func(svc model.IBehaviorService, c *cobra.Command, id string) (any, error) {
			return svc.Report(c.Context(), id, opts.limit)
		}))
	return cmd
}

type viewFunc func(svc model.IBehaviorService, cmd *cobra.Command, traceID string) (any, error)

func newViewCmd(opts *options, use, short string, view viewFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.limit < 0 {
				return fmt.Errorf("--limit must not be negative")
			}
			trace, err := readTrace(cmd, opts.input)
			if err != nil {
				return err
			}
			svc := service.NewBehaviorService(model.ServiceData{Source: &spansource.StaticSource{Trace: trace}})
			res, err := view(svc, cmd, trace.TraceID)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), opts.output, res)
		},
	}
}

func readTrace(cmd *cobra.Command, path string) (model.Trace, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return model.Trace{}, fmt.Errorf("read trace: %w", err)
	}
	trace, err := spansource.DecodeJaegerTrace(data)
	if err != nil {
		return model.Trace{}, fmt.Errorf("decode trace: %w", err)
	}
	return trace, nil
}

func render(w io.Writer, format string, res any) error {
	switch format {
	case "json":
		enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(res)
	}
	return fmt.Errorf("unknown output format: %s", format)
}
